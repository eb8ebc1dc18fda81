package physics

import "math"

// Contact is a single-point collision manifold. Normal points from A to B.
type Contact struct {
	BodyA  *Body
	BodyB  *Body
	Normal Vector
	Depth  float64
	Point  Vector
	Sensor bool
}

// findContacts runs the exhaustive O(n²) broad phase over the body list and
// the narrow phase on every surviving pair. Bodies are visited in insertion
// order so the contact list is deterministic.
func findContacts(bodies []*Body) []Contact {
	var contacts []Contact
	for i := 0; i < len(bodies); i++ {
		a := bodies[i]
		if a.bodyType == BodyDead || a.Response == RespondNone {
			continue
		}
		for j := i + 1; j < len(bodies); j++ {
			b := bodies[j]
			if b.bodyType == BodyDead || b.Response == RespondNone {
				continue
			}
			if !a.Movable() && !b.Movable() {
				continue
			}
			if a.Filter.Reject(b.Filter) {
				continue
			}
			contact, ok := collide(a, b)
			if !ok {
				continue
			}
			contact.Sensor = a.Response == RespondSensor || b.Response == RespondSensor
			contacts = append(contacts, contact)
		}
	}
	return contacts
}

// collide dispatches on the shape kind pair. Unhandled combinations fall
// back to treating both shapes as circles of their bounding radius.
func collide(a, b *Body) (Contact, bool) {
	switch {
	case a.Shape.Kind == ShapeCircle && b.Shape.Kind == ShapeCircle:
		return circleCircle(a, b, a.Shape.Radius, b.Shape.Radius)
	case a.Shape.Kind == ShapeCircle && b.Shape.Kind == ShapeBox:
		return circleBox(a, b)
	case a.Shape.Kind == ShapeBox && b.Shape.Kind == ShapeCircle:
		c, ok := circleBox(b, a)
		return c.swapped(), ok
	case a.Shape.Kind == ShapeBox && b.Shape.Kind == ShapeBox:
		return boxBox(a, b)
	}
	return circleCircle(a, b, a.Shape.BoundingRadius(), b.Shape.BoundingRadius())
}

func (c Contact) swapped() Contact {
	c.BodyA, c.BodyB = c.BodyB, c.BodyA
	c.Normal = c.Normal.Neg()
	return c
}

func circleCircle(a, b *Body, ra, rb float64) (Contact, bool) {
	delta := b.p.Sub(a.p)
	distSq := delta.LengthSq()
	rsum := ra + rb
	if distSq >= rsum*rsum {
		return Contact{}, false
	}
	dist := math.Sqrt(distSq)
	if dist == 0 {
		// Coincident centers: no meaningful normal, skip this pair.
		return Contact{}, false
	}
	normal := delta.Mult(1 / dist)
	return Contact{
		BodyA:  a,
		BodyB:  b,
		Normal: normal,
		Depth:  rsum - dist,
		Point:  a.p.Add(normal.Mult(ra)),
	}, true
}

// circleBox tests the circle body against the box body in the box's local
// rotated frame: clamp the circle center to the box extents per axis, then
// separate along the closest-point delta, or along the shallower axis when
// the center is inside the box.
func circleBox(circle, box *Body) (Contact, bool) {
	rot := ForAngle(box.a)
	local := circle.p.Sub(box.p).Unrotate(rot)

	hw := box.Shape.Width / 2
	hh := box.Shape.Height / 2
	r := circle.Shape.Radius

	closest := Vector{Clamp(local.X, -hw, hw), Clamp(local.Y, -hh, hh)}

	var localNormal Vector
	var depth float64
	if local.Equal(closest) {
		// Center inside the box: push out along the axis with the
		// smaller penetration.
		dx := hw - abs(local.X)
		dy := hh - abs(local.Y)
		if dx < dy {
			localNormal = Vector{sign(local.X), 0}
			depth = r + dx
		} else {
			localNormal = Vector{0, sign(local.Y)}
			depth = r + dy
		}
	} else {
		delta := local.Sub(closest)
		dist := delta.Length()
		if dist >= r || dist == 0 {
			return Contact{}, false
		}
		localNormal = delta.Mult(1 / dist)
		depth = r - dist
	}

	// localNormal points from the box surface toward the circle; the
	// contact convention wants A (circle) to B (box).
	normal := localNormal.Rotate(rot).Neg()
	return Contact{
		BodyA:  circle,
		BodyB:  box,
		Normal: normal,
		Depth:  depth,
		Point:  box.p.Add(closest.Rotate(rot)),
	}, true
}

// boxBox treats both boxes as axis aligned, ignoring their rotation.
// Existing scenes are tuned against this response, so the approximation is
// load-bearing and must not be "fixed" to an oriented test.
func boxBox(a, b *Body) (Contact, bool) {
	delta := b.p.Sub(a.p)
	overlapX := (a.Shape.Width+b.Shape.Width)/2 - abs(delta.X)
	overlapY := (a.Shape.Height+b.Shape.Height)/2 - abs(delta.Y)
	if overlapX <= 0 || overlapY <= 0 {
		return Contact{}, false
	}

	var normal Vector
	var depth float64
	if overlapX < overlapY {
		normal = Vector{sign(delta.X), 0}
		depth = overlapX
	} else {
		normal = Vector{0, sign(delta.Y)}
		depth = overlapY
	}
	return Contact{
		BodyA:  a,
		BodyB:  b,
		Normal: normal,
		Depth:  depth,
		Point:  a.p.Add(delta.Mult(0.5)),
	}, true
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
