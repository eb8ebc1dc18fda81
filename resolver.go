package physics

import "math"

// resolveContact converts one contact into velocity impulses plus a
// positional correction. Sensor contacts are reported but never resolved.
func resolveContact(con *Contact, slop, bias float64) {
	if con.Sensor {
		return
	}

	a := con.BodyA
	b := con.BodyB
	n := con.Normal

	ra := con.Point.Sub(a.p)
	rb := con.Point.Sub(b.p)

	// Relative velocity at the contact point.
	rv := b.v.Add(rb.Perp().Mult(b.w)).Sub(a.v.Add(ra.Perp().Mult(a.w)))
	vn := rv.Dot(n)
	if vn > 0 {
		// Already separating.
		return
	}

	raCrossN := ra.Cross(n)
	rbCrossN := rb.Cross(n)
	invMassSum := a.mInv + b.mInv + raCrossN*raCrossN*a.iInv + rbCrossN*rbCrossN*b.iInv
	if invMassSum == 0 {
		return
	}

	e := math.Min(a.Material.Restitution, b.Material.Restitution)
	j := -(1 + e) * vn / invMassSum

	impulse := n.Mult(j)
	a.v = a.v.Sub(impulse.Mult(a.mInv))
	a.w -= raCrossN * j * a.iInv
	b.v = b.v.Add(impulse.Mult(b.mInv))
	b.w += rbCrossN * j * b.iInv

	// Coulomb friction along the tangent, clamped by the normal impulse.
	rv = b.v.Add(rb.Perp().Mult(b.w)).Sub(a.v.Add(ra.Perp().Mult(a.w)))
	tangent := rv.Sub(n.Mult(rv.Dot(n)))
	tLen := tangent.Length()
	if tLen > 1e-9 {
		tangent = tangent.Mult(1 / tLen)
		raCrossT := ra.Cross(tangent)
		rbCrossT := rb.Cross(tangent)
		invMassTangent := a.mInv + b.mInv + raCrossT*raCrossT*a.iInv + rbCrossT*rbCrossT*b.iInv
		if invMassTangent > 0 {
			jt := -rv.Dot(tangent) / invMassTangent
			friction := math.Sqrt(a.Material.Friction * b.Material.Friction)
			jt = Clamp(jt, -j*friction, j*friction)

			frictionImpulse := tangent.Mult(jt)
			a.v = a.v.Sub(frictionImpulse.Mult(a.mInv))
			a.w -= raCrossT * jt * a.iInv
			b.v = b.v.Add(frictionImpulse.Mult(b.mInv))
			b.w += rbCrossT * jt * b.iInv
		}
	}

	// Positional correction keeps resting stacks from sinking while the
	// slop term leaves a little overlap to damp jitter. Scaled by the same
	// effective inverse mass as the impulse so off-center contacts on
	// rotating bodies are not over-corrected.
	correction := n.Mult(math.Max(con.Depth-slop, 0) * bias / invMassSum)
	a.p = a.p.Sub(correction.Mult(a.mInv))
	b.p = b.p.Add(correction.Mult(b.mInv))

	// Only a real impact wakes a sleeper; resting contact applies a near-zero
	// impulse every frame and must not reset sleep timers.
	if a.sleeping && j*a.mInv > wakeVelocity {
		a.Wake()
	}
	if b.sleeping && j*b.mInv > wakeVelocity {
		b.Wake()
	}
}

// wakeVelocity is the velocity change below which a contact impulse leaves
// a sleeping body asleep.
const wakeVelocity = 1e-3
