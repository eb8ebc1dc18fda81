package physics

import "fmt"

type BodyType int

const (
	BodyStatic BodyType = iota
	BodyDynamic
	// BodyDead is excluded from integration and collision but keeps its
	// slot so external ids remain stable until the caller removes it.
	BodyDead
)

// BodyDef collects the construction parameters for a rigid body. Zero
// values fall back to sane defaults in NewBody.
type BodyDef struct {
	Type     BodyType
	Layer    string
	Mass     float64
	Shape    Shape
	Material Material
	Filter   Filter
	Response Response

	Position Vector
	Angle    float64
	Velocity Vector

	// Moment overrides the analytic per-shape moment when > 0.
	Moment         float64
	FixedRotation  bool
	LinearDamping  float64
	AngularDamping float64
	CanSleep       bool
}

type Body struct {
	ID       string
	Layer    string
	Shape    Shape
	Material Material
	Filter   Filter
	Response Response

	bodyType       BodyType
	fixedRotation  bool
	linearDamping  float64
	angularDamping float64
	canSleep       bool

	// mass, moment and their inverses
	m    float64
	mInv float64
	i    float64
	iInv float64

	// position, velocity, accumulated force
	p Vector
	v Vector
	f Vector

	// angle, angular velocity, accumulated torque (radians)
	a float64
	w float64
	t float64

	sleeping  bool
	sleepTime float64
}

func (b *Body) String() string {
	return fmt.Sprint("Body ", b.ID)
}

func NewBody(id string, def BodyDef) *Body {
	body := &Body{
		ID:             id,
		Layer:          def.Layer,
		Shape:          def.Shape,
		Material:       def.Material,
		Filter:         def.Filter,
		Response:       def.Response,
		bodyType:       def.Type,
		fixedRotation:  def.FixedRotation,
		linearDamping:  def.LinearDamping,
		angularDamping: def.AngularDamping,
		canSleep:       def.CanSleep,
		p:              def.Position,
		v:              def.Velocity,
		a:              def.Angle,
	}
	if body.Filter == (Filter{}) {
		body.Filter = DefaultFilter()
	}
	if body.Material == (Material{}) {
		body.Material = DefaultMaterial()
	}

	mass := def.Mass
	if body.bodyType != BodyDynamic {
		mass = 0
	}
	body.setMass(mass, def.Moment)
	return body
}

func (body *Body) setMass(mass, moment float64) {
	body.m = mass
	if mass > 0 && body.bodyType == BodyDynamic {
		body.mInv = 1 / mass
		if moment <= 0 {
			moment = body.Shape.Moment(mass)
		}
		body.i = moment
		if moment > 0 && !body.fixedRotation {
			body.iInv = 1 / moment
		} else {
			body.iInv = 0
		}
	} else {
		body.mInv = 0
		body.i = 0
		body.iInv = 0
	}
}

func (body *Body) Type() BodyType { return body.bodyType }
func (body *Body) Mass() float64 { return body.m }
func (body *Body) InvMass() float64 { return body.mInv }
func (body *Body) Moment() float64 { return body.i }
func (body *Body) InvMoment() float64 { return body.iInv }
func (body *Body) Position() Vector { return body.p }
func (body *Body) Velocity() Vector { return body.v }
func (body *Body) Angle() float64 { return body.a }
func (body *Body) AngularVelocity() float64 { return body.w }
func (body *Body) Force() Vector { return body.f }
func (body *Body) Torque() float64 { return body.t }
func (body *Body) IsSleeping() bool { return body.sleeping }

func (body *Body) SetPosition(p Vector) {
	body.p = p
	body.Wake()
}

func (body *Body) SetVelocity(v Vector) {
	body.v = v
	body.Wake()
}

func (body *Body) SetAngle(a float64) {
	body.a = a
	body.Wake()
}

func (body *Body) SetAngularVelocity(w float64) {
	body.w = w
	body.Wake()
}

func (body *Body) Kill() {
	body.bodyType = BodyDead
	body.mInv = 0
	body.iInv = 0
	body.v = Vector{}
	body.w = 0
}

// Movable reports whether the body can respond to forces at all.
func (body *Body) Movable() bool {
	return body.bodyType == BodyDynamic && body.mInv != 0
}

func (body *Body) Wake() {
	body.sleeping = false
	body.sleepTime = 0
}

// ApplyForce accumulates a linear force through the center of mass.
// No-op on bodies with infinite mass.
func (body *Body) ApplyForce(force Vector) {
	if body.mInv == 0 {
		return
	}
	body.f = body.f.Add(force)
}

// ApplyForceAtPoint accumulates a force applied at a world point, adding
// the torque cross(point - center, force).
func (body *Body) ApplyForceAtPoint(force, point Vector) {
	if body.mInv == 0 {
		return
	}
	body.f = body.f.Add(force)
	body.t += point.Sub(body.p).Cross(force)
}

func (body *Body) ApplyTorque(torque float64) {
	if body.iInv == 0 {
		return
	}
	body.t += torque
}

// ApplyImpulse changes velocity immediately and wakes the body.
func (body *Body) ApplyImpulse(impulse Vector) {
	if body.mInv == 0 {
		return
	}
	body.v = body.v.Add(impulse.Mult(body.mInv))
	body.Wake()
}

// ApplyImpulseAtPoint is the velocity-space analogue of ApplyForceAtPoint.
func (body *Body) ApplyImpulseAtPoint(impulse, point Vector) {
	if body.mInv == 0 {
		return
	}
	body.v = body.v.Add(impulse.Mult(body.mInv))
	body.w += body.iInv * point.Sub(body.p).Cross(impulse)
	body.Wake()
}

// VelocityAtPoint returns the velocity of a world point on the body,
// combining linear and angular motion.
func (body *Body) VelocityAtPoint(point Vector) Vector {
	r := point.Sub(body.p)
	return body.v.Add(r.Perp().Mult(body.w))
}

// Integrate advances the body one semi-implicit Euler step: velocities pick
// up the accumulated force/torque, damping is applied multiplicatively,
// then positions advance. Accumulators are cleared afterwards.
func (body *Body) Integrate(dt float64) {
	if !body.Movable() || body.sleeping {
		body.f = Vector{}
		body.t = 0
		return
	}

	body.v = body.v.Add(body.f.Mult(body.mInv * dt))
	body.w += body.t * body.iInv * dt

	if body.linearDamping > 0 {
		body.v = body.v.Mult(Clamp01(1 - body.linearDamping*dt))
	}
	if body.angularDamping > 0 {
		body.w *= Clamp01(1 - body.angularDamping*dt)
	}

	body.p = body.p.Add(body.v.Mult(dt))
	body.a += body.w * dt

	body.f = Vector{}
	body.t = 0
}

// UpdateSleep advances the sleep timer. A body falls asleep once its linear
// speed and a tenth of its angular speed both stay under speedThreshold for
// longer than timeThreshold.
func (body *Body) UpdateSleep(dt, speedThreshold, timeThreshold float64) {
	if !body.canSleep || !body.Movable() || body.sleeping {
		return
	}
	if body.v.Length() < speedThreshold && 0.1*abs(body.w) < speedThreshold {
		body.sleepTime += dt
		if body.sleepTime > timeThreshold {
			body.sleeping = true
			body.v = Vector{}
			body.w = 0
		}
	} else {
		body.sleepTime = 0
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
