package physics

import "math"

// Evaluator is the contract with the animation/keyframe collaborator: it
// resolves an animated property to its value at a frame. The physics core
// never sees the animation engine's internal representation.
type Evaluator interface {
	Evaluate(property string, frame int) float64
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(property string, frame int) float64

func (f EvaluatorFunc) Evaluate(property string, frame int) float64 {
	return f(property, frame)
}

// Scalar is an animatable parameter: a static Value, or when Prop is set
// and an evaluator is available, the animated value at the current frame.
type Scalar struct {
	Prop  string  `yaml:"prop,omitempty"`
	Value float64 `yaml:"value"`
}

func (s Scalar) at(ev Evaluator, frame int) float64 {
	if s.Prop != "" && ev != nil {
		return ev.Evaluate(s.Prop, frame)
	}
	return s.Value
}

// Vec2 is an animatable vector parameter, one Scalar per component.
type Vec2 struct {
	X Scalar `yaml:"x"`
	Y Scalar `yaml:"y"`
}

func (v Vec2) at(ev Evaluator, frame int) Vector {
	return Vector{v.X.at(ev, frame), v.Y.at(ev, frame)}
}

func StaticScalar(v float64) Scalar { return Scalar{Value: v} }

func StaticVec2(v Vector) Vec2 {
	return Vec2{X: Scalar{Value: v.X}, Y: Scalar{Value: v.Y}}
}

type FieldKind int

const (
	FieldGravity FieldKind = iota
	FieldWind
	FieldAttraction
	FieldVortex
	FieldExplosion
	FieldBuoyancy
	FieldDrag
)

type Falloff int

const (
	FalloffConstant Falloff = iota
	FalloffLinear
	FalloffQuadratic
)

// Field is a tagged variant over the global force generators. Which
// parameters are read depends on Kind.
type Field struct {
	ID      string
	Kind    FieldKind
	Enabled bool

	// Active frame window; EndFrame -1 means unbounded.
	StartFrame int
	EndFrame   int

	// BodyIDs restricts the field to the listed bodies when non-empty.
	BodyIDs []string

	Falloff Falloff

	Strength  Scalar
	Direction Vec2
	Center    Vec2
	Radius    Scalar

	// Wind turbulence: procedural sin/cos shimmer, not true noise.
	Turbulence Scalar
	Frequency  Scalar
	Seed       float64

	// Explosion fires exactly once, at TriggerFrame.
	TriggerFrame int

	// Buoyancy parameters.
	SurfaceLevel     Scalar
	Density          Scalar
	FluidLinearDrag  Scalar
	FluidAngularDrag Scalar

	// Drag coefficients: force = linear·speed + quadratic·speed².
	LinearCoeff    Scalar
	QuadraticCoeff Scalar
}

func (f *Field) active(frame int) bool {
	if !f.Enabled || frame < f.StartFrame {
		return false
	}
	return f.EndFrame < 0 || frame <= f.EndFrame
}

func (f *Field) affects(id string) bool {
	if len(f.BodyIDs) == 0 {
		return true
	}
	for _, allowed := range f.BodyIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

// applyToBody accumulates the field's force on one rigid body for the
// current frame. Explosions mutate velocity directly instead.
func (f *Field) applyToBody(body *Body, frame int, dt float64, ev Evaluator, rng *Rand, gravityMag float64) {
	if !body.Movable() || !f.affects(body.ID) {
		return
	}

	switch f.Kind {
	case FieldGravity:
		accel := f.Direction.at(ev, frame).Mult(f.Strength.at(ev, frame))
		body.ApplyForce(accel.Mult(body.m))

	case FieldWind:
		force := f.Direction.at(ev, frame).Mult(f.Strength.at(ev, frame))
		force = force.Add(f.turbulence(body.p, frame, ev))
		body.ApplyForce(force)

	case FieldAttraction:
		center := f.Center.at(ev, frame)
		delta := center.Sub(body.p)
		dist := delta.Length()
		radius := f.Radius.at(ev, frame)
		if dist < 1 || (radius > 0 && dist > radius) {
			return
		}
		mag := f.falloffMagnitude(f.Strength.at(ev, frame), dist, radius)
		body.ApplyForce(delta.Mult(mag / dist))

	case FieldVortex:
		center := f.Center.at(ev, frame)
		radius := f.Radius.at(ev, frame)
		delta := body.p.Sub(center)
		dist := delta.Length()
		if radius <= 0 || dist > radius || dist < 1e-6 {
			return
		}
		fall := 1 - dist/radius
		inward := delta.Mult(-1 / dist)
		tangent := inward.Perp()
		strength := f.Strength.at(ev, frame)
		force := tangent.Mult(strength * fall).Add(inward.Mult(strength * 0.5 * fall))
		body.ApplyForce(force)

	case FieldExplosion:
		if frame != f.TriggerFrame {
			return
		}
		center := f.Center.at(ev, frame)
		radius := f.Radius.at(ev, frame)
		delta := body.p.Sub(center)
		dist := delta.Length()
		if radius <= 0 || dist > radius {
			return
		}
		var dir Vector
		if dist < 1e-6 {
			// Body sits exactly at the blast center: kick it in a
			// reproducible random direction.
			dir = ForAngle(rng.Range(0, 2*math.Pi))
		} else {
			dir = delta.Mult(1 / dist)
		}
		fall := 1 - dist/radius
		body.v = body.v.Add(dir.Mult(f.Strength.at(ev, frame) * fall * body.mInv))
		body.Wake()

	case FieldBuoyancy:
		level := f.SurfaceLevel.at(ev, frame)
		depth := body.p.Y - level
		if depth <= 0 {
			return
		}
		height := 2 * body.Shape.BoundingRadius()
		ratio := 1.0
		if height > 0 {
			ratio = Clamp01(depth / height)
		}
		g := gravityMag
		if g == 0 {
			g = 9.8
		}
		density := f.Density.at(ev, frame)
		body.ApplyForce(Vector{0, -ratio * density * body.m * g})
		body.v = body.v.Mult(Clamp01(1 - f.FluidLinearDrag.at(ev, frame)*ratio*dt))
		body.w *= Clamp01(1 - f.FluidAngularDrag.at(ev, frame)*ratio*dt)

	case FieldDrag:
		speed := body.v.Length()
		if speed == 0 {
			return
		}
		mag := f.LinearCoeff.at(ev, frame)*speed + f.QuadraticCoeff.at(ev, frame)*speed*speed
		body.ApplyForce(body.v.Mult(-mag / speed))
	}
}

// applyToSoftBody drives particles with the subset of fields that make
// sense for mass points: gravity, wind and drag.
func (f *Field) applyToSoftBody(sb *SoftBody, frame int, ev Evaluator) {
	if !f.affects(sb.ID) {
		return
	}

	switch f.Kind {
	case FieldGravity:
		sb.ApplyAcceleration(f.Direction.at(ev, frame).Mult(f.Strength.at(ev, frame)))

	case FieldWind:
		base := f.Direction.at(ev, frame).Mult(f.Strength.at(ev, frame))
		for i := range sb.Particles {
			p := &sb.Particles[i]
			if p.Pinned {
				continue
			}
			force := base.Add(f.turbulence(p.Pos, frame, ev))
			p.Accel = p.Accel.Add(force.Mult(p.InvMass))
		}

	case FieldDrag:
		lin := f.LinearCoeff.at(ev, frame)
		quad := f.QuadraticCoeff.at(ev, frame)
		for i := range sb.Particles {
			p := &sb.Particles[i]
			if p.Pinned {
				continue
			}
			vel := p.Pos.Sub(p.PrevPos)
			speed := vel.Length()
			if speed == 0 {
				continue
			}
			mag := lin*speed + quad*speed*speed
			p.Accel = p.Accel.Sub(vel.Mult(mag / speed * p.InvMass))
		}
	}
}

// turbulence is the deterministic wind shimmer: sine and cosine of position
// and frame scaled by frequency, offset by the field seed.
func (f *Field) turbulence(pos Vector, frame int, ev Evaluator) Vector {
	t := f.Turbulence.at(ev, frame)
	if t == 0 {
		return Vector{}
	}
	freq := f.Frequency.at(ev, frame)
	if freq == 0 {
		freq = 0.1
	}
	fx := float64(frame) * freq
	return Vector{
		math.Sin(pos.X*freq+fx+f.Seed) * t,
		math.Cos(pos.Y*freq+fx*1.3+f.Seed) * t,
	}
}

func (f *Field) falloffMagnitude(strength, dist, radius float64) float64 {
	switch f.Falloff {
	case FalloffLinear:
		if radius <= 0 {
			return strength
		}
		return strength * (1 - dist/radius)
	case FalloffQuadratic:
		return strength / (dist * dist)
	}
	return strength
}
