package physics

import "testing"

func TestBody_IntegrateSemiImplicit(t *testing.T) {
	body := NewBody("b", BodyDef{
		Type:  BodyDynamic,
		Mass:  2,
		Shape: NewCircleShape(1),
	})
	body.ApplyForce(Vector{4, 0}) // a = 2 units/s²
	body.Integrate(0.5)

	if !almost(body.Velocity().X, 1, 1e-12) {
		t.Errorf("velocity after force: %v", body.Velocity())
	}
	// Position advances with the new velocity (semi-implicit).
	if !almost(body.Position().X, 0.5, 1e-12) {
		t.Errorf("position after force: %v", body.Position())
	}
	if body.Force() != (Vector{}) || body.Torque() != 0 {
		t.Errorf("accumulators not cleared")
	}
}

func TestBody_StaticIgnoresForces(t *testing.T) {
	body := NewBody("wall", BodyDef{Type: BodyStatic, Shape: NewBoxShape(10, 10)})
	if body.InvMass() != 0 || body.InvMoment() != 0 {
		t.Fatalf("static body must have zero inverse mass and moment")
	}
	body.ApplyForce(Vector{100, 0})
	body.ApplyImpulse(Vector{100, 0})
	body.Integrate(1)
	if body.Position() != (Vector{}) || body.Velocity() != (Vector{}) {
		t.Errorf("static body moved")
	}
}

func TestBody_FixedRotation(t *testing.T) {
	body := NewBody("b", BodyDef{Type: BodyDynamic, Mass: 1, Shape: NewCircleShape(1), FixedRotation: true})
	if body.InvMoment() != 0 {
		t.Fatalf("fixed rotation body must have zero inverse moment")
	}
	body.ApplyImpulseAtPoint(Vector{0, 1}, body.Position().Add(Vector{1, 0}))
	body.Integrate(1)
	if body.Angle() != 0 {
		t.Errorf("fixed rotation body rotated: %v", body.Angle())
	}
}

func TestBody_TorqueFromOffsetForce(t *testing.T) {
	body := NewBody("b", BodyDef{Type: BodyDynamic, Mass: 1, Shape: NewCircleShape(1)})
	body.ApplyForceAtPoint(Vector{0, 1}, Vector{2, 0})
	if !almost(body.Torque(), 2, 1e-12) {
		t.Errorf("torque = %v, want 2", body.Torque())
	}
}

func TestBody_Damping(t *testing.T) {
	body := NewBody("b", BodyDef{
		Type:          BodyDynamic,
		Mass:          1,
		Shape:         NewCircleShape(1),
		Velocity:      Vector{10, 0},
		LinearDamping: 0.5,
	})
	body.Integrate(0.1)
	if !almost(body.Velocity().X, 10*(1-0.5*0.1), 1e-12) {
		t.Errorf("damped velocity: %v", body.Velocity())
	}
}

func TestBody_SleepTransition(t *testing.T) {
	body := NewBody("b", BodyDef{
		Type:     BodyDynamic,
		Mass:     1,
		Shape:    NewCircleShape(5),
		Velocity: Vector{0.01, 0},
		CanSleep: true,
	})
	dt := 1.0 / 60.0
	for i := 0; i < 60; i++ {
		body.Integrate(dt)
		body.UpdateSleep(dt, 0.05, 0.5)
	}
	if !body.IsSleeping() {
		t.Fatalf("body did not fall asleep")
	}
	if body.Velocity() != (Vector{}) {
		t.Errorf("sleeping body kept velocity: %v", body.Velocity())
	}

	// Pure gravity force no longer moves a sleeping body.
	pos := body.Position()
	for i := 0; i < 30; i++ {
		body.ApplyForce(Vector{0, 980})
		body.Integrate(dt)
	}
	if body.Position() != pos {
		t.Errorf("sleeping body moved: %v vs %v", body.Position(), pos)
	}

	// Impulses wake it.
	body.ApplyImpulse(Vector{1, 0})
	if body.IsSleeping() {
		t.Errorf("impulse did not wake the body")
	}
}

func TestBody_VelocityAtPoint(t *testing.T) {
	body := NewBody("b", BodyDef{Type: BodyDynamic, Mass: 1, Shape: NewCircleShape(1)})
	body.SetVelocity(Vector{1, 0})
	body.SetAngularVelocity(2)
	v := body.VelocityAtPoint(body.Position().Add(Vector{1, 0}))
	if !almost(v.X, 1, 1e-12) || !almost(v.Y, 2, 1e-12) {
		t.Errorf("velocity at point: %v", v)
	}
}

func TestBody_DeadIsInert(t *testing.T) {
	body := NewBody("b", BodyDef{Type: BodyDynamic, Mass: 1, Shape: NewCircleShape(1), Velocity: Vector{5, 0}})
	body.Kill()
	body.ApplyForce(Vector{10, 0})
	body.Integrate(1)
	if body.Position() != (Vector{}) || body.Velocity() != (Vector{}) {
		t.Errorf("dead body still moves")
	}
}
