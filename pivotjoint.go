package physics

// PivotJoint pins a body-local anchor on each of two bodies to the same
// world point, constrains the deviation of their relative angle from
// RestAngle to [MinAngle, MaxAngle] and damps relative rotation with a
// torque-limited motor. This is the only joint the engine needs: ragdoll
// bone trees are built entirely from it.
type PivotJoint struct {
	BodyA, BodyB     *Body
	AnchorA, AnchorB Vector

	// RestAngle is the relative angle (BodyB minus BodyA) the limit is
	// measured around. LimitEnabled with MinAngle == MaxAngle locks the
	// joint at RestAngle + MinAngle.
	RestAngle    float64
	MinAngle     float64
	MaxAngle     float64
	LimitEnabled bool

	Stiffness      float64
	Damping        float64
	MaxMotorTorque float64
}

// worldAnchors returns the anchor points rotated into world space.
func (joint *PivotJoint) worldAnchors() (Vector, Vector) {
	ra := joint.AnchorA.Rotate(ForAngle(joint.BodyA.a))
	rb := joint.AnchorB.Rotate(ForAngle(joint.BodyB.a))
	return ra, rb
}

// solve runs one velocity iteration of the three sub-constraints.
// bias/dt converts positional error into a target velocity the same way
// contact resolution does.
func (joint *PivotJoint) solve(dt, bias float64) {
	a := joint.BodyA
	b := joint.BodyB

	ra, rb := joint.worldAnchors()
	joint.solvePoint(a, b, ra, rb, dt, bias)
	joint.solveLimit(a, b, dt, bias)
	joint.solveMotor(a, b, dt)
}

// solvePoint pulls the two world anchors together. The 2x2 effective mass
// tensor accounts for both linear and angular inertia of each body.
func (joint *PivotJoint) solvePoint(a, b *Body, ra, rb Vector, dt, bias float64) {
	// K = [m, 0; 0, m] with m = invMassSum, plus the angular outer products.
	k11 := a.mInv + b.mInv + ra.Y*ra.Y*a.iInv + rb.Y*rb.Y*b.iInv
	k12 := -ra.X*ra.Y*a.iInv - rb.X*rb.Y*b.iInv
	k22 := a.mInv + b.mInv + ra.X*ra.X*a.iInv + rb.X*rb.X*b.iInv
	det := k11*k22 - k12*k12
	if det == 0 {
		return
	}

	// Velocity of each anchor, plus a bias velocity removing separation.
	vr := b.v.Add(rb.Perp().Mult(b.w)).Sub(a.v.Add(ra.Perp().Mult(a.w)))
	separation := b.p.Add(rb).Sub(a.p.Add(ra))
	target := separation.Mult(-bias / dt).Sub(vr)

	invDet := 1 / det
	impulse := Vector{
		invDet * (k22*target.X - k12*target.Y),
		invDet * (k11*target.Y - k12*target.X),
	}

	a.v = a.v.Sub(impulse.Mult(a.mInv))
	a.w -= ra.Cross(impulse) * a.iInv
	b.v = b.v.Add(impulse.Mult(b.mInv))
	b.w += rb.Cross(impulse) * b.iInv
}

// solveLimit applies an angular impulse when the relative angle drifts
// outside [RestAngle+MinAngle, RestAngle+MaxAngle].
func (joint *PivotJoint) solveLimit(a, b *Body, dt, bias float64) {
	if !joint.LimitEnabled {
		return
	}
	iSum := a.iInv + b.iInv
	if iSum == 0 {
		return
	}

	relative := b.a - a.a - joint.RestAngle
	var errAngle float64
	if relative > joint.MaxAngle {
		errAngle = relative - joint.MaxAngle
	} else if relative < joint.MinAngle {
		errAngle = relative - joint.MinAngle
	} else {
		return
	}

	wr := b.w - a.w
	j := -(wr + errAngle*bias/dt) / iSum
	a.w -= j * a.iInv
	b.w += j * b.iInv
}

// solveMotor damps relative angular velocity toward zero with a torque
// budget, which is what gives a ragdoll its joint stiffness.
func (joint *PivotJoint) solveMotor(a, b *Body, dt float64) {
	if joint.MaxMotorTorque <= 0 {
		return
	}
	iSum := a.iInv + b.iInv
	if iSum == 0 {
		return
	}

	wr := b.w - a.w
	jMax := joint.MaxMotorTorque * dt
	j := Clamp(-wr*joint.Damping/iSum, -jMax, jMax)
	a.w -= j * a.iInv
	b.w += j * b.iInv
}
