package physics

import "github.com/jinzhu/copier"

// bodySnapshot captures the full mutable state of one rigid body.
type bodySnapshot struct {
	ID        string
	Type      BodyType
	InvMass   float64
	InvMoment float64
	Position  Vector
	Velocity  Vector
	Angle     float64
	AngVel    float64
	Force     Vector
	Torque    float64
	Sleeping  bool
	SleepTime float64
}

// softSnapshot captures a soft body or cloth: particle positions and the
// broken flags of every link.
type softSnapshot struct {
	ID        string
	Particles []Particle
	Broken    []bool
}

// checkpoint is a full simulation snapshot at a frame. Replaying from any
// checkpoint at or before frame F must land on bit-identical state at F;
// that invariant is what makes timeline scrubbing reproducible.
type checkpoint struct {
	Frame    int
	Bodies   []bodySnapshot
	Softs    []softSnapshot
	Cloths   []softSnapshot
	RNGState uint32
}

func snapshotBody(body *Body) bodySnapshot {
	return bodySnapshot{
		ID:        body.ID,
		Type:      body.bodyType,
		InvMass:   body.mInv,
		InvMoment: body.iInv,
		Position:  body.p,
		Velocity:  body.v,
		Angle:     body.a,
		AngVel:    body.w,
		Force:     body.f,
		Torque:    body.t,
		Sleeping:  body.sleeping,
		SleepTime: body.sleepTime,
	}
}

func (s bodySnapshot) restore(body *Body) {
	body.bodyType = s.Type
	body.mInv = s.InvMass
	body.iInv = s.InvMoment
	body.p = s.Position
	body.v = s.Velocity
	body.a = s.Angle
	body.w = s.AngVel
	body.f = s.Force
	body.t = s.Torque
	body.sleeping = s.Sleeping
	body.sleepTime = s.SleepTime
}

func snapshotSoft(sb *SoftBody) softSnapshot {
	snap := softSnapshot{ID: sb.ID, Broken: make([]bool, len(sb.Links))}
	copier.Copy(&snap.Particles, &sb.Particles)
	for i := range sb.Links {
		snap.Broken[i] = sb.Links[i].Broken
	}
	return snap
}

func (s softSnapshot) restore(sb *SoftBody) {
	sb.Particles = sb.Particles[:0]
	copier.Copy(&sb.Particles, &s.Particles)
	for i := range s.Broken {
		if i < len(sb.Links) {
			sb.Links[i].Broken = s.Broken[i]
		}
	}
}
