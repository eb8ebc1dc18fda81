package physics

// BodyState is the per-body output consumed by the rendering collaborator
// to drive layer transforms. Velocity fields are diagnostic.
type BodyState struct {
	ID              string
	Layer           string
	Position        Vector
	Angle           float64
	Velocity        Vector
	AngularVelocity float64
	Sleeping        bool
}

type SoftBodyState struct {
	ID        string
	Layer     string
	Particles []Vector
	Broken    []int
}

type ClothState struct {
	ID        string
	Cols      int
	Rows      int
	Particles []Vector
	Torn      []TornLink
}

// RagdollBoneState maps one bone of a registered ragdoll back to the rigid
// body simulating it.
type RagdollBoneState struct {
	BoneID   string
	BodyID   string
	Position Vector
	Angle    float64
}

type RagdollState struct {
	ID    string
	Bones []RagdollBoneState
}

type ContactState struct {
	BodyA  string
	BodyB  string
	Normal Vector
	Depth  float64
	Point  Vector
	Sensor bool
}

// SimulationState is the full engine output for one frame.
type SimulationState struct {
	Frame       int
	RigidBodies []BodyState
	SoftBodies  []SoftBodyState
	Cloths      []ClothState
	Ragdolls    []RagdollState
	Contacts    []ContactState
}

// RigidBody returns the state for a body id; absent ids yield a zero value
// and false, since playback code iterates ids defensively.
func (s *SimulationState) RigidBody(id string) (BodyState, bool) {
	for _, b := range s.RigidBodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodyState{}, false
}

func (s *SimulationState) SoftBody(id string) (SoftBodyState, bool) {
	for _, sb := range s.SoftBodies {
		if sb.ID == id {
			return sb, true
		}
	}
	return SoftBodyState{}, false
}

func (s *SimulationState) Cloth(id string) (ClothState, bool) {
	for _, c := range s.Cloths {
		if c.ID == id {
			return c, true
		}
	}
	return ClothState{}, false
}

func (s *SimulationState) Ragdoll(id string) (RagdollState, bool) {
	for _, r := range s.Ragdolls {
		if r.ID == id {
			return r, true
		}
	}
	return RagdollState{}, false
}
