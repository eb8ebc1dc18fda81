package physics

// Particle is the Verlet primitive shared by soft bodies and cloth.
// Velocity is implicit in the difference between Pos and PrevPos.
type Particle struct {
	ID      int
	Pos     Vector
	PrevPos Vector
	Accel   Vector
	InvMass float64
	Pinned  bool
	Radius  float64
}

type LinkKind int

const (
	LinkStructural LinkKind = iota
	LinkShear
	LinkBend
)

// Link is a distance constraint between two particles, by index.
// BreakThreshold is a ratio of current to rest length; zero means the link
// never breaks. Broken is one-way: once set it is never cleared.
type Link struct {
	A, B           int
	RestLength     float64
	Stiffness      float64
	BreakThreshold float64
	Broken         bool
	Kind           LinkKind
}

// SoftBody is a free-form particle/constraint network integrated with
// position Verlet and relaxed with Jacobi iterations.
type SoftBody struct {
	ID        string
	Layer     string
	Particles []Particle
	Links     []Link
	Damping   float64
}

func NewSoftBody(id string) *SoftBody {
	return &SoftBody{ID: id, Damping: 0.99}
}

// AddParticle appends a particle at rest and returns its index.
func (sb *SoftBody) AddParticle(pos Vector, mass, radius float64) int {
	invMass := 0.0
	if mass > 0 {
		invMass = 1 / mass
	}
	id := len(sb.Particles)
	sb.Particles = append(sb.Particles, Particle{
		ID:      id,
		Pos:     pos,
		PrevPos: pos,
		InvMass: invMass,
		Radius:  radius,
	})
	return id
}

// Pin fixes a particle in place (infinite mass).
func (sb *SoftBody) Pin(i int) {
	if i < 0 || i >= len(sb.Particles) {
		return
	}
	sb.Particles[i].Pinned = true
	sb.Particles[i].InvMass = 0
}

func (sb *SoftBody) Unpin(i int, mass float64) {
	if i < 0 || i >= len(sb.Particles) {
		return
	}
	sb.Particles[i].Pinned = false
	if mass > 0 {
		sb.Particles[i].InvMass = 1 / mass
	}
}

// Connect links two particles at their current distance.
func (sb *SoftBody) Connect(a, b int, stiffness, breakThreshold float64) {
	sb.connectKind(a, b, stiffness, breakThreshold, LinkStructural)
}

func (sb *SoftBody) connectKind(a, b int, stiffness, breakThreshold float64, kind LinkKind) {
	if a < 0 || a >= len(sb.Particles) || b < 0 || b >= len(sb.Particles) || a == b {
		return
	}
	sb.Links = append(sb.Links, Link{
		A:              a,
		B:              b,
		RestLength:     sb.Particles[a].Pos.Distance(sb.Particles[b].Pos),
		Stiffness:      stiffness,
		BreakThreshold: breakThreshold,
		Kind:           kind,
	})
}

// ApplyAcceleration accumulates an acceleration on every particle,
// typically gravity or a force field divided by mass.
func (sb *SoftBody) ApplyAcceleration(accel Vector) {
	for i := range sb.Particles {
		if sb.Particles[i].Pinned {
			continue
		}
		sb.Particles[i].Accel = sb.Particles[i].Accel.Add(accel)
	}
}

// Integrate advances every particle one position-Verlet step:
// newPos = pos + damping·(pos - prevPos) + accel·dt². Accumulated
// acceleration is cleared afterwards.
func (sb *SoftBody) Integrate(dt float64) {
	dt2 := dt * dt
	for i := range sb.Particles {
		p := &sb.Particles[i]
		if p.Pinned {
			p.Accel = Vector{}
			continue
		}
		next := p.Pos.Add(p.Pos.Sub(p.PrevPos).Mult(sb.Damping)).Add(p.Accel.Mult(dt2))
		p.PrevPos = p.Pos
		p.Pos = next
		p.Accel = Vector{}
	}
}

// SolveLinks runs one relaxation pass over all unbroken links. A link
// stretched past RestLength·BreakThreshold snaps permanently; otherwise
// half the positional error, scaled by stiffness, is distributed between
// the pair by inverse mass share. Coincident particles are skipped.
func (sb *SoftBody) SolveLinks() {
	for i := range sb.Links {
		link := &sb.Links[i]
		if link.Broken {
			continue
		}
		pa := &sb.Particles[link.A]
		pb := &sb.Particles[link.B]

		delta := pb.Pos.Sub(pa.Pos)
		dist := delta.Length()
		if dist == 0 {
			continue
		}
		if link.BreakThreshold > 0 && dist > link.RestLength*link.BreakThreshold {
			link.Broken = true
			continue
		}

		invMassSum := pa.InvMass + pb.InvMass
		if invMassSum == 0 {
			continue
		}
		correction := delta.Mult((dist - link.RestLength) / dist * link.Stiffness * 0.5)
		pa.Pos = pa.Pos.Add(correction.Mult(pa.InvMass / invMassSum))
		pb.Pos = pb.Pos.Sub(correction.Mult(pb.InvMass / invMassSum))
	}
}

// BrokenLinks returns the indices of links that have snapped.
func (sb *SoftBody) BrokenLinks() []int {
	var broken []int
	for i := range sb.Links {
		if sb.Links[i].Broken {
			broken = append(broken, i)
		}
	}
	return broken
}
