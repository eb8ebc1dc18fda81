package physics

// ClothDef describes a rectangular cloth grid. Pinned holds row-major
// particle indices (e.g. 0..Cols-1 for the whole top row). A zero
// TearThreshold makes the cloth untearable.
type ClothDef struct {
	Cols    int     `yaml:"cols"`
	Rows    int     `yaml:"rows"`
	Spacing float64 `yaml:"spacing"`
	Origin  Vector  `yaml:"-"`
	Pinned  []int   `yaml:"pinned"`

	ParticleMass        float64 `yaml:"particleMass"`
	StructuralStiffness float64 `yaml:"structuralStiffness"`
	ShearStiffness      float64 `yaml:"shearStiffness"`
	BendStiffness       float64 `yaml:"bendStiffness"`
	TearThreshold       float64 `yaml:"tearThreshold"`
	Damping             float64 `yaml:"damping"`
}

// Cloth is a grid-topology soft body. The particle/link machinery is shared
// with SoftBody; the grid metadata exists so torn links can be reported by
// (row, col) for visual effects.
type Cloth struct {
	*SoftBody
	Cols    int
	Rows    int
	Spacing float64
}

// TornLink locates a snapped constraint on the grid.
type TornLink struct {
	Row  int
	Col  int
	Kind LinkKind
}

// NewCloth generates the grid particles row-major at uniform spacing and
// the three constraint sets: structural to the right and below neighbor,
// shear to both diagonals, bend skipping one particle with doubled rest
// length. Shear and bend sets are only generated for positive stiffness.
func NewCloth(id string, def ClothDef) *Cloth {
	sb := NewSoftBody(id)
	if def.Damping > 0 {
		sb.Damping = def.Damping
	}
	mass := def.ParticleMass
	if mass <= 0 {
		mass = 1
	}

	for row := 0; row < def.Rows; row++ {
		for col := 0; col < def.Cols; col++ {
			pos := def.Origin.Add(Vector{float64(col) * def.Spacing, float64(row) * def.Spacing})
			sb.AddParticle(pos, mass, def.Spacing/2)
		}
	}
	for _, i := range def.Pinned {
		sb.Pin(i)
	}

	at := func(row, col int) int { return row*def.Cols + col }

	for row := 0; row < def.Rows; row++ {
		for col := 0; col < def.Cols; col++ {
			if col+1 < def.Cols {
				sb.connectKind(at(row, col), at(row, col+1), def.StructuralStiffness, def.TearThreshold, LinkStructural)
			}
			if row+1 < def.Rows {
				sb.connectKind(at(row, col), at(row+1, col), def.StructuralStiffness, def.TearThreshold, LinkStructural)
			}
			if def.ShearStiffness > 0 && row+1 < def.Rows {
				if col+1 < def.Cols {
					sb.connectKind(at(row, col), at(row+1, col+1), def.ShearStiffness, def.TearThreshold, LinkShear)
				}
				if col > 0 {
					sb.connectKind(at(row, col), at(row+1, col-1), def.ShearStiffness, def.TearThreshold, LinkShear)
				}
			}
			if def.BendStiffness > 0 {
				if col+2 < def.Cols {
					sb.connectKind(at(row, col), at(row, col+2), def.BendStiffness, def.TearThreshold, LinkBend)
				}
				if row+2 < def.Rows {
					sb.connectKind(at(row, col), at(row+2, col), def.BendStiffness, def.TearThreshold, LinkBend)
				}
			}
		}
	}

	return &Cloth{SoftBody: sb, Cols: def.Cols, Rows: def.Rows, Spacing: def.Spacing}
}

// TornLinks reports every broken constraint as a grid coordinate, keyed by
// the link's first particle.
func (c *Cloth) TornLinks() []TornLink {
	var torn []TornLink
	for i := range c.Links {
		link := &c.Links[i]
		if !link.Broken {
			continue
		}
		torn = append(torn, TornLink{
			Row:  link.A / c.Cols,
			Col:  link.A % c.Cols,
			Kind: link.Kind,
		})
	}
	return torn
}
