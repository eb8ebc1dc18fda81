package physics

import "testing"

func TestCloth_GridTopology(t *testing.T) {
	cloth := NewCloth("c", ClothDef{
		Cols: 4, Rows: 3, Spacing: 10,
		ParticleMass:        1,
		StructuralStiffness: 1,
		ShearStiffness:      0.5,
		BendStiffness:       0.25,
	})

	if len(cloth.Particles) != 12 {
		t.Fatalf("particles: got %d want 12", len(cloth.Particles))
	}
	// Row-major layout at uniform spacing.
	if cloth.Particles[5].Pos != (Vector{10, 10}) {
		t.Errorf("particle (1,1) at %v", cloth.Particles[5].Pos)
	}

	var structural, shear, bend int
	for i := range cloth.Links {
		switch cloth.Links[i].Kind {
		case LinkStructural:
			structural++
		case LinkShear:
			shear++
		case LinkBend:
			bend++
		}
	}
	// 4x3: horizontal 3·3, vertical 4·2.
	if structural != 17 {
		t.Errorf("structural links: got %d want 17", structural)
	}
	// Diagonals both ways between adjacent rows: 2·3·2.
	if shear != 12 {
		t.Errorf("shear links: got %d want 12", shear)
	}
	// Skip-one horizontal 2·3, vertical 4·1, with doubled rest length.
	if bend != 10 {
		t.Errorf("bend links: got %d want 10", bend)
	}
	for i := range cloth.Links {
		link := &cloth.Links[i]
		if link.Kind == LinkBend && !almost(link.RestLength, 20, 1e-9) {
			t.Errorf("bend rest length: got %v want 20", link.RestLength)
		}
	}
}

func TestCloth_ZeroStiffnessSkipsLinkSets(t *testing.T) {
	cloth := NewCloth("c", ClothDef{Cols: 3, Rows: 3, Spacing: 10, StructuralStiffness: 1})
	for i := range cloth.Links {
		if cloth.Links[i].Kind != LinkStructural {
			t.Fatalf("unexpected %v link with zero shear/bend stiffness", cloth.Links[i].Kind)
		}
	}
}

func TestCloth_HangsFromPinnedRow(t *testing.T) {
	cfg := DefaultConfig()
	eng := NewEngine(cfg)
	defer eng.Dispose()

	err := eng.AddCloth(NewCloth("curtain", ClothDef{
		Cols: 5, Rows: 5, Spacing: 10,
		Origin:              Vector{0, 0},
		Pinned:              []int{0, 1, 2, 3, 4},
		ParticleMass:        1,
		StructuralStiffness: 0.9,
		ShearStiffness:      0.5,
	}))
	if err != nil {
		t.Fatal(err)
	}

	// Bottom row falls under gravity, monotonically at first.
	prev := 40.0
	for frame := 1; frame <= 6; frame++ {
		state, err := eng.EvaluateFrame(frame)
		if err != nil {
			t.Fatal(err)
		}
		cs, ok := state.Cloth("curtain")
		if !ok {
			t.Fatal("cloth missing from state")
		}
		bottomLeft := cs.Particles[20]
		if bottomLeft.Y <= prev {
			t.Fatalf("frame %d: bottom row not sagging (%v <= %v)", frame, bottomLeft.Y, prev)
		}
		prev = bottomLeft.Y
	}

	// Top row never moves.
	state, err := eng.EvaluateFrame(6)
	if err != nil {
		t.Fatal(err)
	}
	cs, _ := state.Cloth("curtain")
	for col := 0; col < 5; col++ {
		if cs.Particles[col] != (Vector{float64(col) * 10, 0}) {
			t.Errorf("pinned particle %d moved to %v", col, cs.Particles[col])
		}
	}
	// Untearable cloth stays whole.
	if len(cs.Torn) != 0 {
		t.Errorf("cloth tore with zero tear threshold: %v", cs.Torn)
	}
}

func TestCloth_TornLinksReportGridCoords(t *testing.T) {
	cloth := NewCloth("c", ClothDef{
		Cols: 3, Rows: 2, Spacing: 10,
		StructuralStiffness: 1,
		TearThreshold:       1.5,
	})

	// Drag the particle at (1, 2) far away; every link touching it snaps.
	cloth.Particles[5].Pos = Vector{500, 500}
	cloth.SolveLinks()

	torn := cloth.TornLinks()
	if len(torn) == 0 {
		t.Fatal("expected torn links")
	}
	for _, tl := range torn {
		if tl.Row < 0 || tl.Row >= 2 || tl.Col < 0 || tl.Col >= 3 {
			t.Errorf("torn link outside grid: %+v", tl)
		}
	}
}
