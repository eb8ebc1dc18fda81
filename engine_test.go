package physics

import (
	"errors"
	"reflect"
	"testing"
)

// bounceScene is a small deterministic scene: two dynamic bodies dropping
// onto a static floor under default gravity.
func bounceScene(t *testing.T) *Engine {
	t.Helper()
	eng := NewEngine(DefaultConfig())
	if _, err := eng.AddBody("floor", BodyDef{
		Type:     BodyStatic,
		Position: Vector{0, 300},
		Shape:    NewBoxShape(1000, 20),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.AddBody("ball", BodyDef{
		Type:     BodyDynamic,
		Position: Vector{0, 0},
		Mass:     1,
		Shape:    NewCircleShape(10),
		Material: Material{Restitution: 0.4, Friction: 0.5},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.AddBody("crate", BodyDef{
		Type:     BodyDynamic,
		Position: Vector{40, -80},
		Mass:     2,
		Shape:    NewBoxShape(20, 20),
		Material: Material{Restitution: 0.1, Friction: 0.7},
	}); err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestEngine_ScrubOrderIndependent(t *testing.T) {
	sequential := bounceScene(t)
	defer sequential.Dispose()
	var want *SimulationState
	for frame := 0; frame <= 90; frame += 10 {
		state, err := sequential.EvaluateFrame(frame)
		if err != nil {
			t.Fatal(err)
		}
		if frame == 90 {
			want = state
		}
	}

	scrubbed := bounceScene(t)
	defer scrubbed.Dispose()
	for _, frame := range []int{90, 3, 45, 90, 7, 90} {
		state, err := scrubbed.EvaluateFrame(frame)
		if err != nil {
			t.Fatal(err)
		}
		if frame != 90 {
			continue
		}
		if !reflect.DeepEqual(state, want) {
			t.Fatalf("frame 90 differs after scrubbing order %v", frame)
		}
	}
}

func TestEngine_RNGStateSurvivesScrub(t *testing.T) {
	// Zero gravity so the body stays exactly at the blast center, forcing
	// the explosion through the random-direction path.
	mk := func() *Engine {
		cfg := DefaultConfig()
		cfg.Gravity = Vector{}
		eng := NewEngine(cfg)
		if _, err := eng.AddBody("b", BodyDef{
			Type:  BodyDynamic,
			Mass:  1,
			Shape: NewCircleShape(5),
		}); err != nil {
			t.Fatal(err)
		}
		if err := eng.AddField(&Field{
			ID: "boom", Kind: FieldExplosion, Enabled: true, EndFrame: -1,
			TriggerFrame: 35,
			Strength:     StaticScalar(200),
			Center:       StaticVec2(Vector{0, 0}),
			Radius:       StaticScalar(400),
		}); err != nil {
			t.Fatal(err)
		}
		return eng
	}

	fresh := mk()
	defer fresh.Dispose()
	want, err := fresh.EvaluateFrame(50)
	if err != nil {
		t.Fatal(err)
	}
	wb, _ := want.RigidBody("b")
	if wb.Velocity == (Vector{}) {
		t.Fatal("explosion never fired")
	}

	// The trigger frame sits between checkpoints (30 and 60): scrubbing
	// back and forward must replay the identical random kick.
	scrubbed := mk()
	defer scrubbed.Dispose()
	for _, frame := range []int{50, 10, 34, 50} {
		state, err := scrubbed.EvaluateFrame(frame)
		if err != nil {
			t.Fatal(err)
		}
		if frame != 50 {
			continue
		}
		gb, _ := state.RigidBody("b")
		if gb.Velocity != wb.Velocity {
			t.Fatalf("explosion kick not reproducible: %v vs %v", gb.Velocity, wb.Velocity)
		}
	}
}

func TestEngine_CollidingPairSeparates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = Vector{}
	eng := NewEngine(cfg)
	defer eng.Dispose()

	// Two equal circles, 15 units apart, closing head-on at 5 each with
	// full restitution.
	mat := Material{Restitution: 1, Friction: 0.001}
	if _, err := eng.AddBody("left", BodyDef{
		Type: BodyDynamic, Mass: 1, Shape: NewCircleShape(10),
		Position: Vector{-7.5, 0}, Velocity: Vector{5, 0}, Material: mat,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.AddBody("right", BodyDef{
		Type: BodyDynamic, Mass: 1, Shape: NewCircleShape(10),
		Position: Vector{7.5, 0}, Velocity: Vector{-5, 0}, Material: mat,
	}); err != nil {
		t.Fatal(err)
	}

	state, err := eng.EvaluateFrame(60)
	if err != nil {
		t.Fatal(err)
	}
	left, _ := state.RigidBody("left")
	right, _ := state.RigidBody("right")

	// The elastic bounce swaps the velocities.
	if !almost(left.Velocity.X, -5, 1e-9) || !almost(right.Velocity.X, 5, 1e-9) {
		t.Errorf("velocities after bounce: %v / %v", left.Velocity, right.Velocity)
	}
	// And after enough frames the pair is fully separated.
	if d := left.Position.Distance(right.Position); d < 20 {
		t.Errorf("circles still overlapping after bounce: distance %v", d)
	}
	if len(state.Contacts) != 0 {
		t.Errorf("contacts still reported after separation: %v", state.Contacts)
	}
}

func TestEngine_SameFrameIsCached(t *testing.T) {
	eng := bounceScene(t)
	defer eng.Dispose()

	first, err := eng.EvaluateFrame(25)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.EvaluateFrame(25)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("repeated query rebuilt the state")
	}
}

func TestEngine_NegativeFrameClamps(t *testing.T) {
	eng := bounceScene(t)
	defer eng.Dispose()

	neg, err := eng.EvaluateFrame(-5)
	if err != nil {
		t.Fatal(err)
	}
	if neg.Frame != 0 {
		t.Errorf("negative target evaluated frame %d", neg.Frame)
	}
}

func TestEngine_MutationInvalidatesAndReplays(t *testing.T) {
	eng := bounceScene(t)
	defer eng.Dispose()

	if _, err := eng.EvaluateFrame(50); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.AddBody("late", BodyDef{
		Type:     BodyDynamic,
		Position: Vector{-60, -10},
		Mass:     1,
		Shape:    NewCircleShape(8),
	}); err != nil {
		t.Fatal(err)
	}

	// Frame 0 now replays from the baseline with the new body at its
	// registered position.
	state, err := eng.EvaluateFrame(0)
	if err != nil {
		t.Fatal(err)
	}
	late, ok := state.RigidBody("late")
	if !ok {
		t.Fatal("added body missing after replay")
	}
	if late.Position != (Vector{-60, -10}) {
		t.Errorf("added body not at baseline position: %v", late.Position)
	}
	ball, _ := state.RigidBody("ball")
	if ball.Position != (Vector{0, 0}) {
		t.Errorf("existing body not rewound: %v", ball.Position)
	}

	// And the whole timeline stays deterministic with the new body.
	a, err := eng.EvaluateFrame(40)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.EvaluateFrame(70); err != nil {
		t.Fatal(err)
	}
	b, err := eng.EvaluateFrame(40)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("frame 40 differs across scrubs after mutation")
	}
}

func TestEngine_ResetRewindsToBaseline(t *testing.T) {
	eng := bounceScene(t)
	defer eng.Dispose()

	if _, err := eng.EvaluateFrame(60); err != nil {
		t.Fatal(err)
	}
	if err := eng.Reset(); err != nil {
		t.Fatal(err)
	}

	state, err := eng.EvaluateFrame(0)
	if err != nil {
		t.Fatal(err)
	}
	ball, _ := state.RigidBody("ball")
	if ball.Position != (Vector{0, 0}) || ball.Velocity != (Vector{}) {
		t.Errorf("reset did not rewind: %+v", ball)
	}
}

func TestEngine_DisposeFailsFast(t *testing.T) {
	eng := bounceScene(t)
	eng.Dispose()
	eng.Dispose() // idempotent

	if _, err := eng.EvaluateFrame(10); !errors.Is(err, ErrDisposed) {
		t.Errorf("EvaluateFrame after Dispose: %v", err)
	}
	if _, err := eng.AddBody("x", BodyDef{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("AddBody after Dispose: %v", err)
	}
	if err := eng.SetConfig(DefaultConfig()); !errors.Is(err, ErrDisposed) {
		t.Errorf("SetConfig after Dispose: %v", err)
	}
	if err := eng.Reset(); !errors.Is(err, ErrDisposed) {
		t.Errorf("Reset after Dispose: %v", err)
	}
	if _, ok := eng.Body("ball"); ok {
		t.Errorf("Body lookup succeeded after Dispose")
	}
}

func TestEngine_RestingBodyFallsAsleep(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	defer eng.Dispose()

	if _, err := eng.AddBody("floor", BodyDef{
		Type:     BodyStatic,
		Position: Vector{0, 300},
		Shape:    NewBoxShape(1000, 20),
	}); err != nil {
		t.Fatal(err)
	}
	// Already resting on the floor, free to sleep, no bounce.
	if _, err := eng.AddBody("ball", BodyDef{
		Type:     BodyDynamic,
		Position: Vector{0, 280.5},
		Mass:     1,
		Shape:    NewCircleShape(10),
		Material: Material{Restitution: 0.001, Friction: 0.5},
		CanSleep: true,
	}); err != nil {
		t.Fatal(err)
	}

	state, err := eng.EvaluateFrame(120)
	if err != nil {
		t.Fatal(err)
	}
	ball, _ := state.RigidBody("ball")
	if !ball.Sleeping {
		t.Fatalf("resting body never slept: %+v", ball)
	}
	if ball.Velocity != (Vector{}) {
		t.Errorf("sleeping body has velocity %v", ball.Velocity)
	}

	// A sleeping body stays put.
	later, err := eng.EvaluateFrame(180)
	if err != nil {
		t.Fatal(err)
	}
	ballLater, _ := later.RigidBody("ball")
	if ballLater.Position != ball.Position {
		t.Errorf("sleeping body drifted: %v -> %v", ball.Position, ballLater.Position)
	}

	// Waking is explicit: an impulse brings it back.
	live, _ := eng.Body("ball")
	live.ApplyImpulse(Vector{50, 0})
	if live.IsSleeping() {
		t.Errorf("impulse did not wake the body")
	}
}
