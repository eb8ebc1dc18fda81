package physics

import (
	"errors"
	"io"
	"log/slog"
)

// ErrDisposed is returned by every Engine method after Dispose. Calls on a
// disposed engine are lifecycle bugs and fail fast instead of no-opping.
var ErrDisposed = errors.New("physics: engine is disposed")

type ragdollEntry struct {
	id     string
	bones  []string // bone ids, placement order
	bodies []string // body ids, same order
}

// Engine owns every sub-simulator and runs the fixed-step loop. All state
// is owned by one instance and all calls are synchronous; concurrent use
// must be serialized by the caller.
//
// Scrubbing model: EvaluateFrame restores the nearest checkpoint at or
// before the target and replays forward deterministically, so requesting
// frames in any order always produces identical results.
type Engine struct {
	cfg       Config
	space     *Space
	softs     []*SoftBody
	cloths    []*Cloth
	fields    []*Field
	ragdolls  []ragdollEntry
	rng       *Rand
	evaluator Evaluator
	logger    *slog.Logger

	// Entity state as of Add time, the frame-0 baseline for replays.
	initialBodies map[string]bodySnapshot
	initialSofts  map[string]softSnapshot

	checkpoints []checkpoint
	frame       int
	contacts    []Contact

	// groupSeq hands out a distinct negative filter group per ragdoll.
	groupSeq int32

	lastFrame int
	lastState *SimulationState
	disposed  bool
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithEvaluator injects the animation collaborator used to resolve
// animated force field parameters.
func WithEvaluator(ev Evaluator) Option {
	return func(e *Engine) { e.evaluator = ev }
}

func NewEngine(cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		cfg:           cfg,
		space:         NewSpace(),
		rng:           NewRand(cfg.Seed),
		logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
		initialBodies: map[string]bodySnapshot{},
		initialSofts:  map[string]softSnapshot{},
		lastFrame:     -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg
}

// SetConfig replaces the space configuration and invalidates all cached
// work, forcing a full deterministic replay on the next query.
func (e *Engine) SetConfig(cfg Config) error {
	if e.disposed {
		return ErrDisposed
	}
	e.cfg = cfg.withDefaults()
	e.invalidate("config changed")
	return nil
}

func (e *Engine) SetEvaluator(ev Evaluator) error {
	if e.disposed {
		return ErrDisposed
	}
	e.evaluator = ev
	e.invalidate("evaluator changed")
	return nil
}

// AddBody creates a rigid body from the definition and registers it.
func (e *Engine) AddBody(id string, def BodyDef) (*Body, error) {
	if e.disposed {
		return nil, ErrDisposed
	}
	body := NewBody(id, def)
	e.space.AddBody(body)
	e.initialBodies[id] = snapshotBody(body)
	e.invalidate("body added")
	return body, nil
}

func (e *Engine) RemoveBody(id string) error {
	if e.disposed {
		return ErrDisposed
	}
	e.space.RemoveBody(id)
	delete(e.initialBodies, id)
	e.invalidate("body removed")
	return nil
}

// Body looks up a live rigid body; unknown ids are not an error.
func (e *Engine) Body(id string) (*Body, bool) {
	if e.disposed {
		return nil, false
	}
	return e.space.Body(id)
}

func (e *Engine) AddSoftBody(sb *SoftBody) error {
	if e.disposed {
		return ErrDisposed
	}
	e.softs = append(e.softs, sb)
	e.initialSofts[sb.ID] = snapshotSoft(sb)
	e.invalidate("soft body added")
	return nil
}

func (e *Engine) AddCloth(c *Cloth) error {
	if e.disposed {
		return ErrDisposed
	}
	e.cloths = append(e.cloths, c)
	e.initialSofts[c.ID] = snapshotSoft(c.SoftBody)
	e.invalidate("cloth added")
	return nil
}

func (e *Engine) AddField(f *Field) error {
	if e.disposed {
		return ErrDisposed
	}
	e.fields = append(e.fields, f)
	e.invalidate("field added")
	return nil
}

func (e *Engine) RemoveField(id string) error {
	if e.disposed {
		return ErrDisposed
	}
	for i, f := range e.fields {
		if f.ID == id {
			e.fields = append(e.fields[:i], e.fields[i+1:]...)
			break
		}
	}
	e.invalidate("field removed")
	return nil
}

// AddRagdoll expands the config into capsule bodies and pivot joints and
// registers the bone to body mapping for state reconstruction.
func (e *Engine) AddRagdoll(cfg *RagdollConfig) error {
	if e.disposed {
		return ErrDisposed
	}
	placements, joints, err := expandRagdoll(cfg)
	if err != nil {
		return err
	}

	if cfg.Group == 0 && !cfg.SelfCollide {
		e.groupSeq--
		cfg.Group = e.groupSeq
	}
	filter := DefaultFilter()
	filter.Group = cfg.Group
	if cfg.SelfCollide {
		filter.Group = 0
	}

	entry := ragdollEntry{id: cfg.ID}
	for _, place := range placements {
		body := NewBody(place.BodyID, BodyDef{
			Type:           BodyDynamic,
			Layer:          cfg.ID,
			Mass:           place.Bone.Mass,
			Shape:          NewCapsuleShape(place.Bone.Width/2, place.Bone.Length),
			Material:       cfg.Material,
			Filter:         filter,
			Position:       place.Position,
			Angle:          place.Angle,
			LinearDamping:  cfg.LinearDamping,
			AngularDamping: cfg.AngularDamping,
		})
		e.space.AddBody(body)
		e.initialBodies[body.ID] = snapshotBody(body)
		entry.bones = append(entry.bones, place.Bone.ID)
		entry.bodies = append(entry.bodies, place.BodyID)
	}
	for _, j := range joints {
		parent, _ := e.space.Body(j.ParentBodyID)
		child, _ := e.space.Body(j.ChildBodyID)
		e.space.AddJoint(&PivotJoint{
			BodyA:          parent,
			BodyB:          child,
			AnchorA:        j.AnchorA,
			AnchorB:        j.AnchorB,
			RestAngle:      j.RestAngle,
			MinAngle:       j.MinAngle,
			MaxAngle:       j.MaxAngle,
			LimitEnabled:   true,
			Stiffness:      j.Stiffness,
			Damping:        j.Damping,
			MaxMotorTorque: j.MaxTorque,
		})
	}

	e.ragdolls = append(e.ragdolls, entry)
	e.invalidate("ragdoll added")
	return nil
}

// Rand exposes the deterministic random source, for callers layering
// procedural variation on top of the simulation.
func (e *Engine) Rand() *Rand {
	return e.rng
}

// EvaluateFrame returns the simulation state at the target frame. Repeated
// queries for the same frame return the cached state without recomputing;
// any other target restores the nearest checkpoint at or before it and
// replays forward one fixed step at a time.
func (e *Engine) EvaluateFrame(target int) (*SimulationState, error) {
	if e.disposed {
		return nil, ErrDisposed
	}
	if target < 0 {
		target = 0
	}
	if e.lastState != nil && e.lastFrame == target {
		return e.lastState, nil
	}

	var best *checkpoint
	for i := range e.checkpoints {
		cp := &e.checkpoints[i]
		if cp.Frame <= target && (best == nil || cp.Frame > best.Frame) {
			best = cp
		}
	}
	if best != nil {
		e.restoreCheckpoint(best)
	} else {
		e.restoreInitial()
		e.maybeCheckpoint()
	}

	replayed := target - e.frame
	for e.frame < target {
		e.frame++
		e.stepOnce(e.frame)
		e.maybeCheckpoint()
	}
	if replayed > 0 {
		e.logger.Debug("replayed frames", "target", target, "steps", replayed)
	}

	state := e.buildState()
	e.lastFrame = target
	e.lastState = state
	return state, nil
}

// Reset rewinds the engine to its frame-0 baseline and drops all cached
// work. The RNG returns to the initial seed.
func (e *Engine) Reset() error {
	if e.disposed {
		return ErrDisposed
	}
	e.restoreInitial()
	e.invalidate("reset")
	return nil
}

// Dispose releases the engine. Idempotent; all later calls fail with
// ErrDisposed.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.space = nil
	e.softs = nil
	e.cloths = nil
	e.fields = nil
	e.ragdolls = nil
	e.checkpoints = nil
	e.lastState = nil
}

func (e *Engine) invalidate(reason string) {
	e.checkpoints = nil
	e.lastState = nil
	e.lastFrame = -1
	e.contacts = nil
	e.logger.Debug("cache invalidated", "reason", reason)
}

// restoreInitial rewinds every entity to its Add-time state and the RNG to
// the initial seed; the live state becomes frame 0.
func (e *Engine) restoreInitial() {
	e.space.EachBody(func(body *Body) {
		if snap, ok := e.initialBodies[body.ID]; ok {
			snap.restore(body)
		}
	})
	for _, sb := range e.softs {
		if snap, ok := e.initialSofts[sb.ID]; ok {
			snap.restore(sb)
		}
	}
	for _, c := range e.cloths {
		if snap, ok := e.initialSofts[c.ID]; ok {
			snap.restore(c.SoftBody)
		}
	}
	e.rng.Reseed(e.cfg.Seed)
	e.frame = 0
	e.contacts = nil
}

func (e *Engine) restoreCheckpoint(cp *checkpoint) {
	for _, snap := range cp.Bodies {
		if body, ok := e.space.Body(snap.ID); ok {
			snap.restore(body)
		}
	}
	for i, sb := range e.softs {
		if i < len(cp.Softs) {
			cp.Softs[i].restore(sb)
		}
	}
	for i, c := range e.cloths {
		if i < len(cp.Cloths) {
			cp.Cloths[i].restore(c.SoftBody)
		}
	}
	e.rng.SetState(cp.RNGState)
	e.frame = cp.Frame
	e.contacts = nil
	e.logger.Debug("checkpoint restored", "frame", cp.Frame)
}

func (e *Engine) maybeCheckpoint() {
	if e.frame%e.cfg.CheckpointInterval != 0 {
		return
	}
	for i := range e.checkpoints {
		if e.checkpoints[i].Frame == e.frame {
			return
		}
	}
	cp := checkpoint{Frame: e.frame, RNGState: e.rng.State()}
	e.space.EachBody(func(body *Body) {
		cp.Bodies = append(cp.Bodies, snapshotBody(body))
	})
	for _, sb := range e.softs {
		cp.Softs = append(cp.Softs, snapshotSoft(sb))
	}
	for _, c := range e.cloths {
		cp.Cloths = append(cp.Cloths, snapshotSoft(c.SoftBody))
	}
	e.checkpoints = append(e.checkpoints, cp)
	e.logger.Debug("checkpoint recorded", "frame", e.frame)
}

// stepOnce advances the whole simulation one fixed timestep: gravity and
// force fields accumulate on rigid bodies, the rigid side integrates and
// resolves, then the Verlet side integrates and relaxes its constraints.
func (e *Engine) stepOnce(frame int) {
	dt := e.cfg.TimeStep
	gravityMag := e.cfg.Gravity.Length()

	e.space.EachBody(func(body *Body) {
		if body.Movable() && !body.IsSleeping() {
			body.ApplyForce(e.cfg.Gravity.Mult(body.Mass()))
		}
	})
	for _, f := range e.fields {
		if !f.active(frame) {
			continue
		}
		e.space.EachBody(func(body *Body) {
			f.applyToBody(body, frame, dt, e.evaluator, e.rng, gravityMag)
		})
	}

	e.contacts = e.space.Step(&e.cfg)

	for _, sb := range e.softs {
		e.stepSoft(sb, frame, dt)
	}
	for _, c := range e.cloths {
		e.stepSoft(c.SoftBody, frame, dt)
	}
}

func (e *Engine) stepSoft(sb *SoftBody, frame int, dt float64) {
	sb.ApplyAcceleration(e.cfg.Gravity)
	for _, f := range e.fields {
		if f.active(frame) {
			f.applyToSoftBody(sb, frame, e.evaluator)
		}
	}
	sb.Integrate(dt)
	for i := 0; i < e.cfg.PositionIterations; i++ {
		sb.SolveLinks()
	}
}

func (e *Engine) buildState() *SimulationState {
	state := &SimulationState{Frame: e.frame}

	e.space.EachBody(func(body *Body) {
		state.RigidBodies = append(state.RigidBodies, BodyState{
			ID:              body.ID,
			Layer:           body.Layer,
			Position:        body.Position(),
			Angle:           body.Angle(),
			Velocity:        body.Velocity(),
			AngularVelocity: body.AngularVelocity(),
			Sleeping:        body.IsSleeping(),
		})
	})

	for _, sb := range e.softs {
		s := SoftBodyState{ID: sb.ID, Layer: sb.Layer, Broken: sb.BrokenLinks()}
		for i := range sb.Particles {
			s.Particles = append(s.Particles, sb.Particles[i].Pos)
		}
		state.SoftBodies = append(state.SoftBodies, s)
	}

	for _, c := range e.cloths {
		s := ClothState{ID: c.ID, Cols: c.Cols, Rows: c.Rows, Torn: c.TornLinks()}
		for i := range c.Particles {
			s.Particles = append(s.Particles, c.Particles[i].Pos)
		}
		state.Cloths = append(state.Cloths, s)
	}

	for _, entry := range e.ragdolls {
		r := RagdollState{ID: entry.id}
		for i, bodyID := range entry.bodies {
			body, ok := e.space.Body(bodyID)
			if !ok {
				continue
			}
			r.Bones = append(r.Bones, RagdollBoneState{
				BoneID:   entry.bones[i],
				BodyID:   bodyID,
				Position: body.Position(),
				Angle:    body.Angle(),
			})
		}
		state.Ragdolls = append(state.Ragdolls, r)
	}

	for i := range e.contacts {
		con := &e.contacts[i]
		state.Contacts = append(state.Contacts, ContactState{
			BodyA:  con.BodyA.ID,
			BodyB:  con.BodyB.ID,
			Normal: con.Normal,
			Depth:  con.Depth,
			Point:  con.Point,
			Sensor: con.Sensor,
		})
	}

	return state
}
