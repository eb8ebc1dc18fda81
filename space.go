package physics

// Space owns the rigid bodies and joints. Bodies live in an insertion
// ordered slice with an id index on the side, so every simulation pass
// visits them in the same order; determinism depends on it.
type Space struct {
	bodies []*Body
	index  map[string]int
	joints []*PivotJoint
}

func NewSpace() *Space {
	return &Space{index: map[string]int{}}
}

func (space *Space) AddBody(body *Body) *Body {
	if i, ok := space.index[body.ID]; ok {
		space.bodies[i] = body
		return body
	}
	space.index[body.ID] = len(space.bodies)
	space.bodies = append(space.bodies, body)
	return body
}

func (space *Space) RemoveBody(id string) {
	i, ok := space.index[id]
	if !ok {
		return
	}
	body := space.bodies[i]
	space.bodies = append(space.bodies[:i], space.bodies[i+1:]...)
	delete(space.index, id)
	for j := i; j < len(space.bodies); j++ {
		space.index[space.bodies[j].ID] = j
	}

	// Joints referencing the removed body go with it.
	kept := space.joints[:0]
	for _, joint := range space.joints {
		if joint.BodyA != body && joint.BodyB != body {
			kept = append(kept, joint)
		}
	}
	space.joints = kept
}

// Body looks up a body by id; reads of unknown ids are not an error.
func (space *Space) Body(id string) (*Body, bool) {
	i, ok := space.index[id]
	if !ok {
		return nil, false
	}
	return space.bodies[i], true
}

func (space *Space) EachBody(f func(*Body)) {
	for _, body := range space.bodies {
		f(body)
	}
}

func (space *Space) Bodies() []*Body {
	return space.bodies
}

func (space *Space) AddJoint(joint *PivotJoint) *PivotJoint {
	space.joints = append(space.joints, joint)
	return joint
}

func (space *Space) RemoveJoint(joint *PivotJoint) {
	for i, j := range space.joints {
		if j == joint {
			space.joints = append(space.joints[:i], space.joints[i+1:]...)
			return
		}
	}
}

// Step advances the rigid side one fixed timestep: integrate, then run the
// configured number of detect/resolve/joint iterations, then update sleep
// timers. Gravity and force fields are expected to have been accumulated
// into the bodies already. Returns the contacts of the final iteration.
func (space *Space) Step(cfg *Config) []Contact {
	dt := cfg.TimeStep

	for _, body := range space.bodies {
		body.Integrate(dt)
	}

	var contacts []Contact
	for iter := 0; iter < cfg.VelocityIterations; iter++ {
		contacts = findContacts(space.bodies)
		for i := range contacts {
			resolveContact(&contacts[i], cfg.CollisionSlop, cfg.CollisionBias)
		}
		for _, joint := range space.joints {
			joint.solve(dt, cfg.CollisionBias)
		}
	}

	for _, body := range space.bodies {
		body.UpdateSleep(dt, cfg.SleepSpeedThreshold, cfg.SleepTimeThreshold)
	}
	return contacts
}
