package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrMissingParentBone is returned when a bone names a parent that is not
// part of the ragdoll. This is a configuration error and surfaces
// immediately instead of being defaulted away.
var ErrMissingParentBone = errors.New("physics: missing parent bone")

// Bone describes one segment of a ragdoll skeleton. Parent is the id of
// the parent bone, empty for the root. RestAngle is the bone's build-time
// angle relative to its parent; MinAngle/MaxAngle limit the joint's travel
// around it during simulation.
type Bone struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Parent    string  `yaml:"parent,omitempty"`
	Length    float64 `yaml:"length"`
	Width     float64 `yaml:"width"`
	Mass      float64 `yaml:"mass"`
	RestAngle float64 `yaml:"restAngle"`
	MinAngle  float64 `yaml:"minAngle"`
	MaxAngle  float64 `yaml:"maxAngle"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
}

// RagdollConfig is the expanded description the builder produces.
type RagdollConfig struct {
	ID       string
	Position Vector
	Rotation float64
	Bones    []Bone
	Material Material
	// Group 0 means the engine assigns a fresh negative group on AddRagdoll
	// so the bones never self-collide.
	Group          int32
	LinearDamping  float64
	AngularDamping float64
	SelfCollide    bool
}

// BonePlacement is a bone resolved to its world-space body description.
type BonePlacement struct {
	Bone     Bone
	BodyID   string
	Position Vector
	Angle    float64
}

// BoneJoint is the pivot joint description between a parent and child
// bone, with anchors in each body's local frame. The angle limits are
// deviations from RestAngle, the relative angle the skeleton was built at.
type BoneJoint struct {
	ParentBodyID string
	ChildBodyID  string
	AnchorA      Vector
	AnchorB      Vector
	RestAngle    float64
	MinAngle     float64
	MaxAngle     float64
	Stiffness    float64
	Damping      float64
	MaxTorque    float64
}

// RagdollBuilder accumulates bones and produces a RagdollConfig.
type RagdollBuilder struct {
	cfg RagdollConfig
}

func NewRagdollBuilder(id string, position Vector) *RagdollBuilder {
	return &RagdollBuilder{cfg: RagdollConfig{
		ID:             id,
		Position:       position,
		Material:       Material{Restitution: 0.1, Friction: 0.6},
		LinearDamping:  0.1,
		AngularDamping: 0.2,
	}}
}

func (b *RagdollBuilder) Rotation(radians float64) *RagdollBuilder {
	b.cfg.Rotation = radians
	return b
}

func (b *RagdollBuilder) Material(m Material) *RagdollBuilder {
	b.cfg.Material = m
	return b
}

func (b *RagdollBuilder) SelfCollide() *RagdollBuilder {
	b.cfg.SelfCollide = true
	return b
}

func (b *RagdollBuilder) Bone(bone Bone) *RagdollBuilder {
	b.cfg.Bones = append(b.cfg.Bones, bone)
	return b
}

// Humanoid adds the standard preset skeleton scaled to the given total
// height and mass.
func (b *RagdollBuilder) Humanoid(height, mass float64) *RagdollBuilder {
	b.cfg.Bones = append(b.cfg.Bones, HumanoidBones(height, mass)...)
	return b
}

// Build validates the bone tree. Every non-root bone must reference a bone
// that exists, and exactly one bone must be the root.
func (b *RagdollBuilder) Build() (*RagdollConfig, error) {
	ids := map[string]bool{}
	for _, bone := range b.cfg.Bones {
		ids[bone.ID] = true
	}
	roots := 0
	for _, bone := range b.cfg.Bones {
		if bone.Parent == "" {
			roots++
			continue
		}
		if !ids[bone.Parent] {
			return nil, fmt.Errorf("%w: bone %q references %q", ErrMissingParentBone, bone.ID, bone.Parent)
		}
	}
	if roots != 1 {
		return nil, fmt.Errorf("physics: ragdoll %q needs exactly one root bone, has %d", b.cfg.ID, roots)
	}
	cfg := b.cfg
	return &cfg, nil
}

// HumanoidBones returns the preset skeleton: a torso root with a head, two
// two-segment arms and two two-segment legs, masses split anatomically.
// Angles are screen space with Y down; the torso points up from the
// ragdoll position, limbs hang back down from its distal end.
func HumanoidBones(height, mass float64) []Bone {
	h := height
	m := mass
	up := -math.Pi / 2
	return []Bone{
		{ID: "torso", Name: "Torso", Length: 0.30 * h, Width: 0.16 * h, Mass: 0.43 * m,
			RestAngle: up, Stiffness: 1, Damping: 1},
		{ID: "head", Name: "Head", Parent: "torso", Length: 0.16 * h, Width: 0.12 * h, Mass: 0.08 * m,
			MinAngle: -0.6, MaxAngle: 0.6, Stiffness: 0.6, Damping: 1},
		{ID: "upperArmL", Name: "Left Upper Arm", Parent: "torso", Length: 0.15 * h, Width: 0.05 * h, Mass: 0.035 * m,
			RestAngle: math.Pi - 0.35, MinAngle: -1.6, MaxAngle: 1.6, Stiffness: 0.3, Damping: 0.8},
		{ID: "lowerArmL", Name: "Left Lower Arm", Parent: "upperArmL", Length: 0.13 * h, Width: 0.04 * h, Mass: 0.025 * m,
			RestAngle: 0.1, MinAngle: 0, MaxAngle: 2.6, Stiffness: 0.25, Damping: 0.8},
		{ID: "upperArmR", Name: "Right Upper Arm", Parent: "torso", Length: 0.15 * h, Width: 0.05 * h, Mass: 0.035 * m,
			RestAngle: -(math.Pi - 0.35), MinAngle: -1.6, MaxAngle: 1.6, Stiffness: 0.3, Damping: 0.8},
		{ID: "lowerArmR", Name: "Right Lower Arm", Parent: "upperArmR", Length: 0.13 * h, Width: 0.04 * h, Mass: 0.025 * m,
			RestAngle: -0.1, MinAngle: -2.6, MaxAngle: 0, Stiffness: 0.25, Damping: 0.8},
		{ID: "upperLegL", Name: "Left Upper Leg", Parent: "torso", Length: 0.22 * h, Width: 0.07 * h, Mass: 0.115 * m,
			RestAngle: math.Pi - 0.1, MinAngle: -0.9, MaxAngle: 0.9, Stiffness: 0.4, Damping: 1},
		{ID: "lowerLegL", Name: "Left Lower Leg", Parent: "upperLegL", Length: 0.20 * h, Width: 0.06 * h, Mass: 0.06 * m,
			RestAngle: 0.05, MinAngle: -2.4, MaxAngle: 0, Stiffness: 0.3, Damping: 1},
		{ID: "upperLegR", Name: "Right Upper Leg", Parent: "torso", Length: 0.22 * h, Width: 0.07 * h, Mass: 0.115 * m,
			RestAngle: -(math.Pi - 0.1), MinAngle: -0.9, MaxAngle: 0.9, Stiffness: 0.4, Damping: 1},
		{ID: "lowerLegR", Name: "Right Lower Leg", Parent: "upperLegR", Length: 0.20 * h, Width: 0.06 * h, Mass: 0.06 * m,
			RestAngle: -0.05, MinAngle: 0, MaxAngle: 2.4, Stiffness: 0.3, Damping: 1},
	}
}

// motorTorqueScale converts joint stiffness times bone mass into a motor
// torque budget sized for the default 60 fps timestep.
const motorTorqueScale = 1000.0

// expandRagdoll walks the bone tree root-to-leaf once, computing each
// bone's world start point (parent start plus parent length along the
// parent's world angle) and turning every bone into a capsule body at the
// segment midpoint and every parent/child pair into a pivot joint anchored
// at the parent's distal and the child's proximal end.
func expandRagdoll(cfg *RagdollConfig) ([]BonePlacement, []BoneJoint, error) {
	byID := map[string]*Bone{}
	children := map[string][]*Bone{}
	var root *Bone
	for i := range cfg.Bones {
		bone := &cfg.Bones[i]
		byID[bone.ID] = bone
		if bone.Parent == "" {
			root = bone
			continue
		}
		children[bone.Parent] = append(children[bone.Parent], bone)
	}
	if root == nil {
		return nil, nil, fmt.Errorf("physics: ragdoll %q has no root bone", cfg.ID)
	}
	for i := range cfg.Bones {
		bone := &cfg.Bones[i]
		if bone.Parent != "" && byID[bone.Parent] == nil {
			return nil, nil, fmt.Errorf("%w: bone %q references %q", ErrMissingParentBone, bone.ID, bone.Parent)
		}
	}

	type frame struct {
		bone  *Bone
		start Vector
		angle float64
	}

	var placements []BonePlacement
	var joints []BoneJoint

	stack := []frame{{root, cfg.Position, cfg.Rotation + root.RestAngle}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		bone := cur.bone
		dir := ForAngle(cur.angle)
		center := cur.start.Add(dir.Mult(bone.Length / 2))
		end := cur.start.Add(dir.Mult(bone.Length))

		placements = append(placements, BonePlacement{
			Bone:     *bone,
			BodyID:   cfg.ID + "/" + bone.ID,
			Position: center,
			Angle:    cur.angle,
		})

		if bone.Parent != "" {
			parent := byID[bone.Parent]
			joints = append(joints, BoneJoint{
				ParentBodyID: cfg.ID + "/" + parent.ID,
				ChildBodyID:  cfg.ID + "/" + bone.ID,
				AnchorA:      Vector{parent.Length / 2, 0},
				AnchorB:      Vector{-bone.Length / 2, 0},
				RestAngle:    bone.RestAngle,
				MinAngle:     bone.MinAngle,
				MaxAngle:     bone.MaxAngle,
				Stiffness:    bone.Stiffness,
				Damping:      bone.Damping,
				MaxTorque:    bone.Stiffness * bone.Mass * motorTorqueScale,
			})
		}

		// Push children in reverse so they pop in declaration order and
		// placement order stays deterministic.
		kids := children[bone.ID]
		for i := len(kids) - 1; i >= 0; i-- {
			child := kids[i]
			stack = append(stack, frame{child, end, cur.angle + child.RestAngle})
		}
	}

	return placements, joints, nil
}
