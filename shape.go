package physics

import "math"

type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
	ShapeCapsule
)

// Shape is a tagged variant over the collision geometries a body can carry.
// Which fields are meaningful depends on Kind: circles use Radius, boxes use
// Width/Height, capsules use Radius and Length.
type Shape struct {
	Kind   ShapeKind
	Radius float64
	Width  float64
	Height float64
	Length float64
}

func NewCircleShape(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

func NewBoxShape(width, height float64) Shape {
	return Shape{Kind: ShapeBox, Width: width, Height: height}
}

func NewCapsuleShape(radius, length float64) Shape {
	return Shape{Kind: ShapeCapsule, Radius: radius, Length: length}
}

// Moment computes the moment of inertia for the shape at the given mass,
// about the shape's center.
func (s Shape) Moment(mass float64) float64 {
	switch s.Kind {
	case ShapeCircle:
		return mass * s.Radius * s.Radius / 2
	case ShapeBox:
		return mass * (s.Width*s.Width + s.Height*s.Height) / 12
	case ShapeCapsule:
		// Rectangular core plus two semicircular caps, mass split by area,
		// caps shifted out by the parallel axis theorem.
		r := s.Radius
		l := s.Length
		coreArea := 2 * r * l
		capArea := math.Pi * r * r
		total := coreArea + capArea
		if total == 0 {
			return 0
		}
		coreMass := mass * coreArea / total
		capMass := mass * capArea / total
		coreMoment := coreMass * (l*l + 4*r*r) / 12
		d := l / 2
		capMoment := capMass * (r*r/2 + d*d)
		return coreMoment + capMoment
	}
	return 0
}

// BoundingRadius is the nominal radius used when a shape pair has no exact
// narrow phase test and both shapes are treated as circles.
func (s Shape) BoundingRadius() float64 {
	switch s.Kind {
	case ShapeCircle:
		return s.Radius
	case ShapeBox:
		return math.Sqrt(s.Width*s.Width+s.Height*s.Height) / 2
	case ShapeCapsule:
		return s.Length/2 + s.Radius
	}
	return 0
}

type Material struct {
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
}

func DefaultMaterial() Material {
	return Material{Restitution: 0.2, Friction: 0.5}
}

// Filter controls which body pairs are tested for collision.
// A shared nonzero group overrides the category/mask check: positive groups
// always collide, negative groups never do. Composite objects such as
// ragdolls use a shared negative group to disable self collision.
type Filter struct {
	Category uint32 `yaml:"category"`
	Mask     uint32 `yaml:"mask"`
	Group    int32  `yaml:"group"`
}

func DefaultFilter() Filter {
	return Filter{Category: 1, Mask: ^uint32(0), Group: 0}
}

// Reject reports whether the pair should be skipped by the broad phase.
func (f Filter) Reject(other Filter) bool {
	if f.Group != 0 && f.Group == other.Group {
		return f.Group < 0
	}
	return f.Mask&other.Category == 0 || other.Mask&f.Category == 0
}

// Response selects how a body reacts to contacts.
type Response int

const (
	// RespondCollide applies full impulse resolution.
	RespondCollide Response = iota
	// RespondSensor reports contacts but applies no impulses.
	RespondSensor
	// RespondNone skips the pair entirely.
	RespondNone
)
