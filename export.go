package physics

import (
	"fmt"
	"math"
)

// ExportOptions selects the frame range and properties to bake into
// keyframes for the rendering collaborator.
type ExportOptions struct {
	StartFrame int
	EndFrame   int
	FrameStep  int
	// Properties to export; defaults to position and rotation.
	Properties []string
	// Interpolation tag stamped on every emitted keyframe.
	Interpolation string
	Simplify      bool
	// SimplifyTolerance is in world units for position, radians for
	// rotation.
	SimplifyTolerance float64
}

const (
	PropertyPosition = "position"
	PropertyRotation = "rotation"
)

// Keyframe is one baked sample. Value holds x,y for position and a single
// radian value for rotation.
type Keyframe struct {
	Frame         int
	Value         []float64
	Interpolation string
}

// LayerKeyframes is the baked series for one (layer, property) pair.
type LayerKeyframes struct {
	LayerID   string
	BodyID    string
	Property  string
	Keyframes []Keyframe
}

type sample struct {
	frame int
	pos   Vector
	angle float64
}

// ExportKeyframes samples EvaluateFrame across the range at FrameStep
// spacing and emits one keyframe series per (body, property) pair,
// optionally simplified with a Douglas-Peucker tolerance pass.
func (e *Engine) ExportKeyframes(opts ExportOptions) ([]LayerKeyframes, error) {
	if e.disposed {
		return nil, ErrDisposed
	}
	if opts.FrameStep <= 0 {
		opts.FrameStep = 1
	}
	if opts.EndFrame < opts.StartFrame {
		return nil, fmt.Errorf("physics: export range %d..%d is empty", opts.StartFrame, opts.EndFrame)
	}
	props := opts.Properties
	if len(props) == 0 {
		props = []string{PropertyPosition, PropertyRotation}
	}
	interp := opts.Interpolation
	if interp == "" {
		interp = "linear"
	}

	// Sample in ascending frame order so the replay machinery only ever
	// steps forward from the previous sample.
	series := map[string][]sample{}
	var order []string
	layers := map[string]string{}
	for frame := opts.StartFrame; frame <= opts.EndFrame; frame += opts.FrameStep {
		state, err := e.EvaluateFrame(frame)
		if err != nil {
			return nil, err
		}
		for _, body := range state.RigidBodies {
			if _, seen := series[body.ID]; !seen {
				order = append(order, body.ID)
				layers[body.ID] = body.Layer
			}
			series[body.ID] = append(series[body.ID], sample{frame, body.Position, body.Angle})
		}
	}

	var out []LayerKeyframes
	for _, id := range order {
		samples := series[id]
		for _, prop := range props {
			lk := LayerKeyframes{LayerID: layers[id], BodyID: id, Property: prop}
			switch prop {
			case PropertyPosition:
				keep := keepAll(len(samples))
				if opts.Simplify {
					keep = simplifyVector(samples, opts.SimplifyTolerance)
				}
				for i, s := range samples {
					if keep[i] {
						lk.Keyframes = append(lk.Keyframes, Keyframe{s.frame, []float64{s.pos.X, s.pos.Y}, interp})
					}
				}
			case PropertyRotation:
				keep := keepAll(len(samples))
				if opts.Simplify {
					keep = simplifyScalar(samples, opts.SimplifyTolerance)
				}
				for i, s := range samples {
					if keep[i] {
						lk.Keyframes = append(lk.Keyframes, Keyframe{s.frame, []float64{s.angle}, interp})
					}
				}
			default:
				continue
			}
			out = append(out, lk)
		}
	}
	return out, nil
}

func keepAll(n int) []bool {
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	return keep
}

// simplifyVector marks the samples to keep using Douglas-Peucker over the
// position track: the point farthest from the chord between the kept
// endpoints survives if its perpendicular distance exceeds the tolerance.
// Iterative with an explicit range stack.
func simplifyVector(samples []sample, tolerance float64) []bool {
	keep := make([]bool, len(samples))
	if len(samples) == 0 {
		return keep
	}
	keep[0] = true
	keep[len(samples)-1] = true
	if len(samples) < 3 {
		return keep
	}

	type span struct{ lo, hi int }
	stack := []span{{0, len(samples) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		maxDist := 0.0
		maxIdx := -1
		a := samples[s.lo].pos
		b := samples[s.hi].pos
		for i := s.lo + 1; i < s.hi; i++ {
			d := perpendicularDistance(samples[i].pos, a, b)
			if d > maxDist {
				maxDist = d
				maxIdx = i
			}
		}
		if maxIdx >= 0 && maxDist > tolerance {
			keep[maxIdx] = true
			stack = append(stack, span{s.lo, maxIdx}, span{maxIdx, s.hi})
		}
	}
	return keep
}

// simplifyScalar is the rotation-track analogue: deviation from linear
// interpolation between the kept endpoints, by frame fraction.
func simplifyScalar(samples []sample, tolerance float64) []bool {
	keep := make([]bool, len(samples))
	if len(samples) == 0 {
		return keep
	}
	keep[0] = true
	keep[len(samples)-1] = true
	if len(samples) < 3 {
		return keep
	}

	type span struct{ lo, hi int }
	stack := []span{{0, len(samples) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		lo := samples[s.lo]
		hi := samples[s.hi]
		frameSpan := float64(hi.frame - lo.frame)

		maxDev := 0.0
		maxIdx := -1
		for i := s.lo + 1; i < s.hi; i++ {
			t := 0.0
			if frameSpan != 0 {
				t = float64(samples[i].frame-lo.frame) / frameSpan
			}
			dev := math.Abs(samples[i].angle - Lerp(lo.angle, hi.angle, t))
			if dev > maxDev {
				maxDev = dev
				maxIdx = i
			}
		}
		if maxIdx >= 0 && maxDev > tolerance {
			keep[maxIdx] = true
			stack = append(stack, span{s.lo, maxIdx}, span{maxIdx, s.hi})
		}
	}
	return keep
}

// perpendicularDistance is the distance from p to the line through a and b,
// or to a when the chord is degenerate.
func perpendicularDistance(p, a, b Vector) float64 {
	chord := b.Sub(a)
	lenSq := chord.LengthSq()
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := Clamp01(p.Sub(a).Dot(chord) / lenSq)
	return p.Distance(a.Add(chord.Mult(t)))
}
