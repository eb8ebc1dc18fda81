package physics

import "math"

// Rand is a Mulberry32 pseudo-random generator. Its entire state is a
// single 32-bit word, which makes it trivial to capture in checkpoints and
// restore exactly when the timeline is scrubbed.
type Rand struct {
	seed  uint32
	state uint32
}

func NewRand(seed uint32) *Rand {
	return &Rand{seed: seed, state: seed}
}

// Reseed resets the generator to a fresh stream for the given seed.
func (r *Rand) Reseed(seed uint32) {
	r.seed = seed
	r.state = seed
}

// Seed returns the seed the generator was last reseeded with.
func (r *Rand) Seed() uint32 {
	return r.seed
}

// State returns the current internal state word.
func (r *Rand) State() uint32 {
	return r.state
}

// SetState restores a state word previously obtained from State.
func (r *Rand) SetState(state uint32) {
	r.state = state
}

// Float64 returns the next value in [0, 1).
func (r *Rand) Float64() float64 {
	r.state += 0x6D2B79F5
	z := r.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	z ^= z >> 14
	return float64(z) / 4294967296.0
}

// Range returns the next value in [min, max).
func (r *Rand) Range(min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

// Gaussian returns a normally distributed value via Box-Muller. It draws
// two uniforms per call and caches nothing, so the generator state stays a
// single word.
func (r *Rand) Gaussian(mean, stddev float64) float64 {
	u1 := r.Float64()
	u2 := r.Float64()
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + stddev*z
}
