package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*span
	}
}

// FillGaussian fills dst with values from a standard normal distribution.
func (r *RNG) FillGaussian(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.NormFloat64()
	}
}

// Smooth returns n samples of a slowly varying signal with a little noise.
// Predictor and transform codecs compress it well.
func (r *RNG) Smooth(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	phase := r.rand.Float64() * 2 * math.Pi
	out := make([]float64, n)
	for i := range out {
		x := float64(i) / 64
		out[i] = math.Sin(x+phase) + 0.25*math.Cos(3*x) + 1e-6*r.rand.NormFloat64()
	}
	return out
}

// Amplitudes returns n Gaussian values scaled to unit L2 norm.
func (r *RNG) Amplitudes(n int) []float64 {
	out := make([]float64, n)
	r.FillGaussian(out)

	var norm float64
	for _, v := range out {
		norm += v * v
	}
	if norm == 0 {
		return out
	}

	inv := 1 / math.Sqrt(norm)
	for i := range out {
		out[i] *= inv
	}
	return out
}

// SpecialValues returns IEEE-754 edge cases that lossless codecs must preserve bit for bit.
func SpecialValues() []float64 {
	return []float64{
		0,
		math.Copysign(0, -1),
		1,
		-1,
		math.MaxFloat64,
		-math.MaxFloat64,
		math.SmallestNonzeroFloat64,
		-math.SmallestNonzeroFloat64,
		math.Inf(1),
		math.Inf(-1),
		math.NaN(),
		math.Pi,
		1e-300,
		-2.5e300,
	}
}

// MaxAbsError returns the largest absolute difference between want and got.
// It panics if the lengths differ.
func MaxAbsError(want, got []float64) float64 {
	if len(want) != len(got) {
		panic("testutil: length mismatch")
	}
	var maxErr float64
	for i := range want {
		maxErr = max(maxErr, math.Abs(want[i]-got[i]))
	}
	return maxErr
}

// BitsEqual reports whether want and got are identical bit for bit.
func BitsEqual(want, got []float64) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if math.Float64bits(want[i]) != math.Float64bits(got[i]) {
			return false
		}
	}
	return true
}
