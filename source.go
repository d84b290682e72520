package wisp

import (
	"math"
	"math/rand/v2"

	"github.com/aquilax/go-perlin"
)

// Source supplies the randomness a Smoke consumes: uniform values for branch
// choice, path length and particle parameters, and coherent noise for the
// meander angle and particle jitter. Inject a seeded Source for reproducible
// output.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// Noise returns a smooth pseudo-random value in [0, 1) for coordinate x.
	// Nearby coordinates yield nearby values.
	Noise(x float64) float64
}

// Perlin parameters: alpha is the octave weight divisor, beta the frequency
// multiplier, n the octave count.
const (
	perlinAlpha   = 2
	perlinBeta    = 2
	perlinOctaves = 3
)

// noiseMax is the largest value Noise returns.
var noiseMax = math.Nextafter(1, 0)

// NoiseSource is the default Source: a PCG generator paired with 1D Perlin
// noise. Not safe for concurrent use.
type NoiseSource struct {
	rng    *rand.Rand
	perlin *perlin.Perlin
}

// NewSource returns a NoiseSource seeded with seed. Equal seeds produce equal
// sequences.
func NewSource(seed uint64) *NoiseSource {
	return &NoiseSource{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		perlin: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, int64(seed)),
	}
}

// Float64 returns a uniform value in [0, 1).
func (s *NoiseSource) Float64() float64 {
	return s.rng.Float64()
}

// Noise maps the roughly [-1, 1] Perlin output into [0, 1).
func (s *NoiseSource) Noise(x float64) float64 {
	v := (s.perlin.Noise1D(x) + 1) / 2
	if v < 0 {
		return 0
	}
	if v > noiseMax {
		return noiseMax
	}
	return v
}

// randomInt returns an integer in [min, max). An empty range yields min.
func randomInt(src Source, min, max int) int {
	if max <= min {
		return min
	}
	n := min + int(src.Float64()*float64(max-min))
	if n >= max {
		n = max - 1
	}
	return n
}
