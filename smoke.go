package wisp

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"
)

// maxTurn scales centered noise into a per-segment turn angle.
const maxTurn = math.Pi / 2 / 10

// noiseStartSpan bounds the random starting noise coordinate of a smoke path.
const noiseStartSpan = 10000

// SmokeConfig controls how a Smoke path is generated and seeded.
type SmokeConfig struct {
	// FixedBranch makes the smoke branch at BranchIndex. When false, the
	// zero value, the branch segment is picked uniformly at random and
	// BranchIndex is ignored.
	FixedBranch bool
	// BranchIndex is the parent segment the smoke branches at when
	// FixedBranch is set. The smoke starts where that segment begins.
	BranchIndex int
	// MinLength and MaxLength bound the generated segment count, drawn from
	// [MinLength, MaxLength). Equal values fix the length. Both zero selects
	// 50 and 100.
	MinLength int
	MaxLength int
	// SegmentLength is the length of every generated segment. Zero means 2.
	SegmentLength float64
	// NoiseStep is how far the noise cursor moves per segment. Zero means
	// 0.004. Smaller steps give smoother meanders.
	NoiseStep float64
	// SeedParticles is the number of particles spawned at construction.
	// Zero means 2.
	SeedParticles int
	// Particle controls particle motion and rendering.
	Particle ParticleConfig
	// Source supplies randomness and noise. nil seeds a NoiseSource from the
	// wall clock.
	Source Source
}

const (
	defaultMinLength     = 50
	defaultMaxLength     = 100
	defaultSegmentLength = 2
	defaultNoiseStep     = 0.004
	defaultSeedParticles = 2
)

// DefaultSmokeConfig returns a config with a random branch and default
// lengths.
func DefaultSmokeConfig() SmokeConfig {
	return SmokeConfig{
		MinLength:     defaultMinLength,
		MaxLength:     defaultMaxLength,
		SegmentLength: defaultSegmentLength,
		NoiseStep:     defaultNoiseStep,
		SeedParticles: defaultSeedParticles,
		Particle:      DefaultParticleConfig(),
	}
}

// validate checks cfg against a parent with n segments.
func (c SmokeConfig) validate(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: parent figure has no segments", ErrInvalidArgument)
	}
	if c.FixedBranch && (c.BranchIndex < 0 || c.BranchIndex >= n) {
		return fmt.Errorf("%w: branch index %d out of range [0, %d)", ErrInvalidArgument, c.BranchIndex, n)
	}
	if c.MinLength < 0 || c.MaxLength < 0 {
		return fmt.Errorf("%w: negative length bounds [%d, %d)", ErrInvalidArgument, c.MinLength, c.MaxLength)
	}
	if c.MaxLength < c.MinLength {
		return fmt.Errorf("%w: max length %d below min length %d", ErrInvalidArgument, c.MaxLength, c.MinLength)
	}
	if c.SeedParticles < 0 {
		return fmt.Errorf("%w: negative seed particle count %d", ErrInvalidArgument, c.SeedParticles)
	}
	return nil
}

// withDefaults fills zero fields. It runs after validate.
func (c SmokeConfig) withDefaults() SmokeConfig {
	if c.MinLength == 0 && c.MaxLength == 0 {
		c.MinLength = defaultMinLength
		c.MaxLength = defaultMaxLength
	}
	if c.SegmentLength == 0 {
		c.SegmentLength = defaultSegmentLength
	}
	if c.NoiseStep == 0 {
		c.NoiseStep = defaultNoiseStep
	}
	if c.SeedParticles == 0 {
		c.SeedParticles = defaultSeedParticles
	}
	c.Particle = c.Particle.withDefaults()
	if c.Source == nil {
		c.Source = NewSource(uint64(time.Now().UnixNano()))
	}
	return c
}

// Smoke is a procedurally generated branch off a parent path, carrying a set
// of particles that drift along it and fade. The generated path never changes
// after construction, and particles are only spawned at construction.
type Smoke struct {
	path      Path
	particles []*Particle
	cfg       SmokeConfig
	branch    int
}

// NewSmoke branches a new smoke off parent. now is the host clock reading
// used as the creation time of the seed particles.
//
// It returns an error wrapping ErrInvalidArgument if parent has no segments,
// the branch index is out of range, or the length bounds are invalid.
func NewSmoke(parent Traversable, now time.Duration, cfg SmokeConfig) (*Smoke, error) {
	n := len(parent.PathSegments())
	if err := cfg.validate(n); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	src := cfg.Source

	branch := cfg.BranchIndex
	if !cfg.FixedBranch {
		branch = randomInt(src, 0, n)
	}

	origin, heading := WalkToSegment(parent, branch)
	s := &Smoke{
		path:   Path{Origin: &origin, Heading: heading},
		cfg:    cfg,
		branch: branch,
	}

	length := randomInt(src, cfg.MinLength, cfg.MaxLength)
	s.createSmokePath(length)

	s.particles = make([]*Particle, 0, cfg.SeedParticles)
	for i := 0; i < cfg.SeedParticles; i++ {
		s.spawnParticle(now, src.Float64()*float64(i*2))
	}
	return s, nil
}

// createSmokePath fills the path with length segments whose turn angles follow
// coherent noise, producing a smooth meander.
func (s *Smoke) createSmokePath(length int) {
	src := s.cfg.Source
	cursor := src.Float64() * noiseStartSpan
	s.path.Segments = make([]Segment, 0, length)
	for i := 0; i < length; i++ {
		cursor += s.cfg.NoiseStep
		s.path.AddSegment(Segment{
			Angle:    (src.Noise(cursor) - 0.5) * maxTurn,
			Distance: s.cfg.SegmentLength,
		})
	}
}

// spawnParticle adds a particle offset along the path by distance.
func (s *Smoke) spawnParticle(now time.Duration, distance float64) {
	s.particles = append(s.particles, newParticle(now, distance, &s.cfg.Particle, s.cfg.Source))
}

// OriginPoint returns where the smoke branches off its parent.
func (s *Smoke) OriginPoint() Vec2 { return s.path.OriginPoint() }

// OriginHeading returns the parent heading at the branch point.
func (s *Smoke) OriginHeading() float64 { return s.path.Heading }

// PathSegments returns the generated segments. The returned slice MUST NOT be
// mutated.
func (s *Smoke) PathSegments() []Segment { return s.path.Segments }

// Path returns a copy of the generated path.
func (s *Smoke) Path() *Path { return s.path.Copy() }

// BranchIndex returns the parent segment index the smoke branched at.
func (s *Smoke) BranchIndex() int { return s.branch }

// Particles returns the live particles in ascending distance order as of the
// last Update. The returned slice MUST NOT be mutated.
func (s *Smoke) Particles() []*Particle { return s.particles }

// Done reports whether every particle has died.
func (s *Smoke) Done() bool { return len(s.particles) == 0 }

// Update advances all particles to clock reading now, drops dead ones, and
// repositions the survivors along the path.
func (s *Smoke) Update(now time.Duration) {
	for _, p := range s.particles {
		p.Update(now)
	}
	s.particles = slices.DeleteFunc(s.particles, func(p *Particle) bool {
		return !p.alive
	})
	slices.SortStableFunc(s.particles, func(a, b *Particle) int {
		return cmp.Compare(a.distance, b.distance)
	})
	s.placeParticles()
}

// placeParticles assigns each particle the point at its arc-length distance.
// Particles must be sorted by distance. The path is walked once, merging
// segments and particles: remaining is the distance from the start of the
// current segment to the next particle. Particles past the end of the path
// are pinned to its last vertex and start fading out.
func (s *Smoke) placeParticles() {
	if len(s.particles) == 0 {
		return
	}

	pos := s.path.OriginPoint()
	heading := s.path.Heading
	i := 0
	remaining := s.particles[0].distance

	for _, seg := range s.path.Segments {
		heading += seg.Angle
		step := FromAngle(heading, seg.Distance)
		for seg.Distance >= remaining {
			s.particles[i].position = pos.Add(step.WithLen(remaining))
			i++
			if i == len(s.particles) {
				return
			}
			remaining += s.particles[i].distance - s.particles[i-1].distance
		}
		pos = pos.Add(step)
		remaining -= seg.Distance
	}

	for ; i < len(s.particles); i++ {
		p := s.particles[i]
		p.position = pos
		if p.dir != FadingOut {
			p.FadeOut()
		}
	}
}

// Draw renders the particles. The meander path itself is not drawn.
func (s *Smoke) Draw(c Canvas) {
	for _, p := range s.particles {
		p.Draw(c)
	}
}
