package wisp

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// maxAlpha is the fully opaque particle alpha.
const maxAlpha = 255

// AlphaDirection is the fade state of a Particle.
type AlphaDirection int8

const (
	FadingOut AlphaDirection = -1 // alpha falling toward 0; the particle dies at 0
	Steady    AlphaDirection = 0  // alpha unchanged
	FadingIn  AlphaDirection = 1  // alpha rising toward 255
)

func (d AlphaDirection) String() string {
	switch d {
	case FadingOut:
		return "fading-out"
	case FadingIn:
		return "fading-in"
	default:
		return "steady"
	}
}

// ParticleConfig controls how smoke particles move, fade, and render.
type ParticleConfig struct {
	// Speed is the range of arc-length speeds in units per second.
	Speed Range
	// Gap is the range of jitter radii. Each particle wobbles around its
	// path position at a fixed distance drawn from this range.
	Gap Range
	// FadeRate is the alpha change per second while fading (alpha spans 0-255).
	FadeRate float64
	// JitterRate is how fast the jitter phase advances, in noise units per second.
	JitterRate float64
	// DotSize is the rendered dot diameter in pixels.
	DotSize float64
	// Color is the dot tint. Its alpha is replaced by the particle's fade alpha.
	Color Color
	// Ease shapes each fade. nil means ease.Linear, which keeps FadeRate exact.
	Ease ease.TweenFunc
}

// DefaultParticleConfig returns the settings used when a SmokeConfig leaves
// Particle zero.
func DefaultParticleConfig() ParticleConfig {
	return ParticleConfig{
		Speed:      Range{Min: 8, Max: 16},
		Gap:        Range{Min: 0, Max: 20},
		FadeRate:   300,
		JitterRate: 2,
		DotSize:    4,
		Color:      Color{R: 0.86, G: 0.86, B: 0.9, A: 1},
	}
}

// withDefaults fills zero fields from DefaultParticleConfig.
func (c ParticleConfig) withDefaults() ParticleConfig {
	d := DefaultParticleConfig()
	if c.Speed == (Range{}) {
		c.Speed = d.Speed
	}
	if c.Gap == (Range{}) {
		c.Gap = d.Gap
	}
	if c.FadeRate <= 0 {
		c.FadeRate = d.FadeRate
	}
	if c.JitterRate == 0 {
		c.JitterRate = d.JitterRate
	}
	if c.DotSize <= 0 {
		c.DotSize = d.DotSize
	}
	if c.Color == (Color{}) {
		c.Color = d.Color
	}
	if c.Ease == nil {
		c.Ease = ease.Linear
	}
	return c
}

// Particle is a single drifting dot traveling along a Smoke's path. Its
// distance is a pure function of elapsed time, and its alpha follows a
// fade-in, steady, fade-out lifecycle. A particle that finishes fading out is
// dead for good.
type Particle struct {
	cfg *ParticleConfig
	src Source

	distance float64 // arc length from the smoke origin
	offset   float64 // arc length at creation
	speed    float64

	created time.Duration
	last    time.Duration

	position Vec2

	alpha float64
	dir   AlphaDirection
	fade  *gween.Tween
	alive bool

	xoff      float64 // jitter phase at creation
	xoffAngle float64 // current jitter phase
	gap       float64 // jitter radius
}

// jitterSpan bounds the random starting noise coordinate of a particle.
const jitterSpan = 1000

// newParticle creates a live particle offset along the path and starts its
// fade-in. now is the host clock reading at creation.
func newParticle(now time.Duration, offset float64, cfg *ParticleConfig, src Source) *Particle {
	p := &Particle{
		cfg:      cfg,
		src:      src,
		distance: offset,
		offset:   offset,
		speed:    cfg.Speed.Random(src),
		gap:      cfg.Gap.Random(src),
		created:  now,
		last:     now,
		alive:    true,
	}
	p.xoff = src.Float64() * jitterSpan
	p.xoffAngle = p.xoff
	p.FadeIn()
	return p
}

// Distance returns the particle's arc-length distance from the smoke origin.
func (p *Particle) Distance() float64 { return p.distance }

// Position returns the particle's last computed position on the path.
func (p *Particle) Position() Vec2 { return p.position }

// Alpha returns the current alpha in [0, 255].
func (p *Particle) Alpha() float64 { return p.alpha }

// Direction returns the current fade state.
func (p *Particle) Direction() AlphaDirection { return p.dir }

// IsAlive reports whether the particle is still part of its smoke.
func (p *Particle) IsAlive() bool { return p.alive }

// FadeIn starts raising alpha toward 255 from its current value.
func (p *Particle) FadeIn() {
	if !p.alive {
		return
	}
	p.dir = FadingIn
	p.fade = p.newFade(maxAlpha)
}

// FadeOut starts lowering alpha toward 0. The particle dies when it gets there.
func (p *Particle) FadeOut() {
	if !p.alive {
		return
	}
	p.dir = FadingOut
	p.fade = p.newFade(0)
}

// newFade builds a tween from the current alpha to target whose duration
// keeps the configured rate.
func (p *Particle) newFade(target float64) *gween.Tween {
	d := math.Abs(target-p.alpha) / p.cfg.FadeRate
	return gween.New(float32(p.alpha), float32(target), float32(d), p.cfg.Ease)
}

// Update advances the particle to clock reading now.
func (p *Particle) Update(now time.Duration) {
	elapsed := (now - p.created).Seconds()
	p.distance = p.offset + p.speed*elapsed
	p.xoffAngle = p.xoff + p.cfg.JitterRate*elapsed

	dt := (now - p.last).Seconds()
	p.last = now
	if dt <= 0 || p.dir == Steady || p.fade == nil {
		return
	}

	v, done := p.fade.Update(float32(dt))
	p.alpha = clampAlpha(float64(v))
	if !done {
		return
	}
	p.fade = nil
	switch p.dir {
	case FadingIn:
		p.alpha = maxAlpha
		p.dir = Steady
	case FadingOut:
		p.alpha = 0
		p.dir = Steady
		p.alive = false
	}
}

// Draw renders the particle as a dot offset from its path position by its
// jitter vector.
func (p *Particle) Draw(c Canvas) {
	jitter := FromAngle(p.src.Noise(p.xoffAngle)*2*math.Pi, p.gap)
	c.Push()
	c.SetFill(p.cfg.Color.WithAlpha(p.alpha / maxAlpha))
	c.Ellipse(p.position.Add(jitter), p.cfg.DotSize, p.cfg.DotSize)
	c.Pop()
}

func clampAlpha(a float64) float64 {
	if a < 0 {
		return 0
	}
	if a > maxAlpha {
		return maxAlpha
	}
	return a
}
