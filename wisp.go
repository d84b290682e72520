package wisp

import (
	"errors"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrInvalidArgument is wrapped by every construction-time validation failure.
var ErrInvalidArgument = errors.New("wisp: invalid argument")

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default particle and stroke color.
var ColorWhite = Color{1, 1, 1, 1}

// WithAlpha returns c with its alpha component replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// toRGBA converts c to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// toNRGBA converts c to a straight-alpha color.NRGBA.
func (c Color) toNRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets and directions.
// The coordinate system has its origin at the top-left, with Y increasing
// downward, so a heading of 0 points right and π/2 points down.
type Vec2 struct {
	X, Y float64
}

// FromAngle returns the vector of the given length pointing along theta radians.
func FromAngle(theta, length float64) Vec2 {
	return Vec2{X: math.Cos(theta) * length, Y: math.Sin(theta) * length}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v multiplied by k.
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{v.X * k, v.Y * k}
}

// Len returns the magnitude of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// WithLen returns v rescaled to magnitude l. A zero vector has no direction
// and stays zero.
func (v Vec2) WithLen(l float64) Vec2 {
	ln := v.Len()
	if ln < 1e-12 {
		return Vec2{}
	}
	return v.Scale(l / ln)
}

// Range is a general-purpose min/max range.
// Used by ParticleConfig and SmokeConfig.
type Range struct {
	Min, Max float64
}

// Random returns a value in [Min, Max) drawn from src.
func (r Range) Random(src Source) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + src.Float64()*(r.Max-r.Min)
}

// BlendMode selects a compositing operation for EbitenCanvas.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                     // additive / lighter
	BlendScreen                  // screen (1 - (1-src)*(1-dst); only brightens)
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}
