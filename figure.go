package wisp

import "math"

// Figure is a Path that can render itself as a connected polyline.
type Figure struct {
	Path

	// Stroke is the polyline color. A zero Stroke draws with ColorWhite.
	Stroke Color
	// StrokeWidth is the line width in pixels. Zero means 1.
	StrokeWidth float64
}

// NewFigure creates a figure starting at origin with the given heading and
// segments.
func NewFigure(origin Vec2, heading float64, segs ...Segment) *Figure {
	f := &Figure{Path: Path{Origin: &origin, Heading: heading}}
	for _, s := range segs {
		f.AddSegment(s)
	}
	return f
}

// NewSpiralFigure builds a gently curling trunk of n segments, each of length
// step, turning by curl radians per segment.
func NewSpiralFigure(origin Vec2, heading float64, n int, step, curl float64) *Figure {
	f := NewFigure(origin, heading)
	for i := 0; i < n; i++ {
		// Tighten the curl toward the tip.
		t := float64(i) / math.Max(1, float64(n-1))
		f.AddSegment(Segment{Angle: curl * (0.5 + t), Distance: step})
	}
	return f
}

// Draw emits the figure as one polyline: the origin, then one vertex per
// segment.
func (f *Figure) Draw(c Canvas) {
	stroke := f.Stroke
	if stroke == (Color{}) {
		stroke = ColorWhite
	}
	width := f.StrokeWidth
	if width <= 0 {
		width = 1
	}

	c.Push()
	c.SetStroke(stroke, width)
	c.BeginShape()
	for _, p := range Vertices(f) {
		c.Vertex(p)
	}
	c.EndShape()
	c.Pop()
}
