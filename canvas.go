package wisp

// Canvas is the immediate-mode drawing context the sketch renders into.
// Style set with SetFill and SetStroke persists until changed or until the
// matching Pop restores the state saved by Push.
type Canvas interface {
	Push()
	Pop()
	SetFill(c Color)
	SetStroke(c Color, width float64)
	// BeginShape starts a polyline; Vertex appends to it; EndShape strokes it.
	BeginShape()
	Vertex(p Vec2)
	EndShape()
	// Ellipse fills an ellipse of width w and height h centered on center.
	Ellipse(center Vec2, w, h float64)
}

// Drawable is anything that can render itself into a Canvas.
type Drawable interface {
	Draw(c Canvas)
}

// canvasStyle is the state saved and restored by Push/Pop in both backends.
type canvasStyle struct {
	fill        Color
	stroke      Color
	strokeWidth float64
}

var defaultStyle = canvasStyle{
	fill:        ColorWhite,
	stroke:      ColorWhite,
	strokeWidth: 1,
}

// styleStack implements Push/Pop bookkeeping shared by the canvas backends.
type styleStack struct {
	cur   canvasStyle
	saved []canvasStyle
}

func (s *styleStack) push() {
	s.saved = append(s.saved, s.cur)
}

// pop restores the last pushed style. An unbalanced pop resets to defaults.
func (s *styleStack) pop() {
	if len(s.saved) == 0 {
		s.cur = defaultStyle
		return
	}
	s.cur = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
}
