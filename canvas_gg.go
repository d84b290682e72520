package wisp

import "github.com/fogleman/gg"

// GGCanvas is a Canvas rasterizing into a gg context. It works without a
// window or GPU and backs ExportPNG.
type GGCanvas struct {
	dc      *gg.Context
	style   styleStack
	shape   []Vec2
	inShape bool
}

// NewGGCanvas wraps dc.
func NewGGCanvas(dc *gg.Context) *GGCanvas {
	return &GGCanvas{dc: dc, style: styleStack{cur: defaultStyle}}
}

// Context returns the underlying gg context.
func (c *GGCanvas) Context() *gg.Context { return c.dc }

func (c *GGCanvas) Push() {
	c.style.push()
	c.dc.Push()
}

func (c *GGCanvas) Pop() {
	c.style.pop()
	c.dc.Pop()
}

func (c *GGCanvas) SetFill(col Color) { c.style.cur.fill = col }

func (c *GGCanvas) SetStroke(col Color, width float64) {
	c.style.cur.stroke = col
	c.style.cur.strokeWidth = width
}

func (c *GGCanvas) BeginShape() {
	c.shape = c.shape[:0]
	c.inShape = true
}

func (c *GGCanvas) Vertex(p Vec2) {
	if c.inShape {
		c.shape = append(c.shape, p)
	}
}

func (c *GGCanvas) EndShape() {
	c.inShape = false
	if len(c.shape) < 2 {
		return
	}
	c.dc.NewSubPath()
	c.dc.MoveTo(c.shape[0].X, c.shape[0].Y)
	for _, p := range c.shape[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	c.dc.SetLineWidth(c.style.cur.strokeWidth)
	c.dc.SetLineJoin(gg.LineJoinRound)
	c.dc.SetColor(c.style.cur.stroke.toNRGBA())
	c.dc.Stroke()
}

func (c *GGCanvas) Ellipse(center Vec2, w, h float64) {
	if c.style.cur.fill.A <= 0 {
		return
	}
	c.dc.DrawEllipse(center.X, center.Y, w/2, h/2)
	c.dc.SetColor(c.style.cur.fill.toNRGBA())
	c.dc.Fill()
}
