package wisp

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// ellipseSegments is the rim vertex count of a filled ellipse.
const ellipseSegments = 16

// maxBatchVertices keeps indices within uint16 range.
const maxBatchVertices = math.MaxUint16 - 1

var whiteImage *ebiten.Image

// whiteSubImage returns the center texel of a 3x3 white image. Sampling the
// center avoids bleeding at the texture edge.
func whiteSubImage() *ebiten.Image {
	if whiteImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(ColorWhite.toRGBA())
	}
	return whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// EbitenCanvas is a Canvas that batches shapes into triangles and submits
// them to Target with DrawTriangles. Set Target before drawing: a full batch
// is flushed mid-frame, and a flush without a Target discards the batch and
// counts it as dropped. Call Flush once per frame after drawing.
type EbitenCanvas struct {
	Target    *ebiten.Image
	BlendMode BlendMode

	style    styleStack
	shape    []Vec2
	inShape  bool
	vertices []ebiten.Vertex
	indices  []uint16
	stats    canvasStats
}

// canvasStats counts what Flush did since the last ResetStats.
type canvasStats struct {
	drawCalls int
	submitted int // vertices sent to Target
	dropped   int // vertices discarded for lack of a Target
}

// ResetStats zeroes the per-frame submission counters.
func (c *EbitenCanvas) ResetStats() { c.stats = canvasStats{} }

// NewEbitenCanvas creates a canvas drawing into target.
func NewEbitenCanvas(target *ebiten.Image) *EbitenCanvas {
	return &EbitenCanvas{Target: target, style: styleStack{cur: defaultStyle}}
}

func (c *EbitenCanvas) Push() { c.style.push() }
func (c *EbitenCanvas) Pop()  { c.style.pop() }

func (c *EbitenCanvas) SetFill(col Color) { c.style.cur.fill = col }

func (c *EbitenCanvas) SetStroke(col Color, width float64) {
	c.style.cur.stroke = col
	c.style.cur.strokeWidth = width
}

func (c *EbitenCanvas) BeginShape() {
	c.shape = c.shape[:0]
	c.inShape = true
}

func (c *EbitenCanvas) Vertex(p Vec2) {
	if c.inShape {
		c.shape = append(c.shape, p)
	}
}

// EndShape strokes the collected vertices as a ribbon with mitered joins.
func (c *EbitenCanvas) EndShape() {
	c.inShape = false
	c.appendPolyline(c.shape, c.style.cur.strokeWidth, c.style.cur.stroke)
}

// Ellipse fills an ellipse as a triangle fan around its center.
func (c *EbitenCanvas) Ellipse(center Vec2, w, h float64) {
	col := c.style.cur.fill
	if col.A <= 0 {
		return
	}
	c.reserve(ellipseSegments + 1)
	base := uint16(len(c.vertices))
	c.vertices = append(c.vertices, vertex(center, col))
	rx, ry := w/2, h/2
	for i := 0; i < ellipseSegments; i++ {
		theta := 2 * math.Pi * float64(i) / ellipseSegments
		c.vertices = append(c.vertices, vertex(Vec2{
			X: center.X + math.Cos(theta)*rx,
			Y: center.Y + math.Sin(theta)*ry,
		}, col))
	}
	for i := 0; i < ellipseSegments; i++ {
		next := (i + 1) % ellipseSegments
		c.indices = append(c.indices, base, base+1+uint16(i), base+1+uint16(next))
	}
}

// appendPolyline emits two vertices per point, offset along the averaged
// normal, and two triangles per segment.
func (c *EbitenCanvas) appendPolyline(points []Vec2, width float64, col Color) {
	n := len(points)
	if n < 2 || col.A <= 0 {
		return
	}
	// Very long polylines are split so each piece fits one batch.
	if n*2 > maxBatchVertices/2 {
		half := n / 2
		c.appendPolyline(points[:half+1], width, col)
		c.appendPolyline(points[half:], width, col)
		return
	}
	c.reserve(n * 2)
	base := uint16(len(c.vertices))
	halfW := width / 2

	for i := 0; i < n; i++ {
		var nx, ny float64
		switch i {
		case 0:
			nx, ny = perpendicular(points[0], points[1])
		case n - 1:
			nx, ny = perpendicular(points[n-2], points[n-1])
		default:
			nx0, ny0 := perpendicular(points[i-1], points[i])
			nx1, ny1 := perpendicular(points[i], points[i+1])
			nx, ny = nx0+nx1, ny0+ny1
			ln := math.Hypot(nx, ny)
			if ln > 1e-10 {
				nx /= ln
				ny /= ln
			}
			// Keep the width at the join, clamped to avoid spikes at sharp
			// corners (max 2x extension).
			dot := nx0*nx + ny0*ny
			if dot > 0.1 {
				scale := math.Min(1/dot, 2)
				nx *= scale
				ny *= scale
			}
		}
		p := points[i]
		c.vertices = append(c.vertices,
			vertex(Vec2{p.X + nx*halfW, p.Y + ny*halfW}, col),
			vertex(Vec2{p.X - nx*halfW, p.Y - ny*halfW}, col),
		)
	}

	for i := 0; i < n-1; i++ {
		v := base + uint16(i*2)
		c.indices = append(c.indices, v, v+1, v+2, v+1, v+3, v+2)
	}
}

// reserve flushes the batch if adding n vertices would overflow the indices.
func (c *EbitenCanvas) reserve(n int) {
	if len(c.vertices)+n > maxBatchVertices {
		c.Flush()
	}
}

// Flush submits the batched triangles to Target and clears the batch.
func (c *EbitenCanvas) Flush() {
	switch {
	case len(c.indices) == 0:
	case c.Target == nil:
		c.stats.dropped += len(c.vertices)
	default:
		op := &ebiten.DrawTrianglesOptions{}
		op.Blend = c.BlendMode.EbitenBlend()
		op.AntiAlias = true
		c.Target.DrawTriangles(c.vertices, c.indices, whiteSubImage(), op)
		c.stats.drawCalls++
		c.stats.submitted += len(c.vertices)
	}
	c.vertices = c.vertices[:0]
	c.indices = c.indices[:0]
}

// vertex builds a solid-color vertex sampling the white texel.
func vertex(p Vec2, col Color) ebiten.Vertex {
	a := float32(clamp01(col.A))
	return ebiten.Vertex{
		DstX:   float32(p.X),
		DstY:   float32(p.Y),
		SrcX:   1,
		SrcY:   1,
		ColorR: float32(clamp01(col.R)) * a,
		ColorG: float32(clamp01(col.G)) * a,
		ColorB: float32(clamp01(col.B)) * a,
		ColorA: a,
	}
}

// perpendicular returns the unit left-perpendicular of the segment from a to b.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}
