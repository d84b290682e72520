package wisp

// Segment is a single turn-then-advance step of a path: the heading turns by
// Angle radians, then the pen moves Distance units along the new heading.
// Distance is not validated; a negative value walks backwards.
type Segment struct {
	Angle    float64
	Distance float64
}

// Copy returns an independent segment with the same values.
func (s Segment) Copy() Segment {
	return s
}

// Traversable is anything that can be replayed as a sequence of turn/advance
// steps from an origin. Both the polyline renderer and the particle walker
// consume it.
type Traversable interface {
	OriginPoint() Vec2
	OriginHeading() float64
	PathSegments() []Segment
}

// Path is an ordered list of segments walked from Origin with initial Heading.
//
// Copy shares Origin, so a copied path follows its source if the origin is
// moved. Segments are owned by each Path.
type Path struct {
	Origin   *Vec2
	Heading  float64
	Segments []Segment
}

// NewPath returns an empty path starting at origin with the given heading.
func NewPath(origin Vec2, heading float64) *Path {
	return &Path{Origin: &origin, Heading: heading}
}

// AddSegment appends seg to the end of the path.
func (p *Path) AddSegment(seg Segment) {
	p.Segments = append(p.Segments, seg)
}

// Copy returns a path sharing p's origin pointer with an independently owned
// copy of its segments.
func (p *Path) Copy() *Path {
	segs := make([]Segment, len(p.Segments))
	for i, s := range p.Segments {
		segs[i] = s.Copy()
	}
	return &Path{Origin: p.Origin, Heading: p.Heading, Segments: segs}
}

// OriginPoint returns the current origin, or the zero vector if unset.
func (p *Path) OriginPoint() Vec2 {
	if p.Origin == nil {
		return Vec2{}
	}
	return *p.Origin
}

// OriginHeading returns the initial heading in radians.
func (p *Path) OriginHeading() float64 {
	return p.Heading
}

// PathSegments returns the segment list. The returned slice MUST NOT be mutated.
func (p *Path) PathSegments() []Segment {
	return p.Segments
}

// Length returns the arc length of the path, the sum of segment distances.
func (p *Path) Length() float64 {
	return pathLength(p)
}

// End returns the final vertex of the path.
func (p *Path) End() Vec2 {
	pos, _ := WalkToSegment(p, len(p.Segments))
	return pos
}

// WalkToSegment replays t from its origin, applying every segment whose index
// is below index, and returns the reached position and accumulated heading.
// The segment at index itself is not applied. index is clamped to
// [0, len(segments)].
func WalkToSegment(t Traversable, index int) (offset Vec2, heading float64) {
	segs := t.PathSegments()
	if index > len(segs) {
		index = len(segs)
	}
	offset = t.OriginPoint()
	heading = t.OriginHeading()
	for i := 0; i < index; i++ {
		heading += segs[i].Angle
		offset = offset.Add(FromAngle(heading, segs[i].Distance))
	}
	return offset, heading
}

// Vertices returns the polyline of t: the origin followed by the position
// after each segment.
func Vertices(t Traversable) []Vec2 {
	segs := t.PathSegments()
	pts := make([]Vec2, 0, len(segs)+1)
	pos := t.OriginPoint()
	heading := t.OriginHeading()
	pts = append(pts, pos)
	for _, s := range segs {
		heading += s.Angle
		pos = pos.Add(FromAngle(heading, s.Distance))
		pts = append(pts, pos)
	}
	return pts
}

func pathLength(t Traversable) float64 {
	var total float64
	for _, s := range t.PathSegments() {
		total += s.Distance
	}
	return total
}
