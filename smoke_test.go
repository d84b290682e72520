package wisp

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"
)

// straightSmokeConfig yields a straight path of n segments of length 2 from a
// fake source whose noise is always 0.5.
func straightSmokeConfig(n int, src Source) SmokeConfig {
	return SmokeConfig{
		FixedBranch: true,
		BranchIndex: 0,
		MinLength:   n,
		MaxLength:   n,
		Particle:    ParticleConfig{Speed: Range{10, 10}, Gap: Range{1, 1}},
		Source:      src,
	}
}

func onePieceFigure() *Figure {
	return NewFigure(Vec2{10, 20}, 0, Segment{Angle: 0.3, Distance: 5})
}

func TestNewSmokeEndToEnd(t *testing.T) {
	now := 5 * time.Second
	s, err := NewSmoke(onePieceFigure(), now, straightSmokeConfig(10, &fakeSource{fallback: 0.5}))
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}

	segs := s.PathSegments()
	if len(segs) != 10 {
		t.Fatalf("segments = %d, want 10", len(segs))
	}
	for i, seg := range segs {
		if seg.Distance != 2 {
			t.Errorf("segment %d distance = %v, want 2", i, seg.Distance)
		}
	}
	assertNear(t, "arc length", pathLength(s), 20)
	if len(s.Particles()) != 2 {
		t.Fatalf("particles = %d, want 2", len(s.Particles()))
	}
	offsets := []float64{s.particles[0].offset, s.particles[1].offset}

	s.Update(now)
	for i, p := range s.Particles() {
		assertNear(t, "distance", p.Distance(), offsets[i])
		assertNear(t, "alpha", p.Alpha(), 0)
		if p.Direction() != FadingIn {
			t.Errorf("particle %d direction = %v, want fading-in", i, p.Direction())
		}
	}
}

func TestNewSmokeBranchesAtSegmentBoundary(t *testing.T) {
	f := testFigure()
	for idx := range f.Segments {
		s, err := NewSmoke(f, 0, SmokeConfig{FixedBranch: true, BranchIndex: idx, MinLength: 3, MaxLength: 3, Source: NewSource(1)})
		if err != nil {
			t.Fatalf("NewSmoke(branch %d): %v", idx, err)
		}
		wantPos, wantHeading := WalkToSegment(f, idx)
		assertVec(t, "origin", s.OriginPoint(), wantPos)
		assertNear(t, "heading", s.OriginHeading(), wantHeading)
		if s.BranchIndex() != idx {
			t.Errorf("BranchIndex = %d, want %d", s.BranchIndex(), idx)
		}
	}
}

func TestNewSmokeRandomBranch(t *testing.T) {
	f := testFigure() // 5 segments
	src := &fakeSource{floats: []float64{0.99}, fallback: 0.5}
	s, err := NewSmoke(f, 0, SmokeConfig{MinLength: 1, MaxLength: 1, Source: src})
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}
	if s.BranchIndex() != 4 {
		t.Errorf("BranchIndex = %d, want 4", s.BranchIndex())
	}

	// BranchIndex alone does not pin the branch.
	src = &fakeSource{floats: []float64{0.99}, fallback: 0.5}
	s, err = NewSmoke(f, 0, SmokeConfig{BranchIndex: 1, MinLength: 1, MaxLength: 1, Source: src})
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}
	if s.BranchIndex() != 4 {
		t.Errorf("BranchIndex = %d, want random 4 without FixedBranch", s.BranchIndex())
	}

	rnd := NewSource(99)
	for i := 0; i < 100; i++ {
		s, err := NewSmoke(f, 0, SmokeConfig{MinLength: 1, MaxLength: 2, Source: rnd})
		if err != nil {
			t.Fatalf("NewSmoke: %v", err)
		}
		if s.BranchIndex() < 0 || s.BranchIndex() >= len(f.Segments) {
			t.Fatalf("BranchIndex = %d out of range", s.BranchIndex())
		}
	}
}

func TestNewSmokeLengthRange(t *testing.T) {
	src := NewSource(5)
	for i := 0; i < 100; i++ {
		s, err := NewSmoke(onePieceFigure(), 0, SmokeConfig{Source: src})
		if err != nil {
			t.Fatalf("NewSmoke: %v", err)
		}
		n := len(s.PathSegments())
		if n < 50 || n >= 100 {
			t.Fatalf("default length = %d, want [50, 100)", n)
		}
	}
}

func TestNewSmokeInvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		parent Traversable
		cfg    SmokeConfig
	}{
		{"empty parent fixed branch", NewFigure(Vec2{}, 0), SmokeConfig{FixedBranch: true}},
		{"empty parent random branch", NewFigure(Vec2{}, 0), SmokeConfig{}},
		{"branch past end", testFigure(), SmokeConfig{FixedBranch: true, BranchIndex: 5}},
		{"negative branch", testFigure(), SmokeConfig{FixedBranch: true, BranchIndex: -2}},
		{"negative min", testFigure(), SmokeConfig{MinLength: -1, MaxLength: 5}},
		{"negative max", testFigure(), SmokeConfig{MinLength: 0, MaxLength: -5}},
		{"max below min", testFigure(), SmokeConfig{MinLength: 10, MaxLength: 5}},
		{"negative seed count", testFigure(), SmokeConfig{SeedParticles: -1}},
	}
	for _, tt := range tests {
		s, err := NewSmoke(tt.parent, 0, tt.cfg)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: err = %v, want ErrInvalidArgument", tt.name, err)
		}
		if s != nil {
			t.Errorf("%s: got a smoke alongside the error", tt.name)
		}
	}
}

func TestCreateSmokePathFollowsNoise(t *testing.T) {
	var coords []float64
	src := &fakeSource{
		floats:   []float64{0.1}, // noise cursor start
		fallback: 0.5,
		noise: func(x float64) float64 {
			coords = append(coords, x)
			return 1
		},
	}
	s, err := NewSmoke(onePieceFigure(), 0, SmokeConfig{MinLength: 4, MaxLength: 4, Source: src})
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}
	for _, seg := range s.PathSegments() {
		assertNear(t, "angle", seg.Angle, 0.5*math.Pi/2/10)
	}
	if len(coords) != 4 {
		t.Fatalf("noise samples = %d, want 4", len(coords))
	}
	start := 0.1 * noiseStartSpan
	for i, x := range coords {
		assertNear(t, "noise coordinate", x, start+float64(i+1)*0.004)
	}
}

func TestSmokePathIsSmooth(t *testing.T) {
	s, err := NewSmoke(onePieceFigure(), 0, SmokeConfig{MinLength: 100, MaxLength: 100, Source: NewSource(2024)})
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}
	segs := s.PathSegments()
	for i := 1; i < len(segs); i++ {
		if d := math.Abs(segs[i].Angle - segs[i-1].Angle); d > 0.01 {
			t.Fatalf("angle jump %v between segments %d and %d", d, i-1, i)
		}
		if math.Abs(segs[i].Angle) > maxTurn/2 {
			t.Fatalf("segment %d angle %v exceeds ±%v", i, segs[i].Angle, maxTurn/2)
		}
	}
}

func TestSmokeDeterministicWithSeed(t *testing.T) {
	a, _ := NewSmoke(testFigure(), 0, SmokeConfig{Source: NewSource(42)})
	b, _ := NewSmoke(testFigure(), 0, SmokeConfig{Source: NewSource(42)})
	if a.BranchIndex() != b.BranchIndex() {
		t.Fatalf("branch %d != %d", a.BranchIndex(), b.BranchIndex())
	}
	if !slices.Equal(a.PathSegments(), b.PathSegments()) {
		t.Error("same seed produced different paths")
	}
}

// smokeWithParticles builds a smoke on an explicit path with particles at the
// given distances, bypassing generation.
func smokeWithParticles(path Path, distances ...float64) *Smoke {
	cfg := SmokeConfig{Particle: ParticleConfig{Speed: Range{1, 1}, Gap: Range{1, 1}}}.withDefaults()
	cfg.Source = &fakeSource{fallback: 0.5}
	s := &Smoke{path: path, cfg: cfg}
	for _, d := range distances {
		s.spawnParticle(0, d)
	}
	return s
}

func TestPlaceParticlesStraight(t *testing.T) {
	origin := Vec2{0, 0}
	path := Path{Origin: &origin}
	for i := 0; i < 10; i++ {
		path.AddSegment(Segment{Distance: 2})
	}
	s := smokeWithParticles(path, 0, 3.5, 7, 7, 19)
	s.placeParticles()

	want := []Vec2{{0, 0}, {3.5, 0}, {7, 0}, {7, 0}, {19, 0}}
	for i, p := range s.particles {
		assertVec(t, "position", p.Position(), want[i])
		if p.Direction() != FadingIn {
			t.Errorf("particle %d direction = %v, want fading-in", i, p.Direction())
		}
	}
}

func TestPlaceParticlesAcrossTurn(t *testing.T) {
	origin := Vec2{0, 0}
	path := Path{Origin: &origin, Segments: []Segment{
		{Angle: 0, Distance: 10},
		{Angle: math.Pi / 2, Distance: 10},
	}}
	s := smokeWithParticles(path, 2, 10, 15)
	s.placeParticles()

	assertVec(t, "first leg", s.particles[0].Position(), Vec2{2, 0})
	assertVec(t, "corner", s.particles[1].Position(), Vec2{10, 0})
	assertVec(t, "second leg", s.particles[2].Position(), Vec2{10, 5})
}

func TestPlaceParticlesPastEnd(t *testing.T) {
	origin := Vec2{1, 1}
	path := Path{Origin: &origin, Heading: math.Pi / 2, Segments: []Segment{
		{Distance: 4}, {Distance: 4},
	}}
	s := smokeWithParticles(path, 1, 9, 30)
	s.particles[2].FadeOut()
	s.placeParticles()

	assertVec(t, "inside", s.particles[0].Position(), Vec2{1, 2})
	for _, p := range s.particles[1:] {
		assertVec(t, "pinned", p.Position(), path.End())
		if p.Direction() != FadingOut {
			t.Errorf("direction = %v, want fading-out", p.Direction())
		}
	}
	if s.particles[0].Direction() == FadingOut {
		t.Error("particle inside the path should not fade out")
	}
}

func TestPlaceParticlesAtExactEndOfCurvedPath(t *testing.T) {
	for seed := uint64(1); seed <= 200; seed++ {
		sm, err := NewSmoke(onePieceFigure(), 0, SmokeConfig{MinLength: 50, MaxLength: 50, Source: NewSource(seed)})
		if err != nil {
			t.Fatalf("NewSmoke: %v", err)
		}
		s := smokeWithParticles(sm.path, pathLength(sm))
		s.placeParticles()

		p := s.particles[0]
		if p.Direction() == FadingOut {
			t.Fatalf("seed %d: particle at the path length was treated as past the end", seed)
		}
		assertVec(t, "end", p.Position(), sm.path.End())
	}
}

func TestPlaceParticlesZeroLengthSegments(t *testing.T) {
	origin := Vec2{0, 0}
	path := Path{Origin: &origin, Segments: []Segment{
		{Distance: 0}, {Angle: 1, Distance: 0}, {Angle: -1, Distance: 3},
	}}
	s := smokeWithParticles(path, 0, 2)
	s.placeParticles()
	assertVec(t, "at origin", s.particles[0].Position(), Vec2{0, 0})
	assertVec(t, "on last", s.particles[1].Position(), Vec2{2, 0})
}

func TestPlaceParticlesNoParticles(t *testing.T) {
	origin := Vec2{}
	s := smokeWithParticles(Path{Origin: &origin, Segments: []Segment{{Distance: 1}}})
	s.placeParticles()
	if !s.Done() {
		t.Error("smoke without particles should be done")
	}
}

func TestPlaceParticlesEmptyPath(t *testing.T) {
	origin := Vec2{3, 4}
	s := smokeWithParticles(Path{Origin: &origin}, 0, 1)
	s.placeParticles()
	for _, p := range s.particles {
		assertVec(t, "pinned to origin", p.Position(), origin)
		if p.Direction() != FadingOut {
			t.Errorf("direction = %v, want fading-out", p.Direction())
		}
	}
}

func TestPlaceParticlesTotalCoverage(t *testing.T) {
	src := NewSource(8)
	s, err := NewSmoke(testFigure(), 0, SmokeConfig{FixedBranch: true, BranchIndex: 2, Source: src})
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}
	total := pathLength(s)
	for i := 0; i < 40; i++ {
		s.spawnParticle(0, src.Float64()*total*1.5)
	}
	slices.SortStableFunc(s.particles, func(a, b *Particle) int {
		switch {
		case a.distance < b.distance:
			return -1
		case a.distance > b.distance:
			return 1
		}
		return 0
	})
	s.placeParticles()

	end := s.path.End()
	verts := Vertices(s)
	for i, p := range s.particles {
		pos := p.Position()
		if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) {
			t.Fatalf("particle %d position %+v not finite", i, pos)
		}
		if p.distance > total+1e-9 {
			assertVec(t, "pinned", pos, end)
			if p.Direction() != FadingOut {
				t.Errorf("particle %d past end not fading out", i)
			}
			continue
		}
		// Inside the path: no farther from the origin (in arc length) than its distance.
		if d := pos.Sub(verts[0]).Len(); d > p.distance+epsilon {
			t.Errorf("particle %d is %v from origin, beyond its arc distance %v", i, d, p.distance)
		}
	}
}

func TestSmokeUpdateSortsByDistance(t *testing.T) {
	s, err := NewSmoke(onePieceFigure(), 0, SmokeConfig{
		FixedBranch:   true,
		BranchIndex:   0,
		MinLength:     100,
		MaxLength:     100,
		SeedParticles: 6,
		Source:        NewSource(77),
	})
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}
	s.Update(500 * time.Millisecond)
	ps := s.Particles()
	for i := 1; i < len(ps); i++ {
		if ps[i].Distance() < ps[i-1].Distance() {
			t.Fatalf("particles not sorted at %d: %v < %v", i, ps[i].Distance(), ps[i-1].Distance())
		}
	}
}

func TestSmokeParticlesOverrunFadeAndDie(t *testing.T) {
	cfg := straightSmokeConfig(10, &fakeSource{fallback: 0.5})
	cfg.Particle.Speed = Range{100, 100}
	s, err := NewSmoke(onePieceFigure(), 0, cfg)
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}
	end := s.path.End()

	s.Update(time.Second) // distances ~100, path is 20 long
	if len(s.Particles()) != 2 {
		t.Fatalf("particles = %d, want 2", len(s.Particles()))
	}
	for _, p := range s.Particles() {
		assertVec(t, "pinned", p.Position(), end)
		if p.Direction() == FadingIn {
			t.Error("overrun particle still fading in")
		}
		if p.Direction() != FadingOut {
			t.Errorf("direction = %v, want fading-out", p.Direction())
		}
	}

	s.Update(2 * time.Second)
	if !s.Done() {
		t.Errorf("particles = %d, want all dead after fading out", len(s.Particles()))
	}
}

func TestSmokeDrawOnlyParticles(t *testing.T) {
	s, err := NewSmoke(onePieceFigure(), 0, straightSmokeConfig(10, &fakeSource{fallback: 0.5}))
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}
	s.Update(100 * time.Millisecond)

	c := newRecordCanvas()
	s.Draw(c)
	if got := len(c.ops("ellipse")); got != 2 {
		t.Errorf("ellipses = %d, want 2", got)
	}
	if got := len(c.ops("begin")); got != 0 {
		t.Errorf("smoke drew %d polylines, want none", got)
	}
}

func TestSmokePathReturnsCopy(t *testing.T) {
	s, err := NewSmoke(onePieceFigure(), 0, straightSmokeConfig(5, &fakeSource{fallback: 0.5}))
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}
	p := s.Path()
	p.AddSegment(Segment{Distance: 100})
	if len(s.PathSegments()) != 5 {
		t.Errorf("smoke segments = %d, want 5 after mutating copy", len(s.PathSegments()))
	}
}

func TestSmokeAsParent(t *testing.T) {
	trunk, err := NewSmoke(onePieceFigure(), 0, SmokeConfig{MinLength: 20, MaxLength: 20, Source: NewSource(4)})
	if err != nil {
		t.Fatalf("NewSmoke: %v", err)
	}
	twig, err := NewSmoke(trunk, 0, SmokeConfig{FixedBranch: true, BranchIndex: 10, MinLength: 5, MaxLength: 5, Source: NewSource(5)})
	if err != nil {
		t.Fatalf("NewSmoke on smoke: %v", err)
	}
	want, _ := WalkToSegment(trunk, 10)
	assertVec(t, "twig origin", twig.OriginPoint(), want)
}
