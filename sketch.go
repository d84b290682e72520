package wisp

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// SketchConfig controls a Sketch.
type SketchConfig struct {
	// MaxSmokes caps how many smokes are alive at once. Zero means 8.
	MaxSmokes int
	// SpawnInterval is the minimum time between new smokes. Zero means 400ms.
	SpawnInterval time.Duration
	// Smoke is the template for every spawned smoke. Its Source, if nil, is
	// replaced by one NoiseSource shared by all smokes.
	Smoke SmokeConfig
	// ShowFigure draws the parent figure's polyline under the smoke.
	ShowFigure bool
	// ClearColor fills the screen each frame. A zero value leaves the
	// screen as Ebitengine cleared it.
	ClearColor Color
	// BlendMode is the compositing mode for smoke particles.
	BlendMode BlendMode
	// StampScreenshots writes the frame number, clock reading and population
	// into the corner of every screenshot.
	StampScreenshots bool
}

func (c SketchConfig) withDefaults() SketchConfig {
	if c.MaxSmokes <= 0 {
		c.MaxSmokes = 8
	}
	if c.SpawnInterval <= 0 {
		c.SpawnInterval = 400 * time.Millisecond
	}
	if c.Smoke.Source == nil {
		c.Smoke.Source = NewSource(uint64(time.Now().UnixNano()))
	}
	return c
}

// Sketch is an ebiten.Game that keeps a parent figure smoking: it updates and
// draws every smoke, retires the ones whose particles have all died, and
// branches new ones off the figure.
type Sketch struct {
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	figure    *Figure
	smokes    []*Smoke
	cfg       SketchConfig
	clock     func() time.Duration
	lastSpawn time.Duration
	spawned   bool
	frame     int
	now       time.Duration

	script     *Script
	forceSpawn bool

	canvas          *EbitenCanvas
	debug           bool
	showFPS         bool
	width, height   int
	screenshotQueue []string
}

// NewSketch creates a sketch around figure. It fails with ErrInvalidArgument
// if figure cannot host a smoke under cfg.Smoke.
func NewSketch(figure *Figure, cfg SketchConfig) (*Sketch, error) {
	if figure == nil {
		return nil, fmt.Errorf("%w: nil figure", ErrInvalidArgument)
	}
	if err := cfg.Smoke.validate(len(figure.Segments)); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	start := time.Now()
	s := &Sketch{
		ScreenshotDir: "screenshots",
		figure:        figure,
		cfg:           cfg,
		clock:         func() time.Duration { return time.Since(start) },
		canvas:        NewEbitenCanvas(nil),
	}
	s.canvas.BlendMode = cfg.BlendMode
	return s, nil
}

// Figure returns the parent figure.
func (s *Sketch) Figure() *Figure { return s.figure }

// Smokes returns the live smokes. The returned slice MUST NOT be mutated.
func (s *Sketch) Smokes() []*Smoke { return s.smokes }

// SetDebugMode enables or disables per-frame timing and spawn logs on stderr.
func (s *Sketch) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Step advances the sketch to clock reading now. Update calls it with the
// monotonic time since the sketch was created.
func (s *Sketch) Step(now time.Duration) error {
	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.frame++
	s.now = now

	kept := s.smokes[:0]
	for _, sm := range s.smokes {
		sm.Update(now)
		if sm.Done() {
			stats.retired++
			continue
		}
		kept = append(kept, sm)
	}
	clear(s.smokes[len(kept):])
	s.smokes = kept

	due := !s.spawned || now-s.lastSpawn >= s.cfg.SpawnInterval || s.forceSpawn
	if len(s.smokes) < s.cfg.MaxSmokes && due {
		s.forceSpawn = false
		sm, err := NewSmoke(s.figure, now, s.cfg.Smoke)
		if err != nil {
			return fmt.Errorf("spawn smoke: %w", err)
		}
		// Place the seed particles before the first draw.
		sm.Update(now)
		s.smokes = append(s.smokes, sm)
		s.lastSpawn = now
		s.spawned = true
		stats.spawned++
	}

	if s.debug {
		stats.updateTime = time.Since(t0)
		stats.smokes = len(s.smokes)
		for _, sm := range s.smokes {
			stats.particles += len(sm.particles)
		}
		s.debugLog(stats)
	}
	return nil
}

// Update implements ebiten.Game. The clock is sampled once per call.
func (s *Sketch) Update() error {
	if s.script != nil {
		if err := s.script.step(s); err != nil {
			return err
		}
	}
	return s.Step(s.clock())
}

// Draw implements ebiten.Game.
func (s *Sketch) Draw(screen *ebiten.Image) {
	if s.cfg.ClearColor.A > 0 {
		screen.Fill(s.cfg.ClearColor.toRGBA())
	}
	s.canvas.ResetStats()
	s.canvas.Target = screen
	s.DrawTo(s.canvas)
	s.canvas.Flush()
	s.canvas.Target = nil
	s.drawLog(s.canvas.stats)

	if s.showFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	s.flushScreenshots(screen)
}

// DrawTo renders the sketch into any Canvas.
func (s *Sketch) DrawTo(c Canvas) {
	if s.cfg.ShowFigure {
		s.figure.Draw(c)
	}
	for _, sm := range s.smokes {
		sm.Draw(c)
	}
}

// Layout implements ebiten.Game with a fixed logical size when one was set by
// Run, and the window size otherwise.
func (s *Sketch) Layout(outsideWidth, outsideHeight int) (int, int) {
	if s.width > 0 && s.height > 0 {
		return s.width, s.height
	}
	return outsideWidth, outsideHeight
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
}

// Run opens a window and drives sketch until the window is closed.
func Run(sketch *Sketch, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	sketch.width, sketch.height = cfg.Width, cfg.Height
	sketch.showFPS = cfg.ShowFPS
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	return ebiten.RunGame(sketch)
}

var _ ebiten.Game = (*Sketch)(nil)
