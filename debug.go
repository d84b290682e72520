package wisp

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame timing and population counts.
// Only populated when the sketch is in debug mode.
type debugStats struct {
	updateTime time.Duration
	smokes     int
	particles  int
	spawned    int
	retired    int
}

// debugLog prints frame stats to stderr.
func (s *Sketch) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[wisp] update: %v | smokes: %d | particles: %d\n",
		stats.updateTime, stats.smokes, stats.particles)
	if stats.spawned > 0 || stats.retired > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "[wisp] spawned: %d | retired: %d\n",
			stats.spawned, stats.retired)
	}
}

// drawLog prints the canvas submission counts for the frame to stderr.
func (s *Sketch) drawLog(stats canvasStats) {
	if !s.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[wisp] draw calls: %d | vertices: %d\n",
		stats.drawCalls, stats.submitted)
	if stats.dropped > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "[wisp] warning: %d vertices dropped without a target\n",
			stats.dropped)
	}
}
