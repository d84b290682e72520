package wisp

import (
	"encoding/json"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// scriptStep is a single action in a capture script.
type scriptStep struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Frames int    `json:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script sequences spawns, waits and screenshots across frames for automated
// visual captures. Attach to a Sketch via SetScript.
//
// Supported actions:
//
//	{"action": "wait", "frames": 30}
//	{"action": "spawn"}
//	{"action": "clear"}
//	{"action": "screenshot", "label": "name"}
//	{"action": "exit"}
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	exit      bool
}

// LoadScript parses a JSON capture script.
func LoadScript(jsonData []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "wait", "spawn", "clear", "screenshot", "exit":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// SetScript attaches a capture script. Its step runs at the start of every
// Update.
func (s *Sketch) SetScript(script *Script) {
	s.script = script
}

// Done reports whether every step has run.
func (r *Script) Done() bool {
	return r.done
}

// step advances the script by one frame. It returns ebiten.Termination once
// an exit step has run.
func (r *Script) step(s *Sketch) error {
	if r.exit {
		return ebiten.Termination
	}
	if r.done {
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
	case "spawn":
		s.forceSpawn = true
	case "clear":
		clear(s.smokes)
		s.smokes = s.smokes[:0]
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "exit":
		// Let the queued screenshots flush on the next Draw first.
		r.exit = true
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
	return nil
}
