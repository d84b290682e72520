package wisp

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled capture of the frame being drawn. It is written
// at the end of the next Draw to ScreenshotDir as <label>_f<frame>.png, where
// frame counts Steps since the sketch was created.
func (s *Sketch) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// flushScreenshots reads back the rendered screen once and saves it for every
// queued label. Failures are logged to stderr.
func (s *Sketch) flushScreenshots(screen *ebiten.Image) {
	if len(s.screenshotQueue) == 0 {
		return
	}
	b := screen.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	// Both sides are premultiplied RGBA, so the pixels copy as-is.
	screen.ReadPixels(img.Pix)
	s.saveCaptures(img)
}

// saveCaptures writes img once per queued label, stamping it first when
// StampScreenshots is set, and empties the queue.
func (s *Sketch) saveCaptures(img *image.RGBA) {
	defer func() { s.screenshotQueue = s.screenshotQueue[:0] }()

	if err := os.MkdirAll(s.ScreenshotDir, 0o755); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[wisp] screenshot: %v\n", err)
		return
	}

	dc := gg.NewContextForRGBA(img)
	if s.cfg.StampScreenshots {
		if err := drawCaption(dc, s.frameCaption(), defaultCaptionSize, ColorWhite); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[wisp] screenshot: %v\n", err)
		}
	}
	for _, label := range s.screenshotQueue {
		path := filepath.Join(s.ScreenshotDir, captureName(label, s.frame))
		if err := dc.SavePNG(path); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[wisp] screenshot %s: %v\n", path, err)
		}
	}
}

// frameCaption describes the sketch state a capture was taken in.
func (s *Sketch) frameCaption() string {
	particles := 0
	for _, sm := range s.smokes {
		particles += len(sm.particles)
	}
	return fmt.Sprintf("frame %d  t=%.2fs  smokes %d  particles %d",
		s.frame, s.now.Seconds(), len(s.smokes), particles)
}

// captureName is the file name of a capture taken at the given frame.
func captureName(label string, frame int) string {
	return fmt.Sprintf("%s_f%06d.png", fileLabel(label), frame)
}
