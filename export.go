package wisp

import (
	"fmt"
	"image"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const defaultCaptionSize = 12

// ExportConfig controls headless rendering.
type ExportConfig struct {
	// Width and Height are the image size in pixels. Zero means 640x480.
	Width, Height int
	// Background fills the image first. A zero Background leaves it transparent.
	Background Color
	// Caption, if set, is drawn in the top-left corner.
	Caption string
	// CaptionSize is the caption font size in points. Zero means 12.
	CaptionSize float64
	// CaptionColor is the caption color. A zero value means ColorWhite.
	CaptionColor Color
}

func (c ExportConfig) withDefaults() ExportConfig {
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 480
	}
	if c.CaptionSize <= 0 {
		c.CaptionSize = defaultCaptionSize
	}
	if c.CaptionColor == (Color{}) {
		c.CaptionColor = ColorWhite
	}
	return c
}

// RenderImage draws items in order into a new image.
func RenderImage(cfg ExportConfig, items ...Drawable) (image.Image, error) {
	cfg = cfg.withDefaults()
	dc := gg.NewContext(cfg.Width, cfg.Height)
	if cfg.Background.A > 0 {
		dc.SetColor(cfg.Background.toNRGBA())
		dc.Clear()
	}

	c := NewGGCanvas(dc)
	for _, it := range items {
		it.Draw(c)
	}

	if cfg.Caption != "" {
		if err := drawCaption(dc, cfg.Caption, cfg.CaptionSize, cfg.CaptionColor); err != nil {
			return nil, err
		}
	}
	return dc.Image(), nil
}

// ExportPNG renders items headlessly and writes the result to path.
func ExportPNG(path string, cfg ExportConfig, items ...Drawable) error {
	img, err := RenderImage(cfg, items...)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// drawCaption writes text in the top-left corner of dc in Go Mono.
func drawCaption(dc *gg.Context, text string, size float64, col Color) error {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("parse caption font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}))
	dc.SetColor(col.toNRGBA())
	dc.DrawString(text, 8, 8+size)
	return nil
}

// fileLabel turns a free-form label into a file name fragment: ASCII letters,
// digits, '-' and '.' are kept, everything else becomes '_'.
func fileLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "frame"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == '.':
			return r
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		}
		return '_'
	}, label)
}
