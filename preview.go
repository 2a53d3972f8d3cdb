package img2ascii

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultPreviewFontSize is the point size used for TrueType preview fonts
// when none is given.
const DefaultPreviewFontSize = 12.0

// PreviewOptions controls how a grid is drawn to an image.
type PreviewOptions struct {
	// FontPath selects a TrueType font. Empty uses the built-in 7x13
	// bitmap face.
	FontPath string
	// FontSize is the TrueType point size at 72 DPI.
	FontSize float64
	// Color draws each glyph in its cell shade instead of white.
	Color bool
}

// SavePreviewPNG draws the grid and saves it as a PNG file.
func SavePreviewPNG(g *Grid, path string, opts PreviewOptions) error {
	img, err := RenderPreview(g, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	return f.Close()
}

// RenderPreview draws every glyph of the grid into a fixed-size cell on a
// black background. Cells are as wide as the face's 'M' advance and as
// tall as its line height.
func RenderPreview(g *Grid, opts PreviewOptions) (*image.Gray, error) {
	face, err := previewFace(opts)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	metrics := face.Metrics()
	advance, ok := face.GlyphAdvance('M')
	if !ok {
		advance = font.MeasureString(face, "M")
	}
	cellW := max(advance.Ceil(), 1)
	cellH := max(metrics.Height.Ceil(), 1)
	ascent := metrics.Ascent.Ceil()

	img := image.NewGray(image.Rect(0, 0, g.Width*cellW, g.Height*cellH))
	d := &font.Drawer{Dst: img, Face: face}

	for y, row := range g.Cells {
		for x, c := range row {
			if c.Glyph == ' ' {
				continue
			}
			shade := uint8(255)
			if opts.Color {
				shade = c.Shade
			}
			d.Src = image.NewUniform(color.Gray{Y: shade})
			d.Dot = fixed.P(x*cellW, y*cellH+ascent)
			d.DrawString(string(rune(c.Glyph)))
		}
	}

	return img, nil
}

// previewFace opens the configured face. The caller closes it.
func previewFace(opts PreviewOptions) (font.Face, error) {
	if opts.FontPath == "" {
		return basicfont.Face7x13, nil
	}

	fontBytes, err := os.ReadFile(opts.FontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	ttf, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", opts.FontPath, err)
	}

	size := opts.FontSize
	if size <= 0 {
		size = DefaultPreviewFontSize
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
