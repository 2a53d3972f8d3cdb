package img2ascii

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wbrown/img2ascii/imageutil"
)

// Config is the render configuration.
type Config struct {
	// Width and Height are the output size in glyphs.
	Width  int
	Height int

	Palette Palette

	// Color wraps every glyph in a 24-bit foreground escape for its shade.
	Color bool
}

// DefaultConfig returns an 80x40 classic render without color.
func DefaultConfig() Config {
	return Config{Width: 80, Height: 40, Palette: PaletteClassic}
}

// Validate checks that the configuration can be rendered.
func (c Config) Validate() error {
	if c.Width <= 0 {
		return &ConfigError{Field: "width", Value: strconv.Itoa(c.Width), Err: errors.New("must be positive")}
	}
	if c.Height <= 0 {
		return &ConfigError{Field: "height", Value: strconv.Itoa(c.Height), Err: errors.New("must be positive")}
	}
	if !c.Palette.Valid() {
		return &ConfigError{Field: "palette", Value: c.Palette.String(), Err: errors.New("unknown palette")}
	}
	return nil
}

// Renderer converts grayscale rasters to glyph art. A Renderer only holds
// configuration; every Render call builds its own tables and error
// buffers, so one Renderer may be used from several goroutines.
type Renderer struct {
	Config

	warnings    io.Writer
	summedArea  bool
	diffusion   bool
	tableBudget int
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// NewRenderer creates a new Renderer with the given options.
// Default values: 80x40, classic palette, no color, summed-area tables
// up to DefaultTableBudget cells, error diffusion on, warnings to stderr.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		Config:      DefaultConfig(),
		warnings:    os.Stderr,
		summedArea:  true,
		diffusion:   true,
		tableBudget: DefaultTableBudget,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithConfig replaces the whole render configuration.
func WithConfig(c Config) RendererOption {
	return func(r *Renderer) {
		r.Config = c
	}
}

// WithSize sets the output size in glyphs.
func WithSize(width, height int) RendererOption {
	return func(r *Renderer) {
		r.Width = width
		r.Height = height
	}
}

// WithPalette sets the glyph palette.
func WithPalette(p Palette) RendererOption {
	return func(r *Renderer) {
		r.Palette = p
	}
}

// WithColor enables or disables ANSI color output.
func WithColor(enabled bool) RendererOption {
	return func(r *Renderer) {
		r.Color = enabled
	}
}

// WithWarnings sets where degradation warnings are written. A nil writer
// discards them.
func WithWarnings(w io.Writer) RendererOption {
	return func(r *Renderer) {
		if w == nil {
			w = io.Discard
		}
		r.warnings = w
	}
}

// WithoutSummedArea computes every region statistic directly from the
// raster. Output is identical, only slower.
func WithoutSummedArea() RendererOption {
	return func(r *Renderer) {
		r.summedArea = false
	}
}

// WithoutDiffusion quantizes every cell independently.
func WithoutDiffusion() RendererOption {
	return func(r *Renderer) {
		r.diffusion = false
	}
}

// WithTableBudget caps the summed-area tables at cells entries each.
// Rasters needing more fall back to direct sums. Zero or less removes
// the cap.
func WithTableBudget(cells int) RendererOption {
	return func(r *Renderer) {
		r.tableBudget = cells
	}
}

// Render writes exactly Height lines of Width glyphs for img to w.
func (r *Renderer) Render(w io.Writer, img *imageutil.GrayImage) error {
	lw := NewLineWriter(w, r.Color)
	err := r.render(img, func(cells []Choice) error {
		glyphs, shades := splitCells(cells)
		return lw.WriteLine(glyphs, shades)
	})
	if err != nil {
		return err
	}
	if err := lw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// RenderGrid runs the same pipeline as Render and returns the cells
// instead of writing them.
func (r *Renderer) RenderGrid(img *imageutil.GrayImage) (*Grid, error) {
	g := &Grid{Width: r.Width, Height: r.Height}
	err := r.render(img, func(cells []Choice) error {
		g.Cells = append(g.Cells, append([]Choice(nil), cells...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// render runs the row loop, handing each finished row to emit. The row
// slice is reused between calls.
func (r *Renderer) render(img *imageutil.GrayImage, emit func([]Choice) error) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if img == nil || img.Width() == 0 || img.Height() == 0 {
		return ErrEmptyRaster
	}

	curve := BuildToneCurve(img, r.Palette)

	var summary *AreaSummary
	if r.summedArea {
		var err error
		if summary, err = BuildAreaSummary(img, r.tableBudget); err != nil {
			r.warn("%v; using direct region sums", err)
		}
	}

	var diffusion *DiffusionBuffer
	if r.diffusion {
		var err error
		if diffusion, err = NewDiffusionBuffer(r.Width); err != nil {
			r.warn("%v; error diffusion disabled", err)
		}
	}

	sampler := NewCellSampler(img, summary, r.Width, r.Height)
	selector := NewGlyphSelector(r.Palette, &curve, diffusion)
	row := make([]Choice, r.Width)

	for y := 0; y < r.Height; y++ {
		selector.BeginRow()
		leftToRight := y%2 == 0
		for i := 0; i < r.Width; i++ {
			x := i
			if !leftToRight {
				x = r.Width - 1 - i
			}
			row[x] = selector.Choose(sampler.Sample(x, y), x, leftToRight)
		}
		selector.EndRow()

		if err := emit(row); err != nil {
			return fmt.Errorf("write row %d: %w", y, err)
		}
	}
	return nil
}

func (r *Renderer) warn(format string, args ...interface{}) {
	fmt.Fprintf(r.warnings, "WARNING: "+format+"\n", args...)
}

// Grid is a rendered glyph grid, row-major.
type Grid struct {
	Width  int
	Height int
	Cells  [][]Choice
}

// Row returns the glyphs and shades of row y.
func (g *Grid) Row(y int) ([]byte, []uint8) {
	return splitCells(g.Cells[y])
}

// EdgeCount returns how many cells were drawn from the gradient.
func (g *Grid) EdgeCount() int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			if c.Edge {
				n++
			}
		}
	}
	return n
}

// Emit writes the grid through a LineWriter.
func (g *Grid) Emit(w io.Writer, color bool) error {
	lw := NewLineWriter(w, color)
	for y := range g.Cells {
		glyphs, shades := g.Row(y)
		if err := lw.WriteLine(glyphs, shades); err != nil {
			return fmt.Errorf("write row %d: %w", y, err)
		}
	}
	return lw.Flush()
}

// String returns the grid as plain text, one line per row.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow((g.Width + 1) * g.Height)
	for _, row := range g.Cells {
		for _, c := range row {
			sb.WriteByte(c.Glyph)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func splitCells(cells []Choice) ([]byte, []uint8) {
	glyphs := make([]byte, len(cells))
	shades := make([]uint8, len(cells))
	for i, c := range cells {
		glyphs[i] = c.Glyph
		shades[i] = c.Shade
	}
	return glyphs, shades
}
