package img2ascii

import (
	"fmt"
	"math"
)

// Edge classification thresholds on |gx| + |gy|. Quiet neighborhoods use
// the lower one so faint outlines still register.
const (
	quietVariance     = 220.0
	quietEdgeMinimum  = 76
	activeEdgeMinimum = 116
)

// Floyd-Steinberg weights.
const (
	weightForward         = 7.0 / 16.0
	weightBehindBelow     = 3.0 / 16.0
	weightBelow           = 5.0 / 16.0
	weightForwardBelow    = 1.0 / 16.0
	diffusionPaddingCells = 2
)

// DiffusionBuffer carries quantization error between cells. Current holds
// error arriving at cells of the row being scanned, Next collects error for
// the row below. Both have one padding cell at each end, so column c lives
// at index c+1.
type DiffusionBuffer struct {
	Current []float32
	Next    []float32
}

// NewDiffusionBuffer allocates a buffer for rows of width cells.
func NewDiffusionBuffer(width int) (*DiffusionBuffer, error) {
	if width <= 0 || width > math.MaxInt-diffusionPaddingCells {
		return nil, fmt.Errorf("%w: diffusion row of %d cells", ErrAccelerationUnavailable, width)
	}
	n := width + diffusionPaddingCells
	return &DiffusionBuffer{
		Current: make([]float32, n),
		Next:    make([]float32, n),
	}, nil
}

// BeginRow clears the error collected for the row below.
func (b *DiffusionBuffer) BeginRow() {
	clear(b.Next)
}

// Swap makes the collected error current once a row is finished.
func (b *DiffusionBuffer) Swap() {
	b.Current, b.Next = b.Next, b.Current
}

// Incoming returns the error waiting at column.
func (b *DiffusionBuffer) Incoming(column int) float32 {
	return b.Current[column+1]
}

// Reset discards the error waiting at column.
func (b *DiffusionBuffer) Reset(column int) {
	b.Current[column+1] = 0
}

// Distribute spreads residual from column to the unvisited neighbors.
// Forward and behind follow the scan direction.
func (b *DiffusionBuffer) Distribute(column int, residual float32, leftToRight bool) {
	i := column + 1
	step := 1
	if !leftToRight {
		step = -1
	}
	b.Current[i+step] += residual * weightForward
	b.Next[i-step] += residual * weightBehindBelow
	b.Next[i] += residual * weightBelow
	b.Next[i+step] += residual * weightForwardBelow
}

// Choice is the selector's decision for one cell.
type Choice struct {
	Glyph byte
	Shade uint8
	// Edge is set when the glyph came from the gradient rather than the
	// tone ramp.
	Edge bool
	// Index is the quantization level for tone cells, -1 for edges.
	Index int
}

// GlyphSelector turns cell samples into glyphs, dithering tone cells with
// a DiffusionBuffer. One selector serves one render.
type GlyphSelector struct {
	glyphs    string
	levels    int
	curve     *ToneCurve
	diffusion *DiffusionBuffer
}

// NewGlyphSelector creates a selector. A nil diffusion buffer quantizes
// every cell independently.
func NewGlyphSelector(palette Palette, curve *ToneCurve, diffusion *DiffusionBuffer) *GlyphSelector {
	return &GlyphSelector{
		glyphs:    palette.Glyphs(),
		levels:    palette.levels(),
		curve:     curve,
		diffusion: diffusion,
	}
}

// BeginRow prepares the error buffers for a new row.
func (s *GlyphSelector) BeginRow() {
	if s.diffusion != nil {
		s.diffusion.BeginRow()
	}
}

// EndRow hands the collected error on to the next row.
func (s *GlyphSelector) EndRow() {
	if s.diffusion != nil {
		s.diffusion.Swap()
	}
}

// Choose picks the glyph for the cell at column. Cells must be visited in
// scan order, with leftToRight giving the direction of the current row.
func (s *GlyphSelector) Choose(sample CellSample, column int, leftToRight bool) Choice {
	threshold := activeEdgeMinimum
	if sample.Variance < quietVariance {
		threshold = quietEdgeMinimum
	}
	if abs(sample.GradientX)+abs(sample.GradientY) > threshold {
		if s.diffusion != nil {
			s.diffusion.Reset(column)
		}
		return Choice{
			Glyph: edgeGlyph(sample.GradientX, sample.GradientY),
			Shade: uint8(sample.LocalValue),
			Edge:  true,
			Index: -1,
		}
	}

	tone := float32(s.curve[sample.LocalValue])
	if s.diffusion != nil {
		tone += s.diffusion.Incoming(column)
		tone = min(max(tone, 0), 255)
	}

	index := int(tone*float32(s.levels-1)/255 + 0.5)
	index = min(max(index, 0), s.levels-1)
	shade := dequantize(index, s.levels)

	if s.diffusion != nil {
		s.diffusion.Distribute(column, tone-float32(shade), leftToRight)
	}

	return Choice{
		Glyph: s.glyphs[min(index, len(s.glyphs)-1)],
		Shade: shade,
		Index: index,
	}
}

// dequantize maps a quantization level back to the nearest 8-bit value.
func dequantize(index, levels int) uint8 {
	// Rounded, not truncated: level 27 of 65 is 108 rather than 107.
	return uint8((index*255 + (levels-1)/2) / (levels - 1))
}

// edgeGlyph draws the edge line perpendicular to the gradient. Image y grows
// downward, so a gradient pointing down-right lies across a '/' edge.
func edgeGlyph(gx, gy int) byte {
	ax, ay := abs(gx), abs(gy)
	switch {
	case ax > ay*2:
		return '|'
	case ay > ax*2:
		return '-'
	case (gx < 0) == (gy < 0):
		return '/'
	default:
		return '\\'
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
