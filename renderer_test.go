package img2ascii

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wbrown/img2ascii/imageutil"
)

func renderString(t *testing.T, img *imageutil.GrayImage, opts ...RendererOption) string {
	t.Helper()
	var buf bytes.Buffer
	if err := NewRenderer(opts...).Render(&buf, img); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRendererDefaults(t *testing.T) {
	t.Parallel()

	r := NewRenderer()
	if r.Width != 80 || r.Height != 40 || r.Palette != PaletteClassic || r.Color {
		t.Errorf("unexpected defaults: %+v", r.Config)
	}
	if !r.summedArea || !r.diffusion || r.tableBudget != DefaultTableBudget {
		t.Error("acceleration should be on by default")
	}
}

func TestRenderDimensions(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateNoiseImage(50, 30, 17)
	for _, p := range allPalettes {
		out := renderString(t, img, WithSize(17, 9), WithPalette(p))
		if !strings.HasSuffix(out, "\n") {
			t.Fatalf("%s: output does not end in a newline", p)
		}
		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		if len(lines) != 9 {
			t.Fatalf("%s: %d lines, want 9", p, len(lines))
		}
		for i, line := range lines {
			if len(line) != 17 {
				t.Errorf("%s: line %d has %d glyphs, want 17", p, i, len(line))
			}
		}
	}
}

func TestRenderColorDimensions(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateGradientImage(60, 30)
	out := renderString(t, img, WithSize(12, 5), WithColor(true))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("%d lines, want 5", len(lines))
	}
	for i, line := range lines {
		if n := strings.Count(line, ESC+"[38;2;"); n != 12 {
			t.Errorf("line %d has %d color escapes, want 12", i, n)
		}
		if n := strings.Count(line, ESC+"[0m"); n != 1 || !strings.HasSuffix(line, ESC+"[0m") {
			t.Errorf("line %d should end with exactly one reset", i)
		}
	}
}

func TestRenderUniformHasNoEdges(t *testing.T) {
	t.Parallel()

	sizes := [][2]int{{1, 1}, {5, 3}, {40, 20}, {64, 64}}
	for _, v := range []uint8{0, 77, 200, 255} {
		img := imageutil.CreateSolidImage(32, 32, v)
		for _, p := range allPalettes {
			for _, size := range sizes {
				g, err := NewRenderer(WithSize(size[0], size[1]), WithPalette(p)).RenderGrid(img)
				if err != nil {
					t.Fatalf("RenderGrid: %v", err)
				}
				if n := g.EdgeCount(); n != 0 {
					t.Errorf("value %d, %s, %dx%d: %d edge cells", v, p, size[0], size[1], n)
				}
			}
		}
	}
}

func TestRenderVerticalBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		srcW, srcH  int
		outW, outH  int
		edgeColumns []int
	}{
		{2, 2, 2, 1, []int{0, 1}},
		{8, 4, 4, 2, []int{1}},
		{16, 8, 8, 4, []int{3}},
	}

	for _, tt := range tests {
		img := imageutil.CreateSplitImage(tt.srcW, tt.srcH, 0, 255)
		g, err := NewRenderer(WithSize(tt.outW, tt.outH)).RenderGrid(img)
		if err != nil {
			t.Fatalf("RenderGrid: %v", err)
		}
		for y := 0; y < tt.outH; y++ {
			for _, x := range tt.edgeColumns {
				if c := g.Cells[y][x]; c.Glyph != '|' || !c.Edge {
					t.Errorf("%dx%d->%dx%d: cell (%d,%d) = %+v, want '|' edge",
						tt.srcW, tt.srcH, tt.outW, tt.outH, x, y, c)
				}
			}
		}
		if want := len(tt.edgeColumns) * tt.outH; g.EdgeCount() != want {
			t.Errorf("%dx%d->%dx%d: %d edge cells, want %d",
				tt.srcW, tt.srcH, tt.outW, tt.outH, g.EdgeCount(), want)
		}
	}
}

func TestRenderVerticalGradient(t *testing.T) {
	t.Parallel()

	// Rows step by 17, so interior cells see gy = 136 and gx = 0. The
	// bottom row's centre is clamped to the last source row, which halves
	// the response and leaves it below the edge threshold.
	img := imageutil.CreateVerticalGradientImage(8, 16)
	g, err := NewRenderer(WithSize(4, 8)).RenderGrid(img)
	if err != nil {
		t.Fatalf("RenderGrid: %v", err)
	}
	for y := 0; y < 7; y++ {
		for x, c := range g.Cells[y] {
			if c.Glyph != '-' || !c.Edge {
				t.Errorf("cell (%d,%d) = %+v, want '-' edge", x, y, c)
			}
		}
	}
	for x, c := range g.Cells[7] {
		if c.Edge {
			t.Errorf("bottom cell (%d,7) = %+v, want a tone cell", x, c)
		}
	}
	if got := g.EdgeCount(); got != 28 {
		t.Errorf("%d edge cells, want 28", got)
	}
}

func TestRenderCheckerboardScenario(t *testing.T) {
	t.Parallel()

	img := imageutil.GrayImageFromPixels(2, 2, []uint8{0, 255, 255, 0})
	r := NewRenderer(WithSize(1, 1), WithPalette(PaletteClassic))

	// The cell's tone is 127, which the classic ramp draws as 'U'.
	curve := BuildToneCurve(img, PaletteClassic)
	tone := NewGlyphSelector(PaletteClassic, &curve, nil).Choose(CellSample{LocalValue: 127}, 0, true)
	if tone.Glyph != 'U' {
		t.Errorf("tone glyph for 127 = %q, want 'U'", tone.Glyph)
	}

	// Both Sobel responses are -510 at the centre, so the cell itself is
	// drawn as a diagonal edge.
	g, err := r.RenderGrid(img)
	if err != nil {
		t.Fatalf("RenderGrid: %v", err)
	}
	if got := g.String(); got != "/\n" {
		t.Errorf("output = %q, want %q", got, "/\n")
	}
}

func TestRenderWhiteWithColor(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateSolidImage(5, 3, 255)
	out := renderString(t, img, WithSize(4, 2), WithColor(true))

	line := strings.Repeat(ESC+"[38;2;255;255;255m ", 4) + ESC + "[0m\n"
	if want := line + line; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	plain := renderString(t, img, WithSize(4, 2))
	if plain != "    \n    \n" {
		t.Errorf("plain output = %q", plain)
	}
}

func TestRenderTableBudgetFallback(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateNoiseImage(40, 40, 5)
	want := renderString(t, img, WithSize(20, 10))

	var warnings bytes.Buffer
	got := renderString(t, img, WithSize(20, 10), WithTableBudget(100), WithWarnings(&warnings))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fallback output differs (-tables +direct):\n%s", diff)
	}
	if !strings.HasPrefix(warnings.String(), "WARNING: ") {
		t.Errorf("expected a warning, got %q", warnings.String())
	}

	warnings.Reset()
	got = renderString(t, img, WithSize(20, 10), WithoutSummedArea(), WithWarnings(&warnings))
	if got != want {
		t.Error("WithoutSummedArea output differs from table output")
	}
	if warnings.Len() != 0 {
		t.Errorf("unexpected warning: %q", warnings.String())
	}
}

func TestRenderWithoutDiffusion(t *testing.T) {
	t.Parallel()

	// Flat mid-gray: without diffusion every cell quantizes the same way.
	img := imageutil.CreateSolidImage(30, 30, 128)
	g, err := NewRenderer(WithSize(10, 5), WithoutDiffusion()).RenderGrid(img)
	if err != nil {
		t.Fatalf("RenderGrid: %v", err)
	}
	first := g.Cells[0][0]
	for y, row := range g.Cells {
		for x, c := range row {
			if c != first {
				t.Fatalf("cell (%d,%d) = %+v, want %+v", x, y, c, first)
			}
		}
	}

	noise := imageutil.CreateNoiseImage(60, 40, 9)
	g, err = NewRenderer(WithSize(30, 10), WithoutDiffusion(), WithPalette(PaletteBlocks)).RenderGrid(noise)
	if err != nil {
		t.Fatalf("RenderGrid: %v", err)
	}
	for y, row := range g.Cells {
		for x, c := range row {
			if !c.Edge && !strings.ContainsRune(PaletteBlocks.Glyphs(), rune(c.Glyph)) {
				t.Fatalf("cell (%d,%d) glyph %q not in palette", x, y, c.Glyph)
			}
		}
	}
}

func TestRenderDiagonalEdge(t *testing.T) {
	t.Parallel()

	// Dark triangle above x = y + 20; the boundary runs down and to the
	// right.
	img := imageutil.CreateDiagonalEdgeImage(200, 120, 20)
	out := renderString(t, img, WithSize(100, 50))

	if n := strings.Count(out, "\\"); n < 25 {
		t.Errorf("%d '\\' glyphs, want at least 25", n)
	}
	if n := strings.Count(out, "/"); n != 0 {
		t.Errorf("%d '/' glyphs on a down-right boundary", n)
	}
}

func TestRenderLowContrastDetail(t *testing.T) {
	t.Parallel()

	img := imageutil.NewGrayImage(320, 96)
	for y := 0; y < 96; y++ {
		row := img.Row(y)
		for x := range row {
			row[x] = uint8(96 + x*40/319)
		}
	}
	out := renderString(t, img, WithSize(160, 48))

	seen := make(map[rune]bool)
	for _, r := range out {
		if r != '\n' {
			seen[r] = true
		}
	}
	if len(seen) < 24 {
		t.Errorf("%d distinct glyphs, want at least 24 after stretching", len(seen))
	}
}

func TestGridEmitMatchesRender(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateCheckerboardImage(48, 32, 4)
	for _, color := range []bool{false, true} {
		r := NewRenderer(WithSize(24, 8), WithColor(color))
		var direct, replay bytes.Buffer
		if err := r.Render(&direct, img); err != nil {
			t.Fatal(err)
		}
		g, err := r.RenderGrid(img)
		if err != nil {
			t.Fatal(err)
		}
		if err := g.Emit(&replay, color); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(direct.String(), replay.String()); diff != "" {
			t.Errorf("color=%v: replay differs (-render +emit):\n%s", color, diff)
		}
		if !color && g.String() != direct.String() {
			t.Error("Grid.String differs from plain render")
		}
	}
}

func TestRenderInvalidInput(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateSolidImage(4, 4, 0)

	var cfgErr *ConfigError
	err := NewRenderer(WithSize(0, 5)).Render(&bytes.Buffer{}, img)
	if !errors.As(err, &cfgErr) || cfgErr.Field != "width" {
		t.Errorf("zero width: got %v", err)
	}
	err = NewRenderer(WithSize(5, -1)).Render(&bytes.Buffer{}, img)
	if !errors.As(err, &cfgErr) || cfgErr.Field != "height" {
		t.Errorf("negative height: got %v", err)
	}
	err = NewRenderer(WithPalette(Palette(9))).Render(&bytes.Buffer{}, img)
	if !errors.As(err, &cfgErr) || cfgErr.Field != "palette" {
		t.Errorf("bad palette: got %v", err)
	}

	var out bytes.Buffer
	if err := NewRenderer().Render(&out, nil); !errors.Is(err, ErrEmptyRaster) {
		t.Errorf("nil raster: got %v", err)
	}
	if err := NewRenderer().Render(&out, imageutil.NewGrayImage(0, 3)); !errors.Is(err, ErrEmptyRaster) {
		t.Errorf("empty raster: got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("failed renders wrote %q", out.String())
	}
}

func TestConfigErrorMessages(t *testing.T) {
	t.Parallel()

	_, paletteErr := ParsePalette("neon")
	_, colorErr := ParseColorMode("sometimes")
	tests := []struct {
		err  error
		want string
	}{
		{Config{Width: 0, Height: 5}.Validate(), "invalid width '0': must be positive"},
		{Config{Width: 5, Height: -1}.Validate(), "invalid height '-1': must be positive"},
		{Config{Width: 5, Height: 5, Palette: Palette(9)}.Validate(), "invalid palette 'Palette(9)': unknown palette"},
		{paletteErr, "invalid palette 'neon': invalid palette (use classic|smooth|blocks)"},
		{colorErr, "invalid color mode 'sometimes': use auto|always|never"},
	}
	for _, tt := range tests {
		if tt.err == nil {
			t.Errorf("expected %q, got nil", tt.want)
			continue
		}
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestRenderWriteError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	err := NewRenderer(WithSize(4, 2)).Render(failingWriter{boom}, imageutil.CreateSolidImage(4, 4, 50))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped write error, got %v", err)
	}
}

func TestRendererConcurrentUse(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateNoiseImage(64, 48, 3)
	r := NewRenderer(WithSize(32, 12), WithPalette(PaletteSmooth))
	want := renderString(t, img, WithSize(32, 12), WithPalette(PaletteSmooth))

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var buf bytes.Buffer
			if err := r.Render(&buf, img); err == nil {
				results[i] = buf.String()
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Errorf("goroutine %d produced different output", i)
		}
	}
}
