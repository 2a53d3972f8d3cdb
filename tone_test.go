package img2ascii

import (
	"testing"

	"github.com/wbrown/img2ascii/imageutil"
)

var allPalettes = []Palette{PaletteClassic, PaletteSmooth, PaletteBlocks}

func TestToneCurveMonotonic(t *testing.T) {
	t.Parallel()

	images := map[string]*imageutil.GrayImage{
		"gradient": imageutil.CreateGradientImage(64, 16),
		"noise":    imageutil.CreateNoiseImage(40, 30, 7),
		"narrow":   imageutil.CreateSplitImage(50, 50, 90, 140),
		"solid":    imageutil.CreateSolidImage(10, 10, 128),
		"single":   imageutil.CreateSolidImage(1, 1, 0),
	}

	for name, img := range images {
		for _, p := range allPalettes {
			curve := BuildToneCurve(img, p)
			for i := 1; i < len(curve); i++ {
				if curve[i] < curve[i-1] {
					t.Fatalf("%s/%s: curve[%d]=%d < curve[%d]=%d",
						name, p, i, curve[i], i-1, curve[i-1])
				}
			}
		}
	}
}

func TestToneCurveDegenerateUsesFullRange(t *testing.T) {
	t.Parallel()

	// Every pixel is 128, so the percentiles coincide.
	img := imageutil.CreateSolidImage(10, 10, 128)
	for _, p := range allPalettes {
		curve := BuildToneCurve(img, p)
		if curve[0] != 0 || curve[255] != 255 {
			t.Errorf("%s: endpoints %d..%d, want 0..255", p, curve[0], curve[255])
		}
		for i := range curve {
			if curve[i] != p.respond(i) {
				t.Fatalf("%s: curve[%d] = %d, want unstretched %d", p, i, curve[i], p.respond(i))
			}
		}
	}

	classic := BuildToneCurve(img, PaletteClassic)
	if classic[127] != 108 {
		t.Errorf("classic curve[127] = %d, want 108", classic[127])
	}
}

func TestToneCurveSmallRasterKeepsZeroLow(t *testing.T) {
	t.Parallel()

	// 16 pixels put the low threshold at 0, which the first histogram bin
	// always reaches, so the range is [0, 9] rather than degenerate.
	curve := BuildToneCurve(imageutil.CreateSolidImage(4, 4, 9), PaletteClassic)
	if curve[0] != 0 {
		t.Errorf("curve[0] = %d, want 0", curve[0])
	}
	if curve[9] != 255 || curve[127] != 255 {
		t.Errorf("curve[9], curve[127] = %d, %d, want 255 above the range", curve[9], curve[127])
	}
}

func TestToneCurveClipsToPercentiles(t *testing.T) {
	t.Parallel()

	// Half 90, half 140: the 1st percentile is 90 and the 99th is 140.
	img := imageutil.CreateSplitImage(50, 50, 90, 140)
	curve := BuildToneCurve(img, PaletteSmooth)

	for i := 0; i <= 90; i++ {
		if curve[i] != 0 {
			t.Fatalf("curve[%d] = %d, want 0 below the low percentile", i, curve[i])
		}
	}
	for i := 140; i <= 255; i++ {
		if curve[i] != 255 {
			t.Fatalf("curve[%d] = %d, want 255 above the high percentile", i, curve[i])
		}
	}
	// Midpoint stretches to (115-90)*255/50 = 127.
	if want := PaletteSmooth.respond(127); curve[115] != want {
		t.Errorf("curve[115] = %d, want %d", curve[115], want)
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	var h [256]uint64
	h[10] = 5
	h[20] = 90
	h[200] = 5

	if got := percentile(&h, 1, 0); got != 10 {
		t.Errorf("low = %d, want 10", got)
	}
	if got := percentile(&h, 99, 255); got != 200 {
		t.Errorf("high = %d, want 200", got)
	}
	if got := percentile(&h, 1000, 255); got != 255 {
		t.Errorf("unreachable threshold = %d, want fallback 255", got)
	}
}
