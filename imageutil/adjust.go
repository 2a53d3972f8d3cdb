package imageutil

import (
	"image"

	"github.com/disintegration/imaging"
)

// Adjustments are optional tonal corrections applied to a raster before it
// is rendered. The zero value leaves the raster untouched.
type Adjustments struct {
	// Gamma of 1.0 (or 0, meaning unset) gives the original image. Less
	// than 1.0 darkens, greater than 1.0 lightens.
	Gamma float64
	// Brightness in the range [-100, 100].
	Brightness float64
	// Contrast in the range [-100, 100].
	Contrast float64
	// Sharpen is the sigma of the unsharp mask; 0 disables it.
	Sharpen float64
	// SigmoidMidpoint and SigmoidFactor apply a sigmoidal contrast curve
	// when SigmoidFactor is non-zero.
	SigmoidMidpoint float64
	SigmoidFactor   float64
	// Invert swaps light and dark.
	Invert bool
}

// IsZero reports whether applying a would change nothing.
func (a Adjustments) IsZero() bool {
	return (a.Gamma == 0 || a.Gamma == 1) &&
		a.Brightness == 0 &&
		a.Contrast == 0 &&
		a.Sharpen == 0 &&
		a.SigmoidFactor == 0 &&
		!a.Invert
}

// Apply returns an adjusted copy of img. The input raster is not modified.
func (a Adjustments) Apply(img *GrayImage) *GrayImage {
	if a.IsZero() {
		return img
	}

	var out image.Image = img.Gray
	if a.Gamma != 0 && a.Gamma != 1 {
		out = imaging.AdjustGamma(out, a.Gamma)
	}
	if a.Brightness != 0 {
		out = imaging.AdjustBrightness(out, a.Brightness)
	}
	if a.Sharpen != 0 {
		out = imaging.Sharpen(out, a.Sharpen)
	}
	if a.Contrast != 0 {
		out = imaging.AdjustContrast(out, a.Contrast)
	}
	if a.SigmoidFactor != 0 {
		midpoint := a.SigmoidMidpoint
		if midpoint == 0 {
			midpoint = 0.5
		}
		out = imaging.AdjustSigmoid(out, midpoint, a.SigmoidFactor)
	}
	if a.Invert {
		out = imaging.Invert(out)
	}

	// imaging works in NRGBA with equal channels, so any channel is the
	// luminance.
	nrgba := out.(*image.NRGBA)
	gray := NewGrayImage(img.Width(), img.Height())
	for y := 0; y < gray.Height(); y++ {
		row := gray.Row(y)
		for x := range row {
			row[x] = nrgba.Pix[nrgba.PixOffset(x, y)]
		}
	}
	return gray
}
