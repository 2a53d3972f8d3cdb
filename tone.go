package img2ascii

import "github.com/wbrown/img2ascii/imageutil"

// ToneCurve maps raw luminance to contrast-stretched, palette-shaped
// luminance.
type ToneCurve [256]uint8

// BuildToneCurve stretches the 1st..99th percentile of the raster's
// histogram onto [0, 255] and then applies the palette's fixed response.
// Images too flat to have a usable percentile range keep the full range.
func BuildToneCurve(img *imageutil.GrayImage, palette Palette) ToneCurve {
	var histogram [256]uint64
	for y := 0; y < img.Height(); y++ {
		for _, v := range img.Row(y) {
			histogram[v]++
		}
	}

	pixelCount := uint64(img.Width()) * uint64(img.Height())
	low := percentile(&histogram, pixelCount/100, 0)
	high := percentile(&histogram, pixelCount*99/100, 255)
	if high <= low {
		low, high = 0, 255
	}

	var curve ToneCurve
	span := high - low
	for i := range curve {
		var normalized int
		switch {
		case i <= low:
			normalized = 0
		case i >= high:
			normalized = 255
		default:
			normalized = (i - low) * 255 / span
		}
		curve[i] = palette.respond(normalized)
	}
	return curve
}

// percentile returns the smallest value whose cumulative count reaches
// threshold, or fallback if none does.
func percentile(histogram *[256]uint64, threshold uint64, fallback int) int {
	var acc uint64
	for i, n := range histogram {
		acc += n
		if acc >= threshold {
			return i
		}
	}
	return fallback
}
