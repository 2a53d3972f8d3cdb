package img2ascii

import (
	"image"

	"github.com/wbrown/img2ascii/imageutil"
)

// Local contrast gain by neighborhood variance. Flat areas get the most
// boost.
const (
	flatVariance  = 180.0
	mixedVariance = 800.0

	flatGain  = 2.35
	mixedGain = 1.95
	busyGain  = 1.55
)

// CellSample is everything the glyph selector needs to know about one
// output cell.
type CellSample struct {
	// Region is the source rectangle averaged into the cell.
	Region image.Rectangle
	// Average is the integer mean of Region.
	Average int
	// GradientX and GradientY are the Sobel responses at the centre of
	// Region.
	GradientX, GradientY int
	// LocalMean and Variance describe the wider neighborhood around the
	// cell.
	LocalMean int
	Variance  float64
	// LocalValue is Average pushed away from LocalMean by the
	// variance-dependent gain, clamped to [0, 255].
	LocalValue int
}

// CellSampler maps output cells onto source regions and measures them.
type CellSampler struct {
	img     *imageutil.GrayImage
	summary *AreaSummary

	scaleX, scaleY float32
}

// NewCellSampler creates a sampler for an outputWidth x outputHeight grid
// over img. A nil summary makes every statistic a direct sum over the
// region; results are identical either way.
func NewCellSampler(img *imageutil.GrayImage, summary *AreaSummary, outputWidth, outputHeight int) *CellSampler {
	return &CellSampler{
		img:     img,
		summary: summary,
		scaleX:  float32(img.Width()) / float32(outputWidth),
		scaleY:  float32(img.Height()) / float32(outputHeight),
	}
}

// Region returns the source rectangle for output cell (x, y). It is never
// empty and never leaves the raster.
func (s *CellSampler) Region(x, y int) image.Rectangle {
	x0, x1 := span(x, s.scaleX, s.img.Width())
	y0, y1 := span(y, s.scaleY, s.img.Height())
	return image.Rect(x0, y0, x1, y1)
}

// span maps output index i to the half-open source interval it covers.
func span(i int, scale float32, limit int) (lo, hi int) {
	lo = int(float32(i) * scale)
	hi = int(float32(i+1) * scale)
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
	}
	if hi > limit {
		hi = limit
	}
	if lo >= limit {
		lo, hi = limit-1, limit
	}
	return lo, hi
}

// Sample measures output cell (x, y).
func (s *CellSampler) Sample(x, y int) CellSample {
	region := s.Region(x, y)
	sum, _ := s.sums(region)
	average := int(sum / uint64(region.Dx()*region.Dy()))

	cx := (region.Min.X + region.Max.X) >> 1
	cy := (region.Min.Y + region.Max.Y) >> 1
	gx, gy := imageutil.SobelAt(s.img, cx, cy)

	localMean, variance := s.neighborhood(region, cx, cy, average)

	gain := busyGain
	if variance < flatVariance {
		gain = flatGain
	} else if variance < mixedVariance {
		gain = mixedGain
	}
	local := int(float64(average) + gain*float64(average-localMean))

	return CellSample{
		Region:     region,
		Average:    average,
		GradientX:  gx,
		GradientY:  gy,
		LocalMean:  localMean,
		Variance:   variance,
		LocalValue: int(clampUint8(local)),
	}
}

// neighborhood returns the rounded mean and the variance of a window twice
// the region's size in each direction around (cx, cy).
func (s *CellSampler) neighborhood(region image.Rectangle, cx, cy, fallback int) (int, float64) {
	radiusX := max(region.Dx()*2, 1)
	radiusY := max(region.Dy()*2, 1)
	window := image.Rect(cx-radiusX, cy-radiusY, cx+radiusX+1, cy+radiusY+1).
		Intersect(s.img.Bounds())

	count := window.Dx() * window.Dy()
	if count <= 0 {
		return fallback, 0
	}

	sum, squares := s.sums(window)
	mean := float64(sum) / float64(count)
	variance := float64(squares)/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return int(mean + 0.5), variance
}

func (s *CellSampler) sums(r image.Rectangle) (uint64, uint64) {
	if s.summary == nil {
		return directSums(s.img, r)
	}
	return s.summary.Sum(r), s.summary.SumSquares(r)
}
