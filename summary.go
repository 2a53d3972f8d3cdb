package img2ascii

import (
	"fmt"
	"image"

	"github.com/wbrown/img2ascii/imageutil"
)

// DefaultTableBudget is the largest summed-area table, in cells, built
// unless a renderer is configured otherwise. It covers the largest raster
// the decoder accepts.
const DefaultTableBudget = (imageutil.MaxDimension + 1) * (imageutil.MaxDimension + 1)

// AreaSummary holds summed-area tables of a raster's values and squared
// values. Both tables have a zero first row and column, so any rectangle's
// sum is four lookups.
type AreaSummary struct {
	sum        []uint64
	sumSquares []uint64
	stride     int
}

// BuildAreaSummary builds the tables for img. It returns
// ErrAccelerationUnavailable when the tables would exceed maxCells cells
// or their size cannot be computed; maxCells <= 0 means no budget.
func BuildAreaSummary(img *imageutil.GrayImage, maxCells int) (*AreaSummary, error) {
	width, height := img.Width(), img.Height()
	stride := width + 1

	cells, ok := imageutil.PixelCount(stride, height+1)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d table overflows", ErrAccelerationUnavailable, stride, height+1)
	}
	if _, ok := imageutil.PixelCount(cells, 16); !ok {
		return nil, fmt.Errorf("%w: %d cells overflow", ErrAccelerationUnavailable, cells)
	}
	if maxCells > 0 && cells > maxCells {
		return nil, fmt.Errorf("%w: %d cells exceed budget of %d", ErrAccelerationUnavailable, cells, maxCells)
	}

	s := &AreaSummary{
		sum:        make([]uint64, cells),
		sumSquares: make([]uint64, cells),
		stride:     stride,
	}

	for y := 1; y <= height; y++ {
		var rowSum, rowSquares uint64
		source := img.Row(y - 1)
		current := y * stride
		previous := (y - 1) * stride
		for x := 1; x <= width; x++ {
			v := uint64(source[x-1])
			rowSum += v
			rowSquares += v * v
			s.sum[current+x] = s.sum[previous+x] + rowSum
			s.sumSquares[current+x] = s.sumSquares[previous+x] + rowSquares
		}
	}

	return s, nil
}

// Sum returns the sum of the raster values inside r.
func (s *AreaSummary) Sum(r image.Rectangle) uint64 {
	return s.query(s.sum, r)
}

// SumSquares returns the sum of the squared raster values inside r.
func (s *AreaSummary) SumSquares(r image.Rectangle) uint64 {
	return s.query(s.sumSquares, r)
}

func (s *AreaSummary) query(table []uint64, r image.Rectangle) uint64 {
	x0, y0, x1, y1 := r.Min.X, r.Min.Y, r.Max.X, r.Max.Y
	return table[y1*s.stride+x1] - table[y0*s.stride+x1] -
		table[y1*s.stride+x0] + table[y0*s.stride+x0]
}

// directSums computes the same sums as AreaSummary by visiting every pixel
// of r.
func directSums(img *imageutil.GrayImage, r image.Rectangle) (sum, squares uint64) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Row(y)
		for _, v := range row[r.Min.X:r.Max.X] {
			p := uint64(v)
			sum += p
			squares += p * p
		}
	}
	return sum, squares
}
