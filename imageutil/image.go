// Package imageutil provides the raster side of img2ascii: decoding PNG and
// JPEG files into 8-bit grayscale, optional tonal adjustments, and the small
// pixel-level helpers the renderer samples with.
package imageutil

import "image"

// GrayImage wraps image.Gray as the renderer's raster. Its bounds always
// start at (0, 0) and callers treat it as immutable once rendering begins.
type GrayImage struct {
	*image.Gray
}

// NewGrayImage creates a new GrayImage with the specified dimensions.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Gray: image.NewGray(image.Rect(0, 0, width, height)),
	}
}

// GrayImageFromPixels builds a raster from a row-major luminance buffer.
// The buffer is copied, so the caller may reuse it.
func GrayImageFromPixels(width, height int, pix []uint8) *GrayImage {
	gray := NewGrayImage(width, height)
	copy(gray.Pix, pix)
	return gray
}

// Width returns the image width.
func (img *GrayImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *GrayImage) Height() int {
	return img.Bounds().Dy()
}

// GetGray returns the grayscale value at (x, y).
func (img *GrayImage) GetGray(x, y int) uint8 {
	return img.Pix[y*img.Stride+x]
}

// ClampedGray returns the value at (x, y) with coordinates outside the image
// pulled to the nearest valid row and column.
func (img *GrayImage) ClampedGray(x, y int) uint8 {
	x = clampInt(x, 0, img.Width()-1)
	y = clampInt(y, 0, img.Height()-1)
	return img.Pix[y*img.Stride+x]
}

// Row returns the samples of row y without copying.
func (img *GrayImage) Row(y int) []uint8 {
	start := y * img.Stride
	return img.Pix[start : start+img.Width()]
}
