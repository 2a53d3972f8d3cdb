package imageutil

import (
	"image"
	"image/color"
)

// ToGrayscale converts a decoded image to a raster using the BT.601
// luminance formula Y = 0.299*R + 0.587*G + 0.114*B in integer form.
// Translucent pixels are first composited onto a white background, channel
// by channel, so fully transparent areas come out white.
func ToGrayscale(img image.Image) *GrayImage {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	gray := NewGrayImage(width, height)

	switch src := img.(type) {
	case *image.Gray:
		// Gray replicated into R, G and B gives back the same value.
		for y := 0; y < height; y++ {
			start := (y+bounds.Min.Y-src.Rect.Min.Y)*src.Stride + (bounds.Min.X - src.Rect.Min.X)
			copy(gray.Row(y), src.Pix[start:start+width])
		}
	case *image.NRGBA:
		for y := 0; y < height; y++ {
			row := gray.Row(y)
			for x := 0; x < width; x++ {
				i := src.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)
				p := src.Pix[i : i+4 : i+4]
				row[x] = Luminance(p[0], p[1], p[2], p[3])
			}
		}
	default:
		for y := 0; y < height; y++ {
			row := gray.Row(y)
			for x := 0; x < width; x++ {
				c := color.NRGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA)
				row[x] = Luminance(c.R, c.G, c.B, c.A)
			}
		}
	}

	return gray
}

// Luminance returns the BT.601 luminance of a non-premultiplied pixel after
// compositing it onto white.
func Luminance(r, g, b, a uint8) uint8 {
	red := uint32(onWhite(r, a))
	green := uint32(onWhite(g, a))
	blue := uint32(onWhite(b, a))
	return uint8((299*red + 587*green + 114*blue) / 1000)
}

// onWhite blends one channel over a white background.
func onWhite(channel, alpha uint8) uint8 {
	c, a := uint32(channel), uint32(alpha)
	return uint8((c*a + 255*(255-a)) / 255)
}
