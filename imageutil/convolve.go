package imageutil

// Kernel represents a convolution kernel.
type Kernel struct {
	Values [][]int
	Width  int
	Height int
}

// NewKernel creates a new kernel from a 2D slice.
func NewKernel(values [][]int) *Kernel {
	height := len(values)
	width := 0
	if height > 0 {
		width = len(values[0])
	}
	return &Kernel{
		Values: values,
		Width:  width,
		Height: height,
	}
}

var (
	sobelX = NewKernel([][]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	})
	sobelY = NewKernel([][]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	})
)

// ConvolveAt applies kernel centred on (x, y) and returns the raw integer
// response. Border pixels are handled by replicating edge values.
func ConvolveAt(img *GrayImage, kernel *Kernel, x, y int) int {
	halfKW := kernel.Width / 2
	halfKH := kernel.Height / 2

	var sum int
	for ky := 0; ky < kernel.Height; ky++ {
		for kx := 0; kx < kernel.Width; kx++ {
			k := kernel.Values[ky][kx]
			if k == 0 {
				continue
			}
			sum += int(img.ClampedGray(x+kx-halfKW, y+ky-halfKH)) * k
		}
	}
	return sum
}

// SobelAt computes the horizontal and vertical Sobel gradients at a single
// pixel.
func SobelAt(img *GrayImage, x, y int) (gx, gy int) {
	return ConvolveAt(img, sobelX, x, y), ConvolveAt(img, sobelY, x, y)
}

// clampInt clamps an integer to the given range.
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
