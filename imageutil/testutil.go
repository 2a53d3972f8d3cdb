package imageutil

// CreateGradientImage creates a horizontal gradient test raster.
func CreateGradientImage(width, height int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := 0; x < width; x++ {
			row[x] = uint8(255 * x / max(width-1, 1))
		}
	}
	return img
}

// CreateVerticalGradientImage creates a vertical gradient test raster.
func CreateVerticalGradientImage(width, height int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		v := uint8(255 * y / max(height-1, 1))
		row := img.Row(y)
		for x := range row {
			row[x] = v
		}
	}
	return img
}

// CreateCheckerboardImage creates a checkerboard pattern for edge testing.
func CreateCheckerboardImage(width, height, squareSize int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				row[x] = 255
			}
		}
	}
	return img
}

// CreateSolidImage creates a raster filled with a single value.
func CreateSolidImage(width, height int, v uint8) *GrayImage {
	img := NewGrayImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// CreateSplitImage creates a raster whose left half is left and right half
// is right, giving one hard vertical boundary.
func CreateSplitImage(width, height int, left, right uint8) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := range row {
			if x < width/2 {
				row[x] = left
			} else {
				row[x] = right
			}
		}
	}
	return img
}

// CreateDiagonalEdgeImage creates a light raster with a dark triangle above
// the line x = y + offset.
func CreateDiagonalEdgeImage(width, height, offset int) *GrayImage {
	img := CreateSolidImage(width, height, 230)
	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := range row {
			if x > y+offset {
				row[x] = 25
			}
		}
	}
	return img
}

// CreateNoiseImage creates a deterministic pseudo-random raster.
func CreateNoiseImage(width, height int, seed uint32) *GrayImage {
	img := NewGrayImage(width, height)
	state := seed | 1
	for i := range img.Pix {
		// xorshift32
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		img.Pix[i] = uint8(state >> 24)
	}
	return img
}

// CalculateMSEGray calculates the Mean Squared Error between two grayscale images.
func CalculateMSEGray(img1, img2 *GrayImage) float64 {
	if img1.Width() != img2.Width() || img1.Height() != img2.Height() {
		return -1
	}

	width, height := img1.Width(), img1.Height()
	var sumSq float64
	count := float64(width * height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d := float64(img1.GetGray(x, y)) - float64(img2.GetGray(x, y))
			sumSq += d * d
		}
	}

	return sumSq / count
}
