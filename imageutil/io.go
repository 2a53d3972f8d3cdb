package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"math/bits"
	"os"
)

// MaxDimension is the largest accepted width or height of a source image.
const MaxDimension = 16384

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
)

var (
	// ErrUnsupportedFormat is returned when the input is neither PNG nor JPEG.
	ErrUnsupportedFormat = errors.New("unsupported format, use png/jpg/jpeg")
	// ErrDimensions is returned for zero-sized or oversized images.
	ErrDimensions = errors.New("image dimensions out of range")
	// ErrSizeOverflow is returned when the pixel buffer size cannot be
	// represented.
	ErrSizeOverflow = errors.New("image size overflow")
)

// DecodeError reports why a file could not be turned into a raster.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Format identifies a supported container by its leading bytes.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	}
	return "unknown"
}

// Sniff returns the format announced by the first bytes of data.
func Sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return FormatPNG
	case bytes.HasPrefix(data, jpegMagic):
		return FormatJPEG
	}
	return FormatUnknown
}

// LoadRaster reads a PNG or JPEG file and converts it to a grayscale
// raster.
func LoadRaster(path string) (*GrayImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("cannot open file: %w", err)}
	}
	defer f.Close()

	img, err := DecodeRaster(f)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}
	return img, nil
}

// DecodeRaster decodes a PNG or JPEG stream into a grayscale raster. The
// dimensions are validated from the header before any pixel buffer is
// allocated.
func DecodeRaster(r io.Reader) (*GrayImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("read failed: %w", err)}
	}

	format := Sniff(data)
	var (
		decodeConfig func(io.Reader) (image.Config, error)
		decode       func(io.Reader) (image.Image, error)
	)
	switch format {
	case FormatPNG:
		decodeConfig, decode = png.DecodeConfig, png.Decode
	case FormatJPEG:
		decodeConfig, decode = jpeg.DecodeConfig, jpeg.Decode
	default:
		return nil, &DecodeError{Err: ErrUnsupportedFormat}
	}

	cfg, err := decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%s decode failed: %w", format, err)}
	}
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%s: %w", format, err)}
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%s decode failed: %w", format, err)}
	}
	return ToGrayscale(img), nil
}

// checkDimensions enforces the size limits applied before allocation.
func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d (max %dx%d)", ErrDimensions,
			width, height, MaxDimension, MaxDimension)
	}
	if _, ok := PixelCount(width, height); !ok {
		return ErrSizeOverflow
	}
	return nil
}

// PixelCount multiplies width by height, reporting false when the product
// does not fit in an int.
func PixelCount(width, height int) (int, bool) {
	if width < 0 || height < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(width), uint64(height))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}
