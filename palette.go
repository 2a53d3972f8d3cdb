package img2ascii

import (
	"errors"
	"fmt"
)

// Palette selects a glyph ramp and its tone response. Glyphs run from the
// darkest (densest) to the lightest.
type Palette int

const (
	PaletteClassic Palette = iota
	PaletteSmooth
	PaletteBlocks
)

var paletteGlyphs = [...]string{
	PaletteClassic: "$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft()1{}[]?+~<>i!lI;:,\"^`'. ",
	PaletteSmooth:  "$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?+~<>i!lI;:,\"^`'. ",
	PaletteBlocks:  "@%#*+=-:. ",
}

var paletteNames = [...]string{
	PaletteClassic: "classic",
	PaletteSmooth:  "smooth",
	PaletteBlocks:  "blocks",
}

// paletteResponse holds the linear and quadratic weights of each palette's
// fixed tone response: (v*linear + (v*v/255)*quadratic) / 255.
var paletteResponse = [...]struct{ linear, quadratic int }{
	PaletteClassic: {180, 75},
	PaletteSmooth:  {220, 35},
	PaletteBlocks:  {165, 90},
}

// ParsePalette resolves a palette by name.
func ParsePalette(name string) (Palette, error) {
	for p, n := range paletteNames {
		if n == name {
			return Palette(p), nil
		}
	}
	return PaletteClassic, &ConfigError{
		Field: "palette",
		Value: name,
		Err:   errors.New("invalid palette (use classic|smooth|blocks)"),
	}
}

// String returns the palette's name.
func (p Palette) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Palette(%d)", int(p))
	}
	return paletteNames[p]
}

// Valid reports whether p names a known palette.
func (p Palette) Valid() bool {
	return p >= 0 && int(p) < len(paletteGlyphs)
}

// Glyphs returns the palette's glyph ramp, darkest first.
func (p Palette) Glyphs() string {
	if !p.Valid() {
		return paletteGlyphs[PaletteClassic]
	}
	return paletteGlyphs[p]
}

// levels is the number of quantization levels, never fewer than two.
func (p Palette) levels() int {
	return max(2, len(p.Glyphs()))
}

// respond applies the palette's nonlinear response to a stretched value.
func (p Palette) respond(v int) uint8 {
	w := paletteResponse[PaletteClassic]
	if p.Valid() {
		w = paletteResponse[p]
	}
	return clampUint8((v*w.linear + ((v*v)/255)*w.quadratic) / 255)
}

func clampUint8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
