package img2ascii

import (
	"bufio"
	"io"
	"strconv"
)

const (
	ESC = "\u001b"

	resetSequence = ESC + "[0m"
)

// LineWriter writes finished glyph rows to a sink, optionally tinting each
// glyph with a 24-bit gray foreground color.
type LineWriter struct {
	w     *bufio.Writer
	color bool
	seq   []byte
}

// NewLineWriter wraps w. Output is buffered until Flush.
func NewLineWriter(w io.Writer, color bool) *LineWriter {
	return &LineWriter{w: bufio.NewWriter(w), color: color}
}

// WriteLine writes one row of glyphs followed by a newline. With color
// enabled every glyph is preceded by a foreground escape for its shade and
// the line ends with a single reset.
func (lw *LineWriter) WriteLine(glyphs []byte, shades []uint8) error {
	if !lw.color {
		if _, err := lw.w.Write(glyphs); err != nil {
			return err
		}
		return lw.w.WriteByte('\n')
	}

	for i, g := range glyphs {
		lw.seq = appendForeground(lw.seq[:0], shades[i])
		lw.seq = append(lw.seq, g)
		if _, err := lw.w.Write(lw.seq); err != nil {
			return err
		}
	}
	if _, err := lw.w.WriteString(resetSequence); err != nil {
		return err
	}
	return lw.w.WriteByte('\n')
}

// Flush writes any buffered output to the underlying sink.
func (lw *LineWriter) Flush() error {
	return lw.w.Flush()
}

// appendForeground appends ESC[38;2;s;s;sm.
func appendForeground(dst []byte, shade uint8) []byte {
	dst = append(dst, ESC+"[38;2;"...)
	for i := 0; i < 3; i++ {
		if i > 0 {
			dst = append(dst, ';')
		}
		dst = strconv.AppendUint(dst, uint64(shade), 10)
	}
	return append(dst, 'm')
}
