package binary

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/text/encoding/charmap"
)

// Writer writes RAW file fields at tracked positions. It mirrors Reader and is
// used to synthesize files for tests and tooling.
type Writer struct {
	w     io.WriterAt
	order binary.ByteOrder
	text  *charmap.Charmap
	pos   int64
}

// NewWriter creates a binary writer with the given configuration.
func NewWriter(w io.WriterAt, cfg Config) *Writer {
	if cfg.ByteOrder == nil {
		cfg.ByteOrder = binary.LittleEndian
	}
	if cfg.Charmap == nil {
		cfg.Charmap = charmap.ISO8859_1
	}
	return &Writer{
		w:     w,
		order: cfg.ByteOrder,
		text:  cfg.Charmap,
	}
}

// At returns a new writer positioned at the given offset.
// The new writer shares the underlying io.WriterAt but has independent position.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{
		w:     w.w,
		order: w.order,
		text:  w.text,
		pos:   offset,
	}
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 {
	return w.pos
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	buf := make([]byte, 4)
	w.order.PutUint32(buf, v)
	return w.WriteBytes(buf)
}

// WriteUint64 writes an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	buf := make([]byte, 8)
	w.order.PutUint64(buf, v)
	return w.WriteBytes(buf)
}

// WriteFloat32 writes an IEEE-754 single precision value.
func (w *Writer) WriteFloat32(v float32) error {
	return w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes an IEEE-754 double precision value.
func (w *Writer) WriteFloat64(v float64) error {
	return w.WriteUint64(math.Float64bits(v))
}

// WriteFloat32s writes consecutive single precision values.
func (w *Writer) WriteFloat32s(vs []float32) error {
	buf := make([]byte, 4*len(vs))
	for i, v := range vs {
		w.order.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return w.WriteBytes(buf)
}

// WriteString writes s into a NUL-padded field of exactly width bytes.
func (w *Writer) WriteString(s string, width int) error {
	buf := make([]byte, width)
	i := 0
	for _, c := range s {
		if i == width {
			return fmt.Errorf("text %q exceeds field width %d", s, width)
		}
		b, ok := w.text.EncodeRune(c)
		if !ok {
			return fmt.Errorf("rune %q not representable in field charmap", c)
		}
		buf[i] = b
		i++
	}
	return w.WriteBytes(buf)
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	return w.WriteBytes(make([]byte, n))
}

// Buffer is a growable in-memory io.WriterAt.
type Buffer struct {
	buf []byte
}

// WriteAt implements io.WriterAt, extending the buffer as needed.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	end := int(off) + len(p)
	if end > len(b.buf) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.buf
}
