// Package binary provides the byte cursor used to decode diffractometer RAW files.
package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/text/encoding/charmap"
)

// Reader reads fixed-width integers, floats and text fields from an
// io.ReaderAt. It tracks its own position so that fields can be decoded
// relative to a record start or at absolute offsets.
type Reader struct {
	r     io.ReaderAt
	order binary.ByteOrder
	text  *charmap.Charmap
	size  int64 // -1 when the underlying source has no known size
	pos   int64
}

// Config holds reader configuration.
type Config struct {
	ByteOrder binary.ByteOrder
	// Charmap decodes fixed-width text fields. Bytes >= 0x80 are mapped through
	// this single-byte table rather than interpreted as UTF-8.
	Charmap *charmap.Charmap
}

// DefaultConfig returns the configuration used by RAW files: little-endian
// numbers and ISO 8859-1 text.
func DefaultConfig() Config {
	return Config{
		ByteOrder: binary.LittleEndian,
		Charmap:   charmap.ISO8859_1,
	}
}

// NewReader creates a binary reader with the given configuration.
func NewReader(r io.ReaderAt, cfg Config) *Reader {
	if cfg.ByteOrder == nil {
		cfg.ByteOrder = binary.LittleEndian
	}
	if cfg.Charmap == nil {
		cfg.Charmap = charmap.ISO8859_1
	}
	size := int64(-1)
	if s, ok := r.(interface{ Size() int64 }); ok {
		size = s.Size()
	}
	return &Reader{
		r:     r,
		order: cfg.ByteOrder,
		text:  cfg.Charmap,
		size:  size,
	}
}

// NewBytesReader creates a reader over an in-memory buffer using DefaultConfig.
func NewBytesReader(buf []byte) *Reader {
	return NewReader(bytes.NewReader(buf), DefaultConfig())
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{
		r:     r.r,
		order: r.order,
		text:  r.text,
		size:  r.size,
		pos:   offset,
	}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// MoveTo moves the cursor to an absolute offset.
func (r *Reader) MoveTo(offset int64) {
	r.pos = offset
}

// Remaining returns the number of bytes left after the cursor.
// It reports false when the source size is unknown.
func (r *Reader) Remaining() (int64, bool) {
	if r.size < 0 {
		return 0, false
	}
	if r.pos >= r.size {
		return 0, true
	}
	return r.size - r.pos, true
}

// ReadBytes reads exactly n bytes from the current position.
// A short read fails with io.ErrUnexpectedEOF and leaves the position unchanged.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf, err := r.Peek(n)
	if err != nil {
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// Peek reads n bytes without advancing the position.
func (r *Reader) Peek(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if r.size >= 0 && r.pos+int64(n) > r.size {
		return nil, r.short(n)
	}
	buf := make([]byte, n)
	got, err := r.r.ReadAt(buf, r.pos)
	if got == n {
		return buf, nil
	}
	if err == nil || err == io.EOF {
		return nil, r.short(n)
	}
	return nil, err
}

func (r *Reader) short(n int) error {
	return fmt.Errorf("reading %d bytes at offset %d: %w", n, r.pos, io.ErrUnexpectedEOF)
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(buf), nil
}

// ReadFloat32 reads an IEEE-754 single precision value as stored.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads an IEEE-754 double precision value as stored.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadFloat32s reads n consecutive single precision values.
func (r *Reader) ReadFloat32s(n int) ([]float32, error) {
	if n < 0 || n > math.MaxInt32/4 {
		return nil, fmt.Errorf("reading %d floats at offset %d: %w", n, r.pos, io.ErrUnexpectedEOF)
	}
	buf, err := r.ReadBytes(n * 4)
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(r.order.Uint32(buf[i*4:]))
	}
	return out, nil
}

// ReadString reads a fixed-width text field of n bytes. The field ends at the
// first NUL; trailing spaces are trimmed and the remainder is decoded through
// the configured single-byte charmap.
func (r *Reader) ReadString(n int) (string, error) {
	buf, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return r.decodeText(buf), nil
}

func (r *Reader) decodeText(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	buf = bytes.TrimRight(buf, " ")
	out := make([]rune, 0, len(buf))
	for _, b := range buf {
		out = append(out, r.text.DecodeByte(b))
	}
	return string(out)
}
