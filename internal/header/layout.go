package header

import (
	"fmt"

	"github.com/robert-malhotra/go-xrdraw/internal/binary"
	"github.com/robert-malhotra/go-xrdraw/internal/format"
)

// Fixed sizes of the V3 layout.
const (
	SignatureLength    = 8
	GlobalHeaderLength = 712
	RangeHeaderLength  = 304
	DatumLength        = 4
)

// Layout describes how one revision is laid out on disk.
type Layout struct {
	Revision format.Revision

	// Sentinel marks the reduced variant: only FORMAT_VERSION is recorded.
	Sentinel bool

	GlobalStart  int64 // offset of the first global field
	GlobalLength int64 // offset at which the first range begins
	RangeLength  int64 // fixed range header length

	globalFields func(*GlobalHeader) []field
	rangeFields  func(*RangeHeader) []field
}

var layouts = map[format.Revision]Layout{
	format.V1: {Revision: format.V1, Sentinel: true},
	format.V2: {Revision: format.V2, Sentinel: true},
	format.V3: {
		Revision:     format.V3,
		GlobalStart:  SignatureLength,
		GlobalLength: GlobalHeaderLength,
		RangeLength:  RangeHeaderLength,
		globalFields: (*GlobalHeader).fields,
		rangeFields:  (*RangeHeader).fields,
	},
}

// LayoutFor returns the layout table for a revision.
func LayoutFor(rev format.Revision) (Layout, error) {
	l, ok := layouts[rev]
	if !ok {
		return Layout{}, fmt.Errorf("no layout for revision %s", rev)
	}
	return l, nil
}

// field is one entry of a layout table. target is a pointer into the record
// being decoded (*uint32, *float32, *float64 or *string) or nil for reserved
// bytes. offset is relative to the record start.
type field struct {
	name   string
	offset int64
	size   int
	target any
}

func reserved(offset int64, size int) field {
	return field{name: "", offset: offset, size: size}
}

// readFields decodes fields in table order starting at the cursor, which must
// sit at base. Each field is checked to begin exactly at its documented offset.
func readFields(r *binary.Reader, base int64, fields []field) error {
	for _, f := range fields {
		if got := r.Pos() - base; got != f.offset {
			return fmt.Errorf("field %s expected at +%d, cursor at +%d", f.display(), f.offset, got)
		}
		if err := readField(r, f); err != nil {
			return fmt.Errorf("field %s: %w", f.display(), err)
		}
	}
	return nil
}

func readField(r *binary.Reader, f field) error {
	switch p := f.target.(type) {
	case nil:
		_, err := r.ReadBytes(f.size)
		return err
	case *uint32:
		v, err := r.ReadUint32()
		*p = v
		return err
	case *float32:
		v, err := r.ReadFloat32()
		*p = v
		return err
	case *float64:
		v, err := r.ReadFloat64()
		*p = v
		return err
	case *string:
		v, err := r.ReadString(f.size)
		*p = v
		return err
	default:
		return fmt.Errorf("unsupported field target %T", f.target)
	}
}

func (f field) display() string {
	if f.name == "" {
		return "<reserved>"
	}
	return f.name
}

// Entry is a named header value, in layout order.
type Entry struct {
	Name  string
	Value any
}

func entries(fields []field) []Entry {
	out := make([]Entry, 0, len(fields))
	for _, f := range fields {
		var v any
		switch p := f.target.(type) {
		case nil:
			continue
		case *uint32:
			v = *p
		case *float32:
			v = *p
		case *float64:
			v = *p
		case *string:
			v = *p
		}
		out = append(out, Entry{Name: f.name, Value: v})
	}
	return out
}
