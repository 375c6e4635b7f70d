package header

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-xrdraw/internal/binary"
	"github.com/robert-malhotra/go-xrdraw/internal/format"
)

// Signature written at the start of V3 files, NUL padded to SignatureLength.
const SignatureV3 = "RAW1.01"

// EncodeV3 writes a V3 file from a global header and ranges. Header values are
// written verbatim and not validated, so crafted files can be produced.
// Each range's Intensity is written as is; SupplementHeaderSize zero bytes
// precede it.
func EncodeV3(dst io.WriterAt, gh *GlobalHeader, ranges []ScanRange) error {
	l, err := LayoutFor(format.V3)
	if err != nil {
		return err
	}
	w := binary.NewWriter(dst, binary.DefaultConfig())
	if err := w.WriteString(SignatureV3, SignatureLength); err != nil {
		return fmt.Errorf("writing signature: %w", err)
	}

	g := *gh
	if err := writeFields(w, 0, l.globalFields(&g)); err != nil {
		return fmt.Errorf("writing global header: %w", err)
	}

	for i := range ranges {
		h := ranges[i].Header
		start := w.Pos()
		if err := writeFields(w, start, l.rangeFields(&h)); err != nil {
			return fmt.Errorf("writing range %d header: %w", i, err)
		}
		if err := w.WriteZeros(int(h.SupplementHeaderSize)); err != nil {
			return fmt.Errorf("writing range %d supplement: %w", i, err)
		}
		if err := w.WriteFloat32s(ranges[i].Intensity); err != nil {
			return fmt.Errorf("writing range %d intensities: %w", i, err)
		}
	}
	return nil
}

func writeFields(w *binary.Writer, base int64, fields []field) error {
	for _, f := range fields {
		if got := w.Pos() - base; got != f.offset {
			return fmt.Errorf("field %s expected at +%d, cursor at +%d", f.display(), f.offset, got)
		}
		var err error
		switch p := f.target.(type) {
		case nil:
			err = w.WriteZeros(f.size)
		case *uint32:
			err = w.WriteUint32(*p)
		case *float32:
			err = w.WriteFloat32(*p)
		case *float64:
			err = w.WriteFloat64(*p)
		case *string:
			err = w.WriteString(*p, f.size)
		default:
			err = fmt.Errorf("unsupported field target %T", f.target)
		}
		if err != nil {
			return fmt.Errorf("field %s: %w", f.display(), err)
		}
	}
	return nil
}
