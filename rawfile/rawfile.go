// Package rawfile decodes diffractometer RAW files into typed scan datasets.
//
// A file is sniffed for its revision, its headers and ranges are decoded,
// the scan type is inferred from the stepping drive and motor positions, and
// the intensities are assembled into a gonum matrix with an attribute map:
//
//	res, err := rawfile.ReadFile("sample.raw")
//	if err != nil {
//		return err
//	}
//	switch res.ScanType.Kind {
//	case rawfile.PoleFigure:
//		khi, _ := res.Attrs.Floats("DRV_1")
//		...
//	}
//
// V1 and V2 files are acknowledged but not decoded: the result carries only
// the FORMAT_VERSION tag.
package rawfile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/robert-malhotra/go-xrdraw/internal/assemble"
	"github.com/robert-malhotra/go-xrdraw/internal/classify"
	"github.com/robert-malhotra/go-xrdraw/internal/format"
	"github.com/robert-malhotra/go-xrdraw/internal/header"
)

type (
	Revision     = format.Revision
	GlobalHeader = header.GlobalHeader
	RangeHeader  = header.RangeHeader
	ScanRange    = header.ScanRange
	Axis         = header.Axis
	ScanType     = classify.ScanType
	Kind         = classify.Kind
	Attributes   = assemble.Attributes
	RepairPolicy = assemble.RepairPolicy
)

const (
	V1 = format.V1
	V2 = format.V2
	V3 = format.V3

	SingleScan        = classify.SingleScan
	RockingCurve      = classify.RockingCurve
	TwoAxisRaster     = classify.TwoAxisRaster
	PoleFigure        = classify.PoleFigure
	DetectorRasterMap = classify.DetectorRasterMap

	RepairFilter = assemble.RepairFilter
	RepairStrict = assemble.RepairStrict
)

// KeyFormatVersion is the attribute every result carries.
const KeyFormatVersion = "FORMAT_VERSION"

// Result is a decoded file.
type Result struct {
	Revision Revision
	Header   *GlobalHeader
	Ranges   []ScanRange

	// ScanType, Data and Attrs describe the assembled dataset. For V1 and V2
	// files ScanType and Data are zero and Attrs holds only FORMAT_VERSION.
	ScanType ScanType
	Data     *mat.Dense
	Attrs    Attributes
}

// Tag returns the dispatcher key of the result, or "" for acknowledged
// legacy revisions.
func (r *Result) Tag() string {
	if r.Data == nil {
		return ""
	}
	return r.ScanType.Tag()
}

// Supported reports whether the file's content was decoded into a dataset.
func (r *Result) Supported() bool {
	return r.Data != nil
}

// Decode decodes an in-memory RAW file. buf is not modified or retained
// beyond the returned ranges' decoded values.
func Decode(buf []byte, opts ...Option) (*Result, error) {
	return DecodeReaderAt(bytes.NewReader(buf), opts...)
}

// DecodeReaderAt decodes a RAW file from r.
func DecodeReaderAt(r io.ReaderAt, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	rev, err := format.Sniff(r)
	if err != nil {
		return nil, err
	}
	gh, ranges, err := header.Decode(r, rev, o.logger)
	if err != nil {
		return nil, err
	}
	res := &Result{Revision: rev, Header: gh, Ranges: ranges}

	var attrs Attributes
	if rev.Structured() {
		st, err := classify.Classify(ranges)
		if err != nil {
			return nil, err
		}
		data, a, err := assemble.Assemble(st, ranges, o.assembly())
		if err != nil {
			return nil, err
		}
		res.ScanType, res.Data, attrs = st, data, a
	}
	if res.Attrs, err = attrs.With(KeyFormatVersion, gh.FormatVersion); err != nil {
		return nil, err
	}

	if res.Supported() {
		rows, cols := res.Data.Dims()
		o.logger.WithFields(logrus.Fields{
			"revision":  rev.String(),
			"scan_type": res.ScanType.String(),
			"rows":      rows,
			"cols":      cols,
		}).Debug("decoded file")
	}
	return res, nil
}

// ReadFile reads and decodes the RAW file at path.
func ReadFile(path string, opts ...Option) (*Result, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	res, err := Decode(buf, opts...)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return res, nil
}

// Sniff returns the revision of an in-memory RAW file without decoding it.
func Sniff(buf []byte) (Revision, error) {
	return format.SniffBytes(buf)
}
