package header

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-xrdraw/internal/binary"
	"github.com/robert-malhotra/go-xrdraw/internal/format"
	"github.com/robert-malhotra/go-xrdraw/internal/rawerr"
)

// Decode decodes the headers and ranges of a file of the given revision.
// Sentinel revisions return a header carrying only FormatVersion and no ranges.
func Decode(r io.ReaderAt, rev format.Revision, log logrus.FieldLogger) (*GlobalHeader, []ScanRange, error) {
	l, err := LayoutFor(rev)
	if err != nil {
		return nil, nil, rawerr.New(rawerr.ErrUnrecognizedFormat, "revision %d", int(rev)).Wrap(err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if l.Sentinel {
		log.WithField("revision", rev.String()).Debug("legacy revision acknowledged, no ranges decoded")
		return &GlobalHeader{FormatVersion: rev.String()}, nil, nil
	}
	return decodeStructured(binary.NewReader(r, binary.DefaultConfig()), l, log)
}

// DecodeV3 decodes a V3 file. The signature is not re-checked.
func DecodeV3(r io.ReaderAt, log logrus.FieldLogger) (*GlobalHeader, []ScanRange, error) {
	return Decode(r, format.V3, log)
}

func decodeStructured(br *binary.Reader, l Layout, log logrus.FieldLogger) (*GlobalHeader, []ScanRange, error) {
	gh := &GlobalHeader{FormatVersion: l.Revision.String()}

	cur := br.At(l.GlobalStart)
	if err := readFields(cur, 0, l.globalFields(gh)); err != nil {
		return nil, nil, rawerr.New(rawerr.ErrCorruptHeader, "global header").WithOffset(cur.Pos()).Wrap(err)
	}
	if cur.Pos() != l.GlobalLength {
		return nil, nil, rawerr.New(rawerr.ErrCorruptHeader,
			"global header ends at byte %d, want %d", cur.Pos(), l.GlobalLength).WithOffset(cur.Pos())
	}
	if gh.RangeCount == 0 {
		return nil, nil, rawerr.New(rawerr.ErrCorruptHeader, "file declares no ranges").WithOffset(12)
	}

	// Bound the preallocation by what the buffer could possibly hold.
	capacity := int64(gh.RangeCount)
	if rem, ok := cur.Remaining(); ok {
		if fit := rem/(l.RangeLength+DatumLength) + 1; fit < capacity {
			capacity = fit
		}
	}
	ranges := make([]ScanRange, 0, capacity)

	for i := 0; i < int(gh.RangeCount); i++ {
		sr, err := decodeRange(cur, l, i)
		if err != nil {
			return nil, nil, err
		}
		log.WithFields(logrus.Fields{
			"range":  i,
			"offset": sr.Offset,
			"steps":  sr.Header.Steps,
			"drive":  sr.Header.SteppingDriveCode,
		}).Debug("decoded range")
		ranges = append(ranges, sr)
	}

	if rem, ok := cur.Remaining(); ok && rem > 0 {
		log.WithField("bytes", rem).Debug("trailing bytes after last range")
	}
	return gh, ranges, nil
}

func decodeRange(cur *binary.Reader, l Layout, i int) (ScanRange, error) {
	start := cur.Pos()
	sr := ScanRange{Index: i, Offset: start}
	h := &sr.Header

	if err := readFields(cur, start, l.rangeFields(h)); err != nil {
		return sr, rawerr.AtRange(rawerr.ErrCorruptHeader, i, "range header").WithOffset(start).Wrap(err)
	}
	if int64(h.HeaderLength) != l.RangeLength {
		return sr, rawerr.AtRange(rawerr.ErrCorruptHeader, i,
			"range header length %d, want %d", h.HeaderLength, l.RangeLength).WithOffset(start)
	}
	if h.Steps == 0 {
		return sr, rawerr.AtRange(rawerr.ErrCorruptHeader, i, "range declares zero steps").WithOffset(start + 4)
	}
	if err := checkSupported(h, i); err != nil {
		return sr, err.WithOffset(start)
	}

	cur.MoveTo(start + int64(h.HeaderLength) + int64(h.SupplementHeaderSize))
	data, err := cur.ReadFloat32s(int(h.Steps))
	if err != nil {
		return sr, rawerr.AtRange(rawerr.ErrCorruptHeader, i,
			"intensity payload of %d samples truncated", h.Steps).WithOffset(cur.Pos()).Wrap(err)
	}
	sr.Intensity = data
	return sr, nil
}

func checkSupported(h *RangeHeader, i int) *rawerr.Error {
	code := h.SteppingDriveCode
	switch {
	case h.VaryingParams != 0:
		return rawerr.AtRange(rawerr.ErrUnsupportedScanConfiguration, i,
			"%d varying parameters in one range", h.VaryingParams).WithCode(code)
	case h.DatumLength != DatumLength:
		return rawerr.AtRange(rawerr.ErrUnsupportedScanConfiguration, i,
			"datum length %d, only %d-byte samples are supported", h.DatumLength, DatumLength).WithCode(code)
	case IsAuxDrive(code):
		return rawerr.AtRange(rawerr.ErrUnsupportedScanConfiguration, i,
			"auxiliary-axis stepping drive %d", code).WithCode(code)
	}
	if _, ok := DriveFor(code); !ok {
		return rawerr.AtRange(rawerr.ErrUnsupportedScanConfiguration, i,
			"unknown stepping drive %d", code).WithCode(code)
	}
	return nil
}
