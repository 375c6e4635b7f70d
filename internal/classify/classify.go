// Package classify infers the semantic scan type of a decoded RAW file.
//
// The file never states its scan type. It is inferred from the stepping-drive
// code of the first range and, for multi-range files, from which motor
// position changes between the first two ranges. Intensities are never read.
package classify

import (
	"fmt"

	"github.com/robert-malhotra/go-xrdraw/internal/header"
	"github.com/robert-malhotra/go-xrdraw/internal/rawerr"
)

// Kind is the scan-type variant.
type Kind int

const (
	SingleScan Kind = iota + 1
	RockingCurve
	TwoAxisRaster
	PoleFigure
	DetectorRasterMap
)

var kindNames = map[Kind]string{
	SingleScan:        "SingleScan",
	RockingCurve:      "RockingCurve",
	TwoAxisRaster:     "TwoAxisRaster",
	PoleFigure:        "PoleFigure",
	DetectorRasterMap: "DetectorRasterMap",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}

// Kinds returns every variant in declaration order.
func Kinds() []Kind {
	return []Kind{SingleScan, RockingCurve, TwoAxisRaster, PoleFigure, DetectorRasterMap}
}

// IsSingle reports whether the kind is a one-range scan.
func (k Kind) IsSingle() bool {
	return k == SingleScan || k == RockingCurve
}

// IsRaster reports whether the kind is a two-axis motor raster.
func (k Kind) IsRaster() bool {
	return k == TwoAxisRaster || k == PoleFigure
}

// ScanType is the classification result attached to a decoded file.
type ScanType struct {
	Kind      Kind
	ScanMode  string // stepping-drive scan mode of range 0, e.g. "phi scan"
	DriveCode uint32

	// Drive1 is the swept axis of a single scan, or the slow axis (one value
	// per range) of a multi-range scan.
	Drive1 header.Axis
	// Drive2 is the fast axis of a multi-range scan; empty for single scans.
	Drive2 header.Axis
}

// Tag returns the dispatcher key for this scan type.
func (s ScanType) Tag() string {
	return s.Kind.String()
}

func (s ScanType) String() string {
	if s.Drive2 == "" {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Drive1)
	}
	return fmt.Sprintf("%s(%s, %s)", s.Kind, s.Drive1, s.Drive2)
}

// slowAxes are the candidates for the slow drive of a motor raster, in
// priority order.
var slowAxes = []header.Axis{
	header.Khi, header.Phi, header.X, header.Y, header.Z,
	header.Aux1, header.Aux2, header.Aux3,
}

// Classify determines the scan type of an ordered range sequence.
func Classify(ranges []header.ScanRange) (ScanType, error) {
	if len(ranges) == 0 {
		return ScanType{}, rawerr.New(rawerr.ErrCorruptHeader, "no ranges to classify")
	}

	// An unsupported drive in any range rejects the whole file.
	var drive header.Drive
	for i := range ranges {
		d, err := lookupDrive(&ranges[i].Header, i)
		if err != nil {
			return ScanType{}, err
		}
		if i == 0 {
			drive = d
		}
	}
	first := &ranges[0].Header
	st := ScanType{ScanMode: drive.ScanMode, DriveCode: drive.Code}

	if len(ranges) == 1 {
		st.Kind = SingleScan
		st.Drive1 = drive.Axis
		if drive.Axis == header.Omega {
			st.Kind = RockingCurve
		}
		return st, nil
	}

	second := &ranges[1].Header
	if second.SteppingDriveCode != first.SteppingDriveCode {
		return ScanType{}, rawerr.AtRange(rawerr.ErrInconsistentRangeGeometry, 1,
			"stepping drive %d differs from range 0 drive %d", second.SteppingDriveCode, first.SteppingDriveCode).
			WithCode(second.SteppingDriveCode)
	}

	if header.IsPSDDrive(drive.Code) {
		st.Kind = DetectorRasterMap
		st.Drive1 = header.Omega
		st.Drive2 = header.TwoTheta
		return st, nil
	}

	st.Drive2 = drive.Axis
	for _, a := range slowAxes {
		if a == st.Drive2 {
			continue
		}
		p0, _ := first.Position(a)
		p1, _ := second.Position(a)
		if p0 != p1 {
			st.Drive1 = a
			break
		}
	}
	if st.Drive1 == "" {
		return ScanType{}, rawerr.AtRange(rawerr.ErrAmbiguousScanGeometry, 1,
			"no motor position differs between ranges 0 and 1").WithCode(drive.Code)
	}

	st.Kind = TwoAxisRaster
	if st.Drive1 == header.Khi && st.Drive2 == header.Phi {
		st.Kind = PoleFigure
	}
	return st, nil
}

func lookupDrive(h *header.RangeHeader, i int) (header.Drive, error) {
	code := h.SteppingDriveCode
	d, ok := header.DriveFor(code)
	switch {
	case !ok:
		return d, rawerr.AtRange(rawerr.ErrUnsupportedScanConfiguration, i, "unknown stepping drive %d", code).WithCode(code)
	case code == header.DriveHKL:
		return d, rawerr.AtRange(rawerr.ErrUnsupportedScanConfiguration, i,
			"hkl scans need reciprocal-lattice interpretation").WithCode(code)
	case header.IsAuxDrive(code):
		return d, rawerr.AtRange(rawerr.ErrUnsupportedScanConfiguration, i, "auxiliary-axis stepping drive %d", code).WithCode(code)
	}
	return d, nil
}
