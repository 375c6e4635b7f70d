// Package assemble turns classified ranges into a numeric array and its
// attribute dictionary.
//
// Single scans and rocking curves become a 2×Steps array: row 0 is the swept
// axis and row 1 the count rate. Motor rasters become an R×Steps array of
// count rates with one row per range. Detector raster maps become an R×W
// array of raw counts, where W is the modal row length.
package assemble

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/robert-malhotra/go-xrdraw/internal/classify"
	"github.com/robert-malhotra/go-xrdraw/internal/header"
	"github.com/robert-malhotra/go-xrdraw/internal/rawerr"
)

// RepairPolicy controls how detector raster maps with inconsistent ranges
// are handled.
type RepairPolicy int

const (
	// RepairFilter drops ranges outside the consistent subset and logs them.
	RepairFilter RepairPolicy = iota
	// RepairStrict fails with ErrInconsistentRangeGeometry instead.
	RepairStrict
)

func (p RepairPolicy) String() string {
	switch p {
	case RepairFilter:
		return "filter"
	case RepairStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseRepairPolicy is the inverse of RepairPolicy.String.
func ParseRepairPolicy(s string) (RepairPolicy, bool) {
	switch s {
	case "filter", "":
		return RepairFilter, true
	case "strict":
		return RepairStrict, true
	default:
		return 0, false
	}
}

// Options configures assembly. The zero value is usable.
type Options struct {
	Policy RepairPolicy
	// ReferenceLattice is the cubic lattice constant in nm used to guess the
	// reflection of a detector raster map. Zero means DefaultReferenceLattice.
	ReferenceLattice float64
	Logger           logrus.FieldLogger
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// Assemble builds the output array and attributes for ranges classified as st.
func Assemble(st classify.ScanType, ranges []header.ScanRange, opts Options) (*mat.Dense, Attributes, error) {
	if len(ranges) == 0 {
		return nil, Attributes{}, rawerr.New(rawerr.ErrCorruptHeader, "no ranges to assemble")
	}
	switch {
	case st.Kind.IsSingle():
		return assembleSingle(st, &ranges[0])
	case st.Kind.IsRaster():
		return assembleRaster(st, ranges)
	case st.Kind == classify.DetectorRasterMap:
		return assembleDetectorMap(st, ranges, opts)
	default:
		return nil, Attributes{}, rawerr.New(rawerr.ErrUnsupportedScanConfiguration,
			"no assembly for scan type %s", st.Kind).WithCode(st.DriveCode)
	}
}

func assembleSingle(st classify.ScanType, sr *header.ScanRange) (*mat.Dense, Attributes, error) {
	h := &sr.Header
	if err := checkStepTime(h, sr.Index); err != nil {
		return nil, Attributes{}, err
	}
	n := len(sr.Intensity)
	start, _ := h.Position(st.Drive1)
	axis := sweep(start, h.StepSize, n)
	rate := countRate(sr.Intensity, h.StepTime)

	data := mat.NewDense(2, n, nil)
	data.SetRow(0, axis)
	data.SetRow(1, rate)

	b := common(st, h, n)
	b.set(KeyDrv1Min, floats.Min(axis)).
		set(KeyDrv1Max, floats.Max(axis))
	for _, a := range []header.Axis{header.Omega, header.TwoTheta, header.Khi, header.Phi, header.X, header.Y, header.Z} {
		p, _ := h.Position(a)
		b.set(string(a), p)
	}
	return data, b.build(), nil
}

func assembleRaster(st classify.ScanType, ranges []header.ScanRange) (*mat.Dense, Attributes, error) {
	ref := &ranges[0].Header
	if err := checkStepTime(ref, 0); err != nil {
		return nil, Attributes{}, err
	}
	for i := 1; i < len(ranges); i++ {
		if err := sameGeometry(ref, &ranges[i].Header, i); err != nil {
			return nil, Attributes{}, err
		}
	}

	rows, cols := len(ranges), int(ref.Steps)
	data := mat.NewDense(rows, cols, nil)
	drv1 := make([]float64, rows)
	for i := range ranges {
		h := &ranges[i].Header
		drv1[i], _ = h.Position(st.Drive1)
		data.SetRow(i, countRate(ranges[i].Intensity, h.StepTime))
	}
	start2, _ := ref.Position(st.Drive2)
	drv2 := sweep(start2, ref.StepSize, cols)

	b := common(st, ref, cols)
	b.set(KeyDrive2, string(st.Drive2)).
		set(KeyDrv1, drv1).
		set(KeyDrv2, drv2).
		set(KeyDrv1Min, floats.Min(drv1)).
		set(KeyDrv1Max, floats.Max(drv1)).
		set(KeyDrv2Min, floats.Min(drv2)).
		set(KeyDrv2Max, floats.Max(drv2)).
		set(KeyVitAngle, ref.StepSize/float64(ref.StepTime))
	return data, b.build(), nil
}

// common sets the keys every scan kind carries.
func common(st classify.ScanType, h *header.RangeHeader, steps int) *builder {
	return newBuilder().
		set(KeyType, st.Tag()).
		set(KeyScanMode, st.ScanMode).
		set(KeyDrive1, string(st.Drive1)).
		set(KeyStepSize, h.StepSize).
		set(KeyStepTime, float64(h.StepTime)).
		set(KeySteps, steps)
}

func sameGeometry(ref, h *header.RangeHeader, i int) error {
	var what string
	switch {
	case h.Steps != ref.Steps:
		what = "step count"
	case h.StepSize != ref.StepSize:
		what = "step size"
	case h.StepTime != ref.StepTime:
		what = "step time"
	case h.SteppingDriveCode != ref.SteppingDriveCode:
		what = "stepping drive"
	default:
		return nil
	}
	return rawerr.AtRange(rawerr.ErrInconsistentRangeGeometry, i, "%s differs from range 0", what).
		WithCode(h.SteppingDriveCode)
}

// checkStepTime rejects zero, negative and NaN step times.
func checkStepTime(h *header.RangeHeader, i int) error {
	if !(h.StepTime > 0) {
		return rawerr.AtRange(rawerr.ErrInvalidStepTiming, i, "step time %g s", h.StepTime).
			WithCode(h.SteppingDriveCode)
	}
	return nil
}

// sweep returns n positions start, start+step, ... start+(n-1)·step.
func sweep(start, step float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	return floats.Span(out, start, start+float64(n-1)*step)
}

func countRate(counts []float32, stepTime float32) []float64 {
	out := widen(counts)
	t := float64(stepTime)
	for k := range out {
		out[k] /= t
	}
	return out
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for k, x := range v {
		out[k] = float64(x)
	}
	return out
}
