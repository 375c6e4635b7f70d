// Package fixture synthesizes RAW files for tests and tooling.
package fixture

import (
	"time"

	"github.com/robert-malhotra/go-xrdraw/internal/binary"
	"github.com/robert-malhotra/go-xrdraw/internal/header"
)

// Global returns a plausible V3 global header declaring n ranges.
func Global(n int) header.GlobalHeader {
	return header.GlobalHeader{
		FormatVersion:    "v3",
		StatusCode:       uint32(header.StatusDone),
		RangeCount:       uint32(n),
		Date:             "10/18/26",
		Time:             "09:30:00",
		User:             "operator",
		Site:             "lab",
		Sample:           "GaP(001)",
		Comment:          "synthetic",
		GoniometerRadius: 217.5,
		AnodeMaterial:    "Cu",
		AlphaAverage:     1.54184,
		Alpha1:           1.5406,
		Alpha2:           1.54439,
		Beta:             1.39222,
		AlphaRatio:       0.5,
		WavelengthUnit:   "A",
		MeasurementTime:  float32((time.Duration(n) * time.Minute).Seconds()),
	}
}

// RangeOption adjusts a synthesized range.
type RangeOption func(*header.ScanRange)

// Range returns a valid range stepping drive code for steps samples with
// step size 0.01 and step time 1 s. Intensities default to 100+k.
func Range(code uint32, steps int, opts ...RangeOption) header.ScanRange {
	sr := header.ScanRange{
		Header: header.RangeHeader{
			HeaderLength:      header.RangeHeaderLength,
			Steps:             uint32(steps),
			Omega:             10,
			TwoTheta:          20,
			StepSize:          0.01,
			StepTime:          1,
			SteppingDriveCode: code,
			KV:                40,
			MA:                40,
			RangeWavelength:   1.5406,
			DatumLength:       header.DatumLength,
		},
		Intensity: make([]float32, steps),
	}
	for k := range sr.Intensity {
		sr.Intensity[k] = float32(100 + k)
	}
	for _, opt := range opts {
		opt(&sr)
	}
	return sr
}

// WithPosition sets the start position of an axis.
func WithPosition(a header.Axis, v float64) RangeOption {
	return func(sr *header.ScanRange) {
		h := &sr.Header
		switch a {
		case header.Omega:
			h.Omega = v
		case header.TwoTheta:
			h.TwoTheta = v
		case header.Khi:
			h.Khi = v
		case header.Phi:
			h.Phi = v
		case header.X:
			h.X = v
		case header.Y:
			h.Y = v
		case header.Z:
			h.Z = v
		case header.Aux1:
			h.Aux1 = v
		case header.Aux2:
			h.Aux2 = v
		case header.Aux3:
			h.Aux3 = v
		}
	}
}

// WithStep sets the step size and step time.
func WithStep(size float64, seconds float32) RangeOption {
	return func(sr *header.ScanRange) {
		sr.Header.StepSize = size
		sr.Header.StepTime = seconds
	}
}

// WithIntensity sets every sample from f.
func WithIntensity(f func(k int) float32) RangeOption {
	return func(sr *header.ScanRange) {
		for k := range sr.Intensity {
			sr.Intensity[k] = f(k)
		}
	}
}

// WithSupplement declares n supplemental header bytes.
func WithSupplement(n uint32) RangeOption {
	return func(sr *header.ScanRange) {
		sr.Header.SupplementHeaderSize = n
	}
}

// WithHeader applies an arbitrary edit to the range header.
func WithHeader(edit func(h *header.RangeHeader)) RangeOption {
	return func(sr *header.ScanRange) {
		edit(&sr.Header)
	}
}

// V3 encodes a V3 file whose global header declares len(ranges) ranges.
func V3(ranges ...header.ScanRange) []byte {
	g := Global(len(ranges))
	return V3WithGlobal(&g, ranges...)
}

// V3WithGlobal encodes a V3 file with an explicit global header.
// It panics on encoding errors, which only occur for malformed fixtures.
func V3WithGlobal(g *header.GlobalHeader, ranges ...header.ScanRange) []byte {
	var buf binary.Buffer
	if err := header.EncodeV3(&buf, g, ranges); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Legacy returns a minimal V1/V2 style buffer: the magic followed by padding.
func Legacy(magic string, padding int) []byte {
	out := make([]byte, len(magic)+padding)
	copy(out, magic)
	return out
}
