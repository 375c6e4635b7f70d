package assemble

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/robert-malhotra/go-xrdraw/internal/classify"
	"github.com/robert-malhotra/go-xrdraw/internal/header"
	"github.com/robert-malhotra/go-xrdraw/internal/rawerr"
)

const (
	// DefaultReferenceLattice is the cubic lattice constant (nm) of GaP.
	DefaultReferenceLattice = 0.54505
	// DefaultWavelength is Cu Kα1 in nm, used when a range records none.
	DefaultWavelength = 0.154055911278

	// reflectionWindow is the 2θ tolerance in degrees for the HKL guess.
	reflectionWindow = 3.0
	// sxFlipPhi is the |PHI| below which the S_x axis is mirrored.
	sxFlipPhi = 2.0
)

// Reflections tried by GuessHKL, in order.
var Reflections = [][3]int{{0, 0, 2}, {0, 0, 4}, {0, 0, 6}, {2, 2, -4}}

// geometry is what every range of a detector raster map must share.
type geometry struct {
	phi, twoTheta float64
	drive         uint32
}

func geometryOf(h *header.RangeHeader) geometry {
	return geometry{phi: h.Phi, twoTheta: h.TwoTheta, drive: h.SteppingDriveCode}
}

// referenceGeometry returns the most frequent geometry among PSD ranges;
// ties go to the one seen first.
func referenceGeometry(ranges []header.ScanRange) geometry {
	counts := make(map[geometry]int, len(ranges))
	var best geometry
	bestN := 0
	for i := range ranges {
		g := geometryOf(&ranges[i].Header)
		if !header.IsPSDDrive(g.drive) {
			continue
		}
		counts[g]++
		if counts[g] > bestN {
			best, bestN = g, counts[g]
		}
	}
	return best
}

func assembleDetectorMap(st classify.ScanType, ranges []header.ScanRange, opts Options) (*mat.Dense, Attributes, error) {
	log := opts.logger()
	ref := referenceGeometry(ranges)

	kept := make([]*header.ScanRange, 0, len(ranges))
	var keptIdx, droppedIdx []int
	for i := range ranges {
		if geometryOf(&ranges[i].Header) != ref {
			droppedIdx = append(droppedIdx, i)
			continue
		}
		kept = append(kept, &ranges[i])
		keptIdx = append(keptIdx, i)
	}
	if len(kept) == 0 {
		return nil, Attributes{}, rawerr.New(rawerr.ErrInconsistentRangeGeometry,
			"no range matches the reference PHI, TWOTHETA and stepping drive")
	}
	if len(droppedIdx) > 0 {
		if opts.Policy == RepairStrict {
			first := &ranges[droppedIdx[0]]
			return nil, Attributes{}, rawerr.AtRange(rawerr.ErrInconsistentRangeGeometry, droppedIdx[0],
				"PHI %g TWOTHETA %g drive %d differs from reference PHI %g TWOTHETA %g drive %d",
				first.Header.Phi, first.Header.TwoTheta, first.Header.SteppingDriveCode,
				ref.phi, ref.twoTheta, ref.drive).
				WithCode(first.Header.SteppingDriveCode).WithOffset(first.Offset)
		}
		log.WithFields(logrus.Fields{
			"dropped": len(droppedIdx),
			"kept":    len(kept),
			"ranges":  droppedIdx,
		}).Warn("dropping detector ranges with inconsistent geometry")
	}

	first := &kept[0].Header
	if err := checkStepTime(first, keptIdx[0]); err != nil {
		return nil, Attributes{}, err
	}

	width := rowWidth(kept)
	data := mat.NewDense(len(kept), width, nil)
	omega := make([]float64, len(kept))
	padded, truncated := 0, 0
	row := make([]float64, width)
	for i, sr := range kept {
		omega[i] = sr.Header.Omega
		n := copy(row, widen(sr.Intensity))
		switch {
		case n < width:
			padded++
			clear(row[n:])
		case len(sr.Intensity) > width:
			truncated++
		}
		data.SetRow(i, row)
	}
	if padded > 0 || truncated > 0 {
		log.WithFields(logrus.Fields{
			"padded":    padded,
			"truncated": truncated,
			"width":     width,
		}).Warn("detector rows resized to modal length")
	}

	twoTheta := sweep(ref.twoTheta, first.StepSize, width)
	lattice := opts.ReferenceLattice
	if lattice <= 0 {
		lattice = DefaultReferenceLattice
	}
	hkl := GuessHKL(twoTheta[0], wavelengthNM(first), lattice)

	b := common(st, first, width)
	b.set(KeyDrive2, string(st.Drive2)).
		set(KeyOmega, omega).
		set(KeyTwoTheta, twoTheta).
		set(KeyPhi, ref.phi).
		set(KeyDroppedRanges, len(droppedIdx)).
		set(KeyPaddedRows, padded).
		set(KeyHKL, hkl[:]).
		set(KeySxSign, SxSign(ref.phi))
	return data, b.build(), nil
}

// rowWidth is the most common intensity length among kept ranges; ties go
// to the shorter length.
func rowWidth(kept []*header.ScanRange) int {
	lengths := make([]float64, len(kept))
	for i, sr := range kept {
		lengths[i] = float64(len(sr.Intensity))
	}
	sort.Float64s(lengths)
	_, count := stat.Mode(lengths, nil)
	// stat.Mode picks among equal counts in map order.
	run := 0
	for i, l := range lengths {
		if i > 0 && l == lengths[i-1] {
			run++
		} else {
			run = 1
		}
		if float64(run) == count {
			return int(l)
		}
	}
	return int(lengths[0])
}

func wavelengthNM(h *header.RangeHeader) float64 {
	if h.RangeWavelength > 0 {
		return h.RangeWavelength / 10
	}
	return DefaultWavelength
}

// BraggTwoTheta returns the 2θ angle in degrees of reflection hkl for a cubic
// lattice constant and wavelength, both in nm. It reports false when the
// reflection is not reachable at this wavelength.
func BraggTwoTheta(hkl [3]int, lattice, wavelength float64) (float64, bool) {
	norm := math.Sqrt(float64(hkl[0]*hkl[0] + hkl[1]*hkl[1] + hkl[2]*hkl[2]))
	if norm == 0 || lattice <= 0 {
		return 0, false
	}
	s := wavelength * norm / (2 * lattice)
	if s > 1 {
		return 0, false
	}
	return 2 * math.Asin(s) * 180 / math.Pi, true
}

// GuessHKL returns the only reflection of Reflections whose Bragg angle lies
// within 3° of twoTheta. Zero or several matches give (0, 0, 0).
func GuessHKL(twoTheta, wavelength, lattice float64) [3]int {
	var match [3]int
	found := 0
	for _, hkl := range Reflections {
		tt, ok := BraggTwoTheta(hkl, lattice, wavelength)
		if ok && math.Abs(tt-twoTheta) <= reflectionWindow {
			match = hkl
			found++
		}
	}
	if found != 1 {
		return [3]int{}
	}
	return match
}

// SxSign is the S_x mirror convention for a detector raster map at the given
// PHI: -1 below 2° and +1 otherwise. It is reported, not applied.
func SxSign(phi float64) int {
	if math.Abs(phi) < sxFlipPhi {
		return -1
	}
	return 1
}
