package assemble

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/robert-malhotra/go-xrdraw/internal/classify"
	"github.com/robert-malhotra/go-xrdraw/internal/fixture"
	"github.com/robert-malhotra/go-xrdraw/internal/header"
	"github.com/robert-malhotra/go-xrdraw/internal/rawerr"
)

// rsm builds n detector ranges at PHI 0 and 2θ 33 with omega stepping by 0.1.
func rsm(n, steps int) []header.ScanRange {
	out := make([]header.ScanRange, n)
	for i := range out {
		out[i] = fixture.Range(header.DrivePSDFast, steps,
			fixture.WithPosition(header.Omega, 16+0.1*float64(i)),
			fixture.WithPosition(header.TwoTheta, 33),
			fixture.WithStep(0.02, 2))
	}
	return out
}

func TestAssembleDetectorMap(t *testing.T) {
	st, ranges := classified(t, rsm(5, 64)...)
	require.Equal(t, classify.DetectorRasterMap, st.Kind)

	log, hook := test.NewNullLogger()
	data, attrs, err := Assemble(st, ranges, Options{Logger: log})
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())

	r, c := data.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 64, c)
	assert.Equal(t, r, attrs.Len1D(KeyOmega))
	assert.Equal(t, c, attrs.Len1D(KeyTwoTheta))

	// Raw counts, not divided by the 2 s step time.
	assert.Equal(t, float64(ranges[0].Intensity[10]), data.At(0, 10))

	omega, _ := attrs.Floats(KeyOmega)
	assert.InDelta(t, 16.4, omega[4], 1e-12)
	tt, _ := attrs.Floats(KeyTwoTheta)
	assert.InDelta(t, 33.0, tt[0], 1e-12)
	assert.InDelta(t, 33.0+63*0.02, tt[63], 1e-9)

	hkl, ok := attrs.Ints(KeyHKL)
	require.True(t, ok)
	assert.Equal(t, []int{0, 0, 2}, hkl)
	sx, _ := attrs.Int(KeySxSign)
	assert.Equal(t, -1, sx)
	dropped, _ := attrs.Int(KeyDroppedRanges)
	assert.Zero(t, dropped)
	padded, _ := attrs.Int(KeyPaddedRows)
	assert.Zero(t, padded)

	for key, want := range map[string]string{KeyDrive1: "OMEGA", KeyDrive2: "TWOTHETA", KeyType: "DetectorRasterMap"} {
		got, _ := attrs.Text(key)
		assert.Equal(t, want, got, key)
	}
}

func TestAssembleDetectorMapFiltersInconsistentRanges(t *testing.T) {
	ranges := rsm(6, 16)
	ranges[2].Header.TwoTheta = 40
	ranges[4].Header.Phi = 90
	st, ranges := classified(t, ranges...)

	log, hook := test.NewNullLogger()
	data, attrs, err := Assemble(st, ranges, Options{Logger: log})
	require.NoError(t, err)

	r, _ := data.Dims()
	assert.Equal(t, 4, r)
	omega, _ := attrs.Floats(KeyOmega)
	assert.Len(t, omega, 4)
	assert.InDelta(t, 16.3, omega[2], 1e-12)
	dropped, _ := attrs.Int(KeyDroppedRanges)
	assert.Equal(t, 2, dropped)

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, 2, entry.Data["dropped"])
	assert.Equal(t, []int{2, 4}, entry.Data["ranges"])
}

func TestAssembleDetectorMapReferenceIsModal(t *testing.T) {
	// Range 0 is the outlier; the majority geometry wins.
	ranges := rsm(4, 8)
	ranges[0].Header.TwoTheta = 50
	st, ranges := classified(t, ranges...)

	_, attrs, err := Assemble(st, ranges, quiet())
	require.NoError(t, err)
	tt, _ := attrs.Floats(KeyTwoTheta)
	assert.InDelta(t, 33.0, tt[0], 1e-12)
	dropped, _ := attrs.Int(KeyDroppedRanges)
	assert.Equal(t, 1, dropped)
}

func TestAssembleDetectorMapStrict(t *testing.T) {
	ranges := rsm(4, 8)
	ranges[3].Header.TwoTheta = 34
	st, ranges := classified(t, ranges...)

	_, _, err := Assemble(st, ranges, Options{Policy: RepairStrict, Logger: quiet().Logger})
	require.ErrorIs(t, err, rawerr.ErrInconsistentRangeGeometry)
	var re *rawerr.Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 3, re.Range)
	assert.Equal(t, header.DrivePSDFast, re.Code)
}

func TestAssembleDetectorMapDropsForeignDrive(t *testing.T) {
	const phiScan uint32 = 5
	ranges := rsm(4, 8)
	ranges[3].Header.SteppingDriveCode = phiScan
	st, ranges := classified(t, ranges...)

	log, hook := test.NewNullLogger()
	data, attrs, err := Assemble(st, ranges, Options{Logger: log})
	require.NoError(t, err)
	r, _ := data.Dims()
	assert.Equal(t, 3, r)
	dropped, _ := attrs.Int(KeyDroppedRanges)
	assert.Equal(t, 1, dropped)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, []int{3}, hook.LastEntry().Data["ranges"])

	_, _, err = Assemble(st, ranges, Options{Policy: RepairStrict, Logger: log})
	require.ErrorIs(t, err, rawerr.ErrInconsistentRangeGeometry)
	var re *rawerr.Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 3, re.Range)
	assert.Equal(t, phiScan, re.Code)
}

func TestAssembleDetectorMapPadsShortRows(t *testing.T) {
	ranges := rsm(4, 10)
	ranges[1] = fixture.Range(header.DrivePSDFast, 6,
		fixture.WithPosition(header.Omega, 16.1),
		fixture.WithPosition(header.TwoTheta, 33),
		fixture.WithStep(0.02, 2))
	ranges[3] = fixture.Range(header.DrivePSDFast, 12,
		fixture.WithPosition(header.Omega, 16.3),
		fixture.WithPosition(header.TwoTheta, 33),
		fixture.WithStep(0.02, 2))
	st, ranges := classified(t, ranges...)

	log, hook := test.NewNullLogger()
	data, attrs, err := Assemble(st, ranges, Options{Logger: log})
	require.NoError(t, err)

	r, c := data.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 10, c)
	row := mat.Row(nil, 1, data)
	assert.Equal(t, float64(105), row[5])
	assert.Equal(t, []float64{0, 0, 0, 0}, row[6:])
	assert.Equal(t, float64(109), data.At(3, 9))

	padded, _ := attrs.Int(KeyPaddedRows)
	assert.Equal(t, 1, padded)
	steps, _ := attrs.Int(KeySteps)
	assert.Equal(t, 10, steps)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.Data["padded"])
	assert.Equal(t, 1, entry.Data["truncated"])
}

func TestAssembleDetectorMapInvalidStepTiming(t *testing.T) {
	ranges := rsm(2, 4)
	for i := range ranges {
		ranges[i].Header.StepTime = 0
	}
	st, ranges := classified(t, ranges...)
	_, _, err := Assemble(st, ranges, quiet())
	require.ErrorIs(t, err, rawerr.ErrInvalidStepTiming)
}

func TestRowWidthTiesGoShorter(t *testing.T) {
	kept := []*header.ScanRange{
		{Intensity: make([]float32, 12)},
		{Intensity: make([]float32, 8)},
		{Intensity: make([]float32, 12)},
		{Intensity: make([]float32, 8)},
	}
	for range 20 {
		assert.Equal(t, 8, rowWidth(kept))
	}
}

func TestGuessHKL(t *testing.T) {
	const wl = 0.15406
	for _, hkl := range Reflections {
		tt, ok := BraggTwoTheta(hkl, DefaultReferenceLattice, wl)
		require.True(t, ok, "%v", hkl)
		assert.Equal(t, hkl, GuessHKL(tt+1, wl, DefaultReferenceLattice), "%v", hkl)
	}

	assert.Equal(t, [3]int{}, GuessHKL(20, wl, DefaultReferenceLattice))
	// A lattice so large every reflection crowds below 3°.
	assert.Equal(t, [3]int{}, GuessHKL(1, wl, 100))

	tt, ok := BraggTwoTheta([3]int{0, 0, 2}, DefaultReferenceLattice, wl)
	require.True(t, ok)
	assert.InDelta(t, 32.84, tt, 0.01)

	_, ok = BraggTwoTheta([3]int{0, 0, 20}, DefaultReferenceLattice, wl)
	assert.False(t, ok)
	_, ok = BraggTwoTheta([3]int{}, DefaultReferenceLattice, wl)
	assert.False(t, ok)
}

func TestAssembleDetectorMapUsesConfiguredLattice(t *testing.T) {
	st, ranges := classified(t, rsm(2, 4)...)
	// 2θ 33 sits on (0,0,4) when the lattice is doubled.
	_, attrs, err := Assemble(st, ranges, Options{ReferenceLattice: 2 * DefaultReferenceLattice, Logger: quiet().Logger})
	require.NoError(t, err)
	hkl, _ := attrs.Ints(KeyHKL)
	assert.Equal(t, []int{0, 0, 4}, hkl)
}

func TestSxSign(t *testing.T) {
	for phi, want := range map[float64]int{0: -1, 1.99: -1, -1.5: -1, 2: 1, 90: 1, -180: 1} {
		assert.Equal(t, want, SxSign(phi), "phi %g", phi)
	}
}
