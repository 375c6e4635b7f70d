package assemble

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/robert-malhotra/go-xrdraw/internal/classify"
	"github.com/robert-malhotra/go-xrdraw/internal/fixture"
	"github.com/robert-malhotra/go-xrdraw/internal/header"
	"github.com/robert-malhotra/go-xrdraw/internal/rawerr"
)

func classified(t *testing.T, ranges ...header.ScanRange) (classify.ScanType, []header.ScanRange) {
	t.Helper()
	for i := range ranges {
		ranges[i].Index = i
	}
	st, err := classify.Classify(ranges)
	require.NoError(t, err)
	return st, ranges
}

func quiet() Options {
	log, _ := test.NewNullLogger()
	return Options{Logger: log}
}

func TestAssembleRockingCurve(t *testing.T) {
	st, ranges := classified(t, fixture.Range(header.DriveRockingCurve, 100,
		fixture.WithPosition(header.Omega, 16.2),
		fixture.WithStep(0.01, 1)))
	require.Equal(t, classify.RockingCurve, st.Kind)

	data, attrs, err := Assemble(st, ranges, quiet())
	require.NoError(t, err)

	r, c := data.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 100, c)

	axis := mat.Row(nil, 0, data)
	assert.InDelta(t, 16.2, axis[0], 1e-12)
	for k := 1; k < len(axis); k++ {
		assert.InDelta(t, 0.01, axis[k]-axis[k-1], 1e-9, "step %d", k)
	}
	counts := mat.Row(nil, 1, data)
	for k, v := range counts {
		assert.Equal(t, float64(ranges[0].Intensity[k]), v)
	}

	typ, _ := attrs.Text(KeyType)
	assert.Equal(t, "RockingCurve", typ)
	drive, _ := attrs.Text(KeyDrive1)
	assert.Equal(t, "OMEGA", drive)
	steps, _ := attrs.Int(KeySteps)
	assert.Equal(t, 100, steps)
	lo, _ := attrs.Float(KeyDrv1Min)
	hi, _ := attrs.Float(KeyDrv1Max)
	assert.InDelta(t, 16.2, lo, 1e-12)
	assert.InDelta(t, 17.19, hi, 1e-9)
	for _, key := range []string{KeyOmega, KeyTwoTheta, "KHI", KeyPhi, "X", "Y", "Z", KeyStepSize, KeyStepTime, KeyScanMode} {
		assert.True(t, attrs.Has(key), key)
	}
	assert.False(t, attrs.Has(KeyDrive2))
}

func TestAssembleSingleDividesByStepTime(t *testing.T) {
	st, ranges := classified(t, fixture.Range(2, 4,
		fixture.WithStep(-0.5, 4),
		fixture.WithIntensity(func(k int) float32 { return float32(8 * (k + 1)) })))

	data, _, err := Assemble(st, ranges, quiet())
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6, 8}, mat.Row(nil, 1, data))

	axis := mat.Row(nil, 0, data)
	assert.InDelta(t, 20.0, axis[0], 1e-12)
	assert.InDelta(t, 18.5, axis[3], 1e-12)
}

func TestAssembleSingleStep(t *testing.T) {
	st, ranges := classified(t, fixture.Range(0, 1))
	data, attrs, err := Assemble(st, ranges, quiet())
	require.NoError(t, err)
	r, c := data.Dims()
	assert.Equal(t, [2]int{2, 1}, [2]int{r, c})
	lo, _ := attrs.Float(KeyDrv1Min)
	hi, _ := attrs.Float(KeyDrv1Max)
	assert.Equal(t, lo, hi)
}

func TestAssembleInvalidStepTiming(t *testing.T) {
	for _, tc := range []struct {
		name string
		secs float32
	}{
		{"zero", 0},
		{"negative", -1},
		{"nan", float32(math.NaN())},
	} {
		t.Run(tc.name, func(t *testing.T) {
			st, ranges := classified(t, fixture.Range(0, 10, fixture.WithStep(0.02, tc.secs)))
			_, _, err := Assemble(st, ranges, quiet())
			require.ErrorIs(t, err, rawerr.ErrInvalidStepTiming)
		})
	}
}

func poleFigure(n, steps int) []header.ScanRange {
	out := make([]header.ScanRange, n)
	for i := range out {
		out[i] = fixture.Range(5, steps,
			fixture.WithPosition(header.Khi, float64(15*i)),
			fixture.WithStep(2, 0.5),
			fixture.WithIntensity(func(k int) float32 { return float32(i*1000 + k) }))
	}
	return out
}

func TestAssemblePoleFigure(t *testing.T) {
	st, ranges := classified(t, poleFigure(4, 180)...)
	require.Equal(t, classify.PoleFigure, st.Kind)

	data, attrs, err := Assemble(st, ranges, quiet())
	require.NoError(t, err)

	r, c := data.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 180, c)
	assert.Equal(t, r, attrs.Len1D(KeyDrv1))
	assert.Equal(t, c, attrs.Len1D(KeyDrv2))

	drv1, _ := attrs.Floats(KeyDrv1)
	assert.Equal(t, []float64{0, 15, 30, 45}, drv1)
	drv2, _ := attrs.Floats(KeyDrv2)
	assert.InDelta(t, 0.0, drv2[0], 1e-12)
	assert.InDelta(t, 358.0, drv2[179], 1e-9)

	vit, ok := attrs.Float(KeyVitAngle)
	require.True(t, ok)
	assert.InDelta(t, 4.0, vit, 1e-12)

	// Counts are divided by the 0.5 s step time.
	assert.Equal(t, 2*float64(3000+7), data.At(3, 7))

	for key, want := range map[string]string{KeyDrive1: "KHI", KeyDrive2: "PHI", KeyType: "PoleFigure", KeyScanMode: "phi scan"} {
		got, _ := attrs.Text(key)
		assert.Equal(t, want, got, key)
	}
	lo, _ := attrs.Float(KeyDrv1Min)
	hi, _ := attrs.Float(KeyDrv1Max)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 45.0, hi)
}

func TestAssembleRasterInconsistent(t *testing.T) {
	for _, tc := range []struct {
		name string
		edit func(h *header.RangeHeader)
	}{
		{"step size", func(h *header.RangeHeader) { h.StepSize = 1 }},
		{"step time", func(h *header.RangeHeader) { h.StepTime = 2 }},
		{"drive", func(h *header.RangeHeader) { h.SteppingDriveCode = 4 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ranges := poleFigure(3, 10)
			ranges[2] = fixture.Range(5, 10,
				fixture.WithPosition(header.Khi, 30),
				fixture.WithStep(2, 0.5),
				fixture.WithHeader(tc.edit))
			st, ranges := classified(t, ranges...)

			_, _, err := Assemble(st, ranges, quiet())
			require.ErrorIs(t, err, rawerr.ErrInconsistentRangeGeometry)
			var re *rawerr.Error
			require.ErrorAs(t, err, &re)
			assert.Equal(t, 2, re.Range)
		})
	}

	t.Run("steps", func(t *testing.T) {
		ranges := poleFigure(2, 10)
		ranges = append(ranges, fixture.Range(5, 11, fixture.WithPosition(header.Khi, 30), fixture.WithStep(2, 0.5)))
		st, ranges := classified(t, ranges...)
		_, _, err := Assemble(st, ranges, quiet())
		require.ErrorIs(t, err, rawerr.ErrInconsistentRangeGeometry)
	})
}

func TestAssembleRasterInvalidStepTiming(t *testing.T) {
	for name, stepTime := range map[string]float32{"zero": 0, "negative": -1, "nan": float32(math.NaN())} {
		t.Run(name, func(t *testing.T) {
			ranges := []header.ScanRange{
				fixture.Range(8, 5, fixture.WithPosition(header.X, 0), fixture.WithStep(0.1, stepTime)),
				fixture.Range(8, 5, fixture.WithPosition(header.X, 1), fixture.WithStep(0.1, stepTime)),
			}
			st, ranges := classified(t, ranges...)
			require.Equal(t, classify.TwoAxisRaster, st.Kind)
			_, _, err := Assemble(st, ranges, quiet())
			require.ErrorIs(t, err, rawerr.ErrInvalidStepTiming)
			assert.NotErrorIs(t, err, rawerr.ErrInconsistentRangeGeometry)
		})
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	st, ranges := classified(t, poleFigure(3, 20)...)
	d1, a1, err := Assemble(st, ranges, quiet())
	require.NoError(t, err)
	d2, a2, err := Assemble(st, ranges, quiet())
	require.NoError(t, err)
	assert.True(t, mat.Equal(d1, d2))
	assert.Equal(t, a1.Map(), a2.Map())
}

func TestAssembleUnknownKind(t *testing.T) {
	_, _, err := Assemble(classify.ScanType{Kind: 42}, []header.ScanRange{fixture.Range(0, 2)}, quiet())
	require.ErrorIs(t, err, rawerr.ErrUnsupportedScanConfiguration)

	_, _, err = Assemble(classify.ScanType{Kind: classify.SingleScan}, nil, quiet())
	require.ErrorIs(t, err, rawerr.ErrCorruptHeader)
}

func TestRepairPolicyNames(t *testing.T) {
	for _, p := range []RepairPolicy{RepairFilter, RepairStrict} {
		got, ok := ParseRepairPolicy(p.String())
		require.True(t, ok)
		assert.Equal(t, p, got)
	}
	_, ok := ParseRepairPolicy("lenient")
	assert.False(t, ok)
}
