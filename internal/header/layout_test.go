package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-xrdraw/internal/format"
)

func TestLayoutTablesAreContiguous(t *testing.T) {
	l, err := LayoutFor(format.V3)
	require.NoError(t, err)

	tests := []struct {
		name   string
		fields []field
		start  int64
		end    int64
	}{
		{"global", l.globalFields(&GlobalHeader{}), l.GlobalStart, l.GlobalLength},
		{"range", l.rangeFields(&RangeHeader{}), 0, l.RangeLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := tt.start
			for _, f := range tt.fields {
				require.Equal(t, pos, f.offset, "gap or overlap before %s", f.display())
				switch f.target.(type) {
				case *uint32, *float32:
					assert.Equal(t, 4, f.size, f.name)
				case *float64:
					assert.Equal(t, 8, f.size, f.name)
				}
				pos += int64(f.size)
			}
			assert.Equal(t, tt.end, pos)
		})
	}
}

func TestLayoutForRevisions(t *testing.T) {
	for _, rev := range []format.Revision{format.V1, format.V2} {
		l, err := LayoutFor(rev)
		require.NoError(t, err)
		assert.True(t, l.Sentinel, rev.String())
	}

	l, err := LayoutFor(format.V3)
	require.NoError(t, err)
	assert.False(t, l.Sentinel)
	assert.Equal(t, int64(GlobalHeaderLength), l.GlobalLength)
	assert.Equal(t, int64(RangeHeaderLength), l.RangeLength)

	_, err = LayoutFor(format.Revision(42))
	assert.Error(t, err)
}

func TestDriveTable(t *testing.T) {
	d, ok := DriveFor(DriveRockingCurve)
	require.True(t, ok)
	assert.Equal(t, Omega, d.Axis)
	assert.Equal(t, "rocking curve", d.ScanMode)

	d, ok = DriveFor(DrivePSDFast)
	require.True(t, ok)
	assert.Equal(t, TwoTheta, d.Axis)

	for code := uint32(0); code <= 13; code++ {
		_, ok := DriveFor(code)
		assert.True(t, ok, "code %d", code)
	}
	_, ok = DriveFor(14)
	assert.False(t, ok)
	_, ok = DriveFor(128)
	assert.False(t, ok)

	assert.True(t, IsAuxDrive(10))
	assert.False(t, IsAuxDrive(12))
	assert.True(t, IsPSDDrive(129))
	assert.False(t, IsPSDDrive(2))
}

func TestRangeHeaderPosition(t *testing.T) {
	h := RangeHeader{Omega: 1, TwoTheta: 2, Khi: 3, Phi: 4, X: 5, Y: 6, Z: 7, Aux1: 8, Aux2: 9, Aux3: 10}
	axes := []Axis{Omega, TwoTheta, Khi, Phi, X, Y, Z, Aux1, Aux2, Aux3}
	for i, a := range axes {
		v, ok := h.Position(a)
		require.True(t, ok, a)
		assert.Equal(t, float64(i+1), v, a)
	}
	_, ok := h.Position(Axis("PSI"))
	assert.False(t, ok)
}

func TestFileStatusString(t *testing.T) {
	assert.Equal(t, "done", StatusDone.String())
	assert.Equal(t, "active", StatusActive.String())
	assert.Equal(t, "aborted", StatusAborted.String())
	assert.Equal(t, "interrupted", StatusInterrupted.String())
	assert.Equal(t, "unknown", FileStatus(9).String())
}
