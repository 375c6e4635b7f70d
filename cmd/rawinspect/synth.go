package main

import (
	"fmt"
	"sort"

	"github.com/robert-malhotra/go-xrdraw/internal/fixture"
	"github.com/robert-malhotra/go-xrdraw/internal/header"
)

// synthesizers build demonstration files for each scan type.
var synthesizers = map[string]func() []byte{
	"single": func() []byte {
		return fixture.V3(fixture.Range(0, 400, fixture.WithStep(0.02, 0.5), peak(200, 40, 5000)))
	},
	"rocking": func() []byte {
		return fixture.V3(fixture.Range(header.DriveRockingCurve, 200,
			fixture.WithPosition(header.Omega, 15.4), fixture.WithStep(0.005, 1), peak(100, 8, 12000)))
	},
	"raster": func() []byte {
		ranges := make([]header.ScanRange, 5)
		for i := range ranges {
			ranges[i] = fixture.Range(6, 50, fixture.WithPosition(header.Y, float64(i)), fixture.WithStep(0.2, 1))
		}
		return fixture.V3(ranges...)
	},
	"pole": func() []byte {
		ranges := make([]header.ScanRange, 16)
		for i := range ranges {
			ranges[i] = fixture.Range(5, 72,
				fixture.WithPosition(header.Khi, float64(5*i)), fixture.WithStep(5, 1))
		}
		return fixture.V3(ranges...)
	},
	"rsm": func() []byte {
		ranges := make([]header.ScanRange, 21)
		for i := range ranges {
			ranges[i] = fixture.Range(header.DrivePSDFast, 256,
				fixture.WithPosition(header.Omega, 16+0.01*float64(i)),
				fixture.WithPosition(header.TwoTheta, 31),
				fixture.WithStep(0.015, 2),
				peak(128, 12, float32(1000*(i+1))))
		}
		return fixture.V3(ranges...)
	},
	"v1": func() []byte { return fixture.Legacy("RAW ", 1) },
	"v2": func() []byte { return fixture.Legacy("RAW2", 64) },
}

// peak shapes the intensities as a triangle of the given height over a
// background of 10 counts.
func peak(center, halfWidth int, height float32) fixture.RangeOption {
	return fixture.WithIntensity(func(k int) float32 {
		d := k - center
		if d < 0 {
			d = -d
		}
		if d >= halfWidth {
			return 10
		}
		return 10 + height*float32(halfWidth-d)/float32(halfWidth)
	})
}

func synthKinds() []string {
	kinds := make([]string, 0, len(synthesizers))
	for k := range synthesizers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func synthesize(kind string) ([]byte, error) {
	f, ok := synthesizers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q, want one of %v", kind, synthKinds())
	}
	return f(), nil
}
