package rawfile

import (
	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-xrdraw/internal/assemble"
)

// Option configures decoding.
type Option func(*options)

type options struct {
	logger  logrus.FieldLogger
	policy  RepairPolicy
	lattice float64
}

func defaultOptions() *options {
	return &options{
		logger:  logrus.StandardLogger(),
		policy:  RepairFilter,
		lattice: assemble.DefaultReferenceLattice,
	}
}

// WithLogger sets the logger used for per-range debug output and repair
// warnings. A nil logger is ignored.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRepairPolicy selects how detector raster maps with ranges outside the
// consistent geometry are handled.
func WithRepairPolicy(p RepairPolicy) Option {
	return func(o *options) {
		if p == RepairFilter || p == RepairStrict {
			o.policy = p
		}
	}
}

// WithReferenceLattice sets the cubic lattice constant in nm used for the
// HKL guess of detector raster maps. Non-positive values are ignored.
func WithReferenceLattice(nm float64) Option {
	return func(o *options) {
		if nm > 0 {
			o.lattice = nm
		}
	}
}

func (o *options) assembly() assemble.Options {
	return assemble.Options{
		Policy:           o.policy,
		ReferenceLattice: o.lattice,
		Logger:           o.logger,
	}
}
