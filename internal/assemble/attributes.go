package assemble

import (
	"fmt"
	"slices"
	"sort"
)

// Attribute keys. Which keys are present depends on the scan kind:
//
//	all kinds          TYPE, SCAN_MODE, STEPPING_DRIVE1, STEP_SIZE, STEP_TIME, STEPS
//	SingleScan         DRV_1_MIN, DRV_1_MAX, OMEGA, TWOTHETA, KHI, PHI, X, Y, Z (scalars)
//	RockingCurve       as SingleScan
//	TwoAxisRaster      STEPPING_DRIVE2, DRV_1 (rows), DRV_2 (cols), DRV_1_MIN/MAX,
//	                   DRV_2_MIN/MAX, VIT_ANGLE
//	PoleFigure         as TwoAxisRaster
//	DetectorRasterMap  STEPPING_DRIVE2, OMEGA (rows), TWOTHETA (cols), PHI (scalar),
//	                   DROPPED_RANGES, PADDED_ROWS, HKL, SX_SIGN
const (
	KeyType          = "TYPE"
	KeyScanMode      = "SCAN_MODE"
	KeyDrive1        = "STEPPING_DRIVE1"
	KeyDrive2        = "STEPPING_DRIVE2"
	KeyStepSize      = "STEP_SIZE"
	KeyStepTime      = "STEP_TIME"
	KeySteps         = "STEPS"
	KeyDrv1          = "DRV_1"
	KeyDrv2          = "DRV_2"
	KeyDrv1Min       = "DRV_1_MIN"
	KeyDrv1Max       = "DRV_1_MAX"
	KeyDrv2Min       = "DRV_2_MIN"
	KeyDrv2Max       = "DRV_2_MAX"
	KeyVitAngle      = "VIT_ANGLE"
	KeyOmega         = "OMEGA"
	KeyTwoTheta      = "TWOTHETA"
	KeyPhi           = "PHI"
	KeyDroppedRanges = "DROPPED_RANGES"
	KeyPaddedRows    = "PADDED_ROWS"
	KeyHKL           = "HKL"
	KeySxSign        = "SX_SIGN"
)

// Attributes maps keys to float64, []float64, int, []int or string values.
// The zero value is empty. Attributes are never modified in place: accessors
// return copies and With returns a new value.
type Attributes struct {
	values map[string]any
}

// Len returns the number of keys.
func (a Attributes) Len() int {
	return len(a.values)
}

// Keys returns the keys in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Value returns a copy of the value stored under key.
func (a Attributes) Value(key string) (any, bool) {
	v, ok := a.values[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Float returns a scalar float attribute.
func (a Attributes) Float(key string) (float64, bool) {
	v, ok := a.values[key].(float64)
	return v, ok
}

// Floats returns a copy of a float array attribute.
func (a Attributes) Floats(key string) ([]float64, bool) {
	v, ok := a.values[key].([]float64)
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Int returns a scalar integer attribute.
func (a Attributes) Int(key string) (int, bool) {
	v, ok := a.values[key].(int)
	return v, ok
}

// Ints returns a copy of an integer array attribute.
func (a Attributes) Ints(key string) ([]int, bool) {
	v, ok := a.values[key].([]int)
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Text returns a string attribute.
func (a Attributes) Text(key string) (string, bool) {
	v, ok := a.values[key].(string)
	return v, ok
}

// Len1D returns the length of an array attribute, or -1 for scalars and
// missing keys.
func (a Attributes) Len1D(key string) int {
	switch v := a.values[key].(type) {
	case []float64:
		return len(v)
	case []int:
		return len(v)
	default:
		return -1
	}
}

// With returns a copy of a with key set to value. Consumers use it to attach
// their own keys without touching the decoder's result.
func (a Attributes) With(key string, value any) (Attributes, error) {
	if err := checkValue(value); err != nil {
		return a, fmt.Errorf("attribute %s: %w", key, err)
	}
	out := make(map[string]any, len(a.values)+1)
	for k, v := range a.values {
		out[k] = v
	}
	out[key] = cloneValue(value)
	return Attributes{values: out}, nil
}

// Map returns a deep copy of the attributes as a plain map.
func (a Attributes) Map() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = cloneValue(v)
	}
	return out
}

func checkValue(v any) error {
	switch v.(type) {
	case float64, []float64, int, []int, string:
		return nil
	default:
		return fmt.Errorf("unsupported attribute type %T", v)
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []float64:
		return slices.Clone(t)
	case []int:
		return slices.Clone(t)
	default:
		return v
	}
}

// builder collects attributes during assembly.
type builder struct {
	values map[string]any
}

func newBuilder() *builder {
	return &builder{values: make(map[string]any)}
}

func (b *builder) set(key string, v any) *builder {
	b.values[key] = v
	return b
}

func (b *builder) build() Attributes {
	return Attributes{values: b.values}
}
