package header

// RangeHeader is the fixed record preceding each range's intensities.
// Motor positions are stored in degrees (angles) or millimetres (X, Y, Z).
type RangeHeader struct {
	HeaderLength uint32
	Steps        uint32

	Omega    float64
	TwoTheta float64
	Khi      float64
	Phi      float64
	X        float64
	Y        float64
	Z        float64

	Detector      uint32
	HighVoltage   float32
	AmplifierGain float32

	Aux1 float64
	Aux2 float64
	Aux3 float64

	ScanMode          uint32
	StepSize          float64 // negative for a decreasing sweep
	StepSizeB         float64
	StepTime          float32 // seconds per step
	SteppingDriveCode uint32

	TimeStarted float32
	TempRate    float32
	TempDelay   float32
	KV          uint32
	MA          uint32

	RangeWavelength      float64
	VaryingParams        uint32
	DatumLength          uint32
	SupplementHeaderSize uint32
}

// Offsets are relative to the range start.
func (h *RangeHeader) fields() []field {
	return []field{
		{"HEADER_LENGTH", 0, 4, &h.HeaderLength},
		{"STEPS", 4, 4, &h.Steps},
		{"OMEGA", 8, 8, &h.Omega},
		{"TWOTHETA", 16, 8, &h.TwoTheta},
		{"KHI", 24, 8, &h.Khi},
		{"PHI", 32, 8, &h.Phi},
		{"X", 40, 8, &h.X},
		{"Y", 48, 8, &h.Y},
		{"Z", 56, 8, &h.Z},
		reserved(64, 32),
		{"DETECTOR", 96, 4, &h.Detector},
		{"HIGH_VOLTAGE", 100, 4, &h.HighVoltage},
		{"AMPLIFIER_GAIN", 104, 4, &h.AmplifierGain},
		reserved(108, 36),
		{"AUX1", 144, 8, &h.Aux1},
		{"AUX2", 152, 8, &h.Aux2},
		{"AUX3", 160, 8, &h.Aux3},
		{"SCAN_MODE", 168, 4, &h.ScanMode},
		reserved(172, 4),
		{"STEP_SIZE", 176, 8, &h.StepSize},
		{"STEP_SIZE_B", 184, 8, &h.StepSizeB},
		{"STEPTIME", 192, 4, &h.StepTime},
		{"STEPPING_DRIVE_CODE", 196, 4, &h.SteppingDriveCode},
		reserved(200, 4),
		{"TIMESTARTED", 204, 4, &h.TimeStarted},
		reserved(208, 4),
		{"TEMP_RATE", 212, 4, &h.TempRate},
		{"TEMP_DELAY", 216, 4, &h.TempDelay},
		reserved(220, 4),
		{"KV", 224, 4, &h.KV},
		{"MA", 228, 4, &h.MA},
		reserved(232, 8),
		{"RANGE_WL", 240, 8, &h.RangeWavelength},
		{"VARYINGPARAMS", 248, 4, &h.VaryingParams},
		{"DATUM_LENGTH", 252, 4, &h.DatumLength},
		{"SUPPLEMENT_HEADER_SIZE", 256, 4, &h.SupplementHeaderSize},
		reserved(260, 44),
	}
}

// Entries lists the decoded range fields in layout order.
func (h *RangeHeader) Entries() []Entry {
	return entries(h.fields())
}

// Position returns the motor position recorded for axis a.
func (h *RangeHeader) Position(a Axis) (float64, bool) {
	switch a {
	case Omega:
		return h.Omega, true
	case TwoTheta:
		return h.TwoTheta, true
	case Khi:
		return h.Khi, true
	case Phi:
		return h.Phi, true
	case X:
		return h.X, true
	case Y:
		return h.Y, true
	case Z:
		return h.Z, true
	case Aux1:
		return h.Aux1, true
	case Aux2:
		return h.Aux2, true
	case Aux3:
		return h.Aux3, true
	default:
		return 0, false
	}
}

// Drive returns the stepping-drive table entry for this range.
func (h *RangeHeader) Drive() (Drive, bool) {
	return DriveFor(h.SteppingDriveCode)
}

// ScanRange is one decoded range: its header and exactly Steps intensities.
type ScanRange struct {
	Index     int
	Offset    int64 // byte offset of the range header
	Header    RangeHeader
	Intensity []float32
}
