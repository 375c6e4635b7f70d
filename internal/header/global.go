package header

import "github.com/robert-malhotra/go-xrdraw/internal/format"

// FileStatus is the acquisition state recorded in the global header.
type FileStatus uint32

const (
	StatusDone        FileStatus = 1
	StatusActive      FileStatus = 2
	StatusAborted     FileStatus = 3
	StatusInterrupted FileStatus = 4
)

func (s FileStatus) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusActive:
		return "active"
	case StatusAborted:
		return "aborted"
	case StatusInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// GlobalHeader holds the file-wide metadata. For V1 and V2 files only
// FormatVersion is set.
type GlobalHeader struct {
	FormatVersion string

	StatusCode uint32
	RangeCount uint32

	Date    string
	Time    string
	User    string
	Site    string
	Sample  string
	Comment string

	GoniometerCode           uint32
	GoniometerStageCode      uint32
	SampleHolderCode         uint32
	GoniometerControllerCode uint32
	GoniometerRadius         float32
	FixedDivergence          float32
	FixedSampleSlit          float32
	PrimarySollerSlit        uint32
	PrimaryMonochromator     uint32
	FixedAntiscatterSlit     float32
	FixedDetectorSlit        float32
	SecondarySollerSlit      uint32
	FixedThinFilmAttachment  uint32
	BetaFilter               uint32
	SecondaryMonochromator   uint32

	AnodeMaterial   string
	AlphaAverage    float64
	Alpha1          float64
	Alpha2          float64
	Beta            float64
	AlphaRatio      float64
	WavelengthUnit  string
	IntensityBetaA1 float32
	MeasurementTime float32
}

// Status returns the decoded file status.
func (h *GlobalHeader) Status() FileStatus {
	return FileStatus(h.StatusCode)
}

// Offsets are absolute; the global record starts at the file start.
func (h *GlobalHeader) fields() []field {
	return []field{
		{"FILE_STATUS_CODE", 8, 4, &h.StatusCode},
		{"RANGE_CNT", 12, 4, &h.RangeCount},
		{"DATE", 16, 10, &h.Date},
		{"TIME", 26, 10, &h.Time},
		{"USER", 36, 72, &h.User},
		{"SITE", 108, 218, &h.Site},
		{"SAMPLE", 326, 60, &h.Sample},
		{"COMMENT", 386, 160, &h.Comment},
		reserved(546, 2),
		{"GONIOMETER_CODE", 548, 4, &h.GoniometerCode},
		{"GONIOMETER_STAGE_CODE", 552, 4, &h.GoniometerStageCode},
		{"SAMPLE_HOLDER_CODE", 556, 4, &h.SampleHolderCode},
		{"GONIOMETER_CONTROLLER_CODE", 560, 4, &h.GoniometerControllerCode},
		{"GONIOMETER_RADIUS", 564, 4, &h.GoniometerRadius},
		{"FIXED_DIVERGENCE", 568, 4, &h.FixedDivergence},
		{"FIXED_SAMPLE_SLIT", 572, 4, &h.FixedSampleSlit},
		{"PRIMARY_SOLLER_SLIT", 576, 4, &h.PrimarySollerSlit},
		{"PRIMARY_MONOCHROMATOR", 580, 4, &h.PrimaryMonochromator},
		{"FIXED_ANTISCATTER_SLIT", 584, 4, &h.FixedAntiscatterSlit},
		{"FIXED_DETECTOR_SLIT", 588, 4, &h.FixedDetectorSlit},
		{"SECONDARY_SOLLER_SLIT", 592, 4, &h.SecondarySollerSlit},
		{"FIXED_THIN_FILM_ATTACHMENT", 596, 4, &h.FixedThinFilmAttachment},
		{"BETA_FILTER", 600, 4, &h.BetaFilter},
		{"SECONDARY_MONOCHROMATOR", 604, 4, &h.SecondaryMonochromator},
		{"ANODE_MATERIAL", 608, 4, &h.AnodeMaterial},
		reserved(612, 4),
		{"ALPHA_AVERAGE", 616, 8, &h.AlphaAverage},
		{"WL1", 624, 8, &h.Alpha1},
		{"WL2", 632, 8, &h.Alpha2},
		{"BETA", 640, 8, &h.Beta},
		{"ALPHA_RATIO", 648, 8, &h.AlphaRatio},
		{"WL_UNIT", 656, 4, &h.WavelengthUnit},
		{"INTENSITY_BETA_A1", 660, 4, &h.IntensityBetaA1},
		{"MEASUREMENT_TIME", 664, 4, &h.MeasurementTime},
		reserved(668, 44),
	}
}

// Entries lists the decoded global fields in layout order, preceded by
// FORMAT_VERSION and FILE_STATUS.
func (h *GlobalHeader) Entries() []Entry {
	out := []Entry{{Name: "FORMAT_VERSION", Value: h.FormatVersion}}
	if h.FormatVersion != format.V3.String() {
		return out
	}
	out = append(out, Entry{Name: "FILE_STATUS", Value: h.Status().String()})
	return append(out, entries(h.fields())...)
}
