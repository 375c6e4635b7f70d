package rawfile

// Field is a named value in a Summary, kept in file order.
type Field struct {
	Name  string `yaml:"name" json:"name"`
	Value any    `yaml:"value" json:"value"`
}

// RangeSummary describes one decoded range.
type RangeSummary struct {
	Index      int     `yaml:"index" json:"index"`
	Offset     int64   `yaml:"offset" json:"offset"`
	Drive      uint32  `yaml:"drive" json:"drive"`
	ScanMode   string  `yaml:"scan_mode" json:"scan_mode"`
	Steps      uint32  `yaml:"steps" json:"steps"`
	Start      float64 `yaml:"start" json:"start"`
	StepSize   float64 `yaml:"step_size" json:"step_size"`
	StepTime   float32 `yaml:"step_time" json:"step_time"`
	Supplement uint32  `yaml:"supplement,omitempty" json:"supplement,omitempty"`
}

// Summary is a serializable overview of a Result. Array attributes are
// reported in full.
type Summary struct {
	Revision   string         `yaml:"revision" json:"revision"`
	Tag        string         `yaml:"tag,omitempty" json:"tag,omitempty"`
	ScanType   string         `yaml:"scan_type,omitempty" json:"scan_type,omitempty"`
	Shape      []int          `yaml:"shape,flow,omitempty" json:"shape,omitempty"`
	Header     []Field        `yaml:"header" json:"header"`
	Ranges     []RangeSummary `yaml:"ranges,omitempty" json:"ranges,omitempty"`
	Attributes map[string]any `yaml:"attributes" json:"attributes"`
}

// Summary returns an overview of r suitable for YAML or JSON encoding.
func (r *Result) Summary() Summary {
	s := Summary{
		Revision:   r.Revision.String(),
		Tag:        r.Tag(),
		Attributes: r.Attrs.Map(),
	}
	if r.Supported() {
		rows, cols := r.Data.Dims()
		s.ScanType = r.ScanType.String()
		s.Shape = []int{rows, cols}
	}
	if r.Header != nil {
		for _, e := range r.Header.Entries() {
			s.Header = append(s.Header, Field{Name: e.Name, Value: e.Value})
		}
	}
	for i := range r.Ranges {
		sr := &r.Ranges[i]
		h := &sr.Header
		rs := RangeSummary{
			Index:      sr.Index,
			Offset:     sr.Offset,
			Drive:      h.SteppingDriveCode,
			Steps:      h.Steps,
			StepSize:   h.StepSize,
			StepTime:   h.StepTime,
			Supplement: h.SupplementHeaderSize,
		}
		if d, ok := h.Drive(); ok {
			rs.ScanMode = d.ScanMode
			rs.Start, _ = h.Position(d.Axis)
		}
		s.Ranges = append(s.Ranges, rs)
	}
	return s
}
