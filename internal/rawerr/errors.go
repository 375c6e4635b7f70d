// Package rawerr defines the terminal decode failures shared by the decoder stages.
package rawerr

import (
	"errors"
	"fmt"
	"strings"
)

// Taxonomy sentinels. Every *Error matches exactly one of these with errors.Is.
var (
	ErrUnrecognizedFormat           = errors.New("unrecognized format")
	ErrCorruptHeader                = errors.New("corrupt header")
	ErrUnsupportedScanConfiguration = errors.New("unsupported scan configuration")
	ErrAmbiguousScanGeometry        = errors.New("ambiguous scan geometry")
	ErrInvalidStepTiming            = errors.New("invalid step timing")
	ErrInconsistentRangeGeometry    = errors.New("inconsistent range geometry")
)

var kindNames = map[error]string{
	ErrUnrecognizedFormat:           "UnrecognizedFormat",
	ErrCorruptHeader:                "CorruptHeader",
	ErrUnsupportedScanConfiguration: "UnsupportedScanConfiguration",
	ErrAmbiguousScanGeometry:        "AmbiguousScanGeometry",
	ErrInvalidStepTiming:            "InvalidStepTiming",
	ErrInconsistentRangeGeometry:    "InconsistentRangeGeometry",
}

// NoRange marks an error that is not tied to a particular range.
const NoRange = -1

// Error is a decode failure with enough context for an operator to tell a
// malformed file from a valid but unsupported one.
type Error struct {
	Kind   error  // one of the taxonomy sentinels
	Range  int    // range index, or NoRange
	Code   uint32 // stepping-drive code when relevant
	Offset int64  // byte offset when relevant, -1 otherwise
	Msg    string
	Err    error // underlying cause, if any
}

// New creates an error of the given kind not tied to a range or offset.
func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Range: NoRange, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// AtRange creates an error of the given kind for range index i.
func AtRange(kind error, i int, format string, args ...any) *Error {
	return &Error{Kind: kind, Range: i, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// WithCode records the stepping-drive code involved.
func (e *Error) WithCode(code uint32) *Error {
	e.Code = code
	return e
}

// WithOffset records the byte offset involved.
func (e *Error) WithOffset(off int64) *Error {
	e.Offset = off
	return e
}

// Wrap records the underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Range != NoRange {
		fmt.Fprintf(&b, " (range %d)", e.Range)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the taxonomy kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns the taxonomy name, e.g. "CorruptHeader".
func (e *Error) KindName() string {
	if n, ok := kindNames[e.Kind]; ok {
		return n
	}
	return "Unknown"
}

// KindOf returns the taxonomy name of err, or "" if err is not a decode error.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.KindName()
	}
	return ""
}
