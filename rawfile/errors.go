package rawfile

import "github.com/robert-malhotra/go-xrdraw/internal/rawerr"

// Decode failures. Every error returned by Decode matches exactly one of
// these with errors.Is and unwraps to an *Error carrying the range index,
// stepping-drive code and byte offset where they apply.
var (
	ErrUnrecognizedFormat           = rawerr.ErrUnrecognizedFormat
	ErrCorruptHeader                = rawerr.ErrCorruptHeader
	ErrUnsupportedScanConfiguration = rawerr.ErrUnsupportedScanConfiguration
	ErrAmbiguousScanGeometry        = rawerr.ErrAmbiguousScanGeometry
	ErrInvalidStepTiming            = rawerr.ErrInvalidStepTiming
	ErrInconsistentRangeGeometry    = rawerr.ErrInconsistentRangeGeometry
)

// Error is the concrete decode failure.
type Error = rawerr.Error

// NoRange is the Error.Range of failures not tied to a range.
const NoRange = rawerr.NoRange

// KindOf returns the taxonomy name of err ("CorruptHeader", ...), or "" when
// err is not a decode failure.
func KindOf(err error) string {
	return rawerr.KindOf(err)
}
