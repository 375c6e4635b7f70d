// Package header decodes the fixed-layout headers and intensity payloads of
// diffractometer RAW files.
//
// # V3 Layout
//
//	Offset  Size  Description
//	0       8     Signature ("RAW1.01" + NUL)
//	8       704   Global header (see globalFields)
//	712     304   Range 0 header (see rangeFields)
//	1016    S     Range 0 supplemental header (S = SUPPLEMENT_HEADER_SIZE)
//	1016+S  4*N   Range 0 intensities (N = STEPS little-endian float32)
//	...           Range 1 starts at the cursor after the last sample
//
// Range starts are never taken from an offset table: the cursor position
// after each payload is authoritative.
//
// # Revisions
//
// Every revision has one entry in the layout table returned by [LayoutFor].
// V1 and V2 use the reduced sentinel variant: decoding records only the
// FORMAT_VERSION tag and yields no ranges.
//
// # Errors
//
//   - [rawerr.ErrCorruptHeader]: truncation, a global header that does not end
//     at byte 712, a range header length other than 304, zero ranges or steps.
//   - [rawerr.ErrUnsupportedScanConfiguration]: varying parameters, datum length
//     other than 4, auxiliary-axis drives (9, 10, 11) or unknown drive codes.
package header
