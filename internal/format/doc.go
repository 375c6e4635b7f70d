// Package format identifies the revision of a diffractometer RAW file.
//
// # File Signatures
//
// Three revisions share the "RAW" prefix:
//
//   - "RAW " : first-generation files (V1)
//   - "RAW2" : second-generation files (V2)
//   - "RAW1.01" : the structured third revision (V3)
//
// V3 is told apart by reading four bytes and, when they equal "RAW1", three
// more. V1 and V2 are acknowledged but carry no decodable ranges.
//
// # Usage
//
//	rev, err := format.SniffBytes(buf)
//	if errors.Is(err, rawerr.ErrUnrecognizedFormat) {
//	    // Not a RAW file
//	}
package format
