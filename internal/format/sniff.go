package format

import (
	"bytes"
	"io"

	"github.com/robert-malhotra/go-xrdraw/internal/rawerr"
)

// Revision is an on-disk RAW format revision.
type Revision int

const (
	V1 Revision = iota + 1
	V2
	V3
)

// String returns the FORMAT_VERSION tag for the revision.
func (r Revision) String() string {
	switch r {
	case V1:
		return "v1"
	case V2:
		return "v2"
	case V3:
		return "v3"
	default:
		return "unknown"
	}
}

// Structured reports whether the revision carries a global header and ranges.
func (r Revision) Structured() bool {
	return r == V3
}

var (
	magicV1   = []byte("RAW ")
	magicV2   = []byte("RAW2")
	magicV3   = []byte("RAW1")
	suffixV3  = []byte(".01")
	prefixLen = len(magicV3) + len(suffixV3)
)

// PrefixLen is the number of leading bytes Sniff may inspect.
func PrefixLen() int {
	return prefixLen
}

// Sniff inspects the magic prefix of r and returns the file revision.
func Sniff(r io.ReaderAt) (Revision, error) {
	head := make([]byte, len(magicV3))
	if n, _ := r.ReadAt(head, 0); n < len(head) {
		return 0, rawerr.New(rawerr.ErrUnrecognizedFormat, "file shorter than %d-byte signature", len(head)).WithOffset(0)
	}

	switch {
	case bytes.Equal(head, magicV1):
		return V1, nil
	case bytes.Equal(head, magicV2):
		return V2, nil
	case bytes.Equal(head, magicV3):
		tail := make([]byte, len(suffixV3))
		if n, _ := r.ReadAt(tail, int64(len(magicV3))); n == len(tail) && bytes.Equal(tail, suffixV3) {
			return V3, nil
		}
		return 0, rawerr.New(rawerr.ErrUnrecognizedFormat, "RAW1 signature without %q suffix", suffixV3).WithOffset(int64(len(magicV3)))
	}
	return 0, rawerr.New(rawerr.ErrUnrecognizedFormat, "unknown signature %q", head).WithOffset(0)
}

// SniffBytes is Sniff over an in-memory buffer.
func SniffBytes(buf []byte) (Revision, error) {
	return Sniff(bytes.NewReader(buf))
}
