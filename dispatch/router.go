package dispatch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/robert-malhotra/go-xrdraw/rawfile"
)

// Decoder reads and decodes the file at path.
type Decoder func(path string, opts ...rawfile.Option) (*rawfile.Result, error)

// Named decoders that configuration can refer to. "unsupported" marks an
// extension as known without a decoder.
const (
	DecoderRaw         = "rawfile"
	DecoderUnsupported = "unsupported"
)

var namedDecoders = map[string]Decoder{
	DecoderRaw:         rawfile.ReadFile,
	DecoderUnsupported: nil,
}

// Router picks a decoder by file extension. It is safe for concurrent use.
type Router struct {
	mu    sync.RWMutex
	byExt map[string]Decoder
}

// NewRouter returns a router for ".raw" files that knows ".uxd" but cannot
// decode it.
func NewRouter() *Router {
	return &Router{byExt: map[string]Decoder{
		".raw": rawfile.ReadFile,
		".uxd": nil,
	}}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Register binds an extension to d. A nil d marks the extension as known but
// unsupported.
func (r *Router) Register(ext string, d Decoder) error {
	ext = normalizeExt(ext)
	if ext == "" {
		return fmt.Errorf("%w: empty extension", ErrInvalidEntry)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[ext] = d
	return nil
}

// Apply binds extensions to named decoders.
func (r *Router) Apply(overrides map[string]string) error {
	for ext, name := range overrides {
		d, ok := namedDecoders[name]
		if !ok {
			return fmt.Errorf("%w: unknown decoder %q for %s", ErrInvalidEntry, name, ext)
		}
		if err := r.Register(ext, d); err != nil {
			return err
		}
	}
	return nil
}

// Route returns the decoder for path.
func (r *Router) Route(path string) (Decoder, error) {
	ext := normalizeExt(filepath.Ext(path))
	r.mu.RLock()
	d, known := r.byExt[ext]
	r.mu.RUnlock()
	switch {
	case !known:
		return nil, fmt.Errorf("%w %q", ErrUnknownExtension, ext)
	case d == nil:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return d, nil
}

// Open routes path and decodes it.
func (r *Router) Open(path string, opts ...rawfile.Option) (*rawfile.Result, error) {
	d, err := r.Route(path)
	if err != nil {
		return nil, err
	}
	return d(path, opts...)
}

// Extensions returns the known extensions in sorted order.
func (r *Router) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
