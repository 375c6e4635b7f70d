// Package dispatch selects downstream processing for decoded files.
//
// A Router picks the decoder for a path by its extension and a Registry maps
// the scan-type tag of a decoded result to the capability that processes it.
// Both tables start from built-in defaults and accept overrides from
// configuration.
package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/robert-malhotra/go-xrdraw/rawfile"
)

// Capability names a downstream processing module.
type Capability string

const (
	SingleScanProfile     Capability = "single-scan-profile"
	RockingCurveFit       Capability = "rocking-curve-fit"
	PoleFigureIntegration Capability = "pole-figure-integration"
	RasterMap             Capability = "raster-map"
	RSMGridding           Capability = "rsm-gridding"
)

var (
	ErrNoProcessor       = errors.New("no processor for scan type")
	ErrUnknownExtension  = errors.New("unknown file extension")
	ErrUnsupportedFormat = errors.New("file type recognized but not supported")
	ErrInvalidEntry      = errors.New("invalid dispatch entry")
)

var defaultCapabilities = map[string]Capability{
	rawfile.SingleScan.String():        SingleScanProfile,
	rawfile.RockingCurve.String():      RockingCurveFit,
	rawfile.TwoAxisRaster.String():     RasterMap,
	rawfile.PoleFigure.String():        PoleFigureIntegration,
	rawfile.DetectorRasterMap.String(): RSMGridding,
}

// Registry maps scan-type tags to capabilities. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byTag map[string]Capability
}

// NewRegistry returns a registry holding the default tag table.
func NewRegistry() *Registry {
	r := &Registry{byTag: make(map[string]Capability, len(defaultCapabilities))}
	for tag, c := range defaultCapabilities {
		r.byTag[tag] = c
	}
	return r
}

// Register binds tag to c, replacing any previous binding.
func (r *Registry) Register(tag string, c Capability) error {
	if tag == "" || c == "" {
		return fmt.Errorf("%w: tag %q capability %q", ErrInvalidEntry, tag, c)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTag[tag] = c
	return nil
}

// Apply registers every tag/capability pair of overrides.
func (r *Registry) Apply(overrides map[string]string) error {
	for tag, c := range overrides {
		if err := r.Register(tag, Capability(c)); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the capability registered for tag.
func (r *Registry) Lookup(tag string) (Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byTag[tag]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrNoProcessor, tag)
	}
	return c, nil
}

// Resolve returns the capability for a decoded result. Acknowledged legacy
// files have no tag and resolve to ErrNoProcessor.
func (r *Registry) Resolve(res *rawfile.Result) (Capability, error) {
	if !res.Supported() {
		return "", fmt.Errorf("%w: %s file has no dataset", ErrNoProcessor, res.Revision)
	}
	return r.Lookup(res.Tag())
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.byTag))
	for t := range r.byTag {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
