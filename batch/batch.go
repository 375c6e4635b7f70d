// Package batch decodes many RAW files concurrently.
//
// Every file is decoded independently: a failure is recorded on that file's
// Item and never affects the others. Results keep the order of the input
// paths.
package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/robert-malhotra/go-xrdraw/dispatch"
	"github.com/robert-malhotra/go-xrdraw/rawfile"
)

// Item is the outcome for one input path.
type Item struct {
	JobID      uuid.UUID
	Path       string
	Result     *rawfile.Result
	Capability dispatch.Capability // empty when no processor is registered
	Err        error
	Elapsed    time.Duration
}

// Config controls a batch run. Zero fields take defaults.
type Config struct {
	Workers  int // defaults to 1
	Router   *dispatch.Router
	Registry *dispatch.Registry
	Logger   logrus.FieldLogger
	Options  []rawfile.Option
}

func (c Config) withDefaults() Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Router == nil {
		c.Router = dispatch.NewRouter()
	}
	if c.Registry == nil {
		c.Registry = dispatch.NewRegistry()
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}

// Run decodes paths with at most cfg.Workers files in flight. The context is
// checked before each file starts; a file already being decoded runs to
// completion.
func Run(ctx context.Context, paths []string, cfg Config) []Item {
	cfg = cfg.withDefaults()
	items := make([]Item, len(paths))
	opts := append([]rawfile.Option{rawfile.WithLogger(cfg.Logger)}, cfg.Options...)

	p := pool.New().WithMaxGoroutines(cfg.Workers)
	for i, path := range paths {
		items[i] = Item{JobID: uuid.New(), Path: path}
		item := &items[i]
		p.Go(func() {
			decodeOne(ctx, item, cfg, opts)
		})
	}
	p.Wait()
	return items
}

func decodeOne(ctx context.Context, item *Item, cfg Config, opts []rawfile.Option) {
	log := cfg.Logger.WithFields(logrus.Fields{"job": item.JobID.String(), "path": item.Path})
	if err := ctx.Err(); err != nil {
		item.Err = err
		log.WithError(err).Debug("skipped")
		return
	}

	start := time.Now()
	item.Result, item.Err = cfg.Router.Open(item.Path, opts...)
	item.Elapsed = time.Since(start)
	if item.Err != nil {
		log.WithError(item.Err).WithField("kind", rawfile.KindOf(item.Err)).Warn("decode failed")
		return
	}

	if c, err := cfg.Registry.Resolve(item.Result); err == nil {
		item.Capability = c
	} else {
		log.WithError(err).Debug("no processor")
	}
	log.WithFields(logrus.Fields{
		"tag":        item.Result.Tag(),
		"capability": string(item.Capability),
		"elapsed":    item.Elapsed,
	}).Info("decoded")
}

// Stats counts the outcomes of a run.
type Stats struct {
	Total   int
	Decoded int
	Failed  int
	ByTag   map[string]int
}

// Tally summarizes items.
func Tally(items []Item) Stats {
	s := Stats{Total: len(items), ByTag: make(map[string]int)}
	for _, it := range items {
		if it.Err != nil {
			s.Failed++
			continue
		}
		s.Decoded++
		if tag := it.Result.Tag(); tag != "" {
			s.ByTag[tag]++
		}
	}
	return s
}
