// Package config loads rawinspect settings from flags, a config file and
// XRDRAW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/robert-malhotra/go-xrdraw/dispatch"
	"github.com/robert-malhotra/go-xrdraw/internal/assemble"
	"github.com/robert-malhotra/go-xrdraw/internal/classify"
	"github.com/robert-malhotra/go-xrdraw/rawfile"
)

// EnvPrefix is prepended to environment variable names, e.g. XRDRAW_WORKERS.
const EnvPrefix = "XRDRAW"

// Setting keys.
const (
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"
	KeyWorkers          = "workers"
	KeyRepairPolicy     = "repair_policy"
	KeyReferenceLattice = "reference_lattice"
	KeyOutput           = "output"
	KeyExtensions       = "extensions"
	KeyProcessors       = "processors"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds the resolved settings.
type Config struct {
	LogLevel         string            `mapstructure:"log_level"`
	LogFormat        string            `mapstructure:"log_format"`
	Workers          int               `mapstructure:"workers"`
	RepairPolicy     string            `mapstructure:"repair_policy"`
	ReferenceLattice float64           `mapstructure:"reference_lattice"`
	Output           string            `mapstructure:"output"`
	Extensions       map[string]string `mapstructure:"extensions"`
	Processors       map[string]string `mapstructure:"processors"`
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeyRepairPolicy, assemble.RepairFilter.String())
	v.SetDefault(KeyReferenceLattice, assemble.DefaultReferenceLattice)
	v.SetDefault(KeyOutput, "yaml")
}

// Load reads settings into a validated Config. file may be empty; when set it
// must exist. Environment variables override the file and flags bound to v
// override both.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	c.Processors = canonicalTags(c.Processors)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// canonicalTags restores the case of scan-type tags, which viper lowercases.
func canonicalTags(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for tag, c := range in {
		for _, k := range classify.Kinds() {
			if strings.EqualFold(tag, k.String()) {
				tag = k.String()
				break
			}
		}
		out[tag] = c
	}
	return out
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q, want text or json", ErrInvalid, c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers %d, want at least 1", ErrInvalid, c.Workers)
	}
	if _, ok := assemble.ParseRepairPolicy(c.RepairPolicy); !ok {
		return fmt.Errorf("%w: repair_policy %q, want filter or strict", ErrInvalid, c.RepairPolicy)
	}
	if !(c.ReferenceLattice > 0) {
		return fmt.Errorf("%w: reference_lattice %g, want a positive length in nm", ErrInvalid, c.ReferenceLattice)
	}
	switch c.Output {
	case "yaml", "json", "text":
	default:
		return fmt.Errorf("%w: output %q, want yaml, json or text", ErrInvalid, c.Output)
	}
	for ext, name := range c.Extensions {
		if name != dispatch.DecoderRaw && name != dispatch.DecoderUnsupported {
			return fmt.Errorf("%w: extensions.%s: unknown decoder %q", ErrInvalid, ext, name)
		}
	}
	for tag, capability := range c.Processors {
		if capability == "" {
			return fmt.Errorf("%w: processors.%s is empty", ErrInvalid, tag)
		}
	}
	return nil
}

// SetupLogging applies the level and formatter to l.
func (c *Config) SetupLogging(l *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	l.SetLevel(level)
	if c.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// DecodeOptions returns the rawfile options these settings select.
func (c *Config) DecodeOptions(log logrus.FieldLogger) []rawfile.Option {
	policy, _ := assemble.ParseRepairPolicy(c.RepairPolicy)
	return []rawfile.Option{
		rawfile.WithLogger(log),
		rawfile.WithRepairPolicy(policy),
		rawfile.WithReferenceLattice(c.ReferenceLattice),
	}
}

// Dispatch builds the router and registry with configured overrides applied.
func (c *Config) Dispatch() (*dispatch.Router, *dispatch.Registry, error) {
	router := dispatch.NewRouter()
	if err := router.Apply(c.Extensions); err != nil {
		return nil, nil, err
	}
	registry := dispatch.NewRegistry()
	if err := registry.Apply(c.Processors); err != nil {
		return nil, nil, err
	}
	return router, registry, nil
}
