package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-xrdraw/dispatch"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xrdraw.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, runtime.NumCPU(), c.Workers)
	assert.Equal(t, "filter", c.RepairPolicy)
	assert.Equal(t, 0.54505, c.ReferenceLattice)
	assert.Equal(t, "yaml", c.Output)
	assert.Empty(t, c.Extensions)
	assert.Empty(t, c.Processors)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
log_format: json
workers: 3
repair_policy: strict
reference_lattice: 0.5431
output: json
extensions:
  brml: unsupported
  dat: rawfile
processors:
  PoleFigure: texture-analysis
`)
	c, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, "strict", c.RepairPolicy)
	assert.Equal(t, 0.5431, c.ReferenceLattice)
	assert.Equal(t, map[string]string{"brml": "unsupported", "dat": "rawfile"}, c.Extensions)
	assert.Equal(t, map[string]string{"PoleFigure": "texture-analysis"}, c.Processors)

	router, registry, err := c.Dispatch()
	require.NoError(t, err)
	assert.Contains(t, router.Extensions(), ".dat")
	capability, err := registry.Lookup("PoleFigure")
	require.NoError(t, err)
	assert.Equal(t, dispatch.Capability("texture-analysis"), capability)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "workers: 2\noutput: json\n")
	t.Setenv("XRDRAW_WORKERS", "7")
	t.Setenv("XRDRAW_REPAIR_POLICY", "strict")

	c, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Workers)
	assert.Equal(t, "strict", c.RepairPolicy)
	assert.Equal(t, "json", c.Output)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			LogLevel:         "info",
			LogFormat:        "text",
			Workers:          1,
			RepairPolicy:     "filter",
			ReferenceLattice: 0.54505,
			Output:           "yaml",
		}
	}
	base := valid()
	require.NoError(t, base.Validate())

	for _, tc := range []struct {
		name string
		edit func(c *Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
		{"workers", func(c *Config) { c.Workers = 0 }},
		{"repair policy", func(c *Config) { c.RepairPolicy = "lenient" }},
		{"lattice", func(c *Config) { c.ReferenceLattice = 0 }},
		{"output", func(c *Config) { c.Output = "csv" }},
		{"extension decoder", func(c *Config) { c.Extensions = map[string]string{"xy": "magic"} }},
		{"empty processor", func(c *Config) { c.Processors = map[string]string{"SingleScan": ""} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.edit(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestSetupLogging(t *testing.T) {
	l := logrus.New()
	var buf bytes.Buffer
	l.SetOutput(&buf)

	c := Config{LogLevel: "warn", LogFormat: "json"}
	require.NoError(t, c.SetupLogging(l))
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.WithField("range", 2).Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"range":2`)

	c = Config{LogLevel: "debug", LogFormat: "text"}
	require.NoError(t, c.SetupLogging(l))
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)

	c.LogLevel = "nope"
	assert.Error(t, c.SetupLogging(l))
}

func TestDecodeOptions(t *testing.T) {
	c := Config{RepairPolicy: "strict", ReferenceLattice: 1.0901}
	assert.Len(t, c.DecodeOptions(logrus.New()), 3)
}

func TestCanonicalTags(t *testing.T) {
	got := canonicalTags(map[string]string{
		"polefigure":        "a",
		"detectorrastermap": "b",
		"customtag":         "c",
	})
	assert.Equal(t, map[string]string{
		"PoleFigure":        "a",
		"DetectorRasterMap": "b",
		"customtag":         "c",
	}, got)
	assert.Nil(t, canonicalTags(nil))
}
