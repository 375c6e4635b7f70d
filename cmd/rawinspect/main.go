// Command rawinspect sniffs, decodes and classifies diffractometer RAW files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robert-malhotra/go-xrdraw/internal/config"
)

// app carries the state shared by every command.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	log        *logrus.Logger
	out        io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), log: logrus.New(), out: out}
	a.log.SetOutput(errOut)

	root := &cobra.Command{
		Use:   "rawinspect",
		Short: "Inspect diffractometer RAW files",
		Long: `rawinspect identifies the revision of diffractometer RAW files, decodes
their headers and intensity ranges, infers the scan type and reports the
downstream capability that would process each file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Configuration file path")
	flags.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.Int("workers", 0, "Files decoded concurrently (default: number of CPUs)")
	flags.String("repair-policy", "filter", "Inconsistent detector ranges: filter or strict")
	flags.Float64("reference-lattice", 0.54505, "Cubic lattice constant in nm for the HKL guess")
	flags.StringP("output", "o", "yaml", "Output format (yaml, json, text)")

	for key, flag := range map[string]string{
		config.KeyLogLevel:         "log-level",
		config.KeyLogFormat:        "log-format",
		config.KeyRepairPolicy:     "repair-policy",
		config.KeyReferenceLattice: "reference-lattice",
		config.KeyOutput:           "output",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newSniffCmd(a),
		newDecodeCmd(a),
		newTypesCmd(a),
		newSynthCmd(a),
	)
	return root
}

// load resolves configuration and configures logging.
func (a *app) load(cmd *cobra.Command) error {
	// An unset --workers must not shadow the default or the config file.
	if cmd.Flags().Changed("workers") {
		n, err := cmd.Flags().GetInt("workers")
		if err != nil {
			return err
		}
		a.v.Set(config.KeyWorkers, n)
	}
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	if err := cfg.SetupLogging(a.log); err != nil {
		return err
	}
	a.cfg = cfg
	a.log.WithFields(logrus.Fields{
		"workers": cfg.Workers,
		"policy":  cfg.RepairPolicy,
		"output":  cfg.Output,
	}).Debug("configuration loaded")
	return nil
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
