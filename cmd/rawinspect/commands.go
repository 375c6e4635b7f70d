package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-xrdraw/batch"
	"github.com/robert-malhotra/go-xrdraw/rawfile"
)

func newSniffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sniff FILE...",
		Short: "Print the format revision of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				buf, err := os.ReadFile(path)
				if err == nil {
					var rev rawfile.Revision
					if rev, err = rawfile.Sniff(buf); err == nil {
						fmt.Fprintf(a.out, "%s: %s\n", path, rev)
						continue
					}
				}
				failed++
				fmt.Fprintf(a.out, "%s: ERROR %v\n", path, err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files not recognized", failed, len(args))
			}
			return nil
		},
	}
}

// report is the serialized outcome of one decoded file.
type report struct {
	Job        string           `yaml:"job" json:"job"`
	Path       string           `yaml:"path" json:"path"`
	Capability string           `yaml:"capability,omitempty" json:"capability,omitempty"`
	Error      string           `yaml:"error,omitempty" json:"error,omitempty"`
	Kind       string           `yaml:"error_kind,omitempty" json:"error_kind,omitempty"`
	Summary    *rawfile.Summary `yaml:"summary,omitempty" json:"summary,omitempty"`
}

func newReport(it batch.Item) report {
	r := report{Job: it.JobID.String(), Path: it.Path, Capability: string(it.Capability)}
	if it.Err != nil {
		r.Error = it.Err.Error()
		r.Kind = rawfile.KindOf(it.Err)
		return r
	}
	s := it.Result.Summary()
	r.Summary = &s
	return r
}

func newDecodeCmd(a *app) *cobra.Command {
	var brief bool
	cmd := &cobra.Command{
		Use:   "decode FILE...",
		Short: "Decode files and report their scan type and attributes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			router, registry, err := a.cfg.Dispatch()
			if err != nil {
				return err
			}
			items := batch.Run(cmd.Context(), args, batch.Config{
				Workers:  a.cfg.Workers,
				Router:   router,
				Registry: registry,
				Logger:   a.log,
				Options:  a.cfg.DecodeOptions(a.log),
			})

			reports := make([]report, len(items))
			for i, it := range items {
				reports[i] = newReport(it)
				if brief && reports[i].Summary != nil {
					reports[i].Summary.Ranges = nil
					reports[i].Summary.Attributes = scalarAttributes(reports[i].Summary.Attributes)
				}
			}
			if err := writeReports(a.out, a.cfg.Output, reports); err != nil {
				return err
			}

			if s := batch.Tally(items); s.Failed > 0 {
				return fmt.Errorf("%d of %d files failed to decode", s.Failed, s.Total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&brief, "brief", false, "Omit ranges and array attributes")
	return cmd
}

// scalarAttributes replaces array values with their length.
func scalarAttributes(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case []float64:
			out[k] = fmt.Sprintf("[%d values]", len(t))
		case []int:
			if len(t) <= 3 {
				out[k] = t
			} else {
				out[k] = fmt.Sprintf("[%d values]", len(t))
			}
		default:
			out[k] = v
		}
	}
	return out
}

func writeReports(w io.Writer, format string, reports []report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "text":
		for _, r := range reports {
			writeText(w, r)
		}
		return nil
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return enc.Close()
	}
}

func writeText(w io.Writer, r report) {
	fmt.Fprintf(w, "=== Analyzing %s ===\n", r.Path)
	if r.Error != "" {
		fmt.Fprintf(w, "ERROR (%s): %s\n\n", r.Kind, r.Error)
		return
	}
	s := r.Summary
	fmt.Fprintf(w, "Revision: %s\n", s.Revision)
	if s.Tag == "" {
		fmt.Fprintf(w, "  [format acknowledged, content not decoded]\n\n")
		return
	}
	fmt.Fprintf(w, "Scan type: %s\n", s.ScanType)
	if r.Capability != "" {
		fmt.Fprintf(w, "Capability: %s\n", r.Capability)
	}
	fmt.Fprintf(w, "Shape: %d x %d\n", s.Shape[0], s.Shape[1])
	for _, rs := range s.Ranges {
		fmt.Fprintf(w, "  Range %d @%d: %s, %d steps from %g by %g (%g s/step)\n",
			rs.Index, rs.Offset, rs.ScanMode, rs.Steps, rs.Start, rs.StepSize, rs.StepTime)
	}
	keys := make([]string, 0, len(s.Attributes))
	for k := range s.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := scalarAttributes(s.Attributes)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %v\n", k, attrs[k])
	}
	fmt.Fprintln(w)
}

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List file extensions and scan-type processors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			router, registry, err := a.cfg.Dispatch()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Extensions:")
			for _, ext := range router.Extensions() {
				status := "supported"
				if _, err := router.Route("file" + ext); err != nil {
					status = "unsupported"
				}
				fmt.Fprintf(a.out, "  %-8s %s\n", ext, status)
			}
			fmt.Fprintln(a.out, "Scan types:")
			for _, tag := range registry.Tags() {
				c, _ := registry.Lookup(tag)
				fmt.Fprintf(a.out, "  %-18s %s\n", tag, c)
			}
			return nil
		},
	}
}

func newSynthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "synth KIND FILE",
		Short: "Write a synthetic RAW file (" + strings.Join(synthKinds(), ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := synthesize(args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], buf, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", args[1], err)
			}
			a.log.WithField("bytes", len(buf)).Infof("wrote %s file %s", args[0], args[1])
			return nil
		},
	}
}
