package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-chrom/chrom/engine"
	"github.com/cwbudde/algo-chrom/chrom/species"
	"github.com/cwbudde/algo-chrom/chrom/trace"
	"github.com/cwbudde/algo-chrom/internal/config"
	"github.com/cwbudde/algo-chrom/internal/csvtrace"
	"github.com/cwbudde/algo-chrom/internal/report"
)

func newIntegrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrate FILE...",
		Short: "Quantify the species of one detector in each trace file.",
		Long: `Integrate reads every trace file, resolves and integrates its peaks and
assigns them to the species windows of the selected detector.

Files are processed concurrently. With --average the files are treated as
replicates of one measurement and their mean trace is integrated instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.integrate(cmd, args)
		},
	}

	cmd.Flags().String("calib", "", "Calibration file with detector species windows (YAML, JSON or TOML)")
	cmd.Flags().String("detector", "", "Detector to use (may be omitted if the file defines only one)")
	cmd.Flags().Bool("average", false, "Average the files as replicates before integrating")
	cmd.Flags().Bool("fractions", false, "Report mole fractions of the calibrated species")
	cmd.Flags().StringSlice("normalize", nil, "Species normalized to mole fractions (implies --fractions)")
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}

	return cmd
}

func (a *app) detector() (species.Detector, *config.Calibration, error) {
	path := a.v.GetString("calib")
	if path == "" {
		return species.Detector{}, nil, errors.New("--calib is required")
	}
	cal, err := config.LoadDetectors(path)
	if err != nil {
		return species.Detector{}, nil, err
	}

	name := a.v.GetString("detector")
	if name == "" {
		names := cal.Names()
		if len(names) != 1 {
			return species.Detector{}, nil, fmt.Errorf("--detector is required, choose one of %s", strings.Join(names, ", "))
		}
		name = names[0]
	}

	det, err := cal.Detector(name)
	return det, cal, err
}

func (a *app) integrate(cmd *cobra.Command, files []string) error {
	det, cal, err := a.detector()
	if err != nil {
		return err
	}
	opts, err := a.engineOptions()
	if err != nil {
		return err
	}
	analyzer, err := engine.New(append(opts, cal.Options()...)...)
	if err != nil {
		return err
	}
	csvOpts, err := a.csvOptions()
	if err != nil {
		return err
	}

	var entries []report.Entry
	if a.v.GetBool("average") {
		entries, err = a.integrateReplicates(analyzer, det, files, csvOpts)
		if err != nil {
			return err
		}
	} else {
		entries = a.integrateEach(cmd, analyzer, det, files, csvOpts)
	}

	if err := a.addFractions(entries); err != nil {
		return err
	}
	if err := a.render(cmd, det, entries); err != nil {
		return err
	}

	failed := 0
	for _, e := range entries {
		if e.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d traces failed", failed, len(entries))
	}
	return nil
}

func (a *app) integrateEach(cmd *cobra.Command, analyzer *engine.Analyzer, det species.Detector, files []string, opts csvtrace.Options) []report.Entry {
	entries := make([]report.Entry, len(files))
	var (
		jobs []engine.Job
		pos  []int
	)

	for i, f := range files {
		entries[i].Source = f
		tr, err := csvtrace.ReadFile(f, opts)
		if err != nil {
			entries[i].Error = err.Error()
			continue
		}
		pos = append(pos, i)
		jobs = append(jobs, engine.Job{ID: f, Trace: tr, Detector: det})
	}

	for k, r := range analyzer.AnalyzeAll(cmd.Context(), jobs, a.v.GetInt("workers")) {
		i := pos[k]
		if r.Err != nil {
			entries[i].Error = r.Err.Error()
			continue
		}
		entries[i].Result = r.Result
	}
	return entries
}

func (a *app) integrateReplicates(analyzer *engine.Analyzer, det species.Detector, files []string, opts csvtrace.Options) ([]report.Entry, error) {
	traces := make([]trace.Trace, 0, len(files))
	for _, f := range files {
		tr, err := csvtrace.ReadFile(f, opts)
		if err != nil {
			return nil, err
		}
		traces = append(traces, tr)
	}

	res, err := analyzer.AnalyzeReplicates(traces, det)
	if err != nil {
		return nil, err
	}
	a.log.Debug("averaged replicates", zap.Strings("files", files))

	return []report.Entry{{Source: "mean(" + strings.Join(files, ", ") + ")", Result: res}}, nil
}

func (a *app) addFractions(entries []report.Entry) error {
	names := a.v.GetStringSlice("normalize")
	if !a.v.GetBool("fractions") && len(names) == 0 {
		return nil
	}

	for i := range entries {
		if entries[i].Result == nil {
			continue
		}
		fractions, err := entries[i].Result.MoleFractions(names...)
		if err != nil {
			return fmt.Errorf("%s: %w", entries[i].Source, err)
		}
		entries[i].Fractions = fractions
	}
	return nil
}

func (a *app) render(cmd *cobra.Command, det species.Detector, entries []report.Entry) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	switch format := a.v.GetString("output"); format {
	case "json":
		return report.WriteJSON(out, entries)
	case "table":
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", format)
	}

	precision := a.v.GetInt("precision")
	for _, e := range entries {
		if e.Error != "" {
			fmt.Fprintf(errOut, "error: %s\n", e.Error)
			continue
		}
		fmt.Fprintf(out, "%s (%s)\n", e.Source, e.Result.Detector)
		if err := report.SpeciesTable(out, e.Result, e.Fractions, precision); err != nil {
			return err
		}
		if _, err := report.Warnings(errOut, e.Result, det); err != nil {
			return err
		}
	}
	return nil
}
