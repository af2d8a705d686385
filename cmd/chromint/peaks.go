package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-chrom/chrom/engine"
	"github.com/cwbudde/algo-chrom/chrom/species"
	"github.com/cwbudde/algo-chrom/internal/csvtrace"
	"github.com/cwbudde/algo-chrom/internal/report"
)

func newPeaksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "peaks FILE",
		Short: "List every resolved peak of a trace file.",
		Long: `Peaks runs detection, boundary resolution, baseline construction and
integration on one trace without species assignment. Use it to tune the
smoothing and tolerance flags before writing species windows.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.engineOptions()
			if err != nil {
				return err
			}
			analyzer, err := engine.New(opts...)
			if err != nil {
				return err
			}
			csvOpts, err := a.csvOptions()
			if err != nil {
				return err
			}

			tr, err := csvtrace.ReadFile(args[0], csvOpts)
			if err != nil {
				return err
			}
			det := species.Detector{Name: args[0]}
			res, err := analyzer.Analyze(tr, det)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format := a.v.GetString("output"); format {
			case "json":
				return report.WritePeaksJSON(out, res.Peaks)
			case "table":
			default:
				return fmt.Errorf("unknown output format %q (want table or json)", format)
			}

			if err := report.PeakTable(out, res, a.v.GetInt("precision")); err != nil {
				return err
			}
			_, err = report.Warnings(cmd.ErrOrStderr(), res, det)
			return err
		},
	}
}
