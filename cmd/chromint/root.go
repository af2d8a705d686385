package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cwbudde/algo-chrom/chrom/engine"
	"github.com/cwbudde/algo-chrom/internal/config"
	"github.com/cwbudde/algo-chrom/internal/csvtrace"
	"github.com/cwbudde/algo-chrom/internal/report"
)

// Set by the linker at release time.
var (
	version = "dev"
	commit  = "none"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "chromint",
		Short:         "Integrate chromatographic traces into per-species quantities.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to settings file (default ./.chromint.yaml)")
	flags.BoolP("verbose", "v", false, "Log pipeline details to stderr")
	flags.Int("window", 7, "Savitzky-Golay window length in samples (<=1 disables smoothing)")
	flags.Int("order", 3, "Savitzky-Golay polynomial order")
	flags.Float64("prominence-ratio", engine.DefaultProminenceRatio, "Apex prominence threshold relative to the signal range")
	flags.Float64("prominence", 0, "Absolute apex prominence threshold (overrides --prominence-ratio)")
	flags.Int("min-distance", 1, "Minimum apex spacing in samples")
	flags.Float64("atol", 0, "Absolute tolerance of the boundary walk (0 = unbounded)")
	flags.Float64("rtol", 1e-3, "Relative tolerance of the boundary walk")
	flags.String("overlap", "shared", "Overlapping species windows: shared, first or narrowest")
	flags.Int("workers", 0, "Number of concurrent workers (0 = one per file)")
	flags.String("output", "table", "Output format: table or json")
	flags.Int("precision", report.DefaultPrecision, "Decimal precision of table columns")
	flags.String("comma", ",", "CSV field delimiter")
	flags.String("unit", "", "Signal unit (overrides the CSV header)")
	flags.String("time-unit", "", "Time unit (overrides the CSV header)")
	flags.Float64("time-sigma", 0, "Resolution of the time axis")
	flags.Float64("signal-sigma", 0, "Resolution of the signal")
	if err := a.v.BindPFlags(flags); err != nil {
		panic(err)
	}
	config.SetDefaults(a.v)

	root.AddCommand(newIntegrateCmd(a), newPeaksCmd(a), newVersionCmd())
	return root
}

// setup merges config file, environment and flags and builds the logger.
func (a *app) setup() error {
	v := a.v
	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".chromint")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("CHROMINT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	log, err := newLogger(v.GetBool("verbose"))
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg.Build()
}

// engineOptions resolves the analysis settings into engine options.
func (a *app) engineOptions() ([]engine.Option, error) {
	s, err := config.LoadSettings(a.v)
	if err != nil {
		return nil, err
	}

	opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	return append(opts, engine.WithLogger(a.log)), nil
}

func (a *app) csvOptions() (csvtrace.Options, error) {
	comma := []rune(a.v.GetString("comma"))
	if len(comma) != 1 {
		return csvtrace.Options{}, fmt.Errorf("--comma must be a single character, got %q", a.v.GetString("comma"))
	}
	return csvtrace.Options{
		Comma:       comma[0],
		Unit:        a.v.GetString("unit"),
		TimeUnit:    a.v.GetString("time-unit"),
		TimeSigma:   a.v.GetFloat64("time-sigma"),
		SignalSigma: a.v.GetFloat64("signal-sigma"),
	}, nil
}
