package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"softmax-forge/internal/config"
	"softmax-forge/internal/dataset"
	"softmax-forge/internal/harness"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatalf("softmax-forge: %v", err)
	}
}

type flags struct {
	cfgPath   string
	overrides config.Overrides
	reg       float64
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "softmax-forge",
		Short:         "Check and benchmark the naive and vectorized softmax loss",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.cfgPath, "config", "", "Path to YAML config (defaults are used when empty)")
	pf.Int64Var(&f.overrides.Seed, "seed", 0, "PRNG seed")
	pf.IntVar(&f.overrides.NumTrain, "num-train", 0, "Examples per batch")
	pf.IntVar(&f.overrides.Dim, "dim", 0, "Feature dimension, bias included")
	pf.IntVar(&f.overrides.NumClasses, "num-classes", 0, "Number of classes")
	pf.Float64Var(&f.reg, "reg", 0, "Regularization strength")

	check := &cobra.Command{
		Use:   "check",
		Short: "Compare both strategies and check their gradients numerically",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			_, err = harness.Check(cmd.Context(), runConfig(cfg))
			return err
		},
	}
	check.Flags().IntVar(&f.overrides.Trials, "trials", 0, "Number of random trials")
	check.Flags().IntVar(&f.overrides.Workers, "workers", 0, "Trials run concurrently")
	check.Flags().IntVar(&f.overrides.NumChecks, "num-checks", 0, "Gradient entries checked per trial")

	bench := &cobra.Command{
		Use:   "bench",
		Short: "Time both strategies on the same batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			snap, err := harness.Bench(cmd.Context(), runConfig(cfg))
			if err != nil {
				return err
			}
			log.Printf("rounds=%d naive_ms=%.2f vectorized_ms=%.2f speedup=%.1fx",
				snap.Calls, snap.AvgNaiveMS, snap.AvgVectorizedMS, snap.Speedup)
			return nil
		},
	}
	bench.Flags().IntVar(&f.overrides.BenchRepeats, "repeats", 0, "Timed rounds")
	bench.Flags().IntVar(&f.overrides.LogEvery, "log-every", 0, "Log every N rounds")

	root.AddCommand(check, bench)
	return root
}

func (f *flags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.cfgPath != "" {
		var err error
		if cfg, err = config.Load(f.cfgPath); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("reg") {
		f.overrides.Reg = &f.reg
	}
	cfg.ApplyOverrides(f.overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConfig(cfg *config.Config) harness.RunConfig {
	return harness.RunConfig{
		Dataset: dataset.Options{
			NumTrain:    cfg.NumTrain,
			Dim:         cfg.Dim,
			NumClasses:  cfg.NumClasses,
			WeightScale: cfg.WeightScale,
			Bias:        cfg.Bias,
			Seed:        cfg.Seed,
		},
		Reg:          cfg.Reg,
		Trials:       cfg.Trials,
		Workers:      cfg.Workers,
		NumChecks:    cfg.NumChecks,
		Step:         cfg.Step,
		LossTol:      cfg.LossTol,
		GradTol:      cfg.GradTol,
		CheckTol:     cfg.CheckTol,
		BenchRepeats: cfg.BenchRepeats,
		LogEvery:     cfg.LogEvery,
	}
}
