// Package harness runs the naive and vectorized softmax losses side by side
// on synthetic problems, checking that they agree, that their gradients match
// finite differences, and how long each takes.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"golang.org/x/sync/errgroup"

	"softmax-forge/internal/dataset"
	"softmax-forge/internal/gradcheck"
	"softmax-forge/internal/metrics"
	"softmax-forge/internal/model"
	"softmax-forge/internal/softmax"
)

// ErrToleranceExceeded reports that a trial failed a comparison.
var ErrToleranceExceeded = errors.New("harness: tolerance exceeded")

// RunConfig captures the knobs required by check and bench runs.
type RunConfig struct {
	Dataset      dataset.Options
	Reg          float64
	Trials       int
	Workers      int
	NumChecks    int
	Step         float64
	LossTol      float64
	GradTol      float64
	CheckTol     float64
	BenchRepeats int
	LogEvery     int
}

// TrialResult holds the outcome of one check trial.
type TrialResult struct {
	Trial            int
	Seed             int64
	NaiveLoss        float64
	VectorizedLoss   float64
	ExpectedLoss     float64 // log(C), the loss of uniform predictions
	Accuracy         float64
	LossRelError     float64
	GradMaxAbsDiff   float64
	NaiveChecks      []gradcheck.Check
	VectorizedChecks []gradcheck.Check
	NaiveTime        time.Duration
	VectorizedTime   time.Duration
}

// Failures lists every tolerance the trial exceeded.
func (r TrialResult) Failures(cfg RunConfig) []string {
	var out []string
	if r.LossRelError > cfg.LossTol {
		out = append(out, fmt.Sprintf("loss rel error %.3g > %.3g", r.LossRelError, cfg.LossTol))
	}
	if r.GradMaxAbsDiff > cfg.GradTol {
		out = append(out, fmt.Sprintf("gradient abs diff %.3g > %.3g", r.GradMaxAbsDiff, cfg.GradTol))
	}
	for _, set := range []struct {
		name   string
		checks []gradcheck.Check
	}{
		{softmax.Naive.String(), r.NaiveChecks},
		{softmax.Vectorized.String(), r.VectorizedChecks},
	} {
		for _, c := range set.checks {
			if !c.Pass(cfg.CheckTol) {
				out = append(out, fmt.Sprintf("%s gradient (%d,%d) numerical=%g analytic=%g rel error %.3g",
					set.name, c.Row, c.Col, c.Numerical, c.Analytic, c.RelError))
			}
		}
	}
	return out
}

// Report collects the results of a check run.
type Report struct {
	Trials  []TrialResult
	Summary metrics.Snapshot
}

// Check runs cfg.Trials independent trials, at most cfg.Workers at a time.
// Trial i uses seed cfg.Dataset.Seed+i. The report is returned even when a
// trial exceeds a tolerance; the error then wraps ErrToleranceExceeded.
func Check(ctx context.Context, cfg RunConfig) (Report, error) {
	if cfg.Trials <= 0 {
		return Report{}, errors.New("harness: trials must be > 0")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Dataset.Seed == 0 {
		cfg.Dataset.Seed = 42
	}

	results := make([]TrialResult, cfg.Trials)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Trials; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := runTrial(i, cfg)
			if err != nil {
				return fmt.Errorf("harness: trial %d: %w", i, err)
			}
			results[i] = res
			log.Printf("trial=%d seed=%d loss_naive=%.6f loss_vectorized=%.6f expected=%.6f accuracy=%.3f loss_rel_err=%.3g grad_abs_diff=%.3g check_rel_err=%.3g/%.3g",
				res.Trial,
				res.Seed,
				res.NaiveLoss,
				res.VectorizedLoss,
				res.ExpectedLoss,
				res.Accuracy,
				res.LossRelError,
				res.GradMaxAbsDiff,
				gradcheck.MaxRelError(res.NaiveChecks),
				gradcheck.MaxRelError(res.VectorizedChecks),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var window metrics.Window
	failed := 0
	for _, res := range results {
		window.Record(cfg.Dataset.NumTrain, res.NaiveTime, res.VectorizedTime, res.VectorizedLoss)
		for _, f := range res.Failures(cfg) {
			log.Printf("trial=%d FAIL %s", res.Trial, f)
			failed++
		}
	}
	report := Report{Trials: results, Summary: window.Snapshot()}
	log.Printf("trials=%d naive_ms=%.2f vectorized_ms=%.2f speedup=%.1fx failures=%d",
		report.Summary.Calls,
		report.Summary.AvgNaiveMS,
		report.Summary.AvgVectorizedMS,
		report.Summary.Speedup,
		failed,
	)
	if failed > 0 {
		return report, fmt.Errorf("%w: %d failed comparisons", ErrToleranceExceeded, failed)
	}
	return report, nil
}

func runTrial(trial int, cfg RunConfig) (TrialResult, error) {
	opts := cfg.Dataset
	opts.Seed += int64(trial)
	sample, err := dataset.Generate(opts)
	if err != nil {
		return TrialResult{}, err
	}
	batch := model.Batch{Inputs: sample.Features, Labels: sample.Labels}
	naive := model.NewLinear(sample.Weights, softmax.Naive)
	vectorized := model.NewLinear(sample.Weights, softmax.Vectorized)

	start := time.Now()
	lossN, dWN, err := naive.Loss(batch, cfg.Reg)
	if err != nil {
		return TrialResult{}, err
	}
	naiveTime := time.Since(start)

	start = time.Now()
	lossV, dWV, err := vectorized.Loss(batch, cfg.Reg)
	if err != nil {
		return TrialResult{}, err
	}
	vectorizedTime := time.Since(start)

	accuracy, err := model.Accuracy(vectorized, batch)
	if err != nil {
		return TrialResult{}, err
	}

	var diff mat.Dense
	diff.Sub(dWN, dWV)

	res := TrialResult{
		Trial:          trial,
		Seed:           opts.Seed,
		NaiveLoss:      lossN,
		VectorizedLoss: lossV,
		ExpectedLoss:   math.Log(float64(opts.NumClasses)),
		Accuracy:       accuracy,
		LossRelError:   gradcheck.RelError(lossN, lossV),
		GradMaxAbsDiff: floats.Norm(diff.RawMatrix().Data, math.Inf(1)),
		NaiveTime:      naiveTime,
		VectorizedTime: vectorizedTime,
	}

	if cfg.NumChecks > 0 {
		res.NaiveChecks, err = sparseCheck(softmax.Naive, sample.Weights, dWN, batch, cfg, opts.Seed)
		if err != nil {
			return TrialResult{}, err
		}
		res.VectorizedChecks, err = sparseCheck(softmax.Vectorized, sample.Weights, dWV, batch, cfg, opts.Seed)
		if err != nil {
			return TrialResult{}, err
		}
	}
	return res, nil
}

// sparseCheck uses the same seed for both strategies so they are checked on
// the same entries.
func sparseCheck(s softmax.Strategy, weights, analytic *mat.Dense, batch model.Batch, cfg RunConfig, seed int64) ([]gradcheck.Check, error) {
	f := func(w *mat.Dense) (float64, error) {
		loss, _, err := model.NewLinear(w, s).Loss(batch, cfg.Reg)
		return loss, err
	}
	return gradcheck.Sparse(f, weights, analytic, cfg.NumChecks, cfg.Step, rand.New(rand.NewSource(seed)))
}
