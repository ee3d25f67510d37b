package harness

import (
	"context"
	"errors"
	"log"
	"time"

	"softmax-forge/internal/dataset"
	"softmax-forge/internal/metrics"
	"softmax-forge/internal/model"
	"softmax-forge/internal/softmax"
)

// Bench times both strategies on one synthetic batch for cfg.BenchRepeats
// rounds, logging a snapshot every cfg.LogEvery rounds. It returns the
// snapshot covering all rounds.
func Bench(ctx context.Context, cfg RunConfig) (metrics.Snapshot, error) {
	if cfg.BenchRepeats <= 0 {
		return metrics.Snapshot{}, errors.New("harness: bench repeats must be > 0")
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 5
	}

	sample, err := dataset.Generate(cfg.Dataset)
	if err != nil {
		return metrics.Snapshot{}, err
	}
	batch := model.Batch{Inputs: sample.Features, Labels: sample.Labels}
	naive := model.NewLinear(sample.Weights, softmax.Naive)
	vectorized := model.NewLinear(sample.Weights, softmax.Vectorized)

	var window, total metrics.Window
	for round := 1; round <= cfg.BenchRepeats; round++ {
		if err := ctx.Err(); err != nil {
			return metrics.Snapshot{}, err
		}

		start := time.Now()
		if _, _, err := naive.Loss(batch, cfg.Reg); err != nil {
			return metrics.Snapshot{}, err
		}
		naiveTime := time.Since(start)

		start = time.Now()
		loss, _, err := vectorized.Loss(batch, cfg.Reg)
		if err != nil {
			return metrics.Snapshot{}, err
		}
		vectorizedTime := time.Since(start)

		window.Record(cfg.Dataset.NumTrain, naiveTime, vectorizedTime, loss)
		total.Record(cfg.Dataset.NumTrain, naiveTime, vectorizedTime, loss)

		if round%cfg.LogEvery == 0 {
			snap := window.Snapshot()
			log.Printf("round=%d naive_ms=%.2f vectorized_ms=%.2f speedup=%.1fx examples_per_sec=%.0f/%.0f loss=%.6f",
				round,
				snap.AvgNaiveMS,
				snap.AvgVectorizedMS,
				snap.Speedup,
				snap.NaiveExamplesPerSec,
				snap.VectorizedExamplesPerSec,
				snap.LastLoss,
			)
		}
	}

	return total.Snapshot(), nil
}
