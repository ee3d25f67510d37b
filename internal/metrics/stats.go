package metrics

import "time"

// Window accumulates timing stats for the naive and vectorized strategies
// across multiple evaluations.
type Window struct {
	examples   int
	naive      time.Duration
	vectorized time.Duration
	calls      int
	lastLoss   float64
}

// Record adds one paired measurement over a batch of the given size.
func (w *Window) Record(batchSize int, naiveTime, vectorizedTime time.Duration, loss float64) {
	w.examples += batchSize
	w.naive += naiveTime
	w.vectorized += vectorizedTime
	w.calls++
	w.lastLoss = loss
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Calls: w.calls}
	if w.naive > 0 {
		snap.NaiveExamplesPerSec = float64(w.examples) / w.naive.Seconds()
	}
	if w.vectorized > 0 {
		snap.VectorizedExamplesPerSec = float64(w.examples) / w.vectorized.Seconds()
		snap.Speedup = w.naive.Seconds() / w.vectorized.Seconds()
	}
	if w.calls > 0 {
		snap.AvgNaiveMS = (w.naive.Seconds() * 1000) / float64(w.calls)
		snap.AvgVectorizedMS = (w.vectorized.Seconds() * 1000) / float64(w.calls)
	}
	snap.LastLoss = w.lastLoss

	w.examples = 0
	w.naive = 0
	w.vectorized = 0
	w.calls = 0
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Calls                    int
	NaiveExamplesPerSec      float64
	VectorizedExamplesPerSec float64
	AvgNaiveMS               float64
	AvgVectorizedMS          float64
	Speedup                  float64
	LastLoss                 float64
}
