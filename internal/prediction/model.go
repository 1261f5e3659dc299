// Package prediction holds the two learned models behind scheduling: a
// duration model correcting user estimates and an energy model forecasting
// energy across the day.
//
// Both models follow the same contract: Predict returns a point estimate with
// a confidence in [0,1], Update folds in one observed sample. State lives in
// immutable snapshots swapped through an atomic pointer, so predictions read
// either the pre- or post-update snapshot, never a torn mix, and updates are
// single-writer. Models are rebuilt from persisted samples at startup; no
// state is in-memory-only.
package prediction

import (
	"math"

	"github.com/julianstephens/nexus/internal/constants"
)

// Estimate is a model output: a point value and the confidence behind it.
type Estimate struct {
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
}

// welford tracks running mean and variance of a stream of observations.
type welford struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"m2"`
}

func (w welford) add(x float64) welford {
	w.Count++
	delta := x - w.Mean
	w.Mean += delta / float64(w.Count)
	w.M2 += delta * (x - w.Mean)
	return w
}

func (w welford) variance() float64 {
	if w.Count < 2 {
		return 0
	}
	return w.M2 / float64(w.Count-1)
}

// confidenceCeiling bounds confidence by sample count alone: no bucket may
// report more confidence than its evidence supports, and the bound rises
// monotonically with n.
func confidenceCeiling(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) / (float64(n) + float64(constants.MinSamplesForConfidence))
}

// bucketConfidence combines the sample-count ceiling with a variance penalty:
// noisy buckets earn less trust than steady ones of the same size.
func bucketConfidence(w welford) float64 {
	if w.Count < constants.MinSamplesForConfidence {
		return constants.LowConfidence
	}
	ceiling := confidenceCeiling(w.Count)
	if w.Mean == 0 {
		return ceiling
	}
	cv := math.Sqrt(w.variance()) / math.Abs(w.Mean) // coefficient of variation
	return ceiling / (1 + cv)
}

// TimeOfDay buckets an hour into the bands personal modifiers are keyed by.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}
