package prediction

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/julianstephens/nexus/internal/constants"
	"github.com/julianstephens/nexus/internal/models"
)

// DurationSample is one observed execution of a task.
type DurationSample struct {
	Category     string             `json:"category"`
	Complexity   int                `json:"complexity"`
	HourOfDay    int                `json:"hour_of_day"`
	Energy       models.EnergyLevel `json:"energy"`
	EstimatedMin int                `json:"estimated_min"`
	ActualMin    int                `json:"actual_min"`
}

// DurationSnapshot is the immutable learned state of the duration model.
// Buckets hold actual/estimated ratios per (category, complexity); Modifiers
// hold the personal efficiency ratio per (time-of-day, energy).
type DurationSnapshot struct {
	Buckets   map[string]welford `json:"buckets"`
	Modifiers map[string]welford `json:"modifiers"`
}

func emptyDurationSnapshot() *DurationSnapshot {
	return &DurationSnapshot{
		Buckets:   map[string]welford{},
		Modifiers: map[string]welford{},
	}
}

func bucketKey(category string, complexity int) string {
	if category == "" {
		category = "general"
	}
	if complexity < 1 {
		complexity = 1
	}
	if complexity > 5 {
		complexity = 5
	}
	return fmt.Sprintf("%s|c%d", category, complexity)
}

func modifierKey(hour int, energy models.EnergyLevel) string {
	if energy == "" {
		energy = models.EnergyMedium
	}
	return fmt.Sprintf("%s|%s", TimeOfDay(hour), energy)
}

// DurationModel predicts how long a task will actually take. Reads go through
// an atomic snapshot pointer; updates are serialized by the write mutex.
type DurationModel struct {
	mu   sync.Mutex
	snap atomic.Pointer[DurationSnapshot]
}

func NewDurationModel() *DurationModel {
	m := &DurationModel{}
	m.snap.Store(emptyDurationSnapshot())
	return m
}

// NewDurationModelFromSamples rebuilds the model from persisted samples.
func NewDurationModelFromSamples(samples []DurationSample) *DurationModel {
	m := NewDurationModel()
	for _, s := range samples {
		m.Update(s)
	}
	return m
}

// RestoreDurationModel rehydrates the model from a persisted snapshot.
func RestoreDurationModel(snap *DurationSnapshot) *DurationModel {
	m := NewDurationModel()
	if snap != nil {
		if snap.Buckets == nil {
			snap.Buckets = map[string]welford{}
		}
		if snap.Modifiers == nil {
			snap.Modifiers = map[string]welford{}
		}
		m.snap.Store(snap)
	}
	return m
}

// Snapshot returns the current immutable state, for persistence.
func (m *DurationModel) Snapshot() *DurationSnapshot {
	return m.snap.Load()
}

// Predict estimates actual minutes for the task executed at the given hour
// and energy level. Below the minimum sample count the user's estimate is
// returned unmodified at low confidence.
func (m *DurationModel) Predict(task models.Task, hourOfDay int, energy models.EnergyLevel) Estimate {
	snap := m.snap.Load()

	bucket, ok := snap.Buckets[bucketKey(task.Category, task.Complexity)]
	if !ok || bucket.Count < constants.MinSamplesForConfidence {
		return Estimate{Value: float64(task.EstimatedMin), Confidence: constants.LowConfidence}
	}

	ratio := bucket.Mean
	confidence := bucketConfidence(bucket)

	// Personal modifier only kicks in once it has evidence of its own.
	if mod, ok := snap.Modifiers[modifierKey(hourOfDay, energy)]; ok && mod.Count >= constants.MinSamplesForConfidence {
		ratio *= mod.Mean
		if mc := bucketConfidence(mod); mc < confidence {
			confidence = mc
		}
	}

	if ratio <= 0 {
		ratio = 1
	}
	return Estimate{Value: float64(task.EstimatedMin) * ratio, Confidence: confidence}
}

// Update folds one sample into a new snapshot and swaps it in.
func (m *DurationModel) Update(sample DurationSample) {
	if sample.EstimatedMin <= 0 || sample.ActualMin <= 0 {
		return
	}
	ratio := float64(sample.ActualMin) / float64(sample.EstimatedMin)

	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.snap.Load()
	next := &DurationSnapshot{
		Buckets:   make(map[string]welford, len(old.Buckets)+1),
		Modifiers: make(map[string]welford, len(old.Modifiers)+1),
	}
	for k, v := range old.Buckets {
		next.Buckets[k] = v
	}
	for k, v := range old.Modifiers {
		next.Modifiers[k] = v
	}

	bk := bucketKey(sample.Category, sample.Complexity)
	next.Buckets[bk] = next.Buckets[bk].add(ratio)

	// The modifier learns the deviation from the category norm, so an even
	// overrun across the board lives in the bucket alone.
	mk := modifierKey(sample.HourOfDay, sample.Energy)
	rel := ratio
	if mean := next.Buckets[bk].Mean; mean > 0 {
		rel = ratio / mean
	}
	next.Modifiers[mk] = next.Modifiers[mk].add(rel)

	m.snap.Store(next)
}

// SampleCount reports the evidence behind one (category, complexity) bucket.
func (m *DurationModel) SampleCount(category string, complexity int) int {
	return m.snap.Load().Buckets[bucketKey(category, complexity)].Count
}
