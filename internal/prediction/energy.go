package prediction

import (
	"sync"
	"sync/atomic"

	"github.com/julianstephens/nexus/internal/constants"
	"github.com/julianstephens/nexus/internal/models"
)

// EnergySample is one self-reported energy observation.
type EnergySample struct {
	HourOfDay int     `json:"hour_of_day"`
	Level     float64 `json:"level"` // 1-3 scale
}

// DayInputs are optional same-day signals that shift the whole curve.
type DayInputs struct {
	SleepHours float64 // 0 when unknown
	Mood       float64 // 1-3 scale, 0 when unknown
}

/// EnergySnapshot is the immutable learned state of the energy model: observed
// energy per hour of day.
type EnergySnapshot struct {
	Hours map[int]welford `json:"hours"`
}

func emptyEnergySnapshot() *EnergySnapshot {
	return &EnergySnapshot{Hours: map[int]welford{}}
}

// circadianBaseline is the prior used before any samples exist: a morning
// peak, a post-lunch dip and an evening decline.
func circadianBaseline(hour int) float64 {
	switch {
	case hour >= 9 && hour < 12:
		return 2.7
	case hour >= 8 && hour < 9:
		return 2.4
	case hour >= 13 && hour < 15:
		return 1.7
	case hour >= 15 && hour < 18:
		return 2.1
	case hour >= 18 && hour < 21:
		return 1.8
	case hour >= 6 && hour < 8:
		return 2.0
	default:
		return 1.3
	}
}

// EnergyModel predicts expected energy at a slot from the per-hour baseline,
// same-day inputs and cumulative drain from preceding busy intervals.
type EnergyModel struct {
	mu   sync.Mutex
	snap atomic.Pointer[EnergySnapshot]
}

func NewEnergyModel() *EnergyModel {
	m := &EnergyModel{}
	m.snap.Store(emptyEnergySnapshot())
	return m
}

// NewEnergyModelFromSamples rebuilds the model from persisted samples.
func NewEnergyModelFromSamples(samples []EnergySample) *EnergyModel {
	m := NewEnergyModel()
	for _, s := range samples {
		m.Update(s)
	}
	return m
}

// RestoreEnergyModel rehydrates the model from a persisted snapshot.
func RestoreEnergyModel(snap *EnergySnapshot) *EnergyModel {
	m := NewEnergyModel()
	if snap != nil {
		if snap.Hours == nil {
			snap.Hours = map[int]welford{}
		}
		m.snap.Store(snap)
	}
	return m
}

// Snapshot returns the current immutable state, for persistence.
func (m *EnergyModel) Snapshot() *EnergySnapshot {
	return m.snap.Load()
}

// PredictAt estimates the energy level at startMin minutes from midnight on a
// date, given the busy intervals earlier that day. The result is clamped to
// the defined energy scale.
func (m *EnergyModel) PredictAt(startMin int, busyBefore []models.BusyInterval, inputs DayInputs) Estimate {
	snap := m.snap.Load()
	hour := startMin / 60

	base := circadianBaseline(hour)
	confidence := constants.LowConfidence
	if obs, ok := snap.Hours[hour]; ok && obs.Count >= constants.MinSamplesForConfidence {
		base = obs.Mean
		confidence = bucketConfidence(obs)
	}

	if inputs.SleepHours > 0 {
		// Short nights pull the curve down, long nights push it up a little.
		base += (inputs.SleepHours - 7.5) * 0.15
	}
	if inputs.Mood > 0 {
		base += (inputs.Mood - 2.0) * 0.2
	}

	// Every busy interval that ended before this slot drains (or restores)
	// energy in proportion to its length and classification.
	for _, b := range busyBefore {
		s, e, err := b.IntervalMinutes()
		if err != nil || s >= startMin {
			continue
		}
		if e > startMin {
			e = startMin
		}
		base -= b.Kind.EnergyImpact() * float64(e-s) / 60.0
	}

	return Estimate{Value: models.ClampEnergy(base), Confidence: confidence}
}

// Update folds one sample into a new snapshot and swaps it in.
func (m *EnergyModel) Update(sample EnergySample) {
	if sample.HourOfDay < 0 || sample.HourOfDay > 23 {
		return
	}
	level := models.ClampEnergy(sample.Level)

	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.snap.Load()
	next := &EnergySnapshot{Hours: make(map[int]welford, len(old.Hours)+1)}
	for k, v := range old.Hours {
		next.Hours[k] = v
	}
	next.Hours[sample.HourOfDay] = next.Hours[sample.HourOfDay].add(level)

	m.snap.Store(next)
}

// SampleCount reports the evidence behind one hour bucket.
func (m *EnergyModel) SampleCount(hour int) int {
	return m.snap.Load().Hours[hour].Count
}
