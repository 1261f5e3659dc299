// Package feedback closes the learning loop: completion records update the
// prediction models and the goal-balance targets.
package feedback

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/julianstephens/nexus/internal/logger"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/prediction"
	"github.com/julianstephens/nexus/internal/utils"
)

// EMA weights for nudging goal targets toward observed time shares.
const (
	targetExistingWeight = 0.8
	targetObservedWeight = 0.2
)

// Pattern types written back to storage after each ingest.
const (
	PatternDurationModel = "duration_model"
	PatternEnergyModel   = "energy_model"
)

// ModelUpdateResult reports what one ingest actually changed.
type ModelUpdateResult struct {
	RecordID           string
	Applied            bool // false when the record was already ingested
	DurationUpdated    bool
	EnergyUpdated      bool
	PatternsRecomputed bool
	Patterns           []models.LearnedPattern
	Warnings           []string
}

// Ingestor applies completion records to both prediction models. Ingestion is
// idempotent per record id: re-ingesting an identical record is a no-op, and
// a same-id record with different content is rejected with a warning since
// completion records are immutable facts.
type Ingestor struct {
	mu       sync.Mutex
	duration *prediction.DurationModel
	energy   *prediction.EnergyModel
	seen     map[string]uint64
}

func NewIngestor(duration *prediction.DurationModel, energy *prediction.EnergyModel) *Ingestor {
	return &Ingestor{
		duration: duration,
		energy:   energy,
		seen:     map[string]uint64{},
	}
}

// MarkIngested primes the dedupe set from previously processed records, so a
// restarted process does not double-count history.
func (in *Ingestor) MarkIngested(records []models.CompletionRecord) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, r := range records {
		if fp, err := fingerprint(r); err == nil {
			in.seen[r.ID] = fp
		}
	}
}

// Ingest applies one completion record. Update order is fixed: duration
// sample, then energy sample, then pattern recomputation. A pattern failure
// is logged and reported as a warning but never rolls back the model updates.
func (in *Ingestor) Ingest(rec models.CompletionRecord, task models.Task) (ModelUpdateResult, error) {
	result := ModelUpdateResult{RecordID: rec.ID}

	if rec.ID == "" {
		return result, fmt.Errorf("completion record has no id")
	}
	fp, err := fingerprint(rec)
	if err != nil {
		return result, fmt.Errorf("fingerprinting record %s: %w", rec.ID, err)
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if prev, ok := in.seen[rec.ID]; ok {
		if prev != fp {
			result.Warnings = append(result.Warnings, "record id already ingested with different content; completion records are immutable, ignoring")
		}
		return result, nil
	}

	hour := 12
	if m, err := utils.ParseTimeToMinutes(rec.ActualStart); err == nil {
		hour = m / 60
	}
	energyLevel := models.EnergyFromScore(float64(rec.Energy))

	if actual := rec.ActualMinutes(); actual > 0 && task.EstimatedMin > 0 {
		in.duration.Update(prediction.DurationSample{
			Category:     task.Category,
			Complexity:   task.Complexity,
			HourOfDay:    hour,
			Energy:       energyLevel,
			EstimatedMin: task.EstimatedMin,
			ActualMin:    scaledActual(actual, rec.PercentComplete),
		})
		result.DurationUpdated = true
	}

	if rec.Energy > 0 {
		in.energy.Update(prediction.EnergySample{HourOfDay: hour, Level: float64(rec.Energy)})
		result.EnergyUpdated = true
	}

	patterns, err := in.recomputePatterns()
	if err != nil {
		logger.Warn("pattern recomputation failed", "record", rec.ID, "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("pattern recomputation failed: %v", err))
	} else {
		result.PatternsRecomputed = true
		result.Patterns = patterns
	}

	in.seen[rec.ID] = fp
	result.Applied = true
	return result, nil
}

// recomputePatterns serializes the current model snapshots into learned
// pattern rows, confidence-scored by their evidence.
func (in *Ingestor) recomputePatterns() ([]models.LearnedPattern, error) {
	now := time.Now()

	durSnap := in.duration.Snapshot()
	durPayload, err := json.Marshal(durSnap)
	if err != nil {
		return nil, fmt.Errorf("marshaling duration snapshot: %w", err)
	}
	durSamples := 0
	for _, b := range durSnap.Buckets {
		durSamples += b.Count
	}

	energySnap := in.energy.Snapshot()
	energyPayload, err := json.Marshal(energySnap)
	if err != nil {
		return nil, fmt.Errorf("marshaling energy snapshot: %w", err)
	}
	energySamples := 0
	for _, h := range energySnap.Hours {
		energySamples += h.Count
	}

	return []models.LearnedPattern{
		{
			Type:       PatternDurationModel,
			Name:       "personal",
			Payload:    durPayload,
			Confidence: sampleConfidence(durSamples),
			SampleSize: durSamples,
			Active:     true,
			UpdatedAt:  now,
		},
		{
			Type:       PatternEnergyModel,
			Name:       "personal",
			Payload:    energyPayload,
			Confidence: sampleConfidence(energySamples),
			SampleSize: energySamples,
			Active:     true,
			UpdatedAt:  now,
		},
	}, nil
}

// RebalanceTargets nudges each goal's target share toward the observed share
// of completed time, keeping the set normalized.
func RebalanceTargets(goals []models.Goal, actualMinutes map[string]int) []models.Goal {
	total := 0
	for _, m := range actualMinutes {
		total += m
	}
	if total == 0 || len(goals) == 0 {
		return goals
	}

	out := append([]models.Goal(nil), goals...)
	var sum float64
	for i, g := range out {
		observed := float64(actualMinutes[g.ID]) / float64(total)
		current := g.TargetShare
		if current == 0 {
			current = 1.0 / float64(len(out))
		}
		out[i].TargetShare = targetExistingWeight*current + targetObservedWeight*observed
		sum += out[i].TargetShare
	}
	if sum > 0 {
		for i := range out {
			out[i].TargetShare /= sum
		}
	}
	return out
}

// scaledActual projects a partial completion to a full-task duration, so an
// abandoned session does not read as a fast finish.
func scaledActual(actualMin, percentComplete int) int {
	if percentComplete <= 0 || percentComplete >= 100 {
		return actualMin
	}
	return actualMin * 100 / percentComplete
}

// sampleConfidence mirrors the models' sample-count ceiling for pattern rows.
func sampleConfidence(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) / (float64(n) + 3)
}

func fingerprint(rec models.CompletionRecord) (uint64, error) {
	return hashstructure.Hash(rec, hashstructure.FormatV2, nil)
}
