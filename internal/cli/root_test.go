package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/nexus/internal/feedback"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/prediction"
	"github.com/julianstephens/nexus/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "nexus.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func trainedDurationPayload(t *testing.T) json.RawMessage {
	t.Helper()
	m := prediction.NewDurationModel()
	for i := 0; i < 5; i++ {
		m.Update(prediction.DurationSample{
			Category:     "writing",
			Complexity:   3,
			HourOfDay:    9,
			Energy:       models.EnergyHigh,
			EstimatedMin: 60,
			ActualMin:    90,
		})
	}
	raw, err := json.Marshal(m.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return raw
}

func saveDurationPattern(t *testing.T, store *sqlite.Store, confidence float64, active bool) {
	t.Helper()
	err := store.SavePattern(models.LearnedPattern{
		Type:       feedback.PatternDurationModel,
		Name:       "personal",
		Payload:    trainedDurationPayload(t),
		Confidence: confidence,
		SampleSize: 5,
		Active:     active,
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("SavePattern failed: %v", err)
	}
}

func TestRestoreDurationModel_LowConfidencePatternIgnored(t *testing.T) {
	store := newTestStore(t)
	saveDurationPattern(t, store, 0.05, true)

	m := restoreDurationModel(store)
	task := models.Task{Category: "writing", Complexity: 3, EstimatedMin: 60}
	est := m.Predict(task, 9, models.EnergyHigh)
	if est.Value != 60 || est.Confidence != 0.1 {
		t.Errorf("low-confidence pattern must not shape predictions, got %+v", est)
	}
}

func TestRestoreDurationModel_InactivePatternIgnored(t *testing.T) {
	store := newTestStore(t)
	saveDurationPattern(t, store, 0.9, false)

	m := restoreDurationModel(store)
	task := models.Task{Category: "writing", Complexity: 3, EstimatedMin: 60}
	est := m.Predict(task, 9, models.EnergyHigh)
	if est.Value != 60 || est.Confidence != 0.1 {
		t.Errorf("inactive pattern must not shape predictions, got %+v", est)
	}
}

func TestRestoreDurationModel_UsablePatternRestored(t *testing.T) {
	store := newTestStore(t)
	saveDurationPattern(t, store, 0.6, true)

	m := restoreDurationModel(store)
	task := models.Task{Category: "writing", Complexity: 3, EstimatedMin: 60}
	est := m.Predict(task, 9, models.EnergyHigh)
	if est.Value <= 60 {
		t.Errorf("restored model should correct the 1.5x overrun, got %.1f", est.Value)
	}
	if est.Confidence <= 0.1 {
		t.Errorf("restored model should carry earned confidence, got %.2f", est.Confidence)
	}
}

func TestRestoreEnergyModel_LowConfidencePatternIgnored(t *testing.T) {
	store := newTestStore(t)

	trained := prediction.NewEnergyModel()
	for i := 0; i < 5; i++ {
		trained.Update(prediction.EnergySample{HourOfDay: 10, Level: 1.2})
	}
	raw, err := json.Marshal(trained.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if err := store.SavePattern(models.LearnedPattern{
		Type:       feedback.PatternEnergyModel,
		Name:       "personal",
		Payload:    raw,
		Confidence: 0.05,
		SampleSize: 5,
		Active:     true,
		UpdatedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("SavePattern failed: %v", err)
	}

	m := restoreEnergyModel(store)
	fresh := prediction.NewEnergyModel()
	at := 10 * 60
	if got, want := m.PredictAt(at, nil, prediction.DayInputs{}), fresh.PredictAt(at, nil, prediction.DayInputs{}); got.Value != want.Value {
		t.Errorf("low-confidence pattern must leave the baseline curve, got %.2f want %.2f", got.Value, want.Value)
	}
}
