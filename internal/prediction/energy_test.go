package prediction

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/julianstephens/nexus/internal/models"
)

func TestEnergyPredict_CircadianBaselineBeforeSamples(t *testing.T) {
	m := NewEnergyModel()

	tests := []struct {
		name     string
		startMin int
		want     float64
	}{
		{"morning peak", 10 * 60, 2.7},
		{"post-lunch dip", 13*60 + 30, 1.7},
		{"late evening", 22 * 60, 1.3},
	}
	for _, tt := range tests {
		est := m.PredictAt(tt.startMin, nil, DayInputs{})
		if math.Abs(est.Value-tt.want) > 1e-9 {
			t.Errorf("%s: expected %.1f, got %.2f", tt.name, tt.want, est.Value)
		}
		if est.Confidence != 0.1 {
			t.Errorf("%s: expected low confidence before samples, got %.2f", tt.name, est.Confidence)
		}
	}
}

func TestEnergyPredict_ObservationsOverrideBaseline(t *testing.T) {
	m := NewEnergyModel()
	// This user is consistently flat at 10:00 despite the usual peak.
	for i := 0; i < 4; i++ {
		m.Update(EnergySample{HourOfDay: 10, Level: 1.5})
	}

	est := m.PredictAt(10*60, nil, DayInputs{})
	if math.Abs(est.Value-1.5) > 1e-9 {
		t.Errorf("expected learned 1.5 at 10:00, got %.2f", est.Value)
	}
	if est.Confidence <= 0.1 {
		t.Errorf("expected earned confidence, got %.2f", est.Confidence)
	}

	// 11:00 has no samples and still reads the baseline.
	est = m.PredictAt(11*60, nil, DayInputs{})
	if math.Abs(est.Value-2.7) > 1e-9 {
		t.Errorf("expected baseline at 11:00, got %.2f", est.Value)
	}
}

func TestEnergyPredict_DayInputsShiftCurve(t *testing.T) {
	m := NewEnergyModel()

	rested := m.PredictAt(10*60, nil, DayInputs{SleepHours: 8.5})
	tired := m.PredictAt(10*60, nil, DayInputs{SleepHours: 5})
	if tired.Value >= rested.Value {
		t.Errorf("short sleep should lower energy: rested=%.2f tired=%.2f", rested.Value, tired.Value)
	}

	up := m.PredictAt(10*60, nil, DayInputs{Mood: 3})
	down := m.PredictAt(10*60, nil, DayInputs{Mood: 1})
	if down.Value >= up.Value {
		t.Errorf("low mood should lower energy: up=%.2f down=%.2f", up.Value, down.Value)
	}
}

func TestEnergyPredict_BusyIntervalsDrain(t *testing.T) {
	m := NewEnergyModel()

	meetings := []models.BusyInterval{
		{ID: "m1", Date: "2026-03-02", Start: "09:00", End: "11:00", Kind: models.BusyMeeting},
	}

	fresh := m.PredictAt(14*60, nil, DayInputs{})
	drained := m.PredictAt(14*60, meetings, DayInputs{})
	// Two meeting hours at 0.20 per hour.
	if math.Abs((fresh.Value-drained.Value)-0.4) > 1e-9 {
		t.Errorf("expected 0.4 drain from two meeting hours, got fresh=%.2f drained=%.2f", fresh.Value, drained.Value)
	}

	// Intervals after the slot have no effect.
	later := []models.BusyInterval{
		{ID: "m2", Date: "2026-03-02", Start: "15:00", End: "16:00", Kind: models.BusyExam},
	}
	unaffected := m.PredictAt(14*60, later, DayInputs{})
	if unaffected.Value != fresh.Value {
		t.Errorf("future busy time must not drain: %.2f vs %.2f", unaffected.Value, fresh.Value)
	}
}

func TestEnergyPredict_ExerciseRestores(t *testing.T) {
	m := NewEnergyModel()

	run := []models.BusyInterval{
		{ID: "run", Date: "2026-03-02", Start: "07:00", End: "08:00", Kind: models.BusyExercise},
	}
	fresh := m.PredictAt(10*60, nil, DayInputs{})
	after := m.PredictAt(10*60, run, DayInputs{})
	if after.Value <= fresh.Value {
		t.Errorf("exercise should mildly restore energy: %.2f vs %.2f", after.Value, fresh.Value)
	}
}

func TestEnergyPredict_ClampedToScale(t *testing.T) {
	m := NewEnergyModel()

	est := m.PredictAt(10*60, nil, DayInputs{SleepHours: 12, Mood: 3})
	if est.Value > models.EnergyScaleMax {
		t.Errorf("prediction above scale: %.2f", est.Value)
	}

	heavy := []models.BusyInterval{
		{ID: "e1", Date: "2026-03-02", Start: "08:00", End: "14:00", Kind: models.BusyExam},
	}
	est = m.PredictAt(14*60, heavy, DayInputs{SleepHours: 4})
	if est.Value < models.EnergyScaleMin {
		t.Errorf("prediction below scale: %.2f", est.Value)
	}
}

func TestEnergyUpdate_IgnoresOutOfRangeHour(t *testing.T) {
	m := NewEnergyModel()
	m.Update(EnergySample{HourOfDay: -1, Level: 2})
	m.Update(EnergySample{HourOfDay: 24, Level: 2})
	for h := 0; h < 24; h++ {
		if m.SampleCount(h) != 0 {
			t.Fatalf("unexpected sample at hour %d", h)
		}
	}
}

func TestEnergySnapshot_RoundTrip(t *testing.T) {
	m := NewEnergyModel()
	for i := 0; i < 5; i++ {
		m.Update(EnergySample{HourOfDay: 9, Level: 2.4})
	}

	raw, err := json.Marshal(m.Snapshot())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var snap EnergySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	restored := RestoreEnergyModel(&snap)
	before := m.PredictAt(9*60, nil, DayInputs{})
	after := restored.PredictAt(9*60, nil, DayInputs{})
	if before != after {
		t.Errorf("restored model diverges: before=%+v after=%+v", before, after)
	}
}
