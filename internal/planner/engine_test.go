package planner

import (
	"testing"
	"time"

	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/prediction"
	"github.com/julianstephens/nexus/internal/scheduler"
)

func newTestEngine() *Engine {
	cfg := Config{
		Settings: models.Settings{
			DayStart:   "09:00",
			DayEnd:     "17:00",
			BreakStart: "12:00",
			BreakEnd:   "12:30",
		},
	}
	return New(cfg, prediction.NewDurationModel(), prediction.NewEnergyModel())
}

func TestGenerateSchedule_EndToEnd(t *testing.T) {
	engine := newTestEngine()

	tasks := []models.Task{
		{ID: "t1", Name: "Deep work", Complexity: 4, EstimatedMin: 90, Energy: models.EnergyHigh, Status: models.StatusPending, CreatedAt: time.Now()},
		{ID: "t2", Name: "Email", Complexity: 1, EstimatedMin: 30, Energy: models.EnergyLow, Status: models.StatusPending, CreatedAt: time.Now()},
	}
	busy := []models.BusyInterval{
		{ID: "standup", Date: "2026-03-02", Start: "10:00", End: "10:30", Kind: models.BusyMeeting},
	}

	schedule, err := engine.GenerateSchedule("2026-03-02", tasks, nil, busy, nil)
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if len(schedule.Slots) == 0 {
		t.Fatal("expected placements on a mostly free day")
	}

	// Nothing may land inside the meeting or the break.
	for _, s := range schedule.Slots {
		if s.Start < "10:30" && s.End > "10:00" {
			t.Errorf("slot %+v overlaps the standup", s)
		}
		if s.Start < "12:30" && s.End > "12:00" {
			t.Errorf("slot %+v overlaps the break", s)
		}
	}
}

func TestGenerateSchedule_InvalidDate(t *testing.T) {
	engine := newTestEngine()
	if _, err := engine.GenerateSchedule("not-a-date", nil, nil, nil, nil); err == nil {
		t.Fatal("expected an error for a malformed date")
	}
}

func TestGenerateSchedule_OverlappingBusyRejected(t *testing.T) {
	engine := newTestEngine()
	busy := []models.BusyInterval{
		{ID: "a", Date: "2026-03-02", Start: "10:00", End: "11:00"},
		{ID: "b", Date: "2026-03-02", Start: "10:30", End: "11:30"},
	}
	if _, err := engine.GenerateSchedule("2026-03-02", nil, nil, busy, nil); err == nil {
		t.Fatal("expected overlapping busy intervals rejected")
	}
}

func TestEngine_FeedbackShiftsLaterPredictions(t *testing.T) {
	engine := newTestEngine()
	task := models.Task{ID: "t1", Name: "Writing", Category: "writing", Complexity: 3, EstimatedMin: 60, Energy: models.EnergyHigh}

	for i := 0; i < 4; i++ {
		rec := models.CompletionRecord{
			ID:          string(rune('a' + i)),
			TaskID:      "t1",
			Date:        "2026-03-02",
			ActualStart: "09:00",
			ActualEnd:   "10:30",
			Energy:      3,
		}
		result, err := engine.IngestFeedback(rec, task)
		if err != nil {
			t.Fatalf("IngestFeedback failed: %v", err)
		}
		if !result.Applied {
			t.Fatalf("record %s not applied", rec.ID)
		}
	}

	est := engine.DurationEstimate(task, 9)
	if est.Value <= 60 {
		t.Errorf("consistent overruns should raise the estimate, got %.1f", est.Value)
	}
	if est.Confidence <= 0.1 {
		t.Errorf("expected earned confidence, got %.2f", est.Confidence)
	}
}

func TestRepairSchedule_SlotsRecomputedFromCalendar(t *testing.T) {
	engine := newTestEngine()

	tasks := []models.Task{
		{ID: "t1", Name: "Work", Complexity: 3, EstimatedMin: 60, Energy: models.EnergyMedium, Status: models.StatusPending, CreatedAt: time.Now()},
	}
	schedule, err := engine.GenerateSchedule("2026-03-02", tasks, nil, nil, nil)
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	// A meeting swallows the whole afternoon; repair must respect it.
	busy := []models.BusyInterval{
		{ID: "allhands", Date: "2026-03-02", Start: "13:00", End: "17:00", Kind: models.BusyMeeting},
	}
	result := engine.RepairSchedule(schedule, scheduler.Disruption{
		Kind: scheduler.DisruptionCalendarChange,
		At:   "13:00",
	}, tasks, nil, busy, nil)

	for _, s := range result.Schedule.Slots {
		if s.Start >= "13:00" {
			t.Errorf("slot placed inside the new meeting: %+v", s)
		}
	}
}
