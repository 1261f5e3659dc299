package models

import (
	"testing"
	"time"
)

func TestEffectiveMinBlock(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want int
	}{
		{"explicit min wins", Task{EstimatedMin: 90, MinBlockMin: 45, Splittable: true}, 45},
		{"splittable defaults to 25", Task{EstimatedMin: 90, Splittable: true}, 25},
		{"short splittable keeps estimate", Task{EstimatedMin: 20, Splittable: true}, 20},
		{"non-splittable needs the whole estimate", Task{EstimatedMin: 90}, 90},
	}
	for _, tt := range tests {
		if got := tt.task.EffectiveMinBlock(); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestEffectiveMaxBlock(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want int
	}{
		{"cap below estimate applies", Task{EstimatedMin: 90, MaxBlockMin: 50}, 50},
		{"cap above estimate ignored", Task{EstimatedMin: 90, MaxBlockMin: 120}, 90},
		{"no cap", Task{EstimatedMin: 90}, 90},
	}
	for _, tt := range tests {
		if got := tt.task.EffectiveMaxBlock(); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestEnergyLevelScale(t *testing.T) {
	if EnergyLow.Score() != 1.0 || EnergyMedium.Score() != 2.0 || EnergyHigh.Score() != 3.0 {
		t.Error("energy levels must map onto the 1-3 scale")
	}
	if EnergyLevel("").Score() != 2.0 {
		t.Error("unset energy reads as medium")
	}

	tests := []struct {
		score float64
		want  EnergyLevel
	}{
		{1.0, EnergyLow}, {1.49, EnergyLow}, {1.5, EnergyMedium}, {2.49, EnergyMedium}, {2.5, EnergyHigh}, {3.0, EnergyHigh},
	}
	for _, tt := range tests {
		if got := EnergyFromScore(tt.score); got != tt.want {
			t.Errorf("EnergyFromScore(%.2f): expected %s, got %s", tt.score, tt.want, got)
		}
	}

	if ClampEnergy(0.4) != 1.0 || ClampEnergy(3.7) != 3.0 || ClampEnergy(2.2) != 2.2 {
		t.Error("ClampEnergy must bound values to the scale")
	}
}

func TestProgress(t *testing.T) {
	goal := Goal{ID: "g1", Title: "Work", Priority: 4}
	now := time.Now()
	tasks := []Task{
		{ID: "t1", GoalID: "g1", Status: StatusCompleted},
		{ID: "t2", GoalID: "g1", Status: StatusPending},
		{ID: "t3", GoalID: "g1", Status: StatusCompleted, DeletedAt: &now},
		{ID: "t4", GoalID: "other", Status: StatusCompleted},
	}

	if got := Progress(goal, tasks); got != 0.5 {
		t.Errorf("expected 0.5 over the two live tasks, got %.2f", got)
	}
	if got := Progress(Goal{ID: "empty"}, tasks); got != 0 {
		t.Errorf("a goal without tasks has zero progress, got %.2f", got)
	}
}

func TestScheduleClone(t *testing.T) {
	original := DailySchedule{
		Date:     "2026-03-02",
		Revision: 2,
		Slots: []ScheduledTask{
			{TaskID: "t1", Start: "09:00", End: "10:00"},
		},
		Deferred: []Deferral{{TaskID: "t2", Reason: "no available time"}},
		Warnings: []string{"existing"},
	}

	clone := original.Clone()
	clone.Slots[0].TaskID = "changed"
	clone.Deferred[0].Reason = "changed"
	clone.Warnings[0] = "changed"

	if original.Slots[0].TaskID != "t1" || original.Deferred[0].Reason != "no available time" || original.Warnings[0] != "existing" {
		t.Error("mutating a clone must not touch the original")
	}
}

func TestScheduledTaskDurationMin(t *testing.T) {
	s := ScheduledTask{Start: "09:00", End: "10:30"}
	if s.DurationMin() != 90 {
		t.Errorf("expected 90, got %d", s.DurationMin())
	}
	bad := ScheduledTask{Start: "nope", End: "10:30"}
	if bad.DurationMin() != 0 {
		t.Errorf("malformed times read as 0, got %d", bad.DurationMin())
	}
}

func TestSettingsMapRoundTrip(t *testing.T) {
	settings := Settings{
		DayStart:    "07:30",
		DayEnd:      "19:00",
		BreakStart:  "12:00",
		BreakEnd:    "12:45",
		MinSlotMin:  20,
		Timezone:    "Europe/Berlin",
		WeightSoft:  0.5,
		WeightGoals: 0.3,
		WeightFlow:  0.2,
	}

	back, err := MapToSettings(SettingsToMap(settings))
	if err != nil {
		t.Fatalf("MapToSettings failed: %v", err)
	}
	if back != settings {
		t.Errorf("round trip diverged:\nwant %+v\ngot  %+v", settings, back)
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	settings := Settings{DayStart: "06:00"}
	ApplyDefaultSettings(&settings)

	if settings.DayStart != "06:00" {
		t.Error("explicit values must survive defaulting")
	}
	if settings.DayEnd == "" || settings.Timezone == "" || settings.MinSlotMin == 0 {
		t.Errorf("defaults not filled in: %+v", settings)
	}
	if settings.WeightSoft == 0 || settings.WeightGoals == 0 || settings.WeightFlow == 0 {
		t.Errorf("weight defaults not filled in: %+v", settings)
	}
}

func TestBusyIntervalMinutes(t *testing.T) {
	b := BusyInterval{Start: "09:15", End: "10:45"}
	s, e, err := b.IntervalMinutes()
	if err != nil {
		t.Fatalf("IntervalMinutes failed: %v", err)
	}
	if s != 555 || e != 645 {
		t.Errorf("expected 555-645, got %d-%d", s, e)
	}

	inverted := BusyInterval{Start: "11:00", End: "10:00"}
	if _, _, err := inverted.IntervalMinutes(); err == nil {
		t.Error("inverted spans must be rejected")
	}
}

func TestBusyKindEnergyImpact(t *testing.T) {
	if BusyExam.EnergyImpact() <= BusyMeeting.EnergyImpact() {
		t.Error("exams should drain more than meetings")
	}
	if BusyExercise.EnergyImpact() >= 0 {
		t.Error("exercise should restore, not drain")
	}
}
