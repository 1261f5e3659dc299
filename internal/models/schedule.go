package models

import "time"

// BusyKind classifies an externally sourced busy interval.
type BusyKind string

const (
	BusyMeeting  BusyKind = "meeting"
	BusyClass    BusyKind = "class"
	BusyExam     BusyKind = "exam"
	BusyPersonal BusyKind = "personal"
	BusyExercise BusyKind = "exercise"
)

// EnergyImpact is the per-hour energy drain weight of a busy interval kind.
// Exercise is mildly restorative.
func (k BusyKind) EnergyImpact() float64 {
	switch k {
	case BusyMeeting:
		return 0.20
	case BusyClass:
		return 0.25
	case BusyExam:
		return 0.40
	case BusyPersonal:
		return 0.10
	case BusyExercise:
		return -0.10
	default:
		return 0.15
	}
}

// BusyInterval is a read-only calendar interval for one date.
type BusyInterval struct {
	ID    string   `json:"id"`
	Date  string   `json:"date"`  // YYYY-MM-DD format
	Start string   `json:"start"` // HH:MM format
	End   string   `json:"end"`   // HH:MM format
	Kind  BusyKind `json:"kind"`
	Title string   `json:"title,omitempty"`
}

// TimeSlot is an open, schedulable interval on a date. Slots are ephemeral:
// recomputed per optimization run, never persisted as authoritative state.
type TimeSlot struct {
	Date            string     `json:"date"`
	Start           string     `json:"start"` // HH:MM format
	End             string     `json:"end"`   // HH:MM format
	DurationMin     int        `json:"duration_min"`
	PredictedEnergy float64    `json:"predicted_energy"`
	Context         ContextTag `json:"context"`
}

// ScheduledTask binds a task to a concrete interval within a daily schedule.
type ScheduledTask struct {
	TaskID       string  `json:"task_id"`
	Date         string  `json:"date"`
	Start        string  `json:"start"` // HH:MM format
	End          string  `json:"end"`   // HH:MM format
	EnergyScore  float64 `json:"energy_score"`
	ContextScore float64 `json:"context_score"`
	Score        float64 `json:"score"` // composite soft score from the evaluator
	Confidence   float64 `json:"confidence"`
	Movable      bool    `json:"movable"`
	NoticeMin    int     `json:"notice_min,omitempty"`
	BufferMin    int     `json:"buffer_min,omitempty"`
}

// DurationMin is the scheduled block length in minutes, 0 when times are malformed.
func (s ScheduledTask) DurationMin() int {
	start, end, err := spanMinutes(s.Start, s.End)
	if err != nil {
		return 0
	}
	return end - start
}

// Deferral explains why a task was left off a schedule.
type Deferral struct {
	TaskID string `json:"task_id"`
	Reason string `json:"reason"`
}

type ScheduleOutcome string

const (
	OutcomeComplete        ScheduleOutcome = "complete"
	OutcomePartial         ScheduleOutcome = "partial"
	OutcomeNoAvailableTime ScheduleOutcome = "no_available_time"
)

// DailySchedule is the ordered set of scheduled tasks for one date. A date has
// one live schedule at a time; re-optimization supersedes it wholesale under a
// new revision.
type DailySchedule struct {
	Date        string          `json:"date"`
	Revision    int             `json:"revision"`
	Slots       []ScheduledTask `json:"slots"`
	Deferred    []Deferral      `json:"deferred,omitempty"`
	Outcome     ScheduleOutcome `json:"outcome"`
	Strategy    string          `json:"strategy"`
	Confidence  float64         `json:"confidence"`
	Warnings    []string        `json:"warnings,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Clone returns a deep copy, so repairs can work copy-then-replace without
// exposing partial edits to readers of the original.
func (d DailySchedule) Clone() DailySchedule {
	out := d
	out.Slots = append([]ScheduledTask(nil), d.Slots...)
	out.Deferred = append([]Deferral(nil), d.Deferred...)
	out.Warnings = append([]string(nil), d.Warnings...)
	return out
}
