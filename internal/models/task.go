package models

import "time"

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

type RecurrenceType string

const (
	RecurrenceNone   RecurrenceType = "none"
	RecurrenceDaily  RecurrenceType = "daily"
	RecurrenceWeekly RecurrenceType = "weekly"
	RecurrenceNDays  RecurrenceType = "n_days"
)

type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// EnergyScaleMin and EnergyScaleMax bound the numeric energy scale that
// predictions are clamped to.
const (
	EnergyScaleMin = 1.0
	EnergyScaleMax = 3.0
)

// Score maps an energy level onto the numeric 1–3 scale. Unset levels read
// as medium.
func (e EnergyLevel) Score() float64 {
	switch e {
	case EnergyLow:
		return 1.0
	case EnergyHigh:
		return 3.0
	default:
		return 2.0
	}
}

// ClampEnergy clamps a numeric energy value to the defined scale bounds.
func ClampEnergy(v float64) float64 {
	if v < EnergyScaleMin {
		return EnergyScaleMin
	}
	if v > EnergyScaleMax {
		return EnergyScaleMax
	}
	return v
}

// EnergyFromScore maps a numeric energy value back to the nearest level.
func EnergyFromScore(v float64) EnergyLevel {
	switch {
	case v < 1.5:
		return EnergyLow
	case v >= 2.5:
		return EnergyHigh
	default:
		return EnergyMedium
	}
}

// ContextTag labels the kind of environment a slot offers or a task prefers.
type ContextTag string

const (
	ContextAny           ContextTag = "any"
	ContextFocused       ContextTag = "focused"
	ContextCollaborative ContextTag = "collaborative"
	ContextAdmin         ContextTag = "admin"
)

type Recurrence struct {
	Type         RecurrenceType `json:"type"`
	IntervalDays int            `json:"interval_days,omitempty"`
	WeekdayMask  []time.Weekday `json:"weekday_mask,omitempty"`
}

type Task struct {
	ID           string      `json:"id"`
	GoalID       string      `json:"goal_id,omitempty"`
	Name         string      `json:"name"`
	Category     string      `json:"category,omitempty"`
	Complexity   int         `json:"complexity"` // 1-5, buckets duration statistics
	EstimatedMin int         `json:"estimated_min"`
	Energy       EnergyLevel `json:"energy,omitempty"`
	MinBlockMin  int         `json:"min_block_min,omitempty"`
	MaxBlockMin  int         `json:"max_block_min,omitempty"`
	HardDue      string      `json:"hard_due,omitempty"` // YYYY-MM-DD format
	SoftDue      string      `json:"soft_due,omitempty"` // YYYY-MM-DD format
	DependsOn    string      `json:"depends_on,omitempty"`
	Splittable   bool        `json:"splittable"`
	Context      ContextTag  `json:"context,omitempty"`
	Recurrence   Recurrence  `json:"recurrence"`
	Status       TaskStatus  `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	DeletedAt    *time.Time  `json:"deleted_at,omitempty"`
}

// Completed reports whether the task has been marked done.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// EffectiveMinBlock is the smallest contiguous block the task accepts. A
// non-splittable task needs its whole estimate in one piece.
func (t Task) EffectiveMinBlock() int {
	if t.MinBlockMin > 0 {
		return t.MinBlockMin
	}
	if t.Splittable {
		if t.EstimatedMin < 25 {
			return t.EstimatedMin
		}
		return 25
	}
	return t.EstimatedMin
}

// EffectiveMaxBlock caps how much of the task lands in a single slot.
func (t Task) EffectiveMaxBlock() int {
	if t.MaxBlockMin > 0 && t.MaxBlockMin < t.EstimatedMin {
		return t.MaxBlockMin
	}
	return t.EstimatedMin
}
