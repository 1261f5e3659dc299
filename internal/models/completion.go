package models

import (
	"encoding/json"
	"time"
)

// CompletionRecord is an immutable, append-only fact about how a task was
// actually executed. It is never mutated after creation.
type CompletionRecord struct {
	ID              string    `json:"id"`
	TaskID          string    `json:"task_id"`
	Date            string    `json:"date"`          // YYYY-MM-DD format
	PlannedStart    string    `json:"planned_start"` // HH:MM format
	PlannedEnd      string    `json:"planned_end"`
	ActualStart     string    `json:"actual_start"`
	ActualEnd       string    `json:"actual_end"`
	Energy          int       `json:"energy"`     // self-report, 1-3
	Focus           int       `json:"focus"`      // self-report, 1-5
	Difficulty      int       `json:"difficulty"` // self-report, 1-5
	Satisfaction    int       `json:"satisfaction"`
	PercentComplete int       `json:"percent_complete"`
	CreatedAt       time.Time `json:"created_at"`
}

// PlannedMinutes returns the planned block length, 0 when times are malformed.
func (r CompletionRecord) PlannedMinutes() int {
	s, e, err := spanMinutes(r.PlannedStart, r.PlannedEnd)
	if err != nil {
		return 0
	}
	return e - s
}

// ActualMinutes returns the observed block length, 0 when times are malformed.
func (r CompletionRecord) ActualMinutes() int {
	s, e, err := spanMinutes(r.ActualStart, r.ActualEnd)
	if err != nil {
		return 0
	}
	return e - s
}

// LearnedPattern is a confidence-scored, data-derived rule keyed by
// (type, name). Payload shape depends on the pattern type.
type LearnedPattern struct {
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	Confidence float64         `json:"confidence"` // 0-1
	SampleSize int             `json:"sample_size"`
	Active     bool            `json:"active"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Usable reports whether the pattern has earned enough evidence to influence
// scheduling decisions.
func (p LearnedPattern) Usable(confidenceFloor float64) bool {
	return p.Active && p.Confidence >= confidenceFloor
}
