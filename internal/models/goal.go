package models

import "time"

type Goal struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category,omitempty"`
	Priority    int        `json:"priority"`           // 1 (lowest) to 5 (highest)
	Deadline    string     `json:"deadline,omitempty"` // YYYY-MM-DD format
	ParentID    string     `json:"parent_id,omitempty"`
	TargetShare float64    `json:"target_share"` // desired fraction of scheduled time
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Progress recomputes the goal's completion percentage from the current task
// set. It is always derived, never stored.
func Progress(goal Goal, tasks []Task) float64 {
	total := 0
	done := 0
	for _, t := range tasks {
		if t.GoalID != goal.ID || t.DeletedAt != nil {
			continue
		}
		total++
		if t.Completed() {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}
