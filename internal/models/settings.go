package models

// Settings represents application-wide settings
type Settings struct {
	DayStart    string  `json:"day_start"`   // the time the working day starts, e.g. "08:00"
	DayEnd      string  `json:"day_end"`     // the time the working day ends, e.g. "18:00"
	BreakStart  string  `json:"break_start"` // mandatory break window start
	BreakEnd    string  `json:"break_end"`   // mandatory break window end
	MinSlotMin  int     `json:"min_slot_min"`
	Timezone    string  `json:"timezone"` // IANA timezone name or "Local"
	WeightSoft  float64 `json:"weight_soft_score"`
	WeightGoals float64 `json:"weight_goal_balance"`
	WeightFlow  float64 `json:"weight_flow"`
}
