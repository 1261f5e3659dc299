package constants

const (
	AppName            = "nexus"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/nexus/nexus.db"
	Version            = "v0.2.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Working window defaults
	DefaultDayStart   = "08:00"
	DefaultDayEnd     = "18:00"
	DefaultBreakStart = "12:00"
	DefaultBreakEnd   = "12:30"
	DefaultTimezone   = "Local"

	// MinSlotMin is the smallest open slot worth returning from the
	// availability calculator. Gaps shorter than this are merged away.
	MinSlotMin = 15

	// DefaultBufferMin separates consecutive scheduled tasks.
	DefaultBufferMin = 5

	// Optimizer limits
	GreedyTaskThreshold  = 50
	DefaultMaxIterations = 2000

	// MinSamplesForConfidence is the sample count below which prediction
	// models fall back to the user-supplied estimate.
	MinSamplesForConfidence = 3

	// LowConfidence is reported when a bucket has too few samples.
	LowConfidence = 0.1

	// PatternConfidenceFloor gates learned patterns out of scheduling
	// decisions until they have earned enough evidence.
	PatternConfidenceFloor = 0.3
)

// Objective weight defaults for the schedule optimizer.
const (
	DefaultWeightSoftScore    = 0.45
	DefaultWeightGoalBalance  = 0.25
	DefaultWeightFlow         = 0.15
	DefaultWeightUnscheduled  = 0.15
	DefaultEnergyMatchFloor   = 0.25
	DefaultDeadlinePressureHP = 2.0 // exponent steepening pressure near the deadline
)

// Settings keys as stored in the settings table.
const (
	SettingDayStart    = "day_start"
	SettingDayEnd      = "day_end"
	SettingBreakStart  = "break_start"
	SettingBreakEnd    = "break_end"
	SettingMinSlotMin  = "min_slot_min"
	SettingTimezone    = "timezone"
	SettingWeightSoft  = "weight_soft_score"
	SettingWeightGoals = "weight_goal_balance"
	SettingWeightFlow  = "weight_flow"
)
