package storage

import "github.com/julianstephens/nexus/internal/models"

// Provider is the persistence boundary of the planner core. Implementations
// exist for SQLite (local default) and PostgreSQL.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigDir() string

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Goals
	AddGoal(models.Goal) error
	GetGoal(id string) (models.Goal, error)
	GetAllGoals() ([]models.Goal, error)
	UpdateGoal(models.Goal) error
	DeleteGoal(id string) error

	// Tasks
	AddTask(models.Task) error
	GetTask(id string) (models.Task, error)
	GetAllTasks() ([]models.Task, error)
	GetTasksForGoal(goalID string) ([]models.Task, error)
	UpdateTask(models.Task) error
	// DeleteTask soft-deletes; tasks with completion records are never hard
	// deleted.
	DeleteTask(id string) error
	RestoreTask(id string) error

	// Busy intervals
	AddBusyInterval(models.BusyInterval) error
	GetBusyIntervals(date string) ([]models.BusyInterval, error)
	DeleteBusyInterval(id string) error

	// Schedules. Saving always writes a new revision for the date; reads
	// return the latest revision, so supersession is copy-then-replace.
	SaveSchedule(models.DailySchedule) error
	GetSchedule(date string) (models.DailySchedule, error)
	GetScheduleRevision(date string, revision int) (models.DailySchedule, error)

	// Completion records (append-only)
	AddCompletion(models.CompletionRecord) error
	GetCompletionsForTask(taskID string, limit int) ([]models.CompletionRecord, error)
	GetAllCompletions() ([]models.CompletionRecord, error)

	// Learned patterns
	SavePattern(models.LearnedPattern) error
	GetPattern(patternType, name string) (models.LearnedPattern, error)
}
