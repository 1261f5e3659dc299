// Package planner composes the scheduling pipeline behind one facade:
// availability, prediction, constraint scoring, optimization, assessment,
// feedback ingestion and repair. Operations on one date's schedule are
// serialized; different dates proceed independently.
package planner

import (
	"fmt"
	"sync"

	"github.com/julianstephens/nexus/internal/availability"
	"github.com/julianstephens/nexus/internal/constants"
	"github.com/julianstephens/nexus/internal/constraint"
	"github.com/julianstephens/nexus/internal/feedback"
	"github.com/julianstephens/nexus/internal/logger"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/prediction"
	"github.com/julianstephens/nexus/internal/quality"
	"github.com/julianstephens/nexus/internal/scheduler"
	"github.com/julianstephens/nexus/internal/utils"
	"github.com/julianstephens/nexus/internal/validation"
)

// Config carries the settings one engine instance runs under.
type Config struct {
	Settings      models.Settings
	MaxIterations int
}

// Engine is the scheduling-and-learning core. It performs no I/O itself;
// tasks, goals, busy intervals and completion records arrive as plain
// records and results go back the same way.
type Engine struct {
	calc     *availability.Calculator
	duration *prediction.DurationModel
	energy   *prediction.EnergyModel
	opt      *scheduler.Optimizer
	repairer *scheduler.Repairer
	ingestor *feedback.Ingestor
	window   availability.Window

	mu        sync.Mutex
	dateLocks map[string]*sync.Mutex
}

// New builds an engine around existing prediction models (restored from
// persisted samples by the caller).
func New(cfg Config, duration *prediction.DurationModel, energy *prediction.EnergyModel) *Engine {
	settings := cfg.Settings
	models.ApplyDefaultSettings(&settings)

	weights := scheduler.Weights{
		Soft:        settings.WeightSoft,
		GoalBalance: settings.WeightGoals,
		Flow:        settings.WeightFlow,
		Unscheduled: constants.DefaultWeightUnscheduled,
	}
	evaluator := constraint.NewEvaluator(constants.DefaultEnergyMatchFloor)
	opt := scheduler.New(evaluator, weights, cfg.MaxIterations)

	return &Engine{
		calc:      availability.New(settings.MinSlotMin),
		duration:  duration,
		energy:    energy,
		opt:       opt,
		repairer:  scheduler.NewRepairer(opt),
		ingestor:  feedback.NewIngestor(duration, energy),
		window:    availability.WindowFromSettings(settings),
		dateLocks: map[string]*sync.Mutex{},
	}
}

// lockDate serializes work per date: at most one optimization or repair in
// flight for a given day.
func (e *Engine) lockDate(date string) func() {
	e.mu.Lock()
	l, ok := e.dateLocks[date]
	if !ok {
		l = &sync.Mutex{}
		e.dateLocks[date] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// GenerateSchedule derives availability for the date, predicts per-slot
// energy and runs the optimizer.
func (e *Engine) GenerateSchedule(date string, tasks []models.Task, goals []models.Goal, busy []models.BusyInterval, completed map[string]bool) (models.DailySchedule, error) {
	unlock := e.lockDate(date)
	defer unlock()

	if !utils.ValidateDateFormat(date) {
		return models.DailySchedule{}, fmt.Errorf("invalid date %q", date)
	}
	if result := validation.ValidateBusyIntervals(date, busy); result.HasConflicts() {
		return models.DailySchedule{}, result.Err()
	}

	slots, err := e.slotsFor(date, busy)
	if err != nil {
		return models.DailySchedule{}, err
	}

	schedule, err := e.opt.Generate(scheduler.Request{
		Date:      date,
		Tasks:     tasks,
		Goals:     goals,
		Slots:     slots,
		Completed: completed,
		BufferMin: constants.DefaultBufferMin,
	})
	if err != nil {
		return schedule, err
	}

	logger.Debug("schedule generated", "date", date, "placed", len(schedule.Slots), "deferred", len(schedule.Deferred))
	return schedule, nil
}

// AssessSchedule is a pure pass-through to the quality assessor.
func (e *Engine) AssessSchedule(schedule models.DailySchedule, tasks []models.Task, goals []models.Goal) quality.Report {
	return quality.Assess(schedule, tasks, goals)
}

// IngestFeedback feeds one completion record into the models.
func (e *Engine) IngestFeedback(rec models.CompletionRecord, task models.Task) (feedback.ModelUpdateResult, error) {
	return e.ingestor.Ingest(rec, task)
}

// MarkIngested primes feedback dedupe state from persisted records.
func (e *Engine) MarkIngested(records []models.CompletionRecord) {
	e.ingestor.MarkIngested(records)
}

// RepairSchedule repairs the affected window of an accepted schedule. The
// busy set must reflect the calendar after the disruption.
func (e *Engine) RepairSchedule(schedule models.DailySchedule, d scheduler.Disruption, tasks []models.Task, goals []models.Goal, busy []models.BusyInterval, completed map[string]bool) scheduler.RepairResult {
	unlock := e.lockDate(schedule.Date)
	defer unlock()

	slots, err := e.slotsFor(schedule.Date, busy)
	if err != nil {
		return scheduler.RepairResult{State: scheduler.StateFailed, Schedule: schedule, Reason: err.Error()}
	}

	return e.repairer.Repair(schedule, scheduler.Request{
		Date:      schedule.Date,
		Tasks:     tasks,
		Goals:     goals,
		Slots:     slots,
		Completed: completed,
		BufferMin: constants.DefaultBufferMin,
	}, d)
}

// DurationEstimate exposes the duration model's view of a task.
func (e *Engine) DurationEstimate(task models.Task, hourOfDay int) prediction.Estimate {
	return e.duration.Predict(task, hourOfDay, task.Energy)
}

// slotsFor computes open slots and fills in predicted energy.
func (e *Engine) slotsFor(date string, busy []models.BusyInterval) ([]models.TimeSlot, error) {
	slots, err := e.calc.Compute(date, busy, e.window)
	if err != nil {
		return nil, err
	}
	for i, s := range slots {
		startMin, _, err := s.SlotMinutes()
		if err != nil {
			continue
		}
		est := e.energy.PredictAt(startMin, busyOn(date, busy), prediction.DayInputs{})
		slots[i].PredictedEnergy = est.Value
	}
	return slots, nil
}

func busyOn(date string, busy []models.BusyInterval) []models.BusyInterval {
	var out []models.BusyInterval
	for _, b := range busy {
		if b.Date == date {
			out = append(out, b)
		}
	}
	return out
}
