// Package constraint scores (task, slot) pairings. Hard constraints run in a
// fixed order and fail a pairing outright; soft constraints contribute to a
// composite score in [0,1]. Constraints are a registry of pure functions
// evaluated through one uniform contract, so callers always get a structured
// reason for infeasibility rather than an opaque failure.
package constraint

import (
	"fmt"
	"math"

	"github.com/julianstephens/nexus/internal/constants"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

// Constraint IDs, stable across releases: they appear in deferral reasons and
// quality reports.
const (
	HardMinBlock   = "min_block_size"
	HardDependency = "dependency_incomplete"
	HardDuePassed  = "due_date_passed"
	SoftEnergy     = "energy_match"
	SoftContext    = "context_match"
	SoftDeadline   = "deadline_pressure"
)

// Context carries the surrounding state a pairing is judged against.
type Context struct {
	Date            string
	Completed       map[string]bool // task id -> done before today
	ScheduledEnd    map[string]int  // task id -> end (minutes) already placed on this date
	Goals           map[string]models.Goal
	UsableMinPerDay int // capacity basis for deadline pressure; defaults to 360
}

// Result is the outcome of evaluating one (task, slot) pairing.
type Result struct {
	Feasible   bool
	Violated   string             // hard constraint id when infeasible
	Reason     string             // human-readable reason when infeasible
	Score      float64            // composite soft score in [0,1]
	Breakdown  map[string]float64 // per-constraint soft scores
	BelowFloor bool               // energy match under the configured floor
}

type hardRule struct {
	id string
	fn func(models.Task, models.TimeSlot, *Context) (bool, string)
}

type softRule struct {
	id     string
	weight float64
	fn     func(models.Task, models.TimeSlot, *Context) float64
}

// Evaluator holds the fixed constraint registry. EnergyFloor is the
// energy-match score under which a pairing keeps only half its weight; it
// never hard-fails here; deferral on an all-slots miss is the optimizer's
// call, since it needs the whole day in view.
type Evaluator struct {
	EnergyFloor float64
	hard        []hardRule
	soft        []softRule
}

func NewEvaluator(energyFloor float64) *Evaluator {
	e := &Evaluator{EnergyFloor: energyFloor}
	e.hard = []hardRule{
		{id: HardMinBlock, fn: minBlockSize},
		{id: HardDependency, fn: dependencySatisfied},
		{id: HardDuePassed, fn: dueNotPassed},
	}
	e.soft = []softRule{
		{id: SoftEnergy, weight: 0.45, fn: energyMatch},
		{id: SoftContext, weight: 0.25, fn: contextMatch},
		{id: SoftDeadline, weight: 0.30, fn: deadlinePressure},
	}
	return e
}

// Evaluate scores one pairing. Hard constraints are checked in registry
// order; the first violation wins and soft scoring is skipped.
func (e *Evaluator) Evaluate(task models.Task, slot models.TimeSlot, ctx *Context) Result {
	for _, h := range e.hard {
		ok, reason := h.fn(task, slot, ctx)
		if !ok {
			return Result{Feasible: false, Violated: h.id, Reason: reason}
		}
	}

	breakdown := make(map[string]float64, len(e.soft))
	var weighted, totalWeight float64
	for _, s := range e.soft {
		score := clamp01(s.fn(task, slot, ctx))
		breakdown[s.id] = score
		weighted += score * s.weight
		totalWeight += s.weight
	}

	result := Result{
		Feasible:  true,
		Score:     weighted / totalWeight,
		Breakdown: breakdown,
	}
	if breakdown[SoftEnergy] < e.EnergyFloor {
		result.BelowFloor = true
		result.Score *= 0.5
	}
	return result
}

func minBlockSize(task models.Task, slot models.TimeSlot, _ *Context) (bool, string) {
	need := task.EffectiveMinBlock()
	if slot.DurationMin < need {
		return false, fmt.Sprintf("slot %s-%s is %d min, task needs at least %d", slot.Start, slot.End, slot.DurationMin, need)
	}
	return true, ""
}

func dependencySatisfied(task models.Task, slot models.TimeSlot, ctx *Context) (bool, string) {
	if task.DependsOn == "" {
		return true, ""
	}
	if ctx.Completed[task.DependsOn] {
		return true, ""
	}
	if end, ok := ctx.ScheduledEnd[task.DependsOn]; ok {
		slotStart, err := utils.ParseTimeToMinutes(slot.Start)
		if err == nil && end <= slotStart {
			return true, ""
		}
		return false, fmt.Sprintf("dependency %s ends after slot start %s", task.DependsOn, slot.Start)
	}
	return false, fmt.Sprintf("dependency %s not completed and not scheduled earlier", task.DependsOn)
}

func dueNotPassed(task models.Task, slot models.TimeSlot, _ *Context) (bool, string) {
	if task.HardDue != "" && task.HardDue < slot.Date {
		return false, fmt.Sprintf("hard due date %s is before slot date %s", task.HardDue, slot.Date)
	}
	return true, ""
}

// energyMatch is the similarity between the task's required energy and the
// slot's predicted energy on the 1-3 scale.
func energyMatch(task models.Task, slot models.TimeSlot, _ *Context) float64 {
	predicted := slot.PredictedEnergy
	if predicted == 0 {
		predicted = models.EnergyMedium.Score()
	}
	span := models.EnergyScaleMax - models.EnergyScaleMin
	return 1 - math.Abs(task.Energy.Score()-predicted)/span
}

func contextMatch(task models.Task, slot models.TimeSlot, _ *Context) float64 {
	switch {
	case task.Context == "" || task.Context == models.ContextAny:
		return 0.7
	case task.Context == slot.Context:
		return 1.0
	default:
		return 0.3
	}
}

func deadlinePressure(task models.Task, slot models.TimeSlot, ctx *Context) float64 {
	return DeadlinePressure(task, slot.Date, ctx.UsableMinPerDay)
}

// DeadlinePressure rises nonlinearly as the days remaining approach the days
// of effort still needed: r^p/(1+r^p) where r = needed/remaining and p is the
// configured steepening exponent. The optimizer also uses it directly as its
// first tie-break key.
func DeadlinePressure(task models.Task, date string, usableMinPerDay int) float64 {
	due := task.HardDue
	if due == "" {
		due = task.SoftDue
	}
	if due == "" {
		return 0
	}

	dueDate, err := utils.ParseDate(due)
	if err != nil {
		return 0
	}
	onDate, err := utils.ParseDate(date)
	if err != nil {
		return 0
	}

	daysRemaining := dueDate.Sub(onDate).Hours()/24 + 1 // due today still leaves today
	if daysRemaining < 0.25 {
		daysRemaining = 0.25
	}

	if usableMinPerDay <= 0 {
		usableMinPerDay = 360
	}
	daysNeeded := float64(task.EstimatedMin) / float64(usableMinPerDay)
	if daysNeeded <= 0 {
		return 0
	}

	rp := math.Pow(daysNeeded/daysRemaining, constants.DefaultDeadlinePressureHP)
	return rp / (1 + rp)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
