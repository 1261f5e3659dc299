package scheduler

import (
	"fmt"
	"sync"

	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

// State of the repair machine for one schedule.
type State string

const (
	StateStable    State = "stable"
	StateRepairing State = "repairing"
	StateFailed    State = "failed"
)

// DisruptionKind classifies what broke the day.
type DisruptionKind string

const (
	DisruptionUrgentTask     DisruptionKind = "urgent_task"
	DisruptionCalendarChange DisruptionKind = "calendar_change"
	DisruptionEnergyCrash    DisruptionKind = "energy_crash"
)

// Disruption is one incoming event against a stable schedule.
type Disruption struct {
	Kind       DisruptionKind
	At         string       // HH:MM, start of the affected window
	UrgentTask *models.Task // set for urgent_task
	EnergyDrop float64      // set for energy_crash, on the 1-3 scale
}

// RepairResult reports how a repair ended. On Failed the returned schedule is
// the prior stable one, byte for byte: a failed repair is never half-applied.
type RepairResult struct {
	State    State
	Schedule models.DailySchedule
	Reason   string
}

// Repairer incrementally repairs an accepted schedule. Repairs for a given
// date are serialized; the mutex keeps at most one in flight.
type Repairer struct {
	mu    sync.Mutex
	opt   *Optimizer
	state State
}

func NewRepairer(opt *Optimizer) *Repairer {
	return &Repairer{opt: opt, state: StateStable}
}

// State returns the current machine state.
func (r *Repairer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Repair re-plans only the window from the disruption onward. Slots ending
// before the window are kept untouched; affected tasks plus any urgent task
// are re-optimized into the remaining open time. req.Slots must be the
// date's availability recomputed against the current calendar, so a
// calendar_change is reflected by the caller handing in fresh slots.
func (r *Repairer) Repair(schedule models.DailySchedule, req Request, d Disruption) RepairResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateRepairing

	atMin, err := utils.ParseTimeToMinutes(d.At)
	if err != nil {
		r.state = StateFailed
		return RepairResult{State: StateFailed, Schedule: schedule, Reason: fmt.Sprintf("invalid disruption time %q", d.At)}
	}

	original := schedule.Clone()

	// Partition the existing schedule at the disruption point.
	var kept []models.ScheduledTask
	affected := map[string]bool{}
	for _, slot := range schedule.Slots {
		end, err := utils.ParseTimeToMinutes(slot.End)
		if err == nil && end <= atMin {
			kept = append(kept, slot)
			continue
		}
		affected[slot.TaskID] = true
	}

	// Tasks whose kept slots already ran count as satisfied dependencies for
	// the re-plan.
	completed := map[string]bool{}
	for id, done := range req.Completed {
		completed[id] = done
	}
	for _, slot := range kept {
		completed[slot.TaskID] = true
	}

	subTasks := make([]models.Task, 0, len(affected)+1)
	for _, t := range req.Tasks {
		if affected[t.ID] {
			subTasks = append(subTasks, t)
		}
	}
	if d.UrgentTask != nil {
		subTasks = append(subTasks, *d.UrgentTask)
	}

	subSlots := clipSlots(req.Slots, atMin, d)

	subReq := Request{
		Date:      req.Date,
		Tasks:     subTasks,
		Goals:     req.Goals,
		Slots:     subSlots,
		Completed: completed,
		BufferMin: req.BufferMin,
	}

	repaired, err := r.opt.Generate(subReq)
	if err != nil {
		r.state = StateFailed
		return RepairResult{State: StateFailed, Schedule: original, Reason: fmt.Sprintf("no feasible repair: %v", err)}
	}

	if d.UrgentTask != nil {
		placed := false
		for _, slot := range repaired.Slots {
			if slot.TaskID == d.UrgentTask.ID {
				placed = true
				break
			}
		}
		if !placed {
			r.state = StateFailed
			return RepairResult{State: StateFailed, Schedule: original, Reason: "urgent task could not be placed"}
		}
	}

	merged := original.Clone()
	merged.Slots = append(kept, repaired.Slots...)
	merged.Deferred = repaired.Deferred
	merged.Warnings = append(merged.Warnings, fmt.Sprintf("repaired from %s after %s", d.At, d.Kind))
	merged.Outcome = repaired.Outcome
	if len(merged.Slots) > 0 && merged.Outcome == models.OutcomeNoAvailableTime {
		merged.Outcome = models.OutcomePartial
	}
	if repaired.Confidence > 0 && repaired.Confidence < merged.Confidence {
		merged.Confidence = repaired.Confidence
	}

	r.state = StateStable
	return RepairResult{State: StateStable, Schedule: merged}
}

// clipSlots narrows availability to the affected window and applies an
// energy-crash drop.
func clipSlots(slots []models.TimeSlot, atMin int, d Disruption) []models.TimeSlot {
	var out []models.TimeSlot
	for _, s := range slots {
		start, end, err := s.SlotMinutes()
		if err != nil || end <= atMin {
			continue
		}
		if start < atMin {
			start = atMin
		}
		clipped := s
		clipped.Start = utils.FormatMinutes(start)
		clipped.DurationMin = end - start
		if d.Kind == DisruptionEnergyCrash && d.EnergyDrop > 0 {
			clipped.PredictedEnergy = models.ClampEnergy(clipped.PredictedEnergy - d.EnergyDrop)
		}
		out = append(out, clipped)
	}
	return out
}
