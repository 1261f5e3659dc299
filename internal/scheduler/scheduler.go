// Package scheduler assigns tasks to open time slots. Placement is a greedy
// seed over priority-ordered tasks followed by a bounded local-search
// improvement pass; both phases are deterministic so identical inputs always
// yield identical schedules.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/nexus/internal/constants"
	"github.com/julianstephens/nexus/internal/constraint"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
	"github.com/julianstephens/nexus/internal/validation"
)

// Deferral reasons surfaced to callers. Kept as stable strings because the
// CLI and quality report print them verbatim.
const (
	ReasonNoAvailableTime   = "no available time"
	ReasonDependencyBlocked = "dependency incomplete"
	ReasonDuePassed         = "due date already passed"
	ReasonTooSmallSlots     = "no slot meets minimum block size"
	ReasonEnergyFloor       = "energy threshold unmet on all slots"
	ReasonCapacity          = "insufficient remaining capacity"
	ReasonSoftDeadlineYield = "soft-deadline conflict: yielded to higher-priority goal"
)

// NoFeasibleScheduleError is returned only when open time and tasks both
// exist, yet not a single placement is feasible. It names the blocking
// constraint per task.
type NoFeasibleScheduleError struct {
	Date    string
	Blocked []models.Deferral
}

func (e *NoFeasibleScheduleError) Error() string {
	return fmt.Sprintf("no feasible schedule for %s: %d task(s) blocked", e.Date, len(e.Blocked))
}

// Weights tune the optimizer objective.
type Weights struct {
	Soft        float64 // average composite soft score of assignments
	GoalBalance float64 // closeness of per-goal time shares to targets
	Flow        float64 // bonus for adjacent tasks sharing a context
	Unscheduled float64 // penalty per unscheduled priority point
}

// DefaultWeights mirrors the configured defaults.
func DefaultWeights() Weights {
	return Weights{
		Soft:        constants.DefaultWeightSoftScore,
		GoalBalance: constants.DefaultWeightGoalBalance,
		Flow:        constants.DefaultWeightFlow,
		Unscheduled: constants.DefaultWeightUnscheduled,
	}
}

// Request is everything one optimization run needs.
type Request struct {
	Date      string
	Tasks     []models.Task
	Goals     []models.Goal
	Slots     []models.TimeSlot // open slots with predicted energy filled in
	Completed map[string]bool   // tasks finished before this run
	BufferMin int
}

// Optimizer maps tasks onto slots.
type Optimizer struct {
	evaluator     *constraint.Evaluator
	weights       Weights
	maxIterations int
}

func New(evaluator *constraint.Evaluator, weights Weights, maxIterations int) *Optimizer {
	if maxIterations <= 0 {
		maxIterations = constants.DefaultMaxIterations
	}
	return &Optimizer{evaluator: evaluator, weights: weights, maxIterations: maxIterations}
}

// freeBlock is an open stretch of slot time, in minutes from midnight.
type freeBlock struct {
	start, end      int
	predictedEnergy float64
	context         models.ContextTag
}

// placement is one assignment under construction.
type placement struct {
	task   models.Task
	start  int
	end    int
	result constraint.Result
}

// Generate builds the schedule for req.Date. A date with zero open time is a
// normal result (outcome no_available_time), not an error; a
// *NoFeasibleScheduleError comes back only when open time exists and nothing
// can be placed at all.
func (o *Optimizer) Generate(req Request) (models.DailySchedule, error) {
	if result := validation.ValidateTasks(req.Tasks, req.Goals); result.HasConflicts() {
		return models.DailySchedule{}, result.Err()
	}
	if result := validation.ValidateGoals(req.Goals); result.HasConflicts() {
		return models.DailySchedule{}, result.Err()
	}

	schedule := models.DailySchedule{
		Date:        req.Date,
		Strategy:    "greedy+local-search",
		GeneratedAt: time.Now(),
	}

	pending := o.pendingTasks(req)
	if len(pending) == 0 {
		schedule.Outcome = models.OutcomeComplete
		schedule.Confidence = 1
		return schedule, nil
	}

	if len(req.Slots) == 0 {
		schedule.Outcome = models.OutcomeNoAvailableTime
		for _, t := range pending {
			schedule.Deferred = append(schedule.Deferred, models.Deferral{TaskID: t.ID, Reason: ReasonNoAvailableTime})
		}
		return schedule, nil
	}

	blocks, err := blocksFromSlots(req.Slots)
	if err != nil {
		return models.DailySchedule{}, err
	}

	ctx := &constraint.Context{
		Date:         req.Date,
		Completed:    req.Completed,
		ScheduledEnd: map[string]int{},
		Goals:        goalIndex(req.Goals),
	}

	buffer := req.BufferMin
	if buffer < 0 {
		buffer = 0
	}

	placements, deferred := o.greedy(pending, blocks, ctx, buffer)
	budgetExhausted := false
	// Large task sets stay greedy-only; local search replays the whole
	// placement per swap and its cost grows with the task count.
	if len(placements) > 1 && len(pending) <= constants.GreedyTaskThreshold {
		placements, deferred, budgetExhausted = o.improve(placements, deferred, ctx, req)
	}

	o.fillSchedule(&schedule, placements, deferred, req, budgetExhausted)

	if len(placements) == 0 && len(pending) > 0 {
		return schedule, &NoFeasibleScheduleError{Date: req.Date, Blocked: schedule.Deferred}
	}
	return schedule, nil
}

// pendingTasks filters out deleted and completed tasks and orders the rest in
// the total placement order: deadline pressure, then goal priority, then
// creation order, then id, with dependencies hoisted ahead of dependents.
func (o *Optimizer) pendingTasks(req Request) []models.Task {
	goals := goalIndex(req.Goals)

	var pending []models.Task
	for _, t := range req.Tasks {
		if t.DeletedAt != nil || t.Completed() || req.Completed[t.ID] {
			continue
		}
		pending = append(pending, t)
	}

	pressure := make(map[string]float64, len(pending))
	for _, t := range pending {
		pressure[t.ID] = constraint.DeadlinePressure(t, req.Date, 0)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if pressure[a.ID] != pressure[b.ID] {
			return pressure[a.ID] > pressure[b.ID]
		}
		pa, pb := goalPriority(goals, a), goalPriority(goals, b)
		if pa != pb {
			return pa > pb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return topoOrder(pending)
}

// topoOrder stably hoists dependencies ahead of dependents. Cycles were
// rejected by validation before this runs.
func topoOrder(tasks []models.Task) []models.Task {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}

	visited := make(map[string]bool, len(tasks))
	ordered := make([]models.Task, 0, len(tasks))
	var visit func(t models.Task)
	visit = func(t models.Task) {
		if visited[t.ID] {
			return
		}
		visited[t.ID] = true
		if t.DependsOn != "" {
			if di, ok := index[t.DependsOn]; ok {
				visit(tasks[di])
			}
		}
		ordered = append(ordered, t)
	}
	for _, t := range tasks {
		visit(t)
	}
	return ordered
}

// greedy places each task into its best-scoring feasible block, splitting the
// block around the placement the way free time actually fragments.
func (o *Optimizer) greedy(tasks []models.Task, blocks []freeBlock, ctx *constraint.Context, buffer int) ([]placement, []models.Deferral) {
	var placements []placement
	var deferred []models.Deferral

	for _, task := range tasks {
		// splitBlocks copies, so holding the pre-task slice is enough to undo
		// every split this task causes.
		blocksBefore := blocks
		remaining := task.EstimatedMin
		chunks := 0
		var lastViolation string
		allBelowFloor := true

		for remaining > 0 && (chunks == 0 || remaining >= task.EffectiveMinBlock()) {
			chunkTask := task
			chunkTask.EstimatedMin = remaining

			bestIdx, bestStart, bestLen, bestResult, violation := o.bestBlock(chunkTask, blocks, ctx, remaining)
			if violation != "" {
				lastViolation = violation
			}
			if bestIdx < 0 {
				break
			}
			if !bestResult.BelowFloor {
				allBelowFloor = false
			}

			placements = append(placements, placement{
				task:   task,
				start:  bestStart,
				end:    bestStart + bestLen,
				result: bestResult,
			})
			blocks = splitBlocks(blocks, bestIdx, bestStart, bestStart+bestLen+buffer)
			ctx.ScheduledEnd[task.ID] = bestStart + bestLen
			remaining -= bestLen
			chunks++

			if !task.Splittable {
				break
			}
		}

		if chunks == 0 {
			deferred = append(deferred, models.Deferral{TaskID: task.ID, Reason: deferReason(task, ctx.Date, lastViolation)})
			continue
		}
		if allBelowFloor {
			// Every slot the task could use sat under the energy floor, so it
			// is deferred rather than forced into a bad fit. The blocks its
			// placements carved up are handed back to later tasks.
			for i := len(placements) - 1; i >= 0; i-- {
				if placements[i].task.ID == task.ID {
					placements = append(placements[:i], placements[i+1:]...)
				}
			}
			blocks = blocksBefore
			delete(ctx.ScheduledEnd, task.ID)
			deferred = append(deferred, models.Deferral{TaskID: task.ID, Reason: ReasonEnergyFloor})
		}
	}

	return placements, deferred
}

// bestBlock evaluates a task against every free block and returns the best
// feasible choice. Ties go to the earlier block, keeping runs reproducible.
func (o *Optimizer) bestBlock(task models.Task, blocks []freeBlock, ctx *constraint.Context, remaining int) (idx, start, length int, best constraint.Result, violation string) {
	idx = -1
	for i, b := range blocks {
		slot := blockSlot(b, ctx.Date)
		result := o.evaluator.Evaluate(task, slot, ctx)
		if !result.Feasible {
			violation = result.Violated
			continue
		}

		chunk := remaining
		if max := task.EffectiveMaxBlock(); chunk > max {
			chunk = max
		}
		if chunk > b.end-b.start {
			chunk = b.end - b.start
		}
		// Swallow a sub-minimum tail rather than stranding it.
		if leftover := remaining - chunk; task.Splittable && leftover > 0 && leftover < task.EffectiveMinBlock() && remaining <= b.end-b.start {
			chunk = remaining
		}

		if idx == -1 || result.Score > best.Score {
			idx, start, length, best = i, b.start, chunk, result
		}
	}
	return idx, start, length, best, violation
}

func blockSlot(b freeBlock, date string) models.TimeSlot {
	return models.TimeSlot{
		Date:            date,
		Start:           utils.FormatMinutes(b.start),
		End:             utils.FormatMinutes(b.end),
		DurationMin:     b.end - b.start,
		PredictedEnergy: b.predictedEnergy,
		Context:         b.context,
	}
}

// splitBlocks carves the placed interval (plus trailing buffer) out of block i.
func splitBlocks(blocks []freeBlock, i, from, to int) []freeBlock {
	b := blocks[i]
	out := append([]freeBlock{}, blocks[:i]...)
	if from-b.start >= constants.MinSlotMin {
		out = append(out, freeBlock{start: b.start, end: from, predictedEnergy: b.predictedEnergy, context: b.context})
	}
	if b.end-to >= constants.MinSlotMin {
		out = append(out, freeBlock{start: to, end: b.end, predictedEnergy: b.predictedEnergy, context: b.context})
	}
	out = append(out, blocks[i+1:]...)
	sort.Slice(out, func(a, c int) bool { return out[a].start < out[c].start })
	return out
}

func blocksFromSlots(slots []models.TimeSlot) ([]freeBlock, error) {
	blocks := make([]freeBlock, 0, len(slots))
	for _, s := range slots {
		start, end, err := s.SlotMinutes()
		if err != nil {
			return nil, fmt.Errorf("slot %s-%s on %s: %w", s.Start, s.End, s.Date, err)
		}
		blocks = append(blocks, freeBlock{start: start, end: end, predictedEnergy: s.PredictedEnergy, context: s.Context})
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].start < blocks[j].start })
	return blocks, nil
}

// deferReason maps the blocking hard constraint onto a reported reason.
func deferReason(task models.Task, date, violated string) string {
	switch violated {
	case constraint.HardDependency:
		return ReasonDependencyBlocked
	case constraint.HardDuePassed:
		return ReasonDuePassed
	case constraint.HardMinBlock:
		return ReasonTooSmallSlots
	}
	if task.SoftDue != "" && task.SoftDue <= date {
		return ReasonSoftDeadlineYield
	}
	return ReasonCapacity
}

func goalIndex(goals []models.Goal) map[string]models.Goal {
	out := make(map[string]models.Goal, len(goals))
	for _, g := range goals {
		out[g.ID] = g
	}
	return out
}

func goalPriority(goals map[string]models.Goal, t models.Task) int {
	if g, ok := goals[t.GoalID]; ok {
		return g.Priority
	}
	return 3
}
