package scheduler

import (
	"math"
	"sort"

	"github.com/julianstephens/nexus/internal/constraint"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

// improve runs a bounded local search over the greedy result: neighboring
// placement orders are replayed through the packer and kept when they place
// more tasks, or raise the objective at equal coverage. The budget is the
// hard iteration limit; running out returns
// the best order found so far with the exhausted flag set, never an error.
func (o *Optimizer) improve(placements []placement, deferred []models.Deferral, ctx *constraint.Context, req Request) ([]placement, []models.Deferral, bool) {
	order := o.pendingTasks(req)
	blocks, err := blocksFromSlots(req.Slots)
	if err != nil {
		return placements, deferred, false
	}

	buffer := req.BufferMin
	if buffer < 0 {
		buffer = 0
	}

	best := placements
	bestDeferred := deferred
	bestScore := o.objective(placements, deferred, req)
	budget := o.maxIterations

	for budget > 0 {
		improved := false
		for i := 0; i < len(order)-1 && budget > 0; i++ {
			budget--

			candidate := append([]models.Task(nil), order...)
			candidate[i], candidate[i+1] = candidate[i+1], candidate[i]

			runCtx := &constraint.Context{
				Date:         req.Date,
				Completed:    req.Completed,
				ScheduledEnd: map[string]int{},
				Goals:        ctx.Goals,
			}
			candPlacements, candDeferred := o.greedy(candidate, append([]freeBlock(nil), blocks...), runCtx, buffer)
			score := o.objective(candPlacements, candDeferred, req)
			// Placement count is compared before score: a reordering that
			// schedules fewer tasks is never an improvement, whatever the
			// weighted objective says.
			if len(candPlacements) > len(best) || (len(candPlacements) == len(best) && score > bestScore) {
				best = candPlacements
				bestDeferred = candDeferred
				bestScore = score
				order = candidate
				improved = true
			}
		}
		if !improved {
			return best, bestDeferred, false
		}
	}
	return best, bestDeferred, true
}

// objective is the weighted optimization target: average soft score of
// assignments, goal balance and flow continuity, minus a penalty for
// unscheduled high-priority tasks.
func (o *Optimizer) objective(placements []placement, deferred []models.Deferral, req Request) float64 {
	if len(placements) == 0 {
		return math.Inf(-1)
	}

	var softSum float64
	for _, p := range placements {
		softSum += p.result.Score
	}
	softAvg := softSum / float64(len(placements))

	balance := goalBalanceScore(placements, req.Goals)
	flow := flowScore(placements)
	penalty := unscheduledPenalty(deferred, req)

	return o.weights.Soft*softAvg + o.weights.GoalBalance*balance + o.weights.Flow*flow - o.weights.Unscheduled*penalty
}

// goalBalanceScore compares each goal's share of scheduled minutes against
// its target share; the mean absolute deviation is the loss.
func goalBalanceScore(placements []placement, goals []models.Goal) float64 {
	if len(goals) == 0 {
		return 1
	}

	minutes := map[string]int{}
	total := 0
	for _, p := range placements {
		minutes[p.task.GoalID] += p.end - p.start
		total += p.end - p.start
	}
	if total == 0 {
		return 0
	}

	targets := map[string]float64{}
	var targetSum float64
	for _, g := range goals {
		targets[g.ID] = g.TargetShare
		targetSum += g.TargetShare
	}
	// No explicit targets means an even spread is the target.
	if targetSum == 0 {
		for _, g := range goals {
			targets[g.ID] = 1.0 / float64(len(goals))
		}
	}

	var deviation float64
	for id, target := range targets {
		share := float64(minutes[id]) / float64(total)
		deviation += math.Abs(share - target)
	}
	return clamp01(1 - deviation/2)
}

// flowScore rewards sequentially grouping tasks of a similar cognitive type:
// the fraction of adjacent pairs sharing a context or category.
func flowScore(placements []placement) float64 {
	// Fewer than two placements have no adjacent pairs; flow contributes
	// nothing rather than a free bonus for scheduling less.
	if len(placements) < 2 {
		return 0
	}

	ordered := append([]placement(nil), placements...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start < ordered[j].start })

	matches := 0
	for i := 1; i < len(ordered); i++ {
		a, b := ordered[i-1].task, ordered[i].task
		if (a.Context != "" && a.Context == b.Context) || (a.Category != "" && a.Category == b.Category) {
			matches++
		}
	}
	return float64(matches) / float64(len(ordered)-1)
}

// unscheduledPenalty weighs deferred tasks by goal priority, normalized to [0,1].
func unscheduledPenalty(deferred []models.Deferral, req Request) float64 {
	if len(deferred) == 0 {
		return 0
	}
	goals := goalIndex(req.Goals)
	tasks := map[string]models.Task{}
	for _, t := range req.Tasks {
		tasks[t.ID] = t
	}

	var sum float64
	for _, d := range deferred {
		sum += float64(goalPriority(goals, tasks[d.TaskID])) / 5.0
	}
	return sum / float64(len(req.Tasks))
}

// fillSchedule converts final placements into the outward schedule shape.
func (o *Optimizer) fillSchedule(schedule *models.DailySchedule, placements []placement, deferred []models.Deferral, req Request, budgetExhausted bool) {
	ordered := append([]placement(nil), placements...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start < ordered[j].start })

	var softSum float64
	for _, p := range ordered {
		schedule.Slots = append(schedule.Slots, models.ScheduledTask{
			TaskID:       p.task.ID,
			Date:         req.Date,
			Start:        utils.FormatMinutes(p.start),
			End:          utils.FormatMinutes(p.end),
			EnergyScore:  p.result.Breakdown[constraint.SoftEnergy],
			ContextScore: p.result.Breakdown[constraint.SoftContext],
			Score:        p.result.Score,
			Confidence:   p.result.Score,
			Movable:      true,
			BufferMin:    req.BufferMin,
		})
		softSum += p.result.Score
	}

	schedule.Deferred = append(schedule.Deferred, deferred...)
	sort.Slice(schedule.Deferred, func(i, j int) bool { return schedule.Deferred[i].TaskID < schedule.Deferred[j].TaskID })

	switch {
	case len(schedule.Slots) == 0:
		schedule.Outcome = models.OutcomePartial
	case len(schedule.Deferred) == 0:
		schedule.Outcome = models.OutcomeComplete
	default:
		schedule.Outcome = models.OutcomePartial
	}

	if len(ordered) > 0 {
		schedule.Confidence = clamp01(softSum / float64(len(ordered)))
	}
	if budgetExhausted {
		schedule.Confidence *= 0.8
		schedule.Warnings = append(schedule.Warnings, "iteration budget exhausted; returning best solution found")
	}
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
