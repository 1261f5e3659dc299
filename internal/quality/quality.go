// Package quality scores a generated daily schedule. Assessment is a pure
// function: no side effects, identical input gives identical output.
package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

// Suggestion is one bounded improvement hint derived from a weak sub-metric.
type Suggestion struct {
	Metric  string `json:"metric"`
	Message string `json:"message"`
}

// Report is the full quality assessment of one daily schedule.
type Report struct {
	EnergyEfficiency float64      `json:"energy_efficiency"`
	GoalBalance      float64      `json:"goal_balance"`
	Sustainability   float64      `json:"sustainability"`
	Overall          float64      `json:"overall"`
	Suggestions      []Suggestion `json:"suggestions,omitempty"`
}

const (
	metricEnergy         = "energy_efficiency"
	metricGoalBalance    = "goal_balance"
	metricSustainability = "sustainability"

	// maxSuggestions bounds the advice list.
	maxSuggestions = 3

	// minRecoveryGapMin is the breathing room expected between two
	// high-energy blocks.
	minRecoveryGapMin = 10
)

// Assess scores the schedule against the task and goal sets it was built from.
func Assess(schedule models.DailySchedule, tasks []models.Task, goals []models.Goal) Report {
	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	report := Report{
		EnergyEfficiency: energyEfficiency(schedule),
		GoalBalance:      goalBalance(schedule, byID, goals),
		Sustainability:   sustainability(schedule, byID),
	}
	report.Overall = 0.4*report.EnergyEfficiency + 0.3*report.GoalBalance + 0.3*report.Sustainability
	report.Suggestions = suggestions(report, schedule)
	return report
}

// energyEfficiency averages the per-assignment energy alignment recorded by
// the evaluator.
func energyEfficiency(schedule models.DailySchedule) float64 {
	if len(schedule.Slots) == 0 {
		return 0
	}
	var sum float64
	for _, s := range schedule.Slots {
		sum += s.EnergyScore
	}
	return sum / float64(len(schedule.Slots))
}

// goalBalance measures how close each goal's share of scheduled time sits to
// its target; lower deviation scores higher.
func goalBalance(schedule models.DailySchedule, tasks map[string]models.Task, goals []models.Goal) float64 {
	if len(goals) == 0 {
		return 1
	}
	if len(schedule.Slots) == 0 {
		return 0
	}

	minutes := map[string]int{}
	total := 0
	for _, s := range schedule.Slots {
		d := s.DurationMin()
		minutes[tasks[s.TaskID].GoalID] += d
		total += d
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

// sustainability penalizes back-to-back high-energy blocks with no recovery
// gap between them.
func sustainability(schedule models.DailySchedule, tasks map[string]models.Task) float64 {
	if len(schedule.Slots) < 2 {
		return 1
	}

	ordered := append([]models.ScheduledTask(nil), schedule.Slots...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	violations := 0
	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if tasks[prev.TaskID].Energy != models.EnergyHigh || tasks[cur.TaskID].Energy != models.EnergyHigh {
			continue
		}
		prevEnd, err1 := utils.ParseTimeToMinutes(prev.End)
		curStart, err2 := utils.ParseTimeToMinutes(cur.Start)
		if err1 != nil || err2 != nil {
			continue
		}
		if curStart-prevEnd < minRecoveryGapMin {
			violations++
		}
	}
	return 1 - float64(violations)/float64(len(ordered)-1)
}

// suggestions derives a bounded list of hints, weakest sub-metric first.
func suggestions(report Report, schedule models.DailySchedule) []Suggestion {
	type scored struct {
		metric string
		score  float64
		msg    string
	}
	candidates := []scored{
		{metricEnergy, report.EnergyEfficiency, "several tasks sit in slots that do not match their energy requirement; consider moving demanding work to peak hours"},
		{metricGoalBalance, report.GoalBalance, "scheduled time is skewed away from goal targets; rebalance tomorrow's plan toward under-served goals"},
		{metricSustainability, report.Sustainability, "high-energy blocks run back to back; add recovery buffers between them"},
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score < candidates[j].score })

	var out []Suggestion
	for _, c := range candidates {
		if c.score >= 0.7 || len(out) >= maxSuggestions {
			continue
		}
		out = append(out, Suggestion{Metric: c.metric, Message: c.msg})
	}
	if len(schedule.Deferred) > 0 && len(out) < maxSuggestions {
		out = append(out, Suggestion{
			Metric:  "deferred_tasks",
			Message: fmt.Sprintf("%d task(s) were deferred; review their reasons and free up capacity or relax constraints", len(schedule.Deferred)),
		})
	}
	return out
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
