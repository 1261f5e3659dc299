package validation

import (
	"fmt"
	"sort"

	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidWindow     ConflictType = "invalid_working_window"
	ConflictInvalidDateTime   ConflictType = "invalid_datetime"
	ConflictDependencyCycle   ConflictType = "dependency_cycle"
	ConflictGoalCycle         ConflictType = "goal_cycle"
	ConflictUnknownDependency ConflictType = "unknown_dependency"
	ConflictUnknownGoal       ConflictType = "unknown_goal"
	ConflictOverlappingSlots  ConflictType = "overlapping_slots"
	ConflictOverlappingBusy   ConflictType = "overlapping_busy_intervals"
	ConflictInvalidDuration   ConflictType = "invalid_duration"
)

// Conflict represents a detected conflict in inputs or schedules
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Task/goal/slot identifiers involved
}

// Result contains all detected conflicts
type Result struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (r *Result) FormatReport() string {
	if !r.HasConflicts() {
		return "No conflicts detected."
	}
	report := "Conflicts detected:\n"
	for _, c := range r.Conflicts {
		report += fmt.Sprintf("- [%s] %s\n", c.Type, c.Description)
	}
	return report
}

func (r *Result) add(c Conflict) {
	r.Conflicts = append(r.Conflicts, c)
}

// Err converts the result into a single error, nil when clean. Inputs that
// fail validation are rejected before optimization, never partially applied.
func (r *Result) Err() error {
	if !r.HasConflicts() {
		return nil
	}
	return fmt.Errorf("validation failed: %s", r.Conflicts[0].Description)
}

// ValidateWorkingWindow checks a day start/end pair.
func ValidateWorkingWindow(dayStart, dayEnd string) *Result {
	result := &Result{}

	startMin, err := utils.ParseTimeToMinutes(dayStart)
	if err != nil {
		result.add(Conflict{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("invalid day start %q", dayStart),
		})
		return result
	}
	endMin, err := utils.ParseTimeToMinutes(dayEnd)
	if err != nil {
		result.add(Conflict{
			Type:        ConflictInvalidDateTime,
			Description: fmt.Sprintf("invalid day end %q", dayEnd),
		})
		return result
	}
	if startMin >= endMin {
		result.add(Conflict{
			Type:        ConflictInvalidWindow,
			Description: fmt.Sprintf("working hours start %s is not before end %s", dayStart, dayEnd),
		})
	}
	return result
}

// ValidateTasks checks the task set for malformed fields, dangling
// references and dependency cycles. Dependency edges are walked over an
// id-indexed adjacency map, not live object references, so a cycle anywhere
// in the set is caught regardless of insertion order.
func ValidateTasks(tasks []models.Task, goals []models.Goal) *Result {
	result := &Result{}

	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	goalIDs := make(map[string]bool, len(goals))
	for _, g := range goals {
		goalIDs[g.ID] = true
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		t := byID[id]
		if t.EstimatedMin <= 0 {
			result.add(Conflict{
				Type:        ConflictInvalidDuration,
				Description: fmt.Sprintf("task %q has non-positive estimated duration", t.Name),
				Items:       []string{t.ID},
			})
		}
		if t.HardDue != "" && !utils.ValidateDateFormat(t.HardDue) {
			result.add(Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("task %q has invalid hard due date %q", t.Name, t.HardDue),
				Items:       []string{t.ID},
			})
		}
		if t.SoftDue != "" && !utils.ValidateDateFormat(t.SoftDue) {
			result.add(Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("task %q has invalid soft due date %q", t.Name, t.SoftDue),
				Items:       []string{t.ID},
			})
		}
		if t.GoalID != "" && !goalIDs[t.GoalID] {
			result.add(Conflict{
				Type:        ConflictUnknownGoal,
				Description: fmt.Sprintf("task %q references unknown goal %s", t.Name, t.GoalID),
				Items:       []string{t.ID, t.GoalID},
			})
		}
		if t.DependsOn != "" {
			if _, ok := byID[t.DependsOn]; !ok {
				result.add(Conflict{
					Type:        ConflictUnknownDependency,
					Description: fmt.Sprintf("task %q depends on unknown task %s", t.Name, t.DependsOn),
					Items:       []string{t.ID, t.DependsOn},
				})
			}
		}
	}

	for _, id := range ids {
		if cycle := dependencyCycle(id, byID); len(cycle) > 0 {
			result.add(Conflict{
				Type:        ConflictDependencyCycle,
				Description: fmt.Sprintf("dependency cycle involving task %s", id),
				Items:       cycle,
			})
			break // one report is enough to reject the set
		}
	}

	return result
}

// dependencyCycle follows DependsOn edges from start and returns the visited
// chain if it loops back on itself.
func dependencyCycle(start string, byID map[string]models.Task) []string {
	seen := map[string]bool{}
	var chain []string
	cur := start
	for cur != "" {
		if seen[cur] {
			return chain
		}
		seen[cur] = true
		chain = append(chain, cur)
		next, ok := byID[cur]
		if !ok {
			return nil
		}
		cur = next.DependsOn
	}
	return nil
}

// ValidateGoals checks the goal tree for cycles and dangling parents.
func ValidateGoals(goals []models.Goal) *Result {
	result := &Result{}

	byID := make(map[string]models.Goal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		g := byID[id]
		if g.Priority < 1 || g.Priority > 5 {
			result.add(Conflict{
				Type:        ConflictInvalidDuration,
				Description: fmt.Sprintf("goal %q priority %d outside 1-5", g.Title, g.Priority),
				Items:       []string{g.ID},
			})
		}
		if g.ParentID != "" {
			if _, ok := byID[g.ParentID]; !ok {
				result.add(Conflict{
					Type:        ConflictUnknownGoal,
					Description: fmt.Sprintf("goal %q references unknown parent %s", g.Title, g.ParentID),
					Items:       []string{g.ID, g.ParentID},
				})
			}
		}
	}

	for _, id := range ids {
		seen := map[string]bool{}
		cur := id
		for cur != "" {
			if seen[cur] {
				result.add(Conflict{
					Type:        ConflictGoalCycle,
					Description: fmt.Sprintf("goal parent cycle involving %s", id),
					Items:       []string{id},
				})
				return result
			}
			seen[cur] = true
			g, ok := byID[cur]
			if !ok {
				break
			}
			cur = g.ParentID
		}
	}

	return result
}

// ValidateBusyIntervals rejects malformed or mutually overlapping busy
// intervals for a single date.
func ValidateBusyIntervals(date string, busy []models.BusyInterval) *Result {
	result := &Result{}

	type span struct {
		id         string
		start, end int
	}
	spans := make([]span, 0, len(busy))
	for _, b := range busy {
		if b.Date != date {
			continue
		}
		s, e, err := b.IntervalMinutes()
		if err != nil {
			result.add(Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("busy interval %s has invalid times: %v", b.ID, err),
				Date:        date,
				Items:       []string{b.ID},
			})
			continue
		}
		spans = append(spans, span{id: b.ID, start: s, end: e})
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].id < spans[j].id
	})
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			result.add(Conflict{
				Type:        ConflictOverlappingBusy,
				Description: fmt.Sprintf("busy intervals %s and %s overlap", spans[i-1].id, spans[i].id),
				Date:        date,
				Items:       []string{spans[i-1].id, spans[i].id},
			})
		}
	}

	return result
}

// ValidateSchedule verifies the no-overlap invariant on a generated schedule.
func ValidateSchedule(schedule models.DailySchedule) *Result {
	result := &Result{}

	slots := append([]models.ScheduledTask(nil), schedule.Slots...)
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start != slots[j].Start {
			return slots[i].Start < slots[j].Start
		}
		return slots[i].TaskID < slots[j].TaskID
	})

	for i := 1; i < len(slots); i++ {
		prevEnd, err := utils.ParseTimeToMinutes(slots[i-1].End)
		if err != nil {
			continue
		}
		curStart, err := utils.ParseTimeToMinutes(slots[i].Start)
		if err != nil {
			continue
		}
		if curStart < prevEnd {
			result.add(Conflict{
				Type:        ConflictOverlappingSlots,
				Description: fmt.Sprintf("scheduled tasks %s and %s overlap", slots[i-1].TaskID, slots[i].TaskID),
				Date:        schedule.Date,
				Items:       []string{slots[i-1].TaskID, slots[i].TaskID},
			})
		}
	}

	return result
}
