package scheduler

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/nexus/internal/constraint"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

func newTestOptimizer() *Optimizer {
	return New(constraint.NewEvaluator(0.25), DefaultWeights(), 200)
}

func slot(date, start, end string, energy float64, context models.ContextTag) models.TimeSlot {
	s, _ := utils.ParseTimeToMinutes(start)
	e, _ := utils.ParseTimeToMinutes(end)
	return models.TimeSlot{
		Date:            date,
		Start:           start,
		End:             end,
		DurationMin:     e - s,
		PredictedEnergy: energy,
		Context:         context,
	}
}

func task(id, name string, minutes int, energy models.EnergyLevel) models.Task {
	return models.Task{
		ID:           id,
		Name:         name,
		Complexity:   3,
		EstimatedMin: minutes,
		Energy:       energy,
		Status:       models.StatusPending,
		CreatedAt:    time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestGenerate_HighEnergyTaskGetsPeakSlot(t *testing.T) {
	opt := newTestOptimizer()

	req := Request{
		Date: "2026-03-02",
		Tasks: []models.Task{
			task("deep", "Deep work", 60, models.EnergyHigh),
		},
		Slots: []models.TimeSlot{
			slot("2026-03-02", "09:00", "11:00", 2.8, models.ContextFocused),
			slot("2026-03-02", "14:00", "16:00", 1.4, models.ContextFocused),
		},
	}

	schedule, err := opt.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(schedule.Slots) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(schedule.Slots))
	}
	if schedule.Slots[0].Start != "09:00" {
		t.Errorf("expected high-energy task in the 09:00 peak slot, got %s", schedule.Slots[0].Start)
	}
	if schedule.Outcome != models.OutcomeComplete {
		t.Errorf("expected complete outcome, got %s", schedule.Outcome)
	}
}

func TestGenerate_EnergyFloorWithdrawalReleasesBlock(t *testing.T) {
	opt := newTestOptimizer()

	// The high-energy task places into the only slot, then gets withdrawn
	// because the slot sits under the energy floor. The slot must come back
	// whole for the 120-minute task that needs all of it.
	deep := task("deep", "Deep work", 60, models.EnergyHigh)
	long := task("long", "Routine batch", 120, models.EnergyMedium)
	long.CreatedAt = deep.CreatedAt.Add(time.Minute)

	req := Request{
		Date:  "2026-03-02",
		Tasks: []models.Task{deep, long},
		Slots: []models.TimeSlot{
			slot("2026-03-02", "09:00", "11:00", 1.0, models.ContextFocused),
		},
	}

	schedule, err := opt.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(schedule.Slots) != 1 || schedule.Slots[0].TaskID != "long" {
		t.Fatalf("expected the 120m task placed, got %+v", schedule.Slots)
	}
	if schedule.Slots[0].Start != "09:00" || schedule.Slots[0].End != "11:00" {
		t.Errorf("expected the full 09:00-11:00 block, got %s-%s", schedule.Slots[0].Start, schedule.Slots[0].End)
	}
	if len(schedule.Deferred) != 1 || schedule.Deferred[0].TaskID != "deep" {
		t.Fatalf("expected only the high-energy task deferred, got %+v", schedule.Deferred)
	}
	if schedule.Deferred[0].Reason != ReasonEnergyFloor {
		t.Errorf("expected reason %q, got %q", ReasonEnergyFloor, schedule.Deferred[0].Reason)
	}
}

func TestFlowScore_NoAdjacentPairs(t *testing.T) {
	if got := flowScore(nil); got != 0 {
		t.Errorf("no placements must contribute no flow, got %.2f", got)
	}
	single := []placement{{task: task("solo", "Solo", 60, models.EnergyMedium), start: 540, end: 600}}
	if got := flowScore(single); got != 0 {
		t.Errorf("one placement has no pairs to reward, got %.2f", got)
	}
}

func TestGenerate_DependentDeferredWhenDependencyCannotBePlaced(t *testing.T) {
	opt := newTestOptimizer()

	// task-a cannot fit anywhere, so task-b must defer on the dependency.
	a := task("task-a", "First", 120, models.EnergyMedium)
	b := task("task-b", "Second", 60, models.EnergyMedium)
	b.DependsOn = "task-a"
	b.CreatedAt = a.CreatedAt.Add(time.Minute)
	c := task("task-c", "Filler", 30, models.EnergyMedium)
	c.CreatedAt = a.CreatedAt.Add(2 * time.Minute)

	req := Request{
		Date:  "2026-03-02",
		Tasks: []models.Task{b, a, c},
		Slots: []models.TimeSlot{
			slot("2026-03-02", "09:00", "10:30", 2.0, models.ContextFocused),
		},
	}

	schedule, err := opt.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(schedule.Slots) != 1 || schedule.Slots[0].TaskID != "task-c" {
		t.Fatalf("expected only task-c placed, got %+v", schedule.Slots)
	}

	reasons := map[string]string{}
	for _, d := range schedule.Deferred {
		reasons[d.TaskID] = d.Reason
	}
	if reasons["task-a"] != ReasonTooSmallSlots {
		t.Errorf("expected task-a deferred as %q, got %q", ReasonTooSmallSlots, reasons["task-a"])
	}
	if reasons["task-b"] != ReasonDependencyBlocked {
		t.Errorf("expected task-b deferred as %q, got %q", ReasonDependencyBlocked, reasons["task-b"])
	}
	if schedule.Outcome != models.OutcomePartial {
		t.Errorf("expected partial outcome, got %s", schedule.Outcome)
	}
}

func TestGenerate_DependentScheduledAfterDependency(t *testing.T) {
	opt := newTestOptimizer()

	a := task("task-a", "First", 45, models.EnergyMedium)
	b := task("task-b", "Second", 45, models.EnergyMedium)
	b.DependsOn = "task-a"

	req := Request{
		Date:  "2026-03-02",
		Tasks: []models.Task{b, a},
		Slots: []models.TimeSlot{
			slot("2026-03-02", "09:00", "12:00", 2.0, models.ContextFocused),
		},
	}

	schedule, err := opt.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(schedule.Slots) != 2 {
		t.Fatalf("expected both tasks placed, got %d", len(schedule.Slots))
	}

	var aEnd, bStart int
	for _, s := range schedule.Slots {
		switch s.TaskID {
		case "task-a":
			aEnd, _ = utils.ParseTimeToMinutes(s.End)
		case "task-b":
			bStart, _ = utils.ParseTimeToMinutes(s.Start)
		}
	}
	if bStart < aEnd {
		t.Errorf("dependent starts at %d before dependency ends at %d", bStart, aEnd)
	}
}

func TestGenerate_NoOpenTimeIsNormalResult(t *testing.T) {
	opt := newTestOptimizer()

	req := Request{
		Date:  "2026-03-02",
		Tasks: []models.Task{task("t1", "Anything", 30, models.EnergyMedium)},
		Slots: nil,
	}

	schedule, err := opt.Generate(req)
	if err != nil {
		t.Fatalf("a fully busy day must not be an error, got %v", err)
	}
	if schedule.Outcome != models.OutcomeNoAvailableTime {
		t.Errorf("expected no_available_time outcome, got %s", schedule.Outcome)
	}
	if len(schedule.Deferred) != 1 || schedule.Deferred[0].Reason != ReasonNoAvailableTime {
		t.Errorf("expected deferral with %q, got %+v", ReasonNoAvailableTime, schedule.Deferred)
	}
}

func TestGenerate_InfeasibleWithOpenTimeReturnsError(t *testing.T) {
	opt := newTestOptimizer()

	// The only open slot is shorter than the non-splittable task.
	req := Request{
		Date:  "2026-03-02",
		Tasks: []models.Task{task("big", "Big block", 120, models.EnergyMedium)},
		Slots: []models.TimeSlot{
			slot("2026-03-02", "09:00", "09:30", 2.0, models.ContextAdmin),
		},
	}

	_, err := opt.Generate(req)
	var infeasible *NoFeasibleScheduleError
	if !errors.As(err, &infeasible) {
		t.Fatalf("expected NoFeasibleScheduleError, got %v", err)
	}
	if len(infeasible.Blocked) != 1 || infeasible.Blocked[0].Reason != ReasonTooSmallSlots {
		t.Errorf("expected blocked reason %q, got %+v", ReasonTooSmallSlots, infeasible.Blocked)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	mk := func() (models.DailySchedule, error) {
		opt := newTestOptimizer()
		req := Request{
			Date: "2026-03-02",
			Tasks: []models.Task{
				task("t1", "Write report", 60, models.EnergyHigh),
				task("t2", "Email triage", 30, models.EnergyLow),
				task("t3", "Code review", 45, models.EnergyMedium),
			},
			Goals: []models.Goal{
				{ID: "g1", Title: "Work", Priority: 4},
			},
			Slots: []models.TimeSlot{
				slot("2026-03-02", "09:00", "11:00", 2.7, models.ContextFocused),
				slot("2026-03-02", "13:00", "14:00", 1.8, models.ContextAdmin),
				slot("2026-03-02", "15:00", "16:30", 2.2, models.ContextFocused),
			},
		}
		return opt.Generate(req)
	}

	first, err := mk()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := mk()
		if err != nil {
			t.Fatalf("Generate failed on run %d: %v", i, err)
		}
		first.GeneratedAt = time.Time{}
		next.GeneratedAt = time.Time{}
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("run %d produced a different schedule:\nfirst: %+v\nnext: %+v", i, first, next)
		}
	}
}

func TestGenerate_NoOverlappingSlots(t *testing.T) {
	opt := newTestOptimizer()

	req := Request{
		Date: "2026-03-02",
		Tasks: []models.Task{
			task("t1", "A", 50, models.EnergyMedium),
			task("t2", "B", 40, models.EnergyMedium),
			task("t3", "C", 30, models.EnergyLow),
			task("t4", "D", 90, models.EnergyHigh),
		},
		Slots: []models.TimeSlot{
			slot("2026-03-02", "08:00", "12:00", 2.4, models.ContextFocused),
			slot("2026-03-02", "13:00", "15:00", 1.9, models.ContextAdmin),
		},
		BufferMin: 5,
	}

	schedule, err := opt.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	type span struct{ start, end int }
	var spans []span
	for _, s := range schedule.Slots {
		st, _ := utils.ParseTimeToMinutes(s.Start)
		en, _ := utils.ParseTimeToMinutes(s.End)
		spans = append(spans, span{st, en})
	}
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			a, b := spans[i], spans[j]
			if a.start < b.end && b.start < a.end {
				t.Errorf("slots %d and %d overlap: %+v %+v", i, j, a, b)
			}
		}
	}
}

func TestGenerate_SplittableTaskChunks(t *testing.T) {
	opt := newTestOptimizer()

	split := task("split", "Course reading", 90, models.EnergyMedium)
	split.Splittable = true

	req := Request{
		Date:  "2026-03-02",
		Tasks: []models.Task{split},
		Slots: []models.TimeSlot{
			slot("2026-03-02", "09:00", "10:00", 2.0, models.ContextFocused),
			slot("2026-03-02", "14:00", "15:00", 2.0, models.ContextFocused),
		},
	}

	schedule, err := opt.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	total := 0
	for _, s := range schedule.Slots {
		if s.TaskID != "split" {
			t.Fatalf("unexpected task in slot: %s", s.TaskID)
		}
		total += s.DurationMin()
	}
	if total != 90 {
		t.Errorf("expected 90 scheduled minutes across chunks, got %d", total)
	}
	if len(schedule.Slots) < 2 {
		t.Errorf("expected the task split across slots, got %d placement(s)", len(schedule.Slots))
	}
}

func TestGenerate_HardDuePassedDefers(t *testing.T) {
	opt := newTestOptimizer()

	overdue := task("late", "Missed deliverable", 30, models.EnergyMedium)
	overdue.HardDue = "2026-03-01"
	ok := task("ok", "Current work", 30, models.EnergyMedium)

	req := Request{
		Date:  "2026-03-02",
		Tasks: []models.Task{overdue, ok},
		Slots: []models.TimeSlot{
			slot("2026-03-02", "09:00", "11:00", 2.0, models.ContextFocused),
		},
	}

	schedule, err := opt.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(schedule.Slots) != 1 || schedule.Slots[0].TaskID != "ok" {
		t.Fatalf("expected only the current task placed, got %+v", schedule.Slots)
	}
	if len(schedule.Deferred) != 1 || schedule.Deferred[0].Reason != ReasonDuePassed {
		t.Errorf("expected overdue task deferred with %q, got %+v", ReasonDuePassed, schedule.Deferred)
	}
}

func TestGenerate_CompletedAndDeletedTasksSkipped(t *testing.T) {
	opt := newTestOptimizer()

	done := task("done", "Finished", 30, models.EnergyMedium)
	done.Status = models.StatusCompleted
	now := time.Now()
	gone := task("gone", "Removed", 30, models.EnergyMedium)
	gone.DeletedAt = &now

	req := Request{
		Date:  "2026-03-02",
		Tasks: []models.Task{done, gone},
		Slots: []models.TimeSlot{
			slot("2026-03-02", "09:00", "10:00", 2.0, models.ContextFocused),
		},
	}

	schedule, err := opt.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(schedule.Slots) != 0 || len(schedule.Deferred) != 0 {
		t.Errorf("expected an empty schedule, got %+v", schedule)
	}
	if schedule.Outcome != models.OutcomeComplete || schedule.Confidence != 1 {
		t.Errorf("nothing pending should read as complete with full confidence, got %s/%.2f",
			schedule.Outcome, schedule.Confidence)
	}
}

func TestGenerate_DeadlinePressureOrdersTasks(t *testing.T) {
	opt := newTestOptimizer()

	urgent := task("urgent", "Due soon", 60, models.EnergyMedium)
	urgent.HardDue = "2026-03-03"
	relaxed := task("relaxed", "Due later", 60, models.EnergyMedium)
	relaxed.SoftDue = "2026-03-20"

	// Only one slot: the higher-pressure task must win it.
	req := Request{
		Date:  "2026-03-02",
		Tasks: []models.Task{relaxed, urgent},
		Slots: []models.TimeSlot{
			slot("2026-03-02", "09:00", "10:00", 2.0, models.ContextFocused),
		},
	}

	schedule, err := opt.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(schedule.Slots) != 1 || schedule.Slots[0].TaskID != "urgent" {
		t.Fatalf("expected the deadline-pressured task to win the slot, got %+v", schedule.Slots)
	}
}
