package sqlite

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/nexus/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "nexus.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInit_SeedsDefaultSettings(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.DayStart == "" || settings.DayEnd == "" || settings.MinSlotMin == 0 {
		t.Errorf("defaults not seeded: %+v", settings)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := models.Settings{
		DayStart:    "07:00",
		DayEnd:      "16:00",
		BreakStart:  "11:30",
		BreakEnd:    "12:00",
		MinSlotMin:  20,
		Timezone:    "UTC",
		WeightSoft:  0.5,
		WeightGoals: 0.3,
		WeightFlow:  0.2,
	}
	if err := store.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != want {
		t.Errorf("settings diverged:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestTasks_CRUDAndSoftDelete(t *testing.T) {
	store := newTestStore(t)

	task := models.Task{
		ID:           "t1",
		Name:         "Write report",
		Category:     "writing",
		Complexity:   4,
		EstimatedMin: 90,
		Energy:       models.EnergyHigh,
		HardDue:      "2026-03-05",
		Splittable:   true,
		Context:      models.ContextFocused,
		Recurrence:   models.Recurrence{Type: models.RecurrenceWeekly, WeekdayMask: []time.Weekday{time.Monday, time.Thursday}},
		Status:       models.StatusPending,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	got, err := store.GetTask("t1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Name != task.Name || got.Energy != task.Energy || got.HardDue != task.HardDue || !got.Splittable {
		t.Errorf("task diverged: %+v", got)
	}
	if len(got.Recurrence.WeekdayMask) != 2 || got.Recurrence.Type != models.RecurrenceWeekly {
		t.Errorf("recurrence diverged: %+v", got.Recurrence)
	}

	got.Status = models.StatusCompleted
	if err := store.UpdateTask(got); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	updated, err := store.GetTask("t1")
	if err != nil {
		t.Fatalf("GetTask after update failed: %v", err)
	}
	if updated.Status != models.StatusCompleted {
		t.Errorf("status not persisted: %s", updated.Status)
	}

	if err := store.DeleteTask("t1"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	all, err := store.GetAllTasks()
	if err != nil {
		t.Fatalf("GetAllTasks failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("soft-deleted task still listed: %+v", all)
	}

	if err := store.RestoreTask("t1"); err != nil {
		t.Fatalf("RestoreTask failed: %v", err)
	}
	all, err = store.GetAllTasks()
	if err != nil {
		t.Fatalf("GetAllTasks after restore failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("restored task missing: %+v", all)
	}
}

func TestGoals_CRUDAndTaskLookup(t *testing.T) {
	store := newTestStore(t)

	goal := models.Goal{
		ID:          "g1",
		Title:       "Ship the thing",
		Priority:    4,
		TargetShare: 0.6,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := store.AddGoal(goal); err != nil {
		t.Fatalf("AddGoal failed: %v", err)
	}

	got, err := store.GetGoal("g1")
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if got.Title != goal.Title || got.Priority != 4 || got.TargetShare != 0.6 {
		t.Errorf("goal diverged: %+v", got)
	}

	task := models.Task{ID: "t1", GoalID: "g1", Name: "Subtask", EstimatedMin: 30, Status: models.StatusPending, CreatedAt: time.Now()}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	forGoal, err := store.GetTasksForGoal("g1")
	if err != nil {
		t.Fatalf("GetTasksForGoal failed: %v", err)
	}
	if len(forGoal) != 1 || forGoal[0].ID != "t1" {
		t.Errorf("goal tasks diverged: %+v", forGoal)
	}

	got.Priority = 5
	if err := store.UpdateGoal(got); err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}
	if updated, _ := store.GetGoal("g1"); updated.Priority != 5 {
		t.Errorf("priority not persisted: %+v", updated)
	}
}

func TestBusyIntervals_OrderedByStart(t *testing.T) {
	store := newTestStore(t)

	intervals := []models.BusyInterval{
		{ID: "b2", Date: "2026-03-02", Start: "14:00", End: "15:00", Kind: models.BusyMeeting},
		{ID: "b1", Date: "2026-03-02", Start: "09:00", End: "09:30", Kind: models.BusyClass},
		{ID: "b3", Date: "2026-03-03", Start: "08:00", End: "09:00", Kind: models.BusyExam},
	}
	for _, b := range intervals {
		if err := store.AddBusyInterval(b); err != nil {
			t.Fatalf("AddBusyInterval failed: %v", err)
		}
	}

	got, err := store.GetBusyIntervals("2026-03-02")
	if err != nil {
		t.Fatalf("GetBusyIntervals failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals for the date, got %d", len(got))
	}
	if got[0].ID != "b1" || got[1].ID != "b2" {
		t.Errorf("intervals out of order: %+v", got)
	}

	if err := store.DeleteBusyInterval("b1"); err != nil {
		t.Fatalf("DeleteBusyInterval failed: %v", err)
	}
	got, _ = store.GetBusyIntervals("2026-03-02")
	if len(got) != 1 {
		t.Errorf("delete did not stick: %+v", got)
	}
}

func TestSchedules_RevisionsMonotonic(t *testing.T) {
	store := newTestStore(t)

	first := models.DailySchedule{
		Date:    "2026-03-02",
		Slots:   []models.ScheduledTask{{TaskID: "t1", Date: "2026-03-02", Start: "09:00", End: "10:00"}},
		Outcome: models.OutcomeComplete,
	}
	if err := store.SaveSchedule(first); err != nil {
		t.Fatalf("SaveSchedule failed: %v", err)
	}

	second := first
	second.Slots = []models.ScheduledTask{{TaskID: "t2", Date: "2026-03-02", Start: "11:00", End: "12:00"}}
	if err := store.SaveSchedule(second); err != nil {
		t.Fatalf("second SaveSchedule failed: %v", err)
	}

	latest, err := store.GetSchedule("2026-03-02")
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if latest.Revision != 2 {
		t.Errorf("expected revision 2, got %d", latest.Revision)
	}
	if len(latest.Slots) != 1 || latest.Slots[0].TaskID != "t2" {
		t.Errorf("latest revision has wrong payload: %+v", latest.Slots)
	}

	old, err := store.GetScheduleRevision("2026-03-02", 1)
	if err != nil {
		t.Fatalf("GetScheduleRevision failed: %v", err)
	}
	if old.Slots[0].TaskID != "t1" {
		t.Errorf("revision 1 has wrong payload: %+v", old.Slots)
	}

	if _, err := store.GetSchedule("2026-12-25"); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestCompletions_AppendOnly(t *testing.T) {
	store := newTestStore(t)

	task := models.Task{ID: "t1", Name: "Work", EstimatedMin: 60, Status: models.StatusPending, CreatedAt: time.Now()}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	rec := models.CompletionRecord{
		ID:              "c1",
		TaskID:          "t1",
		Date:            "2026-03-02",
		ActualStart:     "09:00",
		ActualEnd:       "10:15",
		Energy:          2,
		Focus:           4,
		PercentComplete: 100,
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
	}
	if err := store.AddCompletion(rec); err != nil {
		t.Fatalf("AddCompletion failed: %v", err)
	}
	// Same id again is silently ignored, records are immutable.
	dup := rec
	dup.ActualEnd = "11:00"
	if err := store.AddCompletion(dup); err != nil {
		t.Fatalf("duplicate AddCompletion errored: %v", err)
	}

	got, err := store.GetCompletionsForTask("t1", 10)
	if err != nil {
		t.Fatalf("GetCompletionsForTask failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].ActualEnd != "10:15" {
		t.Errorf("original record mutated: %+v", got[0])
	}

	all, err := store.GetAllCompletions()
	if err != nil {
		t.Fatalf("GetAllCompletions failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 record overall, got %d", len(all))
	}
}

func TestPatterns_UpsertByTypeAndName(t *testing.T) {
	store := newTestStore(t)

	payload, _ := json.Marshal(map[string]int{"v": 1})
	pattern := models.LearnedPattern{
		Type:       "duration_model",
		Name:       "personal",
		Payload:    payload,
		Confidence: 0.4,
		SampleSize: 3,
		Active:     true,
		UpdatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	if err := store.SavePattern(pattern); err != nil {
		t.Fatalf("SavePattern failed: %v", err)
	}

	pattern.Confidence = 0.6
	pattern.SampleSize = 5
	if err := store.SavePattern(pattern); err != nil {
		t.Fatalf("second SavePattern failed: %v", err)
	}

	got, err := store.GetPattern("duration_model", "personal")
	if err != nil {
		t.Fatalf("GetPattern failed: %v", err)
	}
	if got.Confidence != 0.6 || got.SampleSize != 5 {
		t.Errorf("upsert did not replace: %+v", got)
	}

	if _, err := store.GetPattern("duration_model", "missing"); !errors.Is(err, ErrPatternNotFound) {
		t.Errorf("expected ErrPatternNotFound, got %v", err)
	}
}
