package availability

import (
	"errors"
	"testing"

	"github.com/julianstephens/nexus/internal/models"
)

func TestCompute_FreeDayIsOneSlot(t *testing.T) {
	calc := New(30)

	slots, err := calc.Compute("2026-03-02", nil, Window{DayStart: "09:00", DayEnd: "17:00"})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	s := slots[0]
	if s.Start != "09:00" || s.End != "17:00" || s.DurationMin != 480 {
		t.Errorf("unexpected slot: %+v", s)
	}
	if s.Context != models.ContextFocused {
		t.Errorf("expected a long slot tagged focused, got %s", s.Context)
	}
	if s.PredictedEnergy != 0 {
		t.Errorf("expected predicted energy left at zero, got %f", s.PredictedEnergy)
	}
}

func TestCompute_BusyIntervalsCarveSlots(t *testing.T) {
	calc := New(30)

	busy := []models.BusyInterval{
		{ID: "standup", Date: "2026-03-02", Start: "10:00", End: "10:30", Kind: models.BusyMeeting},
		{ID: "review", Date: "2026-03-02", Start: "14:00", End: "15:00", Kind: models.BusyMeeting},
		{ID: "other-day", Date: "2026-03-03", Start: "09:00", End: "17:00", Kind: models.BusyClass},
	}

	slots, err := calc.Compute("2026-03-02", busy, Window{DayStart: "09:00", DayEnd: "17:00"})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	want := []struct {
		start, end string
		context    models.ContextTag
	}{
		{"09:00", "10:00", models.ContextFocused},
		{"10:30", "14:00", models.ContextFocused},
		{"15:00", "17:00", models.ContextFocused},
	}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d: %+v", len(want), len(slots), slots)
	}
	for i, w := range want {
		if slots[i].Start != w.start || slots[i].End != w.end {
			t.Errorf("slot %d: expected %s-%s, got %s-%s", i, w.start, w.end, slots[i].Start, slots[i].End)
		}
		if slots[i].Context != w.context {
			t.Errorf("slot %d: expected context %s, got %s", i, w.context, slots[i].Context)
		}
	}
}

func TestCompute_SubMinimumGapCoalesced(t *testing.T) {
	calc := New(30)

	// The 20-minute gap between the meetings is shorter than the minimum
	// slot, so the blocked region must swallow it.
	busy := []models.BusyInterval{
		{ID: "m1", Date: "2026-03-02", Start: "10:00", End: "11:00"},
		{ID: "m2", Date: "2026-03-02", Start: "11:20", End: "12:00"},
	}

	slots, err := calc.Compute("2026-03-02", busy, Window{DayStart: "09:00", DayEnd: "13:00"})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d: %+v", len(slots), slots)
	}
	if slots[0].Start != "09:00" || slots[0].End != "10:00" {
		t.Errorf("unexpected first slot: %+v", slots[0])
	}
	if slots[1].Start != "12:00" || slots[1].End != "13:00" {
		t.Errorf("expected the 11:00-11:20 gap swallowed, got %+v", slots[1])
	}
}

func TestCompute_BreaksAreBlocked(t *testing.T) {
	calc := New(30)

	window := Window{
		DayStart: "09:00",
		DayEnd:   "17:00",
		Breaks:   []Span{{Start: "12:00", End: "13:00"}},
	}

	slots, err := calc.Compute("2026-03-02", nil, window)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots around the break, got %d", len(slots))
	}
	if slots[0].End != "12:00" || slots[1].Start != "13:00" {
		t.Errorf("break not carved out: %+v", slots)
	}
}

func TestCompute_FullyBusyDayYieldsNoSlots(t *testing.T) {
	calc := New(30)

	busy := []models.BusyInterval{
		{ID: "allday", Date: "2026-03-02", Start: "08:00", End: "18:00"},
	}

	slots, err := calc.Compute("2026-03-02", busy, Window{DayStart: "09:00", DayEnd: "17:00"})
	if err != nil {
		t.Fatalf("a fully busy day is not an error, got %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %+v", slots)
	}
}

func TestCompute_ShortSlotTaggedAdmin(t *testing.T) {
	calc := New(30)

	busy := []models.BusyInterval{
		{ID: "m", Date: "2026-03-02", Start: "09:45", End: "17:00"},
	}

	slots, err := calc.Compute("2026-03-02", busy, Window{DayStart: "09:00", DayEnd: "17:00"})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(slots) != 1 || slots[0].DurationMin != 45 {
		t.Fatalf("expected one 45-minute slot, got %+v", slots)
	}
	if slots[0].Context != models.ContextAdmin {
		t.Errorf("expected short slot tagged admin, got %s", slots[0].Context)
	}
}

func TestCompute_InvalidWindow(t *testing.T) {
	calc := New(30)

	_, err := calc.Compute("2026-03-02", nil, Window{DayStart: "17:00", DayEnd: "09:00"})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestCompute_SlotShorterThanMinimumDropped(t *testing.T) {
	calc := New(30)

	// Leaves a 20-minute tail before day end.
	busy := []models.BusyInterval{
		{ID: "m", Date: "2026-03-02", Start: "09:00", End: "16:40"},
	}

	slots, err := calc.Compute("2026-03-02", busy, Window{DayStart: "09:00", DayEnd: "17:00"})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected the sub-minimum tail dropped, got %+v", slots)
	}
}
