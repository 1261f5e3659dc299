// Package availability derives open time slots for a date from calendar busy
// intervals and the configured working window.
package availability

import (
	"errors"
	"fmt"
	"sort"

	"github.com/julianstephens/nexus/internal/constants"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

// ErrInvalidWindow is returned when the working window starts at or after it ends.
var ErrInvalidWindow = errors.New("invalid working window")

// Span is a clock interval within a day.
type Span struct {
	Start string // HH:MM format
	End   string // HH:MM format
}

// Window is the working-hours configuration for a date.
type Window struct {
	DayStart string
	DayEnd   string
	Breaks   []Span
}

// WindowFromSettings builds a working window from persisted settings.
func WindowFromSettings(settings models.Settings) Window {
	w := Window{DayStart: settings.DayStart, DayEnd: settings.DayEnd}
	if settings.BreakStart != "" && settings.BreakEnd != "" {
		w.Breaks = append(w.Breaks, Span{Start: settings.BreakStart, End: settings.BreakEnd})
	}
	return w
}

// Calculator computes open slots. MinSlotMin is the shortest slot worth
// returning; blocked intervals separated by a gap shorter than it are treated
// as one blocked region, since the gap is not independently schedulable.
type Calculator struct {
	MinSlotMin int
}

func New(minSlotMin int) *Calculator {
	if minSlotMin <= 0 {
		minSlotMin = constants.MinSlotMin
	}
	return &Calculator{MinSlotMin: minSlotMin}
}

type block struct {
	start, end int
}

// Compute returns the ordered, non-overlapping open slots for date: the
// working window minus busy intervals minus mandatory breaks. Predicted
// energy is left at zero for the prediction layer to fill in.
func (c *Calculator) Compute(date string, busy []models.BusyInterval, window Window) ([]models.TimeSlot, error) {
	dayStart, err := utils.ParseTimeToMinutes(window.DayStart)
	if err != nil {
		return nil, fmt.Errorf("invalid day start %q: %w", window.DayStart, err)
	}
	dayEnd, err := utils.ParseTimeToMinutes(window.DayEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid day end %q: %w", window.DayEnd, err)
	}
	if dayStart >= dayEnd {
		return nil, fmt.Errorf("%w: start %s >= end %s on %s", ErrInvalidWindow, window.DayStart, window.DayEnd, date)
	}

	blocked := make([]block, 0, len(busy)+len(window.Breaks))
	for _, b := range busy {
		if b.Date != date {
			continue
		}
		s, e, err := b.IntervalMinutes()
		if err != nil {
			return nil, fmt.Errorf("busy interval %s: %w", b.ID, err)
		}
		blocked = append(blocked, clampBlock(s, e, dayStart, dayEnd))
	}
	for _, br := range window.Breaks {
		s, err := utils.ParseTimeToMinutes(br.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid break start %q: %w", br.Start, err)
		}
		e, err := utils.ParseTimeToMinutes(br.End)
		if err != nil {
			return nil, fmt.Errorf("invalid break end %q: %w", br.End, err)
		}
		blocked = append(blocked, clampBlock(s, e, dayStart, dayEnd))
	}

	merged := mergeBlocks(blocked, c.MinSlotMin)

	var slots []models.TimeSlot
	cursor := dayStart
	emit := func(start, end int) {
		if end-start < c.MinSlotMin {
			return
		}
		slots = append(slots, models.TimeSlot{
			Date:        date,
			Start:       utils.FormatMinutes(start),
			End:         utils.FormatMinutes(end),
			DurationMin: end - start,
			Context:     slotContext(end - start),
		})
	}
	for _, b := range merged {
		if b.start > cursor {
			emit(cursor, b.start)
		}
		if b.end > cursor {
			cursor = b.end
		}
	}
	if cursor < dayEnd {
		emit(cursor, dayEnd)
	}

	return slots, nil
}

func clampBlock(start, end, lo, hi int) block {
	if start < lo {
		start = lo
	}
	if end > hi {
		end = hi
	}
	if end < start {
		end = start
	}
	return block{start: start, end: end}
}

// mergeBlocks sorts blocked intervals and coalesces any pair separated by a
// gap shorter than minGap.
func mergeBlocks(blocks []block, minGap int) []block {
	if len(blocks) == 0 {
		return nil
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].start != blocks[j].start {
			return blocks[i].start < blocks[j].start
		}
		return blocks[i].end < blocks[j].end
	})

	merged := []block{blocks[0]}
	for _, b := range blocks[1:] {
		last := &merged[len(merged)-1]
		if b.start-last.end < minGap {
			if b.end > last.end {
				last.end = b.end
			}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

// slotContext tags a slot by what kind of work it can hold. Long stretches
// suit focused work, short ones administrative churn.
func slotContext(durationMin int) models.ContextTag {
	if durationMin >= 60 {
		return models.ContextFocused
	}
	return models.ContextAdmin
}
