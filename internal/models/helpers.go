package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/nexus/internal/constants"
)

// spanMinutes parses an HH:MM pair into minutes-from-midnight, rejecting
// inverted spans.
func spanMinutes(start, end string) (int, int, error) {
	s, err := time.Parse(constants.TimeFormat, start)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start time %q: %w", start, err)
	}
	e, err := time.Parse(constants.TimeFormat, end)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end time %q: %w", end, err)
	}
	sm := s.Hour()*60 + s.Minute()
	em := e.Hour()*60 + e.Minute()
	if em < sm {
		return 0, 0, fmt.Errorf("span ends before it starts: %s-%s", start, end)
	}
	return sm, em, nil
}

// IntervalMinutes exposes the parsed span of a busy interval.
func (b BusyInterval) IntervalMinutes() (int, int, error) {
	return spanMinutes(b.Start, b.End)
}

// SlotMinutes exposes the parsed span of a time slot.
func (s TimeSlot) SlotMinutes() (int, int, error) {
	return spanMinutes(s.Start, s.End)
}
