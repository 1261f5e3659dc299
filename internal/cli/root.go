package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/nexus/internal/constants"
	"github.com/julianstephens/nexus/internal/feedback"
	"github.com/julianstephens/nexus/internal/logger"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/planner"
	"github.com/julianstephens/nexus/internal/prediction"
	"github.com/julianstephens/nexus/internal/storage"
	"github.com/julianstephens/nexus/internal/utils"
)

// Context is shared by every command. The engine is built lazily so cheap
// commands (list, init) never pay for model restoration.
type Context struct {
	Store storage.Provider

	engine *planner.Engine
}

// Engine returns the planning engine, restoring learned model state from
// storage on first use.
func (c *Context) Engine() (*planner.Engine, error) {
	if c.engine != nil {
		return c.engine, nil
	}

	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	duration := restoreDurationModel(c.Store)
	energy := restoreEnergyModel(c.Store)

	engine := planner.New(planner.Config{
		Settings:      settings,
		MaxIterations: constants.DefaultMaxIterations,
	}, duration, energy)

	// Prime the ingest dedupe set so replayed feedback is a no-op.
	if records, err := c.Store.GetAllCompletions(); err == nil {
		engine.MarkIngested(records)
	}

	c.engine = engine
	return engine, nil
}

func restoreDurationModel(store storage.Provider) *prediction.DurationModel {
	pattern, err := store.GetPattern(feedback.PatternDurationModel, "personal")
	if err != nil {
		return prediction.NewDurationModel()
	}
	if !pattern.Usable(constants.PatternConfidenceFloor) {
		logger.Debug("Stored duration pattern below confidence floor, starting fresh",
			"confidence", pattern.Confidence)
		return prediction.NewDurationModel()
	}
	var snap prediction.DurationSnapshot
	if err := json.Unmarshal(pattern.Payload, &snap); err != nil {
		logger.Warn("Failed to restore duration model, starting fresh", "error", err)
		return prediction.NewDurationModel()
	}
	return prediction.RestoreDurationModel(&snap)
}

func restoreEnergyModel(store storage.Provider) *prediction.EnergyModel {
	pattern, err := store.GetPattern(feedback.PatternEnergyModel, "personal")
	if err != nil {
		return prediction.NewEnergyModel()
	}
	if !pattern.Usable(constants.PatternConfidenceFloor) {
		logger.Debug("Stored energy pattern below confidence floor, starting fresh",
			"confidence", pattern.Confidence)
		return prediction.NewEnergyModel()
	}
	var snap prediction.EnergySnapshot
	if err := json.Unmarshal(pattern.Payload, &snap); err != nil {
		logger.Warn("Failed to restore energy model, starting fresh", "error", err)
		return prediction.NewEnergyModel()
	}
	return prediction.RestoreEnergyModel(&snap)
}

// ResolveDate turns "today", "tomorrow" or a YYYY-MM-DD string into a
// concrete date in the configured timezone.
func (c *Context) ResolveDate(input string) (string, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.Local
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "today":
		return time.Now().In(loc).Format(constants.DateFormat), nil
	case "tomorrow":
		return time.Now().In(loc).AddDate(0, 0, 1).Format(constants.DateFormat), nil
	}
	if !utils.ValidateDateFormat(input) {
		return "", fmt.Errorf("invalid date %q: use YYYY-MM-DD, 'today' or 'tomorrow'", input)
	}
	return input, nil
}

// CompletedTaskSet returns the ids of tasks already marked completed.
func (c *Context) CompletedTaskSet() (map[string]bool, error) {
	tasks, err := c.Store.GetAllTasks()
	if err != nil {
		return nil, err
	}
	completed := map[string]bool{}
	for _, t := range tasks {
		if t.Completed() {
			completed[t.ID] = true
		}
	}
	return completed, nil
}

// ParseWeekdays parses a comma-separated list of weekdays
func ParseWeekdays(s string) ([]time.Weekday, error) {
	parts := strings.Split(s, ",")
	var weekdays []time.Weekday

	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err == nil && num >= 0 && num <= 6 {
			weekdays = append(weekdays, time.Weekday(num))
		} else {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
	}

	return weekdays, nil
}

// FormatRecurrence formats a recurrence rule into a human-readable string
func FormatRecurrence(rec models.Recurrence) string {
	switch rec.Type {
	case models.RecurrenceDaily:
		return "daily"
	case models.RecurrenceWeekly:
		if len(rec.WeekdayMask) > 0 {
			var days []string
			for _, wd := range rec.WeekdayMask {
				days = append(days, wd.String()[:3])
			}
			return fmt.Sprintf("weekly on %s", strings.Join(days, ","))
		}
		return "weekly"
	case models.RecurrenceNDays:
		return fmt.Sprintf("every %d days", rec.IntervalDays)
	case models.RecurrenceNone, "":
		return "none"
	default:
		return "unknown"
	}
}
