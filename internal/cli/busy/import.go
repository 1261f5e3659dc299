package busy

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/julianstephens/nexus/internal/cli"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
	"github.com/julianstephens/nexus/internal/validation"
)

// BusyImportCmd loads normalized busy intervals from a JSON file, for feeding
// in an exported calendar without typing each block.
type BusyImportCmd struct {
	File string `arg:"" help:"JSON file with an array of {date, start, end, kind, title}."`
}

type importedInterval struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

func (c *BusyImportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	raw, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}
	var entries []importedInterval
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("failed to parse %s: %w", c.File, err)
	}
	if len(entries) == 0 {
		fmt.Println("No intervals found in file")
		return nil
	}

	intervals := make([]models.BusyInterval, 0, len(entries))
	for i, e := range entries {
		if !utils.ValidateDateFormat(e.Date) {
			return fmt.Errorf("entry %d: invalid date %q (use YYYY-MM-DD)", i+1, e.Date)
		}
		if !utils.ValidateTimeFormat(e.Start) || !utils.ValidateTimeFormat(e.End) {
			return fmt.Errorf("entry %d: invalid times %q-%q (use HH:MM)", i+1, e.Start, e.End)
		}
		kind := e.Kind
		if kind == "" {
			kind = string(models.BusyMeeting)
		}
		switch models.BusyKind(kind) {
		case models.BusyMeeting, models.BusyClass, models.BusyExam, models.BusyPersonal, models.BusyExercise:
		default:
			return fmt.Errorf("entry %d: invalid kind %q", i+1, e.Kind)
		}
		intervals = append(intervals, models.BusyInterval{
			ID:    uuid.NewString(),
			Date:  e.Date,
			Start: e.Start,
			End:   e.End,
			Kind:  models.BusyKind(kind),
			Title: e.Title,
		})
	}

	// Reject the whole file when its intervals overlap each other or existing
	// ones, so a bad export never half-imports.
	byDate := map[string][]models.BusyInterval{}
	for _, b := range intervals {
		byDate[b.Date] = append(byDate[b.Date], b)
	}
	for date, batch := range byDate {
		existing, err := ctx.Store.GetBusyIntervals(date)
		if err != nil {
			return fmt.Errorf("failed to get busy intervals for %s: %w", date, err)
		}
		if result := validation.ValidateBusyIntervals(date, append(existing, batch...)); result.HasConflicts() {
			return fmt.Errorf("import conflicts on %s: %w", date, result.Err())
		}
	}

	for _, b := range intervals {
		if err := ctx.Store.AddBusyInterval(b); err != nil {
			return fmt.Errorf("failed to add busy interval: %w", err)
		}
	}
	fmt.Printf("Imported %d busy interval(s) from %s\n", len(intervals), c.File)
	return nil
}
