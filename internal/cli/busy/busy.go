package busy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/nexus/internal/cli"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

type BusyAddCmd struct {
	Date  string `arg:"" help:"Date of the interval (YYYY-MM-DD, 'today' or 'tomorrow')."`
	Start string `arg:"" help:"Start time (HH:MM)."`
	End   string `arg:"" help:"End time (HH:MM)."`
	Kind  string `short:"k" help:"Kind (meeting|class|exam|personal|exercise)." default:"meeting"`
	Title string `short:"t" help:"Optional title."`
}

func (c *BusyAddCmd) Validate() error {
	if !utils.ValidateTimeFormat(c.Start) {
		return fmt.Errorf("invalid start time: %s (use HH:MM)", c.Start)
	}
	if !utils.ValidateTimeFormat(c.End) {
		return fmt.Errorf("invalid end time: %s (use HH:MM)", c.End)
	}
	switch c.Kind {
	case "meeting", "class", "exam", "personal", "exercise":
	default:
		return fmt.Errorf("invalid kind: %s (use meeting, class, exam, personal, or exercise)", c.Kind)
	}
	return nil
}

func (c *BusyAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	startMin, err := utils.ParseTimeToMinutes(c.Start)
	if err != nil {
		return err
	}
	endMin, err := utils.ParseTimeToMinutes(c.End)
	if err != nil {
		return err
	}
	if endMin <= startMin {
		return fmt.Errorf("end time must be after start time")
	}

	interval := models.BusyInterval{
		ID:    uuid.NewString(),
		Date:  date,
		Start: c.Start,
		End:   c.End,
		Kind:  models.BusyKind(c.Kind),
		Title: c.Title,
	}
	if err := ctx.Store.AddBusyInterval(interval); err != nil {
		return fmt.Errorf("failed to add busy interval: %w", err)
	}

	fmt.Printf("Blocked %s–%s on %s (%s)\n", c.Start, c.End, date, c.Kind)
	return nil
}

type BusyListCmd struct {
	Date    string `arg:"" help:"Date to show (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	ShowIDs bool   `help:"Show interval IDs." name:"show-ids"`
}

func (c *BusyListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	intervals, err := ctx.Store.GetBusyIntervals(date)
	if err != nil {
		return fmt.Errorf("failed to get busy intervals: %w", err)
	}
	if len(intervals) == 0 {
		fmt.Printf("No busy intervals on %s\n", date)
		return nil
	}

	fmt.Printf("Busy intervals on %s:\n", date)
	for _, b := range intervals {
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", b.ID)
		}
		title := b.Title
		if title == "" {
			title = string(b.Kind)
		}
		fmt.Printf("  %s–%s  %s [%s]%s\n", b.Start, b.End, title, b.Kind, idStr)
	}
	return nil
}

type BusyDeleteCmd struct {
	ID string `arg:"" help:"Interval id to delete."`
}

func (c *BusyDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if err := ctx.Store.DeleteBusyInterval(c.ID); err != nil {
		return fmt.Errorf("failed to delete busy interval: %w", err)
	}
	fmt.Println("Deleted busy interval")
	return nil
}
