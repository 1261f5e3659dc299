package plans

import (
	"fmt"

	"github.com/julianstephens/nexus/internal/cli"
	"github.com/julianstephens/nexus/internal/models"
)

type DayCmd struct {
	Date     string `arg:"" help:"Date to show (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	Revision int    `help:"Show a specific revision instead of the latest."`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	var schedule models.DailySchedule
	if c.Revision > 0 {
		schedule, err = ctx.Store.GetScheduleRevision(date, c.Revision)
	} else {
		schedule, err = ctx.Store.GetSchedule(date)
	}
	if err != nil {
		return fmt.Errorf("no schedule for %s; run 'nexus plan %s' first", date, date)
	}

	PrintSchedule(ctx, schedule)
	return nil
}
