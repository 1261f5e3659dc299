package plans

import (
	"fmt"

	"github.com/julianstephens/nexus/internal/cli"
)

type AssessCmd struct {
	Date string `arg:"" help:"Date to assess (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
}

func (c *AssessCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	schedule, err := ctx.Store.GetSchedule(date)
	if err != nil {
		return fmt.Errorf("no schedule for %s; run 'nexus plan %s' first", date, date)
	}
	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	goals, err := ctx.Store.GetAllGoals()
	if err != nil {
		return fmt.Errorf("failed to get goals: %w", err)
	}

	engine, err := ctx.Engine()
	if err != nil {
		return err
	}
	report := engine.AssessSchedule(schedule, tasks, goals)

	fmt.Printf("Quality report for %s (revision %d):\n\n", schedule.Date, schedule.Revision)
	fmt.Printf("  Energy efficiency: %.2f\n", report.EnergyEfficiency)
	fmt.Printf("  Goal balance:      %.2f\n", report.GoalBalance)
	fmt.Printf("  Sustainability:    %.2f\n", report.Sustainability)
	fmt.Printf("  Overall:           %.2f\n", report.Overall)

	if len(report.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, s := range report.Suggestions {
			fmt.Printf("  - [%s] %s\n", s.Metric, s.Message)
		}
	}
	return nil
}
