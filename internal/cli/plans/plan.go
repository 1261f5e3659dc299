package plans

import (
	"errors"
	"fmt"

	"github.com/julianstephens/nexus/internal/cli"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/scheduler"
)

type PlanCmd struct {
	Date   string `arg:"" help:"Date to plan (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	DryRun bool   `help:"Show the proposed schedule without saving it." name:"dry-run"`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	goals, err := ctx.Store.GetAllGoals()
	if err != nil {
		return fmt.Errorf("failed to get goals: %w", err)
	}
	busy, err := ctx.Store.GetBusyIntervals(date)
	if err != nil {
		return fmt.Errorf("failed to get busy intervals: %w", err)
	}
	completed, err := ctx.CompletedTaskSet()
	if err != nil {
		return fmt.Errorf("failed to get completed tasks: %w", err)
	}

	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	schedule, err := engine.GenerateSchedule(date, tasks, goals, busy, completed)
	if err != nil {
		var infeasible *scheduler.NoFeasibleScheduleError
		if errors.As(err, &infeasible) {
			fmt.Printf("No feasible schedule for %s:\n", date)
			for _, d := range infeasible.Blocked {
				fmt.Printf("  - %s: %s\n", taskName(ctx, d.TaskID), d.Reason)
			}
			return nil
		}
		return err
	}

	PrintSchedule(ctx, schedule)

	if c.DryRun {
		fmt.Println("\nDry run; schedule not saved.")
		return nil
	}
	if err := ctx.Store.SaveSchedule(schedule); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	fmt.Printf("\nSchedule saved for %s.\n", date)
	return nil
}

// PrintSchedule renders a schedule for terminal output, shared by the plan,
// day and repair commands.
func PrintSchedule(ctx *cli.Context, schedule models.DailySchedule) {
	fmt.Printf("Schedule for %s (revision %d, %s, confidence %.2f):\n\n",
		schedule.Date, schedule.Revision, schedule.Outcome, schedule.Confidence)

	if len(schedule.Slots) == 0 {
		fmt.Println("  No tasks scheduled for this day")
	}
	for _, slot := range schedule.Slots {
		fmt.Printf("  %s–%s  %s  (energy %.1f, score %.2f)\n",
			slot.Start, slot.End, taskName(ctx, slot.TaskID), slot.EnergyScore, slot.Score)
	}

	if len(schedule.Deferred) > 0 {
		fmt.Println("\nDeferred:")
		for _, d := range schedule.Deferred {
			fmt.Printf("  - %s: %s\n", taskName(ctx, d.TaskID), d.Reason)
		}
	}
	for _, w := range schedule.Warnings {
		fmt.Printf("\n⚠ %s\n", w)
	}
}

func taskName(ctx *cli.Context, id string) string {
	task, err := ctx.Store.GetTask(id)
	if err != nil {
		return id
	}
	return task.Name
}
