package plans

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/nexus/internal/cli"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/scheduler"
	"github.com/julianstephens/nexus/internal/utils"
)

type RepairCmd struct {
	Date string `arg:"" help:"Date to repair (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	Kind string `help:"Disruption kind (urgent_task|calendar_change|energy_crash)." required:""`
	At   string `help:"Time the disruption takes effect (HH:MM). Defaults to now."`

	Task    string  `help:"Existing task id to insert (urgent_task)."`
	Name    string  `help:"Name for a new urgent task (urgent_task)."`
	Minutes int     `help:"Estimated minutes for a new urgent task." default:"30"`
	Drop    float64 `help:"Energy drop on the 1-3 scale (energy_crash)." default:"0.5"`
}

func (c *RepairCmd) Run(ctx *cli.Context) error {
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

	at := c.At
	if at == "" {
		at = time.Now().Format("15:04")
	}
	if !utils.ValidateTimeFormat(at) {
		return fmt.Errorf("invalid --at time: %s (use HH:MM)", at)
	}

	disruption := scheduler.Disruption{At: at}
	switch c.Kind {
	case string(scheduler.DisruptionUrgentTask):
		disruption.Kind = scheduler.DisruptionUrgentTask
		urgent, err := c.urgentTask(ctx)
		if err != nil {
			return err
		}
		disruption.UrgentTask = &urgent
	case string(scheduler.DisruptionCalendarChange):
		disruption.Kind = scheduler.DisruptionCalendarChange
	case string(scheduler.DisruptionEnergyCrash):
		disruption.Kind = scheduler.DisruptionEnergyCrash
		disruption.EnergyDrop = c.Drop
	default:
		return fmt.Errorf("invalid kind: %s (use urgent_task, calendar_change, or energy_crash)", c.Kind)
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
	result := engine.RepairSchedule(schedule, disruption, tasks, goals, busy, completed)

	if result.State == scheduler.StateFailed {
		fmt.Printf("Repair failed: %s\n", result.Reason)
		fmt.Println("The existing schedule is unchanged.")
		return nil
	}

	PrintSchedule(ctx, result.Schedule)
	if err := ctx.Store.SaveSchedule(result.Schedule); err != nil {
		return fmt.Errorf("failed to save repaired schedule: %w", err)
	}
	fmt.Printf("\nRepaired schedule saved for %s.\n", date)
	return nil
}

func (c *RepairCmd) urgentTask(ctx *cli.Context) (models.Task, error) {
	if c.Task != "" {
		task, err := ctx.Store.GetTask(c.Task)
		if err != nil {
			return models.Task{}, fmt.Errorf("urgent task not found: %s", c.Task)
		}
		return task, nil
	}
	if c.Name == "" {
		return models.Task{}, fmt.Errorf("urgent_task requires --task or --name")
	}
	task := models.Task{
		ID:           uuid.NewString(),
		Name:         c.Name,
		Complexity:   3,
		EstimatedMin: c.Minutes,
		Energy:       models.EnergyMedium,
		Status:       models.StatusPending,
		CreatedAt:    time.Now(),
	}
	if err := ctx.Store.AddTask(task); err != nil {
		return models.Task{}, fmt.Errorf("failed to save urgent task: %w", err)
	}
	return task, nil
}
