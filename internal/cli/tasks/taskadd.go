package tasks

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/nexus/internal/cli"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

type TaskAddCmd struct {
	Name       string `arg:"" help:"Task name."`
	Minutes    int    `short:"m" help:"Estimated duration in minutes." required:""`
	Goal       string `short:"g" help:"Goal id this task serves."`
	Category   string `help:"Category used to bucket duration learning (e.g. 'writing')."`
	Complexity int    `help:"Complexity (1-5)." default:"3"`
	Energy     string `short:"e" help:"Required energy (low|medium|high)." default:"medium"`
	Context    string `help:"Preferred context (any|focused|collaborative|admin)." default:"any"`
	HardDue    string `help:"Hard due date (YYYY-MM-DD)." name:"hard-due"`
	SoftDue    string `help:"Soft due date (YYYY-MM-DD)." name:"soft-due"`
	DependsOn  string `help:"Task id that must complete first." name:"depends-on"`
	Splittable bool   `help:"Allow the task to be split across slots."`
	MinBlock   int    `help:"Smallest acceptable block in minutes." name:"min-block"`
	MaxBlock   int    `help:"Largest single block in minutes." name:"max-block"`
	Recurrence string `short:"r" help:"Recurrence type (none|daily|weekly|n_days)." default:"none"`
	Interval   int    `short:"i" help:"Interval for n_days recurrence." default:"1"`
	Weekdays   string `short:"w" help:"Comma-separated weekdays for weekly recurrence."`
}

func (c *TaskAddCmd) Validate() error {
	if c.Minutes <= 0 {
		return fmt.Errorf("minutes must be greater than zero")
	}
	if c.Complexity < 1 || c.Complexity > 5 {
		return fmt.Errorf("complexity must be between 1 and 5")
	}
	switch c.Energy {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("invalid energy: %s (use low, medium, or high)", c.Energy)
	}
	switch c.Context {
	case "any", "focused", "collaborative", "admin":
	default:
		return fmt.Errorf("invalid context: %s (use any, focused, collaborative, or admin)", c.Context)
	}
	switch c.Recurrence {
	case "none", "daily", "weekly", "n_days":
	default:
		return fmt.Errorf("invalid recurrence: %s (use none, daily, weekly, or n_days)", c.Recurrence)
	}
	if c.Recurrence == "n_days" && c.Interval < 1 {
		return fmt.Errorf("interval must be at least 1 for n_days recurrence")
	}
	if c.Recurrence == "weekly" && c.Weekdays == "" {
		return fmt.Errorf("weekdays must be specified for weekly recurrence")
	}
	if c.HardDue != "" && !utils.ValidateDateFormat(c.HardDue) {
		return fmt.Errorf("invalid hard due date: %s (use YYYY-MM-DD)", c.HardDue)
	}
	if c.SoftDue != "" && !utils.ValidateDateFormat(c.SoftDue) {
		return fmt.Errorf("invalid soft due date: %s (use YYYY-MM-DD)", c.SoftDue)
	}
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if c.Goal != "" {
		if _, err := ctx.Store.GetGoal(c.Goal); err != nil {
			return fmt.Errorf("goal not found: %s", c.Goal)
		}
	}
	if c.DependsOn != "" {
		if _, err := ctx.Store.GetTask(c.DependsOn); err != nil {
			return fmt.Errorf("dependency task not found: %s", c.DependsOn)
		}
	}

	recurrence := models.Recurrence{Type: models.RecurrenceType(c.Recurrence)}
	if c.Recurrence == "n_days" {
		recurrence.IntervalDays = c.Interval
	}
	if c.Weekdays != "" {
		weekdays, err := cli.ParseWeekdays(c.Weekdays)
		if err != nil {
			return err
		}
		recurrence.WeekdayMask = weekdays
	}

	task := models.Task{
		ID:           uuid.NewString(),
		GoalID:       c.Goal,
		Name:         c.Name,
		Category:     c.Category,
		Complexity:   c.Complexity,
		EstimatedMin: c.Minutes,
		Energy:       models.EnergyLevel(c.Energy),
		MinBlockMin:  c.MinBlock,
		MaxBlockMin:  c.MaxBlock,
		HardDue:      c.HardDue,
		SoftDue:      c.SoftDue,
		DependsOn:    c.DependsOn,
		Splittable:   c.Splittable,
		Context:      models.ContextTag(c.Context),
		Recurrence:   recurrence,
		Status:       models.StatusPending,
		CreatedAt:    time.Now(),
	}

	if err := ctx.Store.AddTask(task); err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	fmt.Printf("Added task %q (%dm, %s energy, ID: %s)\n", task.Name, task.EstimatedMin, task.Energy, task.ID)
	return nil
}
