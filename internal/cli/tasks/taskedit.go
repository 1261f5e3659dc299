package tasks

import (
	"fmt"

	"github.com/julianstephens/nexus/internal/cli"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

type TaskEditCmd struct {
	ID         string `arg:"" help:"Task id to edit."`
	Name       string `help:"New task name."`
	Minutes    int    `short:"m" help:"New estimated duration in minutes."`
	Complexity int    `help:"New complexity (1-5)."`
	Energy     string `short:"e" help:"New required energy (low|medium|high)."`
	Context    string `help:"New preferred context (any|focused|collaborative|admin)."`
	HardDue    string `help:"New hard due date (YYYY-MM-DD, or '-' to clear)." name:"hard-due"`
	SoftDue    string `help:"New soft due date (YYYY-MM-DD, or '-' to clear)." name:"soft-due"`
	Done       bool   `help:"Mark the task completed."`
	Reopen     bool   `help:"Mark the task pending again."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return fmt.Errorf("task not found: %s", c.ID)
	}

	if c.Name != "" {
		task.Name = c.Name
	}
	if c.Minutes > 0 {
		task.EstimatedMin = c.Minutes
	}
	if c.Complexity != 0 {
		if c.Complexity < 1 || c.Complexity > 5 {
			return fmt.Errorf("complexity must be between 1 and 5")
		}
		task.Complexity = c.Complexity
	}
	if c.Energy != "" {
		switch c.Energy {
		case "low", "medium", "high":
			task.Energy = models.EnergyLevel(c.Energy)
		default:
			return fmt.Errorf("invalid energy: %s (use low, medium, or high)", c.Energy)
		}
	}
	if c.Context != "" {
		switch c.Context {
		case "any", "focused", "collaborative", "admin":
			task.Context = models.ContextTag(c.Context)
		default:
			return fmt.Errorf("invalid context: %s", c.Context)
		}
	}
	if c.HardDue != "" {
		task.HardDue, err = dueValue(c.HardDue)
		if err != nil {
			return fmt.Errorf("invalid hard due date: %w", err)
		}
	}
	if c.SoftDue != "" {
		task.SoftDue, err = dueValue(c.SoftDue)
		if err != nil {
			return fmt.Errorf("invalid soft due date: %w", err)
		}
	}
	if c.Done && c.Reopen {
		return fmt.Errorf("--done and --reopen are mutually exclusive")
	}
	if c.Done {
		task.Status = models.StatusCompleted
	}
	if c.Reopen {
		task.Status = models.StatusPending
	}

	if err := ctx.Store.UpdateTask(task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	fmt.Printf("Updated task %q\n", task.Name)
	return nil
}

func dueValue(input string) (string, error) {
	if input == "-" {
		return "", nil
	}
	if !utils.ValidateDateFormat(input) {
		return "", fmt.Errorf("invalid date: %s (use YYYY-MM-DD or '-' to clear)", input)
	}
	return input, nil
}
