package tasks

import (
	"fmt"

	"github.com/julianstephens/nexus/internal/cli"
	"github.com/julianstephens/nexus/internal/models"
)

type TaskDoneCmd struct {
	ID string `arg:"" help:"Task id to mark completed."`
}

func (c *TaskDoneCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return fmt.Errorf("task not found: %s", c.ID)
	}
	if task.Completed() {
		fmt.Printf("Task %q is already completed\n", task.Name)
		return nil
	}

	task.Status = models.StatusCompleted
	if err := ctx.Store.UpdateTask(task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	fmt.Printf("Completed task %q\n", task.Name)
	fmt.Printf("Record how it went with 'nexus feedback %s' to improve predictions.\n", task.ID)
	return nil
}
