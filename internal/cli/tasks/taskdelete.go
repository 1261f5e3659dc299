package tasks

import (
	"fmt"

	"github.com/julianstephens/nexus/internal/cli"
)

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Task id to delete."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return fmt.Errorf("task not found: %s", c.ID)
	}

	if err := ctx.Store.DeleteTask(c.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	fmt.Printf("Deleted task %q (restore with 'nexus restore task %s')\n", task.Name, c.ID)
	return nil
}

type TaskRestoreCmd struct {
	ID string `arg:"" help:"Task id to restore."`
}

func (c *TaskRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Store.RestoreTask(c.ID); err != nil {
		return fmt.Errorf("failed to restore task: %w", err)
	}

	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return fmt.Errorf("task not found after restore: %s", c.ID)
	}

	fmt.Printf("Restored task %q\n", task.Name)
	return nil
}
