package tasks

import (
	"fmt"

	"github.com/julianstephens/nexus/internal/cli"
)

type TaskListCmd struct {
	PendingOnly bool `help:"Show only pending tasks." name:"pending-only"`
	ShowIDs     bool `help:"Show task IDs." name:"show-ids"`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	fmt.Println("Tasks:")
	for _, task := range tasks {
		if c.PendingOnly && task.Completed() {
			continue
		}

		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", task.ID)
		}

		recStr := cli.FormatRecurrence(task.Recurrence)
		fmt.Printf("  [%s] %s%s - %dm (%s energy, complexity %d, %s)\n",
			task.Status, task.Name, idStr, task.EstimatedMin, task.Energy, task.Complexity, recStr)

		if task.HardDue != "" || task.SoftDue != "" {
			fmt.Printf("      Due: hard %s, soft %s\n", orDash(task.HardDue), orDash(task.SoftDue))
		}
		if task.DependsOn != "" {
			fmt.Printf("      Depends on: %s\n", task.DependsOn)
		}
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
