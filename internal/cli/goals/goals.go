package goals

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/nexus/internal/cli"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

type GoalAddCmd struct {
	Title    string  `arg:"" help:"Goal title."`
	Category string  `help:"Category (e.g. 'health', 'career')."`
	Priority int     `short:"p" help:"Priority (1-5, higher is more important)." default:"3"`
	Deadline string  `help:"Deadline (YYYY-MM-DD)."`
	Parent   string  `help:"Parent goal id for sub-goals."`
	Target   float64 `help:"Target share of scheduled time (0-1)." name:"target"`
}

func (c *GoalAddCmd) Validate() error {
	if c.Priority < 1 || c.Priority > 5 {
		return fmt.Errorf("priority must be between 1 and 5")
	}
	if c.Target < 0 || c.Target > 1 {
		return fmt.Errorf("target share must be between 0 and 1")
	}
	if c.Deadline != "" && !utils.ValidateDateFormat(c.Deadline) {
		return fmt.Errorf("invalid deadline: %s (use YYYY-MM-DD)", c.Deadline)
	}
	return nil
}

func (c *GoalAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if c.Parent != "" {
		if _, err := ctx.Store.GetGoal(c.Parent); err != nil {
			return fmt.Errorf("parent goal not found: %s", c.Parent)
		}
	}

	goal := models.Goal{
		ID:          uuid.NewString(),
		Title:       c.Title,
		Category:    c.Category,
		Priority:    c.Priority,
		Deadline:    c.Deadline,
		ParentID:    c.Parent,
		TargetShare: c.Target,
		CreatedAt:   time.Now(),
	}

	if err := ctx.Store.AddGoal(goal); err != nil {
		return fmt.Errorf("failed to add goal: %w", err)
	}

	fmt.Printf("Added goal %q (priority %d, ID: %s)\n", goal.Title, goal.Priority, goal.ID)
	return nil
}

type GoalListCmd struct {
	ShowIDs bool `help:"Show goal IDs." name:"show-ids"`
}

func (c *GoalListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	goals, err := ctx.Store.GetAllGoals()
	if err != nil {
		return fmt.Errorf("failed to get goals: %w", err)
	}
	if len(goals) == 0 {
		fmt.Println("No goals found")
		return nil
	}

	fmt.Println("Goals:")
	for _, goal := range goals {
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", goal.ID)
		}

		tasks, err := ctx.Store.GetTasksForGoal(goal.ID)
		if err != nil {
			return fmt.Errorf("failed to get tasks for goal %s: %w", goal.ID, err)
		}
		progress := models.Progress(goal, tasks)

		fmt.Printf("  %s%s - priority %d, %.0f%% complete", goal.Title, idStr, goal.Priority, progress*100)
		if goal.TargetShare > 0 {
			fmt.Printf(", target %.0f%% of time", goal.TargetShare*100)
		}
		if goal.Deadline != "" {
			fmt.Printf(", due %s", goal.Deadline)
		}
		fmt.Println()
	}
	return nil
}

type GoalDeleteCmd struct {
	ID string `arg:"" help:"Goal id to delete."`
}

func (c *GoalDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	goal, err := ctx.Store.GetGoal(c.ID)
	if err != nil {
		return fmt.Errorf("goal not found: %s", c.ID)
	}

	if err := ctx.Store.DeleteGoal(c.ID); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	fmt.Printf("Deleted goal %q and its tasks\n", goal.Title)
	return nil
}
