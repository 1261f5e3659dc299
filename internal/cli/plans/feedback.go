package plans

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/nexus/internal/cli"
	"github.com/julianstephens/nexus/internal/feedback"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/utils"
)

type FeedbackCmd struct {
	Task string `arg:"" help:"Task id the feedback is for."`
	Date string `help:"Date the work happened (YYYY-MM-DD). Defaults to today."`

	ActualStart  string `help:"Actual start time (HH:MM)." name:"actual-start"`
	ActualEnd    string `help:"Actual end time (HH:MM)." name:"actual-end"`
	Energy       int    `help:"Energy during the work (1-3)." default:"2"`
	Focus        int    `help:"Focus rating (1-5)." default:"3"`
	Difficulty   int    `help:"Difficulty rating (1-5)." default:"3"`
	Satisfaction int    `help:"Satisfaction rating (1-5)." default:"3"`
	Percent      int    `help:"Percent of the task completed." default:"100"`

	Interactive bool `help:"Collect feedback through an interactive form." short:"i"`
}

func (c *FeedbackCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := ctx.Store.GetTask(c.Task)
	if err != nil {
		return fmt.Errorf("task not found: %s", c.Task)
	}

	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	rec := models.CompletionRecord{
		ID:              uuid.NewString(),
		TaskID:          task.ID,
		Date:            date,
		ActualStart:     c.ActualStart,
		ActualEnd:       c.ActualEnd,
		Energy:          c.Energy,
		Focus:           c.Focus,
		Difficulty:      c.Difficulty,
		Satisfaction:    c.Satisfaction,
		PercentComplete: c.Percent,
		CreatedAt:       time.Now(),
	}

	// Pull the planned times from the day's schedule when it has this task.
	if schedule, err := ctx.Store.GetSchedule(date); err == nil {
		for _, slot := range schedule.Slots {
			if slot.TaskID == task.ID {
				rec.PlannedStart = slot.Start
				rec.PlannedEnd = slot.End
				break
			}
		}
	}

	if c.Interactive || rec.ActualStart == "" || rec.ActualEnd == "" {
		if err := c.collectForm(&rec, task); err != nil {
			return err
		}
	}

	if !utils.ValidateTimeFormat(rec.ActualStart) {
		return fmt.Errorf("invalid actual start: %s (use HH:MM)", rec.ActualStart)
	}
	if !utils.ValidateTimeFormat(rec.ActualEnd) {
		return fmt.Errorf("invalid actual end: %s (use HH:MM)", rec.ActualEnd)
	}

	if err := ctx.Store.AddCompletion(rec); err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}

	engine, err := ctx.Engine()
	if err != nil {
		return err
	}
	result, err := engine.IngestFeedback(rec, task)
	if err != nil {
		return fmt.Errorf("failed to ingest feedback: %w", err)
	}

	for _, pattern := range result.Patterns {
		if err := ctx.Store.SavePattern(pattern); err != nil {
			return fmt.Errorf("failed to save learned pattern: %w", err)
		}
	}
	for _, w := range result.Warnings {
		fmt.Printf("⚠ %s\n", w)
	}

	if rec.PercentComplete >= 100 {
		task.Status = models.StatusCompleted
		if err := ctx.Store.UpdateTask(task); err != nil {
			return fmt.Errorf("failed to mark task completed: %w", err)
		}
	}

	if err := c.rebalanceGoals(ctx); err != nil {
		return err
	}

	if result.Applied {
		fmt.Printf("Feedback recorded for %q (%d%% complete).\n", task.Name, rec.PercentComplete)
	} else {
		fmt.Printf("Feedback for %q was already recorded; nothing changed.\n", task.Name)
	}
	return nil
}

func (c *FeedbackCmd) collectForm(rec *models.CompletionRecord, task models.Task) error {
	energy := strconv.Itoa(rec.Energy)
	focus := strconv.Itoa(rec.Focus)
	satisfaction := strconv.Itoa(rec.Satisfaction)
	percent := strconv.Itoa(rec.PercentComplete)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("When did you start %q?", task.Name)).
				Placeholder("HH:MM").
				Value(&rec.ActualStart),
			huh.NewInput().
				Title("When did you stop?").
				Placeholder("HH:MM").
				Value(&rec.ActualEnd),
			huh.NewSelect[string]().
				Title("How was your energy?").
				Options(
					huh.NewOption("Low", "1"),
					huh.NewOption("Medium", "2"),
					huh.NewOption("High", "3"),
				).
				Value(&energy),
			huh.NewSelect[string]().
				Title("How focused were you? (1-5)").
				Options(ratingOptions()...).
				Value(&focus),
			huh.NewSelect[string]().
				Title("How satisfied are you with the session? (1-5)").
				Options(ratingOptions()...).
				Value(&satisfaction),
			huh.NewInput().
				Title("Percent complete").
				Value(&percent),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	rec.Energy, _ = strconv.Atoi(energy)
	rec.Focus, _ = strconv.Atoi(focus)
	rec.Satisfaction, _ = strconv.Atoi(satisfaction)
	if p, err := strconv.Atoi(percent); err == nil {
		rec.PercentComplete = p
	}
	return nil
}

func ratingOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, 5)
	for i := 1; i <= 5; i++ {
		opts = append(opts, huh.NewOption(strconv.Itoa(i), strconv.Itoa(i)))
	}
	return opts
}

// rebalanceGoals nudges goal target shares toward observed completed time.
func (c *FeedbackCmd) rebalanceGoals(ctx *cli.Context) error {
	goals, err := ctx.Store.GetAllGoals()
	if err != nil || len(goals) == 0 {
		return err
	}
	records, err := ctx.Store.GetAllCompletions()
	if err != nil {
		return err
	}
	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return err
	}

	goalByTask := map[string]string{}
	for _, t := range tasks {
		if t.GoalID != "" {
			goalByTask[t.ID] = t.GoalID
		}
	}
	actualMinutes := map[string]int{}
	for _, r := range records {
		if goalID, ok := goalByTask[r.TaskID]; ok {
			actualMinutes[goalID] += r.ActualMinutes()
		}
	}

	for _, g := range feedback.RebalanceTargets(goals, actualMinutes) {
		if err := ctx.Store.UpdateGoal(g); err != nil {
			return fmt.Errorf("failed to update goal targets: %w", err)
		}
	}
	return nil
}
