package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/nexus/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDay:
		content = m.viewDay()
	case StateTasks:
		content = m.viewTasks()
	case StateGoals:
		content = m.viewGoals()
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.help.View(m),
	)
	return docStyle.Render(ui)
}

func (m Model) viewTabs() string {
	labels := []string{"Day", "Tasks", "Goals"}
	var tabs []string
	for i, label := range labels {
		if viewState(i) == m.state {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewDay() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.date))
	b.WriteString("\n\n")

	if m.loadErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.loadErr)))
		return b.String()
	}

	// Merge busy intervals and schedule slots into one timeline.
	type line struct {
		start string
		text  string
	}
	var lines []line

	for _, busy := range m.busy {
		title := busy.Title
		if title == "" {
			title = string(busy.Kind)
		}
		lines = append(lines, line{
			start: busy.Start,
			text:  busyStyle.Render(fmt.Sprintf("%s–%s  %s", busy.Start, busy.End, title)),
		})
	}
	if m.hasSchedule {
		for _, slot := range m.schedule.Slots {
			lines = append(lines, line{
				start: slot.Start,
				text: fmt.Sprintf("%s  %s",
					slotTimeStyle.Render(slot.Start+"–"+slot.End),
					m.taskName(slot.TaskID)),
			})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].start < lines[j].start })

	if len(lines) == 0 {
		b.WriteString("Nothing planned for this day.\n")
	}
	for _, l := range lines {
		b.WriteString("  " + l.text + "\n")
	}

	if m.hasSchedule {
		if len(m.schedule.Deferred) > 0 {
			b.WriteString("\nDeferred:\n")
			for _, d := range m.schedule.Deferred {
				b.WriteString("  " + deferredStyle.Render(fmt.Sprintf("%s: %s", m.taskName(d.TaskID), d.Reason)) + "\n")
			}
		}
		for _, w := range m.schedule.Warnings {
			b.WriteString("\n" + warningStyle.Render("⚠ "+w) + "\n")
		}
		b.WriteString(fmt.Sprintf("\nrevision %d · %s · confidence %.2f\n",
			m.schedule.Revision, m.schedule.Outcome, m.schedule.Confidence))
	}
	return b.String()
}

func (m Model) viewTasks() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString("No tasks yet.\n")
		return b.String()
	}
	for _, t := range m.tasks {
		marker := "[ ]"
		if t.Completed() {
			marker = "[x]"
		}
		b.WriteString(fmt.Sprintf("  %s %s (%dm, %s energy)\n", marker, t.Name, t.EstimatedMin, t.Energy))
	}
	return b.String()
}

func (m Model) viewGoals() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Goals"))
	b.WriteString("\n\n")

	if len(m.goals) == 0 {
		b.WriteString("No goals yet.\n")
		return b.String()
	}
	for _, g := range m.goals {
		var goalTasks []models.Task
		for _, t := range m.tasks {
			if t.GoalID == g.ID {
				goalTasks = append(goalTasks, t)
			}
		}
		progress := models.Progress(g, goalTasks)
		b.WriteString(fmt.Sprintf("  %s (priority %d, %.0f%% complete)\n", g.Title, g.Priority, progress*100))
	}
	return b.String()
}

func (m Model) taskName(id string) string {
	for _, t := range m.tasks {
		if t.ID == id {
			return t.Name
		}
	}
	return id
}
