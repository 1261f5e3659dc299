package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nexus/internal/constants"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case dataLoadedMsg:
		m.schedule = msg.schedule
		m.hasSchedule = msg.hasSchedule
		m.tasks = msg.tasks
		m.goals = msg.goals
		m.busy = msg.busy
		m.loadErr = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.PrevDay):
			m = m.shiftDate(-1)
			return m, m.loadData
		case key.Matches(msg, m.keys.NextDay):
			m = m.shiftDate(1)
			return m, m.loadData
		case key.Matches(msg, m.keys.Today):
			m.date = time.Now().Format(constants.DateFormat)
			return m, m.loadData
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % 3
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadData
		}
	}
	return m, nil
}
