package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nexus/internal/constants"
	"github.com/julianstephens/nexus/internal/models"
	"github.com/julianstephens/nexus/internal/storage"
)

type viewState int

const (
	StateDay viewState = iota
	StateTasks
	StateGoals
)

type keyMap struct {
	PrevDay  key.Binding
	NextDay  key.Binding
	Today    key.Binding
	Tab      key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PrevDay: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous day")),
		NextDay: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		Today:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.PrevDay, m.keys.NextDay, m.keys.Today, m.keys.Tab, m.keys.Refresh, m.keys.Quit}
}

// FullHelp implements help.KeyMap.
func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp()}
}

type Model struct {
	store storage.Provider
	keys  keyMap
	help  help.Model

	state    viewState
	date     string
	quitting bool

	schedule    models.DailySchedule
	hasSchedule bool
	tasks       []models.Task
	goals       []models.Goal
	busy        []models.BusyInterval
	loadErr     error

	width  int
	height int
}

func NewModel(store storage.Provider) Model {
	return Model{
		store: store,
		keys:  defaultKeyMap(),
		help:  help.New(),
		state: StateDay,
		date:  time.Now().Format(constants.DateFormat),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadData
}

type dataLoadedMsg struct {
	schedule    models.DailySchedule
	hasSchedule bool
	tasks       []models.Task
	goals       []models.Goal
	busy        []models.BusyInterval
	err         error
}

func (m Model) loadData() tea.Msg {
	msg := dataLoadedMsg{}

	if schedule, err := m.store.GetSchedule(m.date); err == nil {
		msg.schedule = schedule
		msg.hasSchedule = true
	}

	var err error
	if msg.tasks, err = m.store.GetAllTasks(); err != nil {
		msg.err = err
		return msg
	}
	if msg.goals, err = m.store.GetAllGoals(); err != nil {
		msg.err = err
		return msg
	}
	if msg.busy, err = m.store.GetBusyIntervals(m.date); err != nil {
		msg.err = err
		return msg
	}
	return msg
}

func (m Model) shiftDate(days int) Model {
	d, err := time.Parse(constants.DateFormat, m.date)
	if err != nil {
		d = time.Now()
	}
	m.date = d.AddDate(0, 0, days).Format(constants.DateFormat)
	return m
}
