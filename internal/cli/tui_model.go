package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/timekeeper/internal/cli/formatter"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/alexanderramin/timekeeper/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// tuiMode selects which component receives key presses.
type tuiMode int

const (
	modeBrowse tuiMode = iota
	modeProject
	modeEdit
	modeConfirmDelete
)

// ── messages ─────────────────────────────────────────────────────────────────

// dashboardLoadedMsg carries a fresh snapshot from the report service.
type dashboardLoadedMsg struct {
	data *service.Dashboard
	now  time.Time
	err  error
}

// projectsLoadedMsg carries catalogue names for the project input.
type projectsLoadedMsg struct {
	names []string
}

// actionDoneMsg reports the outcome of a start, stop, edit or delete.
type actionDoneMsg struct {
	status string
	err    error
}

// tickMsg advances the stopwatch.
type tickMsg time.Time

// ── model ────────────────────────────────────────────────────────────────────

// tuiModel is the live view. It never holds entry state of its own: every
// action goes through the services and is followed by a reload.
type tuiModel struct {
	ctx  context.Context
	app  *App
	keys tuiKeyMap
	help help.Model

	table   table.Model
	rows    []domain.TimeEntry
	input   textinput.Model
	form    *huh.Form
	editing *editEntryFields
	editID  string

	mode     tuiMode
	project  string
	dash     *service.Dashboard
	loadedAt time.Time
	now      time.Time
	loading  bool
	status   string
	err      error

	width  int
	height int
}

func newTUIModel(ctx context.Context, app *App) tuiModel {
	l := app.layout()
	t := table.New(
		table.WithColumns(entryColumns(l)),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(formatter.ColorHeader).Bold(true)
	styles.Selected = styles.Selected.Foreground(formatter.ColorFg).Background(formatter.ColorDim)
	t.SetStyles(styles)

	in := textinput.New()
	in.Placeholder = "project name"
	in.CharLimit = 64
	in.ShowSuggestions = true
	in.Prompt = "Project ❯ "

	return tuiModel{
		ctx:     ctx,
		app:     app,
		keys:    newTUIKeyMap(),
		help:    help.New(),
		table:   t,
		input:   in,
		now:     app.now(),
		loading: true,
	}
}

func entryColumns(l formatter.Layout) []table.Column {
	clock := max(len(l.Time), 5) + 1
	return []table.Column{
		{Title: "START", Width: clock},
		{Title: "END", Width: clock + 4},
		{Title: "DURATION", Width: 9},
		{Title: "PROJECT", Width: 20},
		{Title: "LABEL", Width: 20},
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(m.loadDashboard(), m.loadProjects(), tick())
}

// ── commands ─────────────────────────────────────────────────────────────────

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m tuiModel) loadDashboard() tea.Cmd {
	ctx, app := m.ctx, m.app
	return func() tea.Msg {
		now := app.now()
		d, err := app.Reports.Dashboard(ctx, now)
		return dashboardLoadedMsg{data: d, now: now, err: err}
	}
}

func (m tuiModel) loadProjects() tea.Cmd {
	ctx, app := m.ctx, m.app
	return func() tea.Msg {
		projects, err := app.Projects.List(ctx)
		if err != nil {
			return projectsLoadedMsg{}
		}
		names := make([]string, 0, len(projects))
		for _, p := range projects {
			names = append(names, p.Name)
		}
		return projectsLoadedMsg{names: names}
	}
}

func (m tuiModel) toggleSession() tea.Cmd {
	ctx, app, l := m.ctx, m.app, m.app.layout()
	if m.dash != nil && m.dash.Open != nil {
		return func() tea.Msg {
			e, err := app.Entries.StopSession(ctx, app.now())
			if err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{status: formatter.FormatStopped(*e, l)}
		}
	}
	project := m.project
	return func() tea.Msg {
		e, err := app.Entries.StartSession(ctx, project, "", app.now())
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: formatter.FormatStarted(*e, l)}
	}
}

func (m tuiModel) deleteSelected(e domain.TimeEntry) tea.Cmd {
	ctx, app := m.ctx, m.app
	return func() tea.Msg {
		if err := app.Entries.DeleteSession(ctx, e.ID); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Deleted %s session %s", e.Project, e.DisplayID())}
	}
}

func (m tuiModel) saveEdit() tea.Cmd {
	ctx, app, id, fields := m.ctx, m.app, m.editID, m.editing
	return func() tea.Msg {
		if _, err := applyEditEntry(ctx, app, id, fields); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Updated session " + id[:min(8, len(id))]}
	}
}

// ── update ───────────────────────────────────────────────────────────────────

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(m.height-16, 3))
		return m, nil

	case dashboardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.dash, m.loadedAt, m.now = msg.data, msg.now, msg.now
		if m.project == "" && m.dash.Open != nil {
			m.project = m.dash.Open.Project
		}
		m.setRows()
		return m, nil

	case projectsLoadedMsg:
		m.input.SetSuggestions(msg.names)
		return m, nil

	case actionDoneMsg:
		m.err = msg.err
		m.status = msg.status
		if msg.err != nil {
			m.status = ""
		}
		return m, tea.Batch(m.loadDashboard(), m.loadProjects())

	case tickMsg:
		m.now = time.Time(msg)
		if m.dash != nil {
			m.setRows()
		}
		return m, tick()
	}

	switch m.mode {
	case modeEdit:
		return m.updateEdit(msg)
	case modeProject:
		return m.updateProject(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(keyMsg)
	}
	return m, nil
}

func (m *tuiModel) setRows() {
	l := m.app.layout()
	m.rows = m.dash.Today.Entries
	rows := make([]table.Row, 0, len(m.rows))
	for _, e := range m.rows {
		end := "running"
		if e.End != nil {
			end = l.EntryEnd(e)
		}
		rows = append(rows, table.Row{
			l.Clock(e.Start),
			end,
			formatter.FormatDuration(e.Duration(m.now)),
			e.Project,
			e.Label,
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m tuiModel) selected() (domain.TimeEntry, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return domain.TimeEntry{}, false
	}
	return m.rows[c], true
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		if m.dash == nil {
			return m, nil
		}
		if m.dash.Open == nil && m.project == "" {
			m.status = "Choose a project first."
			return m.focusProject()
		}
		return m, m.toggleSession()

	case key.Matches(msg, m.keys.Project):
		return m.focusProject()

	case key.Matches(msg, m.keys.Edit):
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.editID = e.ID
		m.editing = newEditEntryFields(e, m.app.layout())
		m.form = editEntryForm(m.ctx, m.app, m.editing)
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); !ok {
			return m, nil
		}
		m.mode = modeConfirmDelete
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.status, m.err = "", nil
		return m, tea.Batch(m.loadDashboard(), m.loadProjects())

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m tuiModel) focusProject() (tea.Model, tea.Cmd) {
	m.mode = modeProject
	m.input.SetValue(m.project)
	m.input.CursorEnd()
	m.table.Blur()
	return m, m.input.Focus()
}

func (m tuiModel) leaveMode() tuiModel {
	m.mode = modeBrowse
	m.input.Blur()
	m.form = nil
	m.editing = nil
	m.editID = ""
	m.table.Focus()
	return m
}

func (m tuiModel) updateProject(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			return m.leaveMode(), nil
		case tea.KeyEnter:
			name := domain.NormalizeProjectName(m.input.Value())
			if err := domain.ValidateProjectName(name); err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.project = name
			m.status = "Next session: " + name
			return m.leaveMode(), nil
		case tea.KeyCtrlC:
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.status = "Edit cancelled."
		return m.leaveMode(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		save := m.saveEdit()
		return m.leaveMode(), tea.Batch(cmd, save)
	case huh.StateAborted:
		m.status = "Edit cancelled."
		return m.leaveMode(), nil
	}
	return m, cmd
}

func (m tuiModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	e, found := m.selected()
	m = m.leaveMode()
	if found && (keyMsg.String() == "y" || keyMsg.String() == "Y") {
		return m, m.deleteSelected(e)
	}
	m.status = "Delete cancelled."
	return m, nil
}

// errorText renders known domain errors as short hints.
func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionAlreadyOpen):
		return "A session is already running."
	case errors.Is(err, domain.ErrNoOpenSession):
		return "No session is running."
	case errors.Is(err, domain.ErrInvalidTimeRange):
		return "End time is before start time."
	case errors.Is(err, domain.ErrNotFound):
		return "Session not found."
	}
	return err.Error()
}
