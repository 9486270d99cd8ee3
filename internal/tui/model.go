package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/marketdash/internal/dashboard"
)

// RefreshRequestedMsg asks the dashboard to refresh. It is sent on mount, by
// the refresh key and by the auto-refresh schedule. It is ignored while a
// refresh is already loading.
type RefreshRequestedMsg struct{}

// refreshSettledMsg carries a finished fetch back to the update loop.
type refreshSettledMsg struct {
	result dashboard.Result
}

// DashboardModel is the Bubble Tea model for the interactive dashboard.
//
//nolint:recvcheck // Bubble Tea models use value receivers for Init/Update/View.
type DashboardModel struct {
	ctx         context.Context //nolint:containedctx // Fetch commands run with the program context.
	coordinator *dashboard.Coordinator
	opts        RenderOptions
	now         func() time.Time

	state dashboard.ViewState

	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap

	width    int
	height   int
	quitting bool
}

// NewDashboardModel creates the interactive dashboard over coordinator.
// opts.Width is replaced by the terminal width once known; a non-zero
// opts.Now pins the clock used for relative timestamps.
func NewDashboardModel(
	ctx context.Context,
	coordinator *dashboard.Coordinator,
	opts RenderOptions,
) DashboardModel {
	now := time.Now
	if !opts.Now.IsZero() {
		fixed := opts.Now
		now = func() time.Time { return fixed }
	}

	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	m := DashboardModel{
		ctx:         ctx,
		coordinator: coordinator,
		opts:        opts,
		now:         now,
		state:       coordinator.Snapshot(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(InfoStyle),
		),
		viewport: viewport.New(width, defaultHeight-footerHeight),
		help:     help.New(),
		keys:     defaultKeyMap(),
		width:    width,
		height:   defaultHeight,
	}
	m.syncContent()
	return m
}

// Init starts the spinner and issues the mount-time refresh.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return RefreshRequestedMsg{} },
	)
}

// Update handles messages and updates the model state.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case RefreshRequestedMsg:
		return m.startRefresh()
	case refreshSettledMsg:
		m.coordinator.Settle(msg.result)
		m.state = m.coordinator.Snapshot()
		m.syncContent()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state.Loading() {
			m.syncContent()
		}
		return m, cmd
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
}

// View renders the scrollable dashboard body and the key help footer.
func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.help.View(m.keys),
	)
}

// State returns the view state the model last rendered.
func (m DashboardModel) State() dashboard.ViewState {
	return m.state
}

func (m DashboardModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.viewport.Width = msg.Width
	m.viewport.Height = max(1, msg.Height-footerHeight)
	m.help.Width = msg.Width
	m.syncContent()
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m.startRefresh()
	case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// startRefresh dispatches a new generation unless one is already loading.
// The fetch runs in the returned command; only Update settles it.
func (m DashboardModel) startRefresh() (tea.Model, tea.Cmd) {
	if m.state.Loading() {
		return m, nil
	}

	ticket := m.coordinator.Begin()
	m.state = m.coordinator.Snapshot()
	m.syncContent()

	coordinator, ctx := m.coordinator, m.ctx
	return m, func() tea.Msg {
		return refreshSettledMsg{result: coordinator.Fetch(ctx, ticket)}
	}
}

func (m *DashboardModel) syncContent() {
	opts := m.opts
	opts.Width = m.width
	opts.Now = m.now()
	opts.Spinner = m.spinner.View()
	m.viewport.SetContent(RenderDashboard(m.state, opts))
}
