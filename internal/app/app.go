package app

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/karasuda/yomu/internal/common"
	"github.com/karasuda/yomu/internal/config"
	"github.com/karasuda/yomu/internal/input"
	"github.com/karasuda/yomu/internal/ui"
	"github.com/karasuda/yomu/internal/ui/components"
	"github.com/karasuda/yomu/internal/ui/views"
)

// volumePollInterval is how often the volume input bridge is sampled. Short
// enough that a press feels immediate, long enough to stay off profiles.
const volumePollInterval = 50 * time.Millisecond

// Model is the top-level Bubbletea model: it owns the reader view, the help
// overlay, the status bar, and the optional volume input bridge.
type Model struct {
	cfg    *config.Config
	styles ui.Styles
	keys   KeyMap
	reader common.View

	// bridge is nil unless volume scrolling is configured.
	bridge *input.Bridge

	width  int
	height int

	showHelp  bool
	statusMsg string
	statusErr bool
	statusExp time.Time
}

// volumeTickMsg drives the periodic bridge poll.
type volumeTickMsg struct{}

// New creates the application model.
func New(cfg *config.Config, styles ui.Styles, reader common.View, bridge *input.Bridge) Model {
	return Model{
		cfg:    cfg,
		styles: styles,
		keys:   DefaultKeyMap(),
		reader: reader,
		bridge: bridge,
	}
}

// Init starts the reader and, when configured, the volume poll loop.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.reader.Init()}
	if m.bridge != nil {
		cmds = append(cmds, volumeTick())
	}
	return tea.Batch(cmds...)
}

func volumeTick() tea.Cmd {
	return tea.Tick(volumePollInterval, func(time.Time) tea.Msg {
		return volumeTickMsg{}
	})
}

// Update processes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.reader.SetSize(m.width, m.contentHeight())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Back):
			if m.showHelp {
				m.showHelp = false
				return m, nil
			}
		case key.Matches(msg, m.keys.Refresh):
			return m.forward(common.RefreshMsg{})
		}
		if m.showHelp {
			// The overlay swallows every key the globals did not claim.
			return m, nil
		}
		return m.forward(msg)

	case common.ErrMsg:
		m.statusMsg = msg.Err.Error()
		m.statusErr = true
		m.statusExp = time.Now().Add(5 * time.Second)
		return m, nil

	case common.InfoMsg:
		m.statusMsg = msg.Text
		m.statusErr = false
		m.statusExp = time.Now().Add(3 * time.Second)
		return m, nil

	case volumeTickMsg:
		if m.bridge == nil {
			return m, nil
		}
		if cmd, px, fired := m.bridge.Poll(); fired {
			delta := px
			if cmd == input.ScrollUp {
				delta = -px
			}
			model, fwd := m.forward(views.ScrollByMsg{Px: delta})
			return model, tea.Batch(fwd, volumeTick())
		}
		return m, volumeTick()
	}

	return m.forward(msg)
}

// forward hands a message to the reader view.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.reader.Update(msg)
	m.reader = updated
	return m, cmd
}

// View renders the entire UI. Pure function, no I/O.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showHelp {
		sections := components.GlobalHelpEntries()
		sections["Reading"] = m.reader.ShortHelp()
		return components.RenderHelp(m.styles, "Keyboard Shortcuts", sections, m.width, m.height)
	}

	content := lipgloss.NewStyle().
		Width(m.width).
		Height(m.contentHeight()).
		Render(m.reader.View())

	barData := m.reader.Status()
	if m.statusMsg != "" && time.Now().Before(m.statusExp) {
		barData.Message = m.statusMsg
		barData.IsError = m.statusErr
	}
	statusBar := components.RenderStatusBar(m.styles, barData, m.width)

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}

// contentHeight is the terminal height minus the status bar row.
func (m Model) contentHeight() int {
	h := m.height - 1
	if h < 1 {
		h = 1
	}
	return h
}
