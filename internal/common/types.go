package common

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/karasuda/yomu/internal/ui/components"
)

// ── Custom messages ─────────────────────────────────────────────────────────

// RefreshMsg signals the reader to reload the page list (e.g. after the
// chapter directory changed on disk).
type RefreshMsg struct{}

// ErrMsg carries an error to be displayed in the status bar.
type ErrMsg struct{ Err error }

// InfoMsg carries an informational message.
type InfoMsg struct{ Text string }

// CmdErr creates a tea.Cmd that sends an ErrMsg.
func CmdErr(err error) tea.Cmd {
	return func() tea.Msg { return ErrMsg{Err: err} }
}

// CmdInfo creates a tea.Cmd that sends an InfoMsg.
func CmdInfo(text string) tea.Cmd {
	return func() tea.Msg { return InfoMsg{Text: text} }
}

// ── View interface ──────────────────────────────────────────────────────────

// View is the interface the app model drives the reader surface through.
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
	ShortHelp() []components.HelpEntry

	// Status returns the data the app renders into the status bar.
	Status() components.StatusBarData
}
