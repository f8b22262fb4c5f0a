package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/karasuda/yomu/internal/ui"
)

// StatusBarData carries the info displayed in the bottom status bar.
type StatusBarData struct {
	Title     string // sequence title (chapter name)
	Page      int    // 1-based current page
	Total     int    // sequence length
	Percent   int    // scroll progress 0-100
	FitMode   string
	Loading   int    // pages currently fetching/decoding
	Failed    int    // pages in the error state
	Message   string // transient info/error message
	IsError   bool
	Restoring bool // true while a saved position is being restored
}

// RenderStatusBar renders the bottom status bar with clear visual sections
// separated by dim vertical bars.
//
// Wide (>= 60):   12/40  │  31%  │  contain  │  2 loading        one-piece-ch-1042
// Medium (40-59): 12/40  │  31%  │  contain
// Narrow (< 40):  12/40  │  31%
func RenderStatusBar(styles ui.Styles, data StatusBarData, width int) string {
	t := styles.Theme

	sepStyle := lipgloss.NewStyle().Foreground(t.Border).Faint(true)
	sep := sepStyle.Render(" │ ")

	// ── Left sections ────────────────────────────────────────────

	pageStyle := lipgloss.NewStyle().Foreground(t.Progress).Bold(true)
	pageSection := " " + pageStyle.Render(fmt.Sprintf("%d/%d", data.Page, data.Total))

	pctSection := sep + lipgloss.NewStyle().Foreground(t.TextMuted).Render(fmt.Sprintf("%d%%", data.Percent))

	var fitSection string
	if width >= 40 && data.FitMode != "" {
		fitSection = sep + lipgloss.NewStyle().Foreground(t.Secondary).Render(data.FitMode)
	}

	var stateSection string
	switch {
	case data.Restoring:
		badge := lipgloss.NewStyle().
			Foreground(t.TextInverse).
			Background(t.Warning).
			Bold(true).
			Padding(0, 1).
			Render("RESTORING")
		stateSection = sep + badge
	case data.Failed > 0:
		stateSection = sep + lipgloss.NewStyle().Foreground(t.Error).
			Render(fmt.Sprintf("✗ %d failed", data.Failed))
	case data.Loading > 0:
		stateSection = sep + lipgloss.NewStyle().Foreground(t.Warning).
			Render(fmt.Sprintf("… %d loading", data.Loading))
	}

	left := pageSection + pctSection + fitSection + stateSection

	// ── Right section ────────────────────────────────────────────

	var right string
	if data.Message != "" {
		fg := t.Info
		if data.IsError {
			fg = t.Error
		}
		right = lipgloss.NewStyle().Foreground(fg).Render(data.Message) + " "
	} else if width >= 60 && data.Title != "" {
		right = lipgloss.NewStyle().Foreground(t.TextSubtle).Render(ui.Truncate(data.Title, 30)) + " "
	}

	// ── Assemble ─────────────────────────────────────────────────

	leftW := lipgloss.Width(left)
	rightW := lipgloss.Width(right)
	gap := width - leftW - rightW
	if gap < 0 {
		gap = 1
		right = "" // drop right side if no room
	}

	content := left + strings.Repeat(" ", gap) + right

	return styles.StatusBar.Width(width).Render(content)
}
