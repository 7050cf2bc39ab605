// ABOUTME: Implements a scrollable activity log panel using the bubbles viewport component.
// ABOUTME: Renders every activity entry with severity colors and follows the newest entry.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/campaigndash/campaign"
)

// LogPanelModel is a scrollable view of the dashboard activity log.
type LogPanelModel struct {
	entries  []campaign.Entry
	viewport viewport.Model
	focused  bool
	width    int
	height   int
}

// NewLogPanelModel creates an empty log panel.
func NewLogPanelModel() LogPanelModel {
	return LogPanelModel{
		viewport: viewport.New(80, 10),
	}
}

// SetEntries replaces the rendered entries. The activity log only grows, so
// the panel scrolls to the bottom whenever new entries arrive.
func (m *LogPanelModel) SetEntries(entries []campaign.Entry) {
	grew := len(entries) != len(m.entries)
	m.entries = entries
	m.syncViewport(grew)
}

// Len returns the number of entries in the log.
func (m LogPanelModel) Len() int {
	return len(m.entries)
}

// SetFocused sets whether this panel accepts scroll keys.
func (m *LogPanelModel) SetFocused(focused bool) {
	m.focused = focused
}

// IsFocused returns whether the panel is focused.
func (m LogPanelModel) IsFocused() bool {
	return m.focused
}

// SetSize sets the available dimensions and updates the viewport.
func (m *LogPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Reserve space for the border (2 lines top/bottom) and title (1 line)
	vpWidth := w - 2
	vpHeight := h - 3
	if vpWidth < 1 {
		vpWidth = 1
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.syncViewport(false)
}

// Update forwards scroll keys to the viewport while focused.
func (m LogPanelModel) Update(msg tea.Msg) (LogPanelModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// AtBottom reports whether the newest entry is visible.
func (m LogPanelModel) AtBottom() bool {
	return m.viewport.AtBottom()
}

// View renders the log panel.
func (m LogPanelModel) View() string {
	title := "ACTIVITY LOG"
	border := BorderStyle
	if m.focused {
		title = "ACTIVITY LOG (focused)"
		border = FocusedBorderStyle
	}

	var content string
	if len(m.entries) == 0 {
		content = PendingStyle.Render("No activity yet")
	} else {
		content = m.viewport.View()
	}

	rendered := TitleStyle.Render(title) + "\n" + content

	return border.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(rendered)
}

func (m *LogPanelModel) syncViewport(toBottom bool) {
	if len(m.entries) == 0 {
		m.viewport.SetContent("")
		return
	}
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, formatEntry(e))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	if toBottom {
		m.viewport.GotoBottom()
	}
}

// formatEntry formats a single activity entry as a log line.
func formatEntry(e campaign.Entry) string {
	text := e.Text()
	if e.IsSeparator() {
		text = "── " + text + " ──"
	}
	line := StyleForSeverity(e.Severity).Render(text)
	if e.Time.IsZero() {
		return line
	}
	return LogTimestampStyle.Render(e.Time.Format("15:04:05")) + " " + line
}
