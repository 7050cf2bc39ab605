// ABOUTME: Scrollable panel showing the most recent raw stage payload as indented JSON.
// ABOUTME: Falls back to a waiting placeholder while the live blob is empty.
package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/campaigndash/campaign"
)

const livePlaceholder = "{\n  // Waiting for data...\n}"

// LivePanelModel renders the live state JSON.
type LivePanelModel struct {
	content  string
	viewport viewport.Model
	focused  bool
	width    int
	height   int
}

// NewLivePanelModel creates a live panel showing the placeholder.
func NewLivePanelModel() LivePanelModel {
	m := LivePanelModel{viewport: viewport.New(40, 10)}
	m.setContent(livePlaceholder)
	return m
}

// SetSnapshot refreshes the panel from the store snapshot.
func (m *LivePanelModel) SetSnapshot(s campaign.Snapshot) {
	if !s.HasLive() {
		m.setContent(livePlaceholder)
		return
	}
	m.setContent(s.LiveIndented())
}

// Content returns the text currently shown.
func (m LivePanelModel) Content() string {
	return m.content
}

// SetFocused sets whether this panel accepts scroll keys.
func (m *LivePanelModel) SetFocused(focused bool) {
	m.focused = focused
}

// SetSize sets the available dimensions and updates the viewport.
func (m *LivePanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = max(w-2, 1)
	m.viewport.Height = max(h-3, 1)
}

// Update forwards scroll keys to the viewport while focused.
func (m LivePanelModel) Update(msg tea.Msg) (LivePanelModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the live state panel.
func (m LivePanelModel) View() string {
	title := "LIVE STATE"
	border := BorderStyle
	if m.focused {
		title = "LIVE STATE (focused)"
		border = FocusedBorderStyle
	}
	rendered := TitleStyle.Render(title) + "\n" + m.viewport.View()
	return border.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(rendered)
}

func (m *LivePanelModel) setContent(s string) {
	if s == m.content {
		return
	}
	m.content = s
	m.viewport.SetContent(s)
	m.viewport.GotoTop()
}
