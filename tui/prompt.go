// ABOUTME: PromptModel wraps a bubbles textinput for entering the campaign prompt.
// ABOUTME: Holds the prompt between runs so the same request can be resent.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptModel is the single-line prompt editor.
type PromptModel struct {
	textInput textinput.Model
	width     int
}

// NewPromptModel creates a focused prompt input seeded with initial.
func NewPromptModel(initial string) PromptModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe the campaign you want to run..."
	ti.CharLimit = 0
	ti.SetValue(initial)
	ti.Focus()
	return PromptModel{textInput: ti}
}

// Value returns the current prompt text.
func (m PromptModel) Value() string {
	return m.textInput.Value()
}

// Focused reports whether the input receives keystrokes.
func (m PromptModel) Focused() bool {
	return m.textInput.Focused()
}

// SetFocused focuses or blurs the input.
func (m *PromptModel) SetFocused(focused bool) {
	if focused {
		m.textInput.Focus()
		return
	}
	m.textInput.Blur()
}

// SetWidth sets the available width.
func (m *PromptModel) SetWidth(w int) {
	m.width = w
	m.textInput.Width = max(w-6, 1)
}

// Update forwards key events to the embedded textinput.
func (m PromptModel) Update(msg tea.Msg) (PromptModel, tea.Cmd) {
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the prompt inside a border with key hints.
func (m PromptModel) View() string {
	border := BorderStyle
	if m.textInput.Focused() {
		border = FocusedBorderStyle
	}
	hints := HintStyle.Render("enter send | tab focus | 1-4 open card | r research | c copy page | q quit")
	content := TitleStyle.Render("PROMPT") + "\n" + m.textInput.View() + "\n" + hints
	if m.width > 0 {
		border = border.Width(m.width - 2)
	}
	return border.Render(content)
}
