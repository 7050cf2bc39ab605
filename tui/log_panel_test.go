// ABOUTME: Tests for the LogPanelModel scrollable activity log panel.
// ABOUTME: Validates entry replacement, unbounded growth, focus, severity formatting, and view rendering.
package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/campaigndash/campaign"
)

func entriesOf(n int) []campaign.Entry {
	log := campaign.NewActivityLog()
	for i := 0; i < n; i++ {
		log.Append("Planner", fmt.Sprintf("line %d", i), campaign.SeverityDefault)
	}
	return log.Entries()
}

func TestLogPanel_NewLogPanelModel_Empty(t *testing.T) {
	m := NewLogPanelModel()
	if m.Len() != 0 {
		t.Errorf("expected 0 entries, got %d", m.Len())
	}
}

func TestLogPanel_SetEntries_KeepsEverything(t *testing.T) {
	m := NewLogPanelModel()
	m.SetEntries(entriesOf(500))
	if m.Len() != 500 {
		t.Errorf("expected 500 entries, got %d", m.Len())
	}
}

func TestLogPanel_SetEntries_FollowsNewest(t *testing.T) {
	m := NewLogPanelModel()
	m.SetSize(80, 8)
	m.SetEntries(entriesOf(50))

	if !m.AtBottom() {
		t.Error("expected viewport at bottom after new entries")
	}
	view := m.View()
	if !strings.Contains(view, "line 49") {
		t.Error("expected newest entry in view")
	}
	if strings.Contains(view, "line 0") {
		t.Error("expected oldest entry scrolled out of view")
	}
}

func TestLogPanel_Focus(t *testing.T) {
	m := NewLogPanelModel()
	if m.IsFocused() {
		t.Error("expected unfocused by default")
	}
	m.SetFocused(true)
	if !m.IsFocused() {
		t.Error("expected focused after SetFocused(true)")
	}
	m.SetSize(80, 10)
	if !strings.Contains(m.View(), "ACTIVITY LOG (focused)") {
		t.Error("expected focused title")
	}
}

func TestLogPanel_Update_ScrollsOnlyWhenFocused(t *testing.T) {
	m := NewLogPanelModel()
	m.SetSize(80, 8)
	m.SetEntries(entriesOf(50))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if !m.AtBottom() {
		t.Error("unfocused panel should ignore scroll keys")
	}

	m.SetFocused(true)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.AtBottom() {
		t.Error("focused panel should scroll up")
	}
}

func TestLogPanel_View_EmptyPlaceholder(t *testing.T) {
	m := NewLogPanelModel()
	m.SetSize(60, 10)
	if !strings.Contains(m.View(), "No activity yet") {
		t.Error("expected empty placeholder")
	}
}

func TestLogPanel_FormatEntry(t *testing.T) {
	ts := time.Date(2026, 2, 9, 14, 30, 5, 0, time.UTC)
	tests := []struct {
		name  string
		entry campaign.Entry
		want  []string
	}{
		{
			name:  "status",
			entry: campaign.Entry{Label: campaign.LabelStatus, Message: "Connected to server. Ready to run.", Severity: campaign.SeverityStatus, Time: ts},
			want:  []string{"14:30:05", "STATUS: Connected to server. Ready to run."},
		},
		{
			name:  "error",
			entry: campaign.Entry{Label: campaign.LabelError, Message: "boom", Severity: campaign.SeverityError, Time: ts},
			want:  []string{"ERROR: boom"},
		},
		{
			name:  "separator",
			entry: campaign.Entry{Label: campaign.LabelStatus, Message: "Sending prompt to Foundry...", Severity: campaign.SeveritySeparator},
			want:  []string{"──", "Sending prompt to Foundry..."},
		},
		{
			name:  "stage",
			entry: campaign.Entry{Label: "Research", Message: "Audience persona ready.", Time: ts},
			want:  []string{"Research: Audience persona ready."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatEntry(tt.entry)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("formatEntry() = %q, missing %q", got, w)
				}
			}
		})
	}
}
