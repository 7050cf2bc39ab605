// ABOUTME: Bubble Tea sub-model for the campaign plan card, the tool card grid, and the research button.
// ABOUTME: Renders planner fields with date formatting and marks each card ready or waiting from the snapshot.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/campaigndash/campaign"
)

// emptyValue stands in for a planner field the backend left falsy.
const emptyValue = "-"

// dateLayouts are the campaign date formats the backend is known to send.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// PlanPanelModel displays the campaign plan and the tool cards.
type PlanPanelModel struct {
	snap   campaign.Snapshot
	width  int
	height int
}

// NewPlanPanelModel creates a plan panel with nothing reported yet.
func NewPlanPanelModel() PlanPanelModel {
	return PlanPanelModel{}
}

// SetSnapshot replaces the state the panel renders.
func (m *PlanPanelModel) SetSnapshot(s campaign.Snapshot) {
	m.snap = s
}

// SetSize sets the available dimensions.
func (m *PlanPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the plan card, tool cards, and research button stacked vertically.
func (m PlanPanelModel) View() string {
	sections := []string{m.planView(), m.cardsView(), m.researchView()}
	content := strings.Join(sections, "\n\n")

	style := BorderStyle
	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	if m.height > 0 {
		style = style.Height(m.height - 2)
	}
	return style.Render(content)
}

func (m PlanPanelModel) planView() string {
	p := m.snap.Planner
	if p == nil {
		return TitleStyle.Render("CAMPAIGN PLAN") + "\n" +
			PendingStyle.Render("Waiting for Campaign Plan...")
	}
	lines := []string{
		TitleStyle.Render("CAMPAIGN PLAN") + " " + CompletedStyle.Render("Generated"),
		row("Goal", displayValue(p.Goal)),
		row("Topic", displayValue(p.Topic)),
		row("Target Audience", displayValue(p.TargetAudience)),
		row("Campaign Date", formatCampaignDate(p.CampaignDate)),
	}
	return strings.Join(lines, "\n")
}

func (m PlanPanelModel) cardsView() string {
	lines := []string{TitleStyle.Render("CAMPAIGN TOOLS")}
	for _, c := range campaign.Cards {
		state := PendingStyle.Render("waiting")
		if c.ID.Ready(m.snap) {
			state = CompletedStyle.Render("ready")
		}
		head := fmt.Sprintf("[%d] %s %s", int(c.ID), c.ID.String(), ValueStyle.Render(c.Title))
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, head, " ", state))
		lines = append(lines, "    "+HintStyle.Render(c.Description))
	}
	return strings.Join(lines, "\n")
}

func (m PlanPanelModel) researchView() string {
	if campaign.ResearchReady(m.snap) {
		return CompletedStyle.Render("[r] View Research Analytics")
	}
	return PendingStyle.Render("Waiting for Research Agent...")
}

// row renders a label-value pair using the standard label and value styles.
func row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

// displayValue renders a planner field, treating JavaScript-falsy values as empty.
func displayValue(v any) string {
	switch x := v.(type) {
	case nil:
		return emptyValue
	case string:
		if x == "" {
			return emptyValue
		}
		return x
	case bool:
		if !x {
			return emptyValue
		}
		return "true"
	case float64:
		if x == 0 {
			return emptyValue
		}
		return fmt.Sprint(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// formatCampaignDate renders the date as M/D/YYYY, or TBD when it is missing
// or not a recognizable date.
func formatCampaignDate(v any) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return "TBD"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("1/2/2006")
		}
	}
	return "TBD"
}
