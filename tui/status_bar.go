// ABOUTME: Implements a single-line status bar for the top of the TUI showing run and connection state.
// ABOUTME: Displays Campaign Running/Ready, elapsed run time, connection state, the run ID, and the latest alert.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/campaigndash/dashboard"
)

// StatusBarModel displays run status in a single line.
type StatusBarModel struct {
	running   bool
	conn      dashboard.ConnState
	outcome   dashboard.Outcome
	runID     string
	endpoint  string
	alert     string
	startTime time.Time
	now       func() time.Time
	width     int
}

// NewStatusBarModel creates a new StatusBarModel for the given endpoint.
func NewStatusBarModel(endpoint string) StatusBarModel {
	return StatusBarModel{
		endpoint: endpoint,
		now:      time.Now,
	}
}

// SetUpdate refreshes the bar from a published dashboard update. The run
// clock starts when a new run ID appears.
func (m *StatusBarModel) SetUpdate(u dashboard.Update) {
	if u.RunID != "" && u.RunID != m.runID {
		m.startTime = m.now()
	}
	m.running = u.Running
	m.conn = u.Conn
	m.outcome = u.Outcome
	m.runID = u.RunID
	if u.Endpoint != "" {
		m.endpoint = u.Endpoint
	}
}

// SetAlert shows msg until it is replaced or cleared.
func (m *StatusBarModel) SetAlert(msg string) {
	m.alert = msg
}

// Alert returns the alert currently shown.
func (m StatusBarModel) Alert() string {
	return m.alert
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Elapsed returns the time since the current run started, or zero if no
// run has started.
func (m StatusBarModel) Elapsed() time.Duration {
	if m.startTime.IsZero() {
		return 0
	}
	return m.now().Sub(m.startTime)
}

// formatElapsed formats a duration as a human-readable string.
// Durations under a minute show as seconds (e.g. "12s").
// Durations of a minute or more show as minutes and seconds (e.g. "2m30s").
func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) - minutes*60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}

// runLabel is the header badge: Campaign Running while a run is in flight, Ready otherwise.
func (m StatusBarModel) runLabel() string {
	if m.running {
		return RunningStyle.Render("Campaign Running " + formatElapsed(m.Elapsed()))
	}
	switch m.outcome {
	case dashboard.OutcomeCompleted:
		return CompletedStyle.Render("Ready (complete)")
	case dashboard.OutcomeFailed:
		return FailedStyle.Render("Ready (failed)")
	default:
		return CompletedStyle.Render("Ready")
	}
}

// View renders the status bar as a single styled line.
func (m StatusBarModel) View() string {
	parts := []string{
		m.runLabel(),
		StyleForConn(m.conn).Render(m.conn.String()),
		m.endpoint,
	}
	if m.runID != "" {
		parts = append(parts, "run "+shortID(m.runID))
	}
	if m.alert != "" {
		parts = append(parts, AlertStyle.Render(m.alert))
	}
	content := strings.Join(parts, " | ")

	style := StatusBarStyle.Width(m.width)

	return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, style.Render(content))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
