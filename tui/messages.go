// ABOUTME: Bubble Tea message types used in the TUI message loop.
// ABOUTME: Each type wraps a dashboard update, alert, or the result of a background command.
package tui

import (
	"time"

	"github.com/2389-research/campaigndash/dashboard"
)

// UpdateMsg carries a published dashboard state into the message loop.
type UpdateMsg struct {
	Update dashboard.Update
}

// AlertMsg carries a rejected deferred send or other user-facing alert.
type AlertMsg struct {
	Err error
}

// SendResultMsg reports the outcome of a prompt send.
type SendResultMsg struct {
	Err error
}

// OpenResultMsg reports the outcome of opening a handoff view.
type OpenResultMsg struct {
	Target string
	URL    string
	Err    error
}

// CopyResultMsg reports the outcome of copying landing page code.
type CopyResultMsg struct {
	Bytes int
	Err   error
}

// DashboardStoppedMsg signals that the dashboard event loop has exited.
type DashboardStoppedMsg struct {
	Err error
}

// TickMsg is sent periodically to refresh the elapsed run time.
type TickMsg struct {
	Time time.Time
}
