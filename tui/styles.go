// ABOUTME: Defines lipgloss styles for the dashboard panels, activity log severities, and card states.
// ABOUTME: Provides StyleForSeverity and StyleForConn to map domain values to display styles.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/campaigndash/campaign"
	"github.com/2389-research/campaigndash/dashboard"
)

var (
	// Panel borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
	FocusedBorderStyle = BorderStyle.
				BorderForeground(lipgloss.Color("170"))

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// Run and card states
	PendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	RunningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	CompletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	FailedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// Activity log
	LogTimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	LogDefaultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	LogStatusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	LogErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	LogSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	AlertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	// Plan panel labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// Key hints
	HintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// StyleForSeverity returns the log line style for an activity entry severity.
func StyleForSeverity(sev campaign.Severity) lipgloss.Style {
	switch sev {
	case campaign.SeverityStatus:
		return LogStatusStyle
	case campaign.SeverityError:
		return LogErrorStyle
	case campaign.SeveritySeparator:
		return LogSeparatorStyle
	default:
		return LogDefaultStyle
	}
}

// StyleForConn returns the status bar style for a connection state.
func StyleForConn(c dashboard.ConnState) lipgloss.Style {
	switch c {
	case dashboard.ConnOpen:
		return CompletedStyle
	case dashboard.ConnConnecting:
		return RunningStyle
	case dashboard.ConnClosed:
		return FailedStyle
	default:
		return PendingStyle
	}
}
