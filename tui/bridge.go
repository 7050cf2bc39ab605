// ABOUTME: Bridge connecting the dashboard reducer to the Bubble Tea message loop.
// ABOUTME: Provides EventBridge for update injection, and tea.Cmd factories for the event loop, sends, handoffs, and ticks.
package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/campaigndash/campaign"
	"github.com/2389-research/campaigndash/dashboard"
)

// Controller is the slice of the dashboard the TUI drives.
type Controller interface {
	Run(ctx context.Context) error
	Connect()
	SendPrompt(prompt string) error
	SendPromptAfter(prompt string, delay time.Duration)
	Close()
}

// Opener hands campaign artifacts to the browser views.
type Opener interface {
	OpenCard(ctx context.Context, id campaign.CardID, s campaign.Snapshot) (string, error)
	OpenResearch(ctx context.Context, s campaign.Snapshot) (string, error)
}

var (
	_ Controller = (*dashboard.Dashboard)(nil)
)

// EventBridge wraps a tea.Program's Send method for injecting dashboard
// updates into the Bubble Tea message loop.
type EventBridge struct {
	send func(msg tea.Msg)
}

// NewEventBridge creates an EventBridge that sends messages via the given function.
// Typically called with program.Send as the argument.
func NewEventBridge(send func(msg tea.Msg)) *EventBridge {
	return &EventBridge{send: send}
}

// HandleUpdate matches dashboard.WithUpdateHandler.
func (b *EventBridge) HandleUpdate(u dashboard.Update) {
	b.send(UpdateMsg{Update: u})
}

// HandleAlert matches dashboard.WithAlertHandler.
func (b *EventBridge) HandleAlert(err error) {
	b.send(AlertMsg{Err: err})
}

// RunDashboardCmd returns a tea.Cmd that runs the dashboard event loop until
// ctx is cancelled or the dashboard is closed.
func RunDashboardCmd(ctx context.Context, c Controller) tea.Cmd {
	return func() tea.Msg {
		return DashboardStoppedMsg{Err: c.Run(ctx)}
	}
}

// ConnectCmd opens the initial connection.
func ConnectCmd(c Controller) tea.Cmd {
	return func() tea.Msg {
		c.Connect()
		return nil
	}
}

// AutoStartCmd schedules prompt to be sent after delay.
func AutoStartCmd(c Controller, prompt string, delay time.Duration) tea.Cmd {
	return func() tea.Msg {
		c.SendPromptAfter(prompt, delay)
		return nil
	}
}

// SendPromptCmd sends prompt and reports the result.
func SendPromptCmd(c Controller, prompt string) tea.Cmd {
	return func() tea.Msg {
		return SendResultMsg{Err: c.SendPrompt(prompt)}
	}
}

// OpenCardCmd writes the card's handoff payload and opens its view.
func OpenCardCmd(ctx context.Context, o Opener, id campaign.CardID, s campaign.Snapshot) tea.Cmd {
	return func() tea.Msg {
		url, err := o.OpenCard(ctx, id, s)
		return OpenResultMsg{Target: cardTitle(id), URL: url, Err: err}
	}
}

// OpenResearchCmd writes the research payload and opens the research view.
func OpenResearchCmd(ctx context.Context, o Opener, s campaign.Snapshot) tea.Cmd {
	return func() tea.Msg {
		url, err := o.OpenResearch(ctx, s)
		return OpenResultMsg{Target: "Research", URL: url, Err: err}
	}
}

// CopyCmd writes text to the system clipboard using write, or
// clipboard.WriteAll when write is nil.
func CopyCmd(text string, write func(string) error) tea.Cmd {
	if write == nil {
		write = clipboard.WriteAll
	}
	return func() tea.Msg {
		if err := write(text); err != nil {
			return CopyResultMsg{Err: err}
		}
		return CopyResultMsg{Bytes: len(text)}
	}
}

// QuitCmd tears the dashboard down, then quits the program.
func QuitCmd(c Controller) tea.Cmd {
	return func() tea.Msg {
		c.Close()
		return tea.Quit()
	}
}

// TickCmd returns a tea.Cmd that sends a TickMsg after the given interval.
func TickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func cardTitle(id campaign.CardID) string {
	if c, ok := campaign.CardByID(id); ok {
		return c.Title
	}
	return id.String()
}
