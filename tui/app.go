// ABOUTME: Top-level Bubble Tea AppModel that composes the dashboard panels into a unified layout.
// ABOUTME: Implements tea.Model (Init, Update, View) and routes updates, alerts, and keys to the sub-panels.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/campaigndash/campaign"
	"github.com/2389-research/campaigndash/dashboard"
	"github.com/2389-research/campaigndash/handoff"
)

// tickInterval drives the elapsed run clock in the status bar.
const tickInterval = time.Second

// FocusTarget indicates which panel currently has keyboard focus.
type FocusTarget int

const (
	FocusPrompt FocusTarget = iota
	FocusLog
	FocusLive
)

// AppOptions configures startup behavior of the AppModel.
type AppOptions struct {
	// Prompt seeds the prompt input.
	Prompt string
	// AutoStart sends Prompt AutoStartDelay after startup.
	AutoStart      bool
	AutoStartDelay time.Duration
	// Copy writes to the clipboard. Nil uses the system clipboard.
	Copy func(string) error
}

// AppModel is the top-level Bubble Tea model that composes all TUI sub-panels
// and routes messages between them.
type AppModel struct {
	statusBar StatusBarModel
	plan      PlanPanelModel
	log       LogPanelModel
	live      LivePanelModel
	prompt    PromptModel

	ctrl   Controller
	opener Opener
	ctx    context.Context
	opts   AppOptions

	last    dashboard.Update
	focus   FocusTarget
	stopped bool  // dashboard event loop exited
	err     error // event loop error (if any)
	width   int
	height  int
}

// NewAppModel creates an AppModel driving ctrl. opener may be nil, which
// disables the card and research keys.
func NewAppModel(ctx context.Context, ctrl Controller, opener Opener, endpoint string, opts AppOptions) AppModel {
	return AppModel{
		statusBar: NewStatusBarModel(endpoint),
		plan:      NewPlanPanelModel(),
		log:       NewLogPanelModel(),
		live:      NewLivePanelModel(),
		prompt:    NewPromptModel(opts.Prompt),
		ctrl:      ctrl,
		opener:    opener,
		ctx:       ctx,
		opts:      opts,
		focus:     FocusPrompt,
	}
}

// Init implements tea.Model. Starts the dashboard loop, opens the first
// connection, and schedules the auto-start prompt when requested.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		RunDashboardCmd(m.ctx, m.ctrl),
		ConnectCmd(m.ctrl),
		TickCmd(tickInterval),
		textinput.Blink,
	}
	if m.opts.AutoStart && m.opts.Prompt != "" {
		cmds = append(cmds, AutoStartCmd(m.ctrl, m.opts.Prompt, m.opts.AutoStartDelay))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model. Routes incoming messages to the appropriate
// sub-panel and returns the updated model with any follow-up commands.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case UpdateMsg:
		return m.handleUpdate(msg)

	case AlertMsg:
		m.statusBar.SetAlert(dashboard.AlertMessage(msg.Err))
		return m, nil

	case SendResultMsg:
		if msg.Err != nil {
			m.statusBar.SetAlert(dashboard.AlertMessage(msg.Err))
		} else {
			m.statusBar.SetAlert("")
		}
		return m, nil

	case OpenResultMsg:
		return m.handleOpenResult(msg)

	case CopyResultMsg:
		if msg.Err != nil {
			m.statusBar.SetAlert(fmt.Sprintf("Copy failed: %v", msg.Err))
		} else {
			m.statusBar.SetAlert("")
		}
		return m, nil

	case DashboardStoppedMsg:
		m.stopped = true
		m.err = msg.Err
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.statusBar.SetAlert(fmt.Sprintf("Dashboard stopped: %v", msg.Err))
		}
		return m, nil

	case TickMsg:
		if m.stopped {
			return m, nil
		}
		return m, TickCmd(tickInterval)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.focus == FocusPrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model. Renders the full TUI layout with all panels.
func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Minimum terminal size guard to prevent layout overflow
	if m.width < 60 || m.height < 20 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 60x20.", m.width, m.height)
	}

	statusBarHeight := 1
	promptHeight := 5
	bodyHeight := m.height - statusBarHeight - promptHeight

	planWidth := m.width * 55 / 100
	rightWidth := m.width - planWidth
	logHeight := bodyHeight * 60 / 100
	liveHeight := bodyHeight - logHeight

	m.statusBar.SetWidth(m.width)
	m.plan.SetSize(planWidth, bodyHeight)
	m.log.SetSize(rightWidth, logHeight)
	m.live.SetSize(rightWidth, liveHeight)
	m.prompt.SetWidth(m.width)

	right := lipgloss.JoinVertical(lipgloss.Left, m.log.View(), m.live.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.plan.View(), right)

	var b strings.Builder
	b.WriteString(m.statusBar.View())
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.prompt.View())

	return b.String()
}

// Last returns the most recent dashboard update the model rendered.
func (m AppModel) Last() dashboard.Update {
	return m.last
}

// handleWindowSize records the terminal dimensions.
func (m AppModel) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	return m, nil
}

// handleUpdate fans a published dashboard update out to every panel.
func (m AppModel) handleUpdate(msg UpdateMsg) (tea.Model, tea.Cmd) {
	u := msg.Update
	m.last = u
	m.statusBar.SetUpdate(u)
	m.plan.SetSnapshot(u.State)
	m.log.SetEntries(u.Log)
	m.live.SetSnapshot(u.State)
	return m, nil
}

func (m AppModel) handleOpenResult(msg OpenResultMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.Err, handoff.ErrNotReady):
		m.statusBar.SetAlert(msg.Target + " is not ready yet.")
	case msg.Err != nil:
		m.statusBar.SetAlert(fmt.Sprintf("Could not open %s: %v", msg.Target, msg.Err))
	default:
		m.statusBar.SetAlert("")
	}
	return m, nil
}

// handleKeyMsg processes keyboard input. While the prompt has focus every
// printable key is text, so shortcuts only apply to the other panels.
func (m AppModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, QuitCmd(m.ctrl)
	case "tab":
		m.setFocus(m.nextFocus())
		return m, nil
	case "enter":
		return m, SendPromptCmd(m.ctrl, m.prompt.Value())
	}

	if m.focus == FocusPrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, QuitCmd(m.ctrl)
	case "esc":
		m.setFocus(FocusPrompt)
		return m, nil
	case "1", "2", "3", "4":
		id := campaign.CardID(msg.Runes[0] - '0')
		if m.opener == nil || !m.last.CardReady(id) {
			return m, nil
		}
		return m, OpenCardCmd(m.ctx, m.opener, id, m.last.State)
	case "r":
		if m.opener == nil || !m.last.ResearchReady() {
			return m, nil
		}
		return m, OpenResearchCmd(m.ctx, m.opener, m.last.State)
	case "c":
		code := m.last.State.Web.LandingPageCode
		if code == "" {
			return m, nil
		}
		return m, CopyCmd(code, m.opts.Copy)
	}

	var cmd tea.Cmd
	switch m.focus {
	case FocusLog:
		m.log, cmd = m.log.Update(msg)
	case FocusLive:
		m.live, cmd = m.live.Update(msg)
	}
	return m, cmd
}

func (m *AppModel) setFocus(f FocusTarget) {
	m.focus = f
	m.prompt.SetFocused(f == FocusPrompt)
	m.log.SetFocused(f == FocusLog)
	m.live.SetFocused(f == FocusLive)
}

// nextFocus cycles the focus target between prompt, log, and live state.
func (m AppModel) nextFocus() FocusTarget {
	switch m.focus {
	case FocusPrompt:
		return FocusLog
	case FocusLog:
		return FocusLive
	default:
		return FocusPrompt
	}
}
