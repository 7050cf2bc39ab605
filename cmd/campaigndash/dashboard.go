// ABOUTME: The dashboard command: full-screen TUI wired to the websocket backend and the handoff views.
// ABOUTME: Starts the handoff web server alongside the TUI so opened cards resolve in the same process.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/campaigndash/dashboard"
	"github.com/2389-research/campaigndash/handoff"
	"github.com/2389-research/campaigndash/logging"
	"github.com/2389-research/campaigndash/stream"
	"github.com/2389-research/campaigndash/tui"
	"github.com/2389-research/campaigndash/web"
)

type dashboardFlags struct {
	prompt    string
	autoStart bool
	noWeb     bool
}

func newDashboardCmd(c *cli) *cobra.Command {
	var f dashboardFlags
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive campaign dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDashboard(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.prompt, "prompt", "", "prefill the prompt input")
	cmd.Flags().BoolVar(&f.autoStart, "auto-start", false, "send --prompt shortly after startup")
	cmd.Flags().BoolVar(&f.noWeb, "no-web", false, "do not start the handoff web server (use with a separate 'serve')")
	return cmd
}

// newDashboard builds a Dashboard from the loaded config.
func (c *cli) newDashboard(opts ...dashboard.Option) *dashboard.Dashboard {
	base := []dashboard.Option{
		dashboard.WithDialer(stream.WebsocketDialer{HandshakeTimeout: c.cfg.HandshakeTimeout}),
		dashboard.WithLogger(c.logger),
	}
	return dashboard.New(dashboard.Config{
		Endpoint:       c.cfg.Endpoint,
		ReconnectDelay: c.cfg.ReconnectDelay,
		SendRetryDelay: c.cfg.SendRetryDelay,
	}, append(base, opts...)...)
}

func (c *cli) runDashboard(cmd *cobra.Command, f dashboardFlags) error {
	if f.autoStart && f.prompt == "" {
		return errors.New("--auto-start needs --prompt")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := c.openStore()
	if err != nil {
		return fmt.Errorf("open handoff store: %w", err)
	}
	defer store.Close()

	webCtx, stopWeb := context.WithCancel(ctx)
	webDone := make(chan struct{})
	if f.noWeb {
		close(webDone)
	} else {
		srv, err := web.NewServer(web.Config{Addr: c.cfg.Web.Addr, Store: store, Logger: c.logger})
		if err != nil {
			stopWeb()
			return err
		}
		go func() {
			defer close(webDone)
			if err := srv.ListenAndServe(webCtx); err != nil {
				c.logger.Error("web server stopped", logging.Scope("cli"), logging.Err(err))
			}
		}()
	}
	defer func() {
		stopWeb()
		<-webDone
	}()

	publisher := handoff.NewPublisher(store, c.cfg.WebBaseURL(), handoff.WithPublisherLogger(c.logger))

	// The program does not exist until the model is built, and the model
	// needs the dashboard, so updates are forwarded through p.
	var p *tea.Program
	bridge := tui.NewEventBridge(func(msg tea.Msg) { p.Send(msg) })
	dash := c.newDashboard(
		dashboard.WithUpdateHandler(bridge.HandleUpdate),
		dashboard.WithAlertHandler(bridge.HandleAlert),
	)
	defer dash.Close()

	model := tui.NewAppModel(ctx, dash, publisher, c.cfg.Endpoint, tui.AppOptions{
		Prompt:         f.prompt,
		AutoStart:      f.autoStart,
		AutoStartDelay: c.cfg.AutoStartDelay,
	})
	p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	c.logger.Info("dashboard starting",
		logging.Scope("cli"),
		slog.String("endpoint", c.cfg.Endpoint),
		slog.String("web", c.cfg.WebBaseURL()),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
