// ABOUTME: The serve command: runs only the artifact handoff web server until interrupted.
// ABOUTME: Pair it with the sqlite handoff backend so a dashboard in another process can publish to it.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/2389-research/campaigndash/config"
	"github.com/2389-research/campaigndash/logging"
	"github.com/2389-research/campaigndash/web"
)

func newServeCmd(c *cli) *cobra.Command {
	var open bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the landing page and handoff views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if c.cfg.Handoff.Backend == config.BackendMemory {
				c.logger.Warn("memory handoff backend only sees artifacts published by this process; use --handoff-backend sqlite",
					logging.Scope("cli"))
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			srv, err := web.NewServer(web.Config{Addr: c.cfg.Web.Addr, Store: store, Logger: c.logger})
			if err != nil {
				return err
			}

			if open {
				url := c.cfg.WebBaseURL() + "/"
				if err := browser.OpenURL(url); err != nil {
					c.logger.Warn("could not open browser", logging.Scope("cli"), slog.String("url", url), logging.Err(err))
				}
			}
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "open the landing page in a browser")
	return cmd
}
