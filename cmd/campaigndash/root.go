// ABOUTME: Root cobra command with persistent flags bound to viper and shared config/logging setup.
// ABOUTME: Running the binary with no subcommand opens the dashboard.
package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/2389-research/campaigndash/config"
	"github.com/2389-research/campaigndash/handoff"
	"github.com/2389-research/campaigndash/logging"
)

// cli carries state shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfgPath string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "campaigndash",
		Short: "Terminal dashboard for the campaign generation backend",
		Long: `campaigndash streams a campaign run from the generation backend over a
websocket, shows the plan, tool cards, activity log, and live state as they
arrive, and hands finished artifacts to local web views.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDashboard(cmd, dashboardFlags{})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/campaigndash/config.yaml)")
	pf.String("endpoint", "", "backend websocket endpoint")
	pf.String("log-level", "", "log level: debug, info, warn, error (default: $LOG_LEVEL or info)")
	pf.String("log-file", "", "write diagnostic logs to this file")
	pf.String("log-format", "", "log format: text or json")
	pf.String("handoff-backend", "", "handoff store: memory or sqlite")
	pf.String("handoff-path", "", "sqlite handoff database path")
	pf.String("web-addr", "", "listen address for the handoff views")

	bindings := map[string]string{
		"endpoint":        "endpoint",
		"log.level":       "log-level",
		"log.file":        "log-file",
		"log.format":      "log-format",
		"handoff.backend": "handoff-backend",
		"handoff.path":    "handoff-path",
		"web.addr":        "web-addr",
	}
	for key, flag := range bindings {
		_ = c.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newDashboardCmd(c),
		newRunCmd(c),
		newServeCmd(c),
		newConfigCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads and validates configuration, then builds the logger. Commands
// that own the terminal log to a file only; the rest fall back to stderr.
func (c *cli) setup(cmd *cobra.Command) error {
	c.cfgPath = config.DiscoverPath(c.cfgFile)
	cfg, err := config.LoadWithEnv(c.v, c.cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.cfg = cfg

	opts := logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}
	if opts.File == "" && !ownsTerminal(cmd) {
		opts.Writer = cmd.ErrOrStderr()
	}
	logger, closer, err := logging.New(opts)
	if err != nil {
		return err
	}
	c.logger, c.logCloser = logger, closer
	return nil
}

func (c *cli) teardown() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

// ownsTerminal reports whether cmd draws the full-screen TUI.
func ownsTerminal(cmd *cobra.Command) bool {
	return cmd.Name() == "campaigndash" || cmd.Name() == "dashboard"
}

// openStore opens the configured handoff store.
func (c *cli) openStore() (handoff.Store, error) {
	if c.cfg.Handoff.Backend != config.BackendSqlite {
		return handoff.NewMemoryStore(), nil
	}
	path, err := c.cfg.HandoffPath()
	if err != nil {
		return nil, err
	}
	return handoff.OpenSqlite(path)
}
