// ABOUTME: The config command group: show the effective configuration, write defaults, print the file path.
// ABOUTME: Tables are rendered with tablewriter in the same shape as the rest of the CLI output.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/2389-research/campaigndash/config"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(newConfigShowCmd(c), newConfigInitCmd(c), newConfigPathCmd(c))
	return cmd
}

func newConfigShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			out := cmd.OutOrStdout()

			handoffPath := "(not used)"
			if cfg.Handoff.Backend == config.BackendSqlite {
				p, err := cfg.HandoffPath()
				if err != nil {
					return err
				}
				handoffPath = p
			}
			configFile := c.cfgPath
			if _, err := os.Stat(configFile); err != nil {
				configFile += " (not found, using defaults)"
			}

			handshake := "(none)"
			if cfg.HandshakeTimeout > 0 {
				handshake = cfg.HandshakeTimeout.String()
			}

			fmt.Fprintln(out, "Current Configuration:")
			table := tablewriter.NewWriter(out)
			table.Header("Setting", "Value")
			table.Append("Endpoint", cfg.Endpoint)
			table.Append("Reconnect Delay", cfg.ReconnectDelay.String())
			table.Append("Send Retry Delay", cfg.SendRetryDelay.String())
			table.Append("Auto-start Delay", cfg.AutoStartDelay.String())
			table.Append("Handshake Timeout", handshake)
			table.Append("Handoff Backend", cfg.Handoff.Backend)
			table.Append("Handoff Path", handoffPath)
			table.Append("Web Address", cfg.Web.Addr)
			table.Append("Web Base URL", cfg.WebBaseURL())
			table.Append("Log Level", cfg.Log.Level)
			table.Append("Log Format", cfg.Log.Format)
			table.Append("Log File", orNone(cfg.Log.File))
			table.Append("Config File", configFile)
			return table.Render()
		},
	}
}

func newConfigInitCmd(c *cli) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfgPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Save(config.Defaults(), path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigPathCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cfgPath)
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
