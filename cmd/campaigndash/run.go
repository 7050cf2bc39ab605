// ABOUTME: The run command: headless campaign run that streams the activity log to stdout.
// ABOUTME: Exits non-zero on a backend error or timeout and prints a stage table or a JSON/YAML report.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/2389-research/campaigndash/campaign"
	"github.com/2389-research/campaigndash/dashboard"
	"github.com/2389-research/campaigndash/logging"
)

// Output formats for run.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var errCampaignFailed = errors.New("campaign failed")

func newRunCmd(c *cli) *cobra.Command {
	var (
		output  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run PROMPT",
		Short: "Run one campaign without the TUI and report the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unknown output format %q (want text, json, or yaml)", output)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return c.runHeadless(ctx, cmd.OutOrStdout(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json, or yaml")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "give up after this long (0 waits forever)")
	return cmd
}

// latest keeps the most recent update and wakes the reader without ever
// blocking the dashboard event loop.
type latest struct {
	mu     sync.Mutex
	update dashboard.Update
	notify chan struct{}
}

func newLatest() *latest {
	return &latest{notify: make(chan struct{}, 1)}
}

func (l *latest) set(u dashboard.Update) {
	l.mu.Lock()
	l.update = u
	l.mu.Unlock()
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

func (l *latest) get() dashboard.Update {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.update
}

func (c *cli) runHeadless(ctx context.Context, out io.Writer, prompt, output string) error {
	updates := newLatest()
	dash := c.newDashboard(
		dashboard.WithUpdateHandler(updates.set),
		dashboard.WithAlertHandler(func(err error) {
			c.logger.Warn("send rejected", logging.Scope("cli"), logging.Err(err))
		}),
	)

	runDone := make(chan error, 1)
	go func() { runDone <- dash.Run(ctx) }()
	defer dash.Close()
	dash.Connect()

	var printed ulid.ULID
	sent := false
	streaming := output == outputText

	// interrupted reports whatever arrived before ctx ended.
	interrupted := func() error {
		u := dash.Snapshot()
		if streaming {
			printEntries(out, u.Log, printed)
		}
		if err := report(out, output, u); err != nil {
			return err
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("campaign did not finish: %w", ctx.Err())
		}
		return ctx.Err()
	}

	var final dashboard.Update
	for done := false; !done; {
		select {
		case <-ctx.Done():
			return interrupted()
		case err := <-runDone:
			if ctx.Err() != nil {
				return interrupted()
			}
			return fmt.Errorf("dashboard stopped: %w", err)
		case <-updates.notify:
		}

		u := updates.get()
		if streaming {
			printed = printEntries(out, u.Log, printed)
		}

		if !sent && u.Conn == dashboard.ConnOpen {
			err := dash.SendPrompt(prompt)
			switch {
			case err == nil:
				sent = true
				c.logger.Info("prompt sent", logging.Scope("cli"), slog.String("run_id", dash.Snapshot().RunID))
			case errors.Is(err, dashboard.ErrNotConnected):
				// Dropped between the update and the send; wait for the next open.
			default:
				return err
			}
			continue
		}

		if sent && !u.Running && u.Outcome != dashboard.OutcomeNone {
			final = u
			done = true
		}
	}

	if err := report(out, output, final); err != nil {
		return err
	}
	if final.Outcome == dashboard.OutcomeFailed {
		return errCampaignFailed
	}
	return nil
}

// printEntries writes the entries newer than after and returns the ID of the
// last one written. Entry IDs are monotonic, so a purged placeholder does not
// hide the lines appended after it.
func printEntries(out io.Writer, entries []campaign.Entry, after ulid.ULID) ulid.ULID {
	for _, e := range entries {
		if e.ID.Compare(after) <= 0 {
			continue
		}
		if e.IsSeparator() {
			fmt.Fprintf(out, "--- %s ---\n", e.Text())
		} else {
			fmt.Fprintln(out, e.Text())
		}
		after = e.ID
	}
	return after
}

// runReport is the machine-readable result of a headless run.
type runReport struct {
	RunID    string         `json:"run_id" yaml:"run_id"`
	Outcome  string         `json:"outcome" yaml:"outcome"`
	Endpoint string         `json:"endpoint" yaml:"endpoint"`
	Stages   []stageReport  `json:"stages" yaml:"stages"`
	Log      []logLine      `json:"log" yaml:"log"`
	State    map[string]any `json:"state" yaml:"state"`
}

type stageReport struct {
	Stage    string `json:"stage" yaml:"stage"`
	Reported bool   `json:"reported" yaml:"reported"`
	Detail   string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

type logLine struct {
	Time     time.Time `json:"time" yaml:"time"`
	Severity string    `json:"severity" yaml:"severity"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Message  string    `json:"message" yaml:"message"`
}

func buildReport(u dashboard.Update) runReport {
	r := runReport{
		RunID:    u.RunID,
		Outcome:  u.Outcome.String(),
		Endpoint: u.Endpoint,
		State:    stateMap(u.State),
	}
	for _, st := range campaign.Stages {
		reported, detail := stageStatus(u.State, st)
		r.Stages = append(r.Stages, stageReport{Stage: st.String(), Reported: reported, Detail: detail})
	}
	for _, e := range u.Log {
		r.Log = append(r.Log, logLine{Time: e.Time, Severity: e.Severity.String(), Label: e.Label, Message: e.Message})
	}
	return r
}

// stageStatus reports whether the stage has written its slice, with a short detail.
func stageStatus(s campaign.Snapshot, st campaign.StageID) (bool, string) {
	switch st {
	case campaign.StagePlanner:
		if s.Planner == nil {
			return false, ""
		}
		topic, _ := s.Planner.Topic.(string)
		return true, topic
	case campaign.StageResearch:
		return s.Research != nil, ""
	case campaign.StageContent:
		return s.Content != nil, ""
	case campaign.StageDesign:
		return s.Design.GeneratedAssets != nil, ""
	case campaign.StageWeb:
		if s.Web.LandingPageCode == "" {
			return false, ""
		}
		return true, fmt.Sprintf("%d bytes", len(s.Web.LandingPageCode))
	case campaign.StageBreakdown:
		return s.Breakdown.BRDURL != "" || s.Breakdown.StrategyMarkdown != "", s.Breakdown.BRDURL
	default:
		return false, ""
	}
}

func stateMap(s campaign.Snapshot) map[string]any {
	m := map[string]any{
		"generated_assets":  s.Design.GeneratedAssets,
		"landing_page_code": s.Web.LandingPageCode,
		"brd_url":           s.Breakdown.BRDURL,
		"strategy_markdown": s.Breakdown.StrategyMarkdown,
	}
	if s.Planner != nil {
		m["planner"] = s.Planner.Fields()
	}
	if s.Research != nil {
		m["research"] = s.Research.Fields()
	}
	if s.Content != nil {
		m["content"] = s.Content.Fields()
	}
	return m
}

func report(out io.Writer, output string, u dashboard.Update) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(buildReport(u))
	case outputYAML:
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(buildReport(u))
	default:
		fmt.Fprintln(out)
		table := tablewriter.NewWriter(out)
		table.Header("Stage", "Status", "Detail")
		for _, st := range campaign.Stages {
			reported, detail := stageStatus(u.State, st)
			status := "pending"
			if reported {
				status = "done"
			}
			table.Append(st.String(), status, detail)
		}
		return table.Render()
	}
}
