// ABOUTME: Prompt sending with the connect-and-retry-once rule, and inbound frame handling.
// ABOUTME: Runs on the dashboard event loop; exported entry points post into it.
package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/2389-research/campaigndash/campaign"
	"github.com/2389-research/campaigndash/stream"
)

// SendPrompt starts a campaign run. When no socket is usable it connects and
// retries once after the send-retry delay, returning nil; the retry's failure,
// if any, goes to the alert handler. Requires Run to be active.
func (d *Dashboard) SendPrompt(prompt string) error {
	reply := make(chan error, 1)
	if !d.post(func() { reply <- d.sendPrompt(prompt, true) }) {
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-d.done:
		return ErrClosed
	}
}

// SendPromptAfter schedules SendPrompt after delay. Used for auto-start.
// Failures go to the alert handler.
func (d *Dashboard) SendPromptAfter(prompt string, delay time.Duration) {
	d.post(func() {
		d.after(delay, func() {
			if err := d.sendPrompt(prompt, true); err != nil {
				d.alert(err)
			}
		})
	})
}

func (d *Dashboard) sendPrompt(prompt string, mayRetry bool) error {
	if d.sock == nil || d.sock.sock.State() == stream.StateClosed {
		if !mayRetry {
			return ErrNotConnected
		}
		d.connect()
		d.after(d.cfg.SendRetryDelay, func() {
			if err := d.sendPrompt(prompt, false); err != nil {
				d.alert(err)
			}
		})
		return nil
	}
	if d.sock.sock.State() != stream.StateOpen {
		return ErrNotConnected
	}
	if prompt == "" {
		return ErrEmptyPrompt
	}

	payload, err := json.Marshal(campaign.PromptRequest{InitialPrompt: prompt})
	if err != nil {
		return fmt.Errorf("encode prompt: %w", err)
	}

	d.store.ClearLive()
	d.log.Separator(MsgSending)
	if err := d.sock.sock.Send(payload); err != nil {
		d.log.Error(fmt.Sprintf("Failed to send prompt: %v", err))
		d.publish()
		return fmt.Errorf("send prompt: %w", err)
	}

	d.running = true
	d.runID = uuid.NewString()
	d.outcome = OutcomeNone
	d.logger.Info("prompt sent", slog.String("run_id", d.runID))
	d.publish()
	return nil
}

func (d *Dashboard) alert(err error) {
	d.logger.Info("alert", slog.String("error", err.Error()))
	if d.onAlert != nil {
		d.onAlert(err)
	}
}

func (d *Dashboard) handleFrame(h *socketHandle, frame []byte) {
	if h != d.sock || h.terminal {
		return
	}

	evt, err := campaign.Decode(frame)
	if err != nil {
		d.logger.Warn("bad frame", slog.String("error", err.Error()))
		d.log.Error(decodeFailure(frame, err))
		d.publish()
		return
	}

	switch e := evt.(type) {
	case campaign.StepEvent:
		d.store.SetLive(e.Payload)
		d.store.Apply(e.Update)
		d.log.Append(e.Label(), e.Summary, campaign.SeverityDefault)
		if !e.Known {
			d.logger.Debug("step from unknown node", slog.String("node", e.Node))
		}
	case campaign.DoneEvent:
		d.log.Status(MsgComplete)
		d.running = false
		d.outcome = OutcomeCompleted
		h.terminal = true
		_ = h.sock.Close()
	case campaign.ErrorEvent:
		d.log.Error(e.Message)
		d.running = false
		d.outcome = OutcomeFailed
	}
	d.publish()
}

// decodeFailure renders a decode error as an activity log message.
func decodeFailure(frame []byte, err error) string {
	if errors.Is(err, campaign.ErrUnknownEvent) {
		return fmt.Sprintf("Unknown event %q from server.", gjson.GetBytes(frame, "event").String())
	}
	var de *campaign.DecodeError
	if errors.As(err, &de) {
		if de.Phase == campaign.PhasePayload {
			return "Failed to parse server JSON: " + de.Err.Error()
		}
		return "Failed to parse server message: " + de.Err.Error()
	}
	return "Failed to parse server message: " + err.Error()
}
