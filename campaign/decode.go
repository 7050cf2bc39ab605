// ABOUTME: Event Decoder turning raw websocket text frames into typed campaign events.
// ABOUTME: Two fail-soft boundaries: the outer envelope and the JSON payload embedded in its data field.
package campaign

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// EventKind is the envelope's "event" discriminator.
type EventKind string

const (
	EventStep  EventKind = "step"
	EventDone  EventKind = "done"
	EventError EventKind = "error"
)

// Envelope is the outer wire message. Data holds a JSON-encoded string for
// step events and a plain message for error events.
type Envelope struct {
	Event EventKind       `json:"event"`
	Node  string          `json:"node,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// PromptRequest is the single outbound message, sent once per run.
type PromptRequest struct {
	InitialPrompt string `json:"initial_prompt"`
}

// ErrUnknownEvent is returned for envelopes whose event kind is not step, done, or error.
var ErrUnknownEvent = errors.New("unknown event")

// DecodePhase names the boundary at which decoding failed.
type DecodePhase string

const (
	PhaseEnvelope DecodePhase = "envelope"
	PhasePayload  DecodePhase = "payload"
)

// DecodeError reports a frame that could not be decoded. The connection is
// expected to stay up; callers log it and move on.
type DecodeError struct {
	Phase DecodePhase
	Node  string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("decode %s for %s: %v", e.Phase, e.Node, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Phase, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Event is a decoded inbound message: StepEvent, DoneEvent, or ErrorEvent.
type Event interface {
	Kind() EventKind
}

// StepEvent carries one stage's output.
type StepEvent struct {
	Node    string
	Stage   StageID
	Known   bool            // false when Node is not a recognized stage node
	Payload json.RawMessage // the parsed inner JSON, compacted
	Update  StageUpdate     // nil for unknown nodes
	Summary string          // short human-readable line for the activity log
}

// DoneEvent signals that the campaign run completed.
type DoneEvent struct{}

// ErrorEvent carries a backend-reported failure.
type ErrorEvent struct {
	Message string
}

func (StepEvent) Kind() EventKind  { return EventStep }
func (DoneEvent) Kind() EventKind  { return EventDone }
func (ErrorEvent) Kind() EventKind { return EventError }

// Label returns the activity log label for the step.
func (e StepEvent) Label() string { return NodeLabel(e.Node) }

// Decode parses a raw frame. Errors are always *DecodeError.
func Decode(frame []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, &DecodeError{Phase: PhaseEnvelope, Err: err}
	}

	switch env.Event {
	case EventStep:
		return decodeStep(env)
	case EventDone:
		return DoneEvent{}, nil
	case EventError:
		return ErrorEvent{Message: errorMessage(env.Data)}, nil
	default:
		return nil, &DecodeError{
			Phase: PhaseEnvelope,
			Err:   fmt.Errorf("%w %q", ErrUnknownEvent, env.Event),
		}
	}
}

func decodeStep(env Envelope) (Event, error) {
	payload, err := innerPayload(env.Data)
	if err != nil {
		return nil, &DecodeError{Phase: PhasePayload, Node: env.Node, Err: err}
	}

	stage, known := StageForNode(env.Node)
	evt := StepEvent{
		Node:    env.Node,
		Stage:   stage,
		Known:   known,
		Payload: payload,
		Summary: Summarize(env.Node, payload),
	}
	if known {
		evt.Update = updateFor(env.Node, payload)
	}
	return evt, nil
}

// innerPayload unwraps the data field. The backend sends a JSON string whose
// contents are themselves JSON; an inline object or array is accepted as-is.
func innerPayload(data json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("missing data")
	}

	raw := []byte(trimmed)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		raw = []byte(s)
	}

	if !gjson.ValidBytes(raw) {
		// Run it through encoding/json for a descriptive syntax error.
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return nil, errors.New("invalid JSON")
	}

	if hasDuplicateKeys(gjson.ParseBytes(raw)) {
		return lastKeyWins(raw)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// hasDuplicateKeys reports whether any object in r repeats a key. gjson
// resolves a repeated key to its first value.
func hasDuplicateKeys(r gjson.Result) bool {
	dup := false
	switch {
	case r.IsObject():
		seen := make(map[string]struct{})
		r.ForEach(func(k, v gjson.Result) bool {
			if _, ok := seen[k.String()]; ok {
				dup = true
				return false
			}
			seen[k.String()] = struct{}{}
			dup = hasDuplicateKeys(v)
			return !dup
		})
	case r.IsArray():
		r.ForEach(func(_, v gjson.Result) bool {
			dup = hasDuplicateKeys(v)
			return !dup
		})
	}
	return dup
}

// lastKeyWins re-encodes raw so every repeated key keeps its last value, as
// JSON.parse does. Numbers are kept verbatim.
func lastKeyWins(raw []byte) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// errorMessage renders the data field of an error envelope for display.
func errorMessage(data json.RawMessage) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "unknown error"
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

// updateFor extracts the tracked fields for a known node. Missing or falsy
// values fall back to the stage's sentinel.
func updateFor(node string, payload []byte) StageUpdate {
	get := func(path string) gjson.Result { return gjson.GetBytes(payload, path) }

	switch node {
	case NodePlanner:
		return PlannerUpdate{Slice: PlannerSlice{
			Goal:           valueOr(get("goal"), nil),
			Topic:          valueOr(get("topic"), nil),
			TargetAudience: valueOr(get("target_audience"), nil),
			SourceDocsURL:  valueOr(get("source_docs_url"), nil),
			CampaignDate:   valueOr(get("campaign_date"), nil),
		}}
	case NodeResearch:
		return ResearchUpdate{Slice: ResearchSlice{
			AudiencePersona: valueOr(get("audience_persona"), map[string]any{}),
			CoreMessaging:   valueOr(get("core_messaging"), map[string]any{}),
		}}
	case NodeContent:
		return ContentUpdate{Slice: ContentSlice{
			WebinarDetails: valueOr(get("webinar_details"), map[string]any{}),
			SocialPosts:    valueOr(get("social_posts"), []any{}),
		}}
	case NodeDesign:
		return DesignUpdate{GeneratedAssets: valueOr(get("generated_assets"), nil)}
	case NodeWeb:
		return WebUpdate{LandingPageCode: stringOr(get("landing_page_code"), "")}
	case NodeBRD:
		return BRDUpdate{URL: stringOr(get("brd_url"), "")}
	case NodeStrategy:
		return StrategyUpdate{Markdown: stringOr(get("strategy_markdown"), "")}
	default:
		return nil
	}
}

// truthy mirrors the backend contract's notion of a present value: missing,
// null, false, zero, and the empty string all count as absent. Objects and
// arrays are present even when empty.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return true
	}
}

func valueOr(r gjson.Result, fallback any) any {
	if !truthy(r) {
		return fallback
	}
	return r.Value()
}

func stringOr(r gjson.Result, fallback string) string {
	if !truthy(r) {
		return fallback
	}
	return r.String()
}
