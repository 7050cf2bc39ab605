// ABOUTME: Stage State Store holding the latest slice per stage plus the last raw payload ("live state").
// ABOUTME: Not safe for concurrent use; the dashboard event loop is its only writer.
package campaign

import (
	"bytes"
	"encoding/json"
)

// Store holds the latest known value for every stage.
type Store struct {
	planner   *PlannerSlice
	research  *ResearchSlice
	content   *ContentSlice
	design    DesignSlice
	web       WebSlice
	breakdown BreakdownSlice

	live json.RawMessage
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Apply writes a decoded stage update. A nil update is ignored.
func (s *Store) Apply(u StageUpdate) {
	if u == nil {
		return
	}
	u.apply(s)
}

// SetLive replaces the live-state blob with the most recent step payload.
func (s *Store) SetLive(payload json.RawMessage) {
	s.live = append(json.RawMessage(nil), payload...)
}

// ClearLive empties the live-state blob.
func (s *Store) ClearLive() {
	s.live = nil
}

// Snapshot returns a copy of the store contents for rendering and readiness checks.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Design:    s.design,
		Web:       s.web,
		Breakdown: s.breakdown,
		Live:      append(json.RawMessage(nil), s.live...),
	}
	if s.planner != nil {
		p := *s.planner
		snap.Planner = &p
	}
	if s.research != nil {
		r := *s.research
		snap.Research = &r
	}
	if s.content != nil {
		c := *s.content
		snap.Content = &c
	}
	return snap
}

// Snapshot is a point-in-time copy of the store. Nil slice pointers mean the
// stage has not reported yet.
type Snapshot struct {
	Planner   *PlannerSlice
	Research  *ResearchSlice
	Content   *ContentSlice
	Design    DesignSlice
	Web       WebSlice
	Breakdown BreakdownSlice

	Live json.RawMessage
}

// HasLive reports whether the live blob holds a non-empty value. An empty
// object counts as empty.
func (s Snapshot) HasLive() bool {
	trimmed := bytes.TrimSpace(s.Live)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		return len(obj) > 0
	}
	return true
}

// LiveIndented returns the live blob pretty-printed with two-space indentation,
// or the raw bytes if they cannot be re-indented.
func (s Snapshot) LiveIndented() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, s.Live, "", "  "); err != nil {
		return string(s.Live)
	}
	return buf.String()
}
