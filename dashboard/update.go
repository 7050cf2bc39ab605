// ABOUTME: Update is the read-only view of dashboard state handed to renderers after each change.
// ABOUTME: Snapshot returns the latest published Update from any goroutine.
package dashboard

import "github.com/2389-research/campaigndash/campaign"

// ConnState is the connection status shown to the user.
type ConnState int

const (
	ConnIdle ConnState = iota
	ConnConnecting
	ConnOpen
	ConnClosed
)

func (c ConnState) String() string {
	switch c {
	case ConnIdle:
		return "idle"
	case ConnConnecting:
		return "connecting"
	case ConnOpen:
		return "connected"
	case ConnClosed:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Outcome records how the most recent run ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCompleted
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

// Update is a detached copy of everything a renderer needs.
type Update struct {
	State    campaign.Snapshot
	Log      []campaign.Entry
	Running  bool
	Conn     ConnState
	RunID    string
	Outcome  Outcome
	Endpoint string
}

// CardReady reports whether the tool card can be opened.
func (u Update) CardReady(id campaign.CardID) bool {
	return id.Ready(u.State)
}

// ResearchReady reports whether the research view can be opened.
func (u Update) ResearchReady() bool {
	return campaign.ResearchReady(u.State)
}

// Snapshot returns the most recently published state.
func (d *Dashboard) Snapshot() Update {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

func (d *Dashboard) buildUpdate() Update {
	return Update{
		State:    d.store.Snapshot(),
		Log:      d.log.Entries(),
		Running:  d.running,
		Conn:     d.conn,
		RunID:    d.runID,
		Outcome:  d.outcome,
		Endpoint: d.cfg.Endpoint,
	}
}

func (d *Dashboard) publish() {
	u := d.buildUpdate()
	d.mu.Lock()
	d.last = u
	d.mu.Unlock()
	if d.onUpdate != nil {
		d.onUpdate(u)
	}
}
