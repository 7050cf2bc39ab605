// ABOUTME: Append-only activity log of human-readable status and error entries.
// ABOUTME: Severity is an explicit tag set at append time; entry IDs are monotonic ULIDs.
package campaign

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Severity classifies an activity log entry for display.
type Severity int

const (
	SeverityDefault   Severity = iota // stage output and other informational lines
	SeverityStatus                    // connection and run status
	SeverityError                     // transport, parse, and backend errors
	SeveritySeparator                 // marks the start of a new run
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityDefault:
		return "default"
	case SeverityStatus:
		return "status"
	case SeverityError:
		return "error"
	case SeveritySeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// Labels used for non-stage entries.
const (
	LabelStatus = "STATUS"
	LabelError  = "ERROR"
)

// Entry is one line in the activity log.
type Entry struct {
	ID       ulid.ULID
	Label    string
	Message  string
	Severity Severity
	Time     time.Time
}

// IsSeparator reports whether the entry marks the start of a run.
func (e Entry) IsSeparator() bool {
	return e.Severity == SeveritySeparator
}

// Text renders the entry as "LABEL: message".
func (e Entry) Text() string {
	if e.Label == "" {
		return e.Message
	}
	return e.Label + ": " + e.Message
}

// ActivityLog is an ordered, append-only sequence of entries. It is unbounded.
type ActivityLog struct {
	entries []Entry
	now     func() time.Time
}

// NewActivityLog returns an empty log.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{now: time.Now}
}

// Append adds an entry to the end of the log and returns it.
func (l *ActivityLog) Append(label, message string, sev Severity) Entry {
	e := Entry{
		ID:       ulid.Make(),
		Label:    label,
		Message:  message,
		Severity: sev,
		Time:     l.now(),
	}
	l.entries = append(l.entries, e)
	return e
}

// Status appends a status entry.
func (l *ActivityLog) Status(message string) Entry {
	return l.Append(LabelStatus, message, SeverityStatus)
}

// Error appends an error entry.
func (l *ActivityLog) Error(message string) Entry {
	return l.Append(LabelError, message, SeverityError)
}

// Separator appends a run separator entry.
func (l *ActivityLog) Separator(message string) Entry {
	return l.Append(LabelStatus, message, SeveritySeparator)
}

// PurgePlaceholders removes status entries whose message contains placeholder.
// It is the only removal path and exists for the "Connecting..." line that is
// replaced once the socket opens. Returns the number of entries removed.
func (l *ActivityLog) PurgePlaceholders(placeholder string) int {
	kept := l.entries[:0]
	removed := 0
	for _, e := range l.entries {
		if e.Severity == SeverityStatus && strings.Contains(e.Message, placeholder) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// Clear the tail so dropped entries are not retained by the backing array.
	for i := len(kept); i < len(l.entries); i++ {
		l.entries[i] = Entry{}
	}
	l.entries = kept
	return removed
}

// Len returns the number of entries.
func (l *ActivityLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all entries in arrival order.
func (l *ActivityLog) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
