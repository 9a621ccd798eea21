// Package workflow holds the correspondence state machines: the approval chain
// of outgoing letters and memos, disposition routing of incoming letters, and
// the revision history kept across rejections.
//
// Every operation validates before it mutates, so a returned error always
// leaves the letter untouched. Side effects are not performed here; each
// transition returns an Outcome describing the notifications and audit
// entries to emit once the caller has durably stored the letter.
package workflow

import (
	"time"

	"github.com/google/uuid"
)

// Notice asks for a notification to be delivered to UserID.
type Notice struct {
	UserID   string
	LetterID string
	Message  string
}

// AuditRecord is one audit entry to append.
type AuditRecord struct {
	LetterID string
	Actor    string
	Action   string
	Detail   string
}

// Outcome is what a transition wants the observers to see.
type Outcome struct {
	// Transition is a short name of what happened, e.g. "submit" or "reject".
	Transition string
	Notices    []Notice
	Audit      []AuditRecord
}

func (o *Outcome) notify(userID, letterID, message string) {
	if userID == "" {
		return
	}
	o.Notices = append(o.Notices, Notice{UserID: userID, LetterID: letterID, Message: message})
}

func (o *Outcome) audit(letterID, actor, action, detail string) {
	o.Audit = append(o.Audit, AuditRecord{LetterID: letterID, Actor: actor, Action: action, Detail: detail})
}

// Merge appends other's notices and audit records to o.
func (o *Outcome) Merge(other Outcome) {
	o.Notices = append(o.Notices, other.Notices...)
	o.Audit = append(o.Audit, other.Audit...)
}

// Option configures the state machines.
type Option func(*deps)

type deps struct {
	now   func() time.Time
	newID func() string
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

// WithIDs replaces the uuid generator used for steps and dispositions.
func WithIDs(newID func() string) Option {
	return func(d *deps) { d.newID = newID }
}

func newDeps(opts []Option) deps {
	d := deps{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}
