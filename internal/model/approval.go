package model

import "time"

// ApprovalStep is one approver's position in an outgoing letter's chain.
type ApprovalStep struct {
	ID        string     `json:"id"`
	Approver  string     `json:"approver"`
	Order     int        `json:"order"`
	Status    StepStatus `json:"status"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

func (s ApprovalStep) clone() ApprovalStep {
	if s.DecidedAt != nil {
		t := *s.DecidedAt
		s.DecidedAt = &t
	}
	return s
}

// Disposition is a routing instruction on an incoming letter.
type Disposition struct {
	ID            string            `json:"id"`
	Author        string            `json:"author"`
	Target        string            `json:"target"`
	CreatedAt     time.Time         `json:"created_at"`
	Instruction   string            `json:"instruction"`
	Urgency       Urgency           `json:"urgency"`
	Status        DispositionStatus `json:"status"`
	StatusHistory []StatusEntry     `json:"status_history"`
}

func (d Disposition) clone() Disposition {
	d.StatusHistory = append([]StatusEntry(nil), d.StatusHistory...)
	return d
}

// StatusEntry is one append-only record of a disposition status change.
type StatusEntry struct {
	Status DispositionStatus `json:"status"`
	At     time.Time         `json:"at"`
	Actor  string            `json:"actor"`
}
