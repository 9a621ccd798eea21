package model

import "time"

// LetterKind is the discriminant of the Letter variant.
type LetterKind string

const (
	KindIncoming LetterKind = "masuk"
	KindOutgoing LetterKind = "keluar"
	KindMemo     LetterKind = "memo"
)

// Valid reports whether k is one of the known kinds.
func (k LetterKind) Valid() bool {
	switch k {
	case KindIncoming, KindOutgoing, KindMemo:
		return true
	}
	return false
}

// ClassificationRef points a letter at an archive classification.
type ClassificationRef struct {
	MainIssueCode string `json:"main_issue_code"`
	Code          string `json:"code"`
}

// Signature is the opaque "signed" marker attached when an approved letter is sent.
type Signature struct {
	Ref      string    `json:"ref"`
	SignedBy string    `json:"signed_by"`
	SignedAt time.Time `json:"signed_at"`
}

// Attachment references an object in blob storage.
type Attachment struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	StorageKey  string    `json:"storage_key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Letter is an incoming letter, outgoing letter or internal memo.
//
// Kind decides which parts are meaningful: outgoing letters and memos carry
// Status, Version, ApprovalChain, History and Signature; incoming letters carry
// Sender, ReceivedAt and Dispositions. Status, ApprovalChain, History and
// Dispositions are only ever changed through the workflow package.
type Letter struct {
	ID             string            `json:"id"`
	Kind           LetterKind        `json:"kind"`
	AgendaNumber   int64             `json:"agenda_number"`
	Number         *string           `json:"number"`
	Subject        string            `json:"subject"`
	Body           string            `json:"body"`
	Classification ClassificationRef `json:"classification"`
	UnitID         string            `json:"unit_id"`
	CreatedBy      string            `json:"created_by"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	Status        LetterStatus   `json:"status,omitempty"`
	Version       int            `json:"version,omitempty"`
	ApprovalChain []ApprovalStep `json:"approval_chain,omitempty"`
	History       []Snapshot     `json:"history,omitempty"`
	Signature     *Signature     `json:"signature,omitempty"`

	Sender       string        `json:"sender,omitempty"`
	ReceivedAt   *time.Time    `json:"received_at,omitempty"`
	Dispositions []Disposition `json:"dispositions,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`

	// LockVersion is the optimistic concurrency token; every persisted write bumps it.
	LockVersion int64 `json:"lock_version"`
}

// HasApprovalChain reports whether the letter goes through approval before sending.
func (l *Letter) HasApprovalChain() bool {
	return l.Kind == KindOutgoing || l.Kind == KindMemo
}

// HasDispositions reports whether the letter can be routed to recipients.
func (l *Letter) HasDispositions() bool {
	return l.Kind == KindIncoming
}

// Year is the calendar year the letter was created in, in loc.
func (l *Letter) Year(loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return l.CreatedAt.In(loc).Year()
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (l *Letter) Clone() *Letter {
	if l == nil {
		return nil
	}
	c := *l
	if l.Number != nil {
		n := *l.Number
		c.Number = &n
	}
	if l.Signature != nil {
		s := *l.Signature
		c.Signature = &s
	}
	if l.ReceivedAt != nil {
		r := *l.ReceivedAt
		c.ReceivedAt = &r
	}
	if l.ApprovalChain != nil {
		c.ApprovalChain = make([]ApprovalStep, len(l.ApprovalChain))
		for i, s := range l.ApprovalChain {
			c.ApprovalChain[i] = s.clone()
		}
	}
	if l.History != nil {
		c.History = append([]Snapshot(nil), l.History...)
	}
	if l.Dispositions != nil {
		c.Dispositions = make([]Disposition, len(l.Dispositions))
		for i, d := range l.Dispositions {
			c.Dispositions[i] = d.clone()
		}
	}
	if l.Attachments != nil {
		c.Attachments = append([]Attachment(nil), l.Attachments...)
	}
	return &c
}

// Snapshot is the content of a letter as it was before a revision edit.
type Snapshot struct {
	Version        int               `json:"version"`
	Subject        string            `json:"subject"`
	Classification ClassificationRef `json:"classification"`
	Body           string            `json:"body"`
	RecordedAt     time.Time         `json:"recorded_at"`
}
