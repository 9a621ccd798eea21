package model

// LetterStatus values are the wire values used by the correspondence UI.
type LetterStatus string

const (
	StatusDraft           LetterStatus = "Draft"
	StatusPendingApproval LetterStatus = "Menunggu Persetujuan"
	StatusRevision        LetterStatus = "Revisi"
	StatusApproved        LetterStatus = "Disetujui"
	StatusSent            LetterStatus = "Terkirim"
)

func (s LetterStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusRevision, StatusApproved, StatusSent:
		return true
	}
	return false
}

// StepStatus is the state of one approval step.
type StepStatus string

const (
	StepPending  StepStatus = "Pending"
	StepApproved StepStatus = "Disetujui"
	StepRejected StepStatus = "Ditolak"
)

// Decision is what an approver does with the active step.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// DispositionStatus values are the wire values for disposition progress.
type DispositionStatus string

const (
	DispositionInProgress DispositionStatus = "Diproses"
	DispositionDone       DispositionStatus = "Selesai"
	DispositionRejected   DispositionStatus = "Ditolak"
)

func (s DispositionStatus) Valid() bool {
	switch s {
	case DispositionInProgress, DispositionDone, DispositionRejected:
		return true
	}
	return false
}

// Urgency of a disposition instruction.
type Urgency string

const (
	UrgencyNormal    Urgency = "Biasa"
	UrgencyUrgent    Urgency = "Segera"
	UrgencyImportant Urgency = "Penting"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyNormal, UrgencyUrgent, UrgencyImportant:
		return true
	}
	return false
}
