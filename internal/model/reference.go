package model

import "time"

// Unit is an organizational unit. Branch offices have a parent.
type Unit struct {
	ID       string  `json:"id" yaml:"id"`
	Code     string  `json:"code" yaml:"code"`
	Name     string  `json:"name" yaml:"name"`
	ParentID *string `json:"parent_id,omitempty" yaml:"parent_id"`
	// NumberTemplate overrides the default document number template for this unit.
	NumberTemplate string `json:"number_template,omitempty" yaml:"number_template"`
}

// Classification is an archive filing code, e.g. PR.01.01 under main issue PR.
type Classification struct {
	Code                   string `json:"code" yaml:"code"`
	MainIssueCode          string `json:"main_issue_code" yaml:"main_issue_code"`
	Description            string `json:"description" yaml:"description"`
	RetentionActiveYears   int    `json:"retention_active_years" yaml:"retention_active_years"`
	RetentionInactiveYears int    `json:"retention_inactive_years" yaml:"retention_inactive_years"`
}

// Ref converts the classification into the reference stored on letters.
func (c Classification) Ref() ClassificationRef {
	return ClassificationRef{MainIssueCode: c.MainIssueCode, Code: c.Code}
}

// User is someone who can author, approve or receive correspondence.
type User struct {
	ID     string `json:"id" yaml:"id"`
	Email  string `json:"email" yaml:"email"`
	Name   string `json:"name" yaml:"name"`
	UnitID string `json:"unit_id" yaml:"unit_id"`
	Role   string `json:"role" yaml:"role"`
}

// Notification is the record shape read by the UI.
type Notification struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	RelatedLetterID string    `json:"relatedLetterId"`
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
	IsRead          bool      `json:"isRead"`
}

// AuditEntry is one immutable audit log record.
type AuditEntry struct {
	ID        string    `json:"id"`
	LetterID  string    `json:"letter_id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
