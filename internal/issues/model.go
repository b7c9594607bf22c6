package issues

import (
	"strings"
	"time"
)

// Severity grades a reported issue.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityModerate, SeverityCritical:
		return true
	}
	return false
}

// Issue is a user-reported problem (device fault, data gap, discomfort).
type Issue struct {
	ID          string     `json:"id"`
	IssueType   string     `json:"issue_type"`
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	DetectedAt  time.Time  `json:"detected_at"`
	Resolved    bool       `json:"resolved"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// CreateRequest is the body for POST /issues.
type CreateRequest struct {
	IssueType   string     `json:"issue_type"`
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	DetectedAt  *time.Time `json:"detected_at,omitempty"`
}

// Validate checks the creation payload.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.IssueType) == "" {
		return ErrMissingType
	}
	if !r.Severity.Valid() {
		return ErrInvalidSeverity
	}
	return nil
}

// UpdateRequest is the body for PUT /issues/{issueID}. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Description *string   `json:"description,omitempty"`
	Severity    *Severity `json:"severity,omitempty"`
	Resolved    *bool     `json:"resolved,omitempty"`
}

// Validate checks the update payload.
func (r *UpdateRequest) Validate() error {
	if r.Severity != nil && !r.Severity.Valid() {
		return ErrInvalidSeverity
	}
	return nil
}
