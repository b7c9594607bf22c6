package issues

import "errors"

var (
	// ErrIssueNotFound is returned when no active issue matches the lookup
	ErrIssueNotFound = errors.New("issue not found")

	// ErrMissingType is returned when issue_type is empty
	ErrMissingType = errors.New("issue_type is required")

	// ErrInvalidSeverity is returned for a severity outside low/moderate/critical
	ErrInvalidSeverity = errors.New("severity must be low, moderate or critical")
)
