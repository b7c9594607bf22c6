package metrics

import "errors"

var (
	// ErrUserNotFound is returned when the owning user does not exist.
	// Distinct from an empty result for an existing user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidType is returned for an unknown metric type
	ErrInvalidType = errors.New("unknown metric type")

	// ErrValueOutOfRange is returned when a reading is outside the plausible range
	ErrValueOutOfRange = errors.New("value outside plausible range")

	// ErrBatchTooLarge is returned when a batch exceeds the configured cap
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")

	// ErrEmptyBatch is returned for a batch with no metrics
	ErrEmptyBatch = errors.New("batch contains no metrics")
)
