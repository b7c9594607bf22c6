package prediction

import "errors"

var (
	// ErrUserNotFound is returned when the metric store does not know the
	// requested user. Distinct from "user exists, no readings".
	ErrUserNotFound = errors.New("prediction: user not found")

	// ErrInvalidHorizon is returned when the prediction horizon is outside
	// the 1-168 hour range.
	ErrInvalidHorizon = errors.New("prediction: horizon must be between 1 and 168 hours")
)
