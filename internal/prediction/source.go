package prediction

import (
	"context"
	"time"
)

// Reading is one stored measurement inside the lookback window.
type Reading struct {
	Value     float64
	Timestamp time.Time
}

// MetricSource is the read-only query capability the engine needs from the
// storage layer. Implementations must return ErrUserNotFound when the user
// does not exist, and an empty slice when the user exists but has no
// readings in the window.
type MetricSource interface {
	FetchWindow(ctx context.Context, userID string, vital Vital, start, end time.Time) ([]Reading, error)
}

// Observer receives prediction outcomes for instrumentation. Implementations
// must tolerate being nil-checked by the engine.
type Observer interface {
	ObservePrediction(riskLevel string, seconds float64)
}
