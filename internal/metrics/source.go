package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitalink/vitalink-api/internal/prediction"
)

var vitalTypes = map[prediction.Vital]Type{
	prediction.VitalSpO2:            TypeSpO2,
	prediction.VitalHeartRate:       TypeHeartRate,
	prediction.VitalSkinTemperature: TypeSkinTemperature,
}

// PredictionSource adapts the metric repository to the prediction engine's
// read-only window query.
type PredictionSource struct {
	repo Repository
}

// NewPredictionSource wraps a metric repository for the prediction engine.
func NewPredictionSource(repo Repository) *PredictionSource {
	return &PredictionSource{repo: repo}
}

// FetchWindow implements prediction.MetricSource.
func (s *PredictionSource) FetchWindow(ctx context.Context, userID string, vital prediction.Vital, start, end time.Time) ([]prediction.Reading, error) {
	metricType, ok := vitalTypes[vital]
	if !ok {
		return nil, fmt.Errorf("metrics: no metric type for vital %q", vital)
	}

	readings, err := s.repo.FetchWindow(ctx, userID, metricType, start, end)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, prediction.ErrUserNotFound
		}
		return nil, err
	}

	out := make([]prediction.Reading, len(readings))
	for i, r := range readings {
		out[i] = prediction.Reading{Value: r.Value, Timestamp: r.Timestamp}
	}
	return out, nil
}
