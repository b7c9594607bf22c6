package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHealthMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHealthMetrics(reg)
	m.ObserveIngest("ok", 42)
	m.ObserveIngest("rejected", 0)
	m.ObservePrediction("high", 0.02)
}

func TestHealthMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHealthMetrics(reg)
	m.ObservePrediction("low", 0.001)
}

func TestHealthMetricsNilSafe(t *testing.T) {
	var m *HealthMetrics
	m.ObserveIngest("ok", 1)
	m.ObservePrediction("medium", 0.1)
}
