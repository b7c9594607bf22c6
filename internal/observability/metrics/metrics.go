package metrics

import "github.com/prometheus/client_golang/prometheus"

// HealthMetrics exposes counters/histograms for ingestion and prediction flows.
type HealthMetrics struct {
	ingestBatches     *prometheus.CounterVec
	ingestedPoints    prometheus.Counter
	predictionsTotal  *prometheus.CounterVec
	predictionLatency prometheus.Histogram
}

func NewHealthMetrics(reg prometheus.Registerer) *HealthMetrics {
	m := &HealthMetrics{
		ingestBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalink",
			Subsystem: "ingest",
			Name:      "batches_total",
			Help:      "Total metric batch ingestion requests",
		}, []string{"status"}),
		ingestedPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vitalink",
			Subsystem: "ingest",
			Name:      "points_total",
			Help:      "Total metric data points accepted",
		}),
		predictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalink",
			Subsystem: "prediction",
			Name:      "requests_total",
			Help:      "Total health predictions served",
		}, []string{"risk_level"}),
		predictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vitalink",
			Subsystem: "prediction",
			Name:      "latency_seconds",
			Help:      "Latency of health prediction evaluation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.ingestBatches, m.ingestedPoints, m.predictionsTotal, m.predictionLatency)
	return m
}

func (m *HealthMetrics) ObserveIngest(status string, points int) {
	if m == nil {
		return
	}
	m.ingestBatches.WithLabelValues(status).Inc()
	if points > 0 {
		m.ingestedPoints.Add(float64(points))
	}
}

func (m *HealthMetrics) ObservePrediction(riskLevel string, seconds float64) {
	if m == nil {
		return
	}
	m.predictionsTotal.WithLabelValues(riskLevel).Inc()
	m.predictionLatency.Observe(seconds)
}
