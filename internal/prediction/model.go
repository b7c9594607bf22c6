package prediction

import (
	"time"
)

// RiskLevel is the qualitative overall risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Discrete prediction results.
const (
	ResultNormal          = 0
	ResultSick            = 1
	ResultLifeThreatening = 2
)

// Request is a single health-status prediction request. Explicit vital
// values bypass the metric store for that vital, which lets a device push
// live readings synchronously with the prediction call.
type Request struct {
	UserID          string   `json:"user_id"`
	SpO2            *float64 `json:"spo2,omitempty"`
	HeartRate       *float64 `json:"heart_rate,omitempty"`
	BodyTemperature *float64 `json:"body_temperature,omitempty"`
	IncludeMetrics  bool     `json:"include_metrics,omitempty"`
	HorizonHours    int      `json:"prediction_horizon_hours,omitempty"`
}

// Validate checks request bounds. A zero horizon means "use the default".
func (r *Request) Validate() error {
	if r.HorizonHours != 0 && (r.HorizonHours < 1 || r.HorizonHours > 168) {
		return ErrInvalidHorizon
	}
	return nil
}

// override returns the caller-supplied value for a vital, if any.
func (r *Request) override(v Vital) *float64 {
	switch v {
	case VitalSpO2:
		return r.SpO2
	case VitalHeartRate:
		return r.HeartRate
	case VitalSkinTemperature:
		return r.BodyTemperature
	}
	return nil
}

// MetricAverage summarizes one resolved vital in the response.
type MetricAverage struct {
	MetricType   string  `json:"metric_type"`
	AverageValue float64 `json:"average_value"`
	Unit         string  `json:"unit"`
	DataPoints   int     `json:"data_points"`
	IsHealthy    bool    `json:"is_healthy"`
	HealthScore  float64 `json:"health_score"`
}

// RawMetricsSummary is the optional digest of raw readings behind a
// prediction, included when the request asks for it.
type RawMetricsSummary struct {
	TotalMetricsAnalyzed int            `json:"total_metrics_analyzed"`
	MetricsByType        map[string]int `json:"metrics_by_type"`
}

// Response is the prediction result returned to the API layer. It is built
// fresh on every call and never persisted.
type Response struct {
	UserID                 string             `json:"user_id"`
	PredictionTimestamp    time.Time          `json:"prediction_timestamp"`
	PredictionResult       int                `json:"prediction_result"`
	HealthRiskLevel        RiskLevel          `json:"health_risk_level"`
	ConfidenceScore        float64            `json:"confidence_score"`
	MetricAverages         []MetricAverage    `json:"metric_averages"`
	RiskFactors            []string           `json:"risk_factors"`
	Recommendations        []string           `json:"recommendations"`
	RawMetricsSummary      *RawMetricsSummary `json:"raw_metrics_summary"`
	ModelVersion           string             `json:"model_version"`
	PredictionHorizonHours int                `json:"prediction_horizon_hours"`
}
