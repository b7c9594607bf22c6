package metrics

import (
	"time"
)

// Type identifies a sensor metric kind.
type Type string

const (
	TypeSpO2               Type = "spo2"
	TypeHeartRate          Type = "heart_rate"
	TypeSkinTemperature    Type = "skin_temperature"
	TypeAmbientTemperature Type = "ambient_temperature"
)

// valueRange bounds plausible sensor readings per type. Values outside are
// rejected at ingestion.
type valueRange struct {
	min, max float64
}

var typeRanges = map[Type]valueRange{
	TypeSpO2:               {70.0, 100.0},
	TypeHeartRate:          {30.0, 220.0},
	TypeSkinTemperature:    {20.0, 45.0},
	TypeAmbientTemperature: {-10.0, 60.0},
}

var typeUnits = map[Type]string{
	TypeSpO2:               "%",
	TypeHeartRate:          "BPM",
	TypeSkinTemperature:    "°C",
	TypeAmbientTemperature: "°C",
}

// Valid reports whether t is a known metric type.
func (t Type) Valid() bool {
	_, ok := typeRanges[t]
	return ok
}

// Unit returns the canonical unit for the type.
func (t Type) Unit() string {
	return typeUnits[t]
}

// CheckValue validates a reading against the plausible range. Nil values are
// accepted; some sensors report gaps.
func (t Type) CheckValue(value *float64) error {
	if value == nil {
		return nil
	}
	r, ok := typeRanges[t]
	if !ok {
		return ErrInvalidType
	}
	if *value < r.min || *value > r.max {
		return ErrValueOutOfRange
	}
	return nil
}

// Metric is one stored sensor reading.
type Metric struct {
	ID          string     `json:"id"`
	MetricType  Type       `json:"metric_type"`
	Value       *float64   `json:"value"`
	Unit        string     `json:"unit"`
	SensorModel string     `json:"sensor_model,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"-"`
}

// Create is one item of a batch ingestion request.
type Create struct {
	MetricType  Type       `json:"metric_type"`
	Value       *float64   `json:"value"`
	Unit        string     `json:"unit,omitempty"`
	SensorModel string     `json:"sensor_model,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// BatchRequest is the body for POST /metrics/batch.
type BatchRequest struct {
	Metrics []Create `json:"metrics"`
}

// BatchError records why one batch item was rejected.
type BatchError struct {
	Index      int    `json:"index"`
	MetricType string `json:"metric_type,omitempty"`
	Error      string `json:"error"`
}

// BatchResult summarizes a batch ingestion.
type BatchResult struct {
	TotalProcessed int          `json:"total_processed"`
	Successful     int          `json:"successful"`
	Failed         int          `json:"failed"`
	Errors         []BatchError `json:"validation_errors,omitempty"`
}

// Reading is a timestamped value inside a query window.
type Reading struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// AggregationPeriod groups summaries by calendar unit.
type AggregationPeriod string

const (
	PeriodDay   AggregationPeriod = "day"
	PeriodWeek  AggregationPeriod = "week"
	PeriodMonth AggregationPeriod = "month"
)

// Valid reports whether p is a supported period.
func (p AggregationPeriod) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// SummaryRow is one aggregated bucket in a summary response.
type SummaryRow struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// ListFilter narrows a raw metric query.
type ListFilter struct {
	MetricType Type
	Start      *time.Time
	End        *time.Time
	Limit      int
	Offset     int
}
