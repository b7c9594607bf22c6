package prediction

import (
	"context"
	"errors"
	"time"

	"github.com/vitalink/vitalink-api/pkg/logging"
)

// lookbackWindow is the fixed range of stored readings behind a prediction.
// The requested horizon is echoed in the response but never widens this.
const lookbackWindow = 24 * time.Hour

const defaultHorizonHours = 24

// Engine computes health-status predictions from the last 24 hours of
// vitals. It holds no per-call state; concurrent predictions are
// independent.
type Engine struct {
	source        MetricSource
	logger        *logging.Logger
	observer      Observer
	modelVersion  string
	lookupTimeout time.Duration
	now           func() time.Time
}

// EngineConfig holds engine construction options.
type EngineConfig struct {
	ModelVersion  string
	LookupTimeout time.Duration
	Observer      Observer
}

// NewEngine creates a prediction engine backed by the given metric source.
func NewEngine(source MetricSource, logger *logging.Logger, cfg EngineConfig) *Engine {
	if source == nil {
		panic("prediction: metric source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ModelVersion == "" {
		cfg.ModelVersion = "v2.0.0-threshold"
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 5 * time.Second
	}
	return &Engine{
		source:        source,
		logger:        logger,
		observer:      cfg.Observer,
		modelVersion:  cfg.ModelVersion,
		lookupTimeout: cfg.LookupTimeout,
		now:           time.Now,
	}
}

// resolved is the value actually used for a vital: caller-supplied or
// averaged from stored readings. points carries the number of raw readings
// behind a store-derived average, 1 for an override.
type resolved struct {
	value  float64
	points int
	ok     bool
}

// Predict resolves, classifies and aggregates the three vitals into one
// response. Missing data is a normal condition and degrades confidence;
// only an unknown user aborts the call.
func (e *Engine) Predict(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	started := e.now()

	resolvedVitals := make(map[Vital]resolved, len(vitalOrder))
	for _, vital := range vitalOrder {
		r, err := e.resolve(ctx, req, vital)
		if err != nil {
			return nil, err
		}
		resolvedVitals[vital] = r
	}

	var criticalCount, concerningCount, evaluated int
	bands := make(map[Vital]Band, len(vitalOrder))
	for _, vital := range vitalOrder {
		r := resolvedVitals[vital]
		if !r.ok {
			continue
		}
		evaluated++
		band := Classify(vital, r.value)
		bands[vital] = band
		switch band {
		case BandCritical:
			criticalCount++
		case BandConcerning:
			concerningCount++
		}
	}

	result, risk := aggregate(criticalCount, concerningCount)

	summaries := make([]MetricAverage, 0, evaluated)
	riskFactors := []string{}
	recommendations := []string{}
	for _, vital := range vitalOrder {
		r := resolvedVitals[vital]
		if !r.ok {
			continue
		}
		band := bands[vital]
		summaries = append(summaries, MetricAverage{
			MetricType:   string(vital),
			AverageValue: r.value,
			Unit:         vital.Unit(),
			DataPoints:   r.points,
			IsHealthy:    band == BandNormal,
			HealthScore:  band.Score(),
		})
		if band != BandNormal {
			riskFactors = append(riskFactors, riskFactor(vital, r.value, band))
			recommendations = append(recommendations, recommendation(vital, band))
		}
	}

	if len(recommendations) == 0 {
		if evaluated == 0 {
			recommendations = append(recommendations, recommendationNoData)
		} else {
			recommendations = append(recommendations, recommendationAllNormal)
		}
	}

	horizon := req.HorizonHours
	if horizon == 0 {
		horizon = defaultHorizonHours
	}

	resp := &Response{
		UserID:                 req.UserID,
		PredictionTimestamp:    started.UTC(),
		PredictionResult:       result,
		HealthRiskLevel:        risk,
		ConfidenceScore:        float64(evaluated) / float64(len(vitalOrder)),
		MetricAverages:         summaries,
		RiskFactors:            riskFactors,
		Recommendations:        recommendations,
		ModelVersion:           e.modelVersion,
		PredictionHorizonHours: horizon,
	}
	if req.IncludeMetrics {
		resp.RawMetricsSummary = e.rawSummary(resolvedVitals)
	}

	e.logger.Info("health prediction completed",
		"user_id", req.UserID,
		"prediction_result", result,
		"risk_level", string(risk),
		"confidence", resp.ConfidenceScore,
	)
	if e.observer != nil {
		e.observer.ObservePrediction(string(risk), e.now().Sub(started).Seconds())
	}
	return resp, nil
}

// resolve produces the value used for one vital: the request override if
// present, otherwise the 24h mean from the store. Store failures other than
// user-not-found degrade to missing data for that vital only.
func (e *Engine) resolve(ctx context.Context, req *Request, vital Vital) (resolved, error) {
	if v := req.override(vital); v != nil {
		return resolved{value: *v, points: 1, ok: true}, nil
	}

	end := e.now()
	start := end.Add(-lookbackWindow)

	lookupCtx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
	defer cancel()

	readings, err := e.source.FetchWindow(lookupCtx, req.UserID, vital, start, end)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return resolved{}, ErrUserNotFound
		}
		e.logger.Warn("metric lookup failed, treating as missing data",
			"user_id", req.UserID,
			"vital", string(vital),
			"error", err,
		)
		return resolved{}, nil
	}
	if len(readings) == 0 {
		return resolved{}, nil
	}

	var sum float64
	for _, r := range readings {
		sum += r.Value
	}
	return resolved{
		value:  sum / float64(len(readings)),
		points: len(readings),
		ok:     true,
	}, nil
}

// aggregate combines per-vital bands into the overall result. Any single
// critical reading dominates; the design is deliberately pessimistic toward
// false negatives.
func aggregate(criticalCount, concerningCount int) (int, RiskLevel) {
	switch {
	case criticalCount > 0:
		return ResultLifeThreatening, RiskHigh
	case concerningCount > 0:
		return ResultSick, RiskMedium
	default:
		return ResultNormal, RiskLow
	}
}

func (e *Engine) rawSummary(resolvedVitals map[Vital]resolved) *RawMetricsSummary {
	summary := &RawMetricsSummary{
		MetricsByType: make(map[string]int, len(vitalOrder)),
	}
	for _, vital := range vitalOrder {
		r := resolvedVitals[vital]
		summary.MetricsByType[string(vital)] = r.points
		summary.TotalMetricsAnalyzed += r.points
	}
	return summary
}
