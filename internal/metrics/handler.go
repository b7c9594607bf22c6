package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vitalink/vitalink-api/internal/auth"
	"github.com/vitalink/vitalink-api/pkg/logging"
)

// IngestObserver receives batch ingestion outcomes for instrumentation.
type IngestObserver interface {
	ObserveIngest(status string, points int)
}

// Handler handles HTTP requests for metrics
type Handler struct {
	repo     Repository
	logger   *logging.Logger
	observer IngestObserver
	maxBatch int
}

// NewHandler creates a new metrics handler
func NewHandler(repo Repository, logger *logging.Logger, observer IngestObserver, maxBatch int) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if maxBatch <= 0 {
		maxBatch = 1000
	}
	return &Handler{repo: repo, logger: logger, observer: observer, maxBatch: maxBatch}
}

// CreateBatch handles POST /metrics/batch. Invalid items are reported in
// the response without failing the rest of the batch.
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Metrics) == 0 {
		http.Error(w, ErrEmptyBatch.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Metrics) > h.maxBatch {
		http.Error(w, ErrBatchTooLarge.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	valid := make([]Create, 0, len(req.Metrics))
	var batchErrors []BatchError
	for i, item := range req.Metrics {
		if err := validateItem(item); err != nil {
			batchErrors = append(batchErrors, BatchError{
				Index:      i,
				MetricType: string(item.MetricType),
				Error:      err.Error(),
			})
			continue
		}
		valid = append(valid, item)
	}

	if len(valid) == 0 {
		h.observe("rejected", 0)
		writeJSON(w, http.StatusUnprocessableEntity, BatchResult{
			TotalProcessed: len(req.Metrics),
			Failed:         len(batchErrors),
			Errors:         batchErrors,
		})
		return
	}

	inserted, err := h.repo.InsertBatch(r.Context(), id.UserID, valid)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("batch insert failed", "user_id", id.UserID, "error", err)
		h.observe("error", inserted)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("metrics batch ingested",
		"user_id", id.UserID,
		"successful", inserted,
		"failed", len(batchErrors),
	)
	h.observe("ok", inserted)
	writeJSON(w, http.StatusCreated, BatchResult{
		TotalProcessed: len(req.Metrics),
		Successful:     inserted,
		Failed:         len(batchErrors),
		Errors:         batchErrors,
	})
}

// GetSummary handles GET /users/{userID}/metrics/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	metricType := Type(r.URL.Query().Get("metric_type"))
	if !metricType.Valid() {
		http.Error(w, ErrInvalidType.Error(), http.StatusBadRequest)
		return
	}
	period := AggregationPeriod(r.URL.Query().Get("period"))
	if !period.Valid() {
		http.Error(w, "period must be day, week or month", http.StatusBadRequest)
		return
	}

	rows, err := h.repo.Summarize(r.Context(), userID, metricType, period)
	if err != nil {
		h.respondQueryError(w, userID, err)
		return
	}
	if rows == nil {
		rows = []SummaryRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"metrics": rows})
}

// GetData handles GET /users/{userID}/metrics/data
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	filter := ListFilter{}
	if raw := r.URL.Query().Get("metric_type"); raw != "" {
		filter.MetricType = Type(raw)
		if !filter.MetricType.Valid() {
			http.Error(w, ErrInvalidType.Error(), http.StatusBadRequest)
			return
		}
	}
	if t, ok := parseTimeParam(r, "start"); ok {
		filter.Start = t
	}
	if t, ok := parseTimeParam(r, "end"); ok {
		filter.End = t
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	list, err := h.repo.ListForUser(r.Context(), userID, filter)
	if err != nil {
		h.respondQueryError(w, userID, err)
		return
	}
	if list == nil {
		list = []*Metric{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"metrics": list, "count": len(list)})
}

// authorize resolves the path user and enforces self-or-admin access.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return "", false
	}
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return "", false
	}
	if userID != id.UserID && !id.Admin {
		http.Error(w, "not authorized to access this resource", http.StatusForbidden)
		return "", false
	}
	return userID, true
}

func (h *Handler) respondQueryError(w http.ResponseWriter, userID string, err error) {
	if errors.Is(err, ErrUserNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error("metric query failed", "user_id", userID, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (h *Handler) observe(status string, points int) {
	if h.observer != nil {
		h.observer.ObserveIngest(status, points)
	}
}

func validateItem(item Create) error {
	if !item.MetricType.Valid() {
		return ErrInvalidType
	}
	if err := item.MetricType.CheckValue(item.Value); err != nil {
		if errors.Is(err, ErrValueOutOfRange) {
			r := typeRanges[item.MetricType]
			return fmt.Errorf("%w [%g, %g]", ErrValueOutOfRange, r.min, r.max)
		}
		return err
	}
	return nil
}

func parseTimeParam(r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
