package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vitalink/vitalink-api/internal/auth"
)

type fakeRepo struct {
	inserted   []Create
	insertErr  error
	listed     []*Metric
	summarized []SummaryRow
	queryErr   error
}

func (f *fakeRepo) InsertBatch(ctx context.Context, userID string, items []Create) (int, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = append(f.inserted, items...)
	return len(items), nil
}

func (f *fakeRepo) ListForUser(ctx context.Context, userID string, filter ListFilter) ([]*Metric, error) {
	return f.listed, f.queryErr
}

func (f *fakeRepo) FetchWindow(ctx context.Context, userID string, metricType Type, start, end time.Time) ([]Reading, error) {
	return nil, f.queryErr
}

func (f *fakeRepo) Summarize(ctx context.Context, userID string, metricType Type, period AggregationPeriod) ([]SummaryRow, error) {
	return f.summarized, f.queryErr
}

type recordingObserver struct {
	status string
	points int
}

func (o *recordingObserver) ObserveIngest(status string, points int) {
	o.status = status
	o.points = points
}

func batchRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/metrics/batch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.ContextWithIdentity(req.Context(), auth.Identity{UserID: "user-1"}))
}

func TestCreateBatch(t *testing.T) {
	repo := &fakeRepo{}
	obs := &recordingObserver{}
	h := NewHandler(repo, nil, obs, 0)

	body := `{"metrics": [
		{"metric_type": "spo2", "value": 97.5},
		{"metric_type": "heart_rate", "value": 72}
	]}`
	rec := httptest.NewRecorder()
	h.CreateBatch(rec, batchRequest(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Successful != 2 || result.Failed != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if obs.status != "ok" || obs.points != 2 {
		t.Errorf("observer saw %s/%d", obs.status, obs.points)
	}
}

func TestCreateBatchPartialFailure(t *testing.T) {
	repo := &fakeRepo{}
	h := NewHandler(repo, nil, nil, 0)

	// SpO2 of 120 is outside the plausible range; the heart rate is kept.
	body := `{"metrics": [
		{"metric_type": "spo2", "value": 120},
		{"metric_type": "heart_rate", "value": 72},
		{"metric_type": "blood_pressure", "value": 120}
	]}`
	rec := httptest.NewRecorder()
	h.CreateBatch(rec, batchRequest(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var result BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.TotalProcessed != 3 || result.Successful != 1 || result.Failed != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 item errors, got %d", len(result.Errors))
	}
	if result.Errors[0].Index != 0 || result.Errors[1].Index != 2 {
		t.Errorf("error indexes %d, %d", result.Errors[0].Index, result.Errors[1].Index)
	}
	if !strings.Contains(result.Errors[0].Error, "[70, 100]") {
		t.Errorf("range error should name the bounds, got %q", result.Errors[0].Error)
	}
}

func TestCreateBatchAllInvalid(t *testing.T) {
	obs := &recordingObserver{}
	h := NewHandler(&fakeRepo{}, nil, obs, 0)

	rec := httptest.NewRecorder()
	h.CreateBatch(rec, batchRequest(`{"metrics": [{"metric_type": "mood", "value": 5}]}`))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if obs.status != "rejected" {
		t.Errorf("observer status %q", obs.status)
	}
}

func TestCreateBatchLimits(t *testing.T) {
	h := NewHandler(&fakeRepo{}, nil, nil, 2)

	rec := httptest.NewRecorder()
	h.CreateBatch(rec, batchRequest(`{"metrics": []}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.CreateBatch(rec, batchRequest(`{"metrics": [
		{"metric_type": "spo2", "value": 97},
		{"metric_type": "spo2", "value": 97},
		{"metric_type": "spo2", "value": 97}
	]}`))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized batch: expected 413, got %d", rec.Code)
	}
}

func TestCreateBatchUnknownUser(t *testing.T) {
	h := NewHandler(&fakeRepo{insertErr: ErrUserNotFound}, nil, nil, 0)

	rec := httptest.NewRecorder()
	h.CreateBatch(rec, batchRequest(`{"metrics": [{"metric_type": "spo2", "value": 97}]}`))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCreateBatchUnauthenticated(t *testing.T) {
	h := NewHandler(&fakeRepo{}, nil, nil, 0)

	req := httptest.NewRequest(http.MethodPost, "/metrics/batch", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.CreateBatch(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func userRequest(path, callerID string, admin bool, pathUserID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(auth.ContextWithIdentity(req.Context(), auth.Identity{UserID: callerID, Admin: admin}))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userID", pathUserID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetSummary(t *testing.T) {
	repo := &fakeRepo{summarized: []SummaryRow{{Period: time.Now(), Value: 96.5}}}
	h := NewHandler(repo, nil, nil, 0)

	rec := httptest.NewRecorder()
	h.GetSummary(rec, userRequest("/users/user-1/metrics/summary?metric_type=spo2&period=day", "user-1", false, "user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Metrics []SummaryRow `json:"metrics"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Metrics) != 1 || body.Metrics[0].Value != 96.5 {
		t.Errorf("unexpected rows: %+v", body.Metrics)
	}
}

func TestGetSummaryValidation(t *testing.T) {
	h := NewHandler(&fakeRepo{}, nil, nil, 0)

	rec := httptest.NewRecorder()
	h.GetSummary(rec, userRequest("/users/user-1/metrics/summary?metric_type=mood&period=day", "user-1", false, "user-1"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetSummary(rec, userRequest("/users/user-1/metrics/summary?metric_type=spo2&period=year", "user-1", false, "user-1"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad period: expected 400, got %d", rec.Code)
	}
}

func TestGetDataAuthorization(t *testing.T) {
	h := NewHandler(&fakeRepo{}, nil, nil, 0)

	rec := httptest.NewRecorder()
	h.GetData(rec, userRequest("/users/user-2/metrics/data", "user-1", false, "user-2"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign user: expected 403, got %d", rec.Code)
	}

	// Admins may read anyone's data.
	rec = httptest.NewRecorder()
	h.GetData(rec, userRequest("/users/user-2/metrics/data", "user-1", true, "user-2"))
	if rec.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", rec.Code)
	}
}

func TestGetDataEmptyIsArray(t *testing.T) {
	h := NewHandler(&fakeRepo{}, nil, nil, 0)

	rec := httptest.NewRecorder()
	h.GetData(rec, userRequest("/users/user-1/metrics/data", "user-1", false, "user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"metrics":[]`) {
		t.Errorf("empty result should encode as an array: %s", rec.Body.String())
	}
}
