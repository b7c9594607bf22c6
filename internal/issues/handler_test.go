package issues

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vitalink/vitalink-api/internal/auth"
)

type fakeRepo struct {
	issues    map[string]*Issue
	lastScope string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{issues: make(map[string]*Issue)}
}

func (f *fakeRepo) Create(ctx context.Context, issue *Issue) error {
	issue.ID = uuid.NewString()
	issue.CreatedAt = time.Now()
	if issue.DetectedAt.IsZero() {
		issue.DetectedAt = issue.CreatedAt
	}
	cp := *issue
	f.issues[issue.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Issue, error) {
	if issue, ok := f.issues[id]; ok {
		cp := *issue
		return &cp, nil
	}
	return nil, ErrIssueNotFound
}

func (f *fakeRepo) List(ctx context.Context, userID string, limit, offset int) ([]*Issue, error) {
	f.lastScope = userID
	var out []*Issue
	for _, issue := range f.issues {
		if userID == "" || issue.UserID == userID {
			cp := *issue
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, issue *Issue) error {
	if _, ok := f.issues[issue.ID]; !ok {
		return ErrIssueNotFound
	}
	cp := *issue
	f.issues[issue.ID] = &cp
	return nil
}

func (f *fakeRepo) SoftDelete(ctx context.Context, id string) error {
	if _, ok := f.issues[id]; !ok {
		return ErrIssueNotFound
	}
	delete(f.issues, id)
	return nil
}

func request(method, path, body, userID string, admin bool) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(auth.ContextWithIdentity(req.Context(), auth.Identity{UserID: userID, Admin: admin}))
	}
	return req
}

func withIssueID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("issueID", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func createIssue(t *testing.T, h *Handler, userID string) *Issue {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Create(rec, request(http.MethodPost, "/issues/", `{"issue_type": "sensor_fault", "description": "intermittent spo2 dropout", "severity": "moderate"}`, userID, false))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var issue Issue
	if err := json.NewDecoder(rec.Body).Decode(&issue); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &issue
}

func TestIssueCreate(t *testing.T) {
	h := NewHandler(newFakeRepo(), nil)

	issue := createIssue(t, h, "user-1")
	if issue.UserID != "user-1" {
		t.Errorf("owner should be the caller, got %s", issue.UserID)
	}
	if issue.DetectedAt.IsZero() {
		t.Error("detected_at should default to creation time")
	}
	if issue.Resolved {
		t.Error("new issues start unresolved")
	}
}

func TestIssueCreateValidation(t *testing.T) {
	h := NewHandler(newFakeRepo(), nil)

	rec := httptest.NewRecorder()
	h.Create(rec, request(http.MethodPost, "/issues/", `{"severity": "moderate"}`, "user-1", false))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing type: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Create(rec, request(http.MethodPost, "/issues/", `{"issue_type": "sensor_fault", "severity": "catastrophic"}`, "user-1", false))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad severity: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Create(rec, request(http.MethodPost, "/issues/", `{"issue_type": "sensor_fault", "severity": "low"}`, "", false))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no identity: expected 401, got %d", rec.Code)
	}
}

func TestIssueListScoping(t *testing.T) {
	repo := newFakeRepo()
	h := NewHandler(repo, nil)

	createIssue(t, h, "user-1")
	createIssue(t, h, "user-2")

	rec := httptest.NewRecorder()
	h.List(rec, request(http.MethodGet, "/issues/", "", "user-1", false))
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("user should only see own issues, got %d", body.Count)
	}
	if repo.lastScope != "user-1" {
		t.Errorf("scope = %q", repo.lastScope)
	}

	// Admins list across all users.
	rec = httptest.NewRecorder()
	h.List(rec, request(http.MethodGet, "/issues/", "", "admin-1", true))
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("admin should see all issues, got %d", body.Count)
	}
	if repo.lastScope != "" {
		t.Errorf("admin scope = %q", repo.lastScope)
	}
}

func TestIssueGetAuthorization(t *testing.T) {
	h := NewHandler(newFakeRepo(), nil)
	issue := createIssue(t, h, "user-1")

	rec := httptest.NewRecorder()
	h.Get(rec, withIssueID(request(http.MethodGet, "/issues/"+issue.ID, "", "user-2", false), issue.ID))
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign user: expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Get(rec, withIssueID(request(http.MethodGet, "/issues/"+issue.ID, "", "admin-1", true), issue.ID))
	if rec.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Get(rec, withIssueID(request(http.MethodGet, "/issues/missing", "", "user-1", false), "missing"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown issue: expected 404, got %d", rec.Code)
	}
}

func TestIssueUpdate(t *testing.T) {
	h := NewHandler(newFakeRepo(), nil)
	issue := createIssue(t, h, "user-1")

	rec := httptest.NewRecorder()
	h.Update(rec, withIssueID(request(http.MethodPut, "/issues/"+issue.ID, `{"resolved": true, "severity": "low"}`, "user-1", false), issue.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated Issue
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !updated.Resolved || updated.Severity != SeverityLow {
		t.Errorf("unexpected update result: %+v", updated)
	}
	if updated.Description != issue.Description {
		t.Error("omitted fields must be left unchanged")
	}
}

func TestIssueUpdateValidation(t *testing.T) {
	h := NewHandler(newFakeRepo(), nil)
	issue := createIssue(t, h, "user-1")

	rec := httptest.NewRecorder()
	h.Update(rec, withIssueID(request(http.MethodPut, "/issues/"+issue.ID, `{"severity": "huge"}`, "user-1", false), issue.ID))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad severity: expected 400, got %d", rec.Code)
	}
}

func TestIssueDelete(t *testing.T) {
	repo := newFakeRepo()
	h := NewHandler(repo, nil)
	issue := createIssue(t, h, "user-1")

	rec := httptest.NewRecorder()
	h.Delete(rec, withIssueID(request(http.MethodDelete, "/issues/"+issue.ID, "", "user-2", false), issue.ID))
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign user: expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, withIssueID(request(http.MethodDelete, "/issues/"+issue.ID, "", "user-1", false), issue.ID))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if _, ok := repo.issues[issue.ID]; ok {
		t.Error("issue should be gone after delete")
	}
}
