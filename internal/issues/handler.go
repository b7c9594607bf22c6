package issues

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vitalink/vitalink-api/internal/auth"
	"github.com/vitalink/vitalink-api/pkg/logging"
)

// Handler handles HTTP requests for issues
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new issues handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /issues
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	issue := &Issue{
		IssueType:   req.IssueType,
		Description: req.Description,
		Severity:    req.Severity,
		UserID:      id.UserID,
	}
	if req.DetectedAt != nil {
		issue.DetectedAt = *req.DetectedAt
	}

	if err := h.repo.Create(r.Context(), issue); err != nil {
		h.logger.Error("issue create failed", "user_id", id.UserID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("issue reported",
		"issue_id", issue.ID,
		"user_id", id.UserID,
		"severity", issue.Severity,
	)
	writeJSON(w, http.StatusCreated, issue)
}

// List handles GET /issues. Regular users see their own issues, admins see
// everyone's.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	scope := id.UserID
	if id.Admin {
		scope = ""
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.repo.List(r.Context(), scope, limit, offset)
	if err != nil {
		h.logger.Error("issue list failed", "user_id", id.UserID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Issue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": list, "count": len(list)})
}

// Get handles GET /issues/{issueID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	issue, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// Update handles PUT /issues/{issueID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	issue, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.Severity != nil {
		issue.Severity = *req.Severity
	}
	if req.Resolved != nil {
		issue.Resolved = *req.Resolved
	}

	if err := h.repo.Update(r.Context(), issue); err != nil {
		if errors.Is(err, ErrIssueNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("issue update failed", "issue_id", issue.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// Delete handles DELETE /issues/{issueID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	issue, ok := h.fetchAuthorized(w, r)
	if !ok {
		return
	}

	if err := h.repo.SoftDelete(r.Context(), issue.ID); err != nil {
		if errors.Is(err, ErrIssueNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("issue delete failed", "issue_id", issue.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fetchAuthorized loads the path issue and enforces owner-or-admin access.
func (h *Handler) fetchAuthorized(w http.ResponseWriter, r *http.Request) (*Issue, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return nil, false
	}
	issueID := chi.URLParam(r, "issueID")
	if issueID == "" {
		http.Error(w, "missing issue id", http.StatusBadRequest)
		return nil, false
	}

	issue, err := h.repo.GetByID(r.Context(), issueID)
	if err != nil {
		if errors.Is(err, ErrIssueNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("issue fetch failed", "issue_id", issueID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}
	if issue.UserID != id.UserID && !id.Admin {
		http.Error(w, "not authorized to access this resource", http.StatusForbidden)
		return nil, false
	}
	return issue, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
