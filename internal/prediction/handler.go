package prediction

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitalink/vitalink-api/internal/auth"
	"github.com/vitalink/vitalink-api/pkg/logging"
)

// Handler exposes the prediction engine over HTTP
type Handler struct {
	engine *Engine
	logger *logging.Logger
}

// NewHandler creates a new prediction handler
func NewHandler(engine *Engine, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{engine: engine, logger: logger}
}

// Predict handles POST /predictions/health. Callers predict for themselves;
// admins may name any user in the body.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		req.UserID = id.UserID
	}
	if req.UserID != id.UserID && !id.Admin {
		http.Error(w, "not authorized to access this resource", http.StatusForbidden)
		return
	}

	resp, err := h.engine.Predict(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidHorizon):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		default:
			h.logger.Error("prediction failed", "user_id", req.UserID, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
