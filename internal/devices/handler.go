package devices

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitalink/vitalink-api/internal/auth"
	"github.com/vitalink/vitalink-api/pkg/logging"
)

// Handler handles HTTP requests for devices
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new devices handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Register handles POST /devices/register. The API key is returned exactly
// once; it is never included in later device listings.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	device := &Device{
		Name:            req.Name,
		SerialNumber:    req.SerialNumber,
		APIKey:          generateAPIKey(),
		Model:           req.Model,
		FirmwareVersion: req.FirmwareVersion,
		UserID:          id.UserID,
	}
	if err := h.repo.Register(r.Context(), device); err != nil {
		if errors.Is(err, ErrSerialTaken) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("failed to register device", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("device registered", "device_id", device.ID, "user_id", id.UserID)
	writeJSON(w, http.StatusCreated, RegistrationResponse{Device: device, APIKey: device.APIKey})
}

// List handles GET /devices
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	list, err := h.repo.ListByUser(r.Context(), id.UserID)
	if err != nil {
		h.logger.Error("failed to list devices", "user_id", id.UserID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Device{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": list, "count": len(list)})
}

// Deactivate handles DELETE /devices/{deviceID}
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	deviceID := chi.URLParam(r, "deviceID")

	if err := h.repo.Deactivate(r.Context(), deviceID, id.UserID); err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to deactivate device", "device_id", deviceID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("device deactivated", "device_id", deviceID, "user_id", id.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "device deactivated"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
