package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vitalink/vitalink-api/pkg/logging"
)

// ErrAccountNotFound is returned by AccountSource when no active account
// matches the lookup.
var ErrAccountNotFound = errors.New("auth: account not found")

// Account is the view of a user the auth layer needs.
type Account struct {
	ID             string
	Name           string
	Email          string
	HashedPassword string
	Admin          bool
	Verified       bool
}

// AccountSource looks up accounts for login and profile requests. The users
// package provides the storage-backed implementation.
type AccountSource interface {
	ByEmail(ctx context.Context, email string) (*Account, error)
	ByID(ctx context.Context, id string) (*Account, error)
}

// Handler handles login, logout and current-user requests
type Handler struct {
	accounts  AccountSource
	tokens    *TokenManager
	blacklist *Blacklist
	logger    *logging.Logger
}

// NewHandler creates a new auth handler. The blacklist may be nil when
// Redis is unavailable; logout then degrades to a no-op.
func NewHandler(accounts AccountSource, tokens *TokenManager, blacklist *Blacklist, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		accounts:  accounts,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	account, err := h.accounts.ByEmail(r.Context(), req.Email)
	if err != nil || !CheckPassword(account.HashedPassword, req.Password) {
		// identical response for unknown email and wrong password
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !account.Verified {
		http.Error(w, "email not verified", http.StatusForbidden)
		return
	}

	token, claims, err := h.tokens.Issue(account.ID)
	if err != nil {
		h.logger.Error("failed to issue token", "user_id", account.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("user logged in", "user_id", account.ID)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
	})
}

// Logout handles POST /auth/logout by revoking the presented token
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if h.blacklist != nil && id.TokenJTI != "" {
		if err := h.blacklist.Add(r.Context(), id.TokenJTI, id.TokenExpiresAt); err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	h.logger.Info("user logged out", "user_id", id.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	account, err := h.accounts.ByID(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load account", "user_id", id.UserID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       account.ID,
		"name":     account.Name,
		"email":    account.Email,
		"is_admin": account.Admin,
		"verified": account.Verified,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
