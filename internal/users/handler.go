package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vitalink/vitalink-api/internal/auth"
	"github.com/vitalink/vitalink-api/pkg/logging"
)

// Mailer sends account emails. Implemented by the notify service; nil
// disables email sending (codes are still stored, useful in development).
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
	SendPasswordReset(ctx context.Context, to, name, code string) error
}

// Handler handles HTTP requests for user accounts
type Handler struct {
	repo       Repository
	mailer     Mailer
	logger     *logging.Logger
	bcryptCost int
	codeTTL    time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

// HandlerConfig holds handler construction options.
type HandlerConfig struct {
	BcryptCost          int
	VerificationCodeTTL time.Duration
	PasswordResetTTL    time.Duration
}

// NewHandler creates a new users handler
func NewHandler(repo Repository, mailer Mailer, logger *logging.Logger, cfg HandlerConfig) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.VerificationCodeTTL <= 0 {
		cfg.VerificationCodeTTL = time.Hour
	}
	if cfg.PasswordResetTTL <= 0 {
		cfg.PasswordResetTTL = time.Hour
	}
	return &Handler{
		repo:       repo,
		mailer:     mailer,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		codeTTL:    cfg.VerificationCodeTTL,
		resetTTL:   cfg.PasswordResetTTL,
		now:        time.Now,
	}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hashed, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	code := generateCode()
	expires := h.now().UTC().Add(h.codeTTL)
	user := &User{
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashed,

		VerificationCode:          &code,
		VerificationCodeExpiresAt: &expires,
	}
	if err := h.repo.Create(r.Context(), user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("failed to create user", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendVerification(r.Context(), user, code)
	h.logger.Info("user registered", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "registration successful, check your email for the verification code",
		"user_id": user.ID,
	})
}

// VerifyEmail handles POST /auth/verify-email
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if user.Verified() {
		writeJSON(w, http.StatusOK, map[string]string{"message": "email already verified"})
		return
	}
	if err := h.checkCode(user.VerificationCode, user.VerificationCodeExpiresAt, req.Code); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.repo.MarkVerified(r.Context(), user.ID); err != nil {
		h.logger.Error("failed to mark user verified", "user_id", user.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("email verified", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

// ResendCode handles POST /auth/resend-code
func (h *Handler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req ResendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if user.Verified() {
		writeJSON(w, http.StatusOK, map[string]string{"message": "email already verified"})
		return
	}

	code := generateCode()
	expires := h.now().UTC().Add(h.codeTTL)
	if err := h.repo.SetVerificationCode(r.Context(), user.ID, code, expires); err != nil {
		h.logger.Error("failed to store verification code", "user_id", user.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.sendVerification(r.Context(), user, code)

	writeJSON(w, http.StatusOK, map[string]string{"message": "verification code sent"})
}

// ForgotPassword handles POST /users/forgot-password. The response does not
// reveal whether the email exists.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if user, err := h.repo.GetByEmail(r.Context(), req.Email); err == nil {
		code := generateCode()
		expires := h.now().UTC().Add(h.resetTTL)
		if err := h.repo.SetResetCode(r.Context(), user.ID, code, expires); err != nil {
			h.logger.Error("failed to store reset code", "user_id", user.ID, "error", err)
		} else if h.mailer != nil {
			if err := h.mailer.SendPasswordReset(r.Context(), user.Email, user.Name, code); err != nil {
				h.logger.Error("failed to send reset email", "user_id", user.ID, "error", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset code has been sent",
	})
}

// ResetPassword handles POST /users/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < 8 {
		http.Error(w, ErrWeakPassword.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err := h.checkCode(user.PasswordResetCode, user.PasswordResetCodeExpiresAt, req.Code); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword, h.bcryptCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err := h.repo.UpdatePassword(r.Context(), user.ID, hashed); err != nil {
		h.logger.Error("failed to update password", "user_id", user.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("password reset", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *Handler) checkCode(stored *string, expiresAt *time.Time, supplied string) error {
	if stored == nil || supplied == "" || *stored != supplied {
		return ErrInvalidCode
	}
	if expiresAt == nil || h.now().After(*expiresAt) {
		return ErrCodeExpired
	}
	return nil
}

func (h *Handler) sendVerification(ctx context.Context, user *User, code string) {
	if h.mailer == nil {
		return
	}
	if err := h.mailer.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
		h.logger.Error("failed to send verification email", "user_id", user.ID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
