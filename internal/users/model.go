package users

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// User is a registered account. Sensitive and bookkeeping fields never
// serialize into API responses.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	HashedPassword  string     `json:"-"`
	IsAdmin         bool       `json:"is_admin"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"-"`

	VerificationCode           *string    `json:"-"`
	VerificationCodeExpiresAt  *time.Time `json:"-"`
	PasswordResetCode          *string    `json:"-"`
	PasswordResetCodeExpiresAt *time.Time `json:"-"`
}

// Verified reports whether the account completed email verification.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration payload.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return ErrInvalidEmail
	}
	if len(r.Password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// VerifyEmailRequest is the body for POST /auth/verify-email.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResendCodeRequest is the body for POST /auth/resend-code.
type ResendCodeRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordRequest is the body for POST /users/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body for POST /users/reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// generateCode returns a random 6-digit verification code.
func generateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}
