package devices

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"
)

// Device is a registered wearable. The API key is returned once at
// registration and authenticates metric ingestion; it never appears in
// later listings.
type Device struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	SerialNumber    string     `json:"serial_number"`
	APIKey          string     `json:"-"`
	Model           string     `json:"model"`
	FirmwareVersion string     `json:"firmware_version"`
	IsActive        bool       `json:"is_active"`
	UserID          string     `json:"user_id"`
	RegisteredAt    time.Time  `json:"registered_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"-"`
}

// RegisterRequest is the body for POST /devices/register.
type RegisterRequest struct {
	Name            string `json:"name"`
	SerialNumber    string `json:"serial_number"`
	Model           string `json:"model"`
	FirmwareVersion string `json:"firmware_version"`
}

// Validate checks the registration payload.
func (r *RegisterRequest) Validate() error {
	r.SerialNumber = strings.TrimSpace(r.SerialNumber)
	if r.SerialNumber == "" {
		return ErrMissingSerial
	}
	return nil
}

// RegistrationResponse carries the one-time API key back to the caller.
type RegistrationResponse struct {
	Device *Device `json:"device"`
	APIKey string  `json:"api_key"`
}

// generateAPIKey returns a URL-safe random key for device authentication.
func generateAPIKey() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand only fails when the OS entropy source is broken
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
