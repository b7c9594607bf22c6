package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vitalink/vitalink-api/internal/auth"
	"github.com/vitalink/vitalink-api/internal/devices"
	"github.com/vitalink/vitalink-api/pkg/logging"
)

// DeviceResolver maps an API key to the registered device holding it.
type DeviceResolver interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*devices.Device, error)
}

// IngestAuth authenticates metric ingestion requests. Wearables send their
// device API key in X-API-Key; the identity is the device's owner. A Bearer
// token is also accepted so mobile apps can upload on the user's behalf.
func IngestAuth(resolver DeviceResolver, tokens *auth.TokenManager, blacklist *auth.Blacklist, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	tokenAuth := TokenAuth(tokens, blacklist, nil, logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if apiKey == "" {
				if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
					tokenAuth(next).ServeHTTP(w, r)
					return
				}
				http.Error(w, "missing credentials", http.StatusUnauthorized)
				return
			}

			device, err := resolver.GetByAPIKey(r.Context(), apiKey)
			if err != nil {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
				return
			}

			id := auth.Identity{
				UserID:   device.UserID,
				DeviceID: device.ID,
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), id)))
		})
	}
}
