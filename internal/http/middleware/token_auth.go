package middleware

import (
	"net/http"
	"strings"

	"github.com/vitalink/vitalink-api/internal/auth"
	"github.com/vitalink/vitalink-api/pkg/logging"
)

// TokenAuth validates the Bearer access token, rejects revoked tokens and
// attaches an auth.Identity to the request context. The account lookup fills
// in the admin flag, which the token itself does not carry.
func TokenAuth(tokens *auth.TokenManager, blacklist *auth.Blacklist, accounts auth.AccountSource, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if blacklist != nil && blacklist.IsBlacklisted(r.Context(), claims.ID) {
				http.Error(w, "token revoked", http.StatusUnauthorized)
				return
			}

			id := auth.Identity{
				UserID:   claims.Subject,
				TokenJTI: claims.ID,
			}
			if claims.ExpiresAt != nil {
				id.TokenExpiresAt = claims.ExpiresAt.Time
			}
			if accounts != nil {
				account, err := accounts.ByID(r.Context(), claims.Subject)
				if err != nil {
					// The subject was deleted after the token was issued.
					logger.Warn("token subject not found", "user_id", claims.Subject, "error", err)
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
				id.Admin = account.Admin
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), id)))
		})
	}
}
