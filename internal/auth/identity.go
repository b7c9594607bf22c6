package auth

import (
	"context"
	"time"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated principal attached to a request context.
// Device-key authenticated requests carry the owning user's ID.
type Identity struct {
	UserID         string
	Admin          bool
	TokenJTI       string
	TokenExpiresAt time.Time
	DeviceID       string
}

// ContextWithIdentity attaches the identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
