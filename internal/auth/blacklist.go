package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitalink/vitalink-api/pkg/logging"
)

const blacklistKeyPrefix = "blacklist:"

// Blacklist stores revoked token IDs in Redis with a TTL matching the
// remaining token lifetime, so entries expire on their own.
type Blacklist struct {
	client *redis.Client
	logger *logging.Logger
	now    func() time.Time
}

// NewBlacklist creates a Redis-backed token blacklist.
func NewBlacklist(client *redis.Client, logger *logging.Logger) *Blacklist {
	if client == nil {
		panic("auth: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Blacklist{client: client, logger: logger, now: time.Now}
}

// Add revokes a token ID until it would have expired anyway. Tokens already
// past their expiry are not stored.
func (b *Blacklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistKeyPrefix+jti, "1", ttl).Err(); err != nil {
		b.logger.Error("failed to blacklist token", "jti", jti, "error", err)
		return err
	}
	return nil
}

// IsBlacklisted reports whether a token ID has been revoked. Redis errors
// fail open so an outage does not lock out every user.
func (b *Blacklist) IsBlacklisted(ctx context.Context, jti string) bool {
	n, err := b.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		b.logger.Warn("blacklist check failed, allowing token", "jti", jti, "error", err)
		return false
	}
	return n > 0
}
