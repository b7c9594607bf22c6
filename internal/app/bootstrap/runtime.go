package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/vitalink/vitalink-api/internal/config"
	"github.com/vitalink/vitalink-api/internal/notify"
	"github.com/vitalink/vitalink-api/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildDatabasePool opens a pgx connection pool and verifies connectivity.
func BuildDatabasePool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// BuildEmailSender selects an email provider from configuration. Provider
// "sendgrid" and "ses" force a backend; "auto" picks SendGrid when an API key
// is set, then SES, then a logging stub so local development keeps working.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}

	sendgridSender := func() notify.EmailSender {
		s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if s == nil {
			return nil
		}
		return s
	}
	sesSender := func() notify.EmailSender {
		if cfg.SESFromEmail == "" {
			return nil
		}
		s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if s == nil {
			return nil
		}
		return s
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		if s := sendgridSender(); s != nil {
			return s
		}
	case "ses":
		if s := sesSender(); s != nil {
			return s
		}
	default:
		if s := sendgridSender(); s != nil {
			logger.Info("email provider selected", "provider", "sendgrid")
			return s
		}
		if s := sesSender(); s != nil {
			logger.Info("email provider selected", "provider", "ses")
			return s
		}
	}

	logger.Warn("no email provider configured, using stub sender")
	return notify.NewStubEmailSender(logger)
}
