package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitalink/vitalink-api/cmd/mainconfig"
	"github.com/vitalink/vitalink-api/internal/api/router"
	"github.com/vitalink/vitalink-api/internal/app/bootstrap"
	"github.com/vitalink/vitalink-api/internal/auth"
	appconfig "github.com/vitalink/vitalink-api/internal/config"
	"github.com/vitalink/vitalink-api/internal/devices"
	"github.com/vitalink/vitalink-api/internal/issues"
	"github.com/vitalink/vitalink-api/internal/metrics"
	"github.com/vitalink/vitalink-api/internal/notify"
	obsmetrics "github.com/vitalink/vitalink-api/internal/observability/metrics"
	"github.com/vitalink/vitalink-api/internal/prediction"
	"github.com/vitalink/vitalink-api/internal/users"
	"github.com/vitalink/vitalink-api/pkg/logging"
)

func main() {
	// Local development convenience, the file is absent in production.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting vitalink API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := bootstrap.BuildDatabasePool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	var blacklist *auth.Blacklist
	if redisClient != nil {
		blacklist = auth.NewBlacklist(redisClient, logger)
	} else {
		logger.Warn("redis unavailable, logout token revocation disabled")
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	emailSender := bootstrap.BuildEmailSender(cfg, awsCfg, logger)
	mailer := notify.NewService(emailSender, notify.ServiceConfig{
		CodeTTL: cfg.VerificationCodeTTL,
	}, logger)

	healthMetrics := obsmetrics.NewHealthMetrics(nil)

	// Repositories
	usersRepo := users.NewPostgresRepository(pool)
	devicesRepo := devices.NewPostgresRepository(pool)
	metricsRepo := metrics.NewPostgresRepository(pool)
	issuesRepo := issues.NewPostgresRepository(pool)

	// Auth
	accounts := users.NewAccountSource(usersRepo)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenExpiry)

	// Prediction engine over stored vitals
	engine := prediction.NewEngine(metrics.NewPredictionSource(metricsRepo), logger, prediction.EngineConfig{
		ModelVersion:  cfg.PredictionModelTag,
		LookupTimeout: cfg.MetricStoreTimeout,
		Observer:      healthMetrics,
	})

	// Handlers
	usersHandler := users.NewHandler(usersRepo, mailer, logger, users.HandlerConfig{
		BcryptCost:          cfg.BcryptCost,
		VerificationCodeTTL: cfg.VerificationCodeTTL,
		PasswordResetTTL:    cfg.PasswordResetTTL,
	})
	authHandler := auth.NewHandler(accounts, tokens, blacklist, logger)
	devicesHandler := devices.NewHandler(devicesRepo, logger)
	metricsHandler := metrics.NewHandler(metricsRepo, logger, healthMetrics, cfg.MaxMetricsPerBatch)
	predictionHandler := prediction.NewHandler(engine, logger)
	issuesHandler := issues.NewHandler(issuesRepo, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		UsersHandler:       usersHandler,
		AuthHandler:        authHandler,
		DevicesHandler:     devicesHandler,
		MetricsHandler:     metricsHandler,
		PredictionHandler:  predictionHandler,
		IssuesHandler:      issuesHandler,
		TokenManager:       tokens,
		Blacklist:          blacklist,
		Accounts:           accounts,
		DeviceResolver:     devicesRepo,
		PromHandler:        promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		IngestRateLimit:    cfg.IngestRateLimit,
		IngestBurst:        cfg.IngestRateBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
