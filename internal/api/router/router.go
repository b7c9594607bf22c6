package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vitalink/vitalink-api/internal/auth"
	"github.com/vitalink/vitalink-api/internal/devices"
	httpmiddleware "github.com/vitalink/vitalink-api/internal/http/middleware"
	"github.com/vitalink/vitalink-api/internal/issues"
	"github.com/vitalink/vitalink-api/internal/metrics"
	"github.com/vitalink/vitalink-api/internal/prediction"
	"github.com/vitalink/vitalink-api/internal/users"
	"github.com/vitalink/vitalink-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger            *logging.Logger
	UsersHandler      *users.Handler
	AuthHandler       *auth.Handler
	DevicesHandler    *devices.Handler
	MetricsHandler    *metrics.Handler
	PredictionHandler *prediction.Handler
	IssuesHandler     *issues.Handler

	TokenManager   *auth.TokenManager
	Blacklist      *auth.Blacklist
	Accounts       auth.AccountSource
	DeviceResolver httpmiddleware.DeviceResolver

	PromHandler        http.Handler
	CORSAllowedOrigins []string

	// Ingest rate limiting (requests/sec and burst per client IP).
	IngestRateLimit float64
	IngestBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	requireToken := httpmiddleware.TokenAuth(cfg.TokenManager, cfg.Blacklist, cfg.Accounts, cfg.Logger)
	ingestAuth := httpmiddleware.IngestAuth(cfg.DeviceResolver, cfg.TokenManager, cfg.Blacklist, cfg.Logger)

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.PromHandler != nil {
			public.Handle("/metrics", cfg.PromHandler)
		}

		public.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.UsersHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/verify-email", cfg.UsersHandler.VerifyEmail)
			r.Post("/resend-code", cfg.UsersHandler.ResendCode)
			r.Post("/forgot-password", cfg.UsersHandler.ForgotPassword)
			r.Post("/reset-password", cfg.UsersHandler.ResetPassword)
		})

		// Wearables push here with their device API key, so the route sits
		// outside the user-token group. Rate limited per client IP.
		ingest := public.With(ingestAuth)
		if cfg.IngestRateLimit > 0 {
			ingest = ingest.With(httpmiddleware.RateLimit(cfg.IngestRateLimit, cfg.IngestBurst))
		}
		ingest.Post("/metrics/batch", cfg.MetricsHandler.CreateBatch)
	})

	// Authenticated endpoints
	r.Group(func(authed chi.Router) {
		authed.Use(requireToken)

		authed.Get("/auth/me", cfg.AuthHandler.Me)
		authed.Post("/auth/logout", cfg.AuthHandler.Logout)

		authed.Route("/devices", func(r chi.Router) {
			r.Post("/", cfg.DevicesHandler.Register)
			r.Get("/", cfg.DevicesHandler.List)
			r.Delete("/{deviceID}", cfg.DevicesHandler.Deactivate)
		})

		authed.Route("/users/{userID}/metrics", func(r chi.Router) {
			r.Get("/summary", cfg.MetricsHandler.GetSummary)
			r.Get("/data", cfg.MetricsHandler.GetData)
		})

		authed.Post("/predictions/health", cfg.PredictionHandler.Predict)

		authed.Route("/issues", func(r chi.Router) {
			r.Post("/", cfg.IssuesHandler.Create)
			r.Get("/", cfg.IssuesHandler.List)
			r.Get("/{issueID}", cfg.IssuesHandler.Get)
			r.Put("/{issueID}", cfg.IssuesHandler.Update)
			r.Delete("/{issueID}", cfg.IssuesHandler.Delete)
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
