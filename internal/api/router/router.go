package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/novavoice/nova-voice/internal/assessment"
	httpmiddleware "github.com/novavoice/nova-voice/internal/http/middleware"
	"github.com/novavoice/nova-voice/internal/leads"
	"github.com/novavoice/nova-voice/internal/reports"
	"github.com/novavoice/nova-voice/internal/site"
	"github.com/novavoice/nova-voice/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	SiteHandler        *site.Handler
	AssessmentHandler  *assessment.Handler
	LeadsHandler       *leads.Handler
	ReportsHandler     *reports.Handler
	Health             *HealthHandler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// SubmitLimiter throttles the POST endpoints that write data. Optional.
	SubmitLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	health := cfg.Health
	if health == nil {
		health = NewHealthHandler()
	}
	r.Get("/health", health.ServeHTTP)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	throttle := func(h http.HandlerFunc) http.Handler {
		if cfg.SubmitLimiter == nil {
			return h
		}
		return httpmiddleware.RateLimit(cfg.SubmitLimiter)(h)
	}

	if cfg.SiteHandler != nil {
		r.Route("/api/site", func(sr chi.Router) {
			sr.Get("/content", cfg.SiteHandler.GetContent)
			sr.Get("/pricing", cfg.SiteHandler.GetPricing)
			sr.Get("/widget", cfg.SiteHandler.GetWidget)
		})
	}

	if h := cfg.AssessmentHandler; h != nil {
		r.Route("/api/assessments", func(a chi.Router) {
			a.Method(http.MethodPost, "/", throttle(h.Submit))
			a.Post("/projection", h.Project)
			a.Method(http.MethodPost, "/sessions", throttle(h.StartSession))
			a.Route("/sessions/{id}", func(s chi.Router) {
				s.Get("/", h.GetSession)
				s.Patch("/fields", h.UpdateFields)
				s.Post("/advance", h.Advance)
				s.Post("/retreat", h.Retreat)
				s.Put("/miss-rate", h.SetMissRate)
				s.Post("/restart", h.Restart)
				s.Post("/start", h.Begin)
			})
		})
	}

	if cfg.LeadsHandler != nil {
		r.Method(http.MethodPost, "/api/strategy-calls", throttle(cfg.LeadsHandler.CreateStrategyCall))
	}

	// Admin routes stay unmounted until a signing secret is configured.
	if cfg.ReportsHandler != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/assessments/export.xlsx", cfg.ReportsHandler.Export)
			admin.Post("/assessments/export/archive", cfg.ReportsHandler.Archive)
		})
	}

	return r
}
