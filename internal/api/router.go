// Package api provides the HTTP API for dvbroute.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/dvbroute/dvbroute/internal/api/handler"
	"github.com/dvbroute/dvbroute/internal/api/middleware"
	"github.com/dvbroute/dvbroute/internal/api/response"
	"github.com/dvbroute/dvbroute/internal/provider/resilience"
)

// TransitService is the transit functionality the API exposes.
type TransitService interface {
	handler.StopFinder
	handler.Planner
	handler.StopCache
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Transit     TransitService
	Registry    *resilience.Registry

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool

	// Compression overrides middleware.DefaultCompressionConfig (optional).
	Compression *middleware.CompressionConfig

	// PlanRateLimit and LookupRateLimit override the per-IP defaults (optional).
	PlanRateLimit   *middleware.RateLimitConfig
	LookupRateLimit *middleware.RateLimitConfig
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "dvbroute-api"
	}

	compression := middleware.DefaultCompressionConfig()
	if cfg.Compression != nil {
		compression = *cfg.Compression
	}
	planLimit := middleware.PlanRateLimit
	if cfg.PlanRateLimit != nil {
		planLimit = *cfg.PlanRateLimit
	}
	lookupLimit := middleware.LookupRateLimit
	if cfg.LookupRateLimit != nil {
		lookupLimit = *cfg.LookupRateLimit
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))                   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))                 // Panic recovery
	r.Use(chimiddleware.RealIP)                            // Real IP extraction
	r.Use(middleware.SecurityHeaders)                      // Security headers
	r.Use(middleware.RequireTLS(cfg.RequireTLS))           // TLS enforcement
	r.Use(middleware.Compression(compression, cfg.Logger)) // gzip
	r.Use(middleware.ContentTypeJSON)                      // JSON content type

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route matches "+r.URL.Path)
	})

	opsHandler := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.Registry,
		Cache:     cfg.Transit,
	})
	stopsHandler := handler.NewStopsHandler(cfg.Transit, cfg.Logger)
	routeHandler := handler.NewRouteHandler(cfg.Transit, cfg.Logger)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
			r.With(middleware.RateLimitByIP(lookupLimit)).Delete("/cache/stops", opsHandler.InvalidateStopCache)
		})

		r.With(middleware.RateLimitByIP(lookupLimit)).Get("/stops", stopsHandler.FindStops)
		r.With(middleware.RateLimitByIP(planLimit)).Get("/routes", routeHandler.PlanRoute)
	})

	return r
}
