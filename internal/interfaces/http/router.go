// Package http assembles the gin route tree and the HTTP server around it.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/risknet/internal/interfaces/http/handlers"
	"github.com/turtacn/risknet/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and cross-cutting dependencies of
// the route tree. Nil optional fields disable the corresponding piece.
type RouterConfig struct {
	Assessment *handlers.AssessmentHandler
	Health     *handlers.HealthHandler

	RateLimiter *middleware.TokenBucketLimiter
	RateLimit   middleware.RateLimitConfig
	CORS        *middleware.CORSConfig

	Logger  logging.Logger
	Metrics *prometheus.AppMetrics

	// MetricsHandler serves /metrics; typically the collector's scrape
	// handler.
	MetricsHandler gin.HandlerFunc
}

// NewRouter builds the engine: recovery, request logging, CORS, rate
// limiting, the probe endpoints, and the versioned API group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger, cfg.Metrics))

	cors := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		cors = *cfg.CORS
	}
	r.Use(middleware.CORS(cors))

	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Liveness)
		r.GET("/readyz", cfg.Health.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", cfg.MetricsHandler)
	}

	api := r.Group("/api/v1")
	if cfg.Assessment != nil {
		api.POST("/assess", cfg.Assessment.Assess)
		api.GET("/assess/recent", cfg.Assessment.Recent)
		api.GET("/statistics", cfg.Assessment.Statistics)
		api.POST("/fast-mode", cfg.Assessment.FastMode)
	}

	return r
}
