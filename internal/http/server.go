// Package http provides the tool's one HTTP surface: a thin monitoring
// server exposing /healthz and /metrics. It carries no authentication, no
// TLS, and no application routes — crypto and detection operations are
// driven entirely through cmd/secretvault, never over HTTP.
//
// This server uses Gin (github.com/gin-gonic/gin) for routing while
// keeping the application's existing patterns:
//   - Custom slog-based logging middleware (instead of Gin's default logger)
//   - Manual http.Server configuration for timeout and graceful shutdown control
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/allisson/secretvault/internal/config"
	"github.com/allisson/secretvault/internal/metrics"
	"github.com/allisson/secretvault/internal/resilience"
)

// Server is the thin monitoring HTTP server.
type Server struct {
	registry *resilience.Registry
	server   *http.Server
	logger   *slog.Logger
	router   *gin.Engine
	reqGroup singleflight.Group
}

// NewServer creates a new monitoring server. registry may be nil, in which
// case /healthz always reports healthy with no breaker/resource detail.
func NewServer(host string, port int, logger *slog.Logger, registry *resilience.Registry) *Server {
	return &Server{
		registry: registry,
		logger:   logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter configures the Gin router with the health and metrics routes.
// metricsProvider may be nil, in which case /metrics is not registered.
func (s *Server) SetupRouter(cfg *config.Config, metricsProvider *metrics.Provider, metricsNamespace string) {
	router := gin.New()

	router.Use(gin.Recovery())

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace))
		router.GET("/metrics", gin.WrapH(metricsProvider.Handler()))
	}

	router.GET("/healthz", s.healthzHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
// Returns nil if SetupRouter has not been called yet.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not initialized - call SetupRouter first")
	}

	s.server.Handler = s.router

	s.logger.Info("starting monitoring server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down monitoring server")
	return s.server.Shutdown(ctx)
}

type healthzResponse struct {
	StatusCode int
	Body       gin.H
}

// healthzHandler reports the aggregated breaker/feature/resource health
// snapshot from the resilience registry.
func (s *Server) healthzHandler(c *gin.Context) {
	v, _, _ := s.reqGroup.Do("healthz", func() (interface{}, error) {
		if s.registry == nil {
			return healthzResponse{StatusCode: http.StatusOK, Body: gin.H{"status": "healthy"}}, nil
		}

		status := s.registry.Health()
		httpStatus := http.StatusOK
		switch status.Level {
		case resilience.HealthCritical:
			httpStatus = http.StatusServiceUnavailable
		case resilience.HealthDegraded:
			httpStatus = http.StatusOK
		}

		breakers := make(gin.H, len(status.Breakers))
		for name, st := range status.Breakers {
			breakers[name] = st.String()
		}

		return healthzResponse{
			StatusCode: httpStatus,
			Body: gin.H{
				"status":   status.Level.String(),
				"breakers": breakers,
				"disabled": status.Disabled,
				"resources": gin.H{
					"healthy": status.Resources.Healthy,
				},
			},
		}, nil
	})

	res := v.(healthzResponse)
	c.JSON(res.StatusCode, res.Body)
}
