// Package app provides the dependency injection container assembling the
// cryptographic core, the detection engine, the resilience layer, and the
// monitoring server from a single loaded configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/allisson/secretvault/internal/config"
	cryptoDomain "github.com/allisson/secretvault/internal/crypto/domain"
	cryptoService "github.com/allisson/secretvault/internal/crypto/service"
	cryptoUsecase "github.com/allisson/secretvault/internal/crypto/usecase"
	detectionDomain "github.com/allisson/secretvault/internal/detection/domain"
	detectionService "github.com/allisson/secretvault/internal/detection/service"
	detectionUsecase "github.com/allisson/secretvault/internal/detection/usecase"
	internalHTTP "github.com/allisson/secretvault/internal/http"
	"github.com/allisson/secretvault/internal/metrics"
	"github.com/allisson/secretvault/internal/resilience"
)

// Container holds all application dependencies and provides methods to
// access them. It follows the lazy initialization pattern - components are
// created on first access.
type Container struct {
	config *config.Config

	logger *slog.Logger

	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	resilienceRegistry *resilience.Registry
	retryPolicy        *resilience.RetryPolicy

	orchestrator *cryptoUsecase.Orchestrator
	detector     *detectionUsecase.Detector

	monitoringServer *internalHTTP.Server

	mu                     sync.Mutex
	loggerInit             sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	resilienceRegistryInit sync.Once
	retryPolicyInit        sync.Once
	orchestratorInit       sync.Once
	detectorInit           sync.Once
	monitoringServerInit   sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the
// provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance, created on first access
// based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the otel/Prometheus metrics provider, or nil if
// metrics are disabled in configuration.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business operation counters/histograms,
// falling back to a no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// ResilienceRegistry returns the health-aggregation registry backing the
// crypto orchestrator's breaker pipeline and the monitoring server's
// /healthz endpoint.
func (c *Container) ResilienceRegistry() (*resilience.Registry, error) {
	c.resilienceRegistryInit.Do(func() {
		probe := resilience.NewDiskSpaceProbe(".", 0.05)
		c.resilienceRegistry = resilience.NewRegistry(probe)
	})
	return c.resilienceRegistry, nil
}

// RetryPolicy returns the bounded-attempt exponential backoff policy the
// crypto orchestrator applies to its guarded file operations (crypto work
// itself is never retried).
func (c *Container) RetryPolicy() (*resilience.RetryPolicy, error) {
	c.retryPolicyInit.Do(func() {
		c.retryPolicy = resilience.NewRetryPolicy(resilience.RetryConfig{
			MaxAttempts:     c.config.RetryMaxAttempts,
			InitialInterval: c.config.RetryInitialInterval,
			MaxInterval:     c.config.RetryMaxInterval,
		})
	})
	return c.retryPolicy, nil
}

// CryptoOrchestrator returns the orchestrator composing the AEAD manager,
// KDF, secure random source, circuit breaker, and retry policy into the
// encrypt/decrypt/derive/verify/benchmark operations.
func (c *Container) CryptoOrchestrator() (*cryptoUsecase.Orchestrator, error) {
	var err error
	c.orchestratorInit.Do(func() {
		c.orchestrator, err = c.initOrchestrator()
		if err != nil {
			c.initErrors["orchestrator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orchestrator"]; exists {
		return nil, storedErr
	}
	return c.orchestrator, nil
}

// Detector returns the Secret Detection Engine's entry point, loading any
// project-level custom rules from .secretvault/rules.json if present.
func (c *Container) Detector() (*detectionUsecase.Detector, error) {
	var err error
	c.detectorInit.Do(func() {
		var customRules []detectionDomain.Rule
		customRules, err = detectionService.LoadRulesFile(filepath.Join(config.ProjectDir, "rules.json"))
		if err != nil {
			c.initErrors["detector"] = err
			return
		}
		var registry *resilience.Registry
		registry, err = c.ResilienceRegistry()
		if err != nil {
			c.initErrors["detector"] = err
			return
		}
		c.detector = detectionUsecase.NewDetector(customRules, registry)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["detector"]; exists {
		return nil, storedErr
	}
	return c.detector, nil
}

// MonitoringServer returns the thin /healthz + /metrics HTTP server.
func (c *Container) MonitoringServer() (*internalHTTP.Server, error) {
	var err error
	c.monitoringServerInit.Do(func() {
		c.monitoringServer, err = c.initMonitoringServer()
		if err != nil {
			c.initErrors["monitoringServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["monitoringServer"]; exists {
		return nil, storedErr
	}
	return c.monitoringServer, nil
}

// Shutdown performs cleanup of all initialized resources. It should be
// called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.monitoringServer != nil {
		if err := c.monitoringServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("monitoring server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}
	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

// initBusinessMetrics wires the business counters to the real meter
// provider when metrics are enabled, or a no-op implementation otherwise.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initOrchestrator creates the crypto orchestrator, registering its two
// standard breakers — file_ops and crypto_ops — with the resilience
// registry's health aggregation.
func (c *Container) initOrchestrator() (*cryptoUsecase.Orchestrator, error) {
	registry, err := c.ResilienceRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get resilience registry for orchestrator: %w", err)
	}

	fileBreaker := resilience.New(resilience.Config{
		Name:              "file_ops",
		FailureThreshold:  c.config.FileOpsBreakerFailureThreshold,
		OpenTimeout:       c.config.FileOpsBreakerOpenTimeout,
		HalfOpenMaxProbes: c.config.BreakerHalfOpenMaxProbes,
	})
	registry.RegisterBreaker(fileBreaker, resilience.FeatureFileOperations)

	cryptoBreaker := resilience.New(resilience.Config{
		Name:              "crypto_ops",
		FailureThreshold:  c.config.CryptoOpsBreakerFailureThreshold,
		OpenTimeout:       c.config.CryptoOpsBreakerOpenTimeout,
		HalfOpenMaxProbes: c.config.BreakerHalfOpenMaxProbes,
	})
	registry.RegisterBreaker(cryptoBreaker, resilience.FeatureEncryption)

	retry, err := c.RetryPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to get retry policy for orchestrator: %w", err)
	}

	algorithm := cryptoDomain.Algorithm(c.config.DefaultAlgorithm)
	profile := cryptoDomain.Profile(c.config.DefaultProfile)

	orchestrator := cryptoUsecase.New(
		cryptoService.NewAEADManager(),
		cryptoService.NewArgon2idKDF(),
		cryptoService.NewSecureRandom(),
		cryptoBreaker,
		fileBreaker,
		retry,
		registry,
		cryptoUsecase.Config{
			DefaultAlgorithm:  algorithm,
			DefaultProfile:    profile,
			BackupBeforeWrite: c.config.BackupBeforeWrite,
			MaxConcurrentOps:  c.config.MaxConcurrentOps,
		},
	)
	return orchestrator, nil
}

// initMonitoringServer creates the /healthz + /metrics server wired to the
// resilience registry and the metrics provider.
func (c *Container) initMonitoringServer() (*internalHTTP.Server, error) {
	registry, err := c.ResilienceRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get resilience registry for monitoring server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for monitoring server: %w", err)
	}

	server := internalHTTP.NewServer(c.config.ServerHost, c.config.ServerPort, c.Logger(), registry)
	server.SetupRouter(c.config, provider, c.config.MetricsNamespace)
	return server, nil
}
