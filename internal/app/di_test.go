package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/secretvault/internal/config"
	cryptoDomain "github.com/allisson/secretvault/internal/crypto/domain"
	"github.com/allisson/secretvault/internal/metrics"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:                         "info",
		ServerHost:                       "localhost",
		ServerPort:                       0,
		DefaultAlgorithm:                 "chacha20-poly1305",
		DefaultProfile:                   "fast",
		MaxConcurrentOps:                 4,
		FileOpsBreakerFailureThreshold:   3,
		FileOpsBreakerOpenTimeout:        time.Second,
		CryptoOpsBreakerFailureThreshold: 5,
		CryptoOpsBreakerOpenTimeout:      time.Second,
		BreakerHalfOpenMaxProbes:         1,
		RetryMaxAttempts:                 3,
		RetryInitialInterval:             10 * time.Millisecond,
		RetryMaxInterval:                 100 * time.Millisecond,
		DegradedModeAllowed:              true,
		MetricsEnabled:                   false,
		MetricsNamespace:                 "secretvault_test",
	}
}

func TestNewContainer(t *testing.T) {
	cfg := testConfig()
	container := NewContainer(cfg)

	assert.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

func TestContainer_Logger(t *testing.T) {
	container := NewContainer(testConfig())

	logger := container.Logger()
	require.NotNil(t, logger)

	assert.Same(t, logger, container.Logger())
}

func TestContainer_BusinessMetrics_NoOpWhenDisabled(t *testing.T) {
	container := NewContainer(testConfig())

	bm, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.IsType(t, &metrics.NoOpBusinessMetrics{}, bm)
}

func TestContainer_ResilienceRegistry(t *testing.T) {
	container := NewContainer(testConfig())

	registry, err := container.ResilienceRegistry()
	require.NoError(t, err)
	require.NotNil(t, registry)

	registry2, err := container.ResilienceRegistry()
	require.NoError(t, err)
	assert.Same(t, registry, registry2)
}

func TestContainer_CryptoOrchestrator(t *testing.T) {
	container := NewContainer(testConfig())

	orchestrator, err := container.CryptoOrchestrator()
	require.NoError(t, err)
	require.NotNil(t, orchestrator)

	secret, err := orchestrator.EncryptBytes([]byte("payload"), []byte("password"), "", "", cryptoDomain.Metadata{})
	require.NoError(t, err)

	plaintext, err := orchestrator.DecryptBytes(*secret, []byte("password"))
	require.NoError(t, err)
	defer plaintext.Release()
	assert.Equal(t, []byte("payload"), plaintext.Bytes())
}

func TestContainer_Detector(t *testing.T) {
	container := NewContainer(testConfig())

	detector, err := container.Detector()
	require.NoError(t, err)
	assert.NotNil(t, detector)

	detector2, err := container.Detector()
	require.NoError(t, err)
	assert.Same(t, detector, detector2)
}

func TestContainer_MonitoringServer(t *testing.T) {
	container := NewContainer(testConfig())

	server, err := container.MonitoringServer()
	require.NoError(t, err)
	assert.NotNil(t, server)
	assert.NotNil(t, server.GetHandler())
}

func TestContainer_Shutdown(t *testing.T) {
	container := NewContainer(testConfig())

	_, err := container.MonitoringServer()
	require.NoError(t, err)

	err = container.Shutdown(context.Background())
	assert.NoError(t, err)
}
