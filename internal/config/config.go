// Package config provides application configuration management through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Monitoring server configuration (healthz + metrics only, see internal/http)
	ServerHost string
	ServerPort int

	// Logging
	LogLevel string

	// Cryptographic Core defaults
	DefaultAlgorithm string
	DefaultProfile   string

	BackupBeforeWrite bool

	// Secret Detection Engine
	ScanWorkers          int
	ScanMaxFileSizeBytes int64
	ScanConfidenceFloor  float64
	EntropyThreshold     float64
	EntropyWindowSize    int
	IgnoreFileName       string

	// Resilience & Concurrency
	MaxConcurrentOps                 int
	FileOpsBreakerFailureThreshold   int
	FileOpsBreakerOpenTimeout        time.Duration
	CryptoOpsBreakerFailureThreshold int
	CryptoOpsBreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxProbes         int
	RetryMaxAttempts                 int
	RetryInitialInterval             time.Duration
	RetryMaxInterval                 time.Duration
	DegradedModeAllowed              bool

	// Rate limiting (loaded from the environment; the monitoring server does not apply it)
	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	// CORS (monitoring server)
	CORSEnabled      bool
	CORSAllowOrigins string

	// Metrics
	MetricsEnabled   bool
	MetricsNamespace string
	MetricsPort      int
}

// Load loads configuration from environment variables.
// It first attempts to load a .env file by searching recursively from the current directory
// up to the root directory. If no .env file is found, it continues with existing environment variables.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		LogLevel: env.GetString("LOG_LEVEL", "info"),

		DefaultAlgorithm: env.GetString("DEFAULT_ALGORITHM", "chacha20-poly1305"),
		DefaultProfile:   env.GetString("DEFAULT_PROFILE", "balanced"),

		BackupBeforeWrite: env.GetBool("BACKUP_BEFORE_WRITE", true),

		ScanWorkers:          env.GetInt("SCAN_WORKERS", 8),
		ScanMaxFileSizeBytes: int64(env.GetInt("SCAN_MAX_FILE_SIZE_BYTES", 10*1024*1024)),
		ScanConfidenceFloor:  env.GetFloat64("SCAN_CONFIDENCE_FLOOR", 0.5),
		EntropyThreshold:     env.GetFloat64("ENTROPY_THRESHOLD", 4.5),
		EntropyWindowSize:    env.GetInt("ENTROPY_WINDOW_SIZE", 20),
		IgnoreFileName:       env.GetString("IGNORE_FILE_NAME", ".gitignore"),

		MaxConcurrentOps:                 env.GetInt("MAX_CONCURRENT_OPS", 16),
		FileOpsBreakerFailureThreshold:   env.GetInt("FILE_OPS_BREAKER_FAILURE_THRESHOLD", 3),
		FileOpsBreakerOpenTimeout:        env.GetDuration("FILE_OPS_BREAKER_OPEN_TIMEOUT_SECONDS", 30, time.Second),
		CryptoOpsBreakerFailureThreshold: env.GetInt("CRYPTO_OPS_BREAKER_FAILURE_THRESHOLD", 5),
		CryptoOpsBreakerOpenTimeout:      env.GetDuration("CRYPTO_OPS_BREAKER_OPEN_TIMEOUT_SECONDS", 60, time.Second),
		BreakerHalfOpenMaxProbes:         env.GetInt("BREAKER_HALF_OPEN_MAX_PROBES", 1),
		RetryMaxAttempts:                 env.GetInt("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialInterval:             env.GetDuration("RETRY_INITIAL_INTERVAL_MILLISECONDS", 100, time.Millisecond),
		RetryMaxInterval:                 env.GetDuration("RETRY_MAX_INTERVAL_SECONDS", 5, time.Second),
		DegradedModeAllowed:              env.GetBool("DEGRADED_MODE_ALLOWED", true),

		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "secretvault"),
		MetricsPort:      env.GetInt("METRICS_PORT", 9090),
	}
}

// GetGinMode maps LogLevel to the gin engine mode: debug logging runs gin in
// debug mode, everything else runs release mode.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
