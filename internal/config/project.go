package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// ProjectDir is the directory `init` creates at the root of a scanned
// project and ProjectConfig reads configuration from.
const ProjectDir = ".secretvault"

// ProjectConfigFileName is the flat KEY=VALUE file living under ProjectDir,
// parsed with the same godotenv grammar as the process-level .env file.
const ProjectConfigFileName = "config.env"

// ProjectConfig holds the crypto and scan defaults a project checks into
// its working tree. The scan command takes its worker count, file-size cap,
// confidence floor and ignore-file name from it; the process environment
// variables handled by Config do not override these values.
type ProjectConfig struct {
	DefaultAlgorithm string
	DefaultProfile   string

	ScanWorkers          int
	ScanMaxFileSizeBytes int64
	ScanConfidenceFloor  float64
	EntropyThreshold     float64
	EntropyWindowSize    int
	IgnoreFileName       string
}

// DefaultProjectConfig mirrors Config's own defaults, so a project with no
// config file behaves identically to one with a file that just repeats
// the defaults.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		DefaultAlgorithm:     "chacha20-poly1305",
		DefaultProfile:       "balanced",
		ScanWorkers:          8,
		ScanMaxFileSizeBytes: 10 * 1024 * 1024,
		ScanConfidenceFloor:  0.5,
		EntropyThreshold:     4.5,
		EntropyWindowSize:    20,
		IgnoreFileName:       ".gitignore",
	}
}

// LoadProjectConfig reads <dir>/.secretvault/config.env, falling back to
// DefaultProjectConfig for any key it does not set. A missing file is not
// an error — a project that never ran `init` still gets sane defaults.
func LoadProjectConfig(dir string) (ProjectConfig, error) {
	cfg := DefaultProjectConfig()

	path := filepath.Join(dir, ProjectDir, ProjectConfigFileName)
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading project config %s: %w", path, err)
	}

	if v, ok := values["DEFAULT_ALGORITHM"]; ok {
		cfg.DefaultAlgorithm = v
	}
	if v, ok := values["DEFAULT_PROFILE"]; ok {
		cfg.DefaultProfile = v
	}
	if v, ok := values["SCAN_WORKERS"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ScanWorkers = n
		}
	}
	if v, ok := values["SCAN_MAX_FILE_SIZE_BYTES"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.ScanMaxFileSizeBytes = n
		}
	}
	if v, ok := values["SCAN_CONFIDENCE_FLOOR"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ScanConfidenceFloor = f
		}
	}
	if v, ok := values["ENTROPY_THRESHOLD"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.EntropyThreshold = f
		}
	}
	if v, ok := values["ENTROPY_WINDOW_SIZE"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EntropyWindowSize = n
		}
	}
	if v, ok := values["IGNORE_FILE_NAME"]; ok {
		cfg.IgnoreFileName = v
	}

	return cfg, nil
}

// WriteProjectConfig writes cfg to <dir>/.secretvault/config.env, creating
// the project directory if it does not exist. Used by the `init` command.
func WriteProjectConfig(dir string, cfg ProjectConfig) error {
	projectDir := filepath.Join(dir, ProjectDir)
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return fmt.Errorf("creating project directory %s: %w", projectDir, err)
	}

	content := fmt.Sprintf(
		"DEFAULT_ALGORITHM=%s\n"+
			"DEFAULT_PROFILE=%s\n"+
			"SCAN_WORKERS=%d\n"+
			"SCAN_MAX_FILE_SIZE_BYTES=%d\n"+
			"SCAN_CONFIDENCE_FLOOR=%s\n"+
			"ENTROPY_THRESHOLD=%s\n"+
			"ENTROPY_WINDOW_SIZE=%d\n"+
			"IGNORE_FILE_NAME=%s\n",
		cfg.DefaultAlgorithm,
		cfg.DefaultProfile,
		cfg.ScanWorkers,
		cfg.ScanMaxFileSizeBytes,
		strconv.FormatFloat(cfg.ScanConfidenceFloor, 'f', -1, 64),
		strconv.FormatFloat(cfg.EntropyThreshold, 'f', -1, 64),
		cfg.EntropyWindowSize,
		cfg.IgnoreFileName,
	)

	path := filepath.Join(projectDir, ProjectConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing project config %s: %w", path, err)
	}
	return nil
}
