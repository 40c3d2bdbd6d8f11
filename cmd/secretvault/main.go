// Package main provides the entry point for the secretvault CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/allisson/secretvault/internal/app"
	"github.com/allisson/secretvault/internal/config"
	cryptoDomain "github.com/allisson/secretvault/internal/crypto/domain"
	detectionDomain "github.com/allisson/secretvault/internal/detection/domain"
	detectionUsecase "github.com/allisson/secretvault/internal/detection/usecase"
	"github.com/allisson/secretvault/internal/resilience"
)

// closeContainer shuts down every resource the container lazily created and
// logs any failure rather than masking it behind the command's own error.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// refuseIfDegraded refuses to proceed when the resilience registry reports
// an unhealthy dependency and the operator has not opted into running in
// that degraded state via DegradedModeAllowed.
func refuseIfDegraded(container *app.Container) error {
	cfg := container.Config()
	if cfg.DegradedModeAllowed {
		return nil
	}

	registry, err := container.ResilienceRegistry()
	if err != nil {
		return fmt.Errorf("failed to check system health: %w", err)
	}

	status := registry.Health()
	if status.Level != resilience.HealthHealthy {
		return fmt.Errorf(
			"refusing to run: system is %s (breakers=%v, disabled=%v) and DEGRADED_MODE_ALLOWED is false",
			status.Level, status.Breakers, status.Disabled,
		)
	}
	return nil
}

// recordOperation runs fn and records its outcome and duration as a
// business metric, unless the degradation registry reports metrics
// disabled, in which case fn just runs unmeasured.
func recordOperation(ctx context.Context, container *app.Container, domainName, operation string, fn func() error) error {
	registry, err := container.ResilienceRegistry()
	if err != nil || !registry.Enabled(resilience.FeatureMetrics) {
		return fn()
	}

	businessMetrics, err := container.BusinessMetrics()
	if err != nil {
		return fn()
	}

	start := time.Now()
	opErr := fn()

	status := "success"
	if opErr != nil {
		status = "error"
	}
	businessMetrics.RecordOperation(ctx, domainName, operation, status)
	businessMetrics.RecordDuration(ctx, domainName, operation, time.Since(start), status)
	return opErr
}

func main() {
	cmd := &cli.Command{
		Name:    "secretvault",
		Usage:   "encrypt files, derive keys, and scan for leaked secrets",
		Version: "1.0.0",
		Commands: []*cli.Command{
			initCommand(),
			encryptCommand(),
			decryptCommand(),
			scanCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "create a .secretvault project directory with a default config file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Value: ".",
				Usage: "project root to initialize",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return runInit(cmd.String("dir"))
		},
	}
}

func runInit(dir string) error {
	if err := config.WriteProjectConfig(dir, config.DefaultProjectConfig()); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}
	fmt.Printf("initialized %s/%s/%s\n", dir, config.ProjectDir, config.ProjectConfigFileName)
	return nil
}

func encryptCommand() *cli.Command {
	return &cli.Command{
		Name:      "encrypt",
		Usage:     "encrypt a file, writing <path>.enc beside it",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			algorithmFlag(),
			profileFlag(),
			passwordEnvFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("encrypt requires a file path")
			}
			return runEncrypt(ctx, path, cmd.String("algorithm"), cmd.String("profile"), cmd.String("password-env"))
		},
	}
}

func runEncrypt(ctx context.Context, path, algorithm, profile, passwordEnv string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if err := refuseIfDegraded(container); err != nil {
		return err
	}

	orchestrator, err := container.CryptoOrchestrator()
	if err != nil {
		return fmt.Errorf("failed to initialize crypto orchestrator: %w", err)
	}

	password, err := readPassword(passwordEnv, true)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(password)

	var outPath string
	err = recordOperation(ctx, container, "crypto", "encrypt_file", func() error {
		var innerErr error
		outPath, innerErr = orchestrator.EncryptFile(ctx, path, password, cryptoDomain.Algorithm(algorithm), cryptoDomain.Profile(profile))
		return innerErr
	})
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", path, err)
	}

	logger.Info("encrypted file", slog.String("input", path), slog.String("output", outPath))
	fmt.Println(outPath)
	return nil
}

func decryptCommand() *cli.Command {
	return &cli.Command{
		Name:      "decrypt",
		Usage:     "decrypt a .enc file, writing its recovered plaintext",
		ArgsUsage: "<path.enc>",
		Flags: []cli.Flag{
			passwordEnvFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("decrypt requires a file path")
			}
			return runDecrypt(ctx, path, cmd.String("password-env"))
		},
	}
}

func runDecrypt(ctx context.Context, path, passwordEnv string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if err := refuseIfDegraded(container); err != nil {
		return err
	}

	orchestrator, err := container.CryptoOrchestrator()
	if err != nil {
		return fmt.Errorf("failed to initialize crypto orchestrator: %w", err)
	}

	password, err := readPassword(passwordEnv, false)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(password)

	var outPath string
	err = recordOperation(ctx, container, "crypto", "decrypt_file", func() error {
		var innerErr error
		outPath, innerErr = orchestrator.DecryptFile(ctx, path, password)
		return innerErr
	})
	if err != nil {
		if errors.Is(err, cryptoDomain.ErrAuthenticationFailed) {
			return fmt.Errorf("failed to decrypt %s: wrong password or corrupt container", path)
		}
		return fmt.Errorf("failed to decrypt %s: %w", path, err)
	}

	logger.Info("decrypted file", slog.String("input", path), slog.String("output", outPath))
	fmt.Println(outPath)
	return nil
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "scan a directory tree for leaked secrets",
		ArgsUsage: "<root>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Value: "json",
				Usage: "report format: json or csv",
			},
			&cli.Float64Flag{
				Name:  "confidence-floor",
				Usage: "minimum confidence to report (overrides project config)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root := cmd.Args().First()
			if root == "" {
				root = "."
			}
			return runScan(ctx, root, cmd.String("format"), cmd.Float64("confidence-floor"), cmd.IsSet("confidence-floor"))
		},
	}
}

func runScan(ctx context.Context, root, format string, confidenceFloor float64, confidenceFloorSet bool) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if err := refuseIfDegraded(container); err != nil {
		return err
	}

	projectCfg, err := config.LoadProjectConfig(root)
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}
	if !confidenceFloorSet {
		confidenceFloor = projectCfg.ScanConfidenceFloor
	}

	detector, err := container.Detector()
	if err != nil {
		return fmt.Errorf("failed to initialize detector: %w", err)
	}

	opts := detectionDomain.ScanOptions{
		RootPath:         root,
		Workers:          projectCfg.ScanWorkers,
		MaxFileSizeBytes: projectCfg.ScanMaxFileSizeBytes,
		ConfidenceFloor:  confidenceFloor,
		IgnoreFileName:   projectCfg.IgnoreFileName,
	}

	var report *detectionUsecase.Report
	err = recordOperation(ctx, container, "detection", "scan_directory", func() error {
		var innerErr error
		report, innerErr = detector.Scan(ctx, opts)
		return innerErr
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", root, err)
	}

	logger.Info("scan complete",
		slog.Int("files_scanned", report.FilesScanned),
		slog.Int("files_skipped", report.FilesSkipped),
		slog.Int("findings", len(report.Findings)),
	)

	switch format {
	case "csv":
		err = report.WriteCSV(os.Stdout)
	default:
		err = report.WriteJSON(os.Stdout)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if len(report.Findings) > 0 {
		os.Exit(1)
	}
	return nil
}

func algorithmFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "algorithm",
		Aliases: []string{"alg"},
		Usage:   "encryption algorithm: aes-gcm or chacha20-poly1305 (defaults to process config)",
	}
}

func profileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "profile",
		Usage: "KDF profile: fast, balanced, secure, or paranoid (defaults to process config)",
	}
}

func passwordEnvFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "password-env",
		Value: "SECRETVAULT_PASSWORD",
		Usage: "environment variable holding the password; prompted interactively if unset",
	}
}

// readPassword resolves the password from the named environment variable,
// falling back to an interactive terminal prompt. When confirm is set
// (encrypt), the prompt is asked twice and must match.
func readPassword(envVar string, confirm bool) ([]byte, error) {
	if v := os.Getenv(envVar); v != "" {
		return []byte(v), nil
	}

	fmt.Fprint(os.Stderr, "password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	if confirm {
		fmt.Fprint(os.Stderr, "confirm password: ")
		confirmation, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("failed to read password confirmation: %w", err)
		}
		defer cryptoDomain.Zero(confirmation)
		if string(password) != string(confirmation) {
			cryptoDomain.Zero(password)
			return nil, errors.New("passwords do not match")
		}
	}

	return password, nil
}
