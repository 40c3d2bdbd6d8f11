// Package usecase orchestrates the cryptographic core into the operations a
// caller actually wants: derive a key from a password, seal/open a secret
// container, and drive the same pipeline across a file or a list of files.
// It is the layer that gates crypto work behind its own breaker (no
// retry — a bad password never gets luckier) and file I/O behind a
// separate breaker with retry for transient errors, plus a concurrency
// bound for batch operations.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	cryptoDomain "github.com/allisson/secretvault/internal/crypto/domain"
	"github.com/allisson/secretvault/internal/resilience"
)

// encryptedSuffix is appended to a file's name to derive its sealed-form
// path; DecryptFile strips it back off.
const encryptedSuffix = ".enc"

// decryptedSuffix is appended when a decrypt target has no encryptedSuffix
// to strip, so the recovered plaintext still lands at a distinct path.
const decryptedSuffix = ".decrypted"

// tmpSuffix names the scratch file atomicWrite stages its content in
// before renaming it over the target.
const tmpSuffix = ".tmp"

// backupSuffix completes the "<target>.<last-extension>.backup" naming
// BackupPath derives.
const backupSuffix = ".backup"

// Config controls default algorithm/profile choice and the file-operation
// safety net.
type Config struct {
	DefaultAlgorithm  cryptoDomain.Algorithm
	DefaultProfile    cryptoDomain.Profile
	BackupBeforeWrite bool
	MaxConcurrentOps  int
}

// Orchestrator composes the crypto primitives, the resilience layer, and
// file I/O into the encrypt/decrypt/derive/verify/benchmark operations.
// Crypto work and file I/O are guarded by two distinct breakers, matching
// the fact that they fail independently and recover on different
// timescales: a corrupt container or wrong password says nothing about
// whether the disk is healthy, and vice versa.
type Orchestrator struct {
	aead          AEADManager
	kdf           KDF
	random        SecureRandom
	cryptoBreaker Breaker
	fileBreaker   Breaker
	retry         RetryPolicy
	registry      *resilience.Registry
	limiter       *rate.Limiter
	cfg           Config
}

// New builds an Orchestrator. cryptoBreaker, fileBreaker, retry, and
// registry may all be nil, in which case calls run unguarded and every
// feature flag reads as enabled (used by tests exercising the crypto path
// in isolation).
func New(
	aead AEADManager,
	kdf KDF,
	random SecureRandom,
	cryptoBreaker Breaker,
	fileBreaker Breaker,
	retry RetryPolicy,
	registry *resilience.Registry,
	cfg Config,
) *Orchestrator {
	if cfg.DefaultAlgorithm == "" {
		cfg.DefaultAlgorithm = cryptoDomain.ChaCha20
	}
	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = cryptoDomain.ProfileBalanced
	}
	concurrency := cfg.MaxConcurrentOps
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		aead:          aead,
		kdf:           kdf,
		random:        random,
		cryptoBreaker: cryptoBreaker,
		fileBreaker:   fileBreaker,
		retry:         retry,
		registry:      registry,
		limiter:       rate.NewLimiter(rate.Limit(concurrency), concurrency),
		cfg:           cfg,
	}
}

// featureEnabled reports whether f is enabled, treating a nil registry
// (no degradation tracking configured) as everything enabled.
func (o *Orchestrator) featureEnabled(f resilience.Feature) bool {
	if o.registry == nil {
		return true
	}
	return o.registry.Enabled(f)
}

// GenerateKey returns n cryptographically secure random bytes, for callers
// that want raw key material instead of a password-derived key.
func (o *Orchestrator) GenerateKey(n int) ([]byte, error) {
	return o.random.Bytes(n)
}

// DeriveKey derives a key from password under profile, generating a fresh
// salt.
func (o *Orchestrator) DeriveKey(password []byte, profile cryptoDomain.Profile) (*cryptoDomain.DerivedKey, error) {
	params := profile.Params()
	salt, err := o.random.Bytes(16)
	if err != nil {
		return nil, err
	}
	key, err := o.kdf.Derive(password, salt, params)
	if err != nil {
		return nil, err
	}
	return &cryptoDomain.DerivedKey{Key: key, Salt: salt, Params: params}, nil
}

// Benchmark times a single derivation under profile, useful for a caller
// choosing a profile against its own latency budget.
func (o *Orchestrator) Benchmark(profile cryptoDomain.Profile) (time.Duration, error) {
	start := time.Now()
	dk, err := o.DeriveKey([]byte("benchmark-password"), profile)
	if err != nil {
		return 0, err
	}
	dk.Release()
	return time.Since(start), nil
}

// EncryptBytes seals plaintext under a key derived from password, using
// algorithm and profile (falling back to the orchestrator's configured
// defaults when either is empty).
func (o *Orchestrator) EncryptBytes(
	plaintext, password []byte,
	algorithm cryptoDomain.Algorithm,
	profile cryptoDomain.Profile,
	meta cryptoDomain.Metadata,
) (*cryptoDomain.EncryptedSecret, error) {
	if algorithm == "" {
		algorithm = o.cfg.DefaultAlgorithm
	}
	if profile == "" {
		profile = o.cfg.DefaultProfile
	}

	var secret *cryptoDomain.EncryptedSecret
	op := func() error {
		dk, err := o.DeriveKey(password, profile)
		if err != nil {
			return err
		}
		defer dk.Release()

		cipher, err := o.aead.CreateCipher(dk.Key, algorithm)
		if err != nil {
			return err
		}
		ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
		if err != nil {
			return err
		}

		if meta.CreatedAt == 0 {
			meta.CreatedAt = time.Now().Unix()
		}
		secret = &cryptoDomain.EncryptedSecret{
			Algorithm:  algorithm,
			Params:     dk.Params,
			Salt:       dk.Salt,
			Nonce:      nonce,
			Ciphertext: ciphertext,
			Metadata:   meta,
		}
		return nil
	}

	if err := o.guardedCrypto(op); err != nil {
		return nil, err
	}
	return secret, nil
}

// DecryptBytes opens secret with a key derived from password. A failed AEAD
// open — wrong password, tampered ciphertext, nonce or AAD — surfaces as
// cryptoDomain.ErrAuthenticationFailed, never a distinguishable cause. A
// container with an invalid salt size, out-of-range KDF parameters or an
// unsupported algorithm fails with that input error instead, and an open
// crypto breaker yields resilience.ErrResourceUnavailable.
func (o *Orchestrator) DecryptBytes(secret cryptoDomain.EncryptedSecret, password []byte) (*cryptoDomain.PlaintextSecret, error) {
	var plaintext *cryptoDomain.PlaintextSecret
	op := func() error {
		key, err := o.kdf.Derive(password, secret.Salt, secret.Params)
		if err != nil {
			return err
		}
		defer cryptoDomain.Zero(key)

		cipher, err := o.aead.CreateCipher(key, secret.Algorithm)
		if err != nil {
			return err
		}
		raw, err := cipher.Decrypt(secret.Ciphertext, secret.Nonce, secret.AAD)
		if err != nil {
			return err
		}
		plaintext = cryptoDomain.NewPlaintextSecret(raw)
		return nil
	}

	if err := o.guardedCrypto(op); err != nil {
		return nil, err
	}
	return plaintext, nil
}

// VerifyPassword reports whether password opens secret, without leaking the
// plaintext to the caller. It distinguishes "wrong password" (false, nil)
// from an operational failure (false, err).
func (o *Orchestrator) VerifyPassword(secret cryptoDomain.EncryptedSecret, password []byte) (bool, error) {
	plaintext, err := o.DecryptBytes(secret, password)
	if err != nil {
		if errors.Is(err, cryptoDomain.ErrAuthenticationFailed) {
			return false, nil
		}
		return false, err
	}
	plaintext.Release()
	return true, nil
}

// guardedCrypto runs op behind the crypto breaker only: a wrong password or
// a corrupt container is not a transient condition, so retrying it would
// just waste the breaker's failure budget on a call that can never
// succeed. See spec note on crypto_ops running without retry.
func (o *Orchestrator) guardedCrypto(op func() error) error {
	if o.cryptoBreaker == nil {
		return op()
	}
	err := o.cryptoBreaker.Call(op)
	if errors.Is(err, resilience.ErrBreakerOpen) {
		return resilience.ErrResourceUnavailable
	}
	return err
}

// transientIOError reports whether err is a file I/O failure worth
// retrying (contention, a momentarily full disk, an interrupted syscall)
// as opposed to one that will never succeed on retry (the path doesn't
// exist, or the caller lacks permission).
func transientIOError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrInvalid) {
		return false
	}
	return true
}

// guardedFileOp runs op behind the file_ops breaker with retry for
// transient I/O errors, per spec §4.5(3): file operations recover from
// blips that crypto operations never do, so unlike guardedCrypto this
// path retries before the breaker sees the outcome.
func (o *Orchestrator) guardedFileOp(ctx context.Context, op func() error) error {
	call := op
	if o.retry != nil {
		inner := call
		call = func() error { return o.retry.Do(ctx, inner, transientIOError) }
	}
	if o.fileBreaker == nil {
		return call()
	}
	err := o.fileBreaker.Call(call)
	if errors.Is(err, resilience.ErrBreakerOpen) {
		return resilience.ErrResourceUnavailable
	}
	return err
}

// EncryptFile reads path, seals its content under password, and atomically
// writes the result to its derived ".enc" path. If cfg.BackupBeforeWrite is
// set and the registry's backup feature is enabled, the original is
// additionally copied to its ".backup" path first.
// Returns the path written.
func (o *Orchestrator) EncryptFile(
	ctx context.Context,
	path string,
	password []byte,
	algorithm cryptoDomain.Algorithm,
	profile cryptoDomain.Profile,
) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var plaintext []byte
	err := o.guardedFileOp(ctx, func() error {
		var readErr error
		plaintext, readErr = os.ReadFile(path)
		return readErr
	})
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if o.cfg.BackupBeforeWrite && o.featureEnabled(resilience.FeatureBackup) {
		backupErr := o.guardedFileOp(ctx, func() error {
			return copyFile(path, BackupPath(path))
		})
		if backupErr != nil {
			return "", fmt.Errorf("backing up %s: %w", path, backupErr)
		}
	}

	meta := cryptoDomain.Metadata{SecretType: cryptoDomain.SecretTypeGeneric, Source: path, CreatedAt: time.Now().Unix()}
	secret, err := o.EncryptBytes(plaintext, password, algorithm, profile, meta)
	if err != nil {
		return "", err
	}

	data, err := secret.MarshalBinary()
	if err != nil {
		return "", err
	}

	outPath := EncryptedPath(path)
	if err := o.guardedFileOp(ctx, func() error { return atomicWrite(outPath, data, 0o600) }); err != nil {
		return "", err
	}
	return outPath, nil
}

// DecryptFile reads an ".enc" container at path, opens it with password,
// and atomically writes the recovered plaintext to its derived path.
// Returns the path written.
func (o *Orchestrator) DecryptFile(ctx context.Context, path string, password []byte) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var data []byte
	err := o.guardedFileOp(ctx, func() error {
		var readErr error
		data, readErr = os.ReadFile(path)
		return readErr
	})
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var secret cryptoDomain.EncryptedSecret
	if err := secret.UnmarshalBinary(data); err != nil {
		return "", err
	}

	plaintext, err := o.DecryptBytes(secret, password)
	if err != nil {
		return "", err
	}
	defer plaintext.Release()

	outPath := DecryptedPath(path)
	if err := o.guardedFileOp(ctx, func() error { return atomicWrite(outPath, plaintext.Bytes(), 0o600) }); err != nil {
		return "", err
	}
	return outPath, nil
}

// BatchEncrypt encrypts every path in paths under the same password,
// algorithm, and profile, one path after another; each call waits on the
// orchestrator's rate limiter, which admits cfg.MaxConcurrentOps calls per
// second with a burst of the same size. It does not stop at
// the first failure; every path is attempted and all errors are returned
// keyed by path.
func (o *Orchestrator) BatchEncrypt(
	ctx context.Context,
	paths []string,
	password []byte,
	algorithm cryptoDomain.Algorithm,
	profile cryptoDomain.Profile,
) (map[string]string, map[string]error) {
	outputs := make(map[string]string, len(paths))
	errs := make(map[string]error)
	for _, p := range paths {
		out, err := o.EncryptFile(ctx, p, password, algorithm, profile)
		if err != nil {
			errs[p] = err
			continue
		}
		outputs[p] = out
	}
	return outputs, errs
}

// EncryptedPath derives the sealed-form path for path: ".env" becomes
// ".env.enc", and so on for any extension.
func EncryptedPath(path string) string {
	return path + encryptedSuffix
}

// DecryptedPath derives the original path back from an ".enc" path. If
// path does not carry the suffix, decryptedSuffix is appended instead so
// the operation still produces a distinct output file.
func DecryptedPath(path string) string {
	if strings.HasSuffix(path, encryptedSuffix) {
		return strings.TrimSuffix(path, encryptedSuffix)
	}
	return path + decryptedSuffix
}

// BackupPath derives the pre-write backup path for path: "config.json"
// backs up to "config.json.json.backup", and an extension-less "noext" backs
// up to "noext.backup".
func BackupPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return path + backupSuffix
	}
	return path + "." + ext + backupSuffix
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}

// atomicWrite writes data to "<path>.tmp", fsyncs it, then renames it over
// path, so a crash mid-write never leaves a truncated file at path and a
// concurrent reader never observes a partial one. The temp name is
// deterministic rather than random: two concurrent writers targeting the
// same path share one temp file, and nothing here or in the orchestrator
// serializes them.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpPath := path + tmpSuffix
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
