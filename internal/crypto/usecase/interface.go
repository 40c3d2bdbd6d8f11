package usecase

import (
	"context"

	cryptoService "github.com/allisson/secretvault/internal/crypto/service"
	"github.com/allisson/secretvault/internal/resilience"
)

// AEADManager is satisfied by cryptoService.AEADManagerService.
type AEADManager = cryptoService.AEADManager

// AEAD is satisfied by the ciphers cryptoService.AEADManagerService builds.
type AEAD = cryptoService.AEAD

// KDF is satisfied by cryptoService.Argon2idKDF.
type KDF = cryptoService.KDF

// SecureRandom is satisfied by cryptoService.SecureRandomService.
type SecureRandom = cryptoService.SecureRandom

// Breaker gates a call behind failure-rate tracking. Satisfied by
// *resilience.Breaker.
type Breaker interface {
	Call(fn func() error) error
}

// RetryPolicy retries a call under a bounded-attempt backoff schedule.
// Satisfied by *resilience.RetryPolicy.
type RetryPolicy interface {
	Do(ctx context.Context, fn func() error, classify ...resilience.Classifier) error
}
