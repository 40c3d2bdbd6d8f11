// Package domain defines the cryptographic domain models for password-based
// authenticated encryption: derived keys, encrypted secret containers, and
// owning plaintext buffers.
package domain

import (
	"github.com/allisson/secretvault/internal/errors"
)

// Cryptographic operation errors.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid (must be 32 bytes).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidSaltSize indicates the KDF salt is not the expected 16 bytes.
	ErrInvalidSaltSize = errors.Wrap(errors.ErrInvalidInput, "invalid salt size")

	// ErrInvalidNonceSize indicates the AEAD nonce is not the expected 12 bytes.
	ErrInvalidNonceSize = errors.Wrap(errors.ErrInvalidInput, "invalid nonce size")

	// ErrAuthenticationFailed indicates AEAD tag verification failed: wrong
	// password or tampered ciphertext. Deliberately opaque — callers must not
	// be able to distinguish a bad password from corrupted ciphertext.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrInvalidInput, "authentication failed")

	// ErrInvalidUTF8 indicates decrypted plaintext was requested as a string
	// but is not valid UTF-8.
	ErrInvalidUTF8 = errors.Wrap(errors.ErrInvalidInput, "plaintext is not valid utf-8")

	// ErrKdfParamsOutOfRange indicates a KDF parameter violates the configured floor.
	ErrKdfParamsOutOfRange = errors.Wrap(errors.ErrInvalidInput, "kdf parameters out of range")

	// ErrSerialization indicates a container failed to encode or decode.
	ErrSerialization = errors.Wrap(errors.ErrInvalidInput, "container serialization failed")

	// ErrRandomUnavailable indicates the secure random source failed to produce bytes.
	ErrRandomUnavailable = errors.New("secure random source unavailable")
)
