// Package service implements the cryptographic primitives of the core:
// AEAD ciphers, the Argon2id key derivation function, and the secure random
// source. Domain models and errors live in crypto/domain; this package is
// the stateless, thread-safe implementation layer the orchestrator composes.
//
// # Algorithm Selection
//
//   - Use AESGCM on servers and modern CPUs with AES-NI hardware acceleration
//   - Use ChaCha20 on mobile devices, embedded systems, or platforms without AES-NI
//   - Both provide equivalent 256-bit security when properly implemented; the
//     default throughout this package is ChaCha20-Poly1305
package service

import (
	cryptoDomain "github.com/allisson/secretvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
//
// Security requirements:
//   - Nonces must be unique for each encryption with the same key
//   - The same AAD used during encryption must be provided during decryption
//
// Implementations: AESGCMCipher, ChaCha20Poly1305Cipher.
type AEAD interface {
	// Encrypt encrypts plaintext with optional additional authenticated data (AAD).
	// A fresh nonce is generated for every call and returned alongside the ciphertext.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	//
	// On any failure — bad key, bad nonce, tampered ciphertext, wrong AAD —
	// this returns cryptoDomain.ErrAuthenticationFailed and nothing else, so
	// callers cannot distinguish the failure modes from the error alone.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length this cipher requires.
	NonceSize() int
}

// AEADManager is a factory for AEAD cipher instances keyed by algorithm.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	// The key must be exactly 32 bytes (256 bits) for both supported algorithms.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KDF derives a symmetric key from a password and salt under a parameter set.
type KDF interface {
	// Derive returns a key of params.OutputLength bytes. Returns
	// cryptoDomain.ErrKdfParamsOutOfRange if params violate the configured
	// floors, or cryptoDomain.ErrInvalidSaltSize if salt is not 16 bytes.
	Derive(password, salt []byte, params cryptoDomain.KDFParams) ([]byte, error)
}

// SecureRandom produces cryptographically secure random byte sequences.
type SecureRandom interface {
	// Bytes returns n cryptographically secure random bytes. Returns
	// cryptoDomain.ErrRandomUnavailable if the underlying source fails,
	// which is a hard error per spec — never silently degrades.
	Bytes(n int) ([]byte, error)
}
