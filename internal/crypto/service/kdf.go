package service

import (
	"golang.org/x/crypto/argon2"

	cryptoDomain "github.com/allisson/secretvault/internal/crypto/domain"
)

// saltSize is the required salt length in bytes for Derive.
const saltSize = 16

// Argon2idKDF implements KDF using Argon2id.
type Argon2idKDF struct{}

// NewArgon2idKDF creates a new Argon2id key derivation function.
func NewArgon2idKDF() *Argon2idKDF {
	return &Argon2idKDF{}
}

// Derive runs Argon2id over password and salt under params, rejecting
// params that fall below the configured floors before doing any work.
func (k *Argon2idKDF) Derive(password, salt []byte, params cryptoDomain.KDFParams) ([]byte, error) {
	if !params.Within() {
		return nil, cryptoDomain.ErrKdfParamsOutOfRange
	}
	if len(salt) != saltSize {
		return nil, cryptoDomain.ErrInvalidSaltSize
	}

	key := argon2.IDKey(password, salt, params.Time, params.MemoryKiB, params.Parallelism, params.OutputLength)
	return key, nil
}
