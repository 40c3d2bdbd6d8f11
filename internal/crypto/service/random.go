package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/secretvault/internal/crypto/domain"
)

// SecureRandomService implements SecureRandom using crypto/rand.
type SecureRandomService struct{}

// NewSecureRandom creates a new SecureRandomService.
func NewSecureRandom() *SecureRandomService {
	return &SecureRandomService{}
}

// Bytes returns n cryptographically secure random bytes.
func (s *SecureRandomService) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrRandomUnavailable, err)
	}
	return buf, nil
}
