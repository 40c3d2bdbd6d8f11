package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/secretvault/internal/crypto/domain"
)

func TestArgon2idKDF_Derive(t *testing.T) {
	kdf := NewArgon2idKDF()
	salt := make([]byte, saltSize)
	for i := range salt {
		salt[i] = byte(i)
	}

	t.Run("derives deterministic key for same inputs", func(t *testing.T) {
		params := cryptoDomain.ProfileFast.Params()

		key1, err := kdf.Derive([]byte("correct horse battery staple"), salt, params)
		require.NoError(t, err)

		key2, err := kdf.Derive([]byte("correct horse battery staple"), salt, params)
		require.NoError(t, err)

		assert.Equal(t, key1, key2)
		assert.Len(t, key1, int(params.OutputLength))
	})

	t.Run("different passwords derive different keys", func(t *testing.T) {
		params := cryptoDomain.ProfileFast.Params()

		key1, err := kdf.Derive([]byte("password-one"), salt, params)
		require.NoError(t, err)

		key2, err := kdf.Derive([]byte("password-two"), salt, params)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("different salts derive different keys", func(t *testing.T) {
		params := cryptoDomain.ProfileFast.Params()
		otherSalt := make([]byte, saltSize)
		for i := range otherSalt {
			otherSalt[i] = byte(saltSize - i)
		}

		key1, err := kdf.Derive([]byte("same password"), salt, params)
		require.NoError(t, err)

		key2, err := kdf.Derive([]byte("same password"), otherSalt, params)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("rejects wrong salt size", func(t *testing.T) {
		params := cryptoDomain.ProfileFast.Params()
		_, err := kdf.Derive([]byte("password"), []byte("short"), params)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidSaltSize)
	})

	t.Run("rejects params below the memory floor", func(t *testing.T) {
		params := cryptoDomain.KDFParams{MemoryKiB: 1, Time: 1, Parallelism: 1, OutputLength: 32}
		_, err := kdf.Derive([]byte("password"), salt, params)
		assert.ErrorIs(t, err, cryptoDomain.ErrKdfParamsOutOfRange)
	})

	t.Run("rejects zero time parameter", func(t *testing.T) {
		params := cryptoDomain.KDFParams{MemoryKiB: cryptoDomain.MinMemoryKiB, Time: 0, Parallelism: 1, OutputLength: 32}
		_, err := kdf.Derive([]byte("password"), salt, params)
		assert.ErrorIs(t, err, cryptoDomain.ErrKdfParamsOutOfRange)
	})

	t.Run("all profiles derive without error", func(t *testing.T) {
		for _, p := range []cryptoDomain.Profile{
			cryptoDomain.ProfileFast,
			cryptoDomain.ProfileBalanced,
			cryptoDomain.ProfileSecure,
			cryptoDomain.ProfileParanoid,
		} {
			key, err := kdf.Derive([]byte("password"), salt, p.Params())
			require.NoError(t, err)
			assert.Len(t, key, 32)
		}
	})
}
