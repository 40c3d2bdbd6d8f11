package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomSecretType(t *testing.T) {
	t.Run("builds the custom: prefix", func(t *testing.T) {
		st := CustomSecretType("internal-api-token")
		assert.Equal(t, SecretType("custom:internal-api-token"), st)
		assert.True(t, st.IsCustom())
	})

	t.Run("built-in types are not custom", func(t *testing.T) {
		assert.False(t, SecretTypeAWSAccessKey.IsCustom())
		assert.False(t, SecretTypeGeneric.IsCustom())
	})
}
