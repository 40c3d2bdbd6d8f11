package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaintextSecret(t *testing.T) {
	t.Run("Bytes returns the owned buffer", func(t *testing.T) {
		p := NewPlaintextSecret([]byte("top secret"))
		assert.Equal(t, []byte("top secret"), p.Bytes())
		assert.Equal(t, 10, p.Len())
	})

	t.Run("String decodes valid UTF-8", func(t *testing.T) {
		p := NewPlaintextSecret([]byte("hello world"))
		s, err := p.String()
		assert.NoError(t, err)
		assert.Equal(t, "hello world", s)
	})

	t.Run("String rejects invalid UTF-8", func(t *testing.T) {
		p := NewPlaintextSecret([]byte{0xff, 0xfe, 0xfd})
		_, err := p.String()
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})

	t.Run("Release zeroizes the buffer and Bytes returns nil afterward", func(t *testing.T) {
		buf := []byte("sensitive")
		p := NewPlaintextSecret(buf)
		p.Release()
		assert.Nil(t, p.Bytes())
		for _, b := range buf {
			assert.Equal(t, byte(0), b)
		}
	})

	t.Run("Release is safe to call more than once", func(t *testing.T) {
		p := NewPlaintextSecret([]byte("data"))
		assert.NotPanics(t, func() {
			p.Release()
			p.Release()
		})
	})
}
