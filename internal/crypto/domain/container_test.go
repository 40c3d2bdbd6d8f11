package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContainer() EncryptedSecret {
	return EncryptedSecret{
		Algorithm: ChaCha20,
		Params:    ProfileBalanced.Params(),
		Salt:      []byte("0123456789abcdef"),
		Nonce:     []byte("abcdefghijkl"),
		AAD:       []byte("context"),
		Ciphertext: []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03},
		Metadata: Metadata{
			SecretType: SecretTypeEnvAssignment,
			Source:     ".env",
			CreatedAt:  1700000000,
		},
	}
}

func TestEncryptedSecret_JSONRoundTrip(t *testing.T) {
	original := sampleContainer()

	data, err := original.MarshalJSON()
	require.NoError(t, err)

	var decoded EncryptedSecret
	err = decoded.UnmarshalJSON(data)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestEncryptedSecret_JSONRoundTrip_NoAAD(t *testing.T) {
	original := sampleContainer()
	original.AAD = nil

	data, err := original.MarshalJSON()
	require.NoError(t, err)

	var decoded EncryptedSecret
	err = decoded.UnmarshalJSON(data)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestEncryptedSecret_BinaryRoundTrip(t *testing.T) {
	original := sampleContainer()

	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded EncryptedSecret
	err = decoded.UnmarshalBinary(data)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestEncryptedSecret_BinaryRoundTrip_NoAAD(t *testing.T) {
	original := sampleContainer()
	original.AAD = nil

	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded EncryptedSecret
	err = decoded.UnmarshalBinary(data)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestEncryptedSecret_UnmarshalBinary_RejectsTruncated(t *testing.T) {
	original := sampleContainer()
	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded EncryptedSecret
	err = decoded.UnmarshalBinary(data[:len(data)-5])
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestEncryptedSecret_UnmarshalBinary_RejectsTrailingBytes(t *testing.T) {
	original := sampleContainer()
	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded EncryptedSecret
	err = decoded.UnmarshalBinary(append(data, 0xff))
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestEncryptedSecret_UnmarshalJSON_RejectsGarbage(t *testing.T) {
	var decoded EncryptedSecret
	err := decoded.UnmarshalJSON([]byte("not json"))
	assert.ErrorIs(t, err, ErrSerialization)
}
