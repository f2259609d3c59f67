package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	for _, token := range []string{
		"AQV8pX-token",
		"",
		"ünïcødé token with spaces",
		string(make([]byte, 4096)),
	} {
		blob, err := codec.Encrypt(token)
		require.NoError(t, err)
		assert.Equal(t, byte(blobVersion), blob[0])

		got, err := codec.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, token, got)
	}
}

func TestTokenCodec_NonceIsFresh(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	a, _ := codec.Encrypt("same")
	b, _ := codec.Encrypt("same")
	assert.NotEqual(t, a, b)
}

func TestTokenCodec_WrongKey(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)
	other, err := NewTokenCodec("a-completely-different-secret")
	require.NoError(t, err)

	blob, err := codec.Encrypt("tok")
	require.NoError(t, err)

	_, err = other.Decrypt(blob)
	assert.ErrorIs(t, err, domain.ErrDecryption)
}

func TestTokenCodec_CorruptBlob(t *testing.T) {
	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	blob, err := codec.Encrypt("tok")
	require.NoError(t, err)

	tampered := append([]byte(nil), blob...)
	tampered[len(tampered)-1] ^= 0xff

	badVersion := append([]byte(nil), blob...)
	badVersion[0] = 0x02

	tests := map[string][]byte{
		"empty":       nil,
		"too short":   blob[:5],
		"tampered":    tampered,
		"bad version": badVersion,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decrypt(in)
			assert.ErrorIs(t, err, domain.ErrDecryption)
		})
	}
}

func TestNewTokenCodec_WeakSecret(t *testing.T) {
	_, err := NewTokenCodec("short")
	assert.ErrorIs(t, err, ErrWeakSecret)
}
