package secrets_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfakit/pkg/secrets"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateMasterKey()
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"totp secret", "JBSWY3DPEHPK3PXP"},
		{"empty string", ""},
		{"unicode", "пароль-秘密-🔐"},
		{"long input", string(make([]byte, 4096))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			enc, err := secrets.EncryptString(key, tt.plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, tt.plaintext, enc)

			dec, err := secrets.DecryptString(key, enc)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, dec)
		})
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateMasterKey()
	require.NoError(t, err)

	a, err := secrets.EncryptString(key, "same input")
	require.NoError(t, err)
	b, err := secrets.EncryptString(key, "same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "fresh salt and IV must change the ciphertext")
}

func TestDecryptWrongKey(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateMasterKey()
	require.NoError(t, err)
	wrongKey, err := secrets.GenerateMasterKey()
	require.NoError(t, err)

	enc, err := secrets.EncryptString(key, "sensitive")
	require.NoError(t, err)

	_, err = secrets.DecryptString(wrongKey, enc)
	assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateMasterKey()
	require.NoError(t, err)

	enc, err := secrets.EncryptString(key, "sensitive")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)

	// Flipping any single byte, whether in the salt, the IV, the ciphertext,
	// or the tag, must make decryption fail.
	for _, pos := range []int{0, secrets.SaltSize, secrets.SaltSize + secrets.IVSize, len(raw) - 1} {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[pos] ^= 0x01

		_, err := secrets.DecryptString(key, base64.StdEncoding.EncodeToString(tampered))
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed, "byte %d", pos)
	}
}

func TestDecryptMalformedInput(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateMasterKey()
	require.NoError(t, err)

	t.Run("not base64", func(t *testing.T) {
		t.Parallel()
		_, err := secrets.DecryptString(key, "%%% not base64 %%%")
		assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)
	})

	t.Run("too short for header", func(t *testing.T) {
		t.Parallel()
		short := base64.StdEncoding.EncodeToString(make([]byte, secrets.SaltSize))
		_, err := secrets.DecryptString(key, short)
		assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)
	})

	t.Run("header only, no tag", func(t *testing.T) {
		t.Parallel()
		headerOnly := base64.StdEncoding.EncodeToString(make([]byte, secrets.SaltSize+secrets.IVSize))
		_, err := secrets.DecryptString(key, headerOnly)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})
}

func TestEmptyMasterKey(t *testing.T) {
	t.Parallel()

	_, err := secrets.EncryptString(nil, "x")
	assert.ErrorIs(t, err, secrets.ErrEmptyMasterKey)

	_, err = secrets.DecryptString([]byte{}, "x")
	assert.ErrorIs(t, err, secrets.ErrEmptyMasterKey)
}

func TestMasterKeyEncoding(t *testing.T) {
	t.Parallel()

	encoded, err := secrets.GenerateEncodedMasterKey()
	require.NoError(t, err)

	key, err := secrets.DecodeMasterKey(encoded)
	require.NoError(t, err)
	assert.Len(t, key, secrets.KeySize)

	_, err = secrets.DecodeMasterKey("")
	assert.ErrorIs(t, err, secrets.ErrEmptyMasterKey)

	_, err = secrets.DecodeMasterKey("!!!")
	assert.ErrorIs(t, err, secrets.ErrInvalidMasterKey)
}
