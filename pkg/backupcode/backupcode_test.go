package backupcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfakit/pkg/backupcode"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("format and uniqueness", func(t *testing.T) {
		t.Parallel()
		codes, err := backupcode.Generate(backupcode.DefaultCount)
		require.NoError(t, err)
		require.Len(t, codes, backupcode.DefaultCount)

		seen := make(map[string]struct{}, len(codes))
		for _, code := range codes {
			assert.Regexp(t, `^[A-Z2-9]{4}-[A-Z2-9]{4}$`, code)
			assert.NotContains(t, code, "0")
			assert.NotContains(t, code, "O")
			assert.NotContains(t, code, "1")
			assert.NotContains(t, code, "I")
			assert.NotContains(t, code, "L")
			seen[code] = struct{}{}
		}
		assert.Len(t, seen, len(codes), "codes must be unique")
	})

	t.Run("single code", func(t *testing.T) {
		t.Parallel()
		codes, err := backupcode.Generate(1)
		require.NoError(t, err)
		assert.Len(t, codes, 1)
	})

	t.Run("invalid count", func(t *testing.T) {
		t.Parallel()
		_, err := backupcode.Generate(0)
		assert.ErrorIs(t, err, backupcode.ErrInvalidCount)
		_, err = backupcode.Generate(-3)
		assert.ErrorIs(t, err, backupcode.ErrInvalidCount)
	})
}

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	codes, err := backupcode.Generate(1)
	require.NoError(t, err)
	code := codes[0]

	hash, err := backupcode.Hash(code)
	require.NoError(t, err)
	assert.NotEqual(t, code, hash)

	assert.True(t, backupcode.Verify(code, hash))
	assert.False(t, backupcode.Verify("AAAA-AAAA", hash))
	assert.False(t, backupcode.Verify(code, "not-a-bcrypt-hash"))
}

func TestVerifyToleratesInputVariants(t *testing.T) {
	t.Parallel()

	hash, err := backupcode.Hash("ABCD-EFGH")
	require.NoError(t, err)

	assert.True(t, backupcode.Verify("abcd-efgh", hash))
	assert.True(t, backupcode.Verify("  ABCD-EFGH  ", hash))
	assert.True(t, backupcode.Verify("ABCDEFGH", hash))
	assert.True(t, backupcode.Verify("abcd efgh", hash))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"abcd-efgh", "ABCD-EFGH"},
		{"ABCDEFGH", "ABCD-EFGH"},
		{" abcdefgh ", "ABCD-EFGH"},
		{"AB-CD", "ABCD"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, backupcode.Normalize(tt.in), "input %q", tt.in)
	}
}
