package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	h, err := HashPassword("1111")
	require.NoError(t, err)

	assert.True(t, h.Verify("1111"))
	assert.False(t, h.Verify("2222"))
	assert.False(t, h.Verify(""))
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	h1, err := HashPassword("same")
	require.NoError(t, err)
	h2, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1.Salt, h2.Salt)
	assert.NotEqual(t, h1.Key, h2.Key)
}

func TestPasswordHash_EmptyNeverVerifies(t *testing.T) {
	var zero PasswordHash
	assert.False(t, zero.Verify("anything"))
}

func TestNormalize(t *testing.T) {
	// Full-width digits from an IME compose to ASCII under NFKD.
	assert.Equal(t, "0001", Normalize("０００１"))
	assert.Equal(t, "plain", Normalize("plain"))
}

func TestRandomChars(t *testing.T) {
	s, err := RandomChars(12)
	require.NoError(t, err)
	assert.Len(t, s, 12)
	assert.NotContains(t, s, "0")
	assert.NotContains(t, s, "1")
}
