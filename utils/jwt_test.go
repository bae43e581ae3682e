package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("test-secret", "api-client", time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken("test-secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "api-client", claims.Client)
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := GenerateToken("test-secret", "api-client", time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", tok)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	tok, err := GenerateToken("test-secret", "api-client", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("test-secret", tok)
	assert.Error(t, err)
}

func TestAPIKeyHashCheck(t *testing.T) {
	hash, err := HashAPIKey("sk-proof-123")
	require.NoError(t, err)
	assert.True(t, CheckAPIKey(hash, "sk-proof-123"))
	assert.False(t, CheckAPIKey(hash, "sk-proof-124"))
}
