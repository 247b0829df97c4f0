package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRevokeTokenInMemory(t *testing.T) {
	token := "some.jwt.token"
	assert.False(t, IsTokenRevoked(token))

	RevokeToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenRevoked(token))
}

func TestRevokeTokenAlreadyExpired(t *testing.T) {
	token := "expired.jwt.token"
	RevokeToken(token, time.Now().Add(-time.Minute))
	assert.False(t, IsTokenRevoked(token), "expired tokens need no revocation entry")
}

func TestRevocationLapsesWithExpiry(t *testing.T) {
	token := "short.jwt.token"
	RevokeToken(token, time.Now().Add(30*time.Millisecond))
	assert.True(t, IsTokenRevoked(token))

	time.Sleep(50 * time.Millisecond)
	assert.False(t, IsTokenRevoked(token))
}

func TestSanitizeStripsMarkup(t *testing.T) {
	assert.Equal(t, "hello", Sanitize("<script>alert(1)</script>hello"))
	assert.Equal(t, "Morning run", Sanitize("Morning run"))
}
