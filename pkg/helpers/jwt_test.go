package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("unit-test-secret", 30*24*time.Hour)
	require.NoError(t, err)

	token, exp, err := issuer.Issue("id-123", "9999999999", "candidate")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// 30-day window, allow a little scheduling slack.
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), exp, 5*time.Second)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "id-123", claims.IdentityID)
	assert.Equal(t, "9999999999", claims.Mobile)
	assert.Equal(t, "candidate", claims.Role)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	a, err := NewTokenIssuer("secret-a", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenIssuer("secret-b", time.Hour)
	require.NoError(t, err)

	token, _, err := a.Issue("id-123", "9999999999", "candidate")
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer, err := NewTokenIssuer("unit-test-secret", -time.Minute)
	require.NoError(t, err)

	token, _, err := issuer.Issue("id-123", "9999999999", "candidate")
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	issuer, err := NewTokenIssuer("unit-test-secret", time.Hour)
	require.NoError(t, err)

	_, err = issuer.Parse("not-a-jwt")
	assert.Error(t, err)
}
