package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken("secret", userID, "admin", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	gotID, role, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "admin", role)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "customer", time.Hour)
	require.NoError(t, err)

	_, _, err = ParseToken("other-secret", token)
	require.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "customer", -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken("secret", token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseToken_Garbage(t *testing.T) {
	_, _, err := ParseToken("secret", "not-a-token")
	require.Error(t, err)
}
