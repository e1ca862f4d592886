package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseSessionToken(t *testing.T) {
	tok, exp, err := GenerateSessionToken("alice", "secret", time.Hour)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	username, err := ParseSessionToken(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	tok, _, err := GenerateSessionToken("alice", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken(tok, "other")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestParseSessionToken_Expired(t *testing.T) {
	tok, _, err := GenerateSessionToken("alice", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(tok, "secret")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestParseSessionToken_PlainUsernameRejected(t *testing.T) {
	_, err := ParseSessionToken("alice", "secret")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestParseSessionToken_MissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseSessionToken(tok, "secret")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
