package utils

import (
	"errors" // Error values
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// ErrInvalidSession is returned for session tokens that fail verification
var ErrInvalidSession = errors.New("invalid session token")

// GenerateSessionToken creates a signed session token whose subject is the username
func GenerateSessionToken(username, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl) // Token expires with the session cookie
	// Standard claims only, the username travels as the subject
	claims := jwt.RegisteredClaims{
		Subject:   username,                      // Session identity
		ExpiresAt: jwt.NewNumericDate(expiresAt), // Expiry
		IssuedAt:  jwt.NewNumericDate(now),       // Issued at current time
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	signed, err := token.SignedString([]byte(secret))          // Sign the token with the secret
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseSessionToken validates a session token and returns the username it carries
func ParseSessionToken(tokenStr, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	// Check for parsing errors
	if err != nil {
		return "", errors.Join(ErrInvalidSession, err)
	}
	// Validate token and the subject it carries
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
