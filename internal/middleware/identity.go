package middleware

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"steaklog/internal/store" // Persistent store
	"steaklog/internal/utils" // Session token helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Identity transport names
const (
	SessionCookie  = "user"      // Cookie carrying the session token
	IdentityHeader = "x-user-id" // Header fallback when the cookie is absent
	usernameKey    = "username"  // Gin context key of the resolved username
)

// ResolveIdentity reads the session token from the cookie, falling back to the header,
// and stores the username in the context when the token verifies and the user still exists.
// Requests without a valid identity continue unauthenticated.
func ResolveIdentity(s *store.Store, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(SessionCookie) // Prefer the session cookie
		if err != nil || tokenStr == "" {
			tokenStr = c.GetHeader(IdentityHeader) // Fall back to the header
		}
		if tokenStr == "" {
			c.Next() // No identity presented
			return
		}
		username, err := utils.ParseSessionToken(tokenStr, secret)
		if err != nil {
			logrus.WithField("error", err.Error()).Debug("Rejected session token")
			c.Next() // Forged or expired tokens resolve to nobody
			return
		}
		// The account must still exist, a reset invalidates every issued token
		if _, err := s.GetUser(c.Request.Context(), username); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.Next()
				return
			}
			logrus.WithFields(logrus.Fields{
				"username": username,    // Claimed identity
				"error":    err.Error(), // Error message
			}).Error("Failed to resolve identity")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve identity", "detail": err.Error()})
			return
		}
		c.Set(usernameKey, username) // Store username in context
		c.Next()
	}
}

// RequireIdentity aborts with 401 unless ResolveIdentity resolved a username
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Username(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// Username returns the resolved username of the request, if any
func Username(c *gin.Context) (string, bool) {
	v, exists := c.Get(usernameKey)
	if !exists {
		return "", false
	}
	username, ok := v.(string)
	return username, ok && username != ""
}
