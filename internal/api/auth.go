package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"time"     // Time for logging

	"steaklog/internal/config"     // Application configuration
	"steaklog/internal/domain"     // Importing domain models
	"steaklog/internal/middleware" // Identity transport names
	"steaklog/internal/store"      // Persistent store
	"steaklog/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username"` // Username must be provided
	Password string `json:"password"` // Password must be provided
	Name     string `json:"name"`     // Optional display name
	Email    string `json:"email"`    // Optional email
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"` // Username must be provided
	Password string `json:"password"` // Password must be provided
}

// setSessionCookie issues the signed session cookie for username
func setSessionCookie(c *gin.Context, username string, cfg *config.Config) error {
	token, _, err := utils.GenerateSessionToken(username, cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err // Signing failed
	}
	c.SetSameSite(http.SameSiteLaxMode)
	// HttpOnly cookie, Secure only in production where TLS terminates in front of us
	c.SetCookie(middleware.SessionCookie, token, int(cfg.SessionTTL.Seconds()), "/", "", cfg.IsProd, true)
	return nil
}

// RegisterHandler creates a user and starts a session for it
func RegisterHandler(s *store.Store, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		// Validate username and password
		if req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing username or password"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password", "detail": err.Error()})
			return
		}
		user := domain.User{Username: req.Username, Password: string(hash), Name: req.Name, Email: req.Email}
		// Attempt to create the user, an existing account is never overwritten
		if err := s.InsertUser(c.Request.Context(), &user); err != nil {
			if errors.Is(err, store.ErrUserExists) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "user exists"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"username": req.Username, // Requested username
				"error":    err.Error(),  // Error message
			}).Error("Failed to register user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user", "detail": err.Error()})
			return
		}
		_ = utils.DeleteCache(c.Request.Context(), rdb, utils.UsersCacheKey) // Invalidate user list cache
		if err := setSessionCookie(c, user.Username, cfg); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session", "detail": err.Error()})
			return
		}
		logrus.WithFields(logrus.Fields{
			"username":  user.Username,                   // New username
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("User registered")
		c.JSON(http.StatusOK, gin.H{"user": user.Username})
	}
}

// LoginHandler checks the credentials and starts a session
func LoginHandler(s *store.Store, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			// If binding fails or credentials are missing, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing credentials"})
			return
		}
		user, err := s.GetUser(c.Request.Context(), req.Username) // Fetch user from store
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user", "detail": err.Error()})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			logrus.WithField("username", req.Username).Warn("Login failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err := setSessionCookie(c, user.Username, cfg); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Username})
	}
}

// LogoutHandler clears the session cookie and sends the client home
func LogoutHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", cfg.IsProd, true) // Expire the cookie
		c.Redirect(http.StatusFound, "/")
	}
}
