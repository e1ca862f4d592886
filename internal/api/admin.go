package api

import (
	"net/http" // HTTP status codes
	"time"     // Time for logging

	"steaklog/internal/domain"  // Importing domain models
	"steaklog/internal/storage" // Upload storage
	"steaklog/internal/store"   // Persistent store
	"steaklog/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// ListUsersHandler returns every user without credentials
func ListUsersHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var users []domain.User
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, utils.UsersCacheKey, &users); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, users)
			return
		}
		users, err := s.ListUsers(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users", "detail": err.Error()})
			return
		}
		_ = utils.SetCache(ctx, rdb, utils.UsersCacheKey, users, utils.CacheTTL) // Cache the list
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, users)
	}
}

// ResetHandler wipes every steak, user and upload and recreates empty stores.
// Every failure is logged and skipped so the client is always sent home.
func ResetHandler(s *store.Store, up storage.Uploads, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		fields := logrus.Fields{"timestamp": time.Now().Format(time.RFC3339)} // Current timestamp
		if n, err := s.DeleteAllEntries(ctx); err != nil {
			logrus.WithField("error", err.Error()).Warn("Reset: failed to delete steaks")
		} else {
			fields["steaks_deleted"] = n // Rows removed before the file goes
		}
		if err := s.Reset(ctx); err != nil {
			logrus.WithField("error", err.Error()).Warn("Reset: failed to recreate store")
		}
		if err := up.Reset(ctx); err != nil {
			logrus.WithField("error", err.Error()).Warn("Reset: failed to recreate uploads")
		}
		if err := utils.FlushCache(ctx, rdb, utils.CachePrefix); err != nil {
			logrus.WithField("error", err.Error()).Warn("Reset: failed to flush cache")
		}
		logrus.WithFields(fields).Info("Store reset")
		c.Redirect(http.StatusFound, "/")
	}
}
