package api

import (
	"encoding/json" // JSON numbers
	"errors"        // Error matching
	"net/http"      // HTTP status codes
	"strconv"       // String conversion
	"strings"       // String manipulation
	"time"          // Time for logging

	"steaklog/internal/domain"     // Importing domain models
	"steaklog/internal/middleware" // Resolved identity
	"steaklog/internal/store"      // Persistent store
	"steaklog/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// AddSteakRequest represents a new steak entry.
// Cost and weight accept JSON numbers as well as numeric strings.
type AddSteakRequest struct {
	Type   string      `json:"type"`   // Cut, required
	Cook   string      `json:"cook"`   // Doneness, required
	Cost   json.Number `json:"cost"`   // Price, required
	Weight json.Number `json:"weight"` // Weight, required
	Photo  *string     `json:"photo"`  // Upload reference, optional
}

// toSteak validates the request and builds the entry owned by username
func (r AddSteakRequest) toSteak(username string) (domain.Steak, bool) {
	typ := strings.TrimSpace(r.Type)
	cook := strings.TrimSpace(r.Cook)
	cost, costErr := r.Cost.Float64()
	weight, weightErr := r.Weight.Float64()
	if typ == "" || cook == "" || costErr != nil || weightErr != nil {
		return domain.Steak{}, false
	}
	steak := domain.Steak{User: username, Type: typ, Cook: cook, Cost: cost, Weight: weight}
	if r.Photo != nil && *r.Photo != "" {
		photo := *r.Photo
		steak.Photo = &photo
	}
	return steak, true
}

// AddSteakHandler records a steak for the authenticated user
func AddSteakHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := middleware.Username(c) // Get username from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var req AddSteakRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing fields"})
			return
		}
		steak, valid := req.toSteak(username)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing fields"})
			return
		}
		ctx := c.Request.Context()
		if err := s.InsertEntry(ctx, &steak); err != nil {
			logrus.WithFields(logrus.Fields{
				"username": username,    // Owner
				"error":    err.Error(), // Error message
			}).Error("Failed to add steak")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add steak", "detail": err.Error()})
			return
		}
		// Read back by the generated id, concurrent inserts cannot swap the record
		saved, err := s.GetEntry(ctx, steak.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "insert failed", "detail": err.Error()})
			return
		}
		_ = utils.DeleteCache(ctx, rdb, utils.SteaksCacheKey(username)) // Invalidate list cache
		logrus.WithFields(logrus.Fields{
			"username":  username,                        // Owner
			"steak_id":  saved.ID,                        // New steak ID
			"type":      saved.Type,                      // Cut
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Steak added")
		c.JSON(http.StatusOK, saved)
	}
}

// ListSteaksHandler returns the authenticated user's steaks ordered by id
func ListSteaksHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := middleware.Username(c) // Get username from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.SteaksCacheKey(username) // Cache key for the list
		var steaks []domain.Steak
		// If found in cache, return it
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &steaks); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, steaks)
			return
		}
		steaks, err := s.ListEntries(ctx, username)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"username": username,    // Owner
				"error":    err.Error(), // Error message
			}).Error("Failed to list steaks")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list steaks", "detail": err.Error()})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, steaks, utils.CacheTTL) // Cache the list
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, steaks)
	}
}

// DeleteSteakHandler removes one steak owned by the authenticated user.
// Existence is checked before identity, then ownership.
func DeleteSteakHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			// Ids are numeric, anything else names no steak
			c.JSON(http.StatusNotFound, gin.H{"error": "steak not found"})
			return
		}
		steak, err := s.GetEntry(ctx, uint(id))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "steak not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load steak", "detail": err.Error()})
			return
		}
		username, ok := middleware.Username(c) // Get username from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if steak.User != username {
			logrus.WithFields(logrus.Fields{
				"username": username,   // Caller
				"owner":    steak.User, // Actual owner
				"steak_id": steak.ID,   // Target steak
			}).Warn("Rejected delete of foreign steak")
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		n, err := s.DeleteEntry(ctx, steak.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete steak", "detail": err.Error()})
			return
		}
		if n == 0 {
			// The row vanished between the lookup and the delete
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
			return
		}
		_ = utils.DeleteCache(ctx, rdb, utils.SteaksCacheKey(username)) // Invalidate list cache
		logrus.WithFields(logrus.Fields{
			"username":  username,                        // Owner
			"steak_id":  steak.ID,                        // Deleted steak
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Steak deleted")
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
