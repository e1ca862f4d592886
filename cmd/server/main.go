package main

import (
	"context"      // context package is needed for startup operations
	"crypto/rand"  // Random session secret for development
	"encoding/hex" // Secret encoding
	"time"         // Startup timeouts

	"steaklog/internal/api"     // Custom package for API handlers
	"steaklog/internal/config"  // Custom package for configuration
	"steaklog/internal/storage" // Custom package for upload storage
	"steaklog/internal/store"   // Custom package for the persistent store

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// Session tokens need a signing key
	if cfg.SessionSecret == "" {
		if cfg.IsProd {
			logrus.Fatal("SESSION_SECRET must be set in production")
		}
		cfg.SessionSecret = randomSecret()
		logrus.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect to the store and apply pending migrations
	s, err := store.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to open store: %v", err) // Fatal error if DB connection fails
	}
	defer s.Close()

	// Setup Redis client when configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	// Setup upload storage
	uploads, err := newUploads(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to open upload storage: %v", err)
	}

	r, err := api.NewRouter(api.Deps{Config: cfg, Store: s, Uploads: uploads, Redis: redisClient})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":    cfg.AppPort,        // Listen port
		"driver":  cfg.DBDriver,       // Store driver
		"uploads": cfg.UploadBackend,  // Upload backend
		"cache":   redisClient != nil, // Redis enabled
	}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}

// newUploads opens the configured upload backend
func newUploads(ctx context.Context, cfg *config.Config) (storage.Uploads, error) {
	if cfg.UploadBackend == config.UploadBackendMinio {
		return storage.NewMinio(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket)
	}
	return storage.NewDisk(cfg.UploadDir)
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logrus.Fatalf("failed to generate session secret: %v", err)
	}
	return hex.EncodeToString(b)
}
