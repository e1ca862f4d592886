package api

import (
	"steaklog/internal/config"     // Application configuration
	"steaklog/internal/middleware" // Identity middleware
	"steaklog/internal/storage"    // Upload storage
	"steaklog/internal/store"      // Persistent store

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// Deps are the collaborators injected into every handler
type Deps struct {
	Config  *config.Config  // Application configuration
	Store   *store.Store    // Store connection provider
	Uploads storage.Uploads // Upload storage backend
	Redis   *redis.Client   // Cache client, nil disables caching
}

// NewRouter registers every route on a new Gin engine
func NewRouter(d Deps) (*gin.Engine, error) {
	// Set Mode to Release if in production
	if d.Config.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return nil, err
	}

	identity := middleware.ResolveIdentity(d.Store, d.Config.SessionSecret) // Resolves the acting user

	// Static and upload routes
	r.GET("/", IndexHandler(d.Config.StaticDir))
	r.POST("/upload", UploadHandler(d.Uploads, d.Config.MaxUploadBytes))
	r.GET("/uploads/:filename", ServeUploadHandler(d.Uploads))

	// Auth routes
	r.POST("/register", RegisterHandler(d.Store, d.Redis, d.Config))
	r.POST("/login", LoginHandler(d.Store, d.Config))
	r.GET("/logout", LogoutHandler(d.Config))
	r.POST("/logout", LogoutHandler(d.Config))

	// Steak routes, delete resolves identity itself after the existence check
	r.GET("/steaks", identity, middleware.RequireIdentity(), ListSteaksHandler(d.Store, d.Redis))
	r.POST("/add_steak", identity, middleware.RequireIdentity(), AddSteakHandler(d.Store, d.Redis))
	r.DELETE("/steaks/:id", identity, DeleteSteakHandler(d.Store, d.Redis))

	// Administrative routes, deliberately unauthenticated
	r.GET("/users", ListUsersHandler(d.Store, d.Redis))
	r.GET("/reset_db", ResetHandler(d.Store, d.Uploads, d.Redis))

	return r, nil
}
