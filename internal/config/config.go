package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For session lifetime

	"github.com/joho/godotenv" // For loading .env files
)

// Supported store drivers
const (
	DriverSQLite = "sqlite" // Single database file
	DriverMySQL  = "mysql"  // MySQL server
)

// Supported upload backends
const (
	UploadBackendDisk  = "disk"  // Local upload directory
	UploadBackendMinio = "minio" // S3 compatible bucket
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	IsProd         bool          // Is production environment
	DBDriver       string        // Store driver: sqlite or mysql
	DBPath         string        // SQLite database file
	DBUser         string        // Database user
	DBPassword     string        // Database password
	DBHost         string        // Database host
	DBPort         string        // Database port
	DBName         string        // Database name
	SessionSecret  string        // Session token signing key
	SessionTTL     time.Duration // Session cookie lifetime
	RedisAddr      string        // Redis server address, empty disables caching
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	UploadBackend  string        // Upload backend: disk or minio
	UploadDir      string        // Upload directory for the disk backend
	MaxUploadBytes int64         // Upload size limit, 0 means unlimited
	MinioEndpoint  string        // MinIO endpoint, host:port or URL
	MinioAccessKey string        // MinIO access key
	MinioSecretKey string        // MinIO secret key
	MinioBucket    string        // MinIO bucket
	StaticDir      string        // Directory holding index.html
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	maxUpload, _ := strconv.ParseInt(os.Getenv("MAX_UPLOAD_BYTES"), 10, 64)
	ttl, err := time.ParseDuration(os.Getenv("SESSION_TTL"))
	if err != nil || ttl <= 0 {
		ttl = 30 * 24 * time.Hour // Thirty days
	}
	return &Config{
		AppPort:        getEnv("APP_PORT", "8000"),
		IsProd:         os.Getenv("IS_PROD") == "true",
		DBDriver:       getEnv("DB_DRIVER", DriverSQLite),
		DBPath:         getEnv("DB_PATH", "steak.db"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBHost:         getEnv("DB_HOST", "127.0.0.1"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBName:         getEnv("DB_NAME", "steaks"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionTTL:     ttl,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        redisDB,
		UploadBackend:  getEnv("UPLOAD_BACKEND", UploadBackendDisk),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: maxUpload,
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "steak-uploads"),
		StaticDir:      getEnv("STATIC_DIR", "static"),
	}
}

// DSN returns the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == DriverMySQL {
		// parseTime lets the driver scan DATETIME columns into time.Time
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
	}
	return c.DBPath
}

// getEnv returns the environment value for key or def when unset
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
