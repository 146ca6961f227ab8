package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	AssetHost AssetHostConfig
	Gallery   GalleryConfig
	Cache     CacheConfig
	Firebase  FirebaseConfig
	App       AppConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory". The memory driver keeps projects in process
	// and is meant for local development only.
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AssetHostConfig selects and configures the remote image host.
type AssetHostConfig struct {
	Provider      string // "cloudinary" or "s3"
	CloudName     string
	UploadPreset  string
	APIBaseURL    string
	UploadTimeout time.Duration
	RateLimit     float64 // requests per second, 0 disables limiting
	S3Bucket      string
	S3Region      string
	S3Prefix      string
	CDNDomain     string
	OrphanGrace   time.Duration
	AuditSchedule string
}

type GalleryConfig struct {
	// Lock is "local" (in-process keyed mutex), "redis" (cross-instance) or "none"
	// (version checks only).
	Lock            string
	LockTTL         time.Duration
	MaxAttempts     int
	MutationTimeout time.Duration
}

type CacheConfig struct {
	Backend string // "redis" or "memory"
	TTL     time.Duration
}

type FirebaseConfig struct {
	CredentialsPath string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "portfolio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		AssetHost: AssetHostConfig{
			Provider:      getEnv("ASSET_HOST", "cloudinary"),
			CloudName:     getEnv("CLOUDINARY_CLOUD_NAME", ""),
			UploadPreset:  getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
			APIBaseURL:    getEnv("CLOUDINARY_API_BASE_URL", "https://api.cloudinary.com/v1_1"),
			UploadTimeout: getEnvAsDuration("ASSET_UPLOAD_TIMEOUT", 60*time.Second),
			RateLimit:     getEnvAsFloat("ASSET_RATE_LIMIT", 5),
			S3Bucket:      getEnv("S3_BUCKET", ""),
			S3Region:      getEnv("S3_REGION", "us-east-1"),
			S3Prefix:      getEnv("S3_PREFIX", "portfolio"),
			CDNDomain:     getEnv("CDN_DOMAIN", ""),
			OrphanGrace:   getEnvAsDuration("ASSET_ORPHAN_GRACE", time.Hour),
			AuditSchedule: getEnv("ASSET_AUDIT_SCHEDULE", "0 0 * * * *"),
		},
		Gallery: GalleryConfig{
			Lock:            getEnv("GALLERY_LOCK", "local"),
			LockTTL:         getEnvAsDuration("GALLERY_LOCK_TTL", 30*time.Second),
			MaxAttempts:     getEnvAsInt("GALLERY_MAX_ATTEMPTS", 3),
			MutationTimeout: getEnvAsDuration("GALLERY_MUTATION_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			Backend: getEnv("CACHE_BACKEND", "redis"),
			TTL:     getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
	case "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or memory, got %q", c.Database.Driver)
	}

	switch c.AssetHost.Provider {
	case "cloudinary":
		if c.AssetHost.CloudName == "" || c.AssetHost.UploadPreset == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET are required")
		}
	case "s3":
		if c.AssetHost.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required")
		}
	default:
		return fmt.Errorf("ASSET_HOST must be cloudinary or s3, got %q", c.AssetHost.Provider)
	}

	switch c.Gallery.Lock {
	case "local", "redis", "none":
	default:
		return fmt.Errorf("GALLERY_LOCK must be local, redis or none, got %q", c.Gallery.Lock)
	}
	if c.Gallery.MaxAttempts < 1 {
		return fmt.Errorf("GALLERY_MAX_ATTEMPTS must be at least 1")
	}

	switch c.Cache.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("CACHE_BACKEND must be redis or memory, got %q", c.Cache.Backend)
	}

	if c.App.Environment == "production" && c.Firebase.CredentialsPath == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required in production")
	}

	return nil
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Cache.Backend == "redis" || c.Gallery.Lock == "redis"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
