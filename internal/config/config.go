package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/nasermirzaei89/env"
)

const defaultJWTSecret = "devsecret"

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Env         string
	Port        string
	APIPrefix   string
	CORSOrigins []string

	PostgresDSN string
	MongoURI    string
	MongoDB     string

	RedisAddr     string
	RedisPassword string
	LockTTL       time.Duration
	LockWait      time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	JWTSecret      string
	MaxUploadBytes int64
}

// Load reads a .env file when one exists, then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Env:         env.GetString("APP_ENV", "development"),
		Port:        env.GetString("PORT", "5000"),
		APIPrefix:   env.GetString("API_PREFIX", "/api"),
		CORSOrigins: env.GetStringSlice("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),

		PostgresDSN: env.GetString("POSTGRES_DSN", ""),
		MongoURI:    env.GetString("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     env.GetString("MONGO_DB", "blog"),

		RedisAddr:     env.GetString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: env.GetString("REDIS_PASSWORD", ""),

		MinioEndpoint:  env.GetString("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: env.GetString("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: env.GetString("MINIO_SECRET_KEY", ""),
		MinioBucket:    env.GetString("MINIO_BUCKET", "blog-uploads"),
		MinioUseSSL:    env.GetBool("MINIO_USE_SSL", false),

		JWTSecret: env.GetString("JWT_SECRET", defaultJWTSecret),
	}

	var err error
	if cfg.MaxUploadBytes, err = strconv.ParseInt(env.GetString("MAX_UPLOAD_BYTES", "10485760"), 10, 64); err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}
	if cfg.LockTTL, err = time.ParseDuration(env.GetString("POST_LOCK_TTL", "10s")); err != nil {
		return nil, fmt.Errorf("POST_LOCK_TTL: %w", err)
	}
	if cfg.LockWait, err = time.ParseDuration(env.GetString("POST_LOCK_WAIT", "5s")); err != nil {
		return nil, fmt.Errorf("POST_LOCK_WAIT: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings that are unsafe or unusable.
func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}
