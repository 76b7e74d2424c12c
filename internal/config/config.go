package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis (asynq broker)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort string

	// Image storage
	StorageBackend    string // "local" or "s3"
	UploadDir         string
	ThumbMaxDimension int

	// AWS S3 (only used when StorageBackend == "s3")
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string

	// Admin bootstrap (seed mode)
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "househunt")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8001")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	// Tokens expire after one day unless overridden.
	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "86400"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	cfg.StorageBackend = getEnv("STORAGE_BACKEND", "local")
	if cfg.StorageBackend != "local" && cfg.StorageBackend != "s3" {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %s (expected 'local' or 's3')", cfg.StorageBackend)
	}
	cfg.UploadDir = getEnv("UPLOAD_DIR", "./uploads")
	cfg.ThumbMaxDimension, err = strconv.Atoi(getEnv("THUMB_MAX_DIMENSION", "480"))
	if err != nil {
		return nil, fmt.Errorf("invalid THUMB_MAX_DIMENSION: %w", err)
	}

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	if cfg.StorageBackend == "s3" && cfg.AwsS3Bucket == "" {
		return nil, fmt.Errorf("STORAGE_BACKEND=s3 requires AWS_S3_BUCKET")
	}

	cfg.AdminEmail = getEnv("ADMIN_EMAIL", "")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "")
	cfg.AdminName = getEnv("ADMIN_NAME", "Administrator")
	if cfg.RunMode == "seed" && (cfg.AdminEmail == "" || cfg.AdminPassword == "") {
		return nil, fmt.Errorf("seed mode requires ADMIN_EMAIL and ADMIN_PASSWORD")
	}

	return cfg, nil
}
