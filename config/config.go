package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config holds the process-wide settings. It is built once by Load and
// passed to constructors; nothing reads it after startup.
type Config struct {
	Port        string
	LogLevel    string
	Debug       bool
	FrontendURL string
	BackendURL  string
	JWTSecret   string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	UserAPIURL              string
	CommentsAPIURL          string
	LikesAPIURL             string
	UpstreamTimeout         time.Duration
	AggregateMaxConcurrency int

	SASSecret string
	SASScope  string
	SASTTL    time.Duration

	StorageBackend     string
	LocalStoragePath   string
	S3Region           string
	S3Bucket           string
	S3Endpoint         string
	GCSProjectID       string
	GCSBucketName      string
	GCSCredentialsFile string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8001"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Debug:       getEnvAsBool("DEBUG", false),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:8001"),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", ""),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", ""),

		UserAPIURL:              getEnv("USER_API_URL", "http://localhost:8000"),
		CommentsAPIURL:          getEnv("COMMENTS_API_URL", "http://localhost:8002"),
		LikesAPIURL:             getEnv("LIKES_API_URL", "http://localhost:8003"),
		UpstreamTimeout:         getEnvAsDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		AggregateMaxConcurrency: getEnvAsInt("AGGREGATE_MAX_CONCURRENCY", 8),

		SASSecret: getEnv("SAS_SECRET", ""),
		SASScope:  getEnv("SAS_SCOPE", "posts"),
		SASTTL:    getEnvAsDuration("SAS_TTL", time.Hour),

		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
		LocalStoragePath:   getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		S3Region:           getEnv("S3_REGION", "us-west-2"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		GCSProjectID:       getEnv("GCS_PROJECT_ID", ""),
		GCSBucketName:      getEnv("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if c.DBHost == "" || c.DBPort == "" || c.DBUser == "" || c.DBName == "" {
		return fmt.Errorf("database configuration is incomplete")
	}
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if c.SASSecret == "" {
		return fmt.Errorf("SAS_SECRET is not set")
	}
	if c.SASTTL <= 0 {
		return fmt.Errorf("SAS_TTL must be positive")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.AggregateMaxConcurrency <= 0 {
		return fmt.Errorf("AGGREGATE_MAX_CONCURRENCY must be positive")
	}
	switch c.StorageBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is not set")
		}
	case "gcs":
		if c.GCSBucketName == "" {
			return fmt.Errorf("GCS_BUCKET_NAME is not set")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// DSN builds the driver-specific connection string.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(key, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}
	return defaultVal
}
