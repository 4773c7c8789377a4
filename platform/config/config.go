// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetHTTPWriteTimeout() time.Duration
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinIOPublicBaseURL() string
	GetMinioBucketListingPhotos() string
	GetMinioBucketReportPhotos() string
	GetMinioBucketSiteAssets() string
	IsMinIOEnabled() bool
}

// GeminiConfig provides settings for the Gemini vision classifier.
type GeminiConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsGeminiEnabled() bool
}

// GateConfig provides the retry policy of the image classification gate.
type GateConfig interface {
	GetGateMaxAttempts() int
	GetGateRetryDelay() time.Duration
}

// SchedulerConfig provides settings for the asynq queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// AutomationConfig provides settings for the automation webhook.
type AutomationConfig interface {
	GetAutomationWebhookURL() string
	GetAutomationWebhookTimeout() time.Duration
	GetDispatchBufferSize() int
}

// IntakeConfig provides settings for staging uploaded images.
type IntakeConfig interface {
	GetStagingDir() string
}

// PhoneConfig provides the default region used to normalise phone numbers.
type PhoneConfig interface {
	GetPhoneRegion() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	HTTPWriteTimeout         time.Duration
	DatabaseURL              string
	JWTAccessSecret          string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinIOMaxFileSize         int64
	MinIOPublicBaseURL       string
	MinioBucketListingPhotos string
	MinioBucketReportPhotos  string
	MinioBucketSiteAssets    string
	GeminiAPIKey             string
	GeminiModel              string
	GateMaxAttempts          int
	GateRetryDelay           time.Duration
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueueName           string
	AsynqConcurrency         int
	AutomationWebhookURL     string
	AutomationWebhookTimeout time.Duration
	DispatchBufferSize       int
	StagingDir               string
	PhoneRegion              string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string                { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool              { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string           { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool            { return c.CORSAllowCreds }
func (c *Config) GetHTTPWriteTimeout() time.Duration { return c.HTTPWriteTimeout }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string            { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string           { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string           { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool                { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64          { return c.MinIOMaxFileSize }
func (c *Config) GetMinIOPublicBaseURL() string       { return c.MinIOPublicBaseURL }
func (c *Config) GetMinioBucketListingPhotos() string { return c.MinioBucketListingPhotos }
func (c *Config) GetMinioBucketReportPhotos() string  { return c.MinioBucketReportPhotos }
func (c *Config) GetMinioBucketSiteAssets() string    { return c.MinioBucketSiteAssets }
func (c *Config) IsMinIOEnabled() bool                { return c.MinIOEndpoint != "" }

// GeminiConfig implementation
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsGeminiEnabled() bool   { return c.GeminiAPIKey != "" }

// GateConfig implementation
func (c *Config) GetGateMaxAttempts() int          { return c.GateMaxAttempts }
func (c *Config) GetGateRetryDelay() time.Duration { return c.GateRetryDelay }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string         { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool   { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string   { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int    { return c.AsynqConcurrency }

// AutomationConfig implementation
func (c *Config) GetAutomationWebhookURL() string { return c.AutomationWebhookURL }
func (c *Config) GetAutomationWebhookTimeout() time.Duration {
	return c.AutomationWebhookTimeout
}
func (c *Config) GetDispatchBufferSize() int { return c.DispatchBufferSize }

// IntakeConfig implementation
func (c *Config) GetStagingDir() string { return c.StagingDir }

// PhoneConfig implementation
func (c *Config) GetPhoneRegion() string { return c.PhoneRegion }

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool { return strings.EqualFold(c.Env, "development") }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		HTTPWriteTimeout:         mustDuration(getEnv("HTTP_WRITE_TIMEOUT", "30s")),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:         mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinIOPublicBaseURL:       getEnv("MINIO_PUBLIC_BASE_URL", ""),
		MinioBucketListingPhotos: getEnv("MINIO_BUCKET_LISTING_PHOTOS", "listing-photos"),
		MinioBucketReportPhotos:  getEnv("MINIO_BUCKET_REPORT_PHOTOS", "report-photos"),
		MinioBucketSiteAssets:    getEnv("MINIO_BUCKET_SITE_ASSETS", "site-assets"),
		GeminiAPIKey:             getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:              getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GateMaxAttempts:          mustInt(getEnv("GATE_MAX_ATTEMPTS", "3")),
		GateRetryDelay:           mustDuration(getEnv("GATE_RETRY_DELAY", "2s")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "automation"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		AutomationWebhookURL:     getEnv("AUTOMATION_WEBHOOK_URL", ""),
		AutomationWebhookTimeout: mustDuration(getEnv("AUTOMATION_WEBHOOK_TIMEOUT", "10s")),
		DispatchBufferSize:       mustInt(getEnv("DISPATCH_BUFFER_SIZE", "256")),
		StagingDir:               getEnv("STAGING_DIR", os.TempDir()),
		PhoneRegion:              getEnv("PHONE_REGION", "MX"),
	}

	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.DatabaseURL == "" && !cfg.IsDevelopment() {
		return nil, fmt.Errorf("DATABASE_URL is required outside development")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.GateMaxAttempts < 1 {
		return nil, fmt.Errorf("GATE_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
