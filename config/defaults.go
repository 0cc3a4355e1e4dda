// Package config provides centralized default values for peakreach-go
package config

import (
	"os"
	"strconv"
	"time"
)

// getEnvString reads environment variable with string fallback
func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// getEnvInt reads environment variable with fallback to default
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration reads environment variable as duration with fallback
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		// Try as integer seconds
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

// Server Configuration
var (
	Port = getEnvString("PORT", "8080")
)

// Database Configuration
var (
	SQLitePath = getEnvString("SQLITE_PATH", "./data/peakreach.db")
)

// Redis Configuration
var (
	RedisAddr     = getEnvString("REDIS_ADDR", "localhost:6379")
	RedisPassword = getEnvString("REDIS_PASSWORD", "")
)

// Rate Limiting
var (
	LeadRateLimitMax    = getEnvInt("LEAD_RATE_LIMIT_MAX", 10)
	LeadRateLimitWindow = getEnvDuration("LEAD_RATE_LIMIT_WINDOW", time.Minute)
)

// Session Cache Configuration
var (
	SessionCacheTTL      = getEnvDuration("SESSION_CACHE_TTL", 2*time.Hour)
	CacheCleanupInterval = getEnvDuration("CACHE_CLEANUP_INTERVAL", 30*time.Minute)
)

// External Services
var (
	GeoLookupURL     = getEnvString("GEO_LOOKUP_URL", "http://ip-api.com/json")
	GeoLookupTimeout = getEnvDuration("GEO_LOOKUP_TIMEOUT", 3*time.Second)
	SheetWebhookURL  = getEnvString("SHEET_WEBHOOK_URL", "")
)

// Operator Authentication
var (
	JWTSecret            = getEnvString("JWT_SECRET", "")
	OperatorPasswordHash = getEnvString("OPERATOR_PASSWORD_HASH", "")
	OperatorTokenTTL     = getEnvDuration("OPERATOR_TOKEN_TTL", 12*time.Hour)
)
