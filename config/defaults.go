// Package config provides centralized default values for PulseTrack
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

// loadEnvFile loads environment variables from .env file
func loadEnvFile() {
	envLoaded.Do(func() {
		loadEnvFileOnce()
	})
}

func loadEnvFileOnce() {
	file, err := os.Open(".env")
	if err != nil {
		// .env file is optional, don't error if it doesn't exist
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on first = sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Only set if not already set in environment
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func init() {
	// Ensure .env is loaded before any config access
	loadEnvFile()
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

// getEnvString reads environment variable with string fallback
func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// Server Configuration
var (
	Port          = getEnvString("PORT", "8080")
	AllowedOrigin = getEnvString("ALLOWED_ORIGIN", "")
)

// Aggregation Horizons
var (
	ActiveUserWindow = time.Duration(getEnvInt("ACTIVE_WINDOW_MINUTES", 30)) * time.Minute
	UserRecordTTL    = time.Duration(getEnvInt("USER_TTL_HOURS", 1)) * time.Hour
	SessionRecordTTL = time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour
	RecentDays       = getEnvInt("RECENT_DAYS", 7)
)

// Cleanup Intervals
var (
	CleanupInterval = time.Duration(getEnvInt("CLEANUP_INTERVAL_MINUTES", 60)) * time.Minute
)

// Transport Limits
var (
	RateLimitWindow      = time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
	RateLimitMaxRequests = getEnvInt("RATE_LIMIT_MAX_REQUESTS", 120)
	DashboardRefreshSecs = getEnvInt("DASHBOARD_REFRESH_SECONDS", 30)
)
