package config

import (
	"os"
	"strconv"
)

type Config struct {
	// APP
	AppEnv   string
	Port     string
	LogLevel string

	// Database
	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	JWTSecret string

	// SIPP
	SippBaseURL  string
	SippAPIToken string

	// Sync engine
	SyncBatchSize        int
	ConflictResolution   string
	NotificationsEnabled bool

	// Admin login
	AdminUsername string
	AdminPassword string
}

func Load() (*Config, error) {
	cfg := &Config{
		// App
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8001"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// DB
		DBHost: getEnv("DB_HOST", "127.0.0.1"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: getEnv("DB_PASS", "postgres"),
		DBName: getEnv("DB_NAME", "sipp_db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "secret123"),

		// SIPP
		SippBaseURL:  getEnv("SIPP_BASE_URL", "http://sipp.pn-example.go.id"),
		SippAPIToken: getEnv("SIPP_API_TOKEN", ""),

		// Sync engine
		SyncBatchSize:        getEnvInt("SYNC_BATCH_SIZE", 100),
		ConflictResolution:   getEnv("SYNC_CONFLICT_RESOLUTION", "latest_wins"),
		NotificationsEnabled: getEnvBool("SYNC_NOTIFICATIONS_ENABLED", true),

		// Admin login
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin-2025"),
	}

	return cfg, nil
}

// getEnv returns environment variable or default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns int from env or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool returns bool from env or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
