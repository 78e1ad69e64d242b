// Package config provides centralized default values for Luminor
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%g (default: %g)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	ShutdownTimeout    time.Duration

	// Database
	DBPath                   string
	DatabaseURL              string
	DatabaseAuthToken        string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	SlowQueryThreshold       time.Duration

	// Credentials
	JWTSecret        string
	GeminiAPIKey     string
	AssemblyAIAPIKey string
	ResendAPIKey     string
	EmailFromAddress string

	// Sessions
	SessionTTL        time.Duration
	RememberTokenDays int

	// AI Bridge
	AIModel             string
	AIRequestTimeout    time.Duration
	AIMaxOutputTokens   int
	AITemperature       float64
	AIRequestsPerMinute int

	// Media
	MaxImageDimension int
	MaxUploadSizeMB   int

	// History
	DefaultHistoryLimit int

	// Activity Feed
	ActivityBroadcastInterval time.Duration

	// Logging
	LogDirectory string
	LogLevel     string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)

	// Database
	DBPath = getEnvString("DB_PATH", "luminor_users.db")
	DatabaseURL = getEnvString("DATABASE_URL", "")
	DatabaseAuthToken = getEnvString("TURSO_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 50*time.Millisecond)

	// Credentials
	JWTSecret = getEnvString("JWT_SECRET", "")
	GeminiAPIKey = getEnvString("GEMINI_API_KEY", "")
	AssemblyAIAPIKey = getEnvString("AAI_API_KEY", "")
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	EmailFromAddress = getEnvString("EMAIL_FROM", "Luminor <no-reply@luminor.app>")

	// Sessions
	SessionTTL = getEnvDuration("SESSION_TTL", 24*time.Hour)
	RememberTokenDays = getEnvInt("REMEMBER_TOKEN_DAYS", 30)

	// AI Bridge
	AIModel = getEnvString("AI_MODEL", "gemini-2.5-flash")
	AIRequestTimeout = getEnvDuration("AI_REQUEST_TIMEOUT", 30*time.Second)
	AIMaxOutputTokens = getEnvInt("AI_MAX_OUTPUT_TOKENS", 500)
	AITemperature = getEnvFloat("AI_TEMPERATURE", 0.2)
	AIRequestsPerMinute = getEnvInt("AI_REQUESTS_PER_MINUTE", 10)

	// Media
	MaxImageDimension = getEnvInt("MAX_IMAGE_DIMENSION", 1024)
	MaxUploadSizeMB = getEnvInt("MAX_UPLOAD_SIZE_MB", 10)

	// History
	DefaultHistoryLimit = getEnvInt("DEFAULT_HISTORY_LIMIT", 50)

	// Activity Feed
	ActivityBroadcastInterval = getEnvDuration("ACTIVITY_BROADCAST_INTERVAL", 20*time.Second)

	// Logging
	LogDirectory = getEnvString("LOG_DIR", "logs")
	LogLevel = getEnvString("LOG_LEVEL", "info")
}
