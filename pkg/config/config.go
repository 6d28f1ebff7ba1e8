package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment       string
	ServerPort        int
	DBHost            string
	DBPort            int
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	RedisURL          string
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTIssuer         string
	TokenTTL          time.Duration
	StrictTransitions bool
	LoginMaxAttempts  int
	LoginWindow       time.Duration
	StatsInterval     time.Duration
	LogLevel          string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	strict, err := strconv.ParseBool(getEnv("STRICT_TRANSITIONS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid STRICT_TRANSITIONS: %w", err)
	}

	loginMaxAttempts, err := strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %w", err)
	}

	loginWindow, err := time.ParseDuration(getEnv("LOGIN_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_WINDOW: %w", err)
	}

	statsInterval, err := time.ParseDuration(getEnv("STATS_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_INTERVAL: %w", err)
	}

	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		ServerPort:        port,
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            dbPort,
		DBUser:            getEnv("DB_USER", "bookingdesk"),
		DBPassword:        getEnv("DB_PASSWORD", "dev"),
		DBName:            getEnv("DB_NAME", "bookingdesk"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		RedisURL:          getEnv("REDIS_URL", ""),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", ""),
		JWTIssuer:         getEnv("JWT_ISSUER", "bookingdesk"),
		TokenTTL:          tokenTTL,
		StrictTransitions: strict,
		LoginMaxAttempts:  loginMaxAttempts,
		LoginWindow:       loginWindow,
		StatsInterval:     statsInterval,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
