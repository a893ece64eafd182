package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the Record Store server settings.
type Config struct {
	Port           string
	DatabaseURL    string
	MigrationsPath string

	JWTSecret            string
	OperatorEmail        string
	OperatorPasswordHash string

	RedisAddr     string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
	EmailFrom     string
	EmailFromName string

	RateLimitRPS   float64
	RateLimitBurst int
}

// ClientConfig holds the gymctl settings.
type ClientConfig struct {
	StoreURL         string
	Token            string
	Timeout          time.Duration
	FetchConcurrency int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		JWTSecret:            getEnv("JWT_SECRET", ""),
		OperatorEmail:        getEnv("OPERATOR_EMAIL", "admin@amrap.local"),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "1025"),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@amrap.local"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "AMRAP Gyms"),
	}

	var err error
	if cfg.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}

	if cfg.OperatorPasswordHash != "" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required when OPERATOR_PASSWORD_HASH is set")
	}

	return cfg, nil
}

// AuthEnabled reports whether mutating routes require an operator token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" && c.OperatorPasswordHash != ""
}

func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		StoreURL: getEnv("GYMCTL_STORE_URL", "http://localhost:3000"),
		Token:    getEnv("GYMCTL_TOKEN", ""),
	}

	var err error
	if cfg.Timeout, err = getEnvDuration("GYMCTL_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency, err = getEnvInt("GYMCTL_FETCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency < 1 {
		return nil, fmt.Errorf("GYMCTL_FETCH_CONCURRENCY must be at least 1, got %d", cfg.FetchConcurrency)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
