package config

import (
	"os"
	"strconv"
	"time"

	"github.com/gebeta-eats/payflow/service"
)

// Config holds the runtime configuration of the payment flow gateway.
type Config struct {
	Port       string
	AppBaseURL string
	APIBaseURL string
	RedisURL   string
	Currency   string
	Backoff    service.BackoffPolicy
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port:       getEnv("PORT", "8080"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:5000/api"),
		RedisURL:   getEnv("REDIS_URL", ""),
		Currency:   getEnv("PAYMENT_CURRENCY", "ETB"),
		Backoff: service.BackoffPolicy{
			MaxVerifyAttempts: getEnvInt("VERIFY_MAX_ATTEMPTS", 10),
			MaxNetworkRetries: getEnvInt("VERIFY_MAX_NETWORK_RETRIES", 3),
			BaseDelay:         getEnvDuration("VERIFY_BASE_DELAY", 3*time.Second),
			MaxDelay:          getEnvDuration("VERIFY_MAX_DELAY", 5*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
