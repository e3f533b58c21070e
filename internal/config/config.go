package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

type Config struct {
	HTTPPort           string
	APIBaseURL         url.URL
	StorageDriver      string
	SQLitePath         string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	APITimeout         time.Duration
	PaymentReturnURL   string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
}

// Load reads an optional env file and then the environment. Variables that
// are already set win over the file. A missing file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	baseURL, err := url.Parse(getEnv("API_BASE_URL", "https://ecommerce.routemisr.com/api/v1"))
	if err != nil {
		return nil, fmt.Errorf("API_BASE_URL: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("API_BASE_URL: %q is not an absolute url", baseURL.String())
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}

	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("API_TIMEOUT: %w", err)
	}

	requestTimeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if requestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: must be positive, got %s", requestTimeout)
	}

	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	driver := strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite))
	switch driver {
	case DriverSQLite, DriverRedis, DriverMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER: unknown driver %q", driver)
	}

	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		APIBaseURL:         *baseURL,
		StorageDriver:      driver,
		SQLitePath:         getEnv("SQLITE_PATH", "./storefront.db"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            redisDB,
		APITimeout:         apiTimeout,
		PaymentReturnURL:   getEnv("PAYMENT_RETURN_URL", "http://localhost:8080"),
		RequestTimeout:     requestTimeout,
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
