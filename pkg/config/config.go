package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds the settings shared by the console and the HTTP service.
type Config struct {
	Store      string
	SQLiteName string
	SeedDemo   bool

	HTTPAddr string
	GinMode  string

	// APIURL switches the console to a remote catalog when set.
	APIURL             string
	ClientTimeout      time.Duration
	BreakerMaxFailures int
	BreakerTimeout     time.Duration
	RetryMax           int
	RetryBackoff       time.Duration
}

// Load reads .env (if present) into the environment and builds a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Store:      strings.ToLower(getEnv("CATALOG_STORE", StoreMemory)),
		SQLiteName: getEnv("SQLITE_NAME", "catalog"),
		HTTPAddr:   getEnv("HTTP_ADDR", ":8060"),
		GinMode:    getEnv("GIN_MODE", "release"),
		APIURL:     strings.TrimRight(getEnv("CATALOG_API_URL", ""), "/"),
	}

	var err error
	if cfg.SeedDemo, err = getBool("CATALOG_SEED_DEMO", false); err != nil {
		return nil, err
	}
	if cfg.ClientTimeout, err = getDuration("CLIENT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.BreakerMaxFailures, err = getInt("BREAKER_MAX_FAILURES", 5); err != nil {
		return nil, err
	}
	if cfg.BreakerTimeout, err = getDuration("BREAKER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryMax, err = getInt("RETRY_MAX", 3); err != nil {
		return nil, err
	}
	if cfg.RetryBackoff, err = getDuration("RETRY_BACKOFF", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.Store != StoreMemory && cfg.Store != StoreSQLite {
		return nil, errors.Errorf("CATALOG_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, cfg.Store)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrapf(err, "invalid %s", key)
	}
	return b, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, errors.Errorf("invalid %s: %q", key, value)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return d, nil
}
