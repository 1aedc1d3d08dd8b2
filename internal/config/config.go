// Package config loads `tephi serve` settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        log.Level
	ShutdownTimeout time.Duration

	// Shared cache. Empty RedisAddr keeps the cache in local files.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheDir      string
	CacheTTL      time.Duration

	// Chart storage. Empty MongoURI keeps charts in memory.
	MongoURI      string
	MongoDatabase string

	// Workers bounds concurrent isopleth generation per request.
	Workers int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	level, err := log.ParseLevel(envOrDefault("TEPHI_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid TEPHI_LOG_LEVEL: %w", err)
	}
	shutdown, err := parseDuration("TEPHI_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	ttl, err := parseDuration("TEPHI_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	workers, err := parsePositiveInt("TEPHI_WORKERS", 8)
	if err != nil {
		return nil, err
	}
	redisDB, err := parseInt("TEPHI_REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("TEPHI_HTTP_ADDR", ":8080"),
		LogLevel:        level,
		ShutdownTimeout: shutdown,
		RedisAddr:       os.Getenv("TEPHI_REDIS_ADDR"),
		RedisPassword:   os.Getenv("TEPHI_REDIS_PASSWORD"),
		RedisDB:         redisDB,
		CacheDir:        os.Getenv("TEPHI_CACHE_DIR"),
		CacheTTL:        ttl,
		MongoURI:        os.Getenv("TEPHI_MONGO_URI"),
		MongoDatabase:   envOrDefault("TEPHI_MONGO_DATABASE", "tephi"),
		Workers:         workers,
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("TEPHI_HTTP_ADDR is required")
	}
	if cfg.MongoURI != "" && cfg.MongoDatabase == "" {
		return nil, errors.New("TEPHI_MONGO_DATABASE is required when TEPHI_MONGO_URI is set")
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	n, err := parseInt(key, def)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid %s: must be > 0", key)
	}
	return n, nil
}
