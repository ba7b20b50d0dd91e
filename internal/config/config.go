package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Postgres POI store; empty falls back to the in-memory store.
	DatabaseURL string

	// Redis persistence; empty falls back to the in-memory store.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// GeoLite2 City database for the IP location tier; empty disables it.
	GeoIPDBPath string

	// Weather provider configuration. An empty API key is not an error:
	// enrichment degrades to fallback observations.
	WeatherAPIKey    string
	WeatherTimeout   time.Duration
	WeatherCacheSize int
	WeatherCacheTTL  time.Duration

	// Discovery engine tuning.
	DebounceInterval time.Duration
	CandidateLimit   int
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	weatherCacheTTL, err := parseDuration("WEATHER_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	debounce, err := parseDuration("DEBOUNCE_INTERVAL", 250*time.Millisecond)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("WEATHER_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	candidateLimit, err := parseInt("CANDIDATE_LIMIT", 25)
	if err != nil {
		return nil, err
	}
	redisDB, err := parseInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),

		WeatherAPIKey:    os.Getenv("WEATHER_API_KEY"),
		WeatherTimeout:   weatherTimeout,
		WeatherCacheSize: cacheSize,
		WeatherCacheTTL:  weatherCacheTTL,

		DebounceInterval: debounce,
		CandidateLimit:   candidateLimit,
	}

	if cfg.WeatherCacheSize <= 0 {
		return nil, errors.New("WEATHER_CACHE_SIZE must be positive")
	}
	if cfg.CandidateLimit <= 0 {
		return nil, errors.New("CANDIDATE_LIMIT must be positive")
	}
	if cfg.DebounceInterval <= 0 {
		return nil, errors.New("DEBOUNCE_INTERVAL must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}
