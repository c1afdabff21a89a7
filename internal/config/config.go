package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Data backend.
	BackendURL     string
	BackendTimeout time.Duration

	SessionCacheSize int

	MapTileURL string
	MapZoom    int

	// Activity feed configuration.
	ActivityEnabled    bool
	KafkaBrokers       []string
	KafkaActivityTopic string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	backendTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("BACKEND_TIMEOUT", "30s"))
	if err != nil || backendTimeout <= 0 {
		return nil, errors.New("invalid BACKEND_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	sessionCacheSize, err := parsePositiveInt("SESSION_CACHE_SIZE", 500)
	if err != nil {
		return nil, err
	}

	mapZoom, err := parsePositiveInt("MAP_ZOOM", 8)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	activityEnabled := len(brokers) > 0
	if v := os.Getenv("ACTIVITY_ENABLED"); v != "" {
		activityEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BackendURL:     sharedcfg.EnvOrDefault("BACKEND_URL", "http://127.0.0.1:5000"),
		BackendTimeout: backendTimeout,

		SessionCacheSize: sessionCacheSize,

		MapTileURL: sharedcfg.EnvOrDefault("MAP_TILE_URL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"),
		MapZoom:    mapZoom,

		ActivityEnabled:    activityEnabled,
		KafkaBrokers:       brokers,
		KafkaActivityTopic: sharedcfg.EnvOrDefault("KAFKA_ACTIVITY_TOPIC", "hydro-explorer-activity"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if u, err := url.Parse(cfg.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid BACKEND_URL %q", cfg.BackendURL)
	}
	if cfg.ActivityEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("ACTIVITY_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.ActivityEnabled && cfg.KafkaActivityTopic == "" {
		return nil, errors.New("KAFKA_ACTIVITY_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}
