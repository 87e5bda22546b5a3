package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/vytor/chessduel/internal/logger"
)

type Config struct {
	Addr     string
	DataDir  string
	DBPath   string
	LogLevel string
	Timezone string

	SessionGapMinutes  int
	FilterCacheSize    int
	MemoFlushThreshold int

	LichessURL           string
	LichessToken         string
	LichessUsername      string
	LichessOpponent      string
	LichessMaxRetries    int
	LichessRatePerSecond float64

	SyncWorkerCount int
	SyncQueueSize   int

	// MetricsEnabled pushes OpenTelemetry metrics over OTLP gRPC. The
	// exporter endpoint comes from the standard OTEL_EXPORTER_OTLP_* variables.
	MetricsEnabled bool

	ConfigFile string
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Addr:                 ":8080",
		DataDir:              "data/games",
		DBPath:               "file:chessduel.db",
		LogLevel:             "INFO",
		Timezone:             "Local",
		SessionGapMinutes:    15,
		FilterCacheSize:      20,
		MemoFlushThreshold:   10000,
		LichessURL:           "https://lichess.org",
		LichessMaxRetries:    3,
		LichessRatePerSecond: 1,
		SyncWorkerCount:      1,
		SyncQueueSize:        8,
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE (if any), then the environment. A .env file in the working
// directory is read first when present.
func Load() (Config, error) {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	cfg := Defaults()
	cfg.ConfigFile = os.Getenv("CONFIG_FILE")
	if cfg.ConfigFile != "" {
		if err := cfg.applyFile(cfg.ConfigFile); err != nil {
			return cfg, err
		}
	}

	cfg.Addr = envOr("ADDR", cfg.Addr)
	cfg.DataDir = envOr("DATA_DIR", cfg.DataDir)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.Timezone = envOr("TIMEZONE", cfg.Timezone)
	cfg.SessionGapMinutes = envIntOr("SESSION_GAP_MINUTES", cfg.SessionGapMinutes)
	cfg.FilterCacheSize = envIntOr("FILTER_CACHE_SIZE", cfg.FilterCacheSize)
	cfg.MemoFlushThreshold = envIntOr("MEMO_FLUSH_THRESHOLD", cfg.MemoFlushThreshold)
	cfg.LichessURL = envOr("LICHESS_URL", cfg.LichessURL)
	cfg.LichessToken = envOr("LICHESS_TOKEN", cfg.LichessToken)
	cfg.LichessUsername = envOr("LICHESS_USERNAME", cfg.LichessUsername)
	cfg.LichessOpponent = envOr("LICHESS_OPPONENT", cfg.LichessOpponent)
	cfg.LichessMaxRetries = envIntOr("LICHESS_MAX_RETRIES", cfg.LichessMaxRetries)
	cfg.LichessRatePerSecond = envFloatOr("LICHESS_RATE_PER_SECOND", cfg.LichessRatePerSecond)
	cfg.SyncWorkerCount = envIntOr("SYNC_WORKER_COUNT", cfg.SyncWorkerCount)
	cfg.SyncQueueSize = envIntOr("SYNC_QUEUE_SIZE", cfg.SyncQueueSize)
	cfg.MetricsEnabled = envBoolOr("METRICS_ENABLED", cfg.MetricsEnabled)

	return cfg, nil
}

// fileConfig mirrors the TOML layout. Pointer fields distinguish "absent"
// from zero values.
type fileConfig struct {
	Addr     *string `toml:"addr"`
	DataDir  *string `toml:"data_dir"`
	DBPath   *string `toml:"db_path"`
	LogLevel *string `toml:"log_level"`

	Dashboard struct {
		Timezone           *string `toml:"timezone"`
		SessionGapMinutes  *int    `toml:"session_gap_minutes"`
		FilterCacheSize    *int    `toml:"filter_cache_size"`
		MemoFlushThreshold *int    `toml:"memo_flush_threshold"`
	} `toml:"dashboard"`

	Lichess struct {
		URL           *string  `toml:"url"`
		Token         *string  `toml:"token"`
		Username      *string  `toml:"username"`
		Opponent      *string  `toml:"opponent"`
		MaxRetries    *int     `toml:"max_retries"`
		RatePerSecond *float64 `toml:"rate_per_second"`
		SyncWorkers   *int     `toml:"sync_workers"`
		SyncQueueSize *int     `toml:"sync_queue_size"`
	} `toml:"lichess"`

	Telemetry struct {
		MetricsEnabled *bool `toml:"metrics_enabled"`
	} `toml:"telemetry"`
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logger.Warn("config file %s: ignoring unknown keys %v", path, undecoded)
	}

	set(&c.Addr, fc.Addr)
	set(&c.DataDir, fc.DataDir)
	set(&c.DBPath, fc.DBPath)
	set(&c.LogLevel, fc.LogLevel)
	set(&c.Timezone, fc.Dashboard.Timezone)
	set(&c.SessionGapMinutes, fc.Dashboard.SessionGapMinutes)
	set(&c.FilterCacheSize, fc.Dashboard.FilterCacheSize)
	set(&c.MemoFlushThreshold, fc.Dashboard.MemoFlushThreshold)
	set(&c.LichessURL, fc.Lichess.URL)
	set(&c.LichessToken, fc.Lichess.Token)
	set(&c.LichessUsername, fc.Lichess.Username)
	set(&c.LichessOpponent, fc.Lichess.Opponent)
	set(&c.LichessMaxRetries, fc.Lichess.MaxRetries)
	set(&c.LichessRatePerSecond, fc.Lichess.RatePerSecond)
	set(&c.SyncWorkerCount, fc.Lichess.SyncWorkers)
	set(&c.SyncQueueSize, fc.Lichess.SyncQueueSize)
	set(&c.MetricsEnabled, fc.Telemetry.MetricsEnabled)
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DataDir == "" {
		problems = append(problems, "DATA_DIR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE %q is not a known location", c.Timezone))
	}
	if c.SessionGapMinutes < 1 || c.SessionGapMinutes > 120 {
		problems = append(problems, fmt.Sprintf("SESSION_GAP_MINUTES must be between 1 and 120 (got %d)", c.SessionGapMinutes))
	}
	if c.FilterCacheSize < 1 {
		problems = append(problems, "FILTER_CACHE_SIZE must be positive")
	}
	if c.MemoFlushThreshold < 1 {
		problems = append(problems, "MEMO_FLUSH_THRESHOLD must be positive")
	}
	if u, err := url.Parse(c.LichessURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("LICHESS_URL must be an absolute URL (got %q)", c.LichessURL))
	}
	if c.LichessMaxRetries < 0 {
		problems = append(problems, "LICHESS_MAX_RETRIES cannot be negative")
	}
	if c.LichessRatePerSecond <= 0 {
		problems = append(problems, "LICHESS_RATE_PER_SECOND must be positive")
	}
	if c.SyncWorkerCount < 1 {
		problems = append(problems, "SYNC_WORKER_COUNT must be positive")
	}
	if c.SyncQueueSize < 1 {
		problems = append(problems, "SYNC_QUEUE_SIZE must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		logger.Warn("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		logger.Warn("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		logger.Warn("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
