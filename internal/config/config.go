// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Log formats accepted in LOG_FORMAT.
const (
	LogFormatAuto = "auto"
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// StoreDriver selects the persistence backend: "postgres" (default) or "sqlite".
	StoreDriver string

	// DatabaseURL is the Postgres connection string. Required for the postgres driver.
	DatabaseURL string

	// SQLitePath is the database file used by the sqlite driver. Defaults to "slots.db".
	// ":memory:" gives a throwaway in-process database.
	SQLitePath string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFormat is "json", "text", or "auto" (text on a terminal, JSON otherwise).
	LogFormat string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MigrateOnStart applies pending goose migrations before serving. Defaults to true.
	MigrateOnStart bool

	// DBConnectRetries bounds the startup ping attempts after the first one. Defaults to 5.
	DBConnectRetries uint64

	// DBConnectBackoff is the initial delay between startup pings; it doubles
	// on every attempt. Defaults to 500ms.
	DBConnectBackoff time.Duration

	// RateLimitRPS is the sustained request rate admitted per second.
	// 0 disables rate limiting. Defaults to 20.
	RateLimitRPS float64

	// RateLimitBurst is the number of requests admitted at once. Defaults to 40.
	RateLimitBurst int

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// ShutdownTimeout is how long in-flight requests get after SIGINT/SIGTERM. Defaults to 15s.
	ShutdownTimeout time.Duration
}

// DotEnvFile is read by Load when present. Variables already set in the
// environment win over the file.
const DotEnvFile = ".env"

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first if it exists.
// Returns one error listing every required variable that is not set and
// every value that does not parse.
func Load() (Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading %s: %w", DotEnvFile, err)
	}

	p := &parser{}
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       getEnv("SQLITE_PATH", "slots.db"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", LogFormatAuto)),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MigrateOnStart:   p.parseBool("MIGRATE_ON_START", true),
		DBConnectRetries: p.parseUint("DB_CONNECT_RETRIES", 5),
		DBConnectBackoff: p.parseDuration("DB_CONNECT_BACKOFF", 500*time.Millisecond),
		RateLimitRPS:     p.parseFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:   p.parseInt("RATE_LIMIT_BURST", 40),
		MaxBodyBytes:     int64(p.parseInt("MAX_BODY_BYTES", 1<<20)),
		ShutdownTimeout:  p.parseDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	var missing []string
	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case DriverSQLite:
	default:
		p.invalid("STORE_DRIVER", cfg.StoreDriver, "want postgres or sqlite")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		p.invalid("LOG_LEVEL", cfg.LogLevel, "want debug, info, warn or error")
	}
	switch cfg.LogFormat {
	case LogFormatAuto, LogFormatJSON, LogFormatText:
	default:
		p.invalid("LOG_FORMAT", cfg.LogFormat, "want auto, json or text")
	}
	if cfg.RateLimitRPS < 0 {
		p.invalid("RATE_LIMIT_RPS", os.Getenv("RATE_LIMIT_RPS"), "must not be negative")
	}
	if cfg.MaxBodyBytes <= 0 {
		p.invalid("MAX_BODY_BYTES", os.Getenv("MAX_BODY_BYTES"), "must be positive")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	problems = append(problems, p.problems...)
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// SlogLevel returns the configured level as a slog.Level, defaulting to INFO.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// parser reads typed variables and collects every parse failure.
type parser struct {
	problems []string
}

func (p *parser) invalid(key, value, reason string) {
	p.problems = append(p.problems, fmt.Sprintf("invalid %s %q: %s", key, value, reason))
}

func (p *parser) parseBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.invalid(key, v, "want true or false")
		return fallback
	}
	return b
}

func (p *parser) parseInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.invalid(key, v, "want an integer")
		return fallback
	}
	return n
}

func (p *parser) parseUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		p.invalid(key, v, "want a non-negative integer")
		return fallback
	}
	return n
}

func (p *parser) parseFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.invalid(key, v, "want a number")
		return fallback
	}
	return f
}

func (p *parser) parseDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		p.invalid(key, v, "want a duration such as 500ms or 15s")
		return fallback
	}
	return d
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
