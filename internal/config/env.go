// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/confkit/confkit/internal/log"
	"github.com/rs/zerolog"
)

// ParseString reads a string from an environment variable or returns
// the default. The source (environment or default) is logged for
// observability; values of sensitive keys are never logged.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		lowerKey := strings.ToLower(key)
		switch {
		case strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "password"):
			logger.Debug().
				Str("key", key).
				Str("source", "environment").
				Bool("sensitive", true).
				Msg("using environment variable")
		case value == "":
			logger.Debug().
				Str("key", key).
				Str("default", defaultValue).
				Str("source", "default").
				Msg("using default value (environment variable is empty)")
			return defaultValue
		default:
			logger.Debug().
				Str("key", key).
				Str("value", value).
				Str("source", "environment").
				Msg("using environment variable")
		}
		return value
	}
	logger.Debug().
		Str("key", key).
		Str("default", defaultValue).
		Str("source", "default").
		Msg("using default value")
	return defaultValue
}

// ParseInt reads an integer from an environment variable or returns the
// default. Parse failures fall back to the default.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
	}
	return defaultValue
}

// ParseBool reads a boolean from an environment variable or returns the
// default. Accepts the strconv.ParseBool spellings.
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
	}
	return defaultValue
}

// ParseFloat reads a float from an environment variable or returns the default.
func ParseFloat(key string, defaultValue float64) float64 {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Float64("default", defaultValue).
			Msg("invalid float in environment variable, using default")
	}
	return defaultValue
}

// ParseDuration reads a duration from an environment variable or
// returns the default.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
	}
	return defaultValue
}

// Runtime is confkit's own serve-mode configuration, sourced from
// CONFKIT_* environment variables. It configures the aggregator
// process, never the tool sections it serves.
type Runtime struct {
	ListenAddr string
	LogLevel   string
	LogService string

	CacheBackend  string // "memory" or "redis"
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HistoryDir  string // empty disables revision history
	HistoryKeep int

	RateLimit      int // requests per minute per client IP
	ReloadDebounce time.Duration

	TracingEnabled  bool
	TracingExporter string // "grpc" or "http"
	TracingEndpoint string
	TracingSampling float64
}

// RuntimeFromEnv builds the serve-mode runtime from the environment.
func RuntimeFromEnv() Runtime {
	return Runtime{
		ListenAddr: ParseString("CONFKIT_LISTEN", ":8484"),
		LogLevel:   ParseString("CONFKIT_LOG_LEVEL", "info"),
		LogService: ParseString("CONFKIT_LOG_SERVICE", "confkit"),

		CacheBackend:  ParseString("CONFKIT_CACHE", "memory"),
		CacheTTL:      ParseDuration("CONFKIT_CACHE_TTL", 5*time.Minute),
		RedisAddr:     ParseString("CONFKIT_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: ParseString("CONFKIT_REDIS_PASSWORD", ""),
		RedisDB:       ParseInt("CONFKIT_REDIS_DB", 0),

		HistoryDir:  ParseString("CONFKIT_HISTORY_DIR", ""),
		HistoryKeep: ParseInt("CONFKIT_HISTORY_KEEP", 50),

		RateLimit:      ParseInt("CONFKIT_RATE_LIMIT", 120),
		ReloadDebounce: ParseDuration("CONFKIT_RELOAD_DEBOUNCE", 500*time.Millisecond),

		TracingEnabled:  ParseBool("CONFKIT_TRACING", false),
		TracingExporter: ParseString("CONFKIT_TRACING_EXPORTER", "grpc"),
		TracingEndpoint: ParseString("CONFKIT_TRACING_ENDPOINT", "localhost:4317"),
		TracingSampling: ParseFloat("CONFKIT_TRACING_SAMPLING", 1.0),
	}
}
