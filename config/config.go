// Package config loads client settings for the tracking library.
//
// Settings come from three layers, highest priority first: environment
// variables, an optional YAML file named by UNILOGGER_CONFIG_PATH, and
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned when no API key is configured anywhere.
var ErrMissingAPIKey = errors.New("api key not set: pass one explicitly or set UNILOGGER_API_KEY")

const (
	// DefaultBaseURL is used when no server address is configured.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second
)

// Config holds the tracking client configuration.
type Config struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	LogLevel slog.Level
}

type fileConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	TimeoutMS int    `yaml:"timeout_ms"`
	LogLevel  string `yaml:"log_level"`
}

// Load reads configuration from the YAML file named by UNILOGGER_CONFIG_PATH
// (when set) and then applies environment overrides. A missing API key is not
// an error here; callers that require one check for it.
func Load() (Config, error) {
	cfg := Config{
		BaseURL:  DefaultBaseURL,
		Timeout:  DefaultTimeout,
		LogLevel: slog.LevelInfo,
	}

	if path := os.Getenv("UNILOGGER_CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if fc.APIKey != "" {
			cfg.APIKey = fc.APIKey
		}
		if fc.BaseURL != "" {
			cfg.BaseURL = fc.BaseURL
		}
		if fc.TimeoutMS > 0 {
			cfg.Timeout = time.Duration(fc.TimeoutMS) * time.Millisecond
		}
		if fc.LogLevel != "" {
			level, err := parseLogLevel(fc.LogLevel)
			if err != nil {
				return Config{}, fmt.Errorf("config file %s: %w", path, err)
			}
			cfg.LogLevel = level
		}
	}

	if v := os.Getenv("UNILOGGER_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("UNILOGGER_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("UNILOGGER_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return Config{}, fmt.Errorf("invalid UNILOGGER_TIMEOUT_MS %q", v)
		}
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("UNILOGGER_LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
