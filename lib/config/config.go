// Package config resolves runtime settings from the environment.
//
// Settings are layered: built-in defaults first, then the legacy
// VITE_API_URL alias, then MOVIEFINDER_* variables and PORT. The result is
// resolved once at startup and passed down explicitly.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultAPIURL is used when no service address is configured.
const DefaultAPIURL = "http://127.0.0.1:8000"

// EnvPrefix is the prefix of every application variable.
const EnvPrefix = "MOVIEFINDER_"

// Config holds the resolved settings.
type Config struct {
	APIURL         string        `koanf:"api_url"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	LogLevel       string        `koanf:"log_level"`
	LogFile        string        `koanf:"log_file"`
	Port           string        `koanf:"port"`

	// SubmitLimit is how many form submissions one client IP may make per
	// minute on the web front-end. Zero disables the limit.
	SubmitLimit int `koanf:"submit_limit"`
}

func defaultConfig() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: 60 * time.Second,
		LogLevel:       "info",
		LogFile:        "moviefinder.log",
		Port:           "8080",
		SubmitLimit:    20,
	}
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// VITE_API_URL is accepted as a lower priority alias.
	alias := env.ProviderWithValue("VITE_", ".", only("VITE_API_URL", "api_url"))
	if err := k.Load(alias, nil); err != nil {
		return nil, fmt.Errorf("failed to load VITE_API_URL: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	port := env.ProviderWithValue("PORT", ".", only("PORT", "port"))
	if err := k.Load(port, nil); err != nil {
		return nil, fmt.Errorf("failed to load PORT: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransformFunc maps MOVIEFINDER_API_URL to api_url and so on. Empty
// variables count as unset.
func envTransformFunc(key, value string) (string, interface{}) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
}

// only maps a single variable name to path and drops everything else.
func only(name, path string) func(key, value string) (string, interface{}) {
	return func(key, value string) (string, interface{}) {
		if key != name || strings.TrimSpace(value) == "" {
			return "", nil
		}
		return path, value
	}
}

// Validate checks that the resolved values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api url %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url %q must use http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api url %q has no host", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.SubmitLimit < 0 {
		return fmt.Errorf("submit limit must not be negative, got %d", c.SubmitLimit)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel converts LogLevel into a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
