// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults keep the service listening on all interfaces at port 8080 with
// only the /hello route mounted.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = "8080"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the process configuration.
type Config struct {
	Host            string
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	HealthEnabled   bool
	DocsEnabled     bool
	ProjectID       string
}

// Addr returns the host:port the listener binds to.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads the optional dotenv files, then the process environment.
// Variables already present in the environment take precedence over the
// files. A missing file is not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, applying defaults for unset keys.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Host:     get("HOST", DefaultHost),
		Port:     get("PORT", DefaultPort),
		LogLevel: get("LOG_LEVEL", DefaultLogLevel),
		ProjectID: firstNonEmpty(
			get("GOOGLE_CLOUD_PROJECT", ""),
			get("GCP_PROJECT", ""),
			get("PROJECT_ID", ""),
		),
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q: must be a number between 0 and 65535", cfg.Port)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(get("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout.String())); err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %s: must be positive", cfg.ShutdownTimeout)
	}

	if cfg.HealthEnabled, err = strconv.ParseBool(get("HEALTH_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid HEALTH_ENABLED: %w", err)
	}
	if cfg.DocsEnabled, err = strconv.ParseBool(get("DOCS_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid DOCS_ENABLED: %w", err)
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
