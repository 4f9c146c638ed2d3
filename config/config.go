// Package config loads the gateway's operational configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied when fields are absent from the file.
const (
	DefaultListen       = ":8080"
	DefaultMaxBodyBytes = int64(1 << 20)
)

// Config is the operational surface of the gateway.
//
// It deliberately excludes the inspection patterns: the two pattern groups
// are fixed by contract and cannot be configured.
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string `yaml:"listen"`

	// MaxBodyBytes caps request bodies read by the validation middleware.
	// Zero disables the cap.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// Log configures decision event logging.
	Log LogConfig `yaml:"log"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Audit configures the optional decision audit trail.
	Audit AuditConfig `yaml:"audit"`
}

// LogConfig controls the decision log emitter.
type LogConfig struct {
	// Format is "text" or "json". Default "text".
	Format string `yaml:"format"`

	// Output is a file path, or empty for stdout.
	Output string `yaml:"output"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled exposes GET /metrics when true.
	Enabled bool `yaml:"enabled"`
}

// AuditConfig controls the decision audit trail.
type AuditConfig struct {
	// Driver is "none", "memory", "sqlite", or "mysql". Default "none".
	Driver string `yaml:"driver"`

	// DSN is the backend location: a file path for sqlite, a MySQL DSN
	// for mysql. Unused for none and memory.
	DSN string `yaml:"dsn"`

	// RejectsOnly restricts the trail to rejected requests.
	RejectsOnly bool `yaml:"rejects_only"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:       DefaultListen,
		MaxBodyBytes: DefaultMaxBodyBytes,
		Log:          LogConfig{Format: "text"},
		Audit:        AuditConfig{Driver: "none"},
	}
}

// Load reads and validates a configuration file.
//
// Absent fields keep their defaults. An unreadable or invalid file is an
// error; use Default() when no file path was supplied at all.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values without touching the filesystem or network.
func (c Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes cannot be negative")
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log format %q: must be text or json", c.Log.Format)
	}

	switch c.Audit.Driver {
	case "", "none", "memory":
	case "sqlite", "mysql":
		if c.Audit.DSN == "" {
			return fmt.Errorf("audit driver %q requires a dsn", c.Audit.Driver)
		}
	default:
		return fmt.Errorf("audit driver %q: must be none, memory, sqlite, or mysql", c.Audit.Driver)
	}

	return nil
}
