// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"solshift/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp log directory per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithLocation overrides the observer position on the test config.
func WithLocation(latitude, longitude, altitude float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Location.Latitude = latitude
		cfg.Location.Longitude = longitude
		cfg.Location.Altitude = altitude
	}
}

// WithMode selects the hyprsunset control channel on the test config.
func WithMode(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Hyprsunset.Mode = mode
	}
}
