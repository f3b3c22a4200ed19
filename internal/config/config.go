package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Location describes the observer position used for sunrise/sunset
// computation.
type Location struct {
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
	Altitude  float64 `toml:"altitude"`
}

// Filter contains blue-light filter settings.
type Filter struct {
	NightTemperature int `toml:"night_temperature"`
}

// Hyprsunset contains configuration for the external controller channel.
type Hyprsunset struct {
	Mode                     string `toml:"mode"`
	Binary                   string `toml:"binary"`
	SocketWaitAttempts       int    `toml:"socket_wait_attempts"`
	SocketWaitIntervalSecs   int    `toml:"socket_wait_interval_seconds"`
	CommandTimeoutMillis     int    `toml:"command_timeout_ms"`
	ProcessRestartDelayMilli int    `toml:"process_restart_delay_ms"`
}

// Scheduler contains loop timing configuration.
type Scheduler struct {
	DriftDelaySeconds int `toml:"drift_delay_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Paths contains directory configuration.
type Paths struct {
	LogDir string `toml:"log_dir"`
}

// Config encapsulates all configuration values for solshift.
type Config struct {
	Location   Location   `toml:"location"`
	Filter     Filter     `toml:"filter"`
	Hyprsunset Hyprsunset `toml:"hyprsunset"`
	Scheduler  Scheduler  `toml:"scheduler"`
	Logging    Logging    `toml:"logging"`
	Paths      Paths      `toml:"paths"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/solshift/config.toml")
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path, and whether the file existed; defaults apply
// for any absent file or key.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("solshift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// DriftDelay returns the settle delay applied after waking at a boundary.
func (c *Config) DriftDelay() time.Duration {
	return time.Duration(c.Scheduler.DriftDelaySeconds) * time.Second
}

// SocketWaitInterval returns the spacing between control-socket polls.
func (c *Config) SocketWaitInterval() time.Duration {
	return time.Duration(c.Hyprsunset.SocketWaitIntervalSecs) * time.Second
}

// CommandTimeout returns the per-command read deadline on the control socket.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Hyprsunset.CommandTimeoutMillis) * time.Millisecond
}

// ProcessRestartDelay returns the pause between terminating hyprsunset and
// respawning it in process mode.
func (c *Config) ProcessRestartDelay() time.Duration {
	return time.Duration(c.Hyprsunset.ProcessRestartDelayMilli) * time.Millisecond
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
