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

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// VRChat contains configuration for the world lookup service.
type VRChat struct {
	BaseURL                string  `toml:"base_url"`
	UserAgent              string  `toml:"user_agent"`
	TimeoutSeconds         int     `toml:"timeout_seconds"`
	RequestsPerSecond      float64 `toml:"requests_per_second"`
	Burst                  int     `toml:"burst"`
	BreakerMaxFailures     int     `toml:"breaker_max_failures"`
	BreakerCooldownSeconds int     `toml:"breaker_cooldown_seconds"`
}

// Scan contains configuration for photo suggestion scans.
type Scan struct {
	// CollectTimeoutSeconds bounds candidate collection. Zero disables the
	// deadline; when it fires, scanning keeps the candidates found so far.
	CollectTimeoutSeconds int `toml:"collect_timeout_seconds"`
	// WatchDebounceSeconds is how long `suggest watch` waits for new photos
	// to settle before rescanning.
	WatchDebounceSeconds int `toml:"watch_debounce_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all static configuration values for worldshelf.
//
// Configuration sections by subsystem:
//   - Paths: catalog database, copied photos, preferences, and logs
//   - VRChat: world lookup endpoint, identifying user agent, throttling
//   - Scan: photo scan deadlines
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	VRChat  VRChat  `toml:"vrchat"`
	Scan    Scan    `toml:"scan"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/worldshelf/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
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
		_, err = os.Stat(expanded)
		if err != nil {
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

	projectPath, err := filepath.Abs("worldshelf.toml")
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

// EnsureDirectories creates the data, photo, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.PhotoStoreDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the catalog database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "catalog.db")
}

// PreferencesPath returns the location of the user preferences document.
func (c *Config) PreferencesPath() string {
	return filepath.Join(c.Paths.DataDir, "preferences.json")
}

// PhotoStoreDir returns the directory imported photos are copied into.
func (c *Config) PhotoStoreDir() string {
	return filepath.Join(c.Paths.DataDir, "photos")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "worldshelf.log")
}

// RequestTimeout returns the VRChat request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.VRChat.TimeoutSeconds) * time.Second
}

// BreakerCooldown returns how long an open circuit waits before probing again.
func (c *Config) BreakerCooldown() time.Duration {
	return time.Duration(c.VRChat.BreakerCooldownSeconds) * time.Second
}

// CollectTimeout returns the candidate collection deadline, or zero when disabled.
func (c *Config) CollectTimeout() time.Duration {
	return time.Duration(c.Scan.CollectTimeoutSeconds) * time.Second
}

// WatchDebounce returns the settle delay used by directory watching.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Scan.WatchDebounceSeconds) * time.Second
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
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
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
