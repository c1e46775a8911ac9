package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVRChat(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateVRChat() error {
	parsed, err := url.Parse(c.VRChat.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("vrchat.base_url must be an absolute URL, got %q", c.VRChat.BaseURL)
	}
	if err := ensurePositiveMap(map[string]int{
		"vrchat.timeout_seconds":          c.VRChat.TimeoutSeconds,
		"vrchat.burst":                    c.VRChat.Burst,
		"vrchat.breaker_max_failures":     c.VRChat.BreakerMaxFailures,
		"vrchat.breaker_cooldown_seconds": c.VRChat.BreakerCooldownSeconds,
	}); err != nil {
		return err
	}
	if c.VRChat.RequestsPerSecond <= 0 {
		return errors.New("vrchat.requests_per_second must be positive")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.CollectTimeoutSeconds < 0 {
		return errors.New("scan.collect_timeout_seconds must be zero or positive")
	}
	if c.Scan.WatchDebounceSeconds <= 0 {
		return errors.New("scan.watch_debounce_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
