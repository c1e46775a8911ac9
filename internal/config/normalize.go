package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVRChat()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeVRChat() {
	c.VRChat.BaseURL = strings.TrimRight(strings.TrimSpace(c.VRChat.BaseURL), "/")
	if c.VRChat.BaseURL == "" {
		c.VRChat.BaseURL = defaultVRChatBaseURL
	}
	if value, ok := os.LookupEnv("WORLDSHELF_USER_AGENT"); ok && strings.TrimSpace(value) != "" {
		c.VRChat.UserAgent = value
	}
	c.VRChat.UserAgent = strings.TrimSpace(c.VRChat.UserAgent)
	if c.VRChat.UserAgent == "" {
		c.VRChat.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
