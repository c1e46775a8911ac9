package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"worldshelf/internal/catalog"
	"worldshelf/internal/config"
	"worldshelf/internal/logging"
	"worldshelf/internal/prefs"
	"worldshelf/internal/suggest"
	"worldshelf/internal/vrchat"
	"worldshelf/internal/worlds"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if level := c.logLevel(); level != "" {
			cfg.Logging.Level = level
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// app bundles the components one command invocation works with.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *catalog.Store
	prefs   *prefs.Store
	remote  *vrchat.Client
	engine  *suggest.Engine
	service *worlds.Service
}

// withApp opens the catalog and wires the service for the duration of fn.
func (c *commandContext) withApp(fn func(*app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	store, err := catalog.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	remote, err := vrchat.New(
		cfg.VRChat.BaseURL,
		cfg.VRChat.UserAgent,
		vrchat.WithRateLimit(cfg.VRChat.RequestsPerSecond, cfg.VRChat.Burst),
		vrchat.WithBreaker(cfg.VRChat.BreakerMaxFailures, cfg.BreakerCooldown()),
		vrchat.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		vrchat.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create vrchat client: %w", err)
	}

	prefStore := prefs.New(cfg.PreferencesPath(), logger)
	engine := suggest.New(store, remote,
		suggest.WithLogger(logger),
		suggest.WithCollectTimeout(cfg.CollectTimeout()),
	)
	service, err := worlds.New(worlds.Dependencies{
		Catalog:  store,
		Remote:   remote,
		Prefs:    prefStore,
		Engine:   engine,
		PhotoDir: cfg.PhotoStoreDir(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	return fn(&app{
		cfg:     cfg,
		logger:  logger,
		catalog: store,
		prefs:   prefStore,
		remote:  remote,
		engine:  engine,
		service: service,
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
