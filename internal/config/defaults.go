package config

const (
	defaultDataDir                = "~/.local/share/worldshelf"
	defaultLogDir                 = "~/.local/share/worldshelf/logs"
	defaultVRChatBaseURL          = "https://api.vrchat.cloud/api/1"
	defaultUserAgent              = "worldshelf/1.0"
	defaultRequestTimeout         = 10
	defaultRequestsPerSecond      = 1.0
	defaultBurst                  = 1
	defaultBreakerMaxFailures     = 3
	defaultBreakerCooldownSeconds = 30
	defaultWatchDebounceSeconds   = 5
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		VRChat: VRChat{
			BaseURL:                defaultVRChatBaseURL,
			UserAgent:              defaultUserAgent,
			TimeoutSeconds:         defaultRequestTimeout,
			RequestsPerSecond:      defaultRequestsPerSecond,
			Burst:                  defaultBurst,
			BreakerMaxFailures:     defaultBreakerMaxFailures,
			BreakerCooldownSeconds: defaultBreakerCooldownSeconds,
		},
		Scan: Scan{
			WatchDebounceSeconds: defaultWatchDebounceSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
