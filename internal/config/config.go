package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port                   int    `envconfig:"PORT" default:"8080"`
	LogLevel               string `envconfig:"LOG_LEVEL" default:"info"`
	Version                string `envconfig:"VERSION" default:"dev"`
	ProviderURL            string `envconfig:"PROVIDER_URL" required:"true"`
	ProviderTimeoutSeconds int    `envconfig:"PROVIDER_TIMEOUT_SECONDS" default:"5"`
	SessionCookieName      string `envconfig:"SESSION_COOKIE_NAME" default:"session"`
	RedisURL               string `envconfig:"REDIS_URL" default:""`
	TokenCacheTTLSeconds   int    `envconfig:"TOKEN_CACHE_TTL_SECONDS" default:"30"`
	DatabaseURL            string `envconfig:"DATABASE_URL" default:""`
	VerifyMaxRetries       int    `envconfig:"VERIFY_MAX_RETRIES" default:"3"`
	VerifyBaseDelayMs      int    `envconfig:"VERIFY_BASE_DELAY_MS" default:"1000"`
	RedirectSettleMs       int    `envconfig:"REDIRECT_SETTLE_MS" default:"1000"`
	RedirectFallbackMs     int    `envconfig:"REDIRECT_FALLBACK_MS" default:"1000"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
