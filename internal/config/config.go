package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	Port        string `env:"API_PORT, default=8080"`
	Environment string `env:"API_ENV, default=development"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	LogPretty   bool   `env:"LOG_PRETTY, default=false"`

	JWTSecret       string        `env:"JWT_SECRET, default=dev-secret-change-me"`
	JWTIssuer       string        `env:"JWT_ISSUER, default=storefront-api"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL, default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=720h"`

	RedisAddr   string `env:"REDIS_ADDR, default=localhost:6379"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Comma-separated email lists granted superuser tiers on registration.
	CEOEmails       string `env:"CEO_EMAILS"`
	SuperuserEmails string `env:"SUPERUSER_EMAILS"`

	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
	AuthRateLimit  int    `env:"AUTH_RATE_LIMIT, default=30"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
