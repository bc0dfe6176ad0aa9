package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTTTL    time.Duration `env:"JWT_TTL,   default=24h"`

	// FrontendURL is the only origin allowed by CORS and the WebSocket gateway.
	FrontendURL string `env:"FRONTEND_URL, default=http://localhost:3000"`
	// CSPAdvanced switches on the strict Content-Security-Policy.
	CSPAdvanced bool `env:"CSP_ADVANCED, default=false"`

	Database DatabaseConfig
	Redis    RedisConfig
	Modules  ModulesConfig
	Auth     AuthConfig

	NotificationWorkers int `env:"NOTIFICATION_WORKERS, default=4"`
}

type DatabaseConfig struct {
	URL  string `env:"DATABASE_URL,  default=mongodb://localhost:27017"`
	Name string `env:"DATABASE_NAME, default=platform"`
}

type RedisConfig struct {
	Host string `env:"REDIS_HOST, default=localhost"`
	Port int    `env:"REDIS_PORT, default=6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type ModulesConfig struct {
	// Source is one of static, http or mongo.
	Source      string        `env:"MODULES_SOURCE,       default=static"`
	URL         string        `env:"MODULES_URL"`
	LoadTimeout time.Duration `env:"MODULES_LOAD_TIMEOUT, default=10s"`
}

type AuthConfig struct {
	TOTPIssuer string `env:"TOTP_ISSUER, default=Platform"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Modules.Source {
	case "static", "mongo":
	case "http":
		if c.Modules.URL == "" {
			return fmt.Errorf("MODULES_URL is required when MODULES_SOURCE=http")
		}
	default:
		return fmt.Errorf("unknown MODULES_SOURCE %q", c.Modules.Source)
	}
	return nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
