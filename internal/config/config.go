package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

var globalConfig *Config

// Config holds all environment backed configuration for cyrene-server.
type Config struct {
	// HTTP Server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	// Persistence
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Auth
	JWTSecret     string        `env:"JWT_SECRET,notEmpty"`
	TokenLifetime time.Duration `env:"TOKEN_LIFETIME" envDefault:"24h"`
	AdminName     string        `env:"ADMIN_NAME"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`

	// Model backend (OpenAI-compatible)
	ModelBaseURL     string        `env:"MODEL_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	ModelAPIKey      string        `env:"MODEL_API_KEY,notEmpty"`
	DefaultModel     string        `env:"DEFAULT_MODEL" envDefault:"deepseek-chat"`
	ModelTemperature float32       `env:"MODEL_TEMPERATURE" envDefault:"1.0"`
	ModelMaxTokens   int           `env:"MODEL_MAX_TOKENS" envDefault:"8192"`
	ModelTimeout     time.Duration `env:"MODEL_TIMEOUT" envDefault:"120s"`

	// Captcha
	CaptchaTTL time.Duration `env:"CAPTCHA_TTL" envDefault:"300s"`

	// Observability / Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	globalConfig = cfg
	return cfg, nil
}

// GetGlobal returns the last loaded configuration.
func GetGlobal() *Config {
	return globalConfig
}
