package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"buildsite/internal/logger"
)

type Config struct {
	DBDriver  string        `env:"DB_DRIVER" envDefault:"mysql"` // mysql, postgres, sqlite
	DSN       string        `env:"DB_DSN"`
	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-secret-only"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	AppPort   string        `env:"APP_PORT" envDefault:"8080"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`

	LoginRPS   float64 `env:"LOGIN_RPS" envDefault:"1"`
	LoginBurst int     `env:"LOGIN_BURST" envDefault:"5"`

	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@example.com"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info().Msg(".env file not found, using system environment variables")
	} else {
		logger.Info().Msg(".env file loaded")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.DSN == "" {
		return errors.New("DB_DSN not set in environment")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}
