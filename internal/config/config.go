package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	ServerAddress string        `env:"SERVER_ADDRESS"`
	BaseURL       string        `env:"BASE_URL"`
	DatabaseDSN   string        `env:"DATABASE_DSN"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"`
	CacheTTL      time.Duration `env:"CACHE_TTL"`
	RabbitMQURL   string        `env:"RABBITMQ_URL"`
	ClickQueue    string        `env:"CLICK_QUEUE_NAME"`
	AuthSecret    string        `env:"AUTH_SECRET"`
}

// ParseFlags builds the configuration from environment variables and
// command-line flags. Environment variables win over flags.
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	envServerAddress := cfg.ServerAddress
	envBaseURL := cfg.BaseURL
	envDatabaseDSN := cfg.DatabaseDSN
	envRedisAddr := cfg.RedisAddr

	flag.StringVar(&cfg.ServerAddress, "a", "localhost:8080", "Address of the server")
	flag.StringVar(&cfg.BaseURL, "b", "http://localhost:8080", "Base URL for short links")
	flag.StringVar(&cfg.DatabaseDSN, "d", "", "PostgreSQL DSN (empty runs the in-memory store)")
	flag.StringVar(&cfg.RedisAddr, "r", "", "Redis address for the resolution cache (empty disables caching)")

	flag.Parse()

	if envServerAddress != "" {
		cfg.ServerAddress = envServerAddress
	}
	if envBaseURL != "" {
		cfg.BaseURL = envBaseURL
	}
	if envDatabaseDSN != "" {
		cfg.DatabaseDSN = envDatabaseDSN
	}
	if envRedisAddr != "" {
		cfg.RedisAddr = envRedisAddr
	}

	cfg.applyDefaultValues()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if c.AuthSecret == "" {
		return fmt.Errorf("auth secret cannot be empty")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	return nil
}

func (c *Config) applyDefaultValues() {
	if c.ServerAddress == "" {
		c.ServerAddress = "localhost:8080"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Hour
	}
	if c.ClickQueue == "" {
		c.ClickQueue = "clicks"
	}
	if c.AuthSecret == "" {
		c.AuthSecret = "dev-secret"
	}
}
