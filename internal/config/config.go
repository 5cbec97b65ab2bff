// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	// JWTSecret verifies the streaming app's HS256 session tokens. Token
	// issuance stays in the main application.
	JWTSecret string `yaml:"jwt_secret"`
	Enabled   bool   `yaml:"enabled"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"` // per window, per user
	Window   time.Duration `yaml:"window"`
}

type VNPayConfig struct {
	TmnCode    string `yaml:"tmn_code"`
	HashSecret string `yaml:"hash_secret"`
	PayURL     string `yaml:"pay_url"`
	ReturnURL  string `yaml:"return_url"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	VNPay     VNPayConfig     `yaml:"vnpay"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8088
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.RateLimit.Requests <= 0 {
		cfg.RateLimit.Requests = 10
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}

	// Minimal validation. Gateway credentials have no defaults on purpose:
	// a misconfigured merchant must fail at startup, not at signing time.
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.VNPay.TmnCode == "" {
		return nil, errors.New("vnpay.tmn_code is required")
	}
	if cfg.VNPay.HashSecret == "" {
		return nil, errors.New("vnpay.hash_secret is required")
	}
	if cfg.VNPay.PayURL == "" {
		return nil, errors.New("vnpay.pay_url is required")
	}
	if cfg.VNPay.ReturnURL == "" {
		return nil, errors.New("vnpay.return_url is required")
	}
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required when auth is enabled")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
