package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration for the checkout service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Redis    RedisConfig    `koanf:"redis"`
	Backend  BackendConfig  `koanf:"backend"`
	Security SecurityConfig `koanf:"security"`
	NewRelic NewRelicConfig `koanf:"newrelic"`
	Checkout CheckoutConfig `koanf:"checkout"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// RedisConfig holds Redis configuration. The pool must absorb the
// per-request burst of session reads and lock round-trips, so it is
// sized here rather than left to the client default.
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
}

// BackendConfig holds the storefront backend API settings.
type BackendConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds JWT verification settings.
type SecurityConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	Issuer    string `koanf:"issuer"`
	Audience  string `koanf:"audience"`
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string `koanf:"app_name"`
	LicenseKey string `koanf:"license_key"`
	Enabled    bool   `koanf:"enabled"`
}

// CheckoutConfig holds the checkout flow knobs.
type CheckoutConfig struct {
	ProofWindow    time.Duration `koanf:"proof_window"`
	SlipMaxBytes   int64         `koanf:"slip_max_bytes"`
	SessionTTL     time.Duration `koanf:"session_ttl"`
	IdempotencyTTL time.Duration `koanf:"idempotency_ttl"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// Load reads base.yaml from pathDir, overlays an optional per-env yaml,
// then overlays CHECKOUT_-prefixed environment variables (nested keys
// with __, e.g. CHECKOUT_REDIS__ADDR).
func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// Optional environment overlay (dev/staging/prod).
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	if err := k.Load(env.Provider("CHECKOUT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "CHECKOUT_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 10 * time.Second
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 20
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 2
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Checkout.ProofWindow == 0 {
		c.Checkout.ProofWindow = 15 * time.Minute
	}
	if c.Checkout.SlipMaxBytes == 0 {
		c.Checkout.SlipMaxBytes = 5 << 20 // 5 MiB
	}
	if c.Checkout.SessionTTL == 0 {
		c.Checkout.SessionTTL = 30 * time.Minute
	}
	if c.Checkout.IdempotencyTTL == 0 {
		c.Checkout.IdempotencyTTL = 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.NewRelic.AppName == "" {
		c.NewRelic.AppName = "checkout-service"
	}
}

// Validate checks the settings without defaults.
func (c Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr required")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret required")
	}
	return nil
}
