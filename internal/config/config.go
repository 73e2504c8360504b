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

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	WebhookPath string `yaml:"webhook_path"` // path the partner POSTs callbacks to
}

// PartnerConfig carries the credentials registered with the partner and the
// key material for request signing. Keys are raw base64 strings, exactly as
// the partner portal hands them out.
type PartnerConfig struct {
	BaseURL          string        `yaml:"base_url"`
	ClientKey        string        `yaml:"client_key"` // a.k.a. client id / X-CLIENT-KEY
	PartnerID        string        `yaml:"partner_id"`
	ChannelID        string        `yaml:"channel_id"`
	TokenPath        string        `yaml:"token_path"`
	PrivateKey       string        `yaml:"private_key"`        // ours, for signing
	PartnerPublicKey string        `yaml:"partner_public_key"` // theirs, for webhook verification
	Timeout          time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // webhook replay retention window
}

type OpsConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TTL       time.Duration `yaml:"ttl"`
}

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Partner PartnerConfig `yaml:"partner"`
	Redis   RedisConfig   `yaml:"redis"`
	Ops     OpsConfig     `yaml:"ops"`

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
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.WebhookPath == "" {
		cfg.Server.WebhookPath = "/webhook/partner"
	}
	if cfg.Partner.TokenPath == "" {
		cfg.Partner.TokenPath = "/v1.0/access-token/b2b"
	}
	if cfg.Partner.Timeout <= 0 {
		cfg.Partner.Timeout = 30 * time.Second
	}
	if cfg.Ops.TTL <= 0 {
		cfg.Ops.TTL = 30 * time.Minute
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Partner.BaseURL == "" {
		return nil, errors.New("partner.base_url is required")
	}
	if cfg.Partner.ClientKey == "" {
		return nil, errors.New("partner.client_key is required")
	}
	if cfg.Partner.PrivateKey == "" {
		return nil, errors.New("partner.private_key is required")
	}
	if cfg.Partner.PartnerPublicKey == "" {
		return nil, errors.New("partner.partner_public_key is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 24 * time.Hour
	}
	return d
}
