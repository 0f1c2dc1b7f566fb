package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// Config holds all launcher configuration.
type Config struct {
	Server    ServerConfig
	GRPC      GRPCConfig
	Handler   HandlerConfig
	Store     StoreConfig
	Directory DirectoryConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Webhooks  WebhookConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// GRPCConfig holds the health service configuration.
type GRPCConfig struct {
	Address string `envconfig:"GRPC_ADDR" default:"localhost:50061"`
	Enabled bool   `envconfig:"GRPC_ENABLED" default:"true"`
}

// HandlerConfig tunes the app handler controller.
type HandlerConfig struct {
	CommandBuffer int           `envconfig:"COMMAND_BUFFER" default:"256"`
	NotifyTimeout time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"2s"`
	// LaunchEnv is appended to the environment of every launched app
	LaunchEnv []string `envconfig:"LAUNCH_ENV"`
}

// StoreConfig locates the registry snapshot. The file extension selects the
// format (.json, .yaml, .toml) and a trailing .zst enables compression.
type StoreConfig struct {
	Path string `envconfig:"STORE_PATH" default:"/tmp/launcher/apps.json"`
}

// DirectoryConfig configures app identity resolution.
type DirectoryConfig struct {
	Account       string `envconfig:"ACCOUNT" default:"default"`
	HashAlgorithm string `envconfig:"IDENTITY_HASH" default:"sha256"`
	// Aliases map a binary name onto an existing identity, as binary=app-id
	Aliases []string `envconfig:"DIRECTORY_ALIASES"`
}

// DirectoryAlias is one parsed alias.
type DirectoryAlias struct {
	BinaryName string
	Target     types.AppIdentity
}

// ParseAliases splits the configured aliases.
func (d DirectoryConfig) ParseAliases() ([]DirectoryAlias, error) {
	aliases := make([]DirectoryAlias, 0, len(d.Aliases))
	for _, raw := range d.Aliases {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		name, target, ok := strings.Cut(raw, "=")
		name, target = strings.TrimSpace(name), strings.TrimSpace(target)
		if !ok || name == "" || target == "" {
			return nil, fmt.Errorf("invalid alias %q: want binary=app-id", raw)
		}
		aliases = append(aliases, DirectoryAlias{BinaryName: name, Target: types.AppIdentity(target)})
	}
	return aliases, nil
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// Global shares one limiter between all clients instead of one per IP
	Global bool `envconfig:"RATE_LIMIT_GLOBAL" default:"false"`
}

// WebhookConfig lists webhook observers as category=url pairs.
type WebhookConfig struct {
	Targets []string `envconfig:"WEBHOOKS"`
}

// WebhookTarget is one parsed webhook observer.
type WebhookTarget struct {
	Category types.Category
	URL      string
}

// Parse splits the configured targets, rejecting unknown categories.
func (w WebhookConfig) Parse() ([]WebhookTarget, error) {
	targets := make([]WebhookTarget, 0, len(w.Targets))
	for _, raw := range w.Targets {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		category, url, ok := strings.Cut(raw, "=")
		if !ok || url == "" {
			return nil, fmt.Errorf("invalid webhook %q: want category=url", raw)
		}
		c := types.Category(strings.TrimSpace(category))
		if !c.Valid() {
			return nil, fmt.Errorf("invalid webhook %q: unknown category %q", raw, category)
		}
		targets = append(targets, WebhookTarget{Category: c, URL: strings.TrimSpace(url)})
	}
	return targets, nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		GRPC: GRPCConfig{
			Address: "localhost:50061",
			Enabled: true,
		},
		Handler: HandlerConfig{
			CommandBuffer: 256,
			NotifyTimeout: 2 * time.Second,
		},
		Store: StoreConfig{
			Path: "/tmp/launcher/apps.json",
		},
		Directory: DirectoryConfig{
			Account:       "default",
			HashAlgorithm: "sha256",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
