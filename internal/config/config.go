package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/danmuck/seedctl/internal/project"
)

const (
	ConcurrencyReject = "reject"
	ConcurrencyWait   = "wait"

	DefaultName           = "seedctl"
	DefaultAddr           = ":9100"
	DefaultCommandTimeout = 120 * time.Second
)

// Config is the resolved runtime configuration. Environment variables win
// over the file, which wins over defaults.
type Config struct {
	Name           string            `env:"SEEDCTL_NAME"`
	Addr           string            `env:"SEEDCTL_ADDR"`
	CorsOrigins    []string          `env:"SEEDCTL_CORS_ORIGINS" envSeparator:","`
	AuthTokens     []string          `env:"SEEDCTL_AUTH_TOKENS" envSeparator:","`
	CommandTimeout time.Duration     `env:"SEEDCTL_COMMAND_TIMEOUT"`
	Concurrency    string            `env:"SEEDCTL_CONCURRENCY"`
	SkipSeeded     bool              `env:"SEEDCTL_SKIP_SEEDED"`
	LogLevel       string            `env:"SEEDCTL_LOG_LEVEL"`
	Commands       map[string]string
}

type fileConfig struct {
	Name           string            `toml:"name"`
	Addr           string            `toml:"addr"`
	CorsOrigins    []string          `toml:"cors_origins"`
	AuthTokens     []string          `toml:"auth_tokens"`
	CommandTimeout string            `toml:"command_timeout"`
	Concurrency    string            `toml:"concurrency"`
	SkipSeeded     bool              `toml:"skip_seeded"`
	LogLevel       string            `toml:"log_level"`
	Commands       map[string]string `toml:"commands"`
}

func Default() Config {
	return Config{
		Name:           DefaultName,
		Addr:           DefaultAddr,
		CommandTimeout: DefaultCommandTimeout,
		Concurrency:    ConcurrencyReject,
	}
}

// Load resolves defaults, then the TOML file at path (skipped when path is
// empty), then SEEDCTL_* environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := applyFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("name") {
		cfg.Name = raw.Name
	}
	if meta.IsDefined("addr") {
		cfg.Addr = raw.Addr
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("auth_tokens") {
		cfg.AuthTokens = raw.AuthTokens
	}
	if meta.IsDefined("command_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.CommandTimeout))
		if err != nil {
			return fmt.Errorf("parse command_timeout: %w", err)
		}
		cfg.CommandTimeout = d
	}
	if meta.IsDefined("concurrency") {
		cfg.Concurrency = raw.Concurrency
	}
	if meta.IsDefined("skip_seeded") {
		cfg.SkipSeeded = raw.SkipSeeded
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = raw.LogLevel
	}
	if meta.IsDefined("commands") {
		cfg.Commands = raw.Commands
	}
	return nil
}

// normalize applies to file and env values alike.
func (c *Config) normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Addr = strings.TrimSpace(c.Addr)
	c.Concurrency = strings.ToLower(strings.TrimSpace(c.Concurrency))
	c.LogLevel = strings.TrimSpace(c.LogLevel)
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("config missing addr")
	}
	if cfg.CommandTimeout <= 0 {
		return fmt.Errorf("command_timeout must be positive, got %s", cfg.CommandTimeout)
	}
	switch cfg.Concurrency {
	case ConcurrencyReject, ConcurrencyWait:
	default:
		return fmt.Errorf("concurrency must be %q or %q, got %q", ConcurrencyReject, ConcurrencyWait, cfg.Concurrency)
	}
	for key, line := range cfg.Commands {
		if !isSupported(project.Type(key)) {
			return fmt.Errorf("commands.%s: unsupported project type", key)
		}
		if strings.TrimSpace(line) == "" {
			return fmt.Errorf("commands.%s: command is empty", key)
		}
	}
	return nil
}

// CommandOverrides converts the [commands] table into adapter overrides.
func (c Config) CommandOverrides() map[project.Type]string {
	if len(c.Commands) == 0 {
		return nil
	}
	out := make(map[project.Type]string, len(c.Commands))
	for key, line := range c.Commands {
		out[project.Type(key)] = line
	}
	return out
}

// WaitForLease reports whether concurrent seeds of one project should queue.
func (c Config) WaitForLease() bool {
	return c.Concurrency == ConcurrencyWait
}

func isSupported(kind project.Type) bool {
	for _, k := range project.Supported() {
		if k == kind {
			return true
		}
	}
	return false
}
