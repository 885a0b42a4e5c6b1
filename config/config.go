// Package config loads notion-md settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables that override the file.
const (
	EnvToken    = "NOTION_TOKEN"
	EnvLogLevel = "NOTION_MD_LOG_LEVEL"
)

// ErrMissingToken is returned by RequireToken when no integration token is set.
var ErrMissingToken = errors.New("notion token is not configured (set NOTION_TOKEN or [notion].token)")

// Transports accepted by [server].transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config is the full application configuration.
type Config struct {
	Notion     NotionConfig     `toml:"notion"`
	Server     ServerConfig     `toml:"server"`
	Logging    LoggingConfig    `toml:"logging"`
	Projection ProjectionConfig `toml:"projection"`
	Rewrite    RewriteConfig    `toml:"rewrite"`
}

// NotionConfig configures the API client.
type NotionConfig struct {
	Token             string  `toml:"token"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	Retries           int     `toml:"retries"`
	ReadDepth         int     `toml:"read_depth"`
}

// ServerConfig configures the MCP transport.
type ServerConfig struct {
	Transport string `toml:"transport"`
	Addr      string `toml:"addr"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ProjectionConfig bounds Markdown returned to clients.
type ProjectionConfig struct {
	MaxChars     int `toml:"max_chars"`
	PreviewChars int `toml:"preview_chars"`
}

// RewriteConfig holds rewrite defaults.
type RewriteConfig struct {
	ValidateBeforeDelete bool `toml:"validate_before_delete"`
}

const defaultRetries = 3

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}.applyDefaults()
	cfg.Notion.Retries = defaultRetries
	return cfg
}

// Load reads path (optional) over Default, expands ${VAR} references,
// overlays the environment, fills zero values and validates the result.
// Keys absent from the file keep their defaults, so retries = 0 disables
// retries.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal([]byte(ExpandEnv(string(data))), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg = cfg.applyEnv().applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) applyEnv() Config {
	if token := strings.TrimSpace(os.Getenv(EnvToken)); token != "" {
		c.Notion.Token = token
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.Logging.Level = level
	}
	return c
}

func (c Config) applyDefaults() Config {
	if c.Notion.RequestsPerSecond == 0 {
		c.Notion.RequestsPerSecond = 3
	}
	if c.Notion.Burst == 0 {
		c.Notion.Burst = 3
	}
	if c.Notion.ReadDepth == 0 {
		c.Notion.ReadDepth = 5
	}
	if c.Server.Transport == "" {
		c.Server.Transport = TransportStdio
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Projection.MaxChars == 0 {
		c.Projection.MaxChars = 20000
	}
	if c.Projection.PreviewChars == 0 {
		c.Projection.PreviewChars = 500
	}
	return c
}

// Validate checks every section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Notion),
		validation.Field(&c.Server),
		validation.Field(&c.Logging),
		validation.Field(&c.Projection),
	)
}

// Validate checks the client limits.
func (c NotionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.RequestsPerSecond, validation.Min(0.1), validation.Max(100.0)),
		validation.Field(&c.Burst, validation.Min(1)),
		validation.Field(&c.Retries, validation.Min(0), validation.Max(10)),
		validation.Field(&c.ReadDepth, validation.Min(1), validation.Max(20)),
	)
}

// Validate checks the transport selection.
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Transport, validation.Required, validation.In(TransportStdio, TransportHTTP)),
		validation.Field(&c.Addr, validation.When(c.Transport == TransportHTTP, validation.Required)),
	)
}

func (c LoggingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.Required, validation.In("json", "console")),
	)
}

func (c ProjectionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxChars, validation.Min(1)),
		validation.Field(&c.PreviewChars, validation.Min(1)),
	)
}

// RequireToken returns ErrMissingToken when the Notion token is empty.
func (c Config) RequireToken() error {
	if strings.TrimSpace(c.Notion.Token) == "" {
		return ErrMissingToken
	}
	return nil
}
