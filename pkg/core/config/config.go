// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the gateway configuration from a YAML file, an
// optional .env file and environment overrides. The result is built once
// at startup and treated as read-only afterwards.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leseb/jobsearch-gw/pkg/platform"
	"github.com/leseb/jobsearch-gw/pkg/platform/brightdata"
	"github.com/leseb/jobsearch-gw/pkg/platform/mcptool"
	"github.com/leseb/jobsearch-gw/pkg/platform/proxyllm"
	"github.com/leseb/jobsearch-gw/pkg/platform/searchengine"
)

// Config represents the main configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Completion  CompletionConfig  `yaml:"completion"`
	Platforms   []PlatformConfig  `yaml:"platforms"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Canary      CanaryConfig      `yaml:"canary"`

	// Source is the file the configuration was read from, empty when only
	// defaults and the environment were used.
	Source string `yaml:"-"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// CompletionConfig points at an OpenAI-compatible chat completions backend.
type CompletionConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// PlatformConfig describes one job platform.
type PlatformConfig struct {
	Name    string            `yaml:"name"`
	Kind    string            `yaml:"kind"`
	Active  bool              `yaml:"active"`
	Timeout time.Duration     `yaml:"timeout"`
	Params  map[string]string `yaml:"params"`
}

// RateLimitConfig limits search requests per client IP. Requests 0
// disables limiting.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
	RedisURL string        `yaml:"redis_url"`
	// TrustForwarded limits on the first X-Forwarded-For entry. Enable it
	// only behind a proxy that sets the header.
	TrustForwarded bool `yaml:"trust_forwarded"`
}

// DiagnosticsConfig selects where search reports go.
type DiagnosticsConfig struct {
	Type   string            `yaml:"type"` // none, log, postgres, sqlite, s3
	Params map[string]string `yaml:"params"`
}

// CanaryConfig schedules a periodic search that only feeds logs, metrics
// and diagnostics.
type CanaryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
	Keyword  string `yaml:"keyword"`
}

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "gpt-4-1106-preview"

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3001,
			CORSOrigins:     []string{"http://localhost:3000"},
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    300 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Completion: CompletionConfig{
			Model: DefaultModel,
		},
		Platforms: []PlatformConfig{
			{
				Name:   "LinkedIn",
				Kind:   brightdata.Kind,
				Active: true,
				Params: map[string]string{},
			},
			{
				Name:   "Indeed",
				Kind:   proxyllm.Kind,
				Active: false,
				Params: map[string]string{},
			},
		},
		RateLimit: RateLimitConfig{
			Requests: 60,
			Window:   time.Minute,
		},
		Diagnostics: DiagnosticsConfig{
			Type:   "log",
			Params: map[string]string{},
		},
		Canary: CanaryConfig{
			Schedule: "@every 30m",
			Keyword:  "software engineer",
		},
	}
}

// LoadDotEnv loads variables from a .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. A missing file leaves the defaults in
// place and Source empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.Source = path
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envOverrides lists the environment variables Load honours. Empty values
// leave the file configuration alone.
type envOverrides struct {
	Port       int      `env:"PORT"`
	LogLevel   string   `env:"LOG_LEVEL"`
	LogFormat  string   `env:"LOG_FORMAT"`
	CORSOrigin []string `env:"CORS_ORIGIN" envSeparator:","`

	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	OpenAIEndpoint string `env:"OPENAI_API_ENDPOINT"`
	OpenAIModel    string `env:"OPENAI_MODEL"`

	BrightDataToken    string `env:"BRIGHT_DATA_API_TOKEN"`
	BrightDataUsername string `env:"BRIGHT_DATA_USERNAME"`
	BrightDataPassword string `env:"BRIGHT_DATA_PASSWORD"`
	BrightDataServer   string `env:"BRIGHT_DATA_INDEED_SERVER"`
	BrightDataPort     string `env:"BRIGHT_DATA_PORT"`

	MCPURL          string `env:"MCP_URL"`
	MCPAPIToken     string `env:"API_TOKEN"`
	WebUnlockerZone string `env:"WEB_UNLOCKER_ZONE"`

	BraveAPIKey  string `env:"BRAVE_API_KEY"`
	TavilyAPIKey string `env:"TAVILY_API_KEY"`

	RedisURL        string `env:"REDIS_URL"`
	TrustForwarded  bool   `env:"RATE_LIMIT_TRUST_FORWARDED"`
	DiagnosticsType string `env:"DIAGNOSTICS_TYPE"`
	DiagnosticsDSN  string `env:"DIAGNOSTICS_DSN"`
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if o.Port != 0 {
		cfg.Server.Port = o.Port
	}
	setIf(&cfg.Logging.Level, o.LogLevel)
	setIf(&cfg.Logging.Format, o.LogFormat)
	if len(o.CORSOrigin) > 0 {
		cfg.Server.CORSOrigins = trimAll(o.CORSOrigin)
	}

	setIf(&cfg.Completion.APIKey, o.OpenAIAPIKey)
	setIf(&cfg.Completion.Endpoint, o.OpenAIEndpoint)
	setIf(&cfg.Completion.Model, o.OpenAIModel)

	setIf(&cfg.RateLimit.RedisURL, o.RedisURL)
	if o.TrustForwarded {
		cfg.RateLimit.TrustForwarded = true
	}
	setIf(&cfg.Diagnostics.Type, o.DiagnosticsType)
	if o.DiagnosticsDSN != "" {
		if cfg.Diagnostics.Params == nil {
			cfg.Diagnostics.Params = map[string]string{}
		}
		cfg.Diagnostics.Params["dsn"] = o.DiagnosticsDSN
	}

	// Secrets go into the params of the platforms that use them, so
	// adapters never read the environment themselves.
	for i := range cfg.Platforms {
		p := &cfg.Platforms[i]
		if p.Params == nil {
			p.Params = map[string]string{}
		}
		switch p.Kind {
		case brightdata.Kind:
			setParam(p.Params, "api_token", o.BrightDataToken)
		case proxyllm.Kind:
			setParam(p.Params, "proxy_host", o.BrightDataServer)
			setParam(p.Params, "proxy_port", o.BrightDataPort)
			setParam(p.Params, "proxy_username", o.BrightDataUsername)
			setParam(p.Params, "proxy_password", o.BrightDataPassword)
		case mcptool.Kind:
			setParam(p.Params, "url", o.MCPURL)
			setParam(p.Params, "api_token", o.MCPAPIToken)
			setParam(p.Params, "web_unlocker_zone", o.WebUnlockerZone)
		case searchengine.Kind:
			switch p.Params["provider"] {
			case "tavily":
				setParam(p.Params, "api_key", o.TavilyAPIKey)
			default:
				setParam(p.Params, "api_key", o.BraveAPIKey)
			}
		}
	}

	// ACTIVE_PLATFORMS replaces every active flag, so an empty value
	// switches all platforms off.
	if v, ok := os.LookupEnv("ACTIVE_PLATFORMS"); ok {
		if err := cfg.SetActive(strings.Split(v, ",")); err != nil {
			return fmt.Errorf("ACTIVE_PLATFORMS: %w", err)
		}
	}
	return nil
}

// SetActive marks exactly the named platforms active. Names match case
// insensitively; blank entries are ignored.
func (c *Config) SetActive(names []string) error {
	want := map[string]bool{}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			want[strings.ToLower(n)] = true
		}
	}
	for i := range c.Platforms {
		key := strings.ToLower(c.Platforms[i].Name)
		c.Platforms[i].Active = want[key]
		delete(want, key)
	}
	for n := range want {
		return fmt.Errorf("unknown platform %q", n)
	}
	return nil
}

// Validate checks the configuration for errors that would otherwise only
// show up at search time.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or text", c.Logging.Format))
	}

	seen := map[string]bool{}
	for i, p := range c.Platforms {
		switch {
		case strings.TrimSpace(p.Name) == "":
			errs = append(errs, fmt.Errorf("platforms[%d]: name is required", i))
		case seen[strings.ToLower(p.Name)]:
			errs = append(errs, fmt.Errorf("platforms[%d]: duplicate name %q", i, p.Name))
		}
		seen[strings.ToLower(p.Name)] = true

		if !platform.Providers.Has(p.Kind) {
			errs = append(errs, fmt.Errorf("platforms[%d] %q: unknown kind %q (available: %v)",
				i, p.Name, p.Kind, platform.Providers.Available()))
		}
		if p.Timeout < 0 {
			errs = append(errs, fmt.Errorf("platforms[%d] %q: negative timeout", i, p.Name))
		}
	}

	if c.RateLimit.Requests < 0 {
		errs = append(errs, errors.New("rate_limit.requests must not be negative"))
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit.window must be positive"))
	}
	if c.Canary.Enabled && strings.TrimSpace(c.Canary.Keyword) == "" {
		errs = append(errs, errors.New("canary.keyword is required when the canary is enabled"))
	}
	return errors.Join(errs...)
}

// Specs converts the platform list into build specs, in order.
func (c *Config) Specs() []platform.Spec {
	specs := make([]platform.Spec, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		params := make(map[string]string, len(p.Params))
		for k, v := range p.Params {
			params[k] = v
		}
		specs = append(specs, platform.Spec{
			Name:    p.Name,
			Kind:    p.Kind,
			Active:  p.Active,
			Timeout: p.Timeout,
			Params:  params,
		})
	}
	return specs
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setParam(params map[string]string, key, v string) {
	if v != "" {
		params[key] = v
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
