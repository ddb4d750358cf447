// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/artpar/commercekit/domain/oauth"
)

// Defaults for the hosted platform.
const (
	DefaultAPIURL  = "https://api.europe-west1.gcp.commercetools.com"
	DefaultAuthURL = "https://auth.europe-west1.gcp.commercetools.com/oauth/token"
)

// Config is the root configuration structure.
type Config struct {
	API     APIConfig     `yaml:"api"`
	OAuth   OAuthConfig   `yaml:"oauth"`
	Context ContextConfig `yaml:"context"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig configures the HTTP adapter and the project.
type APIConfig struct {
	URL        string            `yaml:"url"`
	ProjectKey string            `yaml:"project_key"`
	Timeout    time.Duration     `yaml:"timeout"`
	BatchLimit int               `yaml:"batch_limit"` // concurrent calls per batch
	UserAgent  string            `yaml:"user_agent"`
	Headers    map[string]string `yaml:"headers,omitempty"`
}

// OAuthConfig configures token acquisition.
type OAuthConfig struct {
	URL          string        `yaml:"url"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Scopes       []string      `yaml:"scopes"`
	Grant        string        `yaml:"grant"` // "client_credentials" (default), "password", "refresh_token"
	Username     string        `yaml:"username,omitempty"`
	Password     string        `yaml:"password,omitempty"`
	RefreshToken string        `yaml:"refresh_token,omitempty"`
	Leeway       time.Duration `yaml:"leeway"`
}

// Credentials converts the section to domain credentials.
func (c OAuthConfig) Credentials() oauth.Credentials {
	return oauth.Credentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       c.Scopes,
		Grant:        oauth.GrantType(c.Grant),
		Username:     c.Username,
		Password:     c.Password,
		RefreshToken: c.RefreshToken,
	}
}

// ContextConfig configures the model context shared by decoded objects.
type ContextConfig struct {
	Locale    string   `yaml:"locale"`
	Languages []string `yaml:"languages"`
	Graceful  bool     `yaml:"graceful"` // report shape errors instead of failing
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds configuration from YAML. ${VAR} references are expanded
// and COMMERCEKIT_* variables override file values.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	COMMERCEKIT_API_URL         - API base URL (default: DefaultAPIURL)
//	COMMERCEKIT_PROJECT_KEY     - Project key (required)
//	COMMERCEKIT_API_TIMEOUT     - Per-call timeout (default: 30s)
//	COMMERCEKIT_BATCH_LIMIT     - Concurrent calls per batch (default: 8)
//	COMMERCEKIT_AUTH_URL        - Token endpoint (default: DefaultAuthURL)
//	COMMERCEKIT_CLIENT_ID       - OAuth client id (required)
//	COMMERCEKIT_CLIENT_SECRET   - OAuth client secret (required)
//	COMMERCEKIT_SCOPES          - Space or comma separated scopes
//	COMMERCEKIT_LOCALE          - Default locale, e.g. en-US
//	COMMERCEKIT_LANGUAGES       - Comma separated fallback languages
//	COMMERCEKIT_GRACEFUL        - Report shape errors instead of failing
//	COMMERCEKIT_LOG_LEVEL       - Log level: debug, info, warn, error (default: info)
//	COMMERCEKIT_LOG_FORMAT      - Log format: json or console (default: json)
//	COMMERCEKIT_METRICS_ENABLED - Register Prometheus metrics
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	if HasEnvConfig() {
		return LoadFromEnv()
	}
	return nil, fmt.Errorf("no configuration found: provide config file or set COMMERCEKIT_PROJECT_KEY")
}

// HasEnvConfig returns true if essential environment variables are set.
func HasEnvConfig() bool {
	return os.Getenv("COMMERCEKIT_PROJECT_KEY") != ""
}

// applyEnvOverrides applies COMMERCEKIT_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// API configuration
	if v := os.Getenv("COMMERCEKIT_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv("COMMERCEKIT_PROJECT_KEY"); v != "" {
		cfg.API.ProjectKey = v
	}
	if v := os.Getenv("COMMERCEKIT_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv("COMMERCEKIT_BATCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.BatchLimit = n
		}
	}

	// OAuth configuration
	if v := os.Getenv("COMMERCEKIT_AUTH_URL"); v != "" {
		cfg.OAuth.URL = v
	}
	if v := os.Getenv("COMMERCEKIT_CLIENT_ID"); v != "" {
		cfg.OAuth.ClientID = v
	}
	if v := os.Getenv("COMMERCEKIT_CLIENT_SECRET"); v != "" {
		cfg.OAuth.ClientSecret = v
	}
	if v := os.Getenv("COMMERCEKIT_SCOPES"); v != "" {
		cfg.OAuth.Scopes = splitList(v)
	}

	// Context configuration
	if v := os.Getenv("COMMERCEKIT_LOCALE"); v != "" {
		cfg.Context.Locale = v
	}
	if v := os.Getenv("COMMERCEKIT_LANGUAGES"); v != "" {
		cfg.Context.Languages = splitList(v)
	}
	if v := os.Getenv("COMMERCEKIT_GRACEFUL"); v != "" {
		cfg.Context.Graceful = parseBool(v)
	}

	// Logging configuration
	if v := os.Getenv("COMMERCEKIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COMMERCEKIT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("COMMERCEKIT_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

// splitList splits on commas and whitespace.
func splitList(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func setDefaults(cfg *Config) {
	if cfg.API.URL == "" {
		cfg.API.URL = DefaultAPIURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.BatchLimit == 0 {
		cfg.API.BatchLimit = 8
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "commercekit"
	}

	if cfg.OAuth.URL == "" {
		cfg.OAuth.URL = DefaultAuthURL
	}
	if cfg.OAuth.Grant == "" {
		cfg.OAuth.Grant = string(oauth.GrantClientCredentials)
	}
	if len(cfg.OAuth.Scopes) == 0 && cfg.API.ProjectKey != "" {
		cfg.OAuth.Scopes = []string{"manage_project:" + cfg.API.ProjectKey}
	}
	if cfg.OAuth.Leeway == 0 {
		cfg.OAuth.Leeway = oauth.DefaultLeeway
	}

	if cfg.Context.Locale == "" {
		cfg.Context.Locale = "en"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.API.ProjectKey == "" {
		return fmt.Errorf("api.project_key is required")
	}
	if strings.Contains(cfg.API.ProjectKey, "/") {
		return fmt.Errorf("api.project_key must not contain '/', got %q", cfg.API.ProjectKey)
	}
	if err := validateURL("api.url", cfg.API.URL); err != nil {
		return err
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if cfg.API.BatchLimit < 0 {
		return fmt.Errorf("api.batch_limit must not be negative")
	}

	if err := validateURL("oauth.url", cfg.OAuth.URL); err != nil {
		return err
	}
	if !oauth.GrantType(cfg.OAuth.Grant).IsValid() {
		return fmt.Errorf("oauth.grant must be one of: client_credentials, password, refresh_token, got %q", cfg.OAuth.Grant)
	}
	if err := cfg.OAuth.Credentials().Validate(); err != nil {
		return fmt.Errorf("oauth: %w", err)
	}

	if _, err := language.Parse(cfg.Context.Locale); err != nil {
		return fmt.Errorf("context.locale %q: %w", cfg.Context.Locale, err)
	}
	for i, l := range cfg.Context.Languages {
		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("context.languages[%d] %q: %w", i, l, err)
		}
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", field, raw)
	}
	return nil
}
