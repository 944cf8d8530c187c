package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"

	pe "github.com/zhubert/parley/internal/errors"
)

const (
	// DefaultAPIURL is the conversation service base used when nothing else is configured.
	DefaultAPIURL = "http://localhost:8080/api"

	// DefaultRequestTimeout bounds every request to the conversation service.
	DefaultRequestTimeout = 60 * time.Second

	// Environment overrides. A .env file in the working directory is read first.
	EnvAPIURL  = "PARLEY_API_URL"
	EnvToken   = "PARLEY_TOKEN"
	EnvTimeout = "PARLEY_REQUEST_TIMEOUT"
)

// Config holds the application configuration
type Config struct {
	APIURL               string `json:"api_url,omitempty"`                 // Base URL of the conversation service
	Theme                string `json:"theme,omitempty"`                   // UI theme name (e.g., "dark-purple", "nord")
	NotificationsEnabled bool   `json:"notifications_enabled,omitempty"`   // Desktop notifications when a reply arrives
	RequestTimeoutSecs   int    `json:"request_timeout_seconds,omitempty"` // Per-request timeout; 0 means default
	WelcomeShown         bool   `json:"welcome_shown,omitempty"`           // Whether the help modal has been shown once

	mu       sync.RWMutex
	filePath string

	// Env values are applied over the file but never saved back to it.
	envAPIURL  string
	envTimeout int

	// flagAPIURL comes from the command line and wins over everything.
	flagAPIURL string

	// ephemeral configs are never written to disk.
	ephemeral bool
}

// NewEphemeral returns a default config that Save leaves on disk untouched.
// Demo recordings use it so they neither read nor change the user's settings.
func NewEphemeral() *Config {
	return &Config{ephemeral: true}
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or creates a new one if it doesn't exist.
// Environment variables (and a .env file) override values from disk.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg := &Config{filePath: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, pe.ConfigLoadFailed(path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, pe.ConfigLoadFailed(path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv reads overrides from the environment. Not thread-safe; only
// called from Load before the Config is shared.
func (c *Config) applyEnv() error {
	// A missing .env is the common case.
	_ = godotenv.Load()

	c.envAPIURL = os.Getenv(EnvAPIURL)
	if raw := os.Getenv(EnvTimeout); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return pe.ConfigInvalid(fmt.Sprintf("%s must be a positive number of seconds, got %q", EnvTimeout, raw))
		}
		c.envTimeout = secs
	}
	return nil
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.RequestTimeoutSecs < 0 {
		return pe.ConfigInvalid(fmt.Sprintf("request_timeout_seconds must not be negative, got %d", c.RequestTimeoutSecs))
	}
	for _, raw := range []string{c.APIURL, c.envAPIURL} {
		if raw == "" {
			continue
		}
		if err := validateAPIURL(raw); err != nil {
			return err
		}
	}
	return nil
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return pe.ConfigInvalid(fmt.Sprintf("api_url %q: %v", raw, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return pe.ConfigInvalid(fmt.Sprintf("api_url %q must use http or https", raw))
	}
	if u.Host == "" {
		return pe.ConfigInvalid(fmt.Sprintf("api_url %q has no host", raw))
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.ephemeral {
		return nil
	}

	dir, err := configDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return pe.ConfigSaveFailed(dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	path := c.filePath
	if path == "" {
		path = filepath.Join(dir, "config.json")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return pe.ConfigSaveFailed(path, err)
	}
	return nil
}

// GetAPIURL returns the effective API base URL: flag, env, then file, then default.
func (c *Config) GetAPIURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.flagAPIURL != "":
		return c.flagAPIURL
	case c.envAPIURL != "":
		return c.envAPIURL
	case c.APIURL != "":
		return c.APIURL
	default:
		return DefaultAPIURL
	}
}

// SetAPIURL sets the API base URL saved to disk
func (c *Config) SetAPIURL(raw string) error {
	if err := validateAPIURL(raw); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.APIURL = raw
	return nil
}

// OverrideAPIURL sets the API base URL for this run only. It is never saved.
func (c *Config) OverrideAPIURL(raw string) error {
	if err := validateAPIURL(raw); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flagAPIURL = raw
	return nil
}

// GetRequestTimeout returns the effective per-request timeout
func (c *Config) GetRequestTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.envTimeout > 0:
		return time.Duration(c.envTimeout) * time.Second
	case c.RequestTimeoutSecs > 0:
		return time.Duration(c.RequestTimeoutSecs) * time.Second
	default:
		return DefaultRequestTimeout
	}
}

// HasSeenWelcome returns whether the welcome help has been shown
func (c *Config) HasSeenWelcome() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.WelcomeShown
}

// MarkWelcomeShown marks the welcome help as shown
func (c *Config) MarkWelcomeShown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.WelcomeShown = true
}

// GetTheme returns the current theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme sets the current theme name
func (c *Config) SetTheme(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = theme
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}
