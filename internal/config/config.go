// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port              string
	FrontendURL       string
	DBPath            string
	IdentityURL       string        // base URL of the identity service (/api/auth/me)
	ResolveTimeout    time.Duration // per session resolution
	ShellTTL          time.Duration // idle time before a device session is torn down
	TTLInterval       time.Duration
	ResumeBuilderPath string
	CookiePrefix      string
	CookieSecure      bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		FrontendURL:       getEnv("FRONTEND_URL", ""),
		DBPath:            getEnv("DB_PATH", "./data/dashboard.db"),
		IdentityURL:       strings.TrimRight(getEnv("IDENTITY_URL", "http://localhost:5001"), "/"),
		ResolveTimeout:    getEnvDuration("RESOLVE_TIMEOUT", 10*time.Second),
		ShellTTL:          getEnvDuration("SHELL_TTL", 60*time.Minute),
		TTLInterval:       getEnvDuration("SHELL_TTL_INTERVAL", time.Minute),
		ResumeBuilderPath: getEnv("RESUME_BUILDER_PATH", "/resume-builder"),
		CookiePrefix:      getEnv("COOKIE_PREFIX", ""),
	}
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", !cfg.IsDevelopment())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	u, err := url.Parse(c.IdentityURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("IDENTITY_URL must be an absolute URL, got %q", c.IdentityURL)
	}
	if c.ResolveTimeout <= 0 {
		return fmt.Errorf("RESOLVE_TIMEOUT must be > 0")
	}
	if c.ShellTTL <= 0 {
		return fmt.Errorf("SHELL_TTL must be > 0")
	}
	if c.TTLInterval <= 0 {
		return fmt.Errorf("SHELL_TTL_INTERVAL must be > 0")
	}
	if !strings.HasPrefix(c.ResumeBuilderPath, "/") {
		return fmt.Errorf("RESUME_BUILDER_PATH must start with /")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins returns the CORS origins for the dashboard.
func (c *Config) AllowedOrigins() []string {
	if c.IsDevelopment() {
		return []string{"*"}
	}
	return []string{c.FrontendURL}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n := getEnvInt(key, -1); n >= 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
