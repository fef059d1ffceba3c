package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_PATH", "./data/dashboard.db")
	t.Setenv("IDENTITY_URL", "http://localhost:5001/")
	t.Setenv("RESOLVE_TIMEOUT", "10s")
	t.Setenv("SHELL_TTL", "1h")
	t.Setenv("SHELL_TTL_INTERVAL", "1m")
	t.Setenv("RESUME_BUILDER_PATH", "/resume-builder")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.IdentityURL != "http://localhost:5001" {
		t.Errorf("Expected trailing slash trimmed, got %q", cfg.IdentityURL)
	}
	if cfg.ShellTTL != time.Hour || cfg.ResolveTimeout != 10*time.Second {
		t.Errorf("Unexpected durations: ttl=%v timeout=%v", cfg.ShellTTL, cfg.ResolveTimeout)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development mode without FRONTEND_URL")
	}
	if cfg.CookieSecure {
		t.Error("Expected insecure cookies in development")
	}
}

func TestLoadProductionDefaultsSecureCookies(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://jobs.example.com")
	t.Setenv("IDENTITY_URL", "https://auth.example.com")
	t.Setenv("COOKIE_SECURE", "unset")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.CookieSecure {
		t.Error("Expected secure cookies outside development")
	}
	if got := cfg.AllowedOrigins(); len(got) != 1 || got[0] != "https://jobs.example.com" {
		t.Errorf("Unexpected origins: %v", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:              "8080",
			DBPath:            "x.db",
			IdentityURL:       "http://localhost:5001",
			ResolveTimeout:    time.Second,
			ShellTTL:          time.Hour,
			TTLInterval:       time.Minute,
			ResumeBuilderPath: "/resume-builder",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty port", func(c *Config) { c.Port = "" }, "PORT"},
		{"empty db", func(c *Config) { c.DBPath = "" }, "DB_PATH"},
		{"relative identity", func(c *Config) { c.IdentityURL = "localhost" }, "IDENTITY_URL"},
		{"zero timeout", func(c *Config) { c.ResolveTimeout = 0 }, "RESOLVE_TIMEOUT"},
		{"zero ttl", func(c *Config) { c.ShellTTL = 0 }, "SHELL_TTL"},
		{"zero interval", func(c *Config) { c.TTLInterval = 0 }, "SHELL_TTL_INTERVAL"},
		{"relative resume", func(c *Config) { c.ResumeBuilderPath = "resume" }, "RESUME_BUILDER_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"30s", 30 * time.Second},
		{"15", 15 * time.Second},
		{"bogus", time.Minute},
		{"-5", time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("JOBLINK_TEST_DURATION", tt.value)
			if got := getEnvDuration("JOBLINK_TEST_DURATION", time.Minute); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("JOBLINK_TEST_BOOL", "yes")
	if !getEnvBool("JOBLINK_TEST_BOOL", false) {
		t.Error("Expected yes to parse as true")
	}
	t.Setenv("JOBLINK_TEST_BOOL", "maybe")
	if getEnvBool("JOBLINK_TEST_BOOL", false) {
		t.Error("Expected fallback for unknown value")
	}
}
