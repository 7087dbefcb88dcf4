package main

import (
	"math"
	"testing"

	"rvmanagement/internal/config"
)

func validConfig() config.Config {
	return config.Config{Env: "production", Port: "8080", DefaultMargin: 0.18}
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("expected default config to pass, got %v", err)
	}

	cfg := validConfig()
	cfg.BackendURL = "https://backend.example.com"
	cfg.BackendToken = "token"
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("expected https backend to pass, got %v", err)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"port":           func(c *config.Config) { c.Port = "http" },
		"negative":       func(c *config.Config) { c.DefaultMargin = -0.1 },
		"huge margin":    func(c *config.Config) { c.DefaultMargin = 11 },
		"nan margin":     func(c *config.Config) { c.DefaultMargin = math.NaN() },
		"scheme":         func(c *config.Config) { c.BackendURL = "ftp://backend" },
		"plain token":    func(c *config.Config) { c.BackendURL = "http://backend"; c.BackendToken = "token" },
		"unparsable url": func(c *config.Config) { c.BackendURL = "http://[::1" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatalf("expected %s to be rejected", name)
			}
		})
	}
}

func TestValidateConfigAllowsPlainHTTPInDev(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "dev"
	cfg.BackendURL = "http://localhost:9000"
	cfg.BackendToken = "token"
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("expected dev http backend to pass, got %v", err)
	}
}
