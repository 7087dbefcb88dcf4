package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEFAULT_MARGIN", "")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("PORT", "")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	if cfg.DefaultMargin != 0.18 {
		t.Fatalf("expected default margin 0.18, got %v", cfg.DefaultMargin)
	}
	if cfg.BackendURL != "" {
		t.Fatalf("expected no backend url, got %q", cfg.BackendURL)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Address())
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DEFAULT_MARGIN", "lots")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "-3")
	t.Setenv("PRODUCT_CACHE_TTL_SECONDS", "x")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	if cfg.DefaultMargin != 0.18 || cfg.BackendTimeoutSeconds != 10 || cfg.ProductCacheTTLSeconds != 30 {
		t.Fatalf("expected fallbacks, got %+v", cfg)
	}
}

func TestLoadReadsEnvFileWithoutOverriding(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_MARGIN", "")
	os.Unsetenv("DEFAULT_MARGIN")

	file := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(file, []byte("PORT=7070\nDEFAULT_MARGIN=0.25\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DEFAULT_MARGIN") })

	cfg := Load(file)
	if cfg.Port != "9090" {
		t.Fatalf("expected existing PORT to win, got %s", cfg.Port)
	}
	if cfg.DefaultMargin != 0.25 {
		t.Fatalf("expected margin from env file, got %v", cfg.DefaultMargin)
	}
}
