package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://api.marketplace.example/api" {
		t.Fatalf("unexpected API base URL: %q", cfg.API.BaseURL)
	}

	if got := cfg.API.Timeout; got != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %v", got)
	}

	if cfg.Storage.Backend != "sqlite" {
		t.Fatalf("expected default sqlite backend, got %q", cfg.Storage.Backend)
	}

	if cfg.App.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.App.LogLevel)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAPIBaseURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAPIBaseURL, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsUnknownStorageBackend(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartStorage, "parchment")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown storage backend to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvAPIBaseURL, "https://api.marketplace.example/api")
	t.Setenv(EnvCartStorage, "sqlite")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
