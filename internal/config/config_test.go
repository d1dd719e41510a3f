package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("AUTH_TOKEN_TTL_HOURS", "")
	t.Setenv("STORAGE_MAX_UPLOAD_BYTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "5001" {
		t.Fatalf("expected default port 5001, got %s", cfg.App.Port)
	}
	if cfg.Auth.TokenTTL() != 7*24*time.Hour {
		t.Fatalf("expected 7 day token ttl, got %s", cfg.Auth.TokenTTL())
	}
	if cfg.Storage.MaxUploadBytes != 5*1024*1024 {
		t.Fatalf("expected 5MiB upload limit, got %d", cfg.Storage.MaxUploadBytes)
	}
	if cfg.HTTP.RateLimitWindow() != 15*time.Minute {
		t.Fatalf("expected 15m throttle window, got %s", cfg.HTTP.RateLimitWindow())
	}
}

func TestLoadYAMLOverlayLosesToEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "APP_PORT: \"6000\"\nLOG_LEVEL: \"debug\"\nHTTP_CORS_ORIGINS: \"https://a.example, https://b.example\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("APP_PORT", "")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("HTTP_CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "6000" {
		t.Fatalf("expected port from file, got %s", cfg.App.Port)
	}
	if cfg.Logger.Level != "warn" {
		t.Fatalf("expected env to win over file, got %s", cfg.Logger.Level)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 || cfg.HTTP.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.HTTP.CORSOrigins)
	}
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected production config without secret to fail")
	}
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", "")
	t.Setenv("REDIS_DB", "zero")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid REDIS_DB to fail")
	}
}
