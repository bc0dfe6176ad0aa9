package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Database.URL != "mongodb://localhost:27017" || cfg.Redis.Port != 6379 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWTTTL != 24*time.Hour || cfg.Modules.LoadTimeout != 10*time.Second {
		t.Fatalf("unexpected durations: ttl=%s timeout=%s", cfg.JWTTTL, cfg.Modules.LoadTimeout)
	}
	if cfg.Modules.Source != "static" || cfg.CSPAdvanced {
		t.Fatalf("unexpected module/csp defaults: %+v", cfg)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoad_SpecEnvironment(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "s3cret",
		"DATABASE_URL": "mongodb://db:27017",
		"REDIS_HOST":   "cache",
		"FRONTEND_URL": "https://app.example.com",
		"CSP_ADVANCED": "true",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.URL != "mongodb://db:27017" || cfg.Redis.Host != "cache" ||
		cfg.FrontendURL != "https://app.example.com" || !cfg.CSPAdvanced {
		t.Fatalf("environment not applied: %+v", cfg)
	}
}

func TestLoad_ModuleSourceValidation(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"MODULES_SOURCE": "http",
	}))
	if err == nil || !strings.Contains(err.Error(), "MODULES_URL") {
		t.Fatalf("expected MODULES_URL error, got %v", err)
	}

	_, err = load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"MODULES_SOURCE": "ftp",
	}))
	if err == nil {
		t.Fatalf("expected unknown source error")
	}
}
