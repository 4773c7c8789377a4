package config

import (
	"testing"
	"time"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("APP_ENV", "development")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_ACCESS_SECRET is empty")
	}
}

func TestLoadRequiresDatabaseOutsideDevelopment(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing in production")
	}
}

func TestLoadGateDefaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("APP_ENV", "development")
	t.Setenv("CORS_ALLOW_ALL", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetGateMaxAttempts() != 3 {
		t.Errorf("gate attempts = %d, want 3", cfg.GetGateMaxAttempts())
	}
	if cfg.GetGateRetryDelay() != 2*time.Second {
		t.Errorf("gate delay = %s, want 2s", cfg.GetGateRetryDelay())
	}
	if cfg.GetAsynqQueueName() != "automation" {
		t.Errorf("queue = %q, want automation", cfg.GetAsynqQueueName())
	}
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("APP_ENV", "development")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard origins with credentials")
	}
}
