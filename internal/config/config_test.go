package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/pocketledger")
	t.Setenv("AUTH0_DOMAIN", "example.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.pocketledger.test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.S3.Bucket != "category-icons" {
		t.Errorf("Expected default bucket category-icons, got %s", cfg.S3.Bucket)
	}
	if cfg.Redis.Enabled() {
		t.Error("Expected redis cache disabled without REDIS_ADDR")
	}
	if cfg.RateLimit.RequestsPerMinute != 120 || cfg.RateLimit.Burst != 20 {
		t.Errorf("Unexpected rate limit defaults %+v", cfg.RateLimit)
	}
	if !cfg.AutoMigrate {
		t.Error("Expected AutoMigrate default true")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_CATEGORY_TTL", "30s")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("CATEGORY_LOOKUP_CONCURRENCY", "4")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.TTL != 30*time.Second {
		t.Errorf("Unexpected redis config %+v", cfg.Redis)
	}
	if cfg.AutoMigrate {
		t.Error("Expected AutoMigrate false")
	}
	if cfg.LookupConcurrency != 4 {
		t.Errorf("Expected concurrency 4, got %d", cfg.LookupConcurrency)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"database url", "DATABASE_URL"},
		{"auth0 domain", "AUTH0_DOMAIN"},
		{"auth0 audience", "AUTH0_AUDIENCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")
			if _, err := Load(); err == nil {
				t.Errorf("Expected error when %s is missing", tt.unset)
			}
		})
	}
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	setRequired(t)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-1")
	if _, err := Load(); err == nil {
		t.Error("Expected error for negative rate limit")
	}
}
