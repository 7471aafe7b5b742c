package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func required(t *testing.T) {
	t.Setenv("VAQUEJADA_JWT_SECRET", "s3cret")
	t.Setenv("VAQUEJADA_PAYMENT_URL", "http://pay.local/")
}

func TestLoad_Defaults(t *testing.T) {
	required(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8081 || cfg.DBPath != "vaquejada.db" || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.DraftTTL != 30*time.Minute || cfg.PaymentTimeout != 10*time.Second {
		t.Errorf("unexpected durations %+v", cfg)
	}
	if cfg.PaymentURL != "http://pay.local" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.PaymentURL)
	}
	if cfg.Addr() != ":8081" {
		t.Errorf("expected :8081, got %s", cfg.Addr())
	}
}

func TestLoad_EnvAndFlags(t *testing.T) {
	required(t)
	t.Setenv("VAQUEJADA_PORT", "9000")
	t.Setenv("VAQUEJADA_REDIS_ADDR", "localhost:6379")
	t.Setenv("VAQUEJADA_DRAFT_TTL", "5m")

	cfg, err := Load([]string{"--port", "9100", "--log-level", "debug"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("expected flag to win, got %d", cfg.Port)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.DraftTTL != 5*time.Minute || cfg.LogLevel != "debug" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("VAQUEJADA_PAYMENT_URL", "http://pay.local")
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("VAQUEJADA_JWT_SECRET=from-file\nVAQUEJADA_DB=/tmp/x.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("VAQUEJADA_JWT_SECRET")
		os.Unsetenv("VAQUEJADA_DB")
	})

	cfg, err := Load(nil, envFile, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.JWTSecret != "from-file" || cfg.DBPath != "/tmp/x.db" {
		t.Errorf("expected values from .env, got %+v", cfg)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing secret", map[string]string{"VAQUEJADA_PAYMENT_URL": "http://p"}, nil},
		{"missing payment url", map[string]string{"VAQUEJADA_JWT_SECRET": "s"}, nil},
		{"bad port", map[string]string{"VAQUEJADA_JWT_SECRET": "s", "VAQUEJADA_PAYMENT_URL": "http://p"}, []string{"--port", "0"}},
		{"unknown flag", map[string]string{"VAQUEJADA_JWT_SECRET": "s", "VAQUEJADA_PAYMENT_URL": "http://p"}, []string{"--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VAQUEJADA_JWT_SECRET", "")
			t.Setenv("VAQUEJADA_PAYMENT_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_VersionSkipsValidation(t *testing.T) {
	t.Setenv("VAQUEJADA_JWT_SECRET", "")

	cfg, err := Load([]string{"--version"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.ShowVersion {
		t.Error("expected ShowVersion")
	}
}
