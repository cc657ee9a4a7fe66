package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
databaseURL: postgres://localhost/citriq
jwtSecret: secret
storageDir: ./uploads
sessionTTL: 1h
autoMarkReviewed: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.JWTSecret != "secret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.AutoMarkReviewed {
		t.Fatal("autoMarkReviewed should be true")
	}
	ttl, err := ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		t.Fatalf("parse ttl: %v", err)
	}
	if ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}
}

func TestLoadRejectsMissingRequired(t *testing.T) {
	cases := map[string]string{
		"missing port":      "databaseURL: x\njwtSecret: s\nstorageDir: d\n",
		"missing database":  "port: \"8080\"\njwtSecret: s\nstorageDir: d\n",
		"missing jwtSecret": "port: \"8080\"\ndatabaseURL: x\nstorageDir: d\n",
		"bad backend":       "port: \"8080\"\ndatabaseURL: x\njwtSecret: s\nstorageBackend: tape\n",
		"minio incomplete":  "port: \"8080\"\ndatabaseURL: x\njwtSecret: s\nstorageBackend: minio\n",
	}
	for name, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
databaseURL: from-file
jwtSecret: secret
storageDir: ./uploads
`)
	t.Setenv("DATABASE_URL", "from-env")
	t.Setenv("LOGIN_RATE_LIMIT_PER_MINUTE", "7")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "from-env" {
		t.Fatalf("databaseURL = %q, want env override", cfg.DatabaseURL)
	}
	if cfg.LoginRateLimitPerMinute != 7 {
		t.Fatalf("login rate limit = %d, want 7", cfg.LoginRateLimitPerMinute)
	}
}

func TestParseSessionTTLInvalid(t *testing.T) {
	if _, err := ParseSessionTTL("soon"); err == nil {
		t.Fatal("invalid duration should be rejected")
	}
}
