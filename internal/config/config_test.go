package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.DatabaseDriver)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	content := "DATABASE_URL=postgres://localhost/games\nJWT_SECRET=abc\nPORT=9090\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7070")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/games" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Port != "7070" {
		t.Errorf("env should override file, got port %q", cfg.Port)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Errorf("driver default = %q", cfg.DatabaseDriver)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{DatabaseDriver: "postgres", DatabaseURL: "x", JWTSecret: "y"}, false},
		{"bad driver", Config{DatabaseDriver: "mysql", DatabaseURL: "x", JWTSecret: "y"}, true},
		{"missing url", Config{DatabaseDriver: "sqlite", JWTSecret: "y"}, true},
		{"missing secret", Config{DatabaseDriver: "sqlite", DatabaseURL: "x"}, true},
		{"bad gin mode", Config{DatabaseDriver: "sqlite", DatabaseURL: "x", JWTSecret: "y", GinMode: "prod"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
