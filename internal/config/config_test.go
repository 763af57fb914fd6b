// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, duration parsing, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

const validConfig = `
server:
  http_addr: "0.0.0.0:8080"

database:
  path: "./test.db"

auth:
  jwt_secret: "test-secret"
  token_validity: "30m"
  basic_authorities: [ADMIN]

principals:
  - username: admin
    password: admin-pass
    authorities: [ADMIN, READ, WRITE]
  - username: public
    password: public-pass
    authorities: [USER, READ]
  - username: ghost
    password: ghost-pass
    authorities: [USER]
    disabled: true

logging:
  level: "debug"
  format: "json"
`

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "test-secret")
	}
	if cfg.Auth.TokenValidity != 30*time.Minute {
		t.Errorf("Auth.TokenValidity = %v, want %v", cfg.Auth.TokenValidity, 30*time.Minute)
	}
	if len(cfg.Auth.BasicAuthorities) != 1 || cfg.Auth.BasicAuthorities[0] != "ADMIN" {
		t.Errorf("Auth.BasicAuthorities = %v, want [ADMIN]", cfg.Auth.BasicAuthorities)
	}
	if len(cfg.Principals) != 3 {
		t.Fatalf("len(Principals) = %d, want 3", len(cfg.Principals))
	}
	if cfg.Principals[0].Username != "admin" {
		t.Errorf("Principals[0].Username = %q, want %q", cfg.Principals[0].Username, "admin")
	}
	if !cfg.Principals[2].Disabled {
		t.Error("Principals[2].Disabled = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_ROSTERD_SECRET", "expanded-secret")
	t.Setenv("TEST_ROSTERD_PASSWORD", "expanded-pass")

	content := strings.ReplaceAll(validConfig, `jwt_secret: "test-secret"`, "jwt_secret: ${TEST_ROSTERD_SECRET}")
	content = strings.ReplaceAll(content, "password: admin-pass", "password: ${TEST_ROSTERD_PASSWORD}")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "expanded-secret" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "expanded-secret")
	}
	if cfg.Principals[0].Password != "expanded-pass" {
		t.Errorf("Principals[0].Password = %q, want %q", cfg.Principals[0].Password, "expanded-pass")
	}
}

func TestLoad_DefaultTokenValidity(t *testing.T) {
	content := strings.ReplaceAll(validConfig, `token_validity: "30m"`, "")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.TokenValidity != defaultTokenValidity {
		t.Errorf("Auth.TokenValidity = %v, want %v", cfg.Auth.TokenValidity, defaultTokenValidity)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	content := strings.ReplaceAll(validConfig, `token_validity: "30m"`, `token_validity: "soon"`)

	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() should have failed on invalid duration")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() should have failed on missing file")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "missing http_addr",
			mutate:  func(s string) string { return strings.ReplaceAll(s, `http_addr: "0.0.0.0:8080"`, "") },
			wantErr: "server.http_addr",
		},
		{
			name:    "missing database path",
			mutate:  func(s string) string { return strings.ReplaceAll(s, `path: "./test.db"`, "") },
			wantErr: "database.path",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(s string) string { return strings.ReplaceAll(s, `jwt_secret: "test-secret"`, "") },
			wantErr: "auth.jwt_secret",
		},
		{
			name: "no principals",
			mutate: func(s string) string {
				idx := strings.Index(s, "principals:")
				end := strings.Index(s, "logging:")
				return s[:idx] + s[end:]
			},
			wantErr: "principal",
		},
		{
			name:    "principal without password",
			mutate:  func(s string) string { return strings.ReplaceAll(s, "    password: ghost-pass\n", "") },
			wantErr: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.mutate(validConfig)))
			if err == nil {
				t.Fatal("Load() should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
