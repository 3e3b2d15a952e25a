package configuration

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"server": {"app_port": 8080, "socket_port": 8081, "socket_route": "ws"},
		"mongo": {"uri": "mongodb://localhost:27017", "database": "chatline"},
		"auth": {"jwt_secret": "file-secret", "token_ttl_hours": 12},
		"cors": {"allowed_origins": ["http://localhost:3000"]}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.AppPort != 8080 || cfg.Server.SocketPort != 8081 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.SocketRoute != "ws" {
		t.Errorf("socket_route = %q", cfg.Server.SocketRoute)
	}
	if cfg.Auth.JwtSecret != "file-secret" || cfg.Auth.TokenTTLHours != 12 {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if len(cfg.Cors.AllowedOrigins) != 1 {
		t.Errorf("cors = %+v", cfg.Cors)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `{"auth": {"jwt_secret": "s"}}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.SocketRoute != "socket" {
		t.Errorf("socket_route = %q, want default", cfg.Server.SocketRoute)
	}
	if cfg.Auth.TokenTTLHours != 48 {
		t.Errorf("token_ttl_hours = %d, want default 48", cfg.Auth.TokenTTLHours)
	}
}

func TestLoadConfigEnvSecretWins(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	path := writeConfigFile(t, `{"auth": {"jwt_secret": "file-secret"}}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Auth.JwtSecret != "env-secret" {
		t.Errorf("jwt_secret = %q, want env override", cfg.Auth.JwtSecret)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("missing file must error")
	}
}

func TestLoadConfigMalformedJSON(t *testing.T) {
	path := writeConfigFile(t, `{not json`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("malformed json must error")
	}
}
