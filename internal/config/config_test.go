package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ECLIPSE_SERVER_URL", "ECLIPSE_CLIENT_ID", "GITHUB_CLIENT_ID", "ECLIPSE_TOKEN_STORAGE",
		"ECLIPSE_NO_BROWSER", "DATABASE_URL", "GOOGLE_GENERATIVE_AI_API_KEY", "ECLIPSE_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := `
[auth]
server_url = "https://auth.example.com"
client_id = "cli_from_file"
http_timeout_seconds = 7

[database]
url = "postgres://localhost/eclipse"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.ServerURL != "https://auth.example.com" {
		t.Errorf("expected server URL from file, got '%s'", cfg.Auth.ServerURL)
	}
	if cfg.Auth.ClientID != "cli_from_file" {
		t.Errorf("expected client id 'cli_from_file', got '%s'", cfg.Auth.ClientID)
	}
	if cfg.Auth.HTTPTimeout() != 7*time.Second {
		t.Errorf("expected 7s timeout, got %s", cfg.Auth.HTTPTimeout())
	}
	if cfg.Database.SessionLookupOrDefault() != config.SessionLookupDatabase {
		t.Errorf("expected database lookup when a URL is set, got %s", cfg.Database.SessionLookupOrDefault())
	}
}

func TestLoad_EnvVarsTakePrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := `
[auth]
client_id = "cli_from_file"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ECLIPSE_CLIENT_ID", "cli_from_env")
	t.Setenv("ECLIPSE_SERVER_URL", "https://auth.myco.com")
	t.Setenv("ECLIPSE_TOKEN_STORAGE", "keychain")

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.ClientID != "cli_from_env" {
		t.Errorf("expected env client id, got '%s'", cfg.Auth.ClientID)
	}
	if cfg.Auth.ServerURL != "https://auth.myco.com" {
		t.Errorf("expected env server URL, got '%s'", cfg.Auth.ServerURL)
	}
	if cfg.Auth.TokenStorage != config.TokenStorageKeychain {
		t.Errorf("expected keychain storage, got '%s'", cfg.Auth.TokenStorage)
	}
}

func TestLoad_GitHubClientIDIsFallbackOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_CLIENT_ID", "gh_client")

	cfg, err := config.LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("missing file should not be an error, got: %v", err)
	}
	if cfg.Auth.ClientID != "gh_client" {
		t.Errorf("expected fallback client id, got '%s'", cfg.Auth.ClientID)
	}
}

func TestLoad_MissingFileAppliesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("missing file should not be an error, got: %v", err)
	}
	if cfg.Auth.ServerURL != config.DefaultServerURL {
		t.Errorf("expected default server URL, got '%s'", cfg.Auth.ServerURL)
	}
	if cfg.Auth.TokenStorage != config.TokenStorageFile {
		t.Errorf("expected file storage by default, got '%s'", cfg.Auth.TokenStorage)
	}
	if cfg.Auth.HTTPTimeout() != config.DefaultHTTPTimeout {
		t.Errorf("expected default timeout, got %s", cfg.Auth.HTTPTimeout())
	}
	if cfg.Database.SessionLookupOrDefault() != config.SessionLookupServer {
		t.Errorf("expected server lookup without a database, got %s", cfg.Database.SessionLookupOrDefault())
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	valid := config.AuthConfig{ServerURL: "http://x", ClientID: "id", TokenStorage: config.TokenStorageFile}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	noClient := valid
	noClient.ClientID = "  "
	if err := noClient.Validate(); !errors.Is(err, config.ErrMissingClientID) {
		t.Errorf("expected ErrMissingClientID, got %v", err)
	}

	noServer := valid
	noServer.ServerURL = ""
	if err := noServer.Validate(); !errors.Is(err, config.ErrMissingServerURL) {
		t.Errorf("expected ErrMissingServerURL, got %v", err)
	}

	badStorage := valid
	badStorage.TokenStorage = "floppy"
	if err := badStorage.Validate(); err == nil {
		t.Error("expected error for unknown token storage")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	var cfg config.Config
	cfg.Auth.ClientID = "saved_client"
	cfg.Auth.ServerURL = "https://saved.example.com"

	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %o", info.Mode().Perm())
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Auth.ClientID != "saved_client" || loaded.Auth.ServerURL != "https://saved.example.com" {
		t.Errorf("unexpected round trip result: %+v", loaded.Auth)
	}
}
