package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults used when neither the config file nor the environment set a value.
const (
	DefaultServerURL      = "http://localhost:3001"
	DefaultScope          = "openid profile email"
	DefaultDeviceCodePath = "/api/auth/device/code"
	DefaultTokenPath      = "/api/auth/device/token"
	DefaultHTTPTimeout    = 15 * time.Second
	DefaultModel          = "gemini-2.5-flash"
	DefaultAIBaseURL      = "https://generativelanguage.googleapis.com"

	TokenStorageFile     = "file"
	TokenStorageKeychain = "keychain"

	SessionLookupDatabase = "database"
	SessionLookupServer   = "server"
)

var (
	// ErrMissingClientID is returned when no OAuth client identifier is configured.
	ErrMissingClientID = errors.New("client ID is missing: set ECLIPSE_CLIENT_ID, auth.client_id or pass --client-id")
	// ErrMissingServerURL is returned when the authorization server URL is empty.
	ErrMissingServerURL = errors.New("server URL is missing: set ECLIPSE_SERVER_URL, auth.server_url or pass --server-url")
)

// AuthConfig holds the authorization server and local credential settings.
type AuthConfig struct {
	ServerURL          string `toml:"server_url"`
	ClientID           string `toml:"client_id"`
	Scope              string `toml:"scope"`
	DeviceCodePath     string `toml:"device_code_path"`
	TokenPath          string `toml:"token_path"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	TokenStorage       string `toml:"token_storage"`
	TokenFile          string `toml:"token_file"`
	NoBrowser          bool   `toml:"no_browser"`
}

// DatabaseConfig points at the relational store holding users, sessions and conversations.
type DatabaseConfig struct {
	URL           string `toml:"url"`
	SessionLookup string `toml:"session_lookup"`
}

// AIConfig configures the streaming text-generation service.
type AIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Config holds all eclipse configuration. It is resolved once at startup and passed by
// value to the components that need it.
type Config struct {
	Auth     AuthConfig     `toml:"auth"`
	Database DatabaseConfig `toml:"database"`
	AI       AIConfig       `toml:"ai"`
}

// HTTPTimeout returns the per-request timeout for authorization server calls.
func (c AuthConfig) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds > 0 {
		return time.Duration(c.HTTPTimeoutSeconds) * time.Second
	}
	return DefaultHTTPTimeout
}

// Validate reports configuration errors that must stop a login before any network call.
func (c AuthConfig) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return ErrMissingServerURL
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return ErrMissingClientID
	}
	switch c.TokenStorage {
	case TokenStorageFile, TokenStorageKeychain:
	default:
		return fmt.Errorf("unknown token storage %q (want %q or %q)", c.TokenStorage, TokenStorageFile, TokenStorageKeychain)
	}
	return nil
}

// SessionLookupOrDefault picks the session lookup backend: the database when a URL is
// configured, the authorization server otherwise.
func (c DatabaseConfig) SessionLookupOrDefault() string {
	if c.SessionLookup != "" {
		return c.SessionLookup
	}
	if c.URL != "" {
		return SessionLookupDatabase
	}
	return SessionLookupServer
}

// LoadFrom reads configuration from the given TOML file path.
// If the file does not exist, it returns the defaults without error.
// Environment variables always take precedence over file values:
//   - ECLIPSE_SERVER_URL            overrides auth.server_url
//   - ECLIPSE_CLIENT_ID             overrides auth.client_id (GITHUB_CLIENT_ID is a fallback)
//   - ECLIPSE_TOKEN_STORAGE         overrides auth.token_storage
//   - ECLIPSE_NO_BROWSER=true       sets auth.no_browser
//   - DATABASE_URL                  overrides database.url
//   - GOOGLE_GENERATIVE_AI_API_KEY  overrides ai.api_key
//   - ECLIPSE_MODEL                 overrides ai.model
func LoadFrom(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding config %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// DefaultConfigPath returns the default path for the eclipse config file.
// ECLIPSE_CONFIG takes precedence.
func DefaultConfigPath() string {
	if v := os.Getenv("ECLIPSE_CONFIG"); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "eclipse", "config.toml")
}

// DefaultTokenFile returns the default location of the stored credential.
func DefaultTokenFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".better-auth", "token.json")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ECLIPSE_SERVER_URL"); v != "" {
		cfg.Auth.ServerURL = v
	}
	if v := os.Getenv("ECLIPSE_CLIENT_ID"); v != "" {
		cfg.Auth.ClientID = v
	} else if v := os.Getenv("GITHUB_CLIENT_ID"); v != "" && cfg.Auth.ClientID == "" {
		cfg.Auth.ClientID = v
	}
	if v := os.Getenv("ECLIPSE_TOKEN_STORAGE"); v != "" {
		cfg.Auth.TokenStorage = v
	}
	if strings.EqualFold(os.Getenv("ECLIPSE_NO_BROWSER"), "true") {
		cfg.Auth.NoBrowser = true
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("ECLIPSE_MODEL"); v != "" {
		cfg.AI.Model = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Auth.ServerURL == "" {
		cfg.Auth.ServerURL = DefaultServerURL
	}
	if cfg.Auth.Scope == "" {
		cfg.Auth.Scope = DefaultScope
	}
	if cfg.Auth.DeviceCodePath == "" {
		cfg.Auth.DeviceCodePath = DefaultDeviceCodePath
	}
	if cfg.Auth.TokenPath == "" {
		cfg.Auth.TokenPath = DefaultTokenPath
	}
	if cfg.Auth.TokenStorage == "" {
		cfg.Auth.TokenStorage = TokenStorageFile
	}
	if cfg.Auth.TokenFile == "" {
		cfg.Auth.TokenFile = DefaultTokenFile()
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = DefaultModel
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = DefaultAIBaseURL
	}
}

// Save writes cfg to the given TOML file path, creating parent directories as needed.
// Existing file contents are overwritten. Permissions on the written file are 0600.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	if encErr := toml.NewEncoder(f).Encode(cfg); encErr != nil {
		f.Close()
		return encErr
	}
	return f.Close()
}
