// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config handles application configuration for docchat.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/docchat-tui/internal/agent"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the root configuration for docchat.
type Config struct {
	Server  ServerConfig  `toml:"server" json:"server"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Session SessionConfig `toml:"session" json:"session"`
	History HistoryConfig `toml:"history" json:"history"`
}

// ServerConfig describes the backend endpoints.
type ServerConfig struct {
	// UploadBaseURL is the base URL of the file upload service.
	UploadBaseURL string `toml:"upload_base_url" json:"upload_base_url"`

	// ChatBaseURL is the base URL of the chat/agent service.
	ChatBaseURL string `toml:"chat_base_url" json:"chat_base_url"`

	// AppName identifies the backend agent application.
	AppName string `toml:"app_name" json:"app_name"`

	// UserID identifies the calling user to the backend.
	UserID string `toml:"user_id" json:"user_id"`

	// TimeoutSeconds bounds non-streaming requests (session init, upload).
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds"`
}

// UIConfig holds display preferences.
type UIConfig struct {
	// Theme selects the color theme: "dark", "light".
	Theme string `toml:"theme" json:"theme"`

	// RenderMarkdown enables glamour rendering of assistant output.
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`

	// ShowStatusBar toggles the status bar at the bottom of the TUI.
	ShowStatusBar bool `toml:"show_status_bar" json:"show_status_bar"`
}

// SessionConfig holds session lifecycle settings.
type SessionConfig struct {
	// IdleTimeoutMinutes is how long before an idle session warns and expires.
	IdleTimeoutMinutes int `toml:"idle_timeout_minutes" json:"idle_timeout_minutes"`

	// AutoSave enables periodic transcript saving.
	AutoSave bool `toml:"auto_save" json:"auto_save"`
}

// HistoryConfig holds transcript persistence settings.
type HistoryConfig struct {
	// Enabled toggles transcript persistence entirely.
	Enabled bool `toml:"enabled" json:"enabled"`

	// DatabasePath overrides the history database location.
	// Empty means ~/.docchat/history.db.
	DatabasePath string `toml:"database_path" json:"database_path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			UploadBaseURL:  "http://127.0.0.1:8000",
			ChatBaseURL:    "http://127.0.0.1:8000",
			AppName:        "doc_agent",
			UserID:         "user",
			TimeoutSeconds: 60,
		},
		UI: UIConfig{
			Theme:          "dark",
			RenderMarkdown: true,
			ShowStatusBar:  true,
		},
		Session: SessionConfig{
			IdleTimeoutMinutes: 30,
			AutoSave:           true,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// fillDefaults replaces zero values with defaults after a partial load.
func fillDefaults(cfg *Config) error {
	def := Default()
	if cfg.Server.UploadBaseURL == "" {
		cfg.Server.UploadBaseURL = def.Server.UploadBaseURL
	}
	if cfg.Server.ChatBaseURL == "" {
		cfg.Server.ChatBaseURL = def.Server.ChatBaseURL
	}
	if cfg.Server.AppName == "" {
		cfg.Server.AppName = def.Server.AppName
	}
	if cfg.Server.UserID == "" {
		cfg.Server.UserID = def.Server.UserID
	}
	if cfg.Server.TimeoutSeconds == 0 {
		cfg.Server.TimeoutSeconds = def.Server.TimeoutSeconds
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = def.UI.Theme
	}
	if cfg.Session.IdleTimeoutMinutes == 0 {
		cfg.Session.IdleTimeoutMinutes = def.Session.IdleTimeoutMinutes
	}
	return nil
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the docchat configuration directory (~/.docchat).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".docchat"), nil
}

// ConfigPathTOML returns the path of the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path of the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from disk, preferring TOML over JSON and
// falling back to defaults when neither file exists. Environment
// overrides apply on top of whatever was loaded.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finishLoad(cfg)
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# docchat configuration file")
	fmt.Fprintln(file, "# Generated by docchat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	for _, endpoint := range []struct {
		field string
		value string
	}{
		{"server.upload_base_url", c.Server.UploadBaseURL},
		{"server.chat_base_url", c.Server.ChatBaseURL},
	} {
		u, err := url.Parse(endpoint.value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   endpoint.field,
				Message: fmt.Sprintf("invalid URL %q, must include scheme and host", endpoint.value),
			})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{
				Field:   endpoint.field,
				Message: fmt.Sprintf("unsupported scheme %q, must be http or https", u.Scheme),
			})
		}
	}

	if c.Server.AppName == "" {
		errs = append(errs, ValidationError{Field: "server.app_name", Message: "must not be empty"})
	}
	if c.Server.UserID == "" {
		errs = append(errs, ValidationError{Field: "server.user_id", Message: "must not be empty"})
	}
	if c.Server.TimeoutSeconds < 0 {
		errs = append(errs, ValidationError{Field: "server.timeout_seconds", Message: "must not be negative"})
	}
	if c.Session.IdleTimeoutMinutes < 0 {
		errs = append(errs, ValidationError{Field: "session.idle_timeout_minutes", Message: "must not be negative"})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies DOCCHAT_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOCCHAT_UPLOAD_URL"); v != "" {
		c.Server.UploadBaseURL = v
	}
	if v := os.Getenv("DOCCHAT_CHAT_URL"); v != "" {
		c.Server.ChatBaseURL = v
	}
	if v := os.Getenv("DOCCHAT_APP"); v != "" {
		c.Server.AppName = v
	}
	if v := os.Getenv("DOCCHAT_USER"); v != "" {
		c.Server.UserID = v
	}
	if v := os.Getenv("DOCCHAT_NO_HISTORY"); v != "" {
		c.History.Enabled = !(v == "1" || strings.EqualFold(v, "true"))
	}
	if v := os.Getenv("DOCCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// AgentConfig converts the server section into an agent client
// configuration.
func (c *Config) AgentConfig() *agent.ClientConfig {
	return &agent.ClientConfig{
		UploadBaseURL: c.Server.UploadBaseURL,
		ChatBaseURL:   c.Server.ChatBaseURL,
		AppName:       c.Server.AppName,
		UserID:        c.Server.UserID,
		Timeout:       time.Duration(c.Server.TimeoutSeconds) * time.Second,
	}
}

// SessionTimeout returns the idle timeout as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutMinutes) * time.Minute
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as TOML for display.
func (c *Config) String() string {
	var b strings.Builder
	encoder := toml.NewEncoder(&b)
	if err := encoder.Encode(c); err != nil {
		return fmt.Sprintf("error encoding config: %v", err)
	}
	return b.String()
}
