// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config handles application configuration for docchat.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// DEFAULT TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.AppName != "doc_agent" {
		t.Errorf("AppName = %q, want doc_agent", cfg.Server.AppName)
	}
	if cfg.Server.UserID != "user" {
		t.Errorf("UserID = %q, want user", cfg.Server.UserID)
	}
	if !strings.HasPrefix(cfg.Server.ChatBaseURL, "http") {
		t.Errorf("ChatBaseURL = %q", cfg.Server.ChatBaseURL)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidateRejectsBadURL(t *testing.T) {
	cfg := Default()
	cfg.Server.ChatBaseURL = "not a url"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted a bad URL")
	}
	var errs ValidateErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error type = %T", err)
	}
	if !strings.Contains(errs.Error(), "chat_base_url") {
		t.Errorf("error = %v, want chat_base_url field named", errs)
	}
}

func TestValidateRejectsBadScheme(t *testing.T) {
	cfg := Default()
	cfg.Server.UploadBaseURL = "ftp://example.com"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted ftp scheme")
	}
}

func TestValidateRejectsBadTheme(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "solarized"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted unknown theme")
	}
}

// =============================================================================
// LOAD / SAVE TESTS
// =============================================================================

func TestSaveAndLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.ChatBaseURL = "http://chat.example.com:9000"
	cfg.Server.AppName = "contracts_agent"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Server.ChatBaseURL != "http://chat.example.com:9000" {
		t.Errorf("ChatBaseURL = %q", loaded.Server.ChatBaseURL)
	}
	if loaded.Server.AppName != "contracts_agent" {
		t.Errorf("AppName = %q", loaded.Server.AppName)
	}
}

func TestLoadPartialTOMLFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "[server]\nchat_base_url = \"http://10.0.0.5:8000\"\n"
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.ChatBaseURL != "http://10.0.0.5:8000" {
		t.Errorf("ChatBaseURL = %q", cfg.Server.ChatBaseURL)
	}
	if cfg.Server.AppName != "doc_agent" {
		t.Errorf("AppName = %q, want default filled in", cfg.Server.AppName)
	}
	if cfg.Server.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want default 60", cfg.Server.TimeoutSeconds)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Server.UserID = "analyst"
	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Server.UserID != "analyst" {
		t.Errorf("UserID = %q", loaded.Server.UserID)
	}
}

// =============================================================================
// ENV OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DOCCHAT_CHAT_URL", "http://override:8000")
	t.Setenv("DOCCHAT_APP", "override_agent")
	t.Setenv("DOCCHAT_NO_HISTORY", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.ChatBaseURL != "http://override:8000" {
		t.Errorf("ChatBaseURL = %q", cfg.Server.ChatBaseURL)
	}
	if cfg.Server.AppName != "override_agent" {
		t.Errorf("AppName = %q", cfg.Server.AppName)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want disabled via env")
	}
}

// =============================================================================
// BRIDGE TESTS
// =============================================================================

func TestAgentConfig(t *testing.T) {
	cfg := Default()
	cfg.Server.ChatBaseURL = "http://chat:8000"
	cfg.Server.UploadBaseURL = "http://upload:8000"

	ac := cfg.AgentConfig()

	if ac.ChatBaseURL != "http://chat:8000" || ac.UploadBaseURL != "http://upload:8000" {
		t.Errorf("agent config = %+v", ac)
	}
	if ac.AppName != "doc_agent" || ac.UserID != "user" {
		t.Errorf("agent identity = %q/%q", ac.AppName, ac.UserID)
	}
}
