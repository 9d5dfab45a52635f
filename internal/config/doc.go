// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config handles application configuration for docchat.
//
// Configuration lives at ~/.docchat/config.toml (TOML preferred, JSON
// accepted) and covers the backend endpoints, UI preferences, session
// lifecycle, and transcript history. DOCCHAT_* environment variables
// override file values, and a fsnotify-based watcher supports hot
// reload while the TUI is running.
//
// # Key Types
//
//   - Config: root configuration with Server/UI/Session/History sections
//   - Watcher: debounced file watcher for hot reload
//   - ValidationError / ValidateErrors: structured validation failures
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := agent.NewClientWithConfig(cfg.AgentConfig())
package config
