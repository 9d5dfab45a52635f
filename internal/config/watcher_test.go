// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	require.NoError(t, SaveTOML(cfg, path))

	var mu sync.Mutex
	var got *Config
	w, err := NewWatcher(path, func(next *Config) {
		mu.Lock()
		got = next
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Close()

	cfg.Server.AppName = "contracts_agent"
	require.NoError(t, SaveTOML(cfg, path))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.Server.AppName == "contracts_agent"
	}, 5*time.Second, 50*time.Millisecond, "watcher never delivered reloaded config")
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	var mu sync.Mutex
	calls := 0
	w, err := NewWatcher(path, func(*Config) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Close()

	other := Default()
	other.Server.AppName = "unrelated"
	require.NoError(t, SaveTOML(other, filepath.Join(dir, "other.toml")))

	time.Sleep(600 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls, "watcher fired for an unrelated file")
}

func TestWatcherSurvivesBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	w, err := NewWatcher(path, func(*Config) {})
	require.NoError(t, err)
	defer w.Close()

	// A half-saved file must not kill the watcher.
	require.NoError(t, os.WriteFile(path, []byte("[server\nbroken"), 0600))
	time.Sleep(600 * time.Millisecond)

	cfg := Default()
	cfg.Server.AppName = "recovered_agent"
	require.NoError(t, SaveTOML(cfg, path))

	// The watcher keeps processing events after the bad parse.
	assert.Eventually(t, func() bool {
		loaded, err := LoadFromPath(path)
		return err == nil && loaded.Server.AppName == "recovered_agent"
	}, 5*time.Second, 50*time.Millisecond)
}
