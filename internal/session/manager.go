// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the active backend session and its lifecycle.
package session

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/agent"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager wraps the backend session handle with client-side lifecycle
// state: activity tracking, idle timeout, and auto-save scheduling.
//
// The backend handle is attached once CreateSession succeeds; until then
// the manager tracks local state only, so the UI can come up before the
// backend is reachable.
type Manager struct {
	mu sync.Mutex

	// Backend handle, nil until the session is registered
	handle *agent.Session

	// Local tracking
	startTime    time.Time
	lastActivity time.Time
	turnCount    int

	// Timeout configuration
	timeout       time.Duration
	warningBefore time.Duration
	warningShown  bool

	// Auto-save configuration
	autoSaveEnabled  bool
	autoSaveInterval time.Duration
	lastAutoSave     time.Time
	isDirty          bool
}

// Config holds configuration for the session manager.
type Config struct {
	// Timeout is the idle timeout duration (default: 30 minutes)
	Timeout time.Duration

	// WarningBefore is how long before timeout to show a warning (default: 2 minutes)
	WarningBefore time.Duration

	// AutoSaveEnabled enables automatic transcript saving
	AutoSaveEnabled bool

	// AutoSaveInterval is how often to auto-save (default: 30 seconds)
	AutoSaveInterval time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:          30 * time.Minute,
		WarningBefore:    2 * time.Minute,
		AutoSaveEnabled:  true,
		AutoSaveInterval: 30 * time.Second,
	}
}

// NewManager creates a new session manager without a backend handle.
func NewManager(cfg Config) *Manager {
	now := time.Now()
	return &Manager{
		startTime:        now,
		lastActivity:     now,
		timeout:          cfg.Timeout,
		warningBefore:    cfg.WarningBefore,
		autoSaveEnabled:  cfg.AutoSaveEnabled,
		autoSaveInterval: cfg.AutoSaveInterval,
		lastAutoSave:     now,
	}
}

// =============================================================================
// BACKEND HANDLE
// =============================================================================

// Attach binds the backend session handle after registration succeeds.
func (m *Manager) Attach(handle *agent.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handle = handle
}

// Handle returns the backend session handle, or nil before Attach.
func (m *Manager) Handle() *agent.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

// SessionID returns the backend session ID, or "" before Attach.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return ""
	}
	return m.handle.ID
}

// IsReady reports whether a backend session is attached.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}

// =============================================================================
// SESSION STATE
// =============================================================================

// StartTime returns when the local session started.
func (m *Manager) StartTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startTime
}

// Duration returns how long the session has been active.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}

// IdleTime returns how long since last activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// RemainingTime returns time until the idle timeout.
func (m *Manager) RemainingTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	remaining := m.timeout - time.Since(m.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TurnCount returns the number of turns sent this session.
func (m *Manager) TurnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turnCount
}

// =============================================================================
// ACTIVITY TRACKING
// =============================================================================

// RecordActivity updates the last activity timestamp.
// Call on user input or a completed send.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
	m.warningShown = false
}

// RecordTurn counts a sent message and refreshes activity.
func (m *Manager) RecordTurn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turnCount++
	m.lastActivity = time.Now()
	m.warningShown = false
}

// MarkDirty indicates the transcript has unsaved changes.
func (m *Manager) MarkDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = true
}

// MarkClean indicates the transcript has been saved.
func (m *Manager) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = false
	m.lastAutoSave = time.Now()
}

// IsDirty returns whether the transcript has unsaved changes.
func (m *Manager) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDirty
}

// =============================================================================
// TIMEOUT CHECKING
// =============================================================================

// IsExpired returns true if the session has idled out.
func (m *Manager) IsExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity) >= m.timeout
}

// ShouldShowWarning returns true if a timeout warning should be shown.
func (m *Manager) ShouldShowWarning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.warningShown {
		return false
	}

	idle := time.Since(m.lastActivity)
	threshold := m.timeout - m.warningBefore

	return idle >= threshold && idle < m.timeout
}

// ShouldAutoSave returns true if auto-save should trigger.
func (m *Manager) ShouldAutoSave() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.autoSaveEnabled || !m.isDirty {
		return false
	}

	return time.Since(m.lastAutoSave) >= m.autoSaveInterval
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to check session state.
type TickMsg struct {
	Time time.Time
}

// TimeoutWarningMsg indicates the session is about to idle out.
type TimeoutWarningMsg struct {
	Remaining time.Duration
}

// TimeoutMsg indicates the session has idled out.
type TimeoutMsg struct{}

// AutoSaveMsg indicates auto-save should occur.
type AutoSaveMsg struct{}

// TickCmd returns a command that ticks periodically.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick processes a tick and returns appropriate messages.
func (m *Manager) HandleTick() tea.Cmd {
	var cmds []tea.Cmd

	if m.ShouldShowWarning() {
		remaining := m.RemainingTime()
		cmds = append(cmds, func() tea.Msg {
			return TimeoutWarningMsg{Remaining: remaining}
		})
		m.mu.Lock()
		m.warningShown = true
		m.mu.Unlock()
	}

	if m.IsExpired() {
		cmds = append(cmds, func() tea.Msg {
			return TimeoutMsg{}
		})
	}

	if m.ShouldAutoSave() {
		cmds = append(cmds, func() tea.Msg {
			return AutoSaveMsg{}
		})
	}

	cmds = append(cmds, TickCmd())

	return tea.Batch(cmds...)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetTimeout updates the idle timeout duration.
func (m *Manager) SetTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = d
}

// SetAutoSaveEnabled enables or disables auto-save.
func (m *Manager) SetAutoSaveEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoSaveEnabled = enabled
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status represents the current session status for display.
type Status struct {
	SessionID     string
	Ready         bool
	StartTime     time.Time
	Duration      time.Duration
	IdleTime      time.Duration
	RemainingTime time.Duration
	TurnCount     int
	IsDirty       bool
	IsExpired     bool
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	idle := now.Sub(m.lastActivity)
	remaining := m.timeout - idle
	if remaining < 0 {
		remaining = 0
	}

	var id string
	if m.handle != nil {
		id = m.handle.ID
	}

	return Status{
		SessionID:     id,
		Ready:         m.handle != nil,
		StartTime:     m.startTime,
		Duration:      now.Sub(m.startTime),
		IdleTime:      idle,
		RemainingTime: remaining,
		TurnCount:     m.turnCount,
		IsDirty:       m.isDirty,
		IsExpired:     idle >= m.timeout,
	}
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		return util.IntToString(secs) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return util.IntToString(mins) + "m"
	}
	return util.IntToString(mins) + "m " + util.IntToString(secs) + "s"
}
