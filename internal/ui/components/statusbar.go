// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusUploading
	StatusAnalyzing
	StatusStreaming
	StatusError
	StatusIdle
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusUploading:
		return "Uploading..."
	case StatusAnalyzing:
		return "Analyzing..."
	case StatusStreaming:
		return "Streaming..."
	case StatusError:
		return "Error"
	case StatusIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Icon returns a distinct ASCII icon for the status.
// ACCESSIBILITY: shapes alongside colors for colorblind users.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return "+"
	case StatusUploading:
		return "^"
	case StatusAnalyzing:
		return "o"
	case StatusStreaming:
		return "~"
	case StatusError:
		return "x"
	case StatusIdle:
		return "-"
	default:
		return "?"
	}
}

// Busy reports whether the status represents an in-flight turn.
func (s Status) Busy() bool {
	switch s {
	case StatusUploading, StatusAnalyzing, StatusStreaming:
		return true
	}
	return false
}

// StatusBar is the bottom bar of the chat view. It shows the session,
// pending attachment count, turn count, and the current activity state.
type StatusBar struct {
	SessionID       string
	AttachmentCount int
	TurnCount       int
	Status          Status
	Width           int
	ShowShortcuts   bool

	theme *styles.Theme
}

// NewStatusBar creates a status bar with defaults.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the available width.
func (b *StatusBar) SetWidth(width int) {
	b.Width = width
}

// View renders the status bar as a single line.
func (b *StatusBar) View() string {
	var left []string

	statusStyle := b.theme.StatusReady
	switch {
	case b.Status == StatusError:
		statusStyle = b.theme.StatusError
	case b.Status.Busy():
		statusStyle = b.theme.StatusBusy
	}
	left = append(left, statusStyle.Render(b.Status.Icon()+" "+b.Status.String()))

	if b.SessionID != "" {
		left = append(left, util.TruncateRunes(b.SessionID, 24))
	}
	if b.AttachmentCount > 0 {
		left = append(left, util.IntToString(b.AttachmentCount)+" attached")
	}
	if b.TurnCount > 0 {
		left = append(left, util.IntToString(b.TurnCount)+" turns")
	}

	leftView := strings.Join(left, "  |  ")

	var rightView string
	if b.ShowShortcuts {
		rightView = b.shortcuts()
	}

	gap := b.Width - util.StringWidth(leftView) - util.StringWidth(rightView) - 2
	if gap < 1 {
		rightView = ""
		gap = b.Width - util.StringWidth(leftView) - 2
		if gap < 1 {
			gap = 1
		}
	}

	line := leftView + strings.Repeat(" ", gap) + rightView
	return b.theme.StatusBar.Width(b.Width).Render(util.TruncateWidth(line, b.Width-2))
}

func (b *StatusBar) shortcuts() string {
	key := b.theme.ShortcutKey
	desc := b.theme.ShortcutDesc

	pairs := []struct{ k, d string }{
		{"ctrl+a", "attach"},
		{"ctrl+c", "cancel"},
		{"ctrl+d", "quit"},
	}

	var parts []string
	for _, p := range pairs {
		parts = append(parts, key.Render(p.k)+desc.Render(" "+p.d))
	}
	return strings.Join(parts, lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | "))
}
