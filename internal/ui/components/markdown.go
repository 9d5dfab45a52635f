// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// Markdown renders assistant output as terminal-formatted markdown.
// The renderer is rebuilt lazily when the wrap width changes, since
// glamour renderers are fixed-width.
type Markdown struct {
	renderer *glamour.TermRenderer
	width    int
	dark     bool
}

// NewMarkdown creates a renderer for the given theme mode.
func NewMarkdown(dark bool, width int) *Markdown {
	m := &Markdown{dark: dark}
	m.SetWidth(width)
	return m
}

// SetWidth rebuilds the renderer for a new wrap width.
func (m *Markdown) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if m.renderer != nil && width == m.width {
		return
	}
	m.width = width

	styleOpt := glamour.WithStandardStyle("dark")
	if !m.dark {
		styleOpt = glamour.WithStandardStyle("light")
	}

	r, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		// Fall back to plain text rendering.
		m.renderer = nil
		return
	}
	m.renderer = r
}

// Render formats markdown for the terminal. On any renderer failure the
// original text is returned so content is never lost.
func (m *Markdown) Render(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
