// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

// Welcome renders the empty-transcript screen shown before the first turn.
type Welcome struct {
	AppName string
	Width   int

	theme *styles.Theme
}

// NewWelcome creates a welcome screen.
func NewWelcome(theme *styles.Theme) *Welcome {
	return &Welcome{
		AppName: "docchat",
		Width:   80,
		theme:   theme,
	}
}

// SetWidth updates the available width.
func (w *Welcome) SetWidth(width int) {
	w.Width = width
}

// View renders the centered welcome box.
func (w *Welcome) View() string {
	lines := []string{
		w.theme.WelcomeTitle.Render(w.AppName),
		"",
		"Chat with the document analysis agent.",
		"",
		w.theme.WelcomeHint.Render("Type a message and press enter to send."),
		w.theme.WelcomeHint.Render("Press ctrl+a to attach a document first."),
		w.theme.WelcomeHint.Render("Attached files are analyzed along with your message."),
	}

	box := w.theme.WelcomeBox.Render(strings.Join(lines, "\n"))
	if w.Width > lipgloss.Width(box) {
		return lipgloss.PlaceHorizontal(w.Width, lipgloss.Center, box)
	}
	return box
}
