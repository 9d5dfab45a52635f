// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"context"
	"errors"

	"github.com/jeranaias/docchat-tui/internal/agent"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// ERROR BANNER
// =============================================================================

// ErrorBanner is a one-shot notification for a failed turn. A failed
// stream surfaces exactly one banner; it stays visible until dismissed
// or the next send starts.
type ErrorBanner struct {
	title   string
	detail  string
	visible bool

	theme *styles.Theme
}

// NewErrorBanner creates a hidden error banner.
func NewErrorBanner(theme *styles.Theme) *ErrorBanner {
	return &ErrorBanner{theme: theme}
}

// ShowError derives a user-facing banner from a send failure.
func (e *ErrorBanner) ShowError(err error) {
	e.title = "Send failed"
	e.detail = userFacingError(err)
	e.visible = true
}

// Show displays the banner with explicit text.
func (e *ErrorBanner) Show(title, detail string) {
	e.title = title
	e.detail = detail
	e.visible = true
}

// Dismiss hides the banner.
func (e *ErrorBanner) Dismiss() {
	e.visible = false
}

// IsVisible reports whether the banner is showing.
func (e *ErrorBanner) IsVisible() bool {
	return e.visible
}

// View renders the banner box, or "" when hidden.
func (e *ErrorBanner) View() string {
	if !e.visible {
		return ""
	}
	body := e.theme.ErrorTitle.Render(e.title)
	if e.detail != "" {
		body += "\n" + e.detail
	}
	body += "\n" + e.theme.WelcomeHint.Render("press esc to dismiss")
	return e.theme.ErrorBox.Render(body)
}

// userFacingError maps client errors to short actionable messages.
func userFacingError(err error) string {
	var ce *agent.ClientError
	if errors.As(err, &ce) {
		switch ce.Type {
		case agent.ErrTypeConnection:
			return "Could not reach the analysis server. Check that it is running and the configured URLs are correct."
		case agent.ErrTypeTimeout:
			return "The server took too long to respond. Try again."
		case agent.ErrTypeUpload:
			return "Attachment upload failed: " + ce.Message
		case agent.ErrTypeSessionInit:
			return "Could not start a session: " + ce.Message
		}
		return ce.Message
	}
	if errors.Is(err, context.Canceled) {
		return "Canceled."
	}
	return err.Error()
}
