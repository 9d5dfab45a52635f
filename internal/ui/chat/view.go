// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "Starting docchat..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.viewport.View())

	if m.spinner.IsActive() {
		sections = append(sections, " "+m.spinner.View())
	}
	if m.banner.IsVisible() {
		sections = append(sections, m.banner.View())
	}
	if len(m.pendingFiles) > 0 {
		sections = append(sections, m.renderPending())
	}

	sections = append(sections, m.renderInput())
	sections = append(sections, m.statusBar.View())

	return strings.Join(sections, "\n")
}

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("docchat")
	subtitle := m.theme.HeaderSubtitle.Render(" document analysis chat")
	return m.theme.Header.Width(m.width).Render(title + subtitle)
}

func (m *Model) renderInput() string {
	if m.attaching {
		return m.theme.InputContainer.Width(m.width - 2).Render(m.attach.View())
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(m.textarea.View())
}

func (m *Model) renderPending() string {
	names := make([]string, 0, len(m.pendingFiles))
	for _, f := range m.pendingFiles {
		names = append(names, f.Name)
	}
	return m.theme.AttachmentTag.Render(" [" + strings.Join(names, ", ") + "]")
}

// chromeHeight is the number of rows the non-viewport sections occupy.
func (m *Model) chromeHeight() int {
	// Header, input box (3 rows + border), status bar, spacing.
	h := 1 + 5 + 1 + 2
	if m.spinner.IsActive() {
		h++
	}
	if m.banner.IsVisible() {
		h += 4
	}
	if len(m.pendingFiles) > 0 {
		h++
	}
	return h
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshViewport re-renders the transcript into the viewport, keeping
// the view pinned to the bottom while a turn streams.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if wasAtBottom || m.status == components.StatusStreaming {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderTranscript() string {
	if m.transcript.IsEmpty() {
		return m.welcome.View()
	}

	var blocks []string
	for _, turn := range m.transcript.GetHistory() {
		blocks = append(blocks, m.renderTurn(turn))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderTurn(turn *model.Message) string {
	var label string
	switch turn.Role {
	case model.RoleUser:
		label = m.theme.UserLabel.Render(turn.Role.DisplayName())
	default:
		label = m.theme.AssistantLabel.Render(turn.Role.DisplayName())
	}

	if summary := turn.AttachmentSummary(); summary != "" {
		label += " " + m.theme.AttachmentTag.Render("["+summary+"]")
	}

	content := turn.GetDisplayContent()
	if content == "" {
		return label
	}

	var body string
	switch {
	case turn.IsStreaming && turn.Role == model.RoleAssistant:
		// Streaming turns render as plain text; markdown waits for the
		// final content so half-open fences don't flicker.
		body = m.theme.TurnBody.Render(content)
	case turn.Role == model.RoleAssistant && m.cfg.UI.RenderMarkdown:
		body = m.markdown.Render(content)
	case turn.Role == model.RoleAssistant:
		body = components.ParseCodeBlocks(content, m.width-4)
	default:
		body = m.theme.TurnBody.Render(content)
	}

	return label + "\n" + lipgloss.NewStyle().PaddingLeft(2).Render(body)
}
