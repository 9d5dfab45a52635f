// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and chat turns.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// Attachment records a file sent with a user turn, as the backend knows
// it after upload.
type Attachment struct {
	URI         string `json:"uri"`
	DisplayName string `json:"display_name"`
	MIMEType    string `json:"mime_type"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single turn in a transcript.
//
// Assistant turns are built incrementally from stream events: partial
// content appends, final content replaces, and an empty final leaves the
// accumulated text untouched. Status text is transient progress display
// and never mixes into the accumulated content.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Content
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`

	// Streaming state (not persisted)
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	IsStreaming   bool `json:"-"`
	streamContent strings.Builder
	statusText    string
}

// NewMessage creates a new turn with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a new user turn.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewUserMessageWithAttachments creates a user turn carrying uploaded files.
func NewUserMessageWithAttachments(content string, attachments []Attachment) *Message {
	msg := NewMessage(RoleUser, content)
	msg.Attachments = attachments
	return msg
}

// NewAssistantMessage creates an empty assistant turn in streaming state.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleAssistant,
		CreatedAt:   time.Now(),
		IsStreaming: true,
	}
}

// =============================================================================
// STREAM REDUCTION
// =============================================================================

// ApplyContent folds one content event into the turn.
//
// Partial content appends to the accumulated text. Final (non-partial)
// content replaces it, except that an empty final is a no-op: it marks
// the stream settled without discarding what has accumulated.
func (m *Message) ApplyContent(text string, partial bool) {
	if !m.IsStreaming {
		return
	}
	m.statusText = ""
	if partial {
		m.streamContent.WriteString(text)
		return
	}
	if text == "" {
		return
	}
	m.streamContent.Reset()
	m.streamContent.WriteString(text)
}

// ApplyStatus records transient progress text (uploading, analyzing).
// It is shown only while no content has accumulated and does not disturb
// the content itself.
func (m *Message) ApplyStatus(text string) {
	if !m.IsStreaming {
		return
	}
	m.statusText = text
}

// FinalizeStream completes streaming, merging the accumulated text into
// the persistent content.
func (m *Message) FinalizeStream() {
	if !m.IsStreaming {
		return
	}
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.statusText = ""
	m.IsStreaming = false
}

// Fail completes streaming with a user-visible failure message. The turn
// is never left stuck in streaming state.
func (m *Message) Fail(reason string) {
	if m.IsStreaming {
		m.streamContent.Reset()
		m.statusText = ""
		m.IsStreaming = false
	}
	m.Content = "Sorry, an error occurred: " + reason
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// GetDisplayContent returns the text to render for this turn: the status
// line while waiting for content, otherwise the accumulated or final text.
func (m *Message) GetDisplayContent() string {
	if m.IsStreaming {
		if m.streamContent.Len() == 0 && m.statusText != "" {
			return m.statusText
		}
		return m.streamContent.String()
	}
	return m.Content
}

// Preview returns a truncated preview of the turn content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.GetDisplayContent()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the turn has no content and no attachments.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0 && len(m.Attachments) == 0
}

// AttachmentSummary returns a short description of the turn's
// attachments, e.g. "report.pdf" or "report.pdf +2".
func (m *Message) AttachmentSummary() string {
	switch len(m.Attachments) {
	case 0:
		return ""
	case 1:
		return m.Attachments[0].DisplayName
	default:
		return m.Attachments[0].DisplayName + " +" + formatInt(len(m.Attachments)-1)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique turn ID.
func generateID() string {
	return "turn_" + uuid.NewString()
}

// formatInt formats an integer without using fmt.
func formatInt(n int) string {
	if n == 0 {
		return "0"
	}
	negative := n < 0
	if negative {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if negative {
		return "-" + string(digits)
	}
	return string(digits)
}
