// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and chat turns.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/docchat-tui/internal/agent"
)

// MaxTurns is the maximum number of turns to keep in a transcript.
// When exceeded, old turns are pruned to prevent unbounded memory growth.
const MaxTurns = 1000

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript holds a complete chat exchange with history and metadata.
type Transcript struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Backend session this transcript ran against
	SessionID string `json:"session_id,omitempty"`

	// Turns
	Turns []*Message `json:"turns"`
}

// NewTranscript creates a new transcript with a generated ID.
func NewTranscript() *Transcript {
	return &Transcript{
		ID:        generateTranscriptID(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Turns:     make([]*Message, 0),
	}
}

// NewTranscriptForSession creates a transcript bound to a backend session.
func NewTranscriptForSession(sessionID string) *Transcript {
	tr := NewTranscript()
	tr.SessionID = sessionID
	return tr
}

// =============================================================================
// TURN MANAGEMENT
// =============================================================================

// AddTurn appends a turn to the transcript.
func (t *Transcript) AddTurn(msg *Message) {
	t.Turns = append(t.Turns, msg)
	t.UpdatedAt = time.Now()
	t.updateTitle()
	t.pruneOldTurns()
}

// AddUserTurn creates and appends a user turn.
func (t *Transcript) AddUserTurn(content string) *Message {
	msg := NewUserMessage(content)
	t.AddTurn(msg)
	return msg
}

// AddUserTurnWithAttachments creates and appends a user turn carrying
// uploaded files.
func (t *Transcript) AddUserTurnWithAttachments(content string, attachments []Attachment) *Message {
	msg := NewUserMessageWithAttachments(content, attachments)
	t.AddTurn(msg)
	return msg
}

// AddAssistantTurn creates and appends a streaming assistant turn.
func (t *Transcript) AddAssistantTurn() *Message {
	msg := NewAssistantMessage()
	t.AddTurn(msg)
	return msg
}

// GetLastTurn returns the most recent turn, or nil if empty.
func (t *Transcript) GetLastTurn() *Message {
	if len(t.Turns) == 0 {
		return nil
	}
	return t.Turns[len(t.Turns)-1]
}

// GetLastAssistantTurn returns the most recent assistant turn.
func (t *Transcript) GetLastAssistantTurn() *Message {
	for i := len(t.Turns) - 1; i >= 0; i-- {
		if t.Turns[i].Role == RoleAssistant {
			return t.Turns[i]
		}
	}
	return nil
}

// GetLastUserTurn returns the most recent user turn.
func (t *Transcript) GetLastUserTurn() *Message {
	for i := len(t.Turns) - 1; i >= 0; i-- {
		if t.Turns[i].Role == RoleUser {
			return t.Turns[i]
		}
	}
	return nil
}

// =============================================================================
// STREAM REDUCTION
// =============================================================================

// ApplyEvent folds a stream event into the last streaming turn.
func (t *Transcript) ApplyEvent(ev agent.StreamEvent) {
	last := t.GetLastTurn()
	if last == nil || !last.IsStreaming {
		return
	}
	switch ev.Kind {
	case agent.EventStatus:
		last.ApplyStatus(ev.Text)
	case agent.EventContent:
		last.ApplyContent(ev.Text, ev.Partial)
	}
	t.UpdatedAt = time.Now()
}

// FinalizeLast completes the last streaming turn.
func (t *Transcript) FinalizeLast() {
	last := t.GetLastTurn()
	if last != nil && last.IsStreaming {
		last.FinalizeStream()
		t.UpdatedAt = time.Now()
	}
}

// FailLast completes the last streaming turn with a failure message, so
// nothing is left stuck in streaming state after an error.
func (t *Transcript) FailLast(reason string) {
	last := t.GetLastTurn()
	if last != nil && last.IsStreaming {
		last.Fail(reason)
		t.UpdatedAt = time.Now()
	}
}

// ClearHistory removes all turns from the transcript.
func (t *Transcript) ClearHistory() {
	t.Turns = make([]*Message, 0)
	t.UpdatedAt = time.Now()
}

// RemoveTurn removes a turn by ID.
func (t *Transcript) RemoveTurn(id string) bool {
	for i, msg := range t.Turns {
		if msg.ID == id {
			t.Turns = append(t.Turns[:i], t.Turns[i+1:]...)
			t.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// TurnCount returns the number of turns.
func (t *Transcript) TurnCount() int {
	return len(t.Turns)
}

// IsEmpty returns true if there are no turns.
func (t *Transcript) IsEmpty() bool {
	return len(t.Turns) == 0
}

// GetHistory returns the turn history for display.
func (t *Transcript) GetHistory() []*Message {
	return t.Turns
}

// =============================================================================
// UPLOAD CONVERSION
// =============================================================================

// AttachmentsFromUploads converts upload results to transcript attachments.
func AttachmentsFromUploads(uploaded []agent.UploadedFile) []Attachment {
	if len(uploaded) == 0 {
		return nil
	}
	attachments := make([]Attachment, len(uploaded))
	for i, u := range uploaded {
		attachments[i] = Attachment{
			URI:         u.URI,
			DisplayName: u.DisplayName,
			MIMEType:    u.MIMEType,
		}
	}
	return attachments
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle auto-generates a title from the first user turn if not set.
func (t *Transcript) updateTitle() {
	if t.Title != "" {
		return
	}
	for _, msg := range t.Turns {
		if msg.Role == RoleUser {
			if title := msg.Preview(50); title != "" {
				t.Title = title
			} else if summary := msg.AttachmentSummary(); summary != "" {
				t.Title = summary
			}
			return
		}
	}
}

// SetTitle manually sets the transcript title.
func (t *Transcript) SetTitle(title string) {
	t.Title = title
	t.UpdatedAt = time.Now()
}

// GetTitle returns the transcript title or a default.
func (t *Transcript) GetTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return "New Conversation"
}

// =============================================================================
// SERIALIZATION HELPERS
// =============================================================================

// Preview returns a short preview of the transcript.
func (t *Transcript) Preview() string {
	if len(t.Turns) == 0 {
		return "Empty conversation"
	}
	first := t.GetLastUserTurn()
	if first == nil {
		first = t.Turns[0]
	}
	return first.Preview(100)
}

// GetMeta returns metadata about the transcript.
func (t *Transcript) GetMeta() TranscriptMeta {
	return TranscriptMeta{
		ID:        t.ID,
		Title:     t.GetTitle(),
		SessionID: t.SessionID,
		TurnCount: len(t.Turns),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Preview:   t.Preview(),
	}
}

// TranscriptMeta holds lightweight metadata for listing.
type TranscriptMeta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	SessionID string    `json:"session_id,omitempty"`
	TurnCount int       `json:"turn_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Preview   string    `json:"preview"`
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateTranscriptID creates a unique transcript ID.
func generateTranscriptID() string {
	return "conv_" + uuid.NewString()
}

// Clone creates a deep copy of the transcript.
func (t *Transcript) Clone() *Transcript {
	clone := &Transcript{
		ID:        t.ID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		SessionID: t.SessionID,
		Turns:     make([]*Message, len(t.Turns)),
	}
	for i, msg := range t.Turns {
		msgCopy := *msg
		clone.Turns[i] = &msgCopy
	}
	return clone
}

// pruneOldTurns removes old turns when history exceeds MaxTurns.
func (t *Transcript) pruneOldTurns() {
	if len(t.Turns) <= MaxTurns {
		return
	}
	start := len(t.Turns) - MaxTurns
	t.Turns = append(make([]*Message, 0, MaxTurns), t.Turns[start:]...)
}
