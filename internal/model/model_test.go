// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and chat turns.
package model

import (
	"strings"
	"testing"

	"github.com/jeranaias/docchat-tui/internal/agent"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want user", msg.Role)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want 'Hello'", msg.Content)
	}
	if !strings.HasPrefix(msg.ID, "turn_") {
		t.Errorf("ID = %q, want turn_ prefix", msg.ID)
	}
}

func TestNewAssistantMessageIsStreaming(t *testing.T) {
	msg := NewAssistantMessage()

	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want assistant", msg.Role)
	}
	if !msg.IsStreaming {
		t.Error("IsStreaming = false, want true")
	}
}

// =============================================================================
// REDUCER TESTS
// =============================================================================

func TestApplyContentPartialAppends(t *testing.T) {
	msg := NewAssistantMessage()

	msg.ApplyContent("A", true)
	msg.ApplyContent("B", true)

	if got := msg.GetDisplayContent(); got != "AB" {
		t.Errorf("display = %q, want AB", got)
	}
}

func TestApplyContentFinalReplaces(t *testing.T) {
	msg := NewAssistantMessage()

	msg.ApplyContent("partial junk", true)
	msg.ApplyContent("Final answer", false)

	if got := msg.GetDisplayContent(); got != "Final answer" {
		t.Errorf("display = %q, want replacement", got)
	}
}

func TestApplyContentFinalReplaceIdempotent(t *testing.T) {
	msg := NewAssistantMessage()

	msg.ApplyContent("Final answer", false)
	msg.ApplyContent("Final answer", false)

	if got := msg.GetDisplayContent(); got != "Final answer" {
		t.Errorf("display = %q after repeated final", got)
	}
}

func TestApplyContentEmptyFinalPreserves(t *testing.T) {
	msg := NewAssistantMessage()

	msg.ApplyContent("Hello", true)
	msg.ApplyContent("", false)

	if got := msg.GetDisplayContent(); got != "Hello" {
		t.Errorf("display = %q, want 'Hello' preserved by empty final", got)
	}

	msg.FinalizeStream()
	if msg.Content != "Hello" {
		t.Errorf("Content = %q after finalize, want 'Hello'", msg.Content)
	}
}

func TestApplyStatusShownUntilContent(t *testing.T) {
	msg := NewAssistantMessage()

	msg.ApplyStatus("Uploading attachments...")
	if got := msg.GetDisplayContent(); got != "Uploading attachments..." {
		t.Errorf("display = %q, want status text", got)
	}

	msg.ApplyContent("Re", true)
	if got := msg.GetDisplayContent(); got != "Re" {
		t.Errorf("display = %q, want content to displace status", got)
	}
}

func TestApplyContentIgnoredAfterFinalize(t *testing.T) {
	msg := NewAssistantMessage()
	msg.ApplyContent("done", false)
	msg.FinalizeStream()

	msg.ApplyContent("late", true)
	if msg.Content != "done" {
		t.Errorf("Content = %q, late event mutated finalized turn", msg.Content)
	}
}

func TestFailClearsStreaming(t *testing.T) {
	msg := NewAssistantMessage()
	msg.ApplyContent("half a rep", true)

	msg.Fail("network unreachable")

	if msg.IsStreaming {
		t.Error("IsStreaming = true after Fail")
	}
	if !strings.Contains(msg.Content, "network unreachable") {
		t.Errorf("Content = %q, want failure reason", msg.Content)
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscriptStreamingFlow(t *testing.T) {
	tr := NewTranscript()
	tr.AddUserTurn("Summarize")
	tr.AddAssistantTurn()

	events := []agent.StreamEvent{
		agent.ContentEvent("Sure, ", true),
		agent.ContentEvent("done.", true),
		agent.ContentEvent("Sure, done.", false),
	}
	for _, ev := range events {
		tr.ApplyEvent(ev)
	}
	tr.FinalizeLast()

	last := tr.GetLastTurn()
	if last.IsStreaming {
		t.Error("last turn still streaming after finalize")
	}
	if last.Content != "Sure, done." {
		t.Errorf("Content = %q, want 'Sure, done.'", last.Content)
	}
}

func TestTranscriptFailLast(t *testing.T) {
	tr := NewTranscript()
	tr.AddUserTurn("hello")
	tr.AddAssistantTurn()

	tr.FailLast("upload rejected")

	last := tr.GetLastTurn()
	if last.IsStreaming {
		t.Error("turn left streaming after failure")
	}
	if !strings.Contains(last.Content, "upload rejected") {
		t.Errorf("Content = %q", last.Content)
	}
}

func TestTranscriptApplyEventNoStreamingTurn(t *testing.T) {
	tr := NewTranscript()
	tr.AddUserTurn("hello")

	// Must not panic or touch the user turn.
	tr.ApplyEvent(agent.ContentEvent("stray", true))

	if tr.GetLastTurn().Content != "hello" {
		t.Errorf("user turn mutated by stray event")
	}
}

func TestTranscriptTitleFromFirstUserTurn(t *testing.T) {
	tr := NewTranscript()
	tr.AddUserTurn("What is in this contract?")

	if got := tr.GetTitle(); got != "What is in this contract?" {
		t.Errorf("title = %q", got)
	}
}

func TestTranscriptTitleFromAttachment(t *testing.T) {
	tr := NewTranscript()
	tr.AddUserTurnWithAttachments("", []Attachment{
		{URI: "u1", DisplayName: "report.pdf", MIMEType: "application/pdf"},
	})

	if got := tr.GetTitle(); got != "report.pdf" {
		t.Errorf("title = %q, want attachment name", got)
	}
}

func TestAttachmentsFromUploads(t *testing.T) {
	uploaded := []agent.UploadedFile{
		{URI: "u1", DisplayName: "a.pdf", MIMEType: "application/pdf"},
	}

	attachments := AttachmentsFromUploads(uploaded)
	if len(attachments) != 1 || attachments[0].URI != "u1" || attachments[0].DisplayName != "a.pdf" {
		t.Errorf("attachments = %+v", attachments)
	}
}

func TestTranscriptPrune(t *testing.T) {
	tr := NewTranscript()
	for i := 0; i < MaxTurns+10; i++ {
		tr.AddUserTurn("msg")
	}

	if got := tr.TurnCount(); got != MaxTurns {
		t.Errorf("TurnCount = %d, want %d", got, MaxTurns)
	}
}
