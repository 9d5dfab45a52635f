// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts and chat turns.
//
// This package defines the core domain types used throughout the
// application for representing chat transcripts, turns, and attachments,
// along with the reduction rules that fold stream events into the
// assistant's turn.
//
// # Key Types
//
//   - Transcript: Container for a chat exchange with turns and metadata
//   - Message: Single turn with role, content, attachments, and streaming state
//   - Attachment: Uploaded file reference carried by a user turn
//   - Role: Turn role enumeration (user, assistant)
//
// # Usage
//
// Create a transcript and stream into it:
//
//	tr := model.NewTranscript()
//	tr.AddUserTurn("Summarize this document")
//	tr.AddAssistantTurn()
//	tr.ApplyEvent(ev)   // repeated for each stream event
//	tr.FinalizeLast()
//
// Partial content appends, final content replaces, and an empty final
// preserves whatever has accumulated.
package model
