// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// compose.go - Message part composition for run_sse requests.

package agent

import (
	"log"
	"strings"
)

// BuildParts composes the part list for a run request: one file-reference
// part per uploaded file, in upload order, followed by a text part
// carrying the trimmed message text. The text part is always appended —
// for a file-only send it carries the empty string — so the part list is
// never empty.
//
// Default-prompt substitution for file-only sends is deliberately not
// done here; whether to display or send a stand-in instruction is the
// caller's decision.
func BuildParts(text string, files []UploadedFile) []Part {
	parts := make([]Part, 0, len(files)+1)
	for _, f := range files {
		parts = append(parts, FilePart(f))
	}
	parts = append(parts, TextPart(strings.TrimSpace(text)))
	return parts
}

// buildRunRequest assembles the full run_sse request body for a session.
// An empty part list is logged and sent as-is rather than treated as
// fatal; the backend rejects it with its own error.
func (c *Client) buildRunRequest(sess *Session, parts []Part) RunRequest {
	if len(parts) == 0 {
		log.Printf("agent: composed message has no parts")
	}
	return RunRequest{
		AppName:   sess.AppName,
		UserID:    sess.UserID,
		SessionID: sess.ID,
		NewMessage: NewMessage{
			Role:  "user",
			Parts: parts,
		},
		Streaming: true,
	}
}
