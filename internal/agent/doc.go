// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the HTTP client for the document-analysis agent
// backend.
//
// This package implements the full send pipeline: multipart file upload,
// message part composition, backend session creation, and the streaming
// run_sse request whose response is framed line-by-line and parsed into
// stream events.
//
// # Key Types
//
//   - Client: HTTP client for the agent backend (upload + chat endpoints)
//   - Session: handle for a backend chat session, threaded explicitly
//   - LocalFile: a local attachment candidate prior to upload
//   - UploadedFile: server-side reference returned by the upload endpoint
//   - Part: one element of a composed message (text or file reference)
//   - StreamEvent: status or content event parsed from the SSE stream
//   - LineFramer: stateful chunk-to-line framer with streaming UTF-8 decode
//
// # Usage
//
// Create a client, open a session, and stream a reply:
//
//	client := agent.NewClient(agent.DefaultConfig())
//	sess, err := client.CreateSession(ctx)
//	err = client.Send(ctx, sess, "Summarize this", files, func(ev agent.StreamEvent) {
//	    fmt.Print(ev.Text)
//	})
//
// Send returns nil exactly once on clean end-of-stream, or a single
// terminal error. Events are delivered in arrival order on the calling
// goroutine of the internal read loop; cancel via the context.
package agent
