// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the active backend session and its lifecycle.
//
// The backend requires a registered session before the first streaming
// request; this package pairs that remote handle with the client-side
// concerns around it: activity tracking, idle timeout with warning, and
// auto-save scheduling, all surfaced to the TUI through Bubble Tea tick
// messages.
//
// # Key Types
//
//   - Manager: session manager with timeout and auto-save tracking
//   - TimeoutMsg / TimeoutWarningMsg: Bubble Tea timeout messages
//   - AutoSaveMsg: Bubble Tea message requesting a transcript save
//
// # Usage
//
// Create a manager, attach the backend handle once registered, and feed
// ticks from the program loop:
//
//	mgr := session.NewManager(session.DefaultConfig())
//	sess, err := client.CreateSession(ctx)
//	mgr.Attach(sess)
//
// Reset the idle clock on user activity:
//
//	mgr.RecordActivity()
package session
