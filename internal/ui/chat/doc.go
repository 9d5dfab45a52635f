// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the docchat TUI.
//
// The view is a Bubble Tea model wired to the agent client: the user
// composes a message (optionally attaching local documents), the model
// dispatches the send on a background channel, and stream events are
// pumped back into the update loop one at a time. Partial content
// events grow the last assistant turn in place; the terminal event
// finalizes it and re-enables input.
//
// # Key Types
//
//   - Model: the Bubble Tea model for the chat screen
//   - StreamEventMsg / StreamDoneMsg: stream plumbing messages
//   - KeyMap: keyboard bindings
//
// # Usage
//
//	m := chat.NewModel(cfg, client, store)
//	p := tea.NewProgram(m, tea.WithAltScreen())
//	_, err := p.Run()
package chat
