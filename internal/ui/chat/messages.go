// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/agent"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SessionReadyMsg carries the created backend session.
type SessionReadyMsg struct {
	Session *agent.Session
}

// SessionErrMsg reports a failed session creation.
type SessionErrMsg struct {
	Err error
}

// StreamStartedMsg carries the event channel for an in-flight send.
type StreamStartedMsg struct {
	Events <-chan agent.StreamEvent
	Cancel context.CancelFunc
}

// StreamEventMsg delivers one stream event to the update loop.
type StreamEventMsg struct {
	Event agent.StreamEvent
}

// StreamDoneMsg signals that the event channel closed.
type StreamDoneMsg struct{}

// AttachedMsg reports the result of reading a local file for attachment.
type AttachedMsg struct {
	File agent.LocalFile
	Err  error
	Path string
}

// TranscriptSavedMsg reports the outcome of a background save.
type TranscriptSavedMsg struct {
	Err error
}

// =============================================================================
// COMMANDS
// =============================================================================

// createSessionCmd creates a backend session off the UI thread.
func createSessionCmd(client *agent.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), client.Config().Timeout)
		defer cancel()

		sess, err := client.CreateSession(ctx)
		if err != nil {
			return SessionErrMsg{Err: err}
		}
		return SessionReadyMsg{Session: sess}
	}
}

// startStreamCmd launches the send and hands the event channel back.
func startStreamCmd(client *agent.Client, sess *agent.Session, text string, files []agent.LocalFile) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		ch := client.SendChan(ctx, sess, text, files)
		return StreamStartedMsg{Events: ch, Cancel: cancel}
	}
}

// waitForEventCmd receives the next event from the stream channel.
func waitForEventCmd(ch <-chan agent.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return StreamDoneMsg{}
		}
		return StreamEventMsg{Event: ev}
	}
}

// attachFileCmd reads a local file for attachment.
func attachFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := agent.ReadLocalFile(path)
		if err != nil {
			return AttachedMsg{Err: err, Path: path}
		}
		return AttachedMsg{File: f, Path: path}
	}
}
