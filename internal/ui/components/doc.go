// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the docchat TUI.
//
// Components are small, self-contained pieces the chat view composes:
// an activity spinner for upload/analysis phases, the bottom status bar,
// the welcome screen, an error banner for failed turns, and markdown /
// code-block renderers for assistant output.
//
// # Key Types
//
//   - Spinner: animated activity indicator with elapsed-time display
//   - StatusBar: bottom bar showing session, attachments, and state
//   - ErrorBanner: dismissable notification for a failed send
//   - CodeBlock: chroma-highlighted fenced code rendering
//   - Markdown: glamour-backed renderer for assistant turns
package components
