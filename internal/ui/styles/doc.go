// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the docchat TUI.
//
// All colors use Lip Gloss AdaptiveColor so the palette adjusts to light
// and dark terminals automatically. The Theme type bundles the styled
// components the chat view composes from.
//
// # Key Types
//
//   - Theme: all lipgloss styles used by the chat UI, built by NewTheme
//
// # Usage
//
//	theme := styles.NewTheme("dark")
//	theme.SetSize(width, height)
//	header := theme.HeaderTitle.Render("docchat")
package styles
