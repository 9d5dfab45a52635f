// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the docchat command-line interface.
//
// The default invocation launches the TUI; subcommands cover one-shot
// questions (ask), a line-based REPL (chat), saved conversation
// management (history), and configuration (config).
//
// # Key Types
//
//   - Command: parsed command selector
//   - Args: parsed global and command-specific flags
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//		os.Exit(cli.HandleAsk(cfg, args))
//	}
package cli
