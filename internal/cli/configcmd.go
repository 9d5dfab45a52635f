// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// configcmd.go - Configuration commands for the docchat CLI.
//
// Handles "docchat config" subcommands: show, path, and init.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeranaias/docchat-tui/internal/config"
)

// HandleConfig dispatches config subcommands.
func HandleConfig(cfg *config.Config, args Args) int {
	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 1
			}
			return 0
		}
		fmt.Print(cfg.String())
		return 0

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Println(path)
		return 0

	case "init":
		path, err := config.ConfigPathTOML()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "error: %s already exists\n", path)
			return 1
		}
		if err := config.SaveTOML(config.Default(), path); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Println("wrote " + path)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "error: unknown config subcommand %q\n", args.Subcommand)
		return 1
	}
}
