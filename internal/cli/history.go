// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Saved conversation management for the docchat CLI.
//
// Handles "docchat history" subcommands: list, search, show, export,
// and delete.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/storage"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// openStore opens the transcript store for the configured path.
func openStore(cfg *config.Config) (*storage.TranscriptStore, error) {
	return storage.NewTranscriptStore(cfg.History.DatabasePath)
}

// HandleHistory dispatches history subcommands.
func HandleHistory(cfg *config.Config, args Args) int {
	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer store.Close()

	switch args.Subcommand {
	case "", "list", "ls":
		return historyList(store, args)

	case "search":
		if args.Query == "" {
			fmt.Fprintln(os.Stderr, "usage: docchat history search QUERY")
			return 1
		}
		return historySearch(store, args)

	case "show":
		if args.Query == "" {
			fmt.Fprintln(os.Stderr, "usage: docchat history show ID")
			return 1
		}
		return historyShow(store, args.Query)

	case "export":
		if args.Query == "" {
			fmt.Fprintln(os.Stderr, "usage: docchat history export ID")
			return 1
		}
		return historyExport(store, args.Query)

	case "delete", "rm":
		if args.Query == "" {
			fmt.Fprintln(os.Stderr, "usage: docchat history delete ID")
			return 1
		}
		return historyDelete(store, args.Query)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown history subcommand %q\n", args.Subcommand)
		return 1
	}
}

func historyList(store *storage.TranscriptStore, args Args) int {
	metas, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return printMetas(metas, args)
}

func historySearch(store *storage.TranscriptStore, args Args) int {
	metas, err := store.Search(args.Query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return printMetas(metas, args)
}

func printMetas(metas []model.TranscriptMeta, args Args) int {
	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metas); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	if len(metas) == 0 {
		fmt.Println("no saved conversations")
		return 0
	}

	for _, meta := range metas {
		line := meta.ID + "  " + meta.UpdatedAt.Format("2006-01-02 15:04") +
			"  (" + util.IntToString(meta.TurnCount) + " turns)  " +
			util.TruncateRunes(meta.Title, 50)
		fmt.Println(line)
	}
	return 0
}

func historyShow(store *storage.TranscriptStore, id string) int {
	tr, err := store.Load(id)
	if err != nil {
		if errors.Is(err, storage.ErrTranscriptNotFound) {
			fmt.Fprintf(os.Stderr, "error: no conversation %q\n", id)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return 1
	}

	fmt.Println(tr.GetTitle())
	fmt.Println(strings.Repeat("-", len(tr.GetTitle())))
	for _, turn := range tr.GetHistory() {
		fmt.Println()
		label := turn.Role.DisplayName()
		if summary := turn.AttachmentSummary(); summary != "" {
			label += " [" + summary + "]"
		}
		fmt.Println(label + ":")
		fmt.Println(WrapText(turn.GetDisplayContent(), 0))
	}
	return 0
}

func historyExport(store *storage.TranscriptStore, id string) int {
	md, err := store.ExportMarkdown(id)
	if err != nil {
		if errors.Is(err, storage.ErrTranscriptNotFound) {
			fmt.Fprintf(os.Stderr, "error: no conversation %q\n", id)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return 1
	}
	fmt.Print(md)
	return 0
}

func historyDelete(store *storage.TranscriptStore, id string) int {
	if err := store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrTranscriptNotFound) {
			fmt.Fprintf(os.Stderr, "error: no conversation %q\n", id)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return 1
	}
	fmt.Println("deleted " + id)
	return 0
}
