// docchat - A terminal interface for chatting with a document analysis agent.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/agent"
	"github.com/jeranaias/docchat-tui/internal/cli"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/storage"
	"github.com/jeranaias/docchat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case cli.CmdTUI:
		os.Exit(runTUI(cfg, args))
	case cli.CmdAsk:
		os.Exit(cli.HandleAsk(cfg, args))
	case cli.CmdChat:
		os.Exit(cli.HandleChat(cfg, args))
	case cli.CmdHistory:
		os.Exit(cli.HandleHistory(cfg, args))
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(cfg, args))
	default:
		cli.PrintUsage()
		os.Exit(1)
	}
}

// loadConfig resolves configuration, honoring an explicit --config path.
func loadConfig(args cli.Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		return config.LoadFromPath(args.ConfigPath)
	}
	return config.Load()
}

// runTUI launches the interactive chat screen.
func runTUI(cfg *config.Config, args cli.Args) int {
	// The TUI owns the terminal, so route stray log output to a file.
	if logFile := redirectLogs(); logFile != nil {
		defer logFile.Close()
	}

	var store *storage.TranscriptStore
	if cfg.History.Enabled && !args.NoHistory {
		s, err := storage.NewTranscriptStore(cfg.History.DatabasePath)
		if err != nil {
			log.Printf("main: history disabled: %v", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	client := agent.NewClientWithConfig(cfg.AgentConfig())

	// Hot-reload the config file so URL or theme edits apply to the
	// next session without restarting.
	watchPath, _ := config.ConfigPathTOML()
	if args.ConfigPath != "" {
		watchPath = args.ConfigPath
	}
	if watchPath != "" {
		watcher, err := config.NewWatcher(watchPath, func(next *config.Config) {
			log.Printf("main: configuration reloaded from %s", watchPath)
			*cfg = *next
		})
		if err == nil {
			defer watcher.Close()
		}
	}

	m := chat.NewModel(cfg, client, store)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// redirectLogs sends the standard logger to ~/.docchat/docchat.log
// while the TUI runs.
func redirectLogs() *os.File {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(dir+"/docchat.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	log.SetOutput(f)
	return f
}
