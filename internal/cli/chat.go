// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive terminal chat for the docchat CLI.
//
// Handles "docchat chat", a line-based REPL for terminals where the
// full TUI is unwanted (ssh sessions, minimal terminals, scripts with
// a pty).
//
// Interactive commands:
//   /help               Show available commands
//   /attach PATH        Attach a document to the next message
//   /attachments        List pending attachments
//   /clear              Clear the conversation
//   /save               Save the conversation now
//   /quit               Exit chat
//   Ctrl+C              Cancel the current answer
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/docchat-tui/internal/agent"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/storage"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	chatWarningStyle = lipgloss.NewStyle().
				Foreground(styles.Amber)
)

// replSession bundles the state of one interactive chat run.
type replSession struct {
	cfg        *config.Config
	client     *agent.Client
	sess       *agent.Session
	store      *storage.TranscriptStore
	transcript *model.Transcript
	pending    []agent.LocalFile
}

// HandleChat runs the line-based interactive chat.
func HandleChat(cfg *config.Config, args Args) int {
	if !IsTTY() {
		fmt.Fprintln(os.Stderr, "error: chat requires an interactive terminal")
		return 1
	}

	client := agent.NewClientWithConfig(cfg.AgentConfig())
	sess, err := client.CreateSession(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	r := &replSession{
		cfg:        cfg,
		client:     client,
		sess:       sess,
		transcript: model.NewTranscriptForSession(sess.ID),
	}

	if cfg.History.Enabled && !args.NoHistory {
		store, err := openStore(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, chatWarningStyle.Render("history disabled: "+err.Error()))
		} else {
			r.store = store
			defer store.Close()
		}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	if !args.Quiet {
		fmt.Println(infoStyle.Render("docchat " + Version + " - session " + sess.ID))
		fmt.Println(infoStyle.Render("Type /help for commands, Ctrl+D to exit."))
		fmt.Println()
	}

	for {
		input, err := line.Prompt(promptStyle.Render("you> "))
		if err != nil {
			// liner.ErrPromptAborted on Ctrl+C, io.EOF on Ctrl+D
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if r.handleCommand(input) {
				break
			}
			continue
		}

		r.sendTurn(input)
	}

	r.saveIfEnabled(true)

	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return 0
}

// handleCommand executes a /command. Returns true when the REPL should
// exit.
func (r *replSession) handleCommand(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println(commandStyle.Render("/attach PATH") + "   attach a document to the next message")
		fmt.Println(commandStyle.Render("/attachments") + "   list pending attachments")
		fmt.Println(commandStyle.Render("/clear") + "         clear the conversation")
		fmt.Println(commandStyle.Render("/save") + "          save the conversation now")
		fmt.Println(commandStyle.Render("/quit") + "          exit chat")

	case "/attach", "/a":
		if len(parts) < 2 {
			fmt.Println(chatWarningStyle.Render("usage: /attach PATH"))
			break
		}
		path := strings.Join(parts[1:], " ")
		f, err := agent.ReadLocalFile(path)
		if err != nil {
			fmt.Println(chatWarningStyle.Render(err.Error()))
			break
		}
		kept, warnings := agent.FilterOversize([]agent.LocalFile{f})
		for _, w := range warnings {
			fmt.Println(chatWarningStyle.Render(w.String()))
		}
		r.pending = append(r.pending, kept...)
		if len(kept) > 0 {
			fmt.Println(infoStyle.Render("attached " + f.Name))
		}

	case "/attachments":
		if len(r.pending) == 0 {
			fmt.Println(infoStyle.Render("no pending attachments"))
			break
		}
		for _, f := range r.pending {
			fmt.Println(infoStyle.Render("  " + f.Name + " (" + f.MIMEType + ")"))
		}

	case "/clear", "/c":
		r.transcript.ClearHistory()
		fmt.Println(infoStyle.Render("conversation cleared"))

	case "/save", "/s":
		r.saveIfEnabled(false)

	default:
		fmt.Println(chatWarningStyle.Render("unknown command " + cmd + ", try /help"))
	}
	return false
}

// sendTurn dispatches one message and streams the answer to stdout.
// Ctrl+C cancels the in-flight answer without exiting the REPL.
func (r *replSession) sendTurn(text string) {
	attachments := make([]model.Attachment, 0, len(r.pending))
	for _, f := range r.pending {
		attachments = append(attachments, model.Attachment{
			DisplayName: f.Name,
			MIMEType:    f.MIMEType,
		})
	}
	r.transcript.AddUserTurnWithAttachments(text, attachments)
	r.transcript.AddAssistantTurn()

	files := r.pending
	r.pending = nil

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	printer := newContentPrinter(os.Stdout)
	err := r.client.Send(ctx, r.sess, text, files, func(ev agent.StreamEvent) {
		switch ev.Kind {
		case agent.EventStatus:
			fmt.Println(infoStyle.Render(ev.Text))
		case agent.EventContent:
			printer.Write(ev)
		}
		r.transcript.ApplyEvent(ev)
	})

	fmt.Println()
	if err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Println(chatWarningStyle.Render("canceled"))
		} else {
			fmt.Println(chatWarningStyle.Render("error: " + err.Error()))
		}
		r.transcript.FailLast(err.Error())
		return
	}

	r.transcript.FinalizeLast()
	r.saveIfEnabled(true)
}

// saveIfEnabled persists the transcript when a store is configured.
func (r *replSession) saveIfEnabled(quiet bool) {
	if r.store == nil || r.transcript.IsEmpty() {
		return
	}
	if err := r.store.Save(r.transcript); err != nil {
		fmt.Fprintln(os.Stderr, chatWarningStyle.Render("save failed: "+err.Error()))
		return
	}
	if !quiet {
		fmt.Println(infoStyle.Render("saved " + r.transcript.ID))
	}
}

// replHistoryPath returns the liner history file path, or "" when the
// config directory is unavailable.
func replHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}
