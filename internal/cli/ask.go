// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command for the docchat CLI.
//
// Handles "docchat ask", which sends one question (optionally with
// attached documents) and prints the streamed answer to stdout.
//
// Examples:
//   docchat ask "What does clause 7 mean?" -f contract.pdf
//   docchat ask -f report.pdf
//   docchat ask "Summarize the attachments" -f a.pdf -f b.pdf
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/docchat-tui/internal/agent"
	"github.com/jeranaias/docchat-tui/internal/config"
)

// HandleAsk runs a one-shot question against the agent. A file-only
// invocation sends the attachments with empty text; the backend treats
// that as a plain analysis request.
func HandleAsk(cfg *config.Config, args Args) int {
	query := strings.TrimSpace(args.Query)
	if query == "" && len(args.Files) == 0 {
		fmt.Fprintln(os.Stderr, "error: ask needs a question or at least one --file")
		return 1
	}

	files, code := readAttachments(args.Files)
	if code != 0 {
		return code
	}

	client := agent.NewClientWithConfig(cfg.AgentConfig())
	ctx := context.Background()

	sess, err := client.CreateSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	renderAtEnd := cfg.UI.RenderMarkdown && IsStdoutTTY()
	var answer strings.Builder
	printer := newContentPrinter(os.Stdout)

	err = client.Send(ctx, sess, query, files, func(ev agent.StreamEvent) {
		switch ev.Kind {
		case agent.EventStatus:
			if !args.Quiet && IsStderrTTY() {
				fmt.Fprintln(os.Stderr, ev.Text)
			}
		case agent.EventContent:
			if !renderAtEnd {
				printer.Write(ev)
			}
			if ev.Partial {
				answer.WriteString(ev.Text)
			} else if ev.Text != "" {
				answer.Reset()
				answer.WriteString(ev.Text)
			}
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if renderAtEnd {
		fmt.Println(renderMarkdown(answer.String()))
	} else {
		fmt.Println()
	}
	return 0
}

// readAttachments loads local files and applies the size limit,
// warning about skipped files on stderr.
func readAttachments(paths []string) ([]agent.LocalFile, int) {
	var files []agent.LocalFile
	for _, path := range paths {
		f, err := agent.ReadLocalFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return nil, 1
		}
		files = append(files, f)
	}

	kept, warnings := agent.FilterOversize(files)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.String())
	}
	return kept, 0
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// renderMarkdown renders markdown for terminal display, returning the
// original content if rendering fails.
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
