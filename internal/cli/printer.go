// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// printer.go - Incremental answer output for the CLI surfaces.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/agent"
)

// contentPrinter writes streamed answer content to w as it arrives.
// Partials are printed verbatim. A final event is authoritative: when
// it extends what was already printed only the remainder is emitted,
// and when nothing was printed (final-only streams, common for
// attachment-only messages) the whole text is. A final that diverges
// from the printed partials is reprinted on a fresh line.
type contentPrinter struct {
	w       io.Writer
	printed strings.Builder
}

func newContentPrinter(w io.Writer) *contentPrinter {
	return &contentPrinter{w: w}
}

// Write handles one content event. Non-content events are ignored.
func (p *contentPrinter) Write(ev agent.StreamEvent) {
	if ev.Kind != agent.EventContent {
		return
	}

	if ev.Partial {
		fmt.Fprint(p.w, ev.Text)
		p.printed.WriteString(ev.Text)
		return
	}

	// Final with empty text just confirms the accumulated partials.
	if ev.Text == "" {
		return
	}

	sofar := p.printed.String()
	switch {
	case sofar == "":
		fmt.Fprint(p.w, ev.Text)
	case strings.HasPrefix(ev.Text, sofar):
		fmt.Fprint(p.w, ev.Text[len(sofar):])
	default:
		fmt.Fprint(p.w, "\n"+ev.Text)
	}
	p.printed.Reset()
	p.printed.WriteString(ev.Text)
}
