// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// stream.go - Line framing, SSE event parsing, and the streaming send
// pipeline for run_sse responses.

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// LINE FRAMER
// =============================================================================

// LineFramer converts arbitrary byte chunks into complete newline-framed
// lines. Decoding is stateful: a multi-byte UTF-8 rune split across two
// chunks decodes correctly once its remaining bytes arrive, so lines are
// identical no matter how the transport splits the stream.
type LineFramer struct {
	decoder transform.Transformer
	pending []byte          // undecoded tail of a rune split at a chunk boundary
	line    strings.Builder // decoded text awaiting its newline
}

// NewLineFramer creates a framer ready for the first chunk.
func NewLineFramer() *LineFramer {
	return &LineFramer{decoder: unicode.UTF8.NewDecoder()}
}

// Push feeds the next chunk and returns any lines completed by it,
// without their trailing newline. Pass done on the final call (chunk may
// be nil): remaining non-empty text is then emitted as a last line even
// without a newline terminator.
func (f *LineFramer) Push(chunk []byte, done bool) []string {
	src := chunk
	if len(f.pending) > 0 {
		src = append(f.pending, chunk...)
		f.pending = nil
	}

	var out []string
	var dst [4096]byte
	for {
		nDst, nSrc, err := f.decoder.Transform(dst[:], src, done)
		f.scan(string(dst[:nDst]), &out)
		src = src[nSrc:]

		switch {
		case err == nil:
			if done {
				f.flush(&out)
			}
			return out
		case errors.Is(err, transform.ErrShortDst):
			continue
		case errors.Is(err, transform.ErrShortSrc):
			// Incomplete rune at the chunk boundary; hold its bytes for
			// the next push. Copies, since src may alias the caller's buffer.
			f.pending = append([]byte(nil), src...)
			return out
		default:
			// The UTF-8 decoder substitutes U+FFFD rather than failing,
			// so this path is unreachable in practice. Drop a byte and
			// keep going rather than wedge the stream.
			if len(src) == 0 {
				return out
			}
			src = src[1:]
		}
	}
}

func (f *LineFramer) scan(text string, out *[]string) {
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			f.line.WriteString(text)
			return
		}
		f.line.WriteString(text[:i])
		*out = append(*out, f.line.String())
		f.line.Reset()
		text = text[i+1:]
	}
}

func (f *LineFramer) flush(out *[]string) {
	if rest := f.line.String(); rest != "" {
		*out = append(*out, rest)
	}
	f.line.Reset()
}

// =============================================================================
// SSE EVENT PARSING
// =============================================================================

// ParseLine interprets one framed line as an SSE field and returns the
// resulting stream event, if the line produces one.
//
// Comment lines (leading ':'), blank lines, empty data payloads, and
// malformed JSON payloads all produce no event; malformed payloads and
// unrecognized lines are logged and skipped, never fatal to the stream.
func ParseLine(line string) (StreamEvent, bool) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return StreamEvent{}, false
	}
	if strings.HasPrefix(line, ":") {
		return StreamEvent{}, false
	}
	if !strings.HasPrefix(line, "data:") {
		log.Printf("agent: ignoring unexpected stream line: %s", util.TruncateRunes(line, 120))
		return StreamEvent{}, false
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if payload == "" {
		return StreamEvent{}, false
	}

	var env sseEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		log.Printf("agent: skipping malformed stream payload: %v", err)
		return StreamEvent{}, false
	}

	var text *string
	if env.Content != nil && len(env.Content.Parts) > 0 {
		text = env.Content.Parts[0].Text
	}

	switch {
	case text != nil:
		// An explicitly empty text field still counts as content.
		return ContentEvent(*text, env.Partial), true
	case !env.Partial:
		// No text and not partial: the settled signal. An empty final
		// lets the reducer finalize whatever has accumulated.
		return ContentEvent("", false), true
	default:
		// Partial with no text carries nothing worth surfacing.
		return StreamEvent{}, false
	}
}

// =============================================================================
// STREAMING SEND
// =============================================================================

// StreamCallback receives each parsed stream event in arrival order.
type StreamCallback func(StreamEvent)

// Send runs the full pipeline for one user message: upload attachments
// (if any), compose parts, POST to run_sse, and deliver parsed events to
// the callback as the response streams in.
//
// The return value is the single terminal signal: nil exactly once on
// clean end-of-stream, or one error (upload, request, connection, or the
// context's error on cancellation). Status events bracket the upload
// phase so the UI can show progress.
func (c *Client) Send(ctx context.Context, sess *Session, text string, files []LocalFile, callback StreamCallback) error {
	if sess == nil {
		return &ClientError{Type: ErrTypeRequest, Message: "no session: create one before sending"}
	}
	if callback == nil {
		callback = func(StreamEvent) {}
	}

	var uploaded []UploadedFile
	if len(files) > 0 {
		callback(StatusEvent("Uploading attachments..."))
		var err error
		uploaded, err = c.UploadFiles(ctx, files)
		if err != nil {
			return err
		}
		callback(StatusEvent("Analyzing document..."))
	}

	parts := BuildParts(text, uploaded)
	body, err := json.Marshal(c.buildRunRequest(sess, parts))
	if err != nil {
		return &ClientError{Type: ErrTypeRequest, Message: "failed to encode run request", Cause: err}
	}

	if err := c.sendLimiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.ChatBaseURL+"/run_sse", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeRequest, Message: "failed to create run request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ClientError{Type: ErrTypeConnection, Message: "run request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ClientError{
			Type:       ErrTypeRequest,
			Message:    "run request returned " + resp.Status,
			StatusCode: resp.StatusCode,
			Body:       readBodySnippet(resp.Body),
		}
	}

	return c.readStream(ctx, resp.Body, callback)
}

// readStream frames and parses the response body, delivering events
// until end-of-stream or cancellation.
func (c *Client) readStream(ctx context.Context, r io.Reader, callback StreamCallback) error {
	framer := NewLineFramer()
	buf := make([]byte, 4096)

	emit := func(lines []string) {
		for _, line := range lines {
			if ev, ok := ParseLine(line); ok {
				callback(ev)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			emit(framer.Push(buf[:n], false))
		}
		if readErr == io.EOF {
			emit(framer.Push(nil, true))
			return nil
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: readErr}
		}
	}
}

// SendChan wraps Send in a channel for consumers that prefer ranging
// over events. The channel delivers every stream event followed by a
// single terminal event with Done set (and Err on failure), then closes.
func (c *Client) SendChan(ctx context.Context, sess *Session, text string, files []LocalFile) <-chan StreamEvent {
	ch := make(chan StreamEvent, 16)
	go func() {
		defer close(ch)
		err := c.Send(ctx, sess, text, files, func(ev StreamEvent) {
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		})
		// The terminal event must always land, including on
		// cancellation, or the consumer can't tell a finished stream
		// from a dropped one. The consumer contract is to drain the
		// channel until close, so this send cannot block forever.
		ch <- StreamEvent{Done: true, Err: err}
	}()
	return ch
}
