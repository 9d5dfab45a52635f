// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the HTTP client for the document-analysis backend.
package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the agent client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error

	// StatusCode and Body are set for HTTP-level failures (upload,
	// session init, run request) so callers can surface the backend's
	// own explanation.
	StatusCode int
	Body       string
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by type so errors.Is works against the
// sentinels below even when the error carries extra detail.
func (e *ClientError) Is(target error) bool {
	var ce *ClientError
	if errors.As(target, &ce) {
		return e.Type == ce.Type
	}
	return false
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeSessionInit
	ErrTypeUpload
	ErrTypeRequest
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeTimeout
)

// Sentinel errors for easy checking.
var (
	ErrSessionInit     = &ClientError{Type: ErrTypeSessionInit, Message: "session initialization failed"}
	ErrUpload          = &ClientError{Type: ErrTypeUpload, Message: "file upload failed"}
	ErrRequest         = &ClientError{Type: ErrTypeRequest, Message: "chat request failed"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response from backend"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the agent client.
type ClientConfig struct {
	// UploadBaseURL is the base URL of the upload service
	// (default: http://127.0.0.1:8000).
	UploadBaseURL string

	// ChatBaseURL is the base URL of the chat/agent service
	// (default: http://127.0.0.1:8000).
	ChatBaseURL string

	// AppName identifies the backend agent application (default: "doc_agent").
	AppName string

	// UserID identifies the calling user to the backend (default: "user").
	UserID string

	// Timeout for non-streaming requests: session init, uploads (default: 60s).
	Timeout time.Duration

	// SendsPerSecond caps outbound run_sse requests (default: 1). The
	// burst always allows the first send immediately.
	SendsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		UploadBaseURL:  "http://127.0.0.1:8000",
		ChatBaseURL:    "http://127.0.0.1:8000",
		AppName:        "doc_agent",
		UserID:         "user",
		Timeout:        60 * time.Second,
		SendsPerSecond: 1,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the document-analysis backend: the
// multipart upload endpoint and the session/run_sse chat endpoints.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	client := agent.NewClient()
//	sess, err := client.CreateSession(ctx)
//	err = client.Send(ctx, sess, "Summarize this", nil, handleEvent)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client

	// streamClient has no timeout: run_sse responses stream for as long
	// as the agent keeps producing events.
	streamClient *http.Client

	sendLimiter *rate.Limiter
}

// NewClient creates a new agent client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new agent client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.UploadBaseURL == "" {
		config.UploadBaseURL = "http://127.0.0.1:8000"
	}
	if config.ChatBaseURL == "" {
		config.ChatBaseURL = "http://127.0.0.1:8000"
	}
	if config.AppName == "" {
		config.AppName = "doc_agent"
	}
	if config.UserID == "" {
		config.UserID = "user"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.SendsPerSecond == 0 {
		config.SendsPerSecond = 1
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		streamClient: &http.Client{},
		sendLimiter:  rate.NewLimiter(rate.Limit(config.SendsPerSecond), 1),
	}
}

// Config returns the client's effective configuration.
func (c *Client) Config() *ClientConfig {
	return c.config
}

// =============================================================================
// SESSION
// =============================================================================

// Session is a handle for a backend chat session. It is threaded
// explicitly through Send calls rather than held as client state, so a
// caller can run multiple sessions against one Client.
type Session struct {
	ID        string
	AppName   string
	UserID    string
	CreatedAt time.Time
}

// NewSessionID generates a fresh client-side session identifier.
func NewSessionID() string {
	return "session-" + uuid.NewString()
}

// CreateSession registers a new session with the backend and returns its
// handle. The backend requires this before the first run_sse request.
func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	return c.CreateSessionWithID(ctx, NewSessionID())
}

// CreateSessionWithID registers a session under a caller-chosen ID.
func (c *Client) CreateSessionWithID(ctx context.Context, sessionID string) (*Session, error) {
	endpoint := c.config.ChatBaseURL + "/apps/" + url.PathEscape(c.config.AppName) +
		"/users/" + url.PathEscape(c.config.UserID) +
		"/sessions/" + url.PathEscape(sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeSessionInit, Message: "failed to create session request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "session request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ClientError{
			Type:       ErrTypeSessionInit,
			Message:    "session init returned " + resp.Status,
			StatusCode: resp.StatusCode,
			Body:       readBodySnippet(resp.Body),
		}
	}

	return &Session{
		ID:        sessionID,
		AppName:   c.config.AppName,
		UserID:    c.config.UserID,
		CreatedAt: time.Now(),
	}, nil
}

// readBodySnippet reads up to 2KB of a response body for error messages.
func readBodySnippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 2048))
	return strings.TrimSpace(string(data))
}
