// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

// =============================================================================
// MESSAGE PARTS
// =============================================================================

// FileData references a previously uploaded file by its server URI.
type FileData struct {
	DisplayName string `json:"displayName"`
	FileURI     string `json:"fileUri"`
	MIMEType    string `json:"mimeType"`
}

// Part is one element of a composed message: either a text part or a
// file-reference part. Exactly one field is set.
type Part struct {
	Text     *string   `json:"text,omitempty"`
	FileData *FileData `json:"fileData,omitempty"`
}

// TextPart builds a text part. An empty string is a valid text part and
// is serialized as "text": "".
func TextPart(text string) Part {
	return Part{Text: &text}
}

// FilePart builds a file-reference part from an uploaded file.
func FilePart(f UploadedFile) Part {
	return Part{FileData: &FileData{
		DisplayName: f.DisplayName,
		FileURI:     f.URI,
		MIMEType:    f.MIMEType,
	}}
}

// =============================================================================
// RUN REQUEST (run_sse endpoint)
// =============================================================================

// NewMessage is the user message carried by a run request.
type NewMessage struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// RunRequest is the JSON body POSTed to the run_sse endpoint.
type RunRequest struct {
	AppName    string     `json:"appName"`
	UserID     string     `json:"userId"`
	SessionID  string     `json:"sessionId"`
	NewMessage NewMessage `json:"newMessage"`
	Streaming  bool       `json:"streaming"`
}

// =============================================================================
// SSE ENVELOPE (per data: line)
// =============================================================================

// ssePart mirrors one content part in a stream payload. Text is a pointer
// so an explicitly empty string can be told apart from an absent field.
type ssePart struct {
	Text *string `json:"text"`
}

// sseEnvelope is the JSON payload of a single data: line.
type sseEnvelope struct {
	Content *struct {
		Parts []ssePart `json:"parts"`
	} `json:"content"`
	Partial bool `json:"partial"`
}

// =============================================================================
// UPLOAD TYPES
// =============================================================================

// LocalFile is a local attachment candidate prior to upload.
type LocalFile struct {
	// Name is the local file name (base name, not the full path).
	Name string
	// MIMEType is the locally detected content type. May be empty.
	MIMEType string
	// Data is the file content.
	Data []byte
}

// Size returns the file size in bytes.
func (f LocalFile) Size() int64 {
	return int64(len(f.Data))
}

// UploadedFile is the server-side reference for an uploaded attachment.
// The URI is what the chat endpoint consumes; DisplayName and MIMEType
// fall back to the local file's values when the server omits them.
type UploadedFile struct {
	URI         string
	DisplayName string
	MIMEType    string
}

// uploadedFileEntry mirrors one entry of the upload response envelope.
type uploadedFileEntry struct {
	Filename       string `json:"filename"`
	URI            string `json:"uri"`
	MIMEType       string `json:"mime_type"`
	SizeBytes      int64  `json:"size_bytes"`
	GeminiFilename string `json:"gemini_filename"`
}

// uploadResponse is the JSON envelope returned by the upload endpoint.
type uploadResponse struct {
	UploadedFiles []uploadedFileEntry `json:"uploaded_files"`
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventKind discriminates stream events.
type EventKind int

const (
	// EventStatus carries transient progress text (uploading, analyzing).
	EventStatus EventKind = iota

	// EventContent carries reply text. Partial content appends to the
	// transcript turn; final content replaces it.
	EventContent
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventStatus:
		return "status"
	case EventContent:
		return "content"
	default:
		return "unknown"
	}
}

// StreamEvent is a single event parsed from the response stream.
//
// For the channel API (SendChan), the terminal event has Done set and
// optionally Err; callback consumers (Send) never see Done/Err events —
// the function return value is the terminal signal.
type StreamEvent struct {
	Kind    EventKind
	Text    string
	Partial bool

	// Done marks the terminal event on the channel API.
	Done bool
	// Err carries the terminal error on the channel API.
	Err error
}

// StatusEvent builds a status event.
func StatusEvent(text string) StreamEvent {
	return StreamEvent{Kind: EventStatus, Text: text}
}

// ContentEvent builds a content event.
func ContentEvent(text string, partial bool) StreamEvent {
	return StreamEvent{Kind: EventContent, Text: text, Partial: partial}
}
