// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// upload.go - Multipart file upload to the document upload endpoint.

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// =============================================================================
// SIZE LIMIT
// =============================================================================

// MaxAttachmentBytes is the client-side per-file upload limit (5 MiB).
// Oversized files are rejected locally before any bytes hit the network.
const MaxAttachmentBytes = 5 * 1024 * 1024

// OversizeWarning describes a file rejected by the client-side size check.
type OversizeWarning struct {
	Name string
	Size int64
}

func (w OversizeWarning) String() string {
	return w.Name + " exceeds the 5 MiB upload limit (" + strconv.FormatInt(w.Size, 10) + " bytes), skipped"
}

// FilterOversize partitions files into those within the upload limit and
// warnings for those over it. The accepted files keep their input order
// and are still uploaded even when siblings were rejected.
func FilterOversize(files []LocalFile) ([]LocalFile, []OversizeWarning) {
	var ok []LocalFile
	var warnings []OversizeWarning
	for _, f := range files {
		if f.Size() > MaxAttachmentBytes {
			warnings = append(warnings, OversizeWarning{Name: f.Name, Size: f.Size()})
			continue
		}
		ok = append(ok, f)
	}
	return ok, warnings
}

// =============================================================================
// LOCAL FILE LOADING
// =============================================================================

// ReadLocalFile loads a file from disk into a LocalFile, detecting its
// MIME type from the extension.
func ReadLocalFile(path string) (LocalFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LocalFile{}, err
	}
	return LocalFile{
		Name:     filepath.Base(path),
		MIMEType: DetectMIMEType(path),
		Data:     data,
	}, nil
}

// DetectMIMEType resolves a content type from the file extension,
// falling back to application/octet-stream.
func DetectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t := mime.TypeByExtension(ext); t != "" {
		// Strip any charset parameter; the upload endpoint wants the bare type.
		if i := strings.Index(t, ";"); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	switch ext {
	case ".md":
		return "text/markdown"
	case ".log":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// =============================================================================
// UPLOAD
// =============================================================================

// UploadFiles POSTs the given files as multipart form-data to the upload
// endpoint (one part per file under the repeated field name "files") and
// returns the server-side references from the uploaded_files envelope.
//
// Callers are expected to run FilterOversize first; UploadFiles sends
// whatever it is given. An empty input returns nil, nil without a request.
func (c *Client) UploadFiles(ctx context.Context, files []LocalFile) ([]UploadedFile, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := writer.CreatePart(filePartHeader(f))
		if err != nil {
			return nil, &ClientError{Type: ErrTypeUpload, Message: "failed to build upload form", Cause: err}
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, &ClientError{Type: ErrTypeUpload, Message: "failed to write upload form", Cause: err}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &ClientError{Type: ErrTypeUpload, Message: "failed to finalize upload form", Cause: err}
	}

	endpoint := c.config.UploadBaseURL + "/upload_to_gemini/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUpload, Message: "failed to create upload request", Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "upload request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ClientError{
			Type:       ErrTypeUpload,
			Message:    "upload returned " + resp.Status,
			StatusCode: resp.StatusCode,
			Body:       readBodySnippet(resp.Body),
		}
	}

	var envelope uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode upload response", Cause: err}
	}
	if len(envelope.UploadedFiles) == 0 {
		return nil, &ClientError{Type: ErrTypeUpload, Message: "upload response contained no uploaded_files"}
	}

	uploaded := make([]UploadedFile, 0, len(envelope.UploadedFiles))
	for i, entry := range envelope.UploadedFiles {
		u := UploadedFile{
			URI:         entry.URI,
			DisplayName: entry.Filename,
			MIMEType:    entry.MIMEType,
		}
		// Fall back to the local file's metadata when the server omits it.
		if i < len(files) {
			if u.DisplayName == "" {
				u.DisplayName = files[i].Name
			}
			if u.MIMEType == "" {
				u.MIMEType = files[i].MIMEType
			}
		}
		if u.URI == "" {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "upload response entry missing uri"}
		}
		uploaded = append(uploaded, u)
	}
	return uploaded, nil
}

// filePartHeader builds the MIME header for one file part, preserving the
// file's own content type instead of multipart's octet-stream default.
func filePartHeader(f LocalFile) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="files"; filename="`+escapeQuotes(f.Name)+`"`)
	contentType := f.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
