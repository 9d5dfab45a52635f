// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// SIZE FILTER TESTS
// =============================================================================

func TestFilterOversize(t *testing.T) {
	files := []LocalFile{
		{Name: "small.txt", Data: []byte("hello")},
		{Name: "huge.bin", Data: bytes.Repeat([]byte{0}, MaxAttachmentBytes+1)},
		{Name: "other.md", Data: []byte("# doc")},
	}

	ok, warnings := FilterOversize(files)

	if len(ok) != 2 {
		t.Fatalf("got %d accepted files, want 2", len(ok))
	}
	if ok[0].Name != "small.txt" || ok[1].Name != "other.md" {
		t.Errorf("accepted = %v, order not preserved", []string{ok[0].Name, ok[1].Name})
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if warnings[0].Name != "huge.bin" {
		t.Errorf("warning for %q, want huge.bin", warnings[0].Name)
	}
}

func TestFilterOversizeBoundary(t *testing.T) {
	// Exactly at the limit is allowed.
	files := []LocalFile{{Name: "edge.bin", Data: make([]byte, MaxAttachmentBytes)}}

	ok, warnings := FilterOversize(files)
	if len(ok) != 1 || len(warnings) != 0 {
		t.Errorf("ok = %d, warnings = %d; want file at exactly the limit accepted", len(ok), len(warnings))
	}
}

// =============================================================================
// MIME DETECTION TESTS
// =============================================================================

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"report.pdf", "application/pdf"},
		{"notes.md", "text/markdown"},
		{"data.bin", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}

	for _, tc := range tests {
		if got := DetectMIMEType(tc.path); got != tc.want {
			t.Errorf("DetectMIMEType(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

// =============================================================================
// UPLOAD TESTS
// =============================================================================

func newUploadTestClient(server *httptest.Server) *Client {
	return NewClientWithConfig(&ClientConfig{
		UploadBaseURL: server.URL,
		ChatBaseURL:   server.URL,
	})
}

func TestUploadFiles(t *testing.T) {
	var gotAccept string
	var gotFieldNames []string
	var gotFilenames []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload_to_gemini/" {
			t.Errorf("path = %q, want /upload_to_gemini/", r.URL.Path)
		}
		gotAccept = r.Header.Get("Accept")

		reader, err := r.MultipartReader()
		if err != nil {
			t.Fatalf("not multipart: %v", err)
		}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("reading part: %v", err)
			}
			gotFieldNames = append(gotFieldNames, part.FormName())
			gotFilenames = append(gotFilenames, part.FileName())
			io.Copy(io.Discard, part)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"uploaded_files":[
			{"filename":"a.txt","uri":"files/aaa","mime_type":"text/plain","size_bytes":5,"gemini_filename":"files/aaa"},
			{"filename":"","uri":"files/bbb","mime_type":"","size_bytes":4,"gemini_filename":"files/bbb"}
		]}`)
	}))
	defer server.Close()

	client := newUploadTestClient(server)
	files := []LocalFile{
		{Name: "a.txt", MIMEType: "text/plain", Data: []byte("hello")},
		{Name: "b.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")},
	}

	uploaded, err := client.UploadFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}

	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
	for _, name := range gotFieldNames {
		if name != "files" {
			t.Errorf("field name = %q, want files", name)
		}
	}
	if len(gotFilenames) != 2 || gotFilenames[0] != "a.txt" || gotFilenames[1] != "b.pdf" {
		t.Errorf("filenames = %v", gotFilenames)
	}

	if len(uploaded) != 2 {
		t.Fatalf("got %d uploaded, want 2", len(uploaded))
	}
	if uploaded[0].URI != "files/aaa" || uploaded[0].DisplayName != "a.txt" || uploaded[0].MIMEType != "text/plain" {
		t.Errorf("uploaded[0] = %+v", uploaded[0])
	}
	// Server omitted filename and mime_type for the second entry: the
	// local file's metadata fills in.
	if uploaded[1].URI != "files/bbb" || uploaded[1].DisplayName != "b.pdf" || uploaded[1].MIMEType != "application/pdf" {
		t.Errorf("uploaded[1] = %+v, want local fallbacks", uploaded[1])
	}
}

func TestUploadFilesEmptyInput(t *testing.T) {
	client := NewClient()

	uploaded, err := client.UploadFiles(context.Background(), nil)
	if err != nil || uploaded != nil {
		t.Errorf("empty input: uploaded = %v, err = %v; want nil, nil", uploaded, err)
	}
}

func TestUploadFilesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "disk full", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newUploadTestClient(server)
	_, err := client.UploadFiles(context.Background(), []LocalFile{{Name: "a.txt", Data: []byte("x")}})

	if !errors.Is(err, ErrUpload) {
		t.Fatalf("err = %v, want ErrUpload", err)
	}
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("err is not a *ClientError: %v", err)
	}
	if ce.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", ce.StatusCode)
	}
	if ce.Body != "disk full" {
		t.Errorf("Body = %q, want server's explanation", ce.Body)
	}
}

func TestUploadFilesEmptyEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"uploaded_files":[]}`)
	}))
	defer server.Close()

	client := newUploadTestClient(server)
	_, err := client.UploadFiles(context.Background(), []LocalFile{{Name: "a.txt", Data: []byte("x")}})

	// An empty uploaded_files list means the upload failed, even though
	// the response itself parsed fine.
	if !errors.Is(err, ErrUpload) {
		t.Errorf("err = %v, want ErrUpload", err)
	}
}
