// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// transcripts.go - SQLite-backed persistence for chat transcripts.

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// StoreError represents an error from the transcript store.
type StoreError struct {
	Op      string
	ID      string
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	msg := e.Op + ": " + e.Message
	if e.ID != "" {
		msg += " (" + e.ID + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is matches by message so the sentinel below works with errors.Is.
func (e *StoreError) Is(target error) bool {
	var se *StoreError
	if errors.As(target, &se) {
		return e.Message == se.Message
	}
	return false
}

// ErrTranscriptNotFound is returned when a transcript ID does not exist.
var ErrTranscriptNotFound = &StoreError{Op: "load", Message: "transcript not found"}

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	session_id  TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	id            TEXT PRIMARY KEY,
	transcript_id TEXT NOT NULL REFERENCES transcripts(id) ON DELETE CASCADE,
	seq           INTEGER NOT NULL,
	role          TEXT NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS attachments (
	turn_id      TEXT NOT NULL REFERENCES turns(id) ON DELETE CASCADE,
	seq          INTEGER NOT NULL,
	uri          TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	mime_type    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_turns_transcript ON turns(transcript_id, seq);
CREATE INDEX IF NOT EXISTS idx_attachments_turn ON attachments(turn_id, seq);
CREATE INDEX IF NOT EXISTS idx_transcripts_updated ON transcripts(updated_at DESC);
`

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore persists transcripts in a local SQLite database.
type TranscriptStore struct {
	db   *sql.DB
	path string
}

// DefaultDatabasePath returns the default history database location,
// ~/.docchat/history.db.
func DefaultDatabasePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".docchat", "history.db"), nil
}

// NewTranscriptStore opens (creating if needed) the transcript database.
// An empty path uses the default location.
func NewTranscriptStore(path string) (*TranscriptStore, error) {
	if path == "" {
		var err error
		path, err = DefaultDatabasePath()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &TranscriptStore{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *TranscriptStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *TranscriptStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes a transcript and all its turns, replacing any previous
// version under the same ID. Streaming turns are saved with their
// current display content.
func (s *TranscriptStore) Save(tr *model.Transcript) error {
	if tr == nil || tr.ID == "" {
		return &StoreError{Op: "save", Message: "transcript has no ID"}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &StoreError{Op: "save", ID: tr.ID, Message: "failed to begin transaction", Cause: err}
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO transcripts (id, title, session_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title=excluded.title,
			session_id=excluded.session_id, updated_at=excluded.updated_at`,
		tr.ID, tr.Title, tr.SessionID, tr.CreatedAt.UnixNano(), tr.UpdatedAt.UnixNano())
	if err != nil {
		return &StoreError{Op: "save", ID: tr.ID, Message: "failed to upsert transcript", Cause: err}
	}

	// Rewrite turns wholesale; transcripts are small and append-mostly.
	if _, err := tx.Exec(`DELETE FROM turns WHERE transcript_id = ?`, tr.ID); err != nil {
		return &StoreError{Op: "save", ID: tr.ID, Message: "failed to clear turns", Cause: err}
	}

	for i, turn := range tr.Turns {
		_, err := tx.Exec(`INSERT INTO turns (id, transcript_id, seq, role, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			turn.ID, tr.ID, i, string(turn.Role), turn.GetDisplayContent(), turn.CreatedAt.UnixNano())
		if err != nil {
			return &StoreError{Op: "save", ID: tr.ID, Message: "failed to insert turn", Cause: err}
		}
		for j, att := range turn.Attachments {
			_, err := tx.Exec(`INSERT INTO attachments (turn_id, seq, uri, display_name, mime_type)
				VALUES (?, ?, ?, ?, ?)`,
				turn.ID, j, att.URI, att.DisplayName, att.MIMEType)
			if err != nil {
				return &StoreError{Op: "save", ID: tr.ID, Message: "failed to insert attachment", Cause: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "save", ID: tr.ID, Message: "failed to commit", Cause: err}
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads a full transcript by ID.
func (s *TranscriptStore) Load(id string) (*model.Transcript, error) {
	tr := &model.Transcript{ID: id}

	var created, updated int64
	err := s.db.QueryRow(`SELECT title, session_id, created_at, updated_at
		FROM transcripts WHERE id = ?`, id).
		Scan(&tr.Title, &tr.SessionID, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, ErrTranscriptNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "load", ID: id, Message: "failed to read transcript", Cause: err}
	}
	tr.CreatedAt = time.Unix(0, created)
	tr.UpdatedAt = time.Unix(0, updated)

	rows, err := s.db.Query(`SELECT id, role, content, created_at
		FROM turns WHERE transcript_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, &StoreError{Op: "load", ID: id, Message: "failed to read turns", Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		var turn model.Message
		var role string
		var turnCreated int64
		if err := rows.Scan(&turn.ID, &role, &turn.Content, &turnCreated); err != nil {
			return nil, &StoreError{Op: "load", ID: id, Message: "failed to scan turn", Cause: err}
		}
		turn.Role = model.Role(role)
		turn.CreatedAt = time.Unix(0, turnCreated)
		tr.Turns = append(tr.Turns, &turn)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "load", ID: id, Message: "failed to iterate turns", Cause: err}
	}

	for _, turn := range tr.Turns {
		attachments, err := s.loadAttachments(turn.ID)
		if err != nil {
			return nil, err
		}
		turn.Attachments = attachments
	}

	return tr, nil
}

func (s *TranscriptStore) loadAttachments(turnID string) ([]model.Attachment, error) {
	rows, err := s.db.Query(`SELECT uri, display_name, mime_type
		FROM attachments WHERE turn_id = ? ORDER BY seq`, turnID)
	if err != nil {
		return nil, &StoreError{Op: "load", ID: turnID, Message: "failed to read attachments", Cause: err}
	}
	defer rows.Close()

	var attachments []model.Attachment
	for rows.Next() {
		var att model.Attachment
		if err := rows.Scan(&att.URI, &att.DisplayName, &att.MIMEType); err != nil {
			return nil, &StoreError{Op: "load", ID: turnID, Message: "failed to scan attachment", Cause: err}
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}

// =============================================================================
// LIST / SEARCH / DELETE
// =============================================================================

// List returns metadata for all transcripts, most recently updated first.
func (s *TranscriptStore) List() ([]model.TranscriptMeta, error) {
	rows, err := s.db.Query(`SELECT t.id, t.title, t.session_id, t.created_at, t.updated_at,
		(SELECT COUNT(*) FROM turns WHERE transcript_id = t.id)
		FROM transcripts t ORDER BY t.updated_at DESC`)
	if err != nil {
		return nil, &StoreError{Op: "list", Message: "failed to query transcripts", Cause: err}
	}
	defer rows.Close()

	var metas []model.TranscriptMeta
	for rows.Next() {
		var meta model.TranscriptMeta
		var created, updated int64
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.SessionID, &created, &updated, &meta.TurnCount); err != nil {
			return nil, &StoreError{Op: "list", Message: "failed to scan transcript", Cause: err}
		}
		meta.CreatedAt = time.Unix(0, created)
		meta.UpdatedAt = time.Unix(0, updated)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// Search returns metadata for transcripts whose title or any turn text
// contains the query (case-insensitive), most recently updated first.
func (s *TranscriptStore) Search(query string) ([]model.TranscriptMeta, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.Query(`SELECT DISTINCT t.id, t.title, t.session_id, t.created_at, t.updated_at,
		(SELECT COUNT(*) FROM turns WHERE transcript_id = t.id)
		FROM transcripts t
		LEFT JOIN turns tu ON tu.transcript_id = t.id
		WHERE LOWER(t.title) LIKE ? OR LOWER(tu.content) LIKE ?
		ORDER BY t.updated_at DESC`, pattern, pattern)
	if err != nil {
		return nil, &StoreError{Op: "search", Message: "failed to query transcripts", Cause: err}
	}
	defer rows.Close()

	var metas []model.TranscriptMeta
	for rows.Next() {
		var meta model.TranscriptMeta
		var created, updated int64
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.SessionID, &created, &updated, &meta.TurnCount); err != nil {
			return nil, &StoreError{Op: "search", Message: "failed to scan transcript", Cause: err}
		}
		meta.CreatedAt = time.Unix(0, created)
		meta.UpdatedAt = time.Unix(0, updated)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// Delete removes a transcript and its turns.
func (s *TranscriptStore) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM transcripts WHERE id = ?`, id)
	if err != nil {
		return &StoreError{Op: "delete", ID: id, Message: "failed to delete transcript", Cause: err}
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrTranscriptNotFound
	}
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders a stored transcript as a markdown document.
func (s *TranscriptStore) ExportMarkdown(id string) (string, error) {
	tr, err := s.Load(id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# " + tr.GetTitle() + "\n\n")
	b.WriteString("*Exported " + time.Now().Format("2006-01-02 15:04") + "*\n\n")

	for _, turn := range tr.Turns {
		b.WriteString("## " + turn.Role.DisplayName() + "\n\n")
		if summary := turn.AttachmentSummary(); summary != "" {
			b.WriteString("*Attachments: " + summary + "*\n\n")
		}
		b.WriteString(turn.Content + "\n\n")
	}

	return b.String(), nil
}
