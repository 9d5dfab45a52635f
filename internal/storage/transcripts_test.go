// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for chat transcripts.
package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/docchat-tui/internal/model"
)

func newTestStore(t *testing.T) *TranscriptStore {
	t.Helper()
	store, err := NewTranscriptStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewTranscriptStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	tr := model.NewTranscriptForSession("session-1")
	tr.AddUserTurnWithAttachments("Summarize this", []model.Attachment{
		{URI: "u1", DisplayName: "report.pdf", MIMEType: "application/pdf"},
	})
	assistant := tr.AddAssistantTurn()
	assistant.ApplyContent("Sure, done.", false)
	tr.FinalizeLast()

	if err := store.Save(tr); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(tr.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.SessionID != "session-1" {
		t.Errorf("SessionID = %q", loaded.SessionID)
	}
	if loaded.TurnCount() != 2 {
		t.Fatalf("TurnCount = %d, want 2", loaded.TurnCount())
	}
	user := loaded.Turns[0]
	if user.Role != model.RoleUser || user.Content != "Summarize this" {
		t.Errorf("user turn = %+v", user)
	}
	if len(user.Attachments) != 1 || user.Attachments[0].URI != "u1" {
		t.Errorf("attachments = %+v", user.Attachments)
	}
	if loaded.Turns[1].Content != "Sure, done." {
		t.Errorf("assistant content = %q", loaded.Turns[1].Content)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	tr := model.NewTranscript()
	tr.AddUserTurn("first")
	if err := store.Save(tr); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tr.AddUserTurn("second")
	if err := store.Save(tr); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	loaded, err := store.Load(tr.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.TurnCount() != 2 {
		t.Errorf("TurnCount = %d after resave, want 2", loaded.TurnCount())
	}
}

func TestLoadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("conv_missing")
	if !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("err = %v, want ErrTranscriptNotFound", err)
	}
}

func TestListOrder(t *testing.T) {
	store := newTestStore(t)

	old := model.NewTranscript()
	old.AddUserTurn("older")
	if err := store.Save(old); err != nil {
		t.Fatalf("Save: %v", err)
	}

	recent := model.NewTranscript()
	recent.AddUserTurn("newer")
	recent.UpdatedAt = recent.UpdatedAt.Add(1) // force distinct ordering
	if err := store.Save(recent); err != nil {
		t.Fatalf("Save: %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("got %d transcripts, want 2", len(metas))
	}
	if metas[0].ID != recent.ID {
		t.Errorf("most recent first: got %q, want %q", metas[0].ID, recent.ID)
	}
	if metas[0].TurnCount != 1 {
		t.Errorf("TurnCount = %d, want 1", metas[0].TurnCount)
	}
}

func TestSearch(t *testing.T) {
	store := newTestStore(t)

	tr := model.NewTranscript()
	tr.AddUserTurn("Tell me about the quarterly budget")
	if err := store.Save(tr); err != nil {
		t.Fatalf("Save: %v", err)
	}

	other := model.NewTranscript()
	other.AddUserTurn("unrelated")
	if err := store.Save(other); err != nil {
		t.Fatalf("Save: %v", err)
	}

	metas, err := store.Search("BUDGET")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(metas) != 1 || metas[0].ID != tr.ID {
		t.Errorf("search results = %+v", metas)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	tr := model.NewTranscript()
	tr.AddUserTurn("hello")
	if err := store.Save(tr); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(tr.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(tr.ID); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("Load after delete: err = %v", err)
	}
	if err := store.Delete(tr.ID); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("double delete: err = %v", err)
	}
}

func TestExportMarkdown(t *testing.T) {
	store := newTestStore(t)

	tr := model.NewTranscript()
	tr.AddUserTurnWithAttachments("What is this?", []model.Attachment{
		{URI: "u1", DisplayName: "report.pdf", MIMEType: "application/pdf"},
	})
	assistant := tr.AddAssistantTurn()
	assistant.ApplyContent("A quarterly report.", false)
	tr.FinalizeLast()
	if err := store.Save(tr); err != nil {
		t.Fatalf("Save: %v", err)
	}

	md, err := store.ExportMarkdown(tr.ID)
	if err != nil {
		t.Fatalf("ExportMarkdown: %v", err)
	}

	for _, want := range []string{"## You", "## Assistant", "report.pdf", "A quarterly report."} {
		if !strings.Contains(md, want) {
			t.Errorf("export missing %q:\n%s", want, md)
		}
	}
}
