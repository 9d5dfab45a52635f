// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for chat transcripts.
//
// Transcripts are stored in a SQLite database under ~/.docchat/ using
// the pure-Go modernc.org/sqlite driver, so the binary stays CGO-free.
//
// # Key Types
//
//   - TranscriptStore: SQLite-backed store with save/load/list/search
//   - StoreError: typed error with sentinel values (ErrTranscriptNotFound)
//
// # Usage
//
//	store, err := storage.NewTranscriptStore("")
//	defer store.Close()
//	err = store.Save(tr)
//	metas, err := store.List()
package storage
