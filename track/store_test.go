// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package track

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	items := []Track{
		{ID: "rs-a", Title: "A", Source: SourceRemote, URL: "http://x/stream/a"},
		{ID: "local-b.mp3", Title: "B", Source: SourceLocal, URL: "http://x/songs/b.mp3"},
	}
	if err := s.Save(items); err != nil {
		t.Fatalf("save: %v", err)
	}

	q := s.Load()
	if q.Len() != 2 {
		t.Fatalf("expected 2 tracks, got %d", q.Len())
	}
	got, _ := q.Get(0)
	if got.ID != "rs-a" || got.URL != "http://x/stream/a" {
		t.Errorf("unexpected first track: %+v", got)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())
	if q := s.Load(); q.Len() != 0 {
		t.Errorf("expected empty queue, got %d tracks", q.Len())
	}
}

func TestStoreLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "queue.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if q := s.Load(); q.Len() != 0 {
		t.Errorf("malformed store should load as empty, got %d tracks", q.Len())
	}
}

func TestStoreLoadNonArray(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "queue.json"), []byte(`{"id":"rs-a"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if q := s.Load(); q.Len() != 0 {
		t.Errorf("non-array store should load as empty, got %d tracks", q.Len())
	}
}
