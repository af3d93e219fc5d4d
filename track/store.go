// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package track

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Store persists the queue between runs as a JSON array of tracks.
type Store struct {
	path string
}

// NewStore writes under dir (usually the user's voxwave config dir).
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, "queue.json")}
}

// Load reads the persisted queue. Missing files, unreadable files and content
// that isn't a JSON array all come back as an empty queue; a corrupt store is
// never an error the caller has to care about.
func (s *Store) Load() *Queue {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return NewQueue(nil)
	}
	var items []Track
	if err := json.Unmarshal(data, &items); err != nil {
		return NewQueue(nil)
	}
	return NewQueue(items)
}

// Save writes the queue contents. Best-effort: the caller logs the error but
// never propagates it.
func (s *Store) Save(items []Track) error {
	if items == nil {
		items = []Track{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
