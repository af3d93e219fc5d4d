// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package track

import "math/rand"

// Queue is an ordered list of tracks with unique ids. It does no I/O and is
// not safe for concurrent use; the player serializes access to it.
type Queue struct {
	items []Track
}

func NewQueue(items []Track) *Queue {
	q := &Queue{}
	for _, t := range items {
		q.Add(t)
	}
	return q
}

// Add appends t unless a track with the same id is already queued.
func (q *Queue) Add(t Track) {
	if q.IndexOf(t.ID) >= 0 {
		return
	}
	q.items = append(q.items, t)
}

// Remove drops the track with the given id. Removing an absent id is a no-op.
func (q *Queue) Remove(id string) {
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

func (q *Queue) Clear() {
	q.items = nil
}

// IndexOf returns the position of id in the queue, or -1.
func (q *Queue) IndexOf(id string) int {
	for i, t := range q.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) Len() int {
	return len(q.items)
}

func (q *Queue) Get(index int) (Track, bool) {
	if index < 0 || index >= len(q.items) {
		return Track{}, false
	}
	return q.items[index], true
}

// Tracks returns a copy of the queue contents.
func (q *Queue) Tracks() []Track {
	cpy := make([]Track, len(q.items))
	copy(cpy, q.items)
	return cpy
}

// PickNext selects the track after currentID. With shuffle on it picks a
// uniformly random queue position, which may select the current track again;
// that repeat is intended. Without shuffle it advances by one, wrapping to the
// front. ok is false iff the queue is empty.
func (q *Queue) PickNext(currentID string, shuffle bool) (Track, bool) {
	if len(q.items) == 0 {
		return Track{}, false
	}
	if shuffle {
		return q.items[rand.Intn(len(q.items))], true
	}
	next := (q.IndexOf(currentID) + 1) % len(q.items)
	return q.items[next], true
}

// PickPrevious selects the track before currentID, wrapping to the back. The
// "restart the current track instead" rule for elapsed positions lives in the
// player, not here. ok is false iff the queue is empty.
func (q *Queue) PickPrevious(currentID string) (Track, bool) {
	if len(q.items) == 0 {
		return Track{}, false
	}
	idx := q.IndexOf(currentID)
	if idx <= 0 {
		return q.items[len(q.items)-1], true
	}
	return q.items[idx-1], true
}
