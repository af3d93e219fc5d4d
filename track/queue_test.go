// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package track

import "testing"

func sampleQueue() *Queue {
	return NewQueue([]Track{
		{ID: "rs-a", Title: "A", Source: SourceRemote},
		{ID: "rs-b", Title: "B", Source: SourceRemote},
		{ID: "local-c.mp3", Title: "C", Source: SourceLocal},
	})
}

func TestAddDeduplicates(t *testing.T) {
	q := &Queue{}
	tr := Track{ID: "rs-a", Title: "A"}
	q.Add(tr)
	q.Add(tr)
	if q.Len() != 1 {
		t.Fatalf("expected 1 queued track, got %d", q.Len())
	}
	q.Add(Track{ID: "rs-a", Title: "same id, different title"})
	if q.Len() != 1 {
		t.Errorf("expected duplicate id to be a no-op, got %d tracks", q.Len())
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	q := sampleQueue()
	q.Remove("rs-b")
	q.Remove("rs-b")
	q.Remove("never-queued")
	if q.Len() != 2 {
		t.Fatalf("expected 2 tracks, got %d", q.Len())
	}
	if q.IndexOf("rs-b") != -1 {
		t.Errorf("rs-b should be gone")
	}
}

func TestIndexOf(t *testing.T) {
	q := sampleQueue()
	if got := q.IndexOf("local-c.mp3"); got != 2 {
		t.Errorf("expected index 2, got %d", got)
	}
	if got := q.IndexOf("missing"); got != -1 {
		t.Errorf("expected -1 for missing id, got %d", got)
	}
}

func TestPickNextWraps(t *testing.T) {
	q := sampleQueue()
	next, ok := q.PickNext("local-c.mp3", false)
	if !ok {
		t.Fatal("expected a track")
	}
	if next.ID != "rs-a" {
		t.Errorf("expected wrap to rs-a, got %s", next.ID)
	}
}

func TestPickNextFromUnknownCurrent(t *testing.T) {
	// IndexOf yields -1, so the pick lands on the first track
	q := sampleQueue()
	next, ok := q.PickNext("not-in-queue", false)
	if !ok || next.ID != "rs-a" {
		t.Errorf("expected rs-a, got %v ok=%v", next.ID, ok)
	}
}

func TestPickNextEmptyQueue(t *testing.T) {
	q := &Queue{}
	if _, ok := q.PickNext("rs-a", false); ok {
		t.Error("expected no track from an empty queue")
	}
	if _, ok := q.PickNext("rs-a", true); ok {
		t.Error("expected no track from an empty queue with shuffle")
	}
}

func TestPickNextShuffleStaysInQueue(t *testing.T) {
	q := sampleQueue()
	for i := 0; i < 50; i++ {
		next, ok := q.PickNext("rs-a", true)
		if !ok {
			t.Fatal("expected a track")
		}
		if q.IndexOf(next.ID) < 0 {
			t.Fatalf("shuffle picked a track not in the queue: %s", next.ID)
		}
	}
}

func TestPickPrevious(t *testing.T) {
	q := sampleQueue()
	prev, ok := q.PickPrevious("rs-b")
	if !ok || prev.ID != "rs-a" {
		t.Errorf("expected rs-a, got %s ok=%v", prev.ID, ok)
	}
	// wraps from the front to the back
	prev, ok = q.PickPrevious("rs-a")
	if !ok || prev.ID != "local-c.mp3" {
		t.Errorf("expected wrap to local-c.mp3, got %s ok=%v", prev.ID, ok)
	}
	if _, ok := (&Queue{}).PickPrevious("rs-a"); ok {
		t.Error("expected no track from an empty queue")
	}
}

func TestExternalID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"rs-dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"local-song.mp3", "song.mp3"},
		{"plain", "plain"},
	}
	for _, tc := range tests {
		tr := Track{ID: tc.id}
		if got := tr.ExternalID(); got != tc.want {
			t.Errorf("ExternalID(%s) = %s, want %s", tc.id, got, tc.want)
		}
	}
}
