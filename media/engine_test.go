// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package media

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/track"
)

// fakeElement scripts the platform media primitive for engine tests.
type fakeElement struct {
	mu     sync.Mutex
	events chan ElementEvent

	loads   []string
	played  bool
	paused  bool
	seeks   []float64
	volumes []float64

	// emit a load failure for every Load call
	failLoads bool
}

func newFakeElement() *fakeElement {
	return &fakeElement{events: make(chan ElementEvent, 32)}
}

func (f *fakeElement) Load(uri string) error {
	f.mu.Lock()
	f.loads = append(f.loads, uri)
	fail := f.failLoads
	f.mu.Unlock()
	if fail {
		f.events <- ElementEvent{Type: ElementEnded}
	}
	return nil
}

func (f *fakeElement) Play() error {
	f.mu.Lock()
	f.played = true
	f.mu.Unlock()
	return nil
}

func (f *fakeElement) Pause() error {
	f.mu.Lock()
	f.paused = true
	f.mu.Unlock()
	return nil
}

func (f *fakeElement) Seek(seconds float64) error {
	f.mu.Lock()
	f.seeks = append(f.seeks, seconds)
	f.mu.Unlock()
	return nil
}

func (f *fakeElement) SetVolume(v float64) error {
	f.mu.Lock()
	f.volumes = append(f.volumes, v)
	f.mu.Unlock()
	return nil
}

func (f *fakeElement) Position() (float64, error) { return 0, nil }
func (f *fakeElement) Duration() (float64, error) { return 0, nil }

func (f *fakeElement) Events() <-chan ElementEvent { return f.events }
func (f *fakeElement) Close()                      { close(f.events) }

func (f *fakeElement) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loads)
}

func (f *fakeElement) hasPlayed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.played
}

type recordingConsumer struct {
	events chan Event
}

func (c *recordingConsumer) SendEvent(event Event) {
	c.events <- event
}

func (c *recordingConsumer) next(t *testing.T) Event {
	t.Helper()
	select {
	case e := <-c.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for engine event")
		return Event{}
	}
}

// nextOfType skips status ticks while waiting for a specific event.
func (c *recordingConsumer) nextOfType(t *testing.T, typ EventType) Event {
	t.Helper()
	for {
		e := c.next(t)
		if e.Type == typ {
			return e
		}
	}
}

func newTestEngine(t *testing.T, element Element) (*Engine, *recordingConsumer) {
	t.Helper()
	engine := NewEngine(element, func(id string) string {
		return "http://srv/stream/" + id
	}, logger.Init())
	consumer := &recordingConsumer{events: make(chan Event, 32)}
	engine.RegisterEventConsumer(consumer)
	go engine.EventLoop()
	return engine, consumer
}

func remoteTrack() *track.Track {
	return track.NewRemoteTrack("abc123", "A Song", "", "http://srv/stream/abc123")
}

func TestLoadAndPlayRemoteTrack(t *testing.T) {
	element := newFakeElement()
	engine, consumer := newTestEngine(t, element)

	tr := remoteTrack()
	if err := engine.LoadAndPlay(tr); err != nil {
		t.Fatalf("LoadAndPlay: %v", err)
	}

	if got := element.loadCount(); got != 1 {
		t.Fatalf("expected 1 load, got %d", got)
	}
	uri := element.loads[0]
	if !strings.HasPrefix(uri, "http://srv/stream/abc123?_=") {
		t.Errorf("expected cache-busted stream uri, got %s", uri)
	}

	element.events <- ElementEvent{Type: ElementCanPlay}
	element.events <- ElementEvent{Type: ElementStarted}

	started := consumer.nextOfType(t, EventStarted)
	if started.Track == nil || started.Track.ID != tr.ID {
		t.Errorf("expected started event for %s, got %+v", tr.ID, started.Track)
	}
	if !element.hasPlayed() {
		t.Error("expected the element to have been played")
	}
}

func TestRemoteRetryBound(t *testing.T) {
	element := newFakeElement()
	element.failLoads = true
	engine, consumer := newTestEngine(t, element)

	if err := engine.LoadAndPlay(remoteTrack()); err != nil {
		t.Fatalf("LoadAndPlay: %v", err)
	}

	unplayable := consumer.nextOfType(t, EventUnplayable)
	if unplayable.Track == nil || unplayable.Track.ID != "rs-abc123" {
		t.Errorf("expected unplayable event for rs-abc123, got %+v", unplayable.Track)
	}
	// initial attempt + 2 retries, never a 4th
	if got := element.loadCount(); got != 3 {
		t.Errorf("expected exactly 3 load attempts, got %d", got)
	}
	for i, uri := range element.loads {
		if !strings.Contains(uri, "_=") {
			t.Errorf("attempt %d not cache-busted: %s", i, uri)
		}
	}
}

func TestLocalLoadNotRetried(t *testing.T) {
	element := newFakeElement()
	element.failLoads = true
	engine, consumer := newTestEngine(t, element)

	tr := track.NewLocalTrack("song.mp3", "Song", "http://srv/songs/song.mp3")
	if err := engine.LoadAndPlay(tr); err != nil {
		t.Fatalf("LoadAndPlay: %v", err)
	}

	consumer.nextOfType(t, EventUnplayable)
	if got := element.loadCount(); got != 1 {
		t.Errorf("local tracks must not be retried, got %d attempts", got)
	}
	if element.loads[0] != "http://srv/songs/song.mp3" {
		t.Errorf("local uri must be used as-is, got %s", element.loads[0])
	}
}

func TestPauseDuringLoadCancelsAutoplay(t *testing.T) {
	element := newFakeElement()
	engine, consumer := newTestEngine(t, element)

	if err := engine.LoadAndPlay(remoteTrack()); err != nil {
		t.Fatalf("LoadAndPlay: %v", err)
	}
	if err := engine.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	element.events <- ElementEvent{Type: ElementCanPlay}
	// a status tick proves the can-play event has been processed
	element.events <- ElementEvent{Type: ElementTime, Position: 0, Duration: 10}
	consumer.nextOfType(t, EventStatus)

	if element.hasPlayed() {
		t.Error("pause during load must cancel the deferred play")
	}
}

func TestSeekDeferredUntilCanPlay(t *testing.T) {
	element := newFakeElement()
	engine, consumer := newTestEngine(t, element)

	if err := engine.LoadAndPlay(remoteTrack()); err != nil {
		t.Fatalf("LoadAndPlay: %v", err)
	}
	if err := engine.Seek(42); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	element.mu.Lock()
	early := len(element.seeks)
	element.mu.Unlock()
	if early != 0 {
		t.Fatal("seek must be deferred while the source is loading")
	}

	element.events <- ElementEvent{Type: ElementCanPlay}
	element.events <- ElementEvent{Type: ElementTime, Position: 0, Duration: 100}
	consumer.nextOfType(t, EventStatus)

	element.mu.Lock()
	defer element.mu.Unlock()
	if len(element.seeks) != 1 || element.seeks[0] != 42 {
		t.Errorf("expected deferred seek to 42, got %v", element.seeks)
	}
}

func TestSeekDuringReplacementIgnoresOldDuration(t *testing.T) {
	element := newFakeElement()
	engine, consumer := newTestEngine(t, element)

	// first track playing with a known short duration
	if err := engine.LoadAndPlay(remoteTrack()); err != nil {
		t.Fatal(err)
	}
	element.events <- ElementEvent{Type: ElementCanPlay}
	element.events <- ElementEvent{Type: ElementStarted}
	consumer.nextOfType(t, EventStarted)
	element.events <- ElementEvent{Type: ElementTime, Position: 10, Duration: 30}
	consumer.nextOfType(t, EventStatus)

	// replace it with a longer track and seek past the old duration while
	// the new source is still loading
	second := track.NewRemoteTrack("zzz", "Z", "", "http://srv/stream/zzz")
	if err := engine.LoadAndPlay(second); err != nil {
		t.Fatal(err)
	}
	if err := engine.Seek(42); err != nil {
		t.Fatal(err)
	}

	element.events <- ElementEvent{Type: ElementEnded} // teardown of first source
	element.events <- ElementEvent{Type: ElementCanPlay}
	element.events <- ElementEvent{Type: ElementTime, Position: 42, Duration: 300}
	consumer.nextOfType(t, EventStatus)

	element.mu.Lock()
	defer element.mu.Unlock()
	if len(element.seeks) != 1 || element.seeks[0] != 42 {
		t.Errorf("expected deferred seek to 42, got %v", element.seeks)
	}
}

func TestSeekClamps(t *testing.T) {
	element := newFakeElement()
	engine, consumer := newTestEngine(t, element)

	if err := engine.LoadAndPlay(remoteTrack()); err != nil {
		t.Fatal(err)
	}
	element.events <- ElementEvent{Type: ElementCanPlay}
	element.events <- ElementEvent{Type: ElementStarted}
	consumer.nextOfType(t, EventStarted)
	element.events <- ElementEvent{Type: ElementTime, Position: 0, Duration: 100}
	consumer.nextOfType(t, EventStatus)

	if err := engine.Seek(250); err != nil {
		t.Fatal(err)
	}
	if err := engine.Seek(-5); err != nil {
		t.Fatal(err)
	}

	element.mu.Lock()
	defer element.mu.Unlock()
	if len(element.seeks) != 2 || element.seeks[0] != 100 || element.seeks[1] != 0 {
		t.Errorf("expected seeks clamped to [100 0], got %v", element.seeks)
	}
}

func TestSetVolumeClamps(t *testing.T) {
	element := newFakeElement()
	engine, _ := newTestEngine(t, element)

	if err := engine.SetVolume(1.5); err != nil {
		t.Fatal(err)
	}
	if err := engine.SetVolume(-0.2); err != nil {
		t.Fatal(err)
	}
	if err := engine.SetVolume(0.7); err != nil {
		t.Fatal(err)
	}

	element.mu.Lock()
	defer element.mu.Unlock()
	want := []float64{1, 0, 0.7}
	for i, v := range want {
		if element.volumes[i] != v {
			t.Errorf("volume %d: expected %v, got %v", i, v, element.volumes[i])
		}
	}
}

func TestReplaceTeardownIsNotAFailure(t *testing.T) {
	element := newFakeElement()
	engine, consumer := newTestEngine(t, element)

	// first track playing
	if err := engine.LoadAndPlay(remoteTrack()); err != nil {
		t.Fatal(err)
	}
	element.events <- ElementEvent{Type: ElementCanPlay}
	element.events <- ElementEvent{Type: ElementStarted}
	consumer.nextOfType(t, EventStarted)

	// replace it; the old source's teardown end must not count as a failure
	second := track.NewRemoteTrack("zzz", "Z", "", "http://srv/stream/zzz")
	if err := engine.LoadAndPlay(second); err != nil {
		t.Fatal(err)
	}
	element.events <- ElementEvent{Type: ElementEnded} // teardown of first source
	element.events <- ElementEvent{Type: ElementCanPlay}
	element.events <- ElementEvent{Type: ElementStarted}

	started := consumer.nextOfType(t, EventStarted)
	if started.Track == nil || started.Track.ID != second.ID {
		t.Errorf("expected started event for %s, got %+v", second.ID, started.Track)
	}
	if got := element.loadCount(); got != 2 {
		t.Errorf("expected 2 loads (no retries), got %d", got)
	}
}
