// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package player

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/media"
	"github.com/voxwave/voxwave/track"
)

// fakeEngine records transport commands. Player tests drive engine feedback
// by calling SendEvent directly, so everything stays synchronous.
type fakeEngine struct {
	mu      sync.Mutex
	loads   []string
	pauses  int
	resumes int
	seeks   []float64
	volumes []float64
}

func (f *fakeEngine) LoadAndPlay(t *track.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, t.ID)
	return nil
}

func (f *fakeEngine) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	return nil
}

func (f *fakeEngine) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes++
	return nil
}

func (f *fakeEngine) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	return nil
}

func (f *fakeEngine) SetVolume(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = append(f.volumes, v)
	return nil
}

type uiRecorder struct {
	events []UiEvent
}

func (r *uiRecorder) SendEvent(event UiEvent) {
	r.events = append(r.events, event)
}

func (r *uiRecorder) lastOfType(typ UiEventType) (UiEvent, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			return r.events[i], true
		}
	}
	return UiEvent{}, false
}

func newTestPlayer(t *testing.T) (*Player, *fakeEngine, *uiRecorder) {
	t.Helper()
	engine := &fakeEngine{}
	store := track.NewStore(filepath.Join(t.TempDir(), "voxwave"))
	p := NewPlayer(engine, store, logger.Init())
	ui := &uiRecorder{}
	p.RegisterEventConsumer(ui)
	return p, engine, ui
}

func trackA() track.Track { return *track.NewRemoteTrack("a", "A", "", "http://srv/stream/a") }
func trackB() track.Track { return *track.NewRemoteTrack("b", "B", "", "http://srv/stream/b") }
func trackC() track.Track { return *track.NewRemoteTrack("c", "C", "", "http://srv/stream/c") }

// started fakes the engine reporting playback start for the last load.
func started(p *Player, t track.Track) {
	p.SendEvent(media.Event{Type: media.EventStarted, Track: &t})
}

func TestPlayAndToggle(t *testing.T) {
	p, engine, ui := newTestPlayer(t)

	a := trackA()
	p.PlayNow(&a)
	if len(engine.loads) != 1 || engine.loads[0] != a.ID {
		t.Fatalf("expected a single load of %s, got %v", a.ID, engine.loads)
	}
	if p.IsPlaying() {
		t.Error("not playing until the engine confirms the start")
	}

	started(p, a)
	if !p.IsPlaying() {
		t.Error("expected playing after engine start")
	}
	if e, ok := ui.lastOfType(EventPlaying); !ok || e.Track.ID != a.ID {
		t.Errorf("expected a playing event for %s", a.ID)
	}

	p.Toggle()
	if p.IsPlaying() {
		t.Error("toggle from playing must pause")
	}
	if engine.pauses != 1 {
		t.Errorf("expected 1 engine pause, got %d", engine.pauses)
	}

	p.Toggle()
	if !p.IsPlaying() {
		t.Error("toggle from paused must resume")
	}
	if engine.resumes != 1 {
		t.Errorf("expected 1 engine resume, got %d", engine.resumes)
	}
}

func TestPlayNothingLoadedIsNoop(t *testing.T) {
	p, engine, _ := newTestPlayer(t)

	p.Play(nil)
	p.Pause()
	p.Toggle()

	if len(engine.loads) != 0 || engine.resumes != 0 || engine.pauses != 0 {
		t.Error("transport commands issued with nothing loaded")
	}
}

func TestNextAdvancesAndWraps(t *testing.T) {
	p, engine, _ := newTestPlayer(t)
	p.AddToQueue(trackA())
	p.AddToQueue(trackB())
	p.AddToQueue(trackC())

	a := trackA()
	p.Play(&a)
	started(p, a)

	p.Next()
	if engine.loads[len(engine.loads)-1] != "rs-b" {
		t.Fatalf("expected next to load rs-b, got %v", engine.loads)
	}
	started(p, trackB())
	p.Next()
	started(p, trackC())
	p.Next()
	if engine.loads[len(engine.loads)-1] != "rs-a" {
		t.Errorf("expected next to wrap to rs-a, got %v", engine.loads)
	}
}

func TestNextOnEmptyQueueIsNoop(t *testing.T) {
	p, engine, _ := newTestPlayer(t)
	p.Next()
	p.Previous()
	if len(engine.loads) != 0 {
		t.Errorf("expected no loads, got %v", engine.loads)
	}
}

func TestPreviousRestartsAfterThreshold(t *testing.T) {
	p, engine, _ := newTestPlayer(t)
	p.AddToQueue(trackA())
	p.AddToQueue(trackB())

	b := trackB()
	p.Play(&b)
	started(p, b)
	p.SendEvent(media.Event{Type: media.EventStatus, Status: media.StatusData{Position: 10, Duration: 120}})

	p.Previous()
	if len(engine.seeks) != 1 || engine.seeks[0] != 0 {
		t.Fatalf("expected a restart seek to 0, got %v", engine.seeks)
	}
	if engine.loads[len(engine.loads)-1] != "rs-b" {
		t.Error("restart must not change the current track")
	}
}

func TestPreviousStepsBackEarly(t *testing.T) {
	p, engine, _ := newTestPlayer(t)
	p.AddToQueue(trackA())
	p.AddToQueue(trackB())

	b := trackB()
	p.Play(&b)
	started(p, b)
	p.SendEvent(media.Event{Type: media.EventStatus, Status: media.StatusData{Position: 1.5, Duration: 120}})

	p.Previous()
	if engine.loads[len(engine.loads)-1] != "rs-a" {
		t.Errorf("expected previous to load rs-a, got %v", engine.loads)
	}
}

func TestLoopRestartsInPlace(t *testing.T) {
	p, engine, _ := newTestPlayer(t)
	p.AddToQueue(trackA())
	p.AddToQueue(trackB())

	a := trackA()
	p.Play(&a)
	started(p, a)
	p.ToggleLoop()

	p.SendEvent(media.Event{Type: media.EventEnded, Track: &a})

	if len(engine.seeks) != 1 || engine.seeks[0] != 0 {
		t.Fatalf("expected loop to seek 0, got %v", engine.seeks)
	}
	if engine.resumes != 1 {
		t.Errorf("expected loop to resume, got %d resumes", engine.resumes)
	}
	if got := p.CurrentTrack(); got == nil || got.ID != a.ID {
		t.Error("loop must not advance the queue cursor")
	}
	if len(engine.loads) != 1 {
		t.Errorf("loop must not reload, got %v", engine.loads)
	}
}

func TestEndAdvancesWhenNotLooping(t *testing.T) {
	p, engine, _ := newTestPlayer(t)
	p.AddToQueue(trackA())
	p.AddToQueue(trackB())

	a := trackA()
	p.Play(&a)
	started(p, a)

	p.SendEvent(media.Event{Type: media.EventEnded, Track: &a})
	if engine.loads[len(engine.loads)-1] != "rs-b" {
		t.Errorf("expected end to advance to rs-b, got %v", engine.loads)
	}
}

func TestEndWithEmptyQueueStops(t *testing.T) {
	p, engine, ui := newTestPlayer(t)

	a := trackA()
	p.Play(&a)
	started(p, a)
	p.ClearQueue()

	p.SendEvent(media.Event{Type: media.EventEnded, Track: &a})
	if p.IsPlaying() {
		t.Error("expected stopped state")
	}
	if _, ok := ui.lastOfType(EventStopped); !ok {
		t.Error("expected a stopped event")
	}
	if len(engine.loads) != 1 {
		t.Errorf("expected no further loads, got %v", engine.loads)
	}
}

func TestUnplayableStopsPlayback(t *testing.T) {
	p, _, ui := newTestPlayer(t)

	a := trackA()
	p.Play(&a)
	p.SendEvent(media.Event{Type: media.EventUnplayable, Track: &a})

	if p.IsPlaying() {
		t.Error("unplayable must leave the player paused")
	}
	if e, ok := ui.lastOfType(EventUnplayable); !ok || e.Track.ID != a.ID {
		t.Error("expected an unplayable event")
	}
}

func TestVolumeAdjustClamps(t *testing.T) {
	p, engine, _ := newTestPlayer(t)

	p.AdjustVolume(0.5) // 0.7 + 0.5
	if p.Volume() != 1 {
		t.Errorf("expected volume clamped to 1, got %v", p.Volume())
	}
	p.AdjustVolume(-2)
	if p.Volume() != 0 {
		t.Errorf("expected volume clamped to 0, got %v", p.Volume())
	}
	if engine.volumes[0] != 1 || engine.volumes[1] != 0 {
		t.Errorf("engine volumes: %v", engine.volumes)
	}
}

func TestQueuePersistsAcrossPlayers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "voxwave")
	store := track.NewStore(dir)

	p := NewPlayer(&fakeEngine{}, store, logger.Init())
	p.AddToQueue(trackA())
	p.AddToQueue(trackB())
	p.RemoveFromQueue("rs-a")

	restored := NewPlayer(&fakeEngine{}, store, logger.Init())
	tracks := restored.QueueTracks()
	if len(tracks) != 1 || tracks[0].ID != "rs-b" {
		t.Errorf("expected the restored queue [rs-b], got %v", tracks)
	}
}

func TestTransportObserver(t *testing.T) {
	p, _, _ := newTestPlayer(t)

	var states []TransportState
	p.OnTransport(func(s TransportState) { states = append(states, s) })

	a := trackA()
	p.Play(&a)
	started(p, a) // fires: playing true
	p.Seek(33)    // must not fire
	p.SetVolume(0.2)
	p.ToggleLoop()
	p.Pause() // fires: playing false
	p.Pause() // already paused, must not fire

	if len(states) != 2 {
		t.Fatalf("expected 2 transport notifications, got %d", len(states))
	}
	if !states[0].Playing || states[0].Track.ID != a.ID {
		t.Errorf("first notification: %+v", states[0])
	}
	if states[1].Playing {
		t.Errorf("second notification should be a pause: %+v", states[1])
	}
}
