// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package player

import (
	"sync"

	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/media"
	"github.com/voxwave/voxwave/track"
)

// previousRestartThreshold: elapsed seconds beyond which "previous" restarts
// the current track instead of moving the queue cursor.
const previousRestartThreshold = 3.0

// Player is the single source of truth for what should be playing. All
// transitions run to completion under one lock, driven by user commands,
// engine events and accepted room updates.
type Player struct {
	engine   TransportEngine
	store    *track.Store
	logger   logger.LoggerInterface
	consumer EventConsumer

	mu        sync.Mutex
	queue     *track.Queue
	current   *track.Track
	playing   bool
	position  float64
	duration  float64
	volume    float64
	looping   bool
	shuffling bool

	cbOnTransport []func(TransportState)
}

// NewPlayer restores the persisted queue if a store is given.
func NewPlayer(engine TransportEngine, store *track.Store, logger logger.LoggerInterface) *Player {
	queue := track.NewQueue(nil)
	if store != nil {
		queue = store.Load()
	}
	return &Player{
		engine: engine,
		store:  store,
		logger: logger,
		queue:  queue,
		volume: 0.7,
	}
}

func (p *Player) RegisterEventConsumer(consumer EventConsumer) {
	p.consumer = consumer
}

// OnTransport registers a callback fired whenever the current track or the
// playing flag changes. Seeks, volume and flag toggles do not fire it.
func (p *Player) OnTransport(cb func(TransportState)) {
	p.mu.Lock()
	p.cbOnTransport = append(p.cbOnTransport, cb)
	p.mu.Unlock()
}

// Play loads t when given; explicit track selection always wins, whatever
// state we are in. With a nil track it resumes the current track and is a
// no-op when nothing is loaded.
func (p *Player) Play(t *track.Track) {
	if t != nil {
		p.mu.Lock()
		p.current = t
		p.playing = false
		p.position = 0
		p.mu.Unlock()
		if err := p.engine.LoadAndPlay(t); err != nil {
			p.logger.PrintError("LoadAndPlay", err)
		}
		// the playing flag flips when the engine reports the start
		return
	}

	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return
	}
	p.playing = true
	state := p.transportLocked()
	p.mu.Unlock()

	if err := p.engine.Resume(); err != nil {
		p.logger.PrintError("Resume", err)
	}
	p.notifyTransport(state)
	p.sendUiEvent(UiEvent{Type: EventPlaying, Track: state.Track})
}

// PlayNow queues t (dedup applies) and makes it the current track.
func (p *Player) PlayNow(t *track.Track) {
	p.AddToQueue(*t)
	p.Play(t)
}

func (p *Player) Pause() {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return
	}
	wasPlaying := p.playing
	p.playing = false
	state := p.transportLocked()
	p.mu.Unlock()

	// always told to the engine so a pause arriving while a track is still
	// loading cancels the deferred play
	if err := p.engine.Pause(); err != nil {
		p.logger.PrintError("Pause", err)
	}
	if wasPlaying {
		p.notifyTransport(state)
		p.sendUiEvent(UiEvent{Type: EventPaused, Track: state.Track})
	}
}

func (p *Player) Toggle() {
	p.mu.Lock()
	playing := p.playing
	p.mu.Unlock()
	if playing {
		p.Pause()
	} else {
		p.Play(nil)
	}
}

// Next plays the queue's next pick. An empty queue is a no-op.
func (p *Player) Next() {
	p.mu.Lock()
	currentID := ""
	if p.current != nil {
		currentID = p.current.ID
	}
	next, ok := p.queue.PickNext(currentID, p.shuffling)
	p.mu.Unlock()
	if !ok {
		return
	}
	p.Play(&next)
}

// Previous restarts the current track when more than a few seconds have
// elapsed, otherwise it steps the queue cursor back.
func (p *Player) Previous() {
	p.mu.Lock()
	if p.queue.Len() == 0 {
		p.mu.Unlock()
		return
	}
	if p.position > previousRestartThreshold && p.current != nil {
		p.mu.Unlock()
		p.Seek(0)
		return
	}
	currentID := ""
	if p.current != nil {
		currentID = p.current.ID
	}
	prev, ok := p.queue.PickPrevious(currentID)
	p.mu.Unlock()
	if !ok {
		return
	}
	p.Play(&prev)
}

// Seek forwards to the engine; the playing/paused state is untouched. The
// local position estimate is updated immediately and corrected by the next
// engine tick.
func (p *Player) Seek(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	p.mu.Lock()
	p.position = seconds
	p.mu.Unlock()
	if err := p.engine.Seek(seconds); err != nil {
		p.logger.PrintError("Seek", err)
	}
}

// SetVolume is a purely local action, never broadcast to a room.
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
	if err := p.engine.SetVolume(v); err != nil {
		p.logger.PrintError("SetVolume", err)
	}
}

func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v)
}

func (p *Player) ToggleLoop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.looping = !p.looping
	return p.looping
}

func (p *Player) ToggleShuffle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shuffling = !p.shuffling
	return p.shuffling
}

// Queue mutations are always permitted, whatever the room role; they are
// local-only and never part of the sync protocol. Every mutation is persisted
// best-effort.
func (p *Player) AddToQueue(t track.Track) {
	p.mu.Lock()
	p.queue.Add(t)
	items := p.queue.Tracks()
	p.mu.Unlock()
	p.persist(items)
}

func (p *Player) RemoveFromQueue(id string) {
	p.mu.Lock()
	p.queue.Remove(id)
	items := p.queue.Tracks()
	p.mu.Unlock()
	p.persist(items)
}

func (p *Player) ClearQueue() {
	p.mu.Lock()
	p.queue.Clear()
	items := p.queue.Tracks()
	p.mu.Unlock()
	p.persist(items)
}

func (p *Player) QueueTracks() []track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Tracks()
}

func (p *Player) CurrentTrack() *track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *Player) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *Player) IsLooping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.looping
}

func (p *Player) IsShuffling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shuffling
}

// SendEvent receives engine events; this is where true playback state flows
// back into the state machine.
func (p *Player) SendEvent(event media.Event) {
	switch event.Type {
	case media.EventStarted:
		p.mu.Lock()
		if event.Track != nil {
			p.current = event.Track
		}
		p.playing = true
		p.position = 0
		state := p.transportLocked()
		p.mu.Unlock()
		p.notifyTransport(state)
		p.sendUiEvent(UiEvent{Type: EventPlaying, Track: state.Track})

	case media.EventEnded:
		p.onEnded()

	case media.EventUnplayable:
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
		if event.Track != nil {
			p.logger.Printf("player: %s is unplayable", event.Track.ID)
		}
		p.sendUiEvent(UiEvent{Type: EventUnplayable, Track: event.Track})

	case media.EventStatus:
		p.mu.Lock()
		p.position = event.Status.Position
		if event.Status.Duration > 0 {
			p.duration = event.Status.Duration
		}
		volume := p.volume
		p.mu.Unlock()
		p.sendUiEvent(UiEvent{Type: EventStatus, Status: StatusData{
			Volume:   volume,
			Position: event.Status.Position,
			Duration: event.Status.Duration,
		}})
	}
}

func (p *Player) onEnded() {
	p.mu.Lock()
	looping := p.looping
	p.mu.Unlock()

	if looping {
		// restart in place, the queue cursor does not move
		if err := p.engine.Seek(0); err != nil {
			p.logger.PrintError("loop seek", err)
		}
		if err := p.engine.Resume(); err != nil {
			p.logger.PrintError("loop resume", err)
		}
		p.mu.Lock()
		p.position = 0
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	currentID := ""
	if p.current != nil {
		currentID = p.current.ID
	}
	next, ok := p.queue.PickNext(currentID, p.shuffling)
	if !ok {
		p.playing = false
		state := p.transportLocked()
		p.mu.Unlock()
		p.notifyTransport(state)
		p.sendUiEvent(UiEvent{Type: EventStopped})
		return
	}
	p.mu.Unlock()
	p.Play(&next)
}

func (p *Player) transportLocked() TransportState {
	return TransportState{
		Track:    p.current,
		Playing:  p.playing,
		Position: p.position,
	}
}

func (p *Player) notifyTransport(state TransportState) {
	p.mu.Lock()
	cbs := make([]func(TransportState), len(p.cbOnTransport))
	copy(cbs, p.cbOnTransport)
	p.mu.Unlock()
	for _, cb := range cbs {
		cb(state)
	}
}

func (p *Player) sendUiEvent(event UiEvent) {
	if p.consumer != nil {
		p.consumer.SendEvent(event)
	}
}

func (p *Player) persist(items []track.Track) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(items); err != nil {
		p.logger.PrintError("queue save", err)
	}
}
