// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package media

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/track"
)

// maxLoadAttempts bounds how often a remote stream is (re)loaded before it is
// declared unplayable: the initial attempt plus two retries.
const maxLoadAttempts = 3

// Engine wraps one media element and adds source selection, bounded retry for
// remote streams and load cancellation. It emits events to a registered
// consumer and is never polled.
type Engine struct {
	element   Element
	logger    logger.LoggerInterface
	consumer  EventConsumer
	streamURL func(externalID string) string

	mu             sync.Mutex
	current        *track.Track
	attached       bool // a source is bound to the element
	loading        bool // bound but playback has not started yet
	replacePending bool // the previous source's teardown event is still due
	autoplay       bool // start playback once the source can play
	pendingSeek    *float64
	attempts       int
	duration       float64
}

// NewEngine creates an engine on top of element. streamURL builds the
// streaming endpoint for a remote track's external id; it may be nil, in
// which case the track's own URL is used as the base.
func NewEngine(element Element, streamURL func(string) string, logger logger.LoggerInterface) *Engine {
	return &Engine{
		element:   element,
		logger:    logger,
		streamURL: streamURL,
	}
}

func (e *Engine) RegisterEventConsumer(consumer EventConsumer) {
	e.consumer = consumer
}

// LoadAndPlay tears down whatever is attached and binds t's source. Playback
// begins once the element reports it can play, observed later through
// EventStarted. Calling this while a previous load is in flight abandons that
// load; its events can no longer affect the new track.
func (e *Engine) LoadAndPlay(t *track.Track) error {
	e.mu.Lock()
	e.replacePending = e.attached
	e.current = t
	e.attached = true
	e.loading = true
	e.autoplay = true
	e.pendingSeek = nil
	e.attempts = 1
	// the previous track's duration must not clamp seeks into the new one
	e.duration = 0
	uri := e.sourceURI(t)
	e.mu.Unlock()

	return e.element.Load(uri)
}

// Pause suspends playback. During a load it also cancels the deferred play,
// so a track loaded on behalf of a paused room stays paused.
func (e *Engine) Pause() error {
	e.mu.Lock()
	e.autoplay = false
	e.mu.Unlock()
	return e.element.Pause()
}

func (e *Engine) Resume() error {
	e.mu.Lock()
	e.autoplay = true
	loading := e.loading
	e.mu.Unlock()
	if loading {
		// the deferred play will fire on can-play
		return nil
	}
	return e.element.Play()
}

// Seek clamps to [0, duration]. A seek issued while the source is still
// loading is applied as soon as the source can play.
func (e *Engine) Seek(seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	e.mu.Lock()
	if e.duration > 0 && seconds > e.duration {
		seconds = e.duration
	}
	if e.loading {
		e.pendingSeek = &seconds
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	return e.element.Seek(seconds)
}

// SetVolume clamps to [0, 1].
func (e *Engine) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return e.element.SetVolume(v)
}

func (e *Engine) Quit() {
	e.element.Close()
}

// EventLoop consumes element events until the element closes its channel.
// Run it in its own goroutine.
func (e *Engine) EventLoop() {
	for evt := range e.element.Events() {
		switch evt.Type {
		case ElementCanPlay:
			e.onCanPlay()
		case ElementStarted:
			e.onStarted()
		case ElementEnded:
			e.onEnded()
		case ElementTime:
			e.mu.Lock()
			if evt.Duration > 0 {
				e.duration = evt.Duration
			}
			e.mu.Unlock()
			e.sendEvent(Event{Type: EventStatus, Status: StatusData{
				Position: evt.Position,
				Duration: evt.Duration,
			}})
		}
	}
}

func (e *Engine) onCanPlay() {
	e.mu.Lock()
	if !e.loading {
		e.mu.Unlock()
		return
	}
	seek := e.pendingSeek
	e.pendingSeek = nil
	autoplay := e.autoplay
	e.mu.Unlock()

	if seek != nil {
		if err := e.element.Seek(*seek); err != nil {
			e.logger.PrintError("canplay seek", err)
		}
	}
	if autoplay {
		if err := e.element.Play(); err != nil {
			e.logger.PrintError("canplay play", err)
		}
	}
}

func (e *Engine) onStarted() {
	e.mu.Lock()
	if !e.loading {
		// playback restarts after seeks are not track starts
		e.mu.Unlock()
		return
	}
	e.loading = false
	e.replacePending = false
	current := e.current
	e.mu.Unlock()

	e.sendEvent(Event{Type: EventStarted, Track: current})
}

func (e *Engine) onEnded() {
	e.mu.Lock()
	if e.replacePending {
		// teardown of the source we just replaced, not a failure
		e.replacePending = false
		e.mu.Unlock()
		return
	}
	current := e.current
	if e.loading {
		// the source never started: load failure
		if current != nil && current.IsRemote() && e.attempts < maxLoadAttempts {
			e.attempts++
			uri := e.sourceURI(current)
			e.mu.Unlock()
			e.logger.Printf("media: retrying %s (attempt %d)", current.ID, e.attempts)
			if err := e.element.Load(uri); err != nil {
				e.logger.PrintError("retry load", err)
			}
			return
		}
		e.loading = false
		e.attached = false
		e.mu.Unlock()
		e.sendEvent(Event{Type: EventUnplayable, Track: current})
		return
	}
	e.attached = false
	e.mu.Unlock()
	e.sendEvent(Event{Type: EventEnded, Track: current})
}

// sourceURI derives the playable locator. Remote streams resolve through the
// streaming endpoint keyed by the track's external id and get a fresh
// cache-busting timestamp per attempt; local files are taken as-is.
func (e *Engine) sourceURI(t *track.Track) string {
	if !t.IsRemote() {
		return t.URL
	}
	base := t.URL
	if e.streamURL != nil {
		base = e.streamURL(t.ExternalID())
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_=%d", base, sep, time.Now().UnixMilli())
}

func (e *Engine) sendEvent(event Event) {
	if e.consumer != nil {
		e.consumer.SendEvent(event)
	}
}
