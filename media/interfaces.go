// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package media

import "github.com/voxwave/voxwave/track"

// ElementEventType enumerates what the platform media primitive reports.
type ElementEventType int

const (
	// source is loaded far enough to start playback
	ElementCanPlay ElementEventType = iota
	// playback is audibly running
	ElementStarted
	// the attached source is gone: end of file, load failure or teardown
	ElementEnded
	// position/duration tick, data: Position and Duration
	ElementTime
)

type ElementEvent struct {
	Type     ElementEventType
	Position float64
	Duration float64
}

// Element is the platform media primitive: one attached source at a time,
// imperative transport, events out. The engine owns exactly one.
type Element interface {
	Load(uri string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(v float64) error
	Position() (float64, error)
	Duration() (float64, error)
	Events() <-chan ElementEvent
	Close()
}

// EventType enumerates events the engine reports to its consumer.
type EventType int

const (
	// a track started playing, data: Track
	EventStarted EventType = iota
	// the current track played to its end, data: Track
	EventEnded
	// a track could not be loaded after all attempts, data: Track
	EventUnplayable
	// progress report, data: Status
	EventStatus
)

type Event struct {
	Type   EventType
	Track  *track.Track
	Status StatusData
}

// StatusData is a playback progress report
type StatusData struct {
	Position float64
	Duration float64
}

type EventConsumer interface {
	// receives events going from the engine to the player
	SendEvent(event Event)
}
