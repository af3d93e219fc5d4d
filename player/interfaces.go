// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package player

import (
	"github.com/voxwave/voxwave/media"
	"github.com/voxwave/voxwave/track"
)

// TransportEngine is the slice of the media engine the player drives.
type TransportEngine interface {
	LoadAndPlay(t *track.Track) error
	Pause() error
	Resume() error
	Seek(seconds float64) error
	SetVolume(v float64) error
}

type UiEventType int

const (
	// a track started or resumed playing, data: Track
	EventPlaying UiEventType = iota
	// playback paused, data: Track
	EventPaused
	// nothing left to play, data: nil
	EventStopped
	// a track failed all load attempts, data: Track
	EventUnplayable
	// UI status update, data: StatusData
	EventStatus
)

type UiEvent struct {
	Type   UiEventType
	Track  *track.Track
	Status StatusData
}

// StatusData is a player progress report for the UI
type StatusData struct {
	Volume   float64
	Position float64
	Duration float64
}

type EventConsumer interface {
	// create event that goes from the player to a UI frontend
	SendEvent(event UiEvent)
}

// TransportState is the broadcastable tuple: what is audible right now.
type TransportState struct {
	Track    *track.Track
	Playing  bool
	Position float64
}

var _ media.EventConsumer = (*Player)(nil)
