// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import "github.com/voxwave/voxwave/track"

// ControlledPlayer is what a desktop remote needs from the player.
// *player.Player satisfies it directly.
type ControlledPlayer interface {
	IsPlaying() bool

	// Play with a nil track resumes the current one.
	Play(t *track.Track)
	Pause()
	Toggle()
	Next()
	Previous()

	Seek(seconds float64)
	Position() float64

	SetVolume(v float64)
	Volume() float64

	CurrentTrack() *track.Track
}
