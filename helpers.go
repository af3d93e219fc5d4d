// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/voxwave/voxwave/track"
)

func secondsToMinAndSec(seconds float64) (int, int) {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	return whole / 60, whole % 60
}

func formatPlayerStatus(volume, position, duration float64) string {
	positionMin, positionSec := secondsToMinAndSec(position)
	durationMin, durationSec := secondsToMinAndSec(duration)

	return fmt.Sprintf("[%d%%][::b][%02d:%02d/%02d:%02d]",
		int(volume*100), positionMin, positionSec, durationMin, durationSec)
}

func formatTrackForStatusBar(currentTrack *track.Track) (text string) {
	if currentTrack == nil {
		return
	}
	if currentTrack.Title != "" {
		text += "[::-] [white]" + tview.Escape(currentTrack.Title)
	}
	if currentTrack.Artist != "" {
		text += " [gray]by [white]" + tview.Escape(currentTrack.Artist)
	}
	return
}
