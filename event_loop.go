// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"time"

	"github.com/voxwave/voxwave/player"
	"github.com/voxwave/voxwave/track"
)

type eventLoop struct {
	// directory polls are handled by the background loop
	roomRefresh *time.Ticker
}

func (ui *Ui) initEventLoops() {
	ui.eventLoop = &eventLoop{
		roomRefresh: time.NewTicker(30 * time.Second),
	}
}

func (ui *Ui) runEventLoops() {
	go ui.guiEventLoop()
	go ui.backgroundEventLoop()
}

// handle ui updates
func (ui *Ui) guiEventLoop() {
	for {
		select {
		case msg := <-ui.logger.Prints:
			// handle log page output
			ui.logPage.Print(msg)

		case <-ui.roomChanges:
			ui.app.QueueUpdateDraw(ui.roomPage.update)

		case event := <-ui.playerEvents:
			switch event.Type {
			case player.EventStatus:
				status := event.Status
				ui.app.QueueUpdateDraw(func() {
					ui.playerStatus.SetText(formatPlayerStatus(status.Volume, status.Position, status.Duration))
				})

			case player.EventStopped:
				ui.logger.Print("playerEvent: stopped")
				ui.app.QueueUpdateDraw(func() {
					ui.startStopStatus.SetText("[red::b]Stopped[::-]")
					ui.queuePage.UpdateQueue()
				})

			case player.EventPlaying:
				statusText := "[green::b]Playing[::-]"
				statusText += formatTrackForStatusBar(event.Track)

				if ui.mprisPlayer != nil && event.Track != nil {
					ui.mprisPlayer.OnSongChange(event.Track)
				}

				ui.app.QueueUpdateDraw(func() {
					ui.startStopStatus.SetText(statusText)
					ui.queuePage.UpdateQueue()
				})

			case player.EventPaused:
				statusText := "[yellow::b]Paused[::-]"
				statusText += formatTrackForStatusBar(event.Track)

				ui.app.QueueUpdateDraw(func() {
					ui.startStopStatus.SetText(statusText)
				})

			case player.EventUnplayable:
				title := "track"
				if event.Track != nil {
					title = event.Track.Title
				}
				ui.logger.Printf("playerEvent: %s is unplayable", title)
				ui.app.QueueUpdateDraw(func() {
					ui.startStopStatus.SetText("[red::b]Unplayable:[::-] " + formatTrackForStatusBar(event.Track))
				})

			default:
				ui.logger.Printf("guiEventLoop: unhandled playerEvent %v", event)
			}
		}
	}
}

// loop for blocking background tasks that would otherwise block the ui
func (ui *Ui) backgroundEventLoop() {
	for range ui.eventLoop.roomRefresh.C {
		// keep the room page's directory view fresh while connected
		roomID := ui.session.RoomID()
		if roomID == "" {
			continue
		}
		status, err := ui.connection.GetRoom(roomID)
		if err != nil {
			ui.logger.PrintError("room refresh", err)
			continue
		}
		ui.app.QueueUpdateDraw(func() {
			ui.roomPage.updateDirectory(status)
		})
	}
}

var _ player.EventConsumer = (*Ui)(nil)

// playTrack is the "select a song" entry point shared by the queue and
// search pages.
func (ui *Ui) playTrack(t *track.Track) {
	ui.player.PlayNow(t)
	ui.queuePage.UpdateQueue()
}
