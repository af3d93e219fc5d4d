// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"github.com/gdamore/tcell/v2"
)

func (ui *Ui) handlePageInput(event *tcell.EventKey) *tcell.EventKey {
	// don't fire global keys while typing into a field
	focused := ui.app.GetFocus()
	if focused == ui.searchPage.searchField || focused == ui.roomPage.referenceField {
		return event
	}

	switch event.Rune() {
	case '1':
		ui.ShowPage(PageQueue)

	case '2':
		ui.ShowPage(PageSearch)

	case '3':
		ui.ShowPage(PageRoom)

	case '4':
		ui.ShowPage(PageLog)

	case 'Q':
		ui.Quit()

	case ' ':
		ui.player.Toggle()

	case '>', 'n':
		ui.player.Next()
		ui.queuePage.UpdateQueue()

	case '<', 'N':
		ui.player.Previous()
		ui.queuePage.UpdateQueue()

	case '-':
		ui.player.AdjustVolume(-0.05)

	case '+', '=':
		ui.player.AdjustVolume(0.05)

	case '.':
		ui.player.Seek(ui.player.Position() + 10)

	case ',':
		ui.player.Seek(ui.player.Position() - 10)

	case 'l':
		if ui.player.ToggleLoop() {
			ui.showMessage("loop on")
		} else {
			ui.showMessage("loop off")
		}

	case 's':
		if ui.player.ToggleShuffle() {
			ui.showMessage("shuffle on")
		} else {
			ui.showMessage("shuffle off")
		}

	case 'D':
		// clear queue, playback finishes the current track
		ui.player.ClearQueue()
		ui.queuePage.UpdateQueue()

	default:
		return event
	}

	return nil
}

func (ui *Ui) ShowPage(name string) {
	ui.pages.SwitchToPage(name)
	_, prim := ui.pages.GetFrontPage()
	ui.app.SetFocus(prim)
}

func (ui *Ui) Quit() {
	// the queue is persisted on every mutation, nothing to stash here
	ui.session.Leave()
	ui.engine.Quit()
	ui.app.Stop()
}
