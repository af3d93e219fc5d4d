// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/track"
)

type QueuePage struct {
	Root *tview.Flex

	queueList *tview.Table
	trackInfo *tview.TextView

	// our copy of the queue
	tracks []track.Track

	// external refs
	ui     *Ui
	logger logger.LoggerInterface
}

func (ui *Ui) createQueuePage() *QueuePage {
	queuePage := QueuePage{
		ui:     ui,
		logger: ui.logger,
	}

	// main table
	queuePage.queueList = tview.NewTable().
		SetSelectable(true, false). // rows selectable
		SetSelectedStyle(tcell.StyleDefault.Background(tcell.ColorLightGray).Foreground(tcell.ColorBlack))
	queuePage.queueList.Box.
		SetTitle(" queue ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)

	queuePage.queueList.SetSelectedFunc(func(row, column int) {
		if row < 0 || row >= len(queuePage.tracks) {
			return
		}
		selected := queuePage.tracks[row]
		ui.playTrack(&selected)
	})

	queuePage.queueList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyDelete || event.Rune() == 'd' {
			queuePage.handleDeleteFromQueue()
			return nil
		}
		return event
	})

	queuePage.queueList.SetSelectionChangedFunc(queuePage.changeSelection)

	// track info
	queuePage.trackInfo = tview.NewTextView()
	queuePage.trackInfo.SetDynamicColors(true).SetScrollable(true).SetBorder(true).SetTitle(" track ")

	// flex wrapper
	queuePage.Root = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(queuePage.queueList, 0, 2, true).
		AddItem(queuePage.trackInfo, 0, 1, false)

	return &queuePage
}

func (q *QueuePage) UpdateQueue() {
	q.tracks = q.ui.player.QueueTracks()
	current := q.ui.player.CurrentTrack()

	q.queueList.Clear()
	for row, t := range q.tracks {
		marker := "  "
		if current != nil && current.ID == t.ID {
			marker = "[green]> "
		}
		title := t.Title
		if title == "" {
			title = t.ExternalID()
		}
		q.queueList.SetCell(row, 0, tview.NewTableCell(marker+tview.Escape(title)).SetExpansion(3))
		q.queueList.SetCell(row, 1, tview.NewTableCell(tview.Escape(t.Artist)).SetExpansion(2))
		q.queueList.SetCell(row, 2, tview.NewTableCell(string(t.Source)).SetExpansion(1))
	}
}

func (q *QueuePage) changeSelection(row, column int) {
	q.trackInfo.Clear()
	if row < 0 || row >= len(q.tracks) || column < 0 {
		return
	}
	t := q.tracks[row]
	text := fmt.Sprintf("[::b]%s[::-]", tview.Escape(t.Title))
	if t.Artist != "" {
		text += "\nby " + tview.Escape(t.Artist)
	}
	text += "\nsource: " + string(t.Source)
	if t.IsRemote() {
		text += "\ncatalog id: " + tview.Escape(t.ExternalID())
	}
	fmt.Fprint(q.trackInfo, text)
}

func (q *QueuePage) handleDeleteFromQueue() {
	row, _ := q.queueList.GetSelection()
	if row < 0 || row >= len(q.tracks) {
		return
	}
	q.ui.player.RemoveFromQueue(q.tracks[row].ID)
	q.UpdateQueue()
}
