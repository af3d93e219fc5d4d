// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/voxwave/voxwave/catalog"
	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/room"
)

// RoomPage joins, creates and shows listening rooms.
type RoomPage struct {
	Root *tview.Flex

	roomStatus     *tview.TextView
	activityList   *tview.List
	referenceField *tview.InputField

	joinURL   string
	directory string

	// external refs
	ui     *Ui
	logger logger.LoggerInterface
}

func (ui *Ui) createRoomPage() *RoomPage {
	roomPage := RoomPage{
		ui:     ui,
		logger: ui.logger,
	}

	roomPage.roomStatus = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	roomPage.roomStatus.Box.
		SetTitle(" room ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)

	roomPage.activityList = tview.NewList().
		ShowSecondaryText(false)
	roomPage.activityList.Box.
		SetTitle(" activity ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)

	roomPage.referenceField = tview.NewInputField().
		SetLabel("join room (id or invite link): ").
		SetFieldBackgroundColor(tcell.ColorBlack)

	roomPage.Root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(roomPage.roomStatus, 7, 0, false).
		AddItem(roomPage.activityList, 0, 1, false).
		AddItem(roomPage.referenceField, 1, 1, true)

	roomPage.referenceField.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyESC:
			ui.app.SetFocus(roomPage.activityList)
		case tcell.KeyEnter:
			roomPage.joinFromReference()
		default:
			return event
		}
		return nil
	})

	roomPage.activityList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'c':
			roomPage.createRoom()
			return nil
		case 'x':
			ui.session.Leave()
			return nil
		case '/':
			ui.app.SetFocus(roomPage.referenceField)
			return nil
		}
		return event
	})

	roomPage.update()
	return &roomPage
}

// joinFromReference accepts a bare room id or a shared invite link.
func (r *RoomPage) joinFromReference() {
	reference := r.referenceField.GetText()
	if reference == "" {
		return
	}
	roomID := room.ParseJoinURL(reference)
	r.referenceField.SetText("")
	r.joinURL = ""

	go func() {
		if err := r.ui.session.Join(roomID); err != nil {
			r.logger.PrintError("RoomPage.join", err)
		}
	}()
}

func (r *RoomPage) createRoom() {
	if !r.ui.connection.Authenticated() {
		r.ui.showMessage("log in to host a room")
		return
	}

	created, err := r.ui.connection.CreateRoom()
	if err != nil {
		r.logger.PrintError("RoomPage.createRoom", err)
		return
	}
	r.joinURL = created.JoinURL
	r.logger.Printf("room %s created, invite: %s", created.RoomID, created.JoinURL)

	go func() {
		if err := r.ui.session.Join(created.RoomID); err != nil {
			r.logger.PrintError("RoomPage.createRoom join", err)
		}
	}()
}

// update re-renders the page from session state. Runs on the UI goroutine.
func (r *RoomPage) update() {
	session := r.ui.session

	r.roomStatus.Clear()
	text := fmt.Sprintf("state: [::b]%s[::-]\n", session.State())
	if session.RoomID() != "" {
		role := "listener"
		if session.IsHost() {
			role = "host"
		}
		text += fmt.Sprintf("room: %s\nrole: %s\nhost: %s\nlistening: %d\n",
			tview.Escape(session.RoomID()), role,
			tview.Escape(session.HostID()), session.ListenerCount())
	} else {
		text += "press [yellow]c[white] to host a room, or join one below\n"
	}
	if r.joinURL != "" {
		text += "invite: " + tview.Escape(r.joinURL) + "\n"
	}
	if r.directory != "" {
		text += r.directory + "\n"
	}
	fmt.Fprint(r.roomStatus, text)

	r.activityList.Clear()
	activity := session.Activity()
	for i := len(activity) - 1; i >= 0; i-- {
		r.activityList.AddItem(tview.Escape(activity[i]), "", 0, nil)
	}
}

// updateDirectory renders the latest directory poll. Runs on the UI
// goroutine.
func (r *RoomPage) updateDirectory(status catalog.RoomStatus) {
	verb := "paused"
	if status.IsPlaying {
		verb = "playing"
	}
	r.directory = fmt.Sprintf("directory: %s at %.0fs, %d connected",
		verb, status.CurrentTime, status.ListenerCount)
	r.update()
}
