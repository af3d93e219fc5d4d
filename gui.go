// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/voxwave/voxwave/catalog"
	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/media"
	"github.com/voxwave/voxwave/player"
	"github.com/voxwave/voxwave/remote"
	"github.com/voxwave/voxwave/room"
)

// struct contains all the updatable elements of the Ui
type Ui struct {
	app   *tview.Application
	pages *tview.Pages

	// top bar
	startStopStatus *tview.TextView
	playerStatus    *tview.TextView

	// bottom bar
	menuBar *tview.TextView

	// pages
	queuePage  *QueuePage
	searchPage *SearchPage
	roomPage   *RoomPage
	logPage    *LogPage

	eventLoop    *eventLoop
	playerEvents chan player.UiEvent
	roomChanges  chan struct{}
	mprisPlayer  *remote.MprisPlayer

	connection *catalog.Client
	player     *player.Player
	engine     *media.Engine
	session    *room.Session
	logger     *logger.Logger
}

const (
	// page identifiers (use these instead of hardcoding page names for showing/hiding)
	PageQueue  = "queue"
	PageSearch = "search"
	PageRoom   = "room"
	PageLog    = "log"
)

func InitGui(connection *catalog.Client,
	player_ *player.Player,
	engine *media.Engine,
	session *room.Session,
	logger *logger.Logger,
	mprisPlayer *remote.MprisPlayer) (ui *Ui) {
	ui = &Ui{
		eventLoop:    nil, // initialized by initEventLoops()
		playerEvents: make(chan player.UiEvent, 5),
		roomChanges:  make(chan struct{}, 1),

		connection:  connection,
		player:      player_,
		engine:      engine,
		session:     session,
		logger:      logger,
		mprisPlayer: mprisPlayer,
	}

	ui.initEventLoops()

	ui.app = tview.NewApplication()
	ui.pages = tview.NewPages()

	// status text at the top
	statusLeft := fmt.Sprintf("[::b]%s[::-] %s", Name, Version)
	ui.startStopStatus = tview.NewTextView().SetText(statusLeft).
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true).
		SetScrollable(false)
	ui.startStopStatus.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		return action, nil
	})

	statusRight := formatPlayerStatus(0.7, 0, 0)
	ui.playerStatus = tview.NewTextView().SetText(statusRight).
		SetTextAlign(tview.AlignRight).
		SetDynamicColors(true).
		SetScrollable(false)

	ui.menuBar = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetText("[yellow]1[white]queue [yellow]2[white]search [yellow]3[white]room [yellow]4[white]log " +
			"[yellow]space[white]play/pause [yellow]>[white]next [yellow]<[white]prev [yellow]Q[white]uit")

	// top bar: status text
	topBarFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(ui.startStopStatus, 0, 1, false).
		AddItem(ui.playerStatus, 24, 0, false)

	ui.queuePage = ui.createQueuePage()
	ui.searchPage = ui.createSearchPage()
	ui.roomPage = ui.createRoomPage()
	ui.logPage = ui.createLogPage()

	ui.pages.AddPage(PageQueue, ui.queuePage.Root, true, true).
		AddPage(PageSearch, ui.searchPage.Root, true, false).
		AddPage(PageRoom, ui.roomPage.Root, true, false).
		AddPage(PageLog, ui.logPage.Root, true, false)

	rootFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(topBarFlex, 1, 0, false).
		AddItem(ui.pages, 0, 1, true).
		AddItem(ui.menuBar, 1, 0, false)

	// add main input handler
	rootFlex.SetInputCapture(ui.handlePageInput)

	ui.app.SetRoot(rootFlex, true).
		SetFocus(rootFlex).
		EnableMouse(true)

	return ui
}

// SendEvent receives player events for the gui event loop. Non-blocking so a
// stalled gui can never back-pressure the player.
func (ui *Ui) SendEvent(event player.UiEvent) {
	select {
	case ui.playerEvents <- event:
	default:
	}
}

func (ui *Ui) Run() error {
	// receive events from the player
	ui.player.RegisterEventConsumer(ui)

	// room changes redraw the room page; hand off to the gui event loop so
	// callbacks fired from input handlers can't block the main loop
	ui.session.OnChange(func() {
		select {
		case ui.roomChanges <- struct{}{}:
		default:
		}
	})

	// run gui/background event handler
	ui.runEventLoops()

	// run the playback engine's event pump
	go ui.engine.EventLoop()

	// gui main loop (blocking)
	return ui.app.Run()
}

func (ui *Ui) showMessage(text string) {
	ui.logger.Print(text)
	ui.startStopStatus.SetText(fmt.Sprintf("[yellow]%s[-:-:-]", tview.Escape(text)))
}
