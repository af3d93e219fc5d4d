// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/voxwave/voxwave/catalog"
	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/track"
)

// SearchPage searches the external catalog and browses the server's uploaded
// library side by side.
type SearchPage struct {
	Root *tview.Flex

	resultList  *tview.List
	libraryList *tview.List
	searchField *tview.InputField

	results []catalog.SearchResult
	songs   []catalog.Song

	// external refs
	ui     *Ui
	logger logger.LoggerInterface
}

func (ui *Ui) createSearchPage() *SearchPage {
	searchPage := SearchPage{
		ui:     ui,
		logger: ui.logger,
	}

	searchPage.resultList = tview.NewList().
		ShowSecondaryText(true)
	searchPage.resultList.Box.
		SetTitle(" catalog ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)

	searchPage.libraryList = tview.NewList().
		ShowSecondaryText(false)
	searchPage.libraryList.Box.
		SetTitle(" uploads ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)

	searchPage.searchField = tview.NewInputField().
		SetLabel("search:").
		SetFieldBackgroundColor(tcell.ColorBlack)

	columnsFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(searchPage.resultList, 0, 2, false).
		AddItem(searchPage.libraryList, 0, 1, false)

	searchPage.Root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(columnsFlex, 0, 1, false).
		AddItem(searchPage.searchField, 1, 1, true)

	searchPage.resultList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyRight:
			ui.app.SetFocus(searchPage.libraryList)
			return nil
		case tcell.KeyEnter:
			if t := searchPage.selectedResult(); t != nil {
				ui.playTrack(t)
			}
			return nil
		}

		switch event.Rune() {
		case 'a':
			if t := searchPage.selectedResult(); t != nil {
				ui.player.AddToQueue(*t)
				ui.queuePage.UpdateQueue()
			}
			return nil
		case 'y':
			searchPage.saveSelectedResult()
			return nil
		case '/':
			ui.app.SetFocus(searchPage.searchField)
			return nil
		}

		return event
	})

	searchPage.libraryList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyRight:
			ui.app.SetFocus(searchPage.resultList)
			return nil
		case tcell.KeyEnter:
			if t := searchPage.selectedSong(); t != nil {
				ui.playTrack(t)
			}
			return nil
		}

		switch event.Rune() {
		case 'a':
			if t := searchPage.selectedSong(); t != nil {
				ui.player.AddToQueue(*t)
				ui.queuePage.UpdateQueue()
			}
			return nil
		case 'r':
			searchPage.refreshLibrary()
			return nil
		case '/':
			ui.app.SetFocus(searchPage.searchField)
			return nil
		}

		return event
	})

	searchPage.searchField.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyESC:
			ui.app.SetFocus(searchPage.resultList)
		case tcell.KeyEnter:
			searchPage.search()
			if len(searchPage.results) > 0 {
				ui.app.SetFocus(searchPage.resultList)
			}
		default:
			return event
		}
		return nil
	})

	return &searchPage
}

func (s *SearchPage) search() {
	query := s.searchField.GetText()
	if len(query) == 0 {
		return
	}

	results, err := s.ui.connection.Search(query)
	if err != nil {
		s.logger.PrintError("SearchPage.search", err)
		return
	}

	s.resultList.Clear()
	s.results = results
	for _, r := range results {
		s.resultList.AddItem(tview.Escape(r.Title), tview.Escape(r.Channel+"  "+r.Duration), 0, nil)
	}
}

func (s *SearchPage) refreshLibrary() {
	songs, err := s.ui.connection.Library()
	if err != nil {
		s.logger.PrintError("SearchPage.refreshLibrary", err)
		return
	}

	s.libraryList.Clear()
	s.songs = songs
	for _, song := range songs {
		s.libraryList.AddItem(tview.Escape(song.OriginalName), "", 0, nil)
	}
}

func (s *SearchPage) selectedResult() *track.Track {
	idx := s.resultList.GetCurrentItem()
	if idx < 0 || idx >= len(s.results) {
		return nil
	}
	r := s.results[idx]
	t := track.NewRemoteTrack(r.ID, r.Title, r.Thumbnail, s.ui.connection.StreamURL(r.ID))
	t.Artist = r.Channel
	return t
}

func (s *SearchPage) selectedSong() *track.Track {
	idx := s.libraryList.GetCurrentItem()
	if idx < 0 || idx >= len(s.songs) {
		return nil
	}
	song := s.songs[idx]
	return track.NewLocalTrack(song.Filename, song.OriginalName, s.ui.connection.SongURL(song.Filename))
}

func (s *SearchPage) saveSelectedResult() {
	t := s.selectedResult()
	if t == nil {
		return
	}
	if !s.ui.connection.Authenticated() {
		s.ui.showMessage("log in to save tracks")
		return
	}
	err := s.ui.connection.SaveTrack(catalog.SavedTrack{
		TrackID:   t.ExternalID(),
		Source:    string(t.Source),
		Title:     t.Title,
		Artist:    t.Artist,
		Thumbnail: t.Thumbnail,
	})
	if err != nil {
		s.logger.PrintError("SearchPage.saveSelectedResult", err)
		return
	}
	s.ui.showMessage("saved " + t.Title)
}
