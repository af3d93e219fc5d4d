// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package media

import (
	"errors"
	"strconv"

	"github.com/supersonic-app/go-mpv"
	"github.com/voxwave/voxwave/logger"
)

const eofReachedUserdata = 1

// MpvElement is the mpv-backed media element used in production builds.
type MpvElement struct {
	instance  *mpv.Mpv
	mpvEvents chan *mpv.Event
	events    chan ElementEvent
	logger    logger.LoggerInterface
}

var _ Element = (*MpvElement)(nil)

func NewMpvElement(logger logger.LoggerInterface) (*MpvElement, error) {
	instance := mpv.Create()

	if err := instance.SetOptionString("audio-display", "no"); err != nil {
		instance.TerminateDestroy()
		return nil, err
	}
	if err := instance.SetOptionString("video", "no"); err != nil {
		instance.TerminateDestroy()
		return nil, err
	}
	// keep-open leaves the source seekable at EOF, so a loop restart is a
	// plain seek instead of a reload
	if err := instance.SetOptionString("keep-open", "yes"); err != nil {
		instance.TerminateDestroy()
		return nil, err
	}
	if err := instance.Initialize(); err != nil {
		instance.TerminateDestroy()
		return nil, err
	}

	e := &MpvElement{
		instance:  instance,
		mpvEvents: make(chan *mpv.Event),
		events:    make(chan ElementEvent, 16),
		logger:    logger,
	}

	go e.mpvEngineEventHandler(instance)
	go e.translateEvents()
	return e, nil
}

func (e *MpvElement) mpvEngineEventHandler(instance *mpv.Mpv) {
	for {
		evt := instance.WaitEvent(1)
		e.mpvEvents <- evt
	}
}

// translateEvents maps mpv's event stream onto the Element contract.
func (e *MpvElement) translateEvents() {
	if err := e.instance.ObserveProperty(0, "time-pos", mpv.FORMAT_DOUBLE); err != nil {
		e.logger.PrintError("Observe1", err)
	}
	if err := e.instance.ObserveProperty(0, "duration", mpv.FORMAT_DOUBLE); err != nil {
		e.logger.PrintError("Observe2", err)
	}
	// with keep-open, natural end of playback surfaces as eof-reached
	// instead of an end-file event
	if err := e.instance.ObserveProperty(eofReachedUserdata, "eof-reached", mpv.FORMAT_FLAG); err != nil {
		e.logger.PrintError("Observe3", err)
	}

	for evt := range e.mpvEvents {
		if evt == nil {
			// quit signal
			close(e.events)
			return
		}
		switch evt.Event_Id {
		case mpv.EVENT_PROPERTY_CHANGE:
			if evt.Reply_Userdata == eofReachedUserdata {
				if eof, err := e.instance.GetProperty("eof-reached", mpv.FORMAT_FLAG); err == nil {
					if flag, ok := eof.(bool); ok && flag {
						e.events <- ElementEvent{Type: ElementEnded}
					}
				}
				continue
			}
			position, err := e.getPropertyDouble("time-pos")
			if err != nil {
				position = 0
			}
			duration, err := e.getPropertyDouble("duration")
			if err != nil {
				duration = 0
			}
			e.events <- ElementEvent{Type: ElementTime, Position: position, Duration: duration}
		case mpv.EVENT_FILE_LOADED:
			e.events <- ElementEvent{Type: ElementCanPlay}
		case mpv.EVENT_PLAYBACK_RESTART:
			e.events <- ElementEvent{Type: ElementStarted}
		case mpv.EVENT_END_FILE:
			e.events <- ElementEvent{Type: ElementEnded}
		case mpv.EVENT_IDLE, mpv.EVENT_NONE:
			continue
		default:
			continue
		}
	}
}

func (e *MpvElement) Load(uri string) error {
	// stay paused until the engine decides to play
	if err := e.instance.SetProperty("pause", mpv.FORMAT_FLAG, true); err != nil {
		return err
	}
	return e.instance.Command([]string{"loadfile", uri})
}

func (e *MpvElement) Play() error {
	return e.instance.SetProperty("pause", mpv.FORMAT_FLAG, false)
}

func (e *MpvElement) Pause() error {
	return e.instance.SetProperty("pause", mpv.FORMAT_FLAG, true)
}

func (e *MpvElement) Seek(seconds float64) error {
	return e.instance.Command([]string{"seek", strconv.FormatFloat(seconds, 'f', 3, 64), "absolute"})
}

func (e *MpvElement) SetVolume(v float64) error {
	// mpv volume is a percentage
	return e.instance.SetProperty("volume", mpv.FORMAT_INT64, int64(v*100))
}

func (e *MpvElement) Position() (float64, error) {
	return e.getPropertyDouble("time-pos")
}

func (e *MpvElement) Duration() (float64, error) {
	return e.getPropertyDouble("duration")
}

func (e *MpvElement) Events() <-chan ElementEvent {
	return e.events
}

func (e *MpvElement) Close() {
	e.mpvEvents <- nil
	e.instance.TerminateDestroy()
}

func (e *MpvElement) getPropertyDouble(name string) (float64, error) {
	value, err := e.instance.GetProperty(name, mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, err
	} else if value == nil {
		return 0, errors.New("nil value")
	}
	return value.(float64), nil
}
