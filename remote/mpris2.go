// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import (
	"errors"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/track"
)

// MprisPlayer exposes the player on the session bus as
// org.mpris.MediaPlayer2.voxwave so desktop media keys work.
type MprisPlayer struct {
	dbus   *dbus.Conn
	player ControlledPlayer
	logger logger.LoggerInterface
}

func RegisterMprisPlayer(player ControlledPlayer, logger_ logger.LoggerInterface) (mpp *MprisPlayer, err error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return
	}

	mpp = &MprisPlayer{
		dbus:   conn,
		player: player,
		logger: logger_,
	}

	err = conn.ExportAll(mpp, "/org/mpris/MediaPlayer2", "org.mpris.MediaPlayer2.Player")
	if err != nil {
		return
	}

	var mprisPlayer = map[string]*prop.Prop{
		"CanControl":     {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoNext":      {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoPrevious":  {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPause":       {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPlay":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanSeek":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Metadata":       {Value: emptyMetadata(), Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"Volume":         {Value: player.Volume(), Writable: true, Emit: prop.EmitTrue, Callback: mpp.volumeChange},
		"PlaybackStatus": {Value: "Stopped", Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	var mediaPlayer = map[string]*prop.Prop{
		"CanQuit":             {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanRaise":            {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"HasTrackList":        {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Identity":            {Value: "voxwave", Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedUriSchemes": {Value: "", Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedMimeTypes":  {Value: "", Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	props, err := prop.Export(
		conn,
		"/org/mpris/MediaPlayer2",
		map[string]map[string]*prop.Prop{
			"org.mpris.MediaPlayer2":        mediaPlayer,
			"org.mpris.MediaPlayer2.Player": mprisPlayer,
		},
	)
	if err != nil {
		return
	}

	n := &introspect.Node{
		Name: "/org/mpris/MediaPlayer2",
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       "org.mpris.MediaPlayer2.Player",
				Methods:    introspect.Methods(mpp),
				Properties: props.Introspection("org.mpris.MediaPlayer2.Player"),
			},
		},
	}
	err = conn.Export(introspect.NewIntrospectable(n), "/org/mpris/MediaPlayer2", "org.freedesktop.DBus.Introspectable")
	if err != nil {
		return
	}

	name := "org.mpris.MediaPlayer2.voxwave"
	reply, err := conn.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		return
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		err = errors.New("name already owned")
		return
	}
	return
}

func (m *MprisPlayer) Close() {
	if err := m.dbus.Close(); err != nil {
		m.logger.PrintError("mpp Close", err)
	}
}

// Mandatory org.mpris.MediaPlayer2.Player methods.

func (m *MprisPlayer) Stop() {
	m.player.Pause()
	m.player.Seek(0)
}

func (m *MprisPlayer) Next() {
	m.player.Next()
}

func (m *MprisPlayer) Previous() {
	m.player.Previous()
}

// Pause is idempotent per the MPRIS contract.
func (m *MprisPlayer) Pause() {
	if m.player.IsPlaying() {
		m.player.Pause()
	}
}

func (m *MprisPlayer) Play() {
	if !m.player.IsPlaying() {
		m.player.Play(nil)
	}
}

func (m *MprisPlayer) PlayPause() {
	m.player.Toggle()
}

func (m *MprisPlayer) OpenUri(string) {
	// external uris have no place in the queue model
}

// Seek applies a relative offset given in microseconds.
func (m *MprisPlayer) Seek(offset int64) {
	m.player.Seek(m.player.Position() + float64(offset)/1e6)
}

func (m *MprisPlayer) SetPosition(_ string, position int64) {
	m.player.Seek(float64(position) / 1e6)
}

func (m *MprisPlayer) volumeChange(c *prop.Change) *dbus.Error {
	v := c.Value.(float64)
	m.player.SetVolume(v)
	m.logger.Printf("mpris: adjust volume to %.2f", v)
	return nil
}

// OnSongChange is called from the event loop whenever the current track
// changes; it republishes the track metadata.
func (m *MprisPlayer) OnSongChange(currentSong *track.Track) {
	metadata := emptyMetadata()
	if currentSong.IsValid() {
		metadata["mpris:trackid"] = currentSong.ID
		metadata["mpris:length"] = int64(currentSong.Duration * 1e6)
		metadata["xesam:artist"] = []string{currentSong.Artist}
		metadata["xesam:title"] = currentSong.Title
	}

	err := m.dbus.Emit("/org/mpris/MediaPlayer2", "org.freedesktop.DBus.Properties.PropertiesChanged",
		"org.mpris.MediaPlayer2.Player", map[string]map[string]interface{}{
			"Metadata": metadata,
		}, []string{})
	if err != nil {
		m.logger.PrintError("mpris: Emit PropertiesChanged", err)
	}
}

func emptyMetadata() map[string]interface{} {
	return map[string]interface{}{
		"mpris:trackid":     "",
		"mpris:length":      int64(0),
		"xesam:album":       "",
		"xesam:albumArtist": "",
		"xesam:artist":      []string{},
		"xesam:composer":    []string{},
		"xesam:genre":       []string{},
		"xesam:title":       "",
		"xesam:trackNumber": int(0),
	}
}
