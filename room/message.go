// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package room

import (
	"encoding/json"
	"fmt"

	"github.com/voxwave/voxwave/track"
)

// MessageKind classifies an inbound room message.
type MessageKind int

const (
	// KindState carries a full playback snapshot in Update.
	KindState MessageKind = iota
	// KindJoined announces another member, UserID set.
	KindJoined
	// KindLeft announces a departure, UserID set.
	KindLeft
)

// Update is the normalized playback snapshot. Both wire shapes the server
// speaks reduce to this before anything is applied.
type Update struct {
	HostID        string
	ListenerCount int
	Song          *track.Track
	Time          float64
	Playing       bool
}

// Message is one decoded inbound room message.
type Message struct {
	Kind   MessageKind
	UserID string
	Update Update
}

// envelope is the wrapped wire shape: a type tag with the snapshot nested
// under data.
type envelope struct {
	Type   string          `json:"type"`
	UserID string          `json:"user_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// statePayload is the snapshot shape, used both nested in an envelope and as
// a bare top-level message by older servers.
type statePayload struct {
	HostID        string       `json:"host_id"`
	ListenerCount int          `json:"listener_count"`
	CurrentSong   *track.Track `json:"current_song"`
	CurrentTime   float64      `json:"current_time"`
	IsPlaying     bool         `json:"is_playing"`
}

// Parse decodes one inbound message. Besides room_state the server relays
// every host action (play, pause, seek, song_change) with the full snapshot
// nested under data, so any typed message carrying data is treated as state.
// Bare snapshots without an envelope are accepted too; anything else is an
// error for the caller to log and drop, the session itself stays up.
func Parse(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Message{}, fmt.Errorf("malformed room message: %w", err)
	}

	switch env.Type {
	case "room_state":
		update, err := parseSnapshot(env.Data)
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: KindState, Update: update}, nil
	case "user_joined":
		return Message{Kind: KindJoined, UserID: env.UserID}, nil
	case "user_left":
		return Message{Kind: KindLeft, UserID: env.UserID}, nil
	case "":
		// bare snapshot without an envelope
		update, err := parseSnapshot(raw)
		if err != nil {
			return Message{}, err
		}
		if update.HostID == "" {
			return Message{}, fmt.Errorf("room message carries no host")
		}
		return Message{Kind: KindState, Update: update}, nil
	default:
		if len(env.Data) == 0 {
			return Message{}, fmt.Errorf("unknown room message type %q", env.Type)
		}
		update, err := parseSnapshot(env.Data)
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: KindState, Update: update}, nil
	}
}

func parseSnapshot(raw []byte) (Update, error) {
	var payload statePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Update{}, fmt.Errorf("malformed room snapshot: %w", err)
	}
	return Update{
		HostID:        payload.HostID,
		ListenerCount: payload.ListenerCount,
		Song:          payload.CurrentSong,
		Time:          payload.CurrentTime,
		Playing:       payload.IsPlaying,
	}, nil
}

// transportMessage is the host's outbound shape: the transport verb plus
// enough state for the server to snapshot.
type transportMessage struct {
	Type        string       `json:"type"`
	CurrentTime float64      `json:"current_time"`
	Song        *track.Track `json:"song,omitempty"`
}

func encodeTransport(playing bool, position float64, song *track.Track) ([]byte, error) {
	verb := "pause"
	if playing {
		verb = "play"
	}
	return json.Marshal(transportMessage{
		Type:        verb,
		CurrentTime: position,
		Song:        song,
	})
}
