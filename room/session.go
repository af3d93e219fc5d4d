// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package room

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/player"
	"github.com/voxwave/voxwave/track"
)

// State is the session lifecycle.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

const maxActivityEntries = 50

// Playback is the slice of the player a session drives.
type Playback interface {
	Play(t *track.Track)
	Pause()
	Seek(seconds float64)
	CurrentTrack() *track.Track
	OnTransport(cb func(player.TransportState))
}

// Session is one membership in a listening room. As host it broadcasts local
// transport changes; as listener it applies the host's snapshots to local
// playback. Joining and leaving never interrupt whatever is already playing.
type Session struct {
	server   string
	userID   string
	playback Playback
	logger   logger.LoggerInterface

	mu        sync.Mutex
	state     State
	roomID    string
	hostID    string
	listeners int
	conn      *websocket.Conn
	activity  []string

	writeMu sync.Mutex

	cbOnChange []func()
}

// NewSession wires the transport observer once; it only acts while this
// session is connected as the room's host.
func NewSession(server, userID string, playback Playback, logger logger.LoggerInterface) *Session {
	s := &Session{
		server:   server,
		userID:   userID,
		playback: playback,
		logger:   logger,
	}
	playback.OnTransport(s.broadcastTransport)
	return s
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

func (s *Session) HostID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostID
}

// IsHost reports whether this member currently hosts the room. The server
// may reassign the host at any time; every snapshot re-derives the role.
func (s *Session) IsHost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Connected && s.hostID == s.userID
}

func (s *Session) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listeners
}

// Activity returns a copy of the bounded room activity log, newest last.
func (s *Session) Activity() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cpy := make([]string, len(s.activity))
	copy(cpy, s.activity)
	return cpy
}

// OnChange registers a callback fired after any room state change, meant for
// UI redraws. Callbacks run on the session's read goroutine.
func (s *Session) OnChange(cb func()) {
	s.mu.Lock()
	s.cbOnChange = append(s.cbOnChange, cb)
	s.mu.Unlock()
}

// Join connects to roomID, leaving any current room first. The first
// snapshot from the server establishes the role.
func (s *Session) Join(roomID string) error {
	s.Leave()

	wsURL, err := channelURL(s.server, roomID, s.userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = Connecting
	s.roomID = roomID
	s.mu.Unlock()
	s.notifyChange()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		s.mu.Lock()
		s.state = Disconnected
		s.roomID = ""
		s.mu.Unlock()
		s.notifyChange()
		return fmt.Errorf("joining room %s: %w", roomID, err)
	}

	s.mu.Lock()
	s.state = Connected
	s.conn = conn
	s.mu.Unlock()
	s.addActivity(fmt.Sprintf("joined room %s", roomID))
	s.notifyChange()

	go s.readLoop(conn)
	return nil
}

// Leave disconnects from the room. Local playback continues untouched; the
// current track, position and play state all stay exactly as they are.
func (s *Session) Leave() {
	s.mu.Lock()
	conn := s.conn
	wasConnected := s.state != Disconnected
	roomID := s.roomID
	s.conn = nil
	s.state = Disconnected
	s.roomID = ""
	s.hostID = ""
	s.listeners = 0
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if wasConnected {
		s.addActivity(fmt.Sprintf("left room %s", roomID))
		s.notifyChange()
	}
}

func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			// only the live connection's failure changes state
			stale := s.conn != conn
			if !stale {
				s.conn = nil
				s.state = Disconnected
				s.roomID = ""
				s.hostID = ""
				s.listeners = 0
			}
			s.mu.Unlock()
			if !stale {
				s.addActivity("connection lost")
				s.notifyChange()
			}
			return
		}

		msg, err := Parse(raw)
		if err != nil {
			s.logger.PrintError("room message", err)
			// keep the payload around so the room page can show what arrived
			s.addActivity("unreadable: " + clipPayload(raw))
			s.notifyChange()
			continue
		}

		switch msg.Kind {
		case KindState:
			s.applySnapshot(msg.Update)
		case KindJoined:
			s.addActivity(fmt.Sprintf("%s joined", shortID(msg.UserID)))
		case KindLeft:
			s.addActivity(fmt.Sprintf("%s left", shortID(msg.UserID)))
		}
		s.notifyChange()
	}
}

// applySnapshot is the listener's sync path. The host applies only the room
// metadata; its own playback is the source of truth and inbound transport
// must never echo back into it.
func (s *Session) applySnapshot(u Update) {
	s.mu.Lock()
	s.hostID = u.HostID
	s.listeners = u.ListenerCount
	isHost := u.HostID == s.userID
	s.mu.Unlock()

	if isHost {
		return
	}

	if !u.Song.IsValid() {
		return
	}

	// fixed order: load if the track differs, then position, then the
	// transport verb. A pause lands after the load and sticks even while
	// the new source is still loading.
	current := s.playback.CurrentTrack()
	if current == nil || current.ID != u.Song.ID {
		s.playback.Play(u.Song)
	}
	s.playback.Seek(u.Time)
	if u.Playing {
		s.playback.Play(nil)
	} else {
		s.playback.Pause()
	}
}

// broadcastTransport sends the host's play/pause transitions to the room.
// Best-effort: a failed write is logged and the update is simply lost.
func (s *Session) broadcastTransport(state player.TransportState) {
	s.mu.Lock()
	conn := s.conn
	isHost := s.state == Connected && s.hostID == s.userID
	s.mu.Unlock()
	if !isHost || conn == nil {
		return
	}

	data, err := encodeTransport(state.Playing, state.Position, state.Track)
	if err != nil {
		s.logger.PrintError("encode transport", err)
		return
	}

	s.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	s.writeMu.Unlock()
	if err != nil {
		s.logger.PrintError("room broadcast", err)
	}
}

func (s *Session) addActivity(entry string) {
	s.mu.Lock()
	s.activity = append(s.activity, entry)
	if len(s.activity) > maxActivityEntries {
		s.activity = s.activity[len(s.activity)-maxActivityEntries:]
	}
	s.mu.Unlock()
}

func (s *Session) notifyChange() {
	s.mu.Lock()
	cbs := make([]func(), len(s.cbOnChange))
	copy(cbs, s.cbOnChange)
	s.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

// channelURL builds the room channel endpoint from the server base URL,
// mapping http(s) to ws(s).
func channelURL(server, roomID, userID string) (string, error) {
	if roomID == "" {
		return "", fmt.Errorf("empty room id")
	}
	parsed, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("bad server url %q: %w", server, err)
	}
	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("bad server url scheme %q", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/ws/" + roomID + "/" + userID
	return parsed.String(), nil
}

// ParseJoinURL extracts a room id from a share link of the form
// https://host/rooms?room=<id>. A bare room id is returned unchanged.
func ParseJoinURL(reference string) string {
	parsed, err := url.Parse(reference)
	if err != nil {
		return reference
	}
	if id := parsed.Query().Get("room"); id != "" {
		return id
	}
	return reference
}

// clipPayload bounds an unreadable payload to something the activity list can
// show on one line.
func clipPayload(raw []byte) string {
	const max = 120
	text := string(raw)
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "someone"
	}
	return id
}
