// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package track

import "strings"

// Source says where a track's audio comes from.
type Source string

const (
	// SourceLocal is a file already uploaded to the server's song storage.
	SourceLocal Source = "local"
	// SourceRemote is resolved on demand from the external catalog through
	// the server's streaming endpoint.
	SourceRemote Source = "remote"
)

// Track id prefixes. The part after the prefix is the external catalog id
// (remote) or the stored filename (local).
const (
	remoteIDPrefix = "rs-"
	localIDPrefix  = "local-"
)

// Track is immutable once constructed; two tracks are the same iff their IDs
// are equal. The JSON tags are the room wire shape and the queue store format.
type Track struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Source    Source  `json:"source"`
	URL       string  `json:"url"`
}

// NewRemoteTrack builds a track for an external catalog item. streamURL is the
// playable locator (typically catalog.Client.StreamURL(externalID)).
func NewRemoteTrack(externalID, title, thumbnail, streamURL string) *Track {
	return &Track{
		ID:        remoteIDPrefix + externalID,
		Title:     title,
		Thumbnail: thumbnail,
		Source:    SourceRemote,
		URL:       streamURL,
	}
}

// NewLocalTrack builds a track for an uploaded file. songURL is the playable
// locator (typically catalog.Client.SongURL(filename)).
func NewLocalTrack(filename, title, songURL string) *Track {
	return &Track{
		ID:     localIDPrefix + filename,
		Title:  title,
		Source: SourceLocal,
		URL:    songURL,
	}
}

// IsRemote reports whether the track follows the remote-stream id convention.
// Tracks received from other room members are classified the same way.
func (t *Track) IsRemote() bool {
	return t.Source == SourceRemote || strings.HasPrefix(t.ID, remoteIDPrefix)
}

// ExternalID returns the catalog id or filename embedded in the track id.
func (t *Track) ExternalID() string {
	if id, ok := strings.CutPrefix(t.ID, remoteIDPrefix); ok {
		return id
	}
	if id, ok := strings.CutPrefix(t.ID, localIDPrefix); ok {
		return id
	}
	return t.ID
}

func (t *Track) IsValid() bool {
	return t != nil && t.ID != ""
}
