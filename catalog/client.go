// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/voxwave/voxwave/logger"
)

// SearchResult is one external catalog hit. Duration comes over the wire
// preformatted ("3:42").
type SearchResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

// Song is one uploaded file in the server's shared library.
type Song struct {
	ID           string  `json:"id"`
	Filename     string  `json:"filename"`
	OriginalName string  `json:"original_name"`
	Size         int64   `json:"size"`
	Modified     float64 `json:"modified"`
	URL          string  `json:"url"`
}

type libraryResponse struct {
	Songs []Song `json:"songs"`
	Total int    `json:"total"`
}

// SavedTrack is an entry in the logged-in user's personal library.
type SavedTrack struct {
	TrackID   string `json:"track_id"`
	Source    string `json:"source"`
	Title     string `json:"title"`
	Artist    string `json:"artist,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type savedTracksResponse struct {
	Tracks []SavedTrack `json:"tracks"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// UploadInfo is the server's record of a freshly uploaded song.
type UploadInfo struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
}

// CreatedRoom comes back from the room directory on creation. JoinURL is the
// shareable invite link.
type CreatedRoom struct {
	RoomID  string `json:"room_id"`
	HostID  string `json:"host_id"`
	JoinURL string `json:"join_url"`
}

// RoomStatus is a point-in-time snapshot from the room directory.
type RoomStatus struct {
	HostID        string  `json:"host_id"`
	IsPlaying     bool    `json:"is_playing"`
	CurrentTime   float64 `json:"current_time"`
	ListenerCount int     `json:"listener_count"`
}

type apiError struct {
	Detail string `json:"detail"`
}

// Client talks to one VoxWave server. The zero value is not usable; build it
// with NewClient. Safe for concurrent use.
type Client struct {
	Host   string
	logger logger.LoggerInterface
	client *http.Client

	mu       sync.Mutex
	token    string
	username string
}

func NewClient(host string, logger logger.LoggerInterface) *Client {
	return &Client{
		Host:   strings.TrimRight(host, "/"),
		logger: logger,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Ping verifies the server is reachable and speaks the API.
func (c *Client) Ping() error {
	return c.doJSON(http.MethodGet, "/health", nil, nil)
}

// Login authenticates and stores the session token for later calls.
func (c *Client) Login(username, password string) error {
	var resp authResponse
	err := c.doJSON(http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}
	c.setSession(resp.Token, resp.Username)
	return nil
}

// Register creates an account and logs it in.
func (c *Client) Register(username, password string) error {
	var resp authResponse
	err := c.doJSON(http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}
	c.setSession(resp.Token, resp.Username)
	return nil
}

// Logout invalidates the session server-side. The local session is dropped
// either way.
func (c *Client) Logout() error {
	err := c.doJSON(http.MethodPost, "/auth/logout", nil, nil)
	c.setSession("", "")
	return err
}

func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}

// Username returns the logged-in account name, empty when anonymous.
func (c *Client) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Search queries the external catalog.
func (c *Client) Search(query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	var resp searchResponse
	path := "/search?q=" + url.QueryEscape(query)
	if err := c.doJSON(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Library lists the server's uploaded songs, newest first.
func (c *Client) Library() ([]Song, error) {
	var resp libraryResponse
	if err := c.doJSON(http.MethodGet, "/library", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Songs, nil
}

// Upload sends an audio file into the shared library.
func (c *Client) Upload(filename string, r io.Reader) (UploadInfo, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return UploadInfo{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadInfo{}, err
	}
	if err := writer.Close(); err != nil {
		return UploadInfo{}, err
	}

	req, err := http.NewRequest(http.MethodPost, c.Host+"/upload", &buf)
	if err != nil {
		return UploadInfo{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	var info UploadInfo
	if err := c.send(req, &info); err != nil {
		return UploadInfo{}, err
	}
	return info, nil
}

// DeleteSong removes an uploaded file from the shared library.
func (c *Client) DeleteSong(filename string) error {
	return c.doJSON(http.MethodDelete, "/songs/"+url.PathEscape(filename), nil, nil)
}

// SavedTracks lists the logged-in user's personal library.
func (c *Client) SavedTracks() ([]SavedTrack, error) {
	var resp savedTracksResponse
	if err := c.doJSON(http.MethodGet, "/me/library", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tracks, nil
}

// SaveTrack adds a track to the personal library.
func (c *Client) SaveTrack(t SavedTrack) error {
	return c.doJSON(http.MethodPost, "/me/library", map[string]string{
		"track_id":  t.TrackID,
		"source":    t.Source,
		"title":     t.Title,
		"artist":    t.Artist,
		"thumbnail": t.Thumbnail,
	}, nil)
}

// RemoveTrack drops a track from the personal library.
func (c *Client) RemoveTrack(trackID, source string) error {
	path := fmt.Sprintf("/me/library?track_id=%s&source=%s",
		url.QueryEscape(trackID), url.QueryEscape(source))
	return c.doJSON(http.MethodDelete, path, nil, nil)
}

// CreateRoom asks the directory for a fresh room hosted by this user.
// Requires a login.
func (c *Client) CreateRoom() (CreatedRoom, error) {
	var room CreatedRoom
	if err := c.doJSON(http.MethodPost, "/create-room", nil, &room); err != nil {
		return CreatedRoom{}, err
	}
	return room, nil
}

// GetRoom fetches a room's directory snapshot; a 404 means the room is gone.
func (c *Client) GetRoom(roomID string) (RoomStatus, error) {
	var status RoomStatus
	if err := c.doJSON(http.MethodGet, "/room/"+url.PathEscape(roomID), nil, &status); err != nil {
		return RoomStatus{}, err
	}
	return status, nil
}

// StreamURL is the playable locator for an external catalog id. The playback
// engine appends its own cache-busting parameter.
func (c *Client) StreamURL(externalID string) string {
	return c.Host + "/stream/" + url.PathEscape(externalID)
}

// SongURL is the playable locator for an uploaded file.
func (c *Client) SongURL(filename string) string {
	return c.Host + "/songs/" + url.PathEscape(filename)
}

func (c *Client) setSession(token, username string) {
	c.mu.Lock()
	c.token = token
	c.username = username
	c.mu.Unlock()
}

func (c *Client) authorize(req *http.Request) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// doJSON runs one JSON round-trip. out may be nil when the response body is
// irrelevant.
func (c *Client) doJSON(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.Host+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("%s %s: %s (%d)", req.Method, req.URL.Path, apiErr.Detail, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
