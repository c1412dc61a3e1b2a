// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/services"
)

// MockSource is a configurable test double for [services.SourceService].
type MockSource struct {
	Saved       []models.SavedTrack
	Playlists   []models.Playlist
	Exports     map[string]*models.PlaylistExport
	SavedErr    error
	ExportErr   error
	PlaylistErr error
}

func (m *MockSource) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockSource) SavedTracks(ctx context.Context) ([]models.SavedTrack, error) {
	return m.Saved, m.SavedErr
}

func (m *MockSource) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return m.Playlists, m.PlaylistErr
}

func (m *MockSource) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	if m.ExportErr != nil {
		return nil, m.ExportErr
	}
	export, ok := m.Exports[playlistID]
	if !ok {
		return nil, errors.New("playlist not found")
	}
	return export, nil
}

func (m *MockSource) Name() string { return "mock-source" }

// MockTarget is a configurable test double for [services.TargetService].
// Mutations are recorded under a lock so concurrent favorite calls from
// the executor can be asserted on safely.
type MockTarget struct {
	mu sync.Mutex

	Favorites     []models.Track
	SearchResults map[string]*services.SearchResults
	Playlists     []models.Playlist
	Exports       map[string]*models.PlaylistExport

	FavoritesErr error
	SearchErr    error
	SessionErr   error

	// AddTrackErrs returns per-call errors keyed by call count for one
	// track ID, letting tests script rate-limit-then-success sequences.
	AddTrackErrs func(trackID string, call int) error

	FavoritedTracks  []string
	FavoritedAlbums  []string
	DeletedPlaylists []string
	addTrackCalls    map[string]int
}

func (m *MockTarget) CheckSession(ctx context.Context) error { return m.SessionErr }

func (m *MockTarget) FavoriteTracks(ctx context.Context) ([]models.Track, error) {
	return m.Favorites, m.FavoritesErr
}

func (m *MockTarget) Search(ctx context.Context, query string) (*services.SearchResults, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if results, ok := m.SearchResults[query]; ok {
		return results, nil
	}
	return &services.SearchResults{}, nil
}

func (m *MockTarget) AddTrackToFavorites(ctx context.Context, trackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.addTrackCalls == nil {
		m.addTrackCalls = make(map[string]int)
	}
	call := m.addTrackCalls[trackID]
	m.addTrackCalls[trackID]++

	if m.AddTrackErrs != nil {
		if err := m.AddTrackErrs(trackID, call); err != nil {
			return err
		}
	}
	m.FavoritedTracks = append(m.FavoritedTracks, trackID)
	return nil
}

func (m *MockTarget) AddAlbumToFavorites(ctx context.Context, albumID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FavoritedAlbums = append(m.FavoritedAlbums, albumID)
	return nil
}

func (m *MockTarget) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return m.Playlists, nil
}

func (m *MockTarget) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	export, ok := m.Exports[playlistID]
	if !ok {
		return nil, errors.New("playlist not found")
	}
	return export, nil
}

func (m *MockTarget) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	pl := models.Playlist{ID: "created-" + name, Name: name, Description: description}
	m.mu.Lock()
	m.Playlists = append(m.Playlists, pl)
	m.mu.Unlock()
	return &pl, nil
}

func (m *MockTarget) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	return nil
}

func (m *MockTarget) DeletePlaylist(ctx context.Context, playlistID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedPlaylists = append(m.DeletedPlaylists, playlistID)
	return nil
}

func (m *MockTarget) Name() string { return "mock-target" }

// AddTrackCallCount returns how many times a track ID was submitted,
// including calls that errored.
func (m *MockTarget) AddTrackCallCount(trackID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addTrackCalls[trackID]
}

// ScriptedDecider answers prompts from a fixed sequence, then declines.
type ScriptedDecider struct {
	Answers []bool
	Prompts []string
	next    int
}

func (d *ScriptedDecider) Confirm(prompt string) (bool, error) {
	d.Prompts = append(d.Prompts, prompt)
	if d.next >= len(d.Answers) {
		return false, nil
	}
	answer := d.Answers[d.next]
	d.next++
	return answer, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
