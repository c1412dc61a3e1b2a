// Tidal API implementation of [TargetService]
//
// Talks to the Tidal v1 REST API directly. Favorite mutations are idempotent
// on the remote side: favoriting something already favorited returns a
// conflict, which this client reports as success (the engine relies on that
// for safe resumption after a crash).
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/shared"
)

const defaultTidalBaseURL = "https://api.tidal.com/v1"

// favoritesPageSize matches the page size used by the upstream client library.
const favoritesPageSize = 100

// TidalArtist represents an artist in Tidal responses.
type TidalArtist struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TidalAlbum represents an album in Tidal responses.
type TidalAlbum struct {
	ID      int           `json:"id"`
	Title   string        `json:"title"`
	Artist  TidalArtist   `json:"artist"`
	Artists []TidalArtist `json:"artists"`
}

// TidalTrack represents a track in Tidal responses.
type TidalTrack struct {
	ID       int         `json:"id"`
	Title    string      `json:"title"`
	Duration int         `json:"duration"`
	Artist   TidalArtist `json:"artist"`
	Album    TidalAlbum  `json:"album"`
}

// TidalPlaylist represents a playlist in Tidal responses.
type TidalPlaylist struct {
	UUID           string `json:"uuid"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	NumberOfTracks int    `json:"numberOfTracks"`
	PublicPlaylist bool   `json:"publicPlaylist"`
}

type tidalPage[T any] struct {
	Limit              int `json:"limit"`
	Offset             int `json:"offset"`
	TotalNumberOfItems int `json:"totalNumberOfItems"`
	Items              []T `json:"items"`
}

// favoriteItem wraps a track in the favorites listing.
type favoriteItem struct {
	Created string     `json:"created"`
	Item    TidalTrack `json:"item"`
}

type tidalSearchResponse struct {
	Albums tidalPage[TidalAlbum] `json:"albums"`
	Tracks tidalPage[TidalTrack] `json:"tracks"`
}

// TidalService implements [TargetService] against the Tidal v1 API.
type TidalService struct {
	baseURL     string
	accessToken string
	userID      string
	countryCode string
	httpClient  *http.Client
}

// NewTidalService creates a new Tidal service instance.
func NewTidalService(baseURL, accessToken, userID, countryCode string) *TidalService {
	if baseURL == "" {
		baseURL = defaultTidalBaseURL
	}
	if countryCode == "" {
		countryCode = "US"
	}

	return &TidalService{
		baseURL:     baseURL,
		accessToken: accessToken,
		userID:      userID,
		countryCode: countryCode,
		httpClient:  http.DefaultClient,
	}
}

// Name returns the service name.
func (t *TidalService) Name() string {
	return "Tidal"
}

// CheckSession verifies the stored token by fetching the session endpoint.
func (t *TidalService) CheckSession(ctx context.Context) error {
	if t.accessToken == "" || t.userID == "" {
		return fmt.Errorf("%w: missing tidal access_token or user_id", shared.ErrMissingCredentials)
	}
	return t.doRequest(ctx, http.MethodGet, "/sessions", nil, nil)
}

// doRequest performs an authenticated request against the Tidal API.
//
// form is URL-encoded into the body for mutating calls. Status mapping:
// 401/403 → ErrAuthFailed, 429 → ErrRateLimited, other non-2xx →
// ErrAPIRequest. A conflict from a favorites call means "already present"
// and is surfaced as success.
func (t *TidalService) doRequest(ctx context.Context, method, endpoint string, form url.Values, result any) error {
	apiURL := t.baseURL + endpoint
	if strings.Contains(apiURL, "?") {
		apiURL += "&countryCode=" + t.countryCode
	} else {
		apiURL += "?countryCode=" + t.countryCode
	}

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+t.accessToken)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: tidal status %d", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: tidal status %d", shared.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusConflict:
		// Already favorited — idempotent success.
		return nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var errResp struct {
			UserMessage string `json:"userMessage"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.UserMessage != "" {
			return fmt.Errorf("%w: tidal status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.UserMessage)
		}
		return fmt.Errorf("%w: tidal status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// FavoriteTracksPage retrieves one page of favorite tracks.
func (t *TidalService) FavoriteTracksPage(ctx context.Context, limit, offset int) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/users/%s/favorites/tracks?limit=%d&offset=%d&order=NAME", t.userID, limit, offset)

	var page tidalPage[favoriteItem]
	if err := t.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(page.Items))
	for _, item := range page.Items {
		tracks = append(tracks, fromTidalTrack(item.Item))
	}
	return tracks, nil
}

// FavoriteTracks retrieves every favorited track. The offset advances by the
// actual page length so short pages terminate the walk cleanly.
func (t *TidalService) FavoriteTracks(ctx context.Context) ([]models.Track, error) {
	var all []models.Track
	offset := 0

	for {
		page, err := t.FavoriteTracksPage(ctx, favoritesPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		offset += len(page)
	}

	return all, nil
}

// Search runs a free-text search for albums and tracks.
func (t *TidalService) Search(ctx context.Context, query string) (*SearchResults, error) {
	endpoint := fmt.Sprintf("/search?query=%s&types=ALBUMS,TRACKS&limit=25", url.QueryEscape(query))

	var resp tidalSearchResponse
	if err := t.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	results := &SearchResults{}
	for _, a := range resp.Albums.Items {
		results.Albums = append(results.Albums, fromTidalAlbum(a))
	}
	for _, tr := range resp.Tracks.Items {
		results.Tracks = append(results.Tracks, fromTidalTrack(tr))
	}
	return results, nil
}

// AddTrackToFavorites favorites a single track.
func (t *TidalService) AddTrackToFavorites(ctx context.Context, trackID string) error {
	endpoint := fmt.Sprintf("/users/%s/favorites/tracks", t.userID)
	form := url.Values{"trackIds": {trackID}}
	return t.doRequest(ctx, http.MethodPost, endpoint, form, nil)
}

// AddAlbumToFavorites favorites a single album.
func (t *TidalService) AddAlbumToFavorites(ctx context.Context, albumID string) error {
	endpoint := fmt.Sprintf("/users/%s/favorites/albums", t.userID)
	form := url.Values{"albumIds": {albumID}}
	return t.doRequest(ctx, http.MethodPost, endpoint, form, nil)
}

// GetPlaylists retrieves all playlists for the authenticated user.
func (t *TidalService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist
	offset := 0

	for {
		endpoint := fmt.Sprintf("/users/%s/playlists?limit=%d&offset=%d", t.userID, favoritesPageSize, offset)

		var page tidalPage[TidalPlaylist]
		if err := t.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}
		if len(page.Items) == 0 {
			break
		}

		for _, pl := range page.Items {
			all = append(all, models.Playlist{
				ID:          pl.UUID,
				Name:        pl.Title,
				Description: pl.Description,
				TrackCount:  pl.NumberOfTracks,
				Public:      pl.PublicPlaylist,
			})
		}
		offset += len(page.Items)
	}

	return all, nil
}

// ExportPlaylist retrieves a playlist with all its tracks.
func (t *TidalService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	var pl TidalPlaylist
	if err := t.doRequest(ctx, http.MethodGet, fmt.Sprintf("/playlists/%s", playlistID), nil, &pl); err != nil {
		return nil, err
	}

	export := &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:          pl.UUID,
			Name:        pl.Title,
			Description: pl.Description,
			TrackCount:  pl.NumberOfTracks,
			Public:      pl.PublicPlaylist,
		},
	}

	offset := 0
	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, favoritesPageSize, offset)

		var page tidalPage[TidalTrack]
		if err := t.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}
		if len(page.Items) == 0 {
			break
		}

		for _, tr := range page.Items {
			export.Tracks = append(export.Tracks, fromTidalTrack(tr))
		}
		offset += len(page.Items)
	}

	return export, nil
}

// CreatePlaylist creates an empty playlist.
func (t *TidalService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	endpoint := fmt.Sprintf("/users/%s/playlists", t.userID)
	form := url.Values{"title": {name}, "description": {description}}

	var pl TidalPlaylist
	if err := t.doRequest(ctx, http.MethodPost, endpoint, form, &pl); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:          pl.UUID,
		Name:        pl.Title,
		Description: pl.Description,
		Public:      pl.PublicPlaylist,
	}, nil
}

// AddTracksToPlaylist appends tracks to a playlist.
func (t *TidalService) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	endpoint := fmt.Sprintf("/playlists/%s/items", playlistID)
	form := url.Values{
		"trackIds": {strings.Join(trackIDs, ",")},
		"onDupes":  {"SKIP"},
	}
	return t.doRequest(ctx, http.MethodPost, endpoint, form, nil)
}

// DeletePlaylist removes a playlist by ID.
func (t *TidalService) DeletePlaylist(ctx context.Context, playlistID string) error {
	return t.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/playlists/%s", playlistID), nil, nil)
}

// fromTidalTrack converts a Tidal track into the engine's track shape.
func fromTidalTrack(tt TidalTrack) models.Track {
	track := models.Track{
		ID:       fmt.Sprintf("%d", tt.ID),
		Title:    tt.Title,
		Artist:   tt.Artist.Name,
		Album:    tt.Album.Title,
		Duration: tt.Duration,
	}
	if tt.Album.ID != 0 {
		track.AlbumID = fmt.Sprintf("%d", tt.Album.ID)
	}
	return track
}

// fromTidalAlbum converts a Tidal album into the engine's album shape.
func fromTidalAlbum(ta TidalAlbum) models.Album {
	album := models.Album{
		ID:   fmt.Sprintf("%d", ta.ID),
		Name: ta.Title,
	}
	if len(ta.Artists) > 0 {
		for _, a := range ta.Artists {
			album.Artists = append(album.Artists, a.Name)
		}
	} else if ta.Artist.Name != "" {
		album.Artists = []string{ta.Artist.Name}
	}
	return album
}
