package services

import (
	"context"

	"github.com/stx-music/stx/internal/models"
)

// SourceService is the read-only contract against the source catalog (Spotify).
type SourceService interface {
	// Authenticate performs OAuth or token authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// SavedTracks retrieves every track saved in the user's library,
	// following pagination to the end.
	SavedTracks(ctx context.Context) ([]models.SavedTrack, error)

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// ExportPlaylist retrieves a playlist with all its tracks.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// Name returns the service name for display.
	Name() string
}

// SearchResults holds the albums and tracks returned by a target-side search.
type SearchResults struct {
	Albums []models.Album
	Tracks []models.Track
}

// TargetService is the contract against the target catalog (Tidal): paginated
// reads, search, and the idempotent mutations the executor relies on.
//
// Implementations must treat "already present" responses from mutating calls
// as success, never as an error.
type TargetService interface {
	// CheckSession verifies the stored credentials are still valid.
	// A failure here is fatal for the whole run.
	CheckSession(ctx context.Context) error

	// FavoriteTracks retrieves every favorited track, following pagination.
	FavoriteTracks(ctx context.Context) ([]models.Track, error)

	// Search runs a free-text search returning album and track candidates.
	Search(ctx context.Context, query string) (*SearchResults, error)

	// AddTrackToFavorites favorites a single track by target-side ID.
	AddTrackToFavorites(ctx context.Context, trackID string) error

	// AddAlbumToFavorites favorites a single album by target-side ID.
	AddAlbumToFavorites(ctx context.Context, albumID string) error

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// ExportPlaylist retrieves a playlist with all its tracks.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// CreatePlaylist creates an empty playlist.
	CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error)

	// AddTracksToPlaylist appends tracks to a playlist by ID.
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error

	// DeletePlaylist removes a playlist by ID.
	DeletePlaylist(ctx context.Context, playlistID string) error

	// Name returns the service name for display.
	Name() string
}
