package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSaved Phase = iota
	FetchFavorites
	ClassifyGroups
	FavoriteTracks
	FavoriteAlbums
	SweepPlaylists
	ConvertPlaylists
	ResolveAlbums
)

func (p Phase) String() string {
	switch p {
	case FetchSaved:
		return "fetch_saved"
	case FetchFavorites:
		return "fetch_favorites"
	case ClassifyGroups:
		return "classify_groups"
	case FavoriteTracks:
		return "favorite_tracks"
	case FavoriteAlbums:
		return "favorite_albums"
	case SweepPlaylists:
		return "sweep_playlists"
	case ConvertPlaylists:
		return "convert_playlists"
	case ResolveAlbums:
		return "resolve_albums"
	default:
		return ""
	}
}

func fetchSavedUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSaved,
		Step:    1,
		Total:   1,
		Message: "Fetching saved Spotify tracks...",
	}
}

func fetchFavoritesUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    1,
		Total:   1,
		Message: "Fetching Tidal favorites...",
	}
}

func favoritesLoadedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d existing favorites", count),
	}
}

func classifyUpdate(step, total int, artist string, class Classification) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyGroups,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %s", step, total, artist, class),
		Data:    class,
	}
}

func favoriteTracksUpdate(artist string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FavoriteTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Syncing %d tracks for %s...", count, artist),
	}
}

func favoriteAlbumUpdate(album string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FavoriteAlbums,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding album %q to favorites (%d tracks)", album, count),
	}
}

func sweepPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SweepPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Sweeping playlist: %s", step, total, name),
	}
}

func convertPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConvertPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Scanning playlist: %s", step, total, name),
	}
}

func resolveAlbumUpdate(step, total int, artist, album string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving: %s — %s", step, total, artist, album),
	}
}
