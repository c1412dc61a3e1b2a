package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/stx-music/stx/internal/shared"
)

// Convert favorites every album that appears at least three times within
// a single target playlist. Albums are identified by target-side ID, so
// no search is involved; a failed favorite call is logged and the
// remaining albums still run.
func (e *Engine) Convert(ctx context.Context, progress chan<- ProgressUpdate) (*ConvertReport, error) {
	if e.target == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	playlists, err := e.target.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	report := &ConvertReport{Playlists: len(playlists)}

	for i, pl := range playlists {
		e.sendProgress(progress, convertPlaylistUpdate(i+1, len(playlists), pl.Name))

		export, err := e.target.ExportPlaylist(ctx, pl.ID)
		if err != nil {
			e.logger.Warn("failed to export playlist", "playlist", pl.Name, "error", err)
			report.Failed++
			continue
		}

		counts := make(map[string]int)
		for _, track := range export.Tracks {
			if track.AlbumID == "" {
				continue
			}
			counts[track.AlbumID]++
		}

		albumIDs := make([]string, 0, len(counts))
		for id := range counts {
			albumIDs = append(albumIDs, id)
		}
		sort.Strings(albumIDs)

		for _, id := range albumIDs {
			if counts[id] < albumFavoriteThreshold {
				continue
			}
			e.logger.Info("favoriting album", "album_id", id, "tracks", counts[id], "playlist", pl.Name)
			if err := e.target.AddAlbumToFavorites(ctx, id); err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				e.logger.Warn("failed to favorite album", "album_id", id, "error", err)
				report.Failed++
				continue
			}
			report.AlbumsFavorited++
		}
	}

	return report, nil
}
