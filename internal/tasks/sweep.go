package tasks

import (
	"context"
	"fmt"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/shared"
	"golang.org/x/time/rate"
)

// Sweep walks every source playlist and favorites each track not already
// present in the target favorites.
//
// Unlike [Engine.Migrate] there is no review gate and no ordering
// guarantee across playlists beyond the source listing order. Each
// successful favorite is followed by a fixed inter-call delay to pre-empt
// rate limiting; a rate-limited call is retried with doubling backoff and
// an exhausted track is logged and skipped, never fatal.
func (e *Engine) Sweep(ctx context.Context, progress chan<- ProgressUpdate) (*SweepReport, error) {
	if e.source == nil || e.target == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchFavoritesUpdate())
	snap, err := e.buildSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	playlists, err := e.source.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	report := &SweepReport{Playlists: len(playlists)}
	limiter := rate.NewLimiter(rate.Every(e.opts.SweepDelay), 1)

	for i, pl := range playlists {
		e.sendProgress(progress, sweepPlaylistUpdate(i+1, len(playlists), pl.Name))

		export, err := e.source.ExportPlaylist(ctx, pl.ID)
		if err != nil {
			e.logger.Warn("failed to export playlist", "playlist", pl.Name, "error", err)
			report.Failed++
			continue
		}

		for _, track := range export.Tracks {
			if track.Artist == "" {
				continue
			}
			report.Tracks++

			key := shared.TrackKey(track.Title, track.Artist)
			if snap.Contains(key) {
				report.AlreadyPresent++
				continue
			}

			matched, err := e.matcher.Match(ctx, []models.Track{track}, track.Artist)
			if err != nil {
				return report, err
			}
			id, ok := matched[key]
			if !ok {
				report.Unmatched++
				continue
			}

			if err := e.favoriteWithRetry(ctx, id); err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				e.logger.Warn("giving up on track", "track", track.Title, "artist", track.Artist, "error", err)
				report.Failed++
				continue
			}
			snap.Add(key)
			report.Favorited++

			if err := limiter.Wait(ctx); err != nil {
				return report, err
			}
		}
	}

	return report, nil
}
