package tasks

import (
	"context"
	"fmt"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/shared"
	"golang.org/x/time/rate"
)

// Sync favorites every saved source track not already present in the
// target favorites, without any review gating. The review store is not
// consulted or written; this is the fully automatic counterpart of
// [Engine.Migrate].
func (e *Engine) Sync(ctx context.Context, progress chan<- ProgressUpdate) (*SyncReport, error) {
	if e.source == nil || e.target == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchSavedUpdate())
	saved, err := e.source.SavedTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch saved tracks: %w", err)
	}

	e.sendProgress(progress, fetchFavoritesUpdate())
	snap, err := e.buildSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, favoritesLoadedUpdate(len(snap)))

	report := &SyncReport{}
	limiter := rate.NewLimiter(rate.Every(e.opts.SweepDelay), 1)

	for _, item := range saved {
		track := item.Track
		if track.Artist == "" {
			continue
		}
		report.SavedTracks++

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

	return report, nil
}
