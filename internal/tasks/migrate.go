package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/shared"
)

// previewLimit caps how many tracks the review prompt shows per group.
const previewLimit = 5

// Migrate interactively reviews saved source tracks artist by artist and
// drives the target favorites toward parity.
//
// Groups are processed in alphabetical artist order. The gate decides per
// group whether to skip, wait, or prompt; an approved group is matched,
// favorited concurrently, and only after all calls join is every key
// marked approved and added to the snapshot, so later groups in the same
// run see it as present. A process interruption mid-group leaves the
// store in its pre-group state.
func (e *Engine) Migrate(ctx context.Context, progress chan<- ProgressUpdate) (*MigrationReport, error) {
	if e.source == nil || e.target == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchSavedUpdate())
	saved, err := e.source.SavedTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch saved tracks: %w", err)
	}
	groups := GroupByArtist(saved)

	e.sendProgress(progress, fetchFavoritesUpdate())
	snap, err := e.buildSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, favoritesLoadedUpdate(len(snap)))

	report := &MigrationReport{Artists: len(groups)}

	for i, group := range groups {
		class, err := e.classifyGroup(group, snap)
		if err != nil {
			return report, err
		}
		e.sendProgress(progress, classifyUpdate(i+1, len(groups), group.Artist, class))

		if class.SkipsReview() {
			if class.RunsAlbumHeuristic() {
				report.SkippedPresent++
				added, notFound, aerr := e.autoFavoriteAlbums(ctx, progress, group)
				report.AlbumsFavorited += added
				report.AlbumsNotFound += notFound
				if aerr != nil {
					return report, aerr
				}
			} else {
				report.SkippedDeclined++
			}
			continue
		}

		report.Reviewed++
		approved, err := e.decider.Confirm(reviewPrompt(group))
		if err != nil {
			return report, err
		}

		keys := group.Keys(shared.TrackKey)
		if !approved {
			report.Declined++
			e.logger.Info("skipped artist", "artist", group.Artist)
			for _, key := range keys {
				if serr := e.store.SetUnapproved(key); serr != nil {
					return report, serr
				}
			}
			continue
		}

		report.Approved++
		if err := e.migrateGroup(ctx, progress, group, keys, snap, report); err != nil {
			return report, err
		}
	}

	return report, nil
}

// migrateGroup matches and favorites one approved group, then records the
// approval and extends the snapshot. The store update runs strictly after
// all favorite calls for the group have joined.
func (e *Engine) migrateGroup(ctx context.Context, progress chan<- ProgressUpdate, group models.ArtistGroup, keys []string, snap Snapshot, report *MigrationReport) error {
	e.sendProgress(progress, favoriteTracksUpdate(group.Artist, len(group.Tracks)))

	matched, err := e.matcher.Match(ctx, group.Tracks, group.Artist)
	if err != nil {
		return fmt.Errorf("failed to match tracks for %s: %w", group.Artist, err)
	}
	report.TracksUnmatched += len(group.Tracks) - len(matched)

	favorited, failed := e.favoriteGroup(ctx, matched)
	report.TracksFavorited += favorited
	report.Failed += failed

	for _, key := range keys {
		if err := e.store.SetApproved(key); err != nil {
			return err
		}
		snap.Add(key)
	}

	added, notFound, err := e.autoFavoriteAlbums(ctx, progress, group)
	report.AlbumsFavorited += added
	report.AlbumsNotFound += notFound
	return err
}

// reviewPrompt renders the interactive checkpoint for one group: artist,
// track count, and a short track preview.
func reviewPrompt(group models.ArtistGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Artist: %s (%d saved tracks)\n", group.Artist, len(group.Tracks))

	limit := previewLimit
	if len(group.Tracks) < limit {
		limit = len(group.Tracks)
	}
	for _, t := range group.Tracks[:limit] {
		fmt.Fprintf(&b, "  - %s (%s)\n", t.Title, t.Album)
	}

	fmt.Fprintf(&b, "Approve and add %s?", strings.ToUpper(group.Artist))
	return b.String()
}
