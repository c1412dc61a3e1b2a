package main

import (
	"context"

	"github.com/stx-music/stx/internal/formatter"
	"github.com/stx-music/stx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// renderProgress drains engine progress updates to the output writer.
func (r *Runner) renderProgress(progressCh <-chan tasks.ProgressUpdate) {
	for update := range progressCh {
		switch update.Phase {
		case tasks.FetchSaved, tasks.FetchFavorites:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.ClassifyGroups, tasks.ResolveAlbums:
			r.writePlain("   %s\n", update.Message)
		case tasks.FavoriteTracks, tasks.FavoriteAlbums:
			r.writePlain("♥  %s\n", update.Message)
		case tasks.SweepPlaylists, tasks.ConvertPlaylists:
			r.writePlain("🔍 %s\n", update.Message)
		}
	}
}

// Sync favorites every saved Spotify track missing from Tidal favorites.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(ctx); err != nil {
		return err
	}
	if err := r.requireTidal(ctx); err != nil {
		return err
	}

	engine, cleanup, err := r.openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.renderProgress(progressCh)

	report, err := engine.Sync(ctx, progressCh)
	close(progressCh)
	if err != nil {
		return err
	}

	return r.writePlain("\n%s", formatter.FormatSync(report))
}

// Migrate runs the review-gated artist-by-artist migration.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(ctx); err != nil {
		return err
	}
	if err := r.requireTidal(ctx); err != nil {
		return err
	}

	engine, cleanup, err := r.openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.renderProgress(progressCh)

	report, err := engine.Migrate(ctx, progressCh)
	close(progressCh)
	if err != nil {
		return err
	}

	return r.writePlain("\n%s", formatter.FormatMigration(report))
}

// Sweep favorites every Spotify playlist track missing from Tidal favorites.
func (r *Runner) Sweep(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(ctx); err != nil {
		return err
	}
	if err := r.requireTidal(ctx); err != nil {
		return err
	}

	engine, cleanup, err := r.openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.renderProgress(progressCh)

	report, err := engine.Sweep(ctx, progressCh)
	close(progressCh)
	if err != nil {
		return err
	}

	return r.writePlain("\n%s", formatter.FormatSweep(report))
}

// Convert favorites albums that dominate the user's Tidal playlists.
// Only the Tidal side is touched, so no Spotify auth is required.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(ctx); err != nil {
		return err
	}

	engine, cleanup, err := r.openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.renderProgress(progressCh)

	report, err := engine.Convert(ctx, progressCh)
	close(progressCh)
	if err != nil {
		return err
	}

	return r.writePlain("\n%s", formatter.FormatConvert(report))
}

// Fuzzy replays the not-found log against Tidal search with manual confirmation.
func (r *Runner) Fuzzy(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(ctx); err != nil {
		return err
	}

	engine, cleanup, err := r.openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.renderProgress(progressCh)

	report, err := engine.Fuzzy(ctx, progressCh)
	close(progressCh)
	if err != nil {
		return err
	}

	return r.writePlain("\n%s", formatter.FormatFuzzy(report))
}
