package main

import (
	"context"
	"fmt"

	"github.com/stx-music/stx/internal/formatter"
	"github.com/stx-music/stx/internal/repositories"
	"github.com/stx-music/stx/internal/shared"
	"github.com/stx-music/stx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Playlists prints the Tidal playlist listing or launches the
// interactive review TUI.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(ctx); err != nil {
		return err
	}

	if cmd.Bool("list") || cmd.Bool("json") {
		playlists, err := r.tidal.GetPlaylists(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch playlists: %w", err)
		}
		if cmd.Bool("json") {
			return r.writeJSON(playlists, true)
		}
		return r.writePlain("%s", formatter.FormatPlaylists(playlists))
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/stx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := ui.Run(ctx, r.tidal); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// Reset clears all review decisions, optionally truncating the
// not-found log as well.
func (r *Runner) Reset(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store := repositories.NewReviewStore(db)
	if err := store.Reset(); err != nil {
		return fmt.Errorf("failed to reset review store: %w", err)
	}
	r.logger.Info("review store cleared")

	if cmd.Bool("not-found") {
		notFound := repositories.NewNotFoundLog(r.config.Database.NotFoundLog)
		if err := notFound.Rewrite(nil); err != nil {
			return fmt.Errorf("failed to truncate not-found log: %w", err)
		}
		r.logger.Info("not-found log truncated", "path", notFound.Path())
	}

	return r.writePlain("✓ Review decisions cleared\n")
}
