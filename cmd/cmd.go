// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// syncCommand runs the ungated favorites sync, the default mode.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "sync",
		Usage:  "Sync saved Spotify tracks into Tidal favorites",
		Action: r.Sync,
	}
}

// migrateCommand runs the review-gated artist migration.
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Review saved tracks artist by artist and migrate approved groups",
		Action: r.Migrate,
	}
}

// sweepCommand favorites every playlist track not already favorited.
func sweepCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "sweep",
		Usage:  "Favorite all Spotify playlist tracks on Tidal",
		Action: r.Sweep,
	}
}

// convertCommand favorites albums dominating Tidal playlists.
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "convert",
		Usage:  "Favorite albums appearing three or more times in Tidal playlists",
		Action: r.Convert,
	}
}

// fuzzyCommand replays the not-found log against Tidal search.
func fuzzyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "fuzzy",
		Usage:  "Resolve logged album misses with fuzzy search and manual confirmation",
		Action: r.Fuzzy,
	}
}

// playlistsCommand lists or interactively manages Tidal playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Review and delete Tidal playlists interactively",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "Print the playlist listing instead of launching the TUI",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON (implies --list)",
			},
		},
		Action: r.Playlists,
	}
}

// resetCommand clears the persisted review decisions.
func resetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Clear all review decisions from the store",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "not-found",
				Usage: "Also truncate the album not-found log",
			},
		},
		Action: r.Reset,
	}
}

// setupCommand initializes configuration and the review store database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config file, initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check Spotify token and Tidal session state",
				Action: r.AuthStatus,
			},
		},
	}
}
