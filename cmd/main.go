package main

import (
	"context"
	"os"

	"github.com/stx-music/stx/internal/services"
	"github.com/stx-music/stx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	var spotify *services.SpotifyService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(map[string]string{
			"client_id":     config.Credentials.Spotify.ClientID,
			"client_secret": config.Credentials.Spotify.ClientSecret,
			"redirect_uri":  config.Credentials.Spotify.RedirectURI,
		}); err == nil {
			spotify = svc
		} else {
			logger.Warn("spotify service not available", "error", err)
		}
	}

	tidal := services.NewTidalService(
		config.Credentials.Tidal.BaseURL,
		config.Credentials.Tidal.AccessToken,
		config.Credentials.Tidal.UserID,
		config.Credentials.Tidal.CountryCode,
	)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Spotify:    spotify,
		Tidal:      tidal,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:           "stx",
		Usage:          "Reconcile a Spotify library into Tidal favorites",
		Version:        "0.1.0",
		Commands:       runner.register(),
		DefaultCommand: "sync",
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
