package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/stx-music/stx/internal/server"
	"github.com/stx-music/stx/internal/shared"
	"github.com/urfave/cli/v3"
)

const authTimeout = 3 * time.Minute

// listenAddr derives the local listen address from the OAuth redirect URI.
func listenAddr(redirectURI string) string {
	parsed, err := url.Parse(redirectURI)
	if err != nil || parsed.Host == "" {
		return ":8080"
	}
	if parsed.Port() == "" {
		return parsed.Host + ":80"
	}
	return parsed.Host
}

// AuthLogin runs the Spotify authorization code flow against a local
// callback server and persists the resulting tokens to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in %s", shared.ErrMissingCredentials, r.configPath)
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(r.spotify.OAuthConfig(), state)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	srv := &http.Server{
		Addr:    listenAddr(r.config.Credentials.Spotify.RedirectURI),
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := r.spotify.GetAuthURL(state)
	r.writePlain("Opening browser for Spotify authorization...\n")
	r.writePlain("%s\n", authURL)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser, visit the URL manually", "error", err)
	}

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return err
		}
		if err := r.saveTokens(result.Token); err != nil {
			return err
		}
		r.logger.Info("spotify tokens saved", "path", r.configPath)
		return r.writePlain("✓ Spotify authentication successful\n")
	case <-time.After(authTimeout):
		return fmt.Errorf("%w: no callback received within %s", shared.ErrTimeout, authTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthStatus reports the Spotify token state and verifies the Tidal session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.config.Credentials.Spotify.AccessToken != "" {
		r.writePlain("Spotify: ✓ token stored\n")
	} else {
		r.writePlain("Spotify: ✗ not authenticated (run 'stx auth login')\n")
	}

	if r.tidal == nil {
		r.writePlain("Tidal:   ✗ not configured\n")
		return nil
	}

	if err := r.tidal.CheckSession(ctx); err != nil {
		r.writePlain("Tidal:   ✗ session invalid: %v\n", err)
		return nil
	}

	r.writePlain("Tidal:   ✓ session valid\n")
	return nil
}
