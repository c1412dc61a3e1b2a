package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stx-music/stx/internal/repositories"
	"github.com/stx-music/stx/internal/services"
	"github.com/stx-music/stx/internal/shared"
	"github.com/stx-music/stx/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    *services.SpotifyService
	tidal      *services.TidalService
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    *services.SpotifyService
	Tidal      *services.TidalService
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		tidal:      opts.Tidal,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, migrateCommand, sweepCommand, convertCommand, fuzzyCommand,
		playlistsCommand, resetCommand, setupCommand, authCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger, used when output must be
// redirected away from the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// openEngine wires the reconciliation engine from the runner's
// configuration. The returned cleanup closes the review store database.
func (r *Runner) openEngine() (*tasks.Engine, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var source services.SourceService
	if r.spotify != nil {
		source = r.spotify
	}

	store := repositories.NewReviewStore(db)
	notFound := repositories.NewNotFoundLog(r.config.Database.NotFoundLog)
	matcher := tasks.NewSearchMatcher(r.tidal, r.logger)
	decider := tasks.NewConsoleDecider(r.input, r.output)

	engine := tasks.NewEngine(source, r.tidal, store, notFound, matcher, decider, r.logger, tasks.EngineOpts{
		SweepDelay:     time.Duration(r.config.Sync.SweepDelaySeconds * float64(time.Second)),
		RetryAttempts:  r.config.Sync.RetryAttempts,
		FuzzyThreshold: r.config.Sync.FuzzyThreshold,
	})

	return engine, func() { db.Close() }, nil
}

// requireSpotify ensures the Spotify service is configured and
// authenticated with the stored access token.
func (r *Runner) requireSpotify(ctx context.Context) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in %s", shared.ErrMissingCredentials, r.configPath)
	}
	token := r.config.Credentials.Spotify.AccessToken
	if token == "" {
		return fmt.Errorf("%w: run 'stx auth login' first", shared.ErrNotAuthenticated)
	}
	return r.spotify.Authenticate(ctx, map[string]string{"access_token": token})
}

// requireTidal verifies the Tidal session before any mutating run.
func (r *Runner) requireTidal(ctx context.Context) error {
	if r.tidal == nil {
		return fmt.Errorf("%w: Tidal service not initialized", shared.ErrServiceUnavailable)
	}
	if err := r.tidal.CheckSession(ctx); err != nil {
		return fmt.Errorf("tidal session check failed: %w", err)
	}
	return nil
}

func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("config is nil")
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
