package tasks

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stx-music/stx/internal/repositories"
	"github.com/stx-music/stx/internal/services"
)

// Decider supplies the single yes/no answer at an interactive checkpoint.
//
// The whole pipeline suspends while waiting for the answer; there is no
// background progress during a prompt.
type Decider interface {
	Confirm(prompt string) (bool, error)
}

// ConsoleDecider reads decisions line by line from an input stream.
// Only a trimmed, lowercased "y" approves; any other answer declines.
type ConsoleDecider struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewConsoleDecider creates a decider over the given streams,
// typically stdin and stdout.
func NewConsoleDecider(in io.Reader, out io.Writer) *ConsoleDecider {
	return &ConsoleDecider{reader: bufio.NewReader(in), out: out}
}

// Confirm prints the prompt and reads one answer. A closed input stream
// declines rather than failing the run.
func (d *ConsoleDecider) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(d.out, "%s [y/N]: ", prompt)

	line, err := d.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(strings.ToLower(line)) == "y", nil
}

// EngineOpts tunes retry and pacing behavior.
type EngineOpts struct {
	SweepDelay     time.Duration // Inter-call delay after each successful favorite
	RetryAttempts  int           // Attempts per favorite call under rate limiting
	FuzzyThreshold float64       // Minimum score the resolver surfaces for confirmation
}

// Engine orchestrates reconciliation between the source and target catalogs.
// All dependencies are injected; the engine holds no ambient global state.
type Engine struct {
	source   services.SourceService
	target   services.TargetService
	store    *repositories.ReviewStore
	notFound *repositories.NotFoundLog
	matcher  Matcher
	decider  Decider
	logger   *log.Logger
	opts     EngineOpts

	// retryBase is the initial backoff for rate-limited favorite calls.
	// Overridable in tests so retries do not sleep for real.
	retryBase time.Duration
}

// NewEngine creates an Engine with the provided collaborators. Zero-value
// opts fields fall back to defaults (0.5s delay, 5 attempts, 0.70 threshold).
func NewEngine(
	source services.SourceService,
	target services.TargetService,
	store *repositories.ReviewStore,
	notFound *repositories.NotFoundLog,
	matcher Matcher,
	decider Decider,
	logger *log.Logger,
	opts EngineOpts,
) *Engine {
	if opts.SweepDelay <= 0 {
		opts.SweepDelay = 500 * time.Millisecond
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 5
	}
	if opts.FuzzyThreshold <= 0 {
		opts.FuzzyThreshold = 0.70
	}

	return &Engine{
		source:    source,
		target:    target,
		store:     store,
		notFound:  notFound,
		matcher:   matcher,
		decider:   decider,
		logger:    logger,
		opts:      opts,
		retryBase: time.Second,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// MigrationReport summarizes one review-gated migration run.
type MigrationReport struct {
	Artists         int // Artist groups derived from the saved library
	Reviewed        int // Groups presented for interactive review
	Approved        int // Groups the user approved
	Declined        int // Groups the user declined
	SkippedPresent  int // Groups skipped as present or previously approved
	SkippedDeclined int // Groups skipped as previously declined or not yet due
	TracksFavorited int
	TracksUnmatched int
	AlbumsFavorited int
	AlbumsNotFound  int
	Failed          int // Favorite calls that failed
}

// SyncReport summarizes one ungated favorites sync run.
type SyncReport struct {
	SavedTracks    int
	AlreadyPresent int
	Favorited      int
	Unmatched      int
	Failed         int
}

// SweepReport summarizes one bulk playlist sweep run.
type SweepReport struct {
	Playlists      int
	Tracks         int
	AlreadyPresent int
	Favorited      int
	Unmatched      int
	Failed         int
}

// ConvertReport summarizes one playlist-to-album conversion run.
type ConvertReport struct {
	Playlists       int
	AlbumsFavorited int
	Failed          int
}

// FuzzyReport summarizes one resolver pass over the not-found log.
type FuzzyReport struct {
	Records        int // Records read from the log
	Resolved       int // Confirmed and favorited
	Declined       int // Surfaced but declined by the user
	BelowThreshold int // Best score under the acceptance threshold
	Failed         int // Search or favorite errors
	Residual       int // Records written back
}
