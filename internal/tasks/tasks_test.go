package tasks

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/repositories"
	"github.com/stx-music/stx/internal/shared"
	stxtest "github.com/stx-music/stx/internal/testing"
)

// stubMatcher maps track keys to fixed target identifiers.
type stubMatcher struct {
	ids map[string]string
}

func (m stubMatcher) Match(ctx context.Context, tracks []models.Track, artist string) (map[string]string, error) {
	out := make(map[string]string)
	for _, t := range tracks {
		key := shared.TrackKey(t.Title, artist)
		if id, ok := m.ids[key]; ok {
			out[key] = id
		}
	}
	return out, nil
}

func newTestEngine(t *testing.T, source *stxtest.MockSource, target *stxtest.MockTarget, matcher Matcher, decider Decider) *Engine {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	store := repositories.NewReviewStore(db)
	notFound := repositories.NewNotFoundLog(filepath.Join(t.TempDir(), "albums_not_found.txt"))
	logger := shared.NewLogger(io.Discard)

	engine := NewEngine(source, target, store, notFound, matcher, decider, logger, EngineOpts{
		SweepDelay: time.Millisecond,
	})
	engine.retryBase = time.Millisecond
	return engine
}

func TestConsoleDecider(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase y approves", "y\n", true},
		{"uppercase Y approves", "Y\n", true},
		{"padded y approves", "  y  \n", true},
		{"n declines", "n\n", false},
		{"yes declines", "yes\n", false},
		{"empty line declines", "\n", false},
		{"closed input declines", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			decider := NewConsoleDecider(strings.NewReader(tt.input), &out)

			got, err := decider.Confirm("Approve?")
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "[y/N]") {
				t.Errorf("prompt missing y/N marker: %q", out.String())
			}
		})
	}
}

func TestConsoleDeciderSequentialAnswers(t *testing.T) {
	decider := NewConsoleDecider(strings.NewReader("y\nn\ny\n"), io.Discard)

	want := []bool{true, false, true}
	for i, w := range want {
		got, err := decider.Confirm("next")
		if err != nil {
			t.Fatalf("Confirm() #%d error = %v", i, err)
		}
		if got != w {
			t.Errorf("Confirm() #%d = %v, want %v", i, got, w)
		}
	}
}

func TestEngineOptsDefaults(t *testing.T) {
	engine := NewEngine(nil, nil, nil, nil, nil, nil, shared.NewLogger(io.Discard), EngineOpts{})

	if engine.opts.SweepDelay != 500*time.Millisecond {
		t.Errorf("SweepDelay = %v, want 500ms", engine.opts.SweepDelay)
	}
	if engine.opts.RetryAttempts != 5 {
		t.Errorf("RetryAttempts = %d, want 5", engine.opts.RetryAttempts)
	}
	if engine.opts.FuzzyThreshold != 0.70 {
		t.Errorf("FuzzyThreshold = %v, want 0.70", engine.opts.FuzzyThreshold)
	}
}
