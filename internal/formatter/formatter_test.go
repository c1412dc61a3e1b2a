package formatter

import (
	"strings"
	"testing"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/tasks"
)

func TestFormatMigration(t *testing.T) {
	report := &tasks.MigrationReport{
		Artists:         12,
		Reviewed:        5,
		Approved:        3,
		Declined:        2,
		SkippedPresent:  6,
		SkippedDeclined: 1,
		TracksFavorited: 40,
		TracksUnmatched: 2,
		AlbumsFavorited: 4,
		AlbumsNotFound:  1,
		Failed:          0,
	}

	out := FormatMigration(report)

	t.Run("includes header", func(t *testing.T) {
		if !strings.Contains(out, "Migration complete") {
			t.Errorf("missing header in output: %q", out)
		}
	})

	t.Run("includes all counts", func(t *testing.T) {
		for _, want := range []string{"Artists", "Reviewed", "Approved", "Declined", "Tracks favorited", "Albums not found", "12", "40"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("one line per field plus header", func(t *testing.T) {
		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		if len(lines) != 12 {
			t.Errorf("expected 12 lines, got %d:\n%s", len(lines), out)
		}
	})
}

func TestFormatSync(t *testing.T) {
	out := FormatSync(&tasks.SyncReport{SavedTracks: 100, AlreadyPresent: 80, Favorited: 15, Unmatched: 4, Failed: 1})

	for _, want := range []string{"Sync complete", "Saved tracks", "Already present", "100", "80", "15"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormatSweep(t *testing.T) {
	out := FormatSweep(&tasks.SweepReport{Playlists: 3, Tracks: 50, AlreadyPresent: 30, Favorited: 18, Unmatched: 2})

	for _, want := range []string{"Sweep complete", "Playlists", "Tracks", "50", "18"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormatConvert(t *testing.T) {
	out := FormatConvert(&tasks.ConvertReport{Playlists: 2, AlbumsFavorited: 5, Failed: 0})

	for _, want := range []string{"Convert complete", "Albums favorited", "5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormatFuzzy(t *testing.T) {
	out := FormatFuzzy(&tasks.FuzzyReport{Records: 10, Resolved: 4, Declined: 1, BelowThreshold: 3, Failed: 0, Residual: 6})

	for _, want := range []string{"Fuzzy resolution complete", "Records", "Resolved", "Below threshold", "Remaining", "10", "6"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormatPlaylists(t *testing.T) {
	t.Run("empty listing", func(t *testing.T) {
		out := FormatPlaylists(nil)
		if !strings.Contains(out, "No playlists found") {
			t.Errorf("expected empty message, got %q", out)
		}
	})

	t.Run("numbered listing", func(t *testing.T) {
		out := FormatPlaylists([]models.Playlist{
			{ID: "p1", Name: "Morning Mix", TrackCount: 25},
			{ID: "p2", Name: "Workout", TrackCount: 40},
		})

		for _, want := range []string{"Playlists (2)", "1. Morning Mix", "2. Workout", "25 tracks", "40 tracks"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q in:\n%s", want, out)
			}
		}
	})
}

func TestFormatTracks(t *testing.T) {
	export := &models.PlaylistExport{
		Playlist: models.Playlist{ID: "p1", Name: "Road Trip", Description: "Long drives"},
		Tracks: []models.Track{
			{ID: "t1", Title: "Song One", Artist: "Artist A", Album: "Album X"},
			{ID: "t2", Title: "Song Two", Artist: "Artist B"},
		},
	}

	out := FormatTracks(export)

	t.Run("includes playlist metadata", func(t *testing.T) {
		for _, want := range []string{"Road Trip", "Long drives", "2 tracks"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("numbers tracks with artist and title", func(t *testing.T) {
		if !strings.Contains(out, "1. Artist A - Song One") {
			t.Errorf("missing first track line in:\n%s", out)
		}
		if !strings.Contains(out, "2. Artist B - Song Two") {
			t.Errorf("missing second track line in:\n%s", out)
		}
	})

	t.Run("album rendered only when present", func(t *testing.T) {
		if !strings.Contains(out, "Album X") {
			t.Errorf("missing album annotation in:\n%s", out)
		}
		if strings.Contains(out, "Song Two (") {
			t.Errorf("unexpected album annotation for albumless track:\n%s", out)
		}
	})
}
