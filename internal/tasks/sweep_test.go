package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/shared"
	stxtest "github.com/stx-music/stx/internal/testing"
)

func TestSweep(t *testing.T) {
	source := &stxtest.MockSource{
		Playlists: []models.Playlist{
			{ID: "p1", Name: "Mix One"},
			{ID: "p2", Name: "Mix Two"},
		},
		Exports: map[string]*models.PlaylistExport{
			"p1": {Tracks: []models.Track{
				{Title: "Known", Artist: "Band", Album: "First"},
				{Title: "Fresh", Artist: "Band", Album: "First"},
			}},
			"p2": {Tracks: []models.Track{
				{Title: "Obscure", Artist: "Band", Album: "Second"},
			}},
		},
	}
	target := &stxtest.MockTarget{
		Favorites: []models.Track{{Title: "Known", Artist: "Band"}},
	}
	matcher := stubMatcher{ids: map[string]string{
		shared.TrackKey("Fresh", "Band"): "f1",
		// "Obscure" has no mapping.
	}}
	engine := newTestEngine(t, source, target, matcher, &stxtest.ScriptedDecider{})

	report, err := engine.Sweep(context.Background(), nil)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if report.Playlists != 2 || report.Tracks != 3 {
		t.Errorf("report = %+v, want 2 playlists and 3 tracks", report)
	}
	if report.AlreadyPresent != 1 || report.Favorited != 1 || report.Unmatched != 1 {
		t.Errorf("report = %+v, want 1 present, 1 favorited, 1 unmatched", report)
	}
	if len(target.FavoritedTracks) != 1 || target.FavoritedTracks[0] != "f1" {
		t.Errorf("favorited = %v, want [f1]", target.FavoritedTracks)
	}
}

func TestSweepExhaustedRetriesContinue(t *testing.T) {
	source := &stxtest.MockSource{
		Playlists: []models.Playlist{{ID: "p1", Name: "Mix"}},
		Exports: map[string]*models.PlaylistExport{
			"p1": {Tracks: []models.Track{
				{Title: "Throttled", Artist: "Band", Album: "First"},
				{Title: "Fine", Artist: "Band", Album: "First"},
			}},
		},
	}
	target := &stxtest.MockTarget{
		AddTrackErrs: func(trackID string, call int) error {
			if trackID == "throttled" {
				return fmt.Errorf("%w: always", shared.ErrRateLimited)
			}
			return nil
		},
	}
	matcher := stubMatcher{ids: map[string]string{
		shared.TrackKey("Throttled", "Band"): "throttled",
		shared.TrackKey("Fine", "Band"):      "fine",
	}}
	engine := newTestEngine(t, source, target, matcher, &stxtest.ScriptedDecider{})

	report, err := engine.Sweep(context.Background(), nil)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if report.Failed != 1 || report.Favorited != 1 {
		t.Errorf("report = %+v, want 1 failed and 1 favorited", report)
	}
	if got := target.AddTrackCallCount("throttled"); got != 5 {
		t.Errorf("throttled call count = %d, want 5 attempts", got)
	}
}

func TestSweepPlaylistExportFailureIsolated(t *testing.T) {
	source := &stxtest.MockSource{
		Playlists: []models.Playlist{
			{ID: "broken", Name: "Broken"},
			{ID: "p1", Name: "Mix"},
		},
		Exports: map[string]*models.PlaylistExport{
			"p1": {Tracks: []models.Track{{Title: "Fresh", Artist: "Band", Album: "First"}}},
		},
	}
	matcher := stubMatcher{ids: map[string]string{
		shared.TrackKey("Fresh", "Band"): "f1",
	}}
	target := &stxtest.MockTarget{}
	engine := newTestEngine(t, source, target, matcher, &stxtest.ScriptedDecider{})

	report, err := engine.Sweep(context.Background(), nil)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if report.Favorited != 1 {
		t.Errorf("Favorited = %d, want the healthy playlist still swept", report.Favorited)
	}
}

func TestSyncSkipsPresentAndFavoritesRest(t *testing.T) {
	source := &stxtest.MockSource{
		Saved: []models.SavedTrack{
			savedTrack("Known", "Band", "First"),
			savedTrack("Fresh", "Band", "First"),
			savedTrack("Obscure", "Band", "Second"),
		},
	}
	target := &stxtest.MockTarget{
		Favorites: []models.Track{{Title: "Known", Artist: "Band"}},
	}
	matcher := stubMatcher{ids: map[string]string{
		shared.TrackKey("Fresh", "Band"): "f1",
	}}
	engine := newTestEngine(t, source, target, matcher, &stxtest.ScriptedDecider{})

	report, err := engine.Sync(context.Background(), nil)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if report.SavedTracks != 3 || report.AlreadyPresent != 1 || report.Favorited != 1 || report.Unmatched != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(target.FavoritedTracks) != 1 || target.FavoritedTracks[0] != "f1" {
		t.Errorf("favorited = %v, want [f1]", target.FavoritedTracks)
	}

	// No review gating: the store stays empty.
	count, err := engine.store.Count(models.StatusNone)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("review records = %d, want 0", count)
	}
}

func TestSyncAbortsWhenFavoritesFetchFails(t *testing.T) {
	source := &stxtest.MockSource{Saved: []models.SavedTrack{savedTrack("One", "Band", "First")}}
	target := &stxtest.MockTarget{FavoritesErr: errors.New("boom")}
	engine := newTestEngine(t, source, target, stubMatcher{}, &stxtest.ScriptedDecider{})

	if _, err := engine.Sync(context.Background(), nil); err == nil {
		t.Fatal("expected error when the favorites read fails")
	}
}

func TestConvert(t *testing.T) {
	target := &stxtest.MockTarget{
		Playlists: []models.Playlist{{ID: "p1", Name: "Mix"}},
		Exports: map[string]*models.PlaylistExport{
			"p1": {Tracks: []models.Track{
				{Title: "One", AlbumID: "alb1"},
				{Title: "Two", AlbumID: "alb1"},
				{Title: "Three", AlbumID: "alb1"},
				{Title: "Other", AlbumID: "alb2"},
				{Title: "Another", AlbumID: "alb2"},
				{Title: "No Album"},
			}},
		},
	}
	engine := newTestEngine(t, &stxtest.MockSource{}, target, stubMatcher{}, &stxtest.ScriptedDecider{})

	report, err := engine.Convert(context.Background(), nil)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if report.AlbumsFavorited != 1 {
		t.Errorf("AlbumsFavorited = %d, want 1", report.AlbumsFavorited)
	}
	if len(target.FavoritedAlbums) != 1 || target.FavoritedAlbums[0] != "alb1" {
		t.Errorf("favorited albums = %v, want [alb1] (only the album with three tracks)", target.FavoritedAlbums)
	}
}
