package tasks

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/services"
	"github.com/stx-music/stx/internal/shared"
	stxtest "github.com/stx-music/stx/internal/testing"
)

func fourTrackLibrary() *stxtest.MockSource {
	return &stxtest.MockSource{
		Saved: []models.SavedTrack{
			savedTrack("One", "A", "Debut"),
			savedTrack("Two", "A", "Debut"),
			savedTrack("Three", "A", "Debut"),
			savedTrack("Four", "A", "Debut"),
		},
	}
}

func fourTrackMatcher() stubMatcher {
	return stubMatcher{ids: map[string]string{
		shared.TrackKey("One", "A"):   "t1",
		shared.TrackKey("Two", "A"):   "t2",
		shared.TrackKey("Three", "A"): "t3",
		shared.TrackKey("Four", "A"):  "t4",
	}}
}

func TestMigrateApprovedGroup(t *testing.T) {
	source := fourTrackLibrary()
	target := &stxtest.MockTarget{
		SearchResults: map[string]*services.SearchResults{
			"Debut": {Albums: []models.Album{{ID: "alb1", Name: "Debut", Artists: []string{"A"}}}},
		},
	}
	decider := &stxtest.ScriptedDecider{Answers: []bool{true}}
	engine := newTestEngine(t, source, target, fourTrackMatcher(), decider)

	report, err := engine.Migrate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if report.Artists != 1 || report.Reviewed != 1 || report.Approved != 1 {
		t.Errorf("report = %+v, want 1 artist reviewed and approved", report)
	}
	if report.TracksFavorited != 4 {
		t.Errorf("TracksFavorited = %d, want 4", report.TracksFavorited)
	}
	if len(target.FavoritedTracks) != 4 {
		t.Errorf("favorited tracks = %v, want 4 entries", target.FavoritedTracks)
	}

	// Four tracks from the same album trigger one album favorite.
	if len(target.FavoritedAlbums) != 1 || target.FavoritedAlbums[0] != "alb1" {
		t.Errorf("favorited albums = %v, want [alb1]", target.FavoritedAlbums)
	}

	for _, title := range []string{"One", "Two", "Three", "Four"} {
		status, err := engine.store.GetStatus(shared.TrackKey(title, "A"))
		if err != nil {
			t.Fatal(err)
		}
		if status != models.StatusApproved {
			t.Errorf("status for %s = %v, want approved", title, status)
		}
	}

	// All four tracks previewed: under the five-track cap.
	if len(decider.Prompts) != 1 || strings.Count(decider.Prompts[0], "\n") < 4 {
		t.Errorf("prompt = %q, want all four tracks listed", decider.Prompts)
	}
}

func TestMigrateDeclinedGroup(t *testing.T) {
	source := fourTrackLibrary()
	target := &stxtest.MockTarget{}
	decider := &stxtest.ScriptedDecider{Answers: []bool{false}}
	engine := newTestEngine(t, source, target, fourTrackMatcher(), decider)

	before := time.Now()
	report, err := engine.Migrate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if report.Declined != 1 {
		t.Errorf("Declined = %d, want 1", report.Declined)
	}
	if len(target.FavoritedTracks) != 0 || len(target.FavoritedAlbums) != 0 {
		t.Error("declined group must not mutate the target")
	}

	for _, title := range []string{"One", "Two", "Three", "Four"} {
		record, err := engine.store.Get(shared.TrackKey(title, "A"))
		if err != nil {
			t.Fatal(err)
		}
		if record == nil || record.Status != models.StatusUnapproved {
			t.Fatalf("record for %s = %+v, want unapproved", title, record)
		}
		want := record.InsertTime.Add(7 * 24 * time.Hour)
		if record.NextRetry == nil || !record.NextRetry.Equal(want) {
			t.Errorf("next_retry for %s = %v, want insert_time + 7 days", title, record.NextRetry)
		}
		if record.InsertTime.Before(before.Add(-time.Minute)) {
			t.Errorf("insert_time for %s = %v, too old", title, record.InsertTime)
		}
	}

	// An immediate rerun skips the group without prompting again.
	report, err = engine.Migrate(context.Background(), nil)
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if report.SkippedDeclined != 1 {
		t.Errorf("SkippedDeclined = %d, want 1", report.SkippedDeclined)
	}
	if len(decider.Prompts) != 1 {
		t.Errorf("prompts = %d, want 1 (no re-prompt)", len(decider.Prompts))
	}
}

func TestMigratePresentGroupRunsAlbumHeuristic(t *testing.T) {
	source := fourTrackLibrary()
	target := &stxtest.MockTarget{
		Favorites: []models.Track{
			{Title: "One", Artist: "A"},
			{Title: "Two", Artist: "A"},
			{Title: "Three", Artist: "A"},
			{Title: "Four", Artist: "A"},
		},
		SearchResults: map[string]*services.SearchResults{
			"Debut": {Albums: []models.Album{{ID: "alb1", Name: "Debut", Artists: []string{"A"}}}},
		},
	}
	decider := &stxtest.ScriptedDecider{}
	engine := newTestEngine(t, source, target, fourTrackMatcher(), decider)

	report, err := engine.Migrate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if report.SkippedPresent != 1 || report.Reviewed != 0 {
		t.Errorf("report = %+v, want present group skipped without review", report)
	}
	if len(decider.Prompts) != 0 {
		t.Error("present group must not prompt")
	}
	// The tracks may still imply an unfavorited album.
	if len(target.FavoritedAlbums) != 1 {
		t.Errorf("favorited albums = %v, want the implied album", target.FavoritedAlbums)
	}
	if len(target.FavoritedTracks) != 0 {
		t.Error("present group must not re-favorite tracks")
	}
}

func TestMigrateApprovalVisibleWithinRun(t *testing.T) {
	// Two artists sharing no tracks: approving the first must not affect
	// the second's classification, and both prompts arrive in
	// alphabetical order.
	source := &stxtest.MockSource{
		Saved: []models.SavedTrack{
			savedTrack("Song Z", "Zed", "Late"),
			savedTrack("Song A", "Ace", "Early"),
		},
	}
	matcher := stubMatcher{ids: map[string]string{
		shared.TrackKey("Song A", "Ace"): "a1",
		shared.TrackKey("Song Z", "Zed"): "z1",
	}}
	decider := &stxtest.ScriptedDecider{Answers: []bool{true, false}}
	engine := newTestEngine(t, source, &stxtest.MockTarget{}, matcher, decider)

	if _, err := engine.Migrate(context.Background(), nil); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if len(decider.Prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(decider.Prompts))
	}
	if !strings.Contains(decider.Prompts[0], "Ace") || !strings.Contains(decider.Prompts[1], "Zed") {
		t.Errorf("prompt order = %q", decider.Prompts)
	}

	status, _ := engine.store.GetStatus(shared.TrackKey("Song A", "Ace"))
	if status != models.StatusApproved {
		t.Errorf("Ace status = %v, want approved", status)
	}
	status, _ = engine.store.GetStatus(shared.TrackKey("Song Z", "Zed"))
	if status != models.StatusUnapproved {
		t.Errorf("Zed status = %v, want unapproved", status)
	}
}

func TestReviewPromptTruncatesPreview(t *testing.T) {
	group := models.ArtistGroup{Artist: "Band"}
	for _, title := range []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"} {
		group.Tracks = append(group.Tracks, models.Track{Title: title, Artist: "Band", Album: "First"})
	}

	prompt := reviewPrompt(group)
	if !strings.Contains(prompt, "7 saved tracks") {
		t.Errorf("prompt missing full count: %q", prompt)
	}
	if strings.Contains(prompt, "Six") || strings.Contains(prompt, "Seven") {
		t.Errorf("prompt shows more than five tracks: %q", prompt)
	}
	if !strings.Contains(prompt, "Five") {
		t.Errorf("prompt missing fifth track: %q", prompt)
	}
}
