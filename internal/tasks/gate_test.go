package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/shared"
	stxtest "github.com/stx-music/stx/internal/testing"
)

func savedTrack(title, artist, album string) models.SavedTrack {
	return models.SavedTrack{Track: models.Track{Title: title, Artist: artist, Album: album}}
}

func TestGroupByArtist(t *testing.T) {
	saved := []models.SavedTrack{
		savedTrack("Gamma", "Zeta", "Third"),
		savedTrack("Alpha", "Band", "First"),
		savedTrack("Beta", "Band", "First"),
		savedTrack("No Album", "Band", ""),
		savedTrack("No Artist", "", "First"),
	}

	groups := GroupByArtist(saved)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(groups), groups)
	}

	// Alphabetical by artist.
	if groups[0].Artist != "Band" || groups[1].Artist != "Zeta" {
		t.Errorf("group order = %s, %s", groups[0].Artist, groups[1].Artist)
	}
	if len(groups[0].Tracks) != 2 {
		t.Errorf("Band has %d tracks, want 2 (metadata-less items dropped)", len(groups[0].Tracks))
	}
}

func TestClassifyGroup(t *testing.T) {
	group := models.ArtistGroup{
		Artist: "Band",
		Tracks: []models.Track{
			{Title: "Alpha", Artist: "Band", Album: "First"},
			{Title: "Beta", Artist: "Band", Album: "First"},
		},
	}
	keys := group.Keys(shared.TrackKey)

	tests := []struct {
		name     string
		snapshot []string
		approve  []string
		decline  []string
		want     Classification
	}{
		{
			name:     "all keys present",
			snapshot: keys,
			want:     ClassPresent,
		},
		{
			name:     "present wins over declined",
			snapshot: keys,
			decline:  keys,
			want:     ClassPresent,
		},
		{
			name:    "all approved",
			approve: keys,
			want:    ClassApprovedOrPresent,
		},
		{
			name:     "mixed approved and present",
			snapshot: keys[:1],
			approve:  keys[1:],
			want:     ClassApprovedOrPresent,
		},
		{
			name:     "mixed declined and present",
			snapshot: keys[:1],
			decline:  keys[1:],
			want:     ClassUnapprovedOrPresent,
		},
		{
			name:    "all declined and not yet due",
			decline: keys,
			want:    ClassAwaitingRetry,
		},
		{
			name: "never seen",
			want: ClassNeedsReview,
		},
		{
			name:     "partial snapshot with unknown keys",
			snapshot: keys[:1],
			want:     ClassNeedsReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, &stxtest.MockSource{}, &stxtest.MockTarget{}, stubMatcher{}, &stxtest.ScriptedDecider{})

			snap := make(Snapshot)
			for _, key := range tt.snapshot {
				snap.Add(key)
			}
			for _, key := range tt.approve {
				if err := engine.store.SetApproved(key); err != nil {
					t.Fatal(err)
				}
			}
			for _, key := range tt.decline {
				if err := engine.store.SetUnapproved(key); err != nil {
					t.Fatal(err)
				}
			}

			got, err := engine.classifyGroup(group, snap)
			if err != nil {
				t.Fatalf("classifyGroup() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("classifyGroup() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyDeclinedGroupDueForRetry(t *testing.T) {
	engine := newTestEngine(t, &stxtest.MockSource{}, &stxtest.MockTarget{}, stubMatcher{}, &stxtest.ScriptedDecider{})

	group := models.ArtistGroup{
		Artist: "Band",
		Tracks: []models.Track{{Title: "Alpha", Artist: "Band", Album: "First"}},
	}

	// Insert the rejection with a clock far in the past so next_retry has
	// long since arrived.
	past := time.Now().Add(-30 * 24 * time.Hour)
	engine.store.SetClock(func() time.Time { return past })
	for _, key := range group.Keys(shared.TrackKey) {
		if err := engine.store.SetUnapproved(key); err != nil {
			t.Fatal(err)
		}
	}
	engine.store.SetClock(nil)

	got, err := engine.classifyGroup(group, make(Snapshot))
	if err != nil {
		t.Fatalf("classifyGroup() error = %v", err)
	}
	if got != ClassNeedsReview {
		t.Errorf("classifyGroup() = %v, want review once the retry time arrives", got)
	}
}

func TestSnapshot(t *testing.T) {
	target := &stxtest.MockTarget{
		Favorites: []models.Track{
			{Title: "Alpha", Artist: "Band"},
			{Title: "  ALPHA ", Artist: "band"}, // same key after normalization
			{Title: "Beta", Artist: "Band"},
		},
	}
	engine := newTestEngine(t, &stxtest.MockSource{}, target, stubMatcher{}, &stxtest.ScriptedDecider{})

	snap, err := engine.buildSnapshot(context.Background())
	if err != nil {
		t.Fatalf("buildSnapshot() error = %v", err)
	}
	if len(snap) != 2 {
		t.Errorf("snapshot size = %d, want 2", len(snap))
	}
	if !snap.Contains(shared.TrackKey("alpha", "Band")) {
		t.Error("normalized key missing from snapshot")
	}
}
