package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/shared"
)

// GroupByArtist partitions saved tracks by first-listed artist, returning
// groups in alphabetical artist order. Items missing artist or album
// metadata are dropped; the skip is non-fatal.
func GroupByArtist(saved []models.SavedTrack) []models.ArtistGroup {
	byArtist := make(map[string][]models.Track)
	for _, item := range saved {
		track := item.Track
		if track.Artist == "" || track.Album == "" {
			continue
		}
		byArtist[track.Artist] = append(byArtist[track.Artist], track)
	}

	names := make([]string, 0, len(byArtist))
	for name := range byArtist {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]models.ArtistGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, models.ArtistGroup{Artist: name, Tracks: byArtist[name]})
	}
	return groups
}

// Snapshot is the run-scoped set of track keys already present in the
// target favorites. It is built once per run and mutated only by the
// orchestrator after a group's favorite calls have joined; staleness
// against the live library is accepted.
type Snapshot map[string]struct{}

// Contains reports whether the key is in the snapshot.
func (s Snapshot) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Add inserts a key into the snapshot.
func (s Snapshot) Add(key string) {
	s[key] = struct{}{}
}

// buildSnapshot materializes the target favorites as a key set with one
// full paginated read.
func (e *Engine) buildSnapshot(ctx context.Context) (Snapshot, error) {
	tracks, err := e.target.FavoriteTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch target favorites: %w", err)
	}

	snap := make(Snapshot, len(tracks))
	for _, t := range tracks {
		snap.Add(shared.TrackKey(t.Title, t.Artist))
	}
	return snap, nil
}

// Classification is the gate's verdict for one artist group.
type Classification int

const (
	// ClassPresent: every key is already in the snapshot.
	ClassPresent Classification = iota
	// ClassApprovedOrPresent: every key is in the snapshot or approved.
	ClassApprovedOrPresent
	// ClassUnapprovedOrPresent: a mix of snapshot-present and previously
	// declined keys.
	ClassUnapprovedOrPresent
	// ClassAwaitingRetry: every key was declined and none is due again yet.
	ClassAwaitingRetry
	// ClassNeedsReview: the group goes to interactive review.
	ClassNeedsReview
)

func (c Classification) String() string {
	switch c {
	case ClassPresent:
		return "present"
	case ClassApprovedOrPresent:
		return "approved"
	case ClassUnapprovedOrPresent:
		return "declined"
	case ClassAwaitingRetry:
		return "awaiting retry"
	case ClassNeedsReview:
		return "review"
	default:
		return ""
	}
}

// SkipsReview reports whether the verdict bypasses the interactive prompt.
func (c Classification) SkipsReview() bool {
	return c != ClassNeedsReview
}

// RunsAlbumHeuristic reports whether the verdict still triggers the album
// auto-favorite pass. Declined groups do not: the user already said no.
func (c Classification) RunsAlbumHeuristic() bool {
	return c == ClassPresent || c == ClassApprovedOrPresent
}

// classifyGroup applies the gate rules in their fixed order; the first
// matching rule wins. The ordering decides whether a previously approved
// artist whose tracks silently reappear in the source library gets
// re-prompted (it does not) versus whether a never-seen group gets
// prompted.
//
// A group whose keys are all unapproved with none in the snapshot is
// deliberately left to the retry rules rather than the declined rule, so
// a group whose next_retry has arrived reaches review again.
func (e *Engine) classifyGroup(group models.ArtistGroup, snap Snapshot) (Classification, error) {
	keys := group.Keys(shared.TrackKey)

	allPresent := true
	for _, key := range keys {
		if !snap.Contains(key) {
			allPresent = false
			break
		}
	}
	if allPresent {
		return ClassPresent, nil
	}

	statuses := make(map[string]models.ReviewStatus, len(keys))
	for _, key := range keys {
		status, err := e.store.GetStatus(key)
		if err != nil {
			return ClassNeedsReview, err
		}
		statuses[key] = status
	}

	allApprovedOrPresent := true
	for _, key := range keys {
		if !snap.Contains(key) && statuses[key] != models.StatusApproved {
			allApprovedOrPresent = false
			break
		}
	}
	if allApprovedOrPresent {
		return ClassApprovedOrPresent, nil
	}

	anyPresent := false
	for _, key := range keys {
		if snap.Contains(key) {
			anyPresent = true
			break
		}
	}

	allUnapprovedOrPresent := true
	for _, key := range keys {
		if !snap.Contains(key) && statuses[key] != models.StatusUnapproved {
			allUnapprovedOrPresent = false
			break
		}
	}
	if anyPresent && allUnapprovedOrPresent {
		return ClassUnapprovedOrPresent, nil
	}

	allUnapproved := true
	for _, key := range keys {
		if statuses[key] != models.StatusUnapproved {
			allUnapproved = false
			break
		}
	}
	if allUnapproved {
		for _, key := range keys {
			due, err := e.store.ShouldRetry(key)
			if err != nil {
				return ClassNeedsReview, err
			}
			if due {
				return ClassNeedsReview, nil
			}
		}
		return ClassAwaitingRetry, nil
	}

	return ClassNeedsReview, nil
}
