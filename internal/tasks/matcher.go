package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/services"
	"github.com/stx-music/stx/internal/shared"
)

// Matcher maps source tracks to target-side track identifiers.
//
// The returned map is keyed by track key. Implementations may return
// partial mappings: unmatched tracks are simply absent, and callers must
// tolerate that.
type Matcher interface {
	Match(ctx context.Context, tracks []models.Track, artist string) (map[string]string, error)
}

// SearchMatcher resolves tracks through the target service's free-text
// search. Candidates are filtered to the requested artist after
// conjunction canonicalization; a candidate with the same normalized
// title wins over the first artist match.
type SearchMatcher struct {
	target services.TargetService
	logger *log.Logger
}

// NewSearchMatcher creates a matcher backed by the target's search endpoint.
func NewSearchMatcher(target services.TargetService, logger *log.Logger) *SearchMatcher {
	return &SearchMatcher{target: target, logger: logger}
}

// Match searches for each track individually. A failed search drops that
// track from the mapping and moves on; only the context ending aborts.
func (m *SearchMatcher) Match(ctx context.Context, tracks []models.Track, artist string) (map[string]string, error) {
	matched := make(map[string]string, len(tracks))
	wantArtist := shared.NormalizeArtistName(artist)

	for _, track := range tracks {
		if err := ctx.Err(); err != nil {
			return matched, err
		}

		results, err := m.target.Search(ctx, track.Title+" "+artist)
		if err != nil {
			m.logger.Warn("track search failed", "track", track.Title, "artist", artist, "error", err)
			continue
		}

		wantTitle := shared.Normalize(track.Title)
		var fallback string
		var found string
		for _, cand := range results.Tracks {
			if shared.NormalizeArtistName(cand.Artist) != wantArtist {
				continue
			}
			if shared.Normalize(cand.Title) == wantTitle {
				found = cand.ID
				break
			}
			if fallback == "" {
				fallback = cand.ID
			}
		}
		if found == "" {
			found = fallback
		}
		if found != "" {
			matched[shared.TrackKey(track.Title, artist)] = found
		}
	}

	return matched, nil
}
