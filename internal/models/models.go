package models

import (
	"fmt"
	"strings"
	"time"
)

// Track represents a music track from either service.
type Track struct {
	ID       string // Service-side identifier
	Title    string
	Artist   string // First-listed artist only, by source convention
	Album    string
	AlbumID  string // Service-side album identifier, empty when unknown
	Duration int    // Duration in seconds
}

// SavedTrack represents a track saved in the user's source library.
type SavedTrack struct {
	AddedAt string
	Track   Track
}

// Album represents an album returned by a target-side search.
type Album struct {
	ID      string
	Name    string
	Artists []string
}

// JoinedArtists returns the album's artist names joined with ", ".
func (a Album) JoinedArtists() string {
	return strings.Join(a.Artists, ", ")
}

// Playlist represents a playlist from either service.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// PlaylistExport represents a playlist with all its tracks.
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []Track
}

// ReviewStatus is the persisted approval state for one track key.
type ReviewStatus string

const (
	StatusApproved   ReviewStatus = "approved"
	StatusUnapproved ReviewStatus = "unapproved"
	StatusNone       ReviewStatus = "none"
)

// ReviewRecord is one row of the review log.
//
// NextRetry is nil for approved records; unapproved records carry the next
// time the group becomes eligible for re-review.
type ReviewRecord struct {
	TrackKey   string
	Status     ReviewStatus
	InsertTime time.Time
	NextRetry  *time.Time
}

// notFoundSeparator joins artist and album in the not-found log.
const notFoundSeparator = " — "

// NotFoundRecord marks an album whose target-side search found no acceptable match.
//
// Serialized one per line as "artist — album"; a failed search or favorite
// call annotates the line with the error.
type NotFoundRecord struct {
	Artist string
	Album  string
	Note   string // Optional error annotation
}

// noteMarker prefixes error annotations so they survive a parse round-trip
// without colliding with parentheses in real album names.
const noteMarker = " [error: "

// String renders the record in its line-oriented log form.
func (r NotFoundRecord) String() string {
	line := r.Artist + notFoundSeparator + r.Album
	if r.Note != "" {
		line = fmt.Sprintf("%s%s%s]", line, noteMarker, r.Note)
	}
	return line
}

// ParseNotFoundRecord parses a single log line back into a record.
// Returns an error for lines missing the separator.
func ParseNotFoundRecord(line string) (NotFoundRecord, error) {
	line = strings.TrimSpace(line)
	artist, album, ok := strings.Cut(line, notFoundSeparator)
	if !ok {
		return NotFoundRecord{}, fmt.Errorf("malformed not-found record: %q", line)
	}

	record := NotFoundRecord{Artist: artist, Album: album}
	if idx := strings.LastIndex(album, noteMarker); idx >= 0 && strings.HasSuffix(album, "]") {
		record.Album = album[:idx]
		record.Note = album[idx+len(noteMarker) : len(album)-1]
	}
	return record, nil
}

// ArtistGroup is the per-run grouping of saved tracks by first-listed artist.
// Derived each run and never persisted.
type ArtistGroup struct {
	Artist string
	Tracks []Track
}

// Keys returns the identity key of every track in the group, computed by keyFn.
func (g ArtistGroup) Keys(keyFn func(name, artist string) string) []string {
	keys := make([]string, len(g.Tracks))
	for i, t := range g.Tracks {
		keys[i] = keyFn(t.Title, g.Artist)
	}
	return keys
}
