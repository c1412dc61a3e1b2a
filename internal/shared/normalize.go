package shared

import "strings"

// Normalize trims surrounding whitespace and lowercases text for catalog comparisons.
//
// Pure and idempotent. Punctuation, diacritics and featuring-artist ordering are
// deliberately left alone: two renditions of a name compare equal only when they
// already agree up to case and surrounding whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TrackKey builds the canonical identity key for a track or album: normalized
// name joined to the normalized artist name with a pipe.
//
// Key equality is the system's definition of "same catalog entity".
func TrackKey(name, artist string) string {
	return Normalize(name) + "|" + Normalize(artist)
}

// NormalizeArtistName canonicalizes the conjunction variants " and " and "&"
// before normalizing, so artist names returned by services with different
// conventions ("Simon & Garfunkel" vs "Simon and Garfunkel") compare equal.
//
// Only used when comparing artist names across the two services; Normalize is
// the comparison for everything else.
func NormalizeArtistName(name string) string {
	name = strings.ReplaceAll(name, " and ", " & ")
	name = strings.ReplaceAll(name, "&", " and ")
	return Normalize(name)
}
