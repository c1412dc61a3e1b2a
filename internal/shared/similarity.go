package shared

// Similarity returns a normalized similarity ratio in [0.0, 1.0] between two
// strings, computed as 2*LCS(a,b) / (len(a)+len(b)) over runes, where LCS is
// the length of the longest common subsequence.
//
// Identical strings score 1.0, disjoint strings 0.0. Case is significant;
// callers compare normalized text.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	// Single-row LCS table; prev holds dp[i-1][j-1].
	row := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		prev := 0
		for j := 1; j <= len(rb); j++ {
			cur := row[j]
			if ra[i-1] == rb[j-1] {
				row[j] = prev + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			prev = cur
		}
	}

	lcs := row[len(rb)]
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// MatchScore scores a search candidate against a wanted album and artist as
// the average of the two similarity ratios. Both sides should already be
// normalized by the caller.
func MatchScore(wantAlbum, wantArtist, gotAlbum, gotArtist string) float64 {
	return (Similarity(wantAlbum, gotAlbum) + Similarity(wantArtist, gotArtist)) / 2.0
}
