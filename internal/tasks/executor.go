package tasks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/shared"
)

// albumFavoriteThreshold is the minimum number of saved tracks from one
// album that triggers favoriting the whole album.
const albumFavoriteThreshold = 3

// favoriteGroup dispatches one favorite call per matched identifier
// concurrently and waits for every call to finish. The caller must not
// touch the review store or the snapshot until this returns: the group
// state update is only valid once all calls have joined.
func (e *Engine) favoriteGroup(ctx context.Context, matched map[string]string) (favorited, failed int) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	for key, id := range matched {
		wg.Add(1)
		go func(key, id string) {
			defer wg.Done()
			err := e.target.AddTrackToFavorites(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.Warn("failed to favorite track", "key", key, "id", id, "error", err)
				failed++
				return
			}
			favorited++
		}(key, id)
	}

	wg.Wait()
	return favorited, failed
}

// autoFavoriteAlbums favorites every album with at least three saved
// tracks in the group. Failures are isolated per album: a search miss or
// an error appends a not-found record and the remaining albums still run.
// Only a failure to write the log itself aborts.
func (e *Engine) autoFavoriteAlbums(ctx context.Context, progress chan<- ProgressUpdate, group models.ArtistGroup) (favorited, missed int, err error) {
	byAlbum := make(map[string][]models.Track)
	displayName := make(map[string]string)
	for _, t := range group.Tracks {
		key := shared.Normalize(t.Album)
		if key == "" {
			continue
		}
		if _, ok := displayName[key]; !ok {
			displayName[key] = t.Album
		}
		byAlbum[key] = append(byAlbum[key], t)
	}

	albumKeys := make([]string, 0, len(byAlbum))
	for key := range byAlbum {
		albumKeys = append(albumKeys, key)
	}
	sort.Strings(albumKeys)

	for _, key := range albumKeys {
		tracks := byAlbum[key]
		if len(tracks) < albumFavoriteThreshold {
			continue
		}
		album := displayName[key]

		e.sendProgress(progress, favoriteAlbumUpdate(album, len(tracks)))

		added, ferr := e.favoriteAlbumByName(ctx, album, group.Artist)
		switch {
		case ferr != nil:
			e.logger.Warn("failed to favorite album", "album", album, "artist", group.Artist, "error", ferr)
			missed++
			record := models.NotFoundRecord{Artist: group.Artist, Album: album, Note: ferr.Error()}
			if aerr := e.notFound.Append(record); aerr != nil {
				return favorited, missed, aerr
			}
		case !added:
			e.logger.Warn("no match for album", "album", album, "artist", group.Artist)
			missed++
			record := models.NotFoundRecord{Artist: group.Artist, Album: album}
			if aerr := e.notFound.Append(record); aerr != nil {
				return favorited, missed, aerr
			}
		default:
			favorited++
		}
	}

	return favorited, missed, nil
}

// favoriteAlbumByName searches the target for the album name and favorites
// the first result whose artist matches after conjunction canonicalization.
// Returns false when no candidate matches.
func (e *Engine) favoriteAlbumByName(ctx context.Context, album, artist string) (bool, error) {
	results, err := e.target.Search(ctx, album)
	if err != nil {
		return false, err
	}

	want := shared.NormalizeArtistName(artist)
	for _, cand := range results.Albums {
		var candArtist string
		if len(cand.Artists) > 0 {
			candArtist = cand.Artists[0]
		}
		if shared.NormalizeArtistName(candArtist) != want {
			continue
		}
		if err := e.target.AddAlbumToFavorites(ctx, cand.ID); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// favoriteWithRetry favorites one track, retrying only rate-limit errors
// with a doubling backoff. Any other error fails immediately; exhausting
// the attempts returns the last rate-limit error.
func (e *Engine) favoriteWithRetry(ctx context.Context, trackID string) error {
	delay := e.retryBase
	var lastErr error

	for attempt := 0; attempt < e.opts.RetryAttempts; attempt++ {
		lastErr = e.target.AddTrackToFavorites(ctx, trackID)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, shared.ErrRateLimited) {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return lastErr
}
