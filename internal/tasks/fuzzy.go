package tasks

import (
	"context"
	"fmt"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/shared"
)

// Fuzzy runs a resolver pass over the album not-found log.
//
// Each record is retried with a single free-text search; every album
// candidate is scored as the mean of two similarity ratios (album name
// against candidate name, artist against joined candidate artists). The
// best candidate at or above the threshold is surfaced for a manual
// confirmation before favoriting. The log is then rewritten wholesale
// with exactly the unresolved records, so re-running on a stable library
// reproduces the same residual.
func (e *Engine) Fuzzy(ctx context.Context, progress chan<- ProgressUpdate) (*FuzzyReport, error) {
	if e.target == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	records, err := e.notFound.Read()
	if err != nil {
		return nil, err
	}

	report := &FuzzyReport{Records: len(records)}
	var residual []models.NotFoundRecord

	for i, record := range records {
		e.sendProgress(progress, resolveAlbumUpdate(i+1, len(records), record.Artist, record.Album))

		resolved, err := e.resolveRecord(ctx, record, report)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			e.logger.Warn("failed to resolve album", "album", record.Album, "artist", record.Artist, "error", err)
			report.Failed++
			resolved = false
		}
		if !resolved {
			residual = append(residual, record)
		}
	}

	report.Residual = len(residual)
	if err := e.notFound.Rewrite(residual); err != nil {
		return report, err
	}
	return report, nil
}

// resolveRecord attempts one record: search, score, confirm, favorite.
// Returns true only when a candidate was confirmed and favorited.
func (e *Engine) resolveRecord(ctx context.Context, record models.NotFoundRecord, report *FuzzyReport) (bool, error) {
	results, err := e.target.Search(ctx, record.Album+" "+record.Artist)
	if err != nil {
		return false, err
	}

	var best *models.Album
	bestScore := 0.0
	for i, cand := range results.Albums {
		score := shared.MatchScore(
			shared.Normalize(record.Album), shared.Normalize(record.Artist),
			shared.Normalize(cand.Name), shared.Normalize(cand.JoinedArtists()),
		)
		if score > bestScore {
			bestScore = score
			best = &results.Albums[i]
		}
	}

	if best == nil || bestScore < e.opts.FuzzyThreshold {
		e.logger.Info("no good match", "album", record.Album, "artist", record.Artist, "best_score", bestScore)
		report.BelowThreshold++
		return false, nil
	}

	prompt := fmt.Sprintf(
		"Match for %s — %s:\n  %s by %s (score %.2f)\nFavorite this album?",
		record.Artist, record.Album, best.Name, best.JoinedArtists(), bestScore,
	)
	approved, err := e.decider.Confirm(prompt)
	if err != nil {
		return false, err
	}
	if !approved {
		report.Declined++
		return false, nil
	}

	if err := e.target.AddAlbumToFavorites(ctx, best.ID); err != nil {
		return false, err
	}
	report.Resolved++
	return true, nil
}
