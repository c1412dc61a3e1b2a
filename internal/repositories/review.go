package repositories

import (
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/shared"
)

// firstRetryDelay schedules the first re-review of a rejected group.
const firstRetryDelay = 7 * 24 * time.Hour

// lockStripes bounds the per-key mutex table. Writes to distinct keys
// proceed in parallel; writes to the same key serialize.
const lockStripes = 64

// ReviewStore tracks each track key's review status and retry schedule in
// the review_log table.
//
// Every read-modify-write runs as one transaction under a per-key lock, so
// concurrent callers mutating the same key cannot interleave the existence
// check with the write. Storage failures wrap [shared.ErrStoreIO] and are
// fatal for the run: there is no safe way to proceed without a correct
// review status.
type ReviewStore struct {
	db    *sql.DB
	now   func() time.Time
	locks [lockStripes]sync.Mutex
}

// NewReviewStore creates a ReviewStore over an open database connection.
// The review_log table must already exist (see shared.RunMigrations).
func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db, now: time.Now}
}

// SetClock overrides the store's time source. Passing nil restores the
// wall clock. Used by tests to script retry schedules.
func (s *ReviewStore) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

func (s *ReviewStore) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &s.locks[h.Sum32()%lockStripes]
}

// SetApproved upserts the record as approved and clears any retry schedule.
// Idempotent: a second call yields the same final state.
func (s *ReviewStore) SetApproved(trackKey string) error {
	mu := s.lockFor(trackKey)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	query := `
		INSERT INTO review_log (track_key, status, insert_time, next_retry)
		VALUES (?, ?, ?, NULL)
		ON CONFLICT(track_key) DO UPDATE SET status = excluded.status, insert_time = excluded.insert_time, next_retry = NULL
	`
	if _, err := s.db.Exec(query, trackKey, models.StatusApproved, now); err != nil {
		return fmt.Errorf("%w: failed to approve %s: %v", shared.ErrStoreIO, trackKey, err)
	}
	return nil
}

// SetUnapproved upserts the record as unapproved and schedules the next retry.
//
// The first rejection schedules now + 7 days. Every subsequent rejection
// schedules now + 2×(now − previous insert_time): the backoff doubles the
// time elapsed since the last status write, not a fixed multiplier of the
// previous interval. Rapid repeated rejections therefore produce near-zero
// backoff while widely spaced ones compound. The formula is preserved
// literally for behavioral parity with the review history already on disk.
func (s *ReviewStore) SetUnapproved(trackKey string) error {
	mu := s.lockFor(trackKey)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrStoreIO, err)
	}
	defer tx.Rollback()

	now := s.now()

	var prevInsert time.Time
	err = tx.QueryRow("SELECT insert_time FROM review_log WHERE track_key = ?", trackKey).Scan(&prevInsert)
	switch {
	case err == sql.ErrNoRows:
		nextRetry := now.Add(firstRetryDelay)
		_, err = tx.Exec(
			"INSERT INTO review_log (track_key, status, insert_time, next_retry) VALUES (?, ?, ?, ?)",
			trackKey, models.StatusUnapproved, now, nextRetry,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to insert %s: %v", shared.ErrStoreIO, trackKey, err)
		}
	case err != nil:
		return fmt.Errorf("%w: failed to read %s: %v", shared.ErrStoreIO, trackKey, err)
	default:
		nextRetry := now.Add(2 * now.Sub(prevInsert))
		_, err = tx.Exec(
			"UPDATE review_log SET status = ?, insert_time = ?, next_retry = ? WHERE track_key = ?",
			models.StatusUnapproved, now, nextRetry, trackKey,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to update %s: %v", shared.ErrStoreIO, trackKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", shared.ErrStoreIO, err)
	}
	return nil
}

// GetStatus returns the review status for a key, or StatusNone when the key
// has never been reviewed.
func (s *ReviewStore) GetStatus(trackKey string) (models.ReviewStatus, error) {
	var status string
	err := s.db.QueryRow("SELECT status FROM review_log WHERE track_key = ?", trackKey).Scan(&status)
	if err == sql.ErrNoRows {
		return models.StatusNone, nil
	}
	if err != nil {
		return models.StatusNone, fmt.Errorf("%w: failed to read status for %s: %v", shared.ErrStoreIO, trackKey, err)
	}
	return models.ReviewStatus(status), nil
}

// ShouldRetry reports whether a record exists for the key and its retry time
// has arrived. Approved records (NULL next_retry) never retry.
func (s *ReviewStore) ShouldRetry(trackKey string) (bool, error) {
	var nextRetry sql.NullTime
	err := s.db.QueryRow("SELECT next_retry FROM review_log WHERE track_key = ?", trackKey).Scan(&nextRetry)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: failed to read retry for %s: %v", shared.ErrStoreIO, trackKey, err)
	}
	return nextRetry.Valid && !nextRetry.Time.After(s.now()), nil
}

// Get returns the full review record for a key, or nil when absent.
func (s *ReviewStore) Get(trackKey string) (*models.ReviewRecord, error) {
	var (
		status     string
		insertTime time.Time
		nextRetry  sql.NullTime
	)
	err := s.db.QueryRow(
		"SELECT status, insert_time, next_retry FROM review_log WHERE track_key = ?", trackKey,
	).Scan(&status, &insertTime, &nextRetry)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read record for %s: %v", shared.ErrStoreIO, trackKey, err)
	}

	record := &models.ReviewRecord{
		TrackKey:   trackKey,
		Status:     models.ReviewStatus(status),
		InsertTime: insertTime,
	}
	if nextRetry.Valid {
		record.NextRetry = &nextRetry.Time
	}
	return record, nil
}

// Count returns the number of records with the given status, or all records
// for StatusNone.
func (s *ReviewStore) Count(status models.ReviewStatus) (int, error) {
	var count int
	var err error
	if status == models.StatusNone {
		err = s.db.QueryRow("SELECT COUNT(*) FROM review_log").Scan(&count)
	} else {
		err = s.db.QueryRow("SELECT COUNT(*) FROM review_log WHERE status = ?", status).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count records: %v", shared.ErrStoreIO, err)
	}
	return count, nil
}

// Reset destroys every review record. Used for an explicit full cold start;
// nothing else ever deletes records.
func (s *ReviewStore) Reset() error {
	if _, err := s.db.Exec("DELETE FROM review_log"); err != nil {
		return fmt.Errorf("%w: failed to reset review log: %v", shared.ErrStoreIO, err)
	}
	return nil
}
