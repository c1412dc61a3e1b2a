package repositories

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/stx-music/stx/internal/models"
)

// NotFoundLog persists album search misses as a plain-text file, one
// "artist — album" record per line.
//
// The mutation executor appends; the fuzzy resolver reads the whole file and
// rewrites it wholesale with the still-unresolved residue.
type NotFoundLog struct {
	path string
	mu   sync.Mutex
}

// NewNotFoundLog creates a log backed by the file at path. The file is
// created lazily on first append.
func NewNotFoundLog(path string) *NotFoundLog {
	return &NotFoundLog{path: path}
}

// Path returns the backing file path.
func (l *NotFoundLog) Path() string {
	return l.path
}

// Append adds one record to the end of the log.
func (l *NotFoundLog) Append(record models.NotFoundRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open not-found log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, record.String()); err != nil {
		return fmt.Errorf("failed to append not-found record: %w", err)
	}
	return nil
}

// Read parses every well-formed record in the log. A missing file is an
// empty log, not an error. Blank and malformed lines are skipped.
func (l *NotFoundLog) Read() ([]models.NotFoundRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open not-found log: %w", err)
	}
	defer f.Close()

	var records []models.NotFoundRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		record, err := models.ParseNotFoundRecord(line)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read not-found log: %w", err)
	}

	return records, nil
}

// Rewrite replaces the log contents with exactly the given records.
// The write goes through a temp file and rename so a crash mid-rewrite
// cannot truncate the log.
func (l *NotFoundLog) Rewrite(records []models.NotFoundRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tmp := l.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp log: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, record := range records {
		if _, err := fmt.Fprintln(w, record.String()); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("failed to write not-found record: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to flush not-found log: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close not-found log: %w", err)
	}

	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace not-found log: %w", err)
	}
	return nil
}
