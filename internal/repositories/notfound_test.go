package repositories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stx-music/stx/internal/models"
)

func newTestLog(t *testing.T) *NotFoundLog {
	t.Helper()
	return NewNotFoundLog(filepath.Join(t.TempDir(), "albums_not_found.txt"))
}

func TestNotFoundLogMissingFileIsEmpty(t *testing.T) {
	log := newTestLog(t)

	records, err := log.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestNotFoundLogAppendRead(t *testing.T) {
	log := newTestLog(t)

	records := []models.NotFoundRecord{
		{Artist: "Band", Album: "First"},
		{Artist: "Other", Album: "Second", Note: "search failed"},
	}
	for _, r := range records {
		if err := log.Append(r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := log.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}
}

func TestNotFoundLogSkipsBlankAndMalformedLines(t *testing.T) {
	log := newTestLog(t)

	content := "Band — First\n\nnot a record\nOther — Second\n"
	if err := os.WriteFile(log.Path(), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := log.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(got), got)
	}
	if got[0].Album != "First" || got[1].Album != "Second" {
		t.Errorf("records = %+v", got)
	}
}

func TestNotFoundLogRewrite(t *testing.T) {
	log := newTestLog(t)

	for _, r := range []models.NotFoundRecord{
		{Artist: "Band", Album: "First"},
		{Artist: "Band", Album: "Second"},
		{Artist: "Band", Album: "Third"},
	} {
		if err := log.Append(r); err != nil {
			t.Fatal(err)
		}
	}

	// Keep only the unresolved residue.
	residue := []models.NotFoundRecord{{Artist: "Band", Album: "Second"}}
	if err := log.Rewrite(residue); err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	got, err := log.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 1 || got[0].Album != "Second" {
		t.Errorf("records after rewrite = %+v", got)
	}

	// No temp file left behind.
	if _, err := os.Stat(log.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file still present after rewrite")
	}
}

func TestNotFoundLogRewriteEmpty(t *testing.T) {
	log := newTestLog(t)

	if err := log.Append(models.NotFoundRecord{Artist: "Band", Album: "First"}); err != nil {
		t.Fatal(err)
	}
	if err := log.Rewrite(nil); err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	got, err := log.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want 0", len(got))
	}
}
