package journal_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"voicereel/internal/journal"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := store.Record(ctx, journal.Run{
		RunID:           "run-1",
		CharacterID:     "char_4202_haruka",
		Profile:         "arknights",
		Status:          journal.StatusCompleted,
		OutputPath:      "/out/char_4202_haruka.mp4",
		EncodePath:      "hardware",
		Segments:        42,
		Skipped:         2,
		DurationSeconds: 321.5,
		SizeBytes:       5 * 1024 * 1024,
		Elapsed:         90 * time.Second,
		FinishedAt:      base,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if !first.StartedAt.Equal(base.Add(-90 * time.Second)) {
		t.Fatalf("expected derived start time, got %s", first.StartedAt)
	}

	if _, err := store.Record(ctx, journal.Run{
		RunID:        "run-2",
		CharacterID:  "chr_0003_endmin",
		Status:       journal.StatusFailed,
		ErrorMessage: "encode failed",
		FinishedAt:   base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	runs, err := store.List(ctx, journal.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].CharacterID != "chr_0003_endmin" || runs[0].Status != journal.StatusFailed {
		t.Fatalf("expected newest run first, got %+v", runs[0])
	}
	got := runs[1]
	if got.Segments != 42 || got.Skipped != 2 || got.EncodePath != "hardware" || got.Elapsed != 90*time.Second {
		t.Fatalf("unexpected round trip: %+v", got)
	}
	if got.SizeMB() != 5 {
		t.Fatalf("unexpected size: %v", got.SizeMB())
	}
	if !got.FinishedAt.Equal(base) {
		t.Fatalf("unexpected finish time: %s", got.FinishedAt)
	}

	filtered, err := store.List(ctx, journal.ListOptions{CharacterID: "char_4202_haruka", Limit: 5})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].RunID != "run-1" {
		t.Fatalf("unexpected filtered runs: %+v", filtered)
	}

	last, err := store.LastByCharacter(ctx)
	if err != nil {
		t.Fatalf("LastByCharacter: %v", err)
	}
	if len(last) != 2 || last["chr_0003_endmin"].ErrorMessage != "encode failed" {
		t.Fatalf("unexpected last runs: %+v", last)
	}
}

func TestRecordValidatesInput(t *testing.T) {
	store := openStore(t)
	if _, err := store.Record(context.Background(), journal.Run{Status: journal.StatusEmpty}); err == nil {
		t.Fatal("expected error without character id")
	}
	if _, err := store.Record(context.Background(), journal.Run{CharacterID: "a"}); err == nil {
		t.Fatal("expected error without status")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update version: %v", err)
	}
	_ = db.Close()

	if _, err := journal.Open(path); !errors.Is(err, journal.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Record(context.Background(), journal.Run{CharacterID: "a", Status: journal.StatusEmpty}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	reopened, err := journal.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.List(context.Background(), journal.ListOptions{})
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected persisted run, got %v (%v)", runs, err)
	}
}
