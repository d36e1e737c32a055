package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpenAppliesMigrations(t *testing.T) {
	c := openTestCatalog(t)
	var version string
	err := c.write.QueryRow("SELECT version FROM schema_version WHERE version = ?", currentSchemaVersion).Scan(&version)
	if err != nil {
		t.Fatalf("expected migration recorded: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	c1, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	c1.Close()

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("re-opening an existing store must succeed: %v", err)
	}
	defer c2.Close()
}

func TestScanRunLifecycle(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	running, err := c.RunningRunExists(ctx)
	if err != nil || running {
		t.Fatalf("expected no running run initially: %v %v", running, err)
	}

	run, err := c.CreateScanRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	running, err = c.RunningRunExists(ctx)
	if err != nil || !running {
		t.Fatalf("expected a running run: %v %v", running, err)
	}

	run.Processed = 10
	run.New = 10
	if err := c.FinalizeScanRun(ctx, run, RunCompleted); err != nil {
		t.Fatal(err)
	}

	running, err = c.RunningRunExists(ctx)
	if err != nil || running {
		t.Fatalf("expected no running run after finalize: %v %v", running, err)
	}
}

func TestUpsertAlbumPreservesFirstSeen(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	run, err := c.CreateScanRun(ctx)
	if err != nil {
		t.Fatal(err)
	}

	albumID := uuid.New()
	a := AlbumRow{
		ID: albumID, FolderPath: "Vacation 2020", Status: StatusPresent,
		FirstSeen: run.StartTimestamp, LastSeen: run.StartTimestamp, ScanRunID: run.ID,
	}
	if err := c.UpsertAlbum(ctx, a); err != nil {
		t.Fatal(err)
	}
	// Re-run with a later LastSeen; FirstSeen must not move.
	a.LastSeen = run.StartTimestamp.AddDate(0, 0, 1)
	if err := c.UpsertAlbum(ctx, a); err != nil {
		t.Fatal(err)
	}

	var firstSeen string
	if err := c.write.QueryRow("SELECT first_seen_timestamp FROM albums WHERE id = ?", albumID.String()).Scan(&firstSeen); err != nil {
		t.Fatal(err)
	}
	want := run.StartTimestamp.Format("2006-01-02T15:04:05.999999999Z07:00")
	if firstSeen != want {
		t.Errorf("first_seen_timestamp = %q, want %q (must not move on re-upsert)", firstSeen, want)
	}
}

func TestLookupMediaItemMissing(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	got, err := c.LookupMediaItem(ctx, "Album1/IMG_1234.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil for unseen path, got %+v", got)
	}
}

func TestUpsertPersonIsIdempotentAndTagsReplace(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	mediaID := uuid.New()

	tx, err := c.write.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	aliceID, err := UpsertPerson(ctx, tx, "Alice")
	if err != nil {
		t.Fatal(err)
	}
	aliceAgainID, err := UpsertPerson(ctx, tx, "Alice")
	if err != nil {
		t.Fatal(err)
	}
	if aliceID != aliceAgainID {
		t.Errorf("UpsertPerson should return the same id for the same name, got %s and %s", aliceID, aliceAgainID)
	}
	bobID, err := UpsertPerson(ctx, tx, "Bob")
	if err != nil {
		t.Fatal(err)
	}
	if err := ReplaceMediaPeopleTags(ctx, tx, mediaID, []uuid.UUID{aliceID, bobID}); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := c.write.QueryRow("SELECT COUNT(*) FROM people_tags WHERE media_item_id = ?", mediaID.String()).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 people_tags rows, got %d", count)
	}

	// Re-tagging with a shorter list must remove the stale tag.
	tx2, err := c.write.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := ReplaceMediaPeopleTags(ctx, tx2, mediaID, []uuid.UUID{aliceID}); err != nil {
		t.Fatal(err)
	}
	if err := tx2.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := c.write.QueryRow("SELECT COUNT(*) FROM people_tags WHERE media_item_id = ?", mediaID.String()).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 people_tags row after replace, got %d", count)
	}
}

func TestRecordAndSummarizeErrors(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	run, err := c.CreateScanRun(ctx)
	if err != nil {
		t.Fatal(err)
	}

	for _, cat := range []string{"corrupted", "corrupted", "io_error"} {
		err := c.RecordError(ctx, ProcessingErrorRow{
			ScanRunID: run.ID, RelativePath: "a.jpg", ErrorType: "media_file",
			Category: cat, Message: "boom", Timestamp: run.StartTimestamp,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	summary, err := c.SummarizeErrors(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 categories, got %+v", summary)
	}
	if summary[0].Category != "corrupted" || summary[0].Count != 2 {
		t.Errorf("expected corrupted=2 to sort first, got %+v", summary)
	}
}
