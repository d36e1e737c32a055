package scanner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bleemesser/gpcat/internal/catalog"
)

func openWriterTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// A recoverable per-file error must still leave a status=error row in
// media_items alongside its processing_errors row — the invariant a
// missing media_items row for an errored file would violate.
func TestApplyResultErrorRecordsStatusErrorMediaItem(t *testing.T) {
	c := openWriterTestCatalog(t)
	ctx := context.Background()
	run, err := c.CreateScanRun(ctx)
	if err != nil {
		t.Fatal(err)
	}

	w := &writer{cat: c, run: run, batchSize: 10}
	res := Result{
		Kind: ResultError,
		ItemErr: ItemErrorRecord{
			ItemID:       uuid.New(),
			RelativePath: "Album/broken.jpg",
			AlbumID:      uuid.New(),
			ErrorType:    "media_file",
			Category:     "io_error",
			Message:      "boom",
			Timestamp:    time.Now().UTC(),
		},
	}

	if err := w.tryCommit(ctx, []Result{res}); err != nil {
		t.Fatal(err)
	}

	var status string
	err = c.WriteConn().QueryRow("SELECT status FROM media_items WHERE relative_path = ?", "Album/broken.jpg").Scan(&status)
	if err != nil {
		t.Fatalf("expected a media_items row for the errored file: %v", err)
	}
	if catalog.ItemStatus(status) != catalog.StatusError {
		t.Errorf("status = %q, want error", status)
	}

	var errCount int
	if err := c.WriteConn().QueryRow("SELECT COUNT(*) FROM processing_errors WHERE relative_path = ?", "Album/broken.jpg").Scan(&errCount); err != nil {
		t.Fatal(err)
	}
	if errCount != 1 {
		t.Errorf("expected exactly 1 processing_errors row, got %d", errCount)
	}
}

// A second error on a file that already has a successfully-cataloged row
// must flip its status to error without discarding prior fingerprint
// data outside the columns the error path legitimately touches.
func TestApplyResultErrorOnExistingItemPreservesPriorFingerprint(t *testing.T) {
	c := openWriterTestCatalog(t)
	ctx := context.Background()
	run, err := c.CreateScanRun(ctx)
	if err != nil {
		t.Fatal(err)
	}

	id := uuid.New()
	albumID := uuid.New()
	now := time.Now().UTC()
	_, err = c.WriteConn().ExecContext(ctx, `INSERT INTO media_items
		(id, relative_path, album_id, file_size, crc32, content_fingerprint,
		first_seen_timestamp, last_seen_timestamp, scan_run_id, status)
		VALUES (?, ?, ?, 123, 'deadbeef', 'abc123', ?, ?, ?, ?)`,
		id.String(), "Album/sometimes-broken.jpg", albumID.String(),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano), run.ID.String(), string(catalog.StatusPresent))
	if err != nil {
		t.Fatal(err)
	}

	w := &writer{cat: c, run: run, batchSize: 10}
	res := Result{
		Kind: ResultError,
		ItemErr: ItemErrorRecord{
			ItemID:       id,
			RelativePath: "Album/sometimes-broken.jpg",
			AlbumID:      albumID,
			ErrorType:    "media_file",
			Category:     "corrupted",
			Message:      "read failed",
			Timestamp:    now,
		},
	}
	if err := w.tryCommit(ctx, []Result{res}); err != nil {
		t.Fatal(err)
	}

	var status, crc32 string
	var fileSize int64
	err = c.WriteConn().QueryRow("SELECT status, crc32, file_size FROM media_items WHERE relative_path = ?", "Album/sometimes-broken.jpg").
		Scan(&status, &crc32, &fileSize)
	if err != nil {
		t.Fatal(err)
	}
	if catalog.ItemStatus(status) != catalog.StatusError {
		t.Errorf("status = %q, want error", status)
	}
	if crc32 != "deadbeef" || fileSize != 123 {
		t.Errorf("error path must not clobber prior fingerprint columns: crc32=%q file_size=%d", crc32, fileSize)
	}
}
