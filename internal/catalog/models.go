package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// RunStatus mirrors scan_runs.status.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// ItemStatus mirrors media_items.status and albums.status.
type ItemStatus string

const (
	StatusPresent      ItemStatus = "present"
	StatusMissing      ItemStatus = "missing"
	StatusError        ItemStatus = "error"
	StatusInconsistent ItemStatus = "inconsistent"
)

// ScanRun is the in-memory mirror of one scan_runs row, updated in place
// by the writer thread and flushed on FinalizeScanRun.
type ScanRun struct {
	ID                uuid.UUID
	StartTimestamp    time.Time
	EndTimestamp      time.Time
	Status            RunStatus
	TotalDiscovered   int64
	MediaDiscovered   int64
	SidecarDiscovered int64
	Processed         int64
	New               int64
	Unchanged         int64
	Changed           int64
	Missing           int64
	Error             int64
	Inconsistent      int64
	AlbumsTotal       int64
	BytesProcessed    int64
}

// CreateScanRun inserts a new running scan_runs row. Per §3's invariant,
// callers must ensure no other run is already "running" for this store
// before calling — the scanner orchestrator enforces that at startup.
func (c *Catalog) CreateScanRun(ctx context.Context) (*ScanRun, error) {
	run := &ScanRun{
		ID:             uuid.New(),
		StartTimestamp: time.Now().UTC(),
		Status:         RunRunning,
	}
	_, err := c.write.ExecContext(ctx,
		`INSERT INTO scan_runs (id, start_timestamp, status) VALUES (?, ?, ?)`,
		run.ID.String(), run.StartTimestamp.Format(time.RFC3339Nano), run.Status)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FinalizeScanRun atomically sets end_timestamp, status, and final
// counters, per §3's "a run transitioning out of running must set end
// and final counters atomically" invariant.
func (c *Catalog) FinalizeScanRun(ctx context.Context, run *ScanRun, status RunStatus) error {
	run.EndTimestamp = time.Now().UTC()
	run.Status = status
	_, err := c.write.ExecContext(ctx, `UPDATE scan_runs SET
		end_timestamp = ?, status = ?,
		total_discovered = ?, media_discovered = ?, sidecar_discovered = ?,
		processed = ?, new_count = ?, unchanged_count = ?, changed_count = ?,
		missing_count = ?, error_count = ?, inconsistent_count = ?,
		albums_total = ?, bytes_processed = ?
		WHERE id = ?`,
		run.EndTimestamp.Format(time.RFC3339Nano), run.Status,
		run.TotalDiscovered, run.MediaDiscovered, run.SidecarDiscovered,
		run.Processed, run.New, run.Unchanged, run.Changed,
		run.Missing, run.Error, run.Inconsistent,
		run.AlbumsTotal, run.BytesProcessed,
		run.ID.String())
	return err
}

// RunningRunExists reports whether a scan_runs row is currently "running",
// enforcing §3's "exactly one run may be in running at a time" invariant.
func (c *Catalog) RunningRunExists(ctx context.Context) (bool, error) {
	var count int
	err := c.write.QueryRowContext(ctx, `SELECT COUNT(*) FROM scan_runs WHERE status = ?`, RunRunning).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AlbumRow is the persisted form of a discovered album.
type AlbumRow struct {
	ID                uuid.UUID
	FolderPath        string
	Title             sql.NullString
	Description       sql.NullString
	CreationTimestamp sql.NullString
	AccessLevel       sql.NullString
	Status            ItemStatus
	FirstSeen         time.Time
	LastSeen          time.Time
	ScanRunID         uuid.UUID
}

// UpsertAlbum inserts a new album or updates an existing one's mutable
// fields, preserving first_seen_timestamp across re-runs.
func (c *Catalog) UpsertAlbum(ctx context.Context, a AlbumRow) error {
	var existingFirstSeen string
	err := c.write.QueryRowContext(ctx, `SELECT first_seen_timestamp FROM albums WHERE id = ?`, a.ID.String()).Scan(&existingFirstSeen)
	switch {
	case err == sql.ErrNoRows:
		_, err = c.write.ExecContext(ctx, `INSERT INTO albums
			(id, album_folder_path, title, description, creation_timestamp, access_level, status, first_seen_timestamp, last_seen_timestamp, scan_run_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID.String(), a.FolderPath, a.Title, a.Description, a.CreationTimestamp, a.AccessLevel,
			a.Status, a.FirstSeen.Format(time.RFC3339Nano), a.LastSeen.Format(time.RFC3339Nano), a.ScanRunID.String())
		return err
	case err != nil:
		return err
	default:
		_, err = c.write.ExecContext(ctx, `UPDATE albums SET
			title = ?, description = ?, creation_timestamp = ?, access_level = ?,
			status = ?, last_seen_timestamp = ?, scan_run_id = ?
			WHERE id = ?`,
			a.Title, a.Description, a.CreationTimestamp, a.AccessLevel,
			a.Status, a.LastSeen.Format(time.RFC3339Nano), a.ScanRunID.String(), a.ID.String())
		return err
	}
}

// MarkAlbumsMissing sets status = missing for every album not touched by
// the given scan run, per §3's reconciler lifecycle rule.
func (c *Catalog) MarkAlbumsMissing(ctx context.Context, currentRunID uuid.UUID) (int64, error) {
	res, err := c.write.ExecContext(ctx, `UPDATE albums SET status = ? WHERE scan_run_id != ? AND status != ?`,
		StatusMissing, currentRunID.String(), StatusMissing)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MediaItemRow is the persisted form of one media_items row, holding
// both the raw fingerprints and the flattened EXIF/JSON fields §3
// requires.
type MediaItemRow struct {
	ID                   uuid.UUID
	RelativePath         string
	AlbumID              uuid.UUID
	MIMEType             string
	FileSize             int64
	CRC32                string
	ContentFingerprint   string
	SidecarFingerprint   sql.NullString
	Width, Height        sql.NullInt64
	DurationSeconds      sql.NullFloat64
	FrameRate            sql.NullFloat64
	CaptureTimestamp     sql.NullString
	Status               ItemStatus
	OriginalMediaItemID  sql.NullString
	LivePhotoPairID      sql.NullString

	ExifMake, ExifModel, ExifLensModel    sql.NullString
	ExifFocalLengthMM, ExifAperture       sql.NullFloat64
	ExifExposureTimeSeconds               sql.NullFloat64
	ExifISO, ExifOrientation              sql.NullInt64
	ExifGPSLatitude, ExifGPSLongitude     sql.NullFloat64

	JSONTitle, JSONDescription, JSONPhotoTakenTime sql.NullString
	JSONLatitude, JSONLongitude, JSONAltitude      sql.NullFloat64
	JSONArchived, JSONTrashed, JSONFavorited        bool
	JSONPartnerShared                               bool

	FirstSeen time.Time
	LastSeen  time.Time
	ScanRunID uuid.UUID
}

// ExistingFingerprint is the minimal projection read before processing a
// file, so the scanner can decide new/unchanged/changed without
// re-reading every flattened column.
type ExistingFingerprint struct {
	ID                 uuid.UUID
	FileSize           int64
	CRC32              string
	ContentFingerprint string
	FirstSeen          time.Time
}

// LookupMediaItem fetches the prior row for relativePath, if any, so the
// scanner can compare file size and content fingerprint before
// re-processing the file — the core of resumability.
func (c *Catalog) LookupMediaItem(ctx context.Context, relativePath string) (*ExistingFingerprint, error) {
	var ef ExistingFingerprint
	var idStr, firstSeenStr string
	err := c.readPool.QueryRowContext(ctx,
		`SELECT id, file_size, crc32, content_fingerprint, first_seen_timestamp FROM media_items WHERE relative_path = ?`,
		relativePath).Scan(&idStr, &ef.FileSize, &ef.CRC32, &ef.ContentFingerprint, &firstSeenStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ef.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	ef.FirstSeen, err = time.Parse(time.RFC3339Nano, firstSeenStr)
	if err != nil {
		return nil, err
	}
	return &ef, nil
}

// UpsertMediaItem writes one media_items row. On a relative_path
// conflict the existing row's id and first_seen_timestamp are kept.
func (c *Catalog) UpsertMediaItem(ctx context.Context, m MediaItemRow) error {
	_, err := c.write.ExecContext(ctx, `INSERT INTO media_items (
		id, relative_path, album_id, mime_type, file_size, crc32, content_fingerprint, sidecar_fingerprint,
		width, height, duration_seconds, frame_rate, capture_timestamp,
		first_seen_timestamp, last_seen_timestamp, scan_run_id, status,
		original_media_item_id, live_photo_pair_id,
		exif_make, exif_model, exif_lens_model, exif_focal_length_mm, exif_aperture, exif_exposure_time_seconds,
		exif_iso, exif_orientation, exif_gps_latitude, exif_gps_longitude,
		json_title, json_description, json_photo_taken_time, json_latitude, json_longitude, json_altitude,
		json_archived, json_trashed, json_favorited, json_partner_shared
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(relative_path) DO UPDATE SET
		album_id = excluded.album_id, mime_type = excluded.mime_type, file_size = excluded.file_size,
		crc32 = excluded.crc32, content_fingerprint = excluded.content_fingerprint, sidecar_fingerprint = excluded.sidecar_fingerprint,
		width = excluded.width, height = excluded.height, duration_seconds = excluded.duration_seconds, frame_rate = excluded.frame_rate,
		capture_timestamp = excluded.capture_timestamp, last_seen_timestamp = excluded.last_seen_timestamp,
		scan_run_id = excluded.scan_run_id, status = excluded.status,
		original_media_item_id = excluded.original_media_item_id, live_photo_pair_id = excluded.live_photo_pair_id,
		exif_make = excluded.exif_make, exif_model = excluded.exif_model, exif_lens_model = excluded.exif_lens_model,
		exif_focal_length_mm = excluded.exif_focal_length_mm, exif_aperture = excluded.exif_aperture,
		exif_exposure_time_seconds = excluded.exif_exposure_time_seconds, exif_iso = excluded.exif_iso,
		exif_orientation = excluded.exif_orientation, exif_gps_latitude = excluded.exif_gps_latitude, exif_gps_longitude = excluded.exif_gps_longitude,
		json_title = excluded.json_title, json_description = excluded.json_description, json_photo_taken_time = excluded.json_photo_taken_time,
		json_latitude = excluded.json_latitude, json_longitude = excluded.json_longitude, json_altitude = excluded.json_altitude,
		json_archived = excluded.json_archived, json_trashed = excluded.json_trashed, json_favorited = excluded.json_favorited,
		json_partner_shared = excluded.json_partner_shared`,
		m.ID.String(), m.RelativePath, m.AlbumID.String(), m.MIMEType, m.FileSize, m.CRC32, m.ContentFingerprint, m.SidecarFingerprint,
		m.Width, m.Height, m.DurationSeconds, m.FrameRate, m.CaptureTimestamp,
		m.FirstSeen.Format(time.RFC3339Nano), m.LastSeen.Format(time.RFC3339Nano), m.ScanRunID.String(), m.Status,
		m.OriginalMediaItemID, m.LivePhotoPairID,
		m.ExifMake, m.ExifModel, m.ExifLensModel, m.ExifFocalLengthMM, m.ExifAperture, m.ExifExposureTimeSeconds,
		m.ExifISO, m.ExifOrientation, m.ExifGPSLatitude, m.ExifGPSLongitude,
		m.JSONTitle, m.JSONDescription, m.JSONPhotoTakenTime, m.JSONLatitude, m.JSONLongitude, m.JSONAltitude,
		m.JSONArchived, m.JSONTrashed, m.JSONFavorited, m.JSONPartnerShared,
	)
	return err
}

// MarkMediaMissing sets status = missing for every media item not seen
// by currentRunID, per §4.7's missing sweep.
func (c *Catalog) MarkMediaMissing(ctx context.Context, currentRunID uuid.UUID) (int64, error) {
	res, err := c.write.ExecContext(ctx, `UPDATE media_items SET status = ? WHERE scan_run_id != ? AND status != ?`,
		StatusMissing, currentRunID.String(), StatusMissing)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpsertPerson returns the id of the people row for name, inserting one
// with a fresh UUID if it doesn't already exist. Runs inside the
// caller's transaction so a batch of tags commits atomically with its
// media item.
func UpsertPerson(ctx context.Context, tx *sql.Tx, name string) (uuid.UUID, error) {
	var idStr string
	err := tx.QueryRowContext(ctx, `SELECT id FROM people WHERE person_name = ?`, name).Scan(&idStr)
	if err == nil {
		return uuid.Parse(idStr)
	}
	if err != sql.ErrNoRows {
		return uuid.UUID{}, err
	}
	id := uuid.New()
	_, err = tx.ExecContext(ctx, `INSERT INTO people (id, person_name) VALUES (?, ?)`, id.String(), name)
	if err != nil {
		return uuid.UUID{}, err
	}
	return id, nil
}

// ReplaceMediaPeopleTags replaces every people_tags row for mediaItemID
// with the given ordered list of person ids, matching the Takeout
// sidecar's people[] array order.
func ReplaceMediaPeopleTags(ctx context.Context, tx *sql.Tx, mediaItemID uuid.UUID, personIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM people_tags WHERE media_item_id = ?`, mediaItemID.String()); err != nil {
		return err
	}
	for order, pid := range personIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO people_tags (media_item_id, person_id, tag_order) VALUES (?, ?, ?)`,
			mediaItemID.String(), pid.String(), order); err != nil {
			return err
		}
	}
	return nil
}

// ProcessingErrorRow is one append-only processing_errors entry.
type ProcessingErrorRow struct {
	ScanRunID    uuid.UUID
	RelativePath string
	ErrorType    string
	Category     string
	Message      string
	Timestamp    time.Time
}

// RecordError appends a processing_errors row. This table is
// append-only, per §3.
func (c *Catalog) RecordError(ctx context.Context, e ProcessingErrorRow) error {
	_, err := c.write.ExecContext(ctx,
		`INSERT INTO processing_errors (scan_run_id, relative_path, error_type, error_category, message, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ScanRunID.String(), e.RelativePath, e.ErrorType, e.Category, e.Message, e.Timestamp.Format(time.RFC3339Nano))
	return err
}

// ErrorSummary is one row of the §7 final-summary breakdown: error count
// grouped by category for a given run.
type ErrorSummary struct {
	Category string
	Count    int64
}

// SummarizeErrors groups processing_errors by category for one scan run,
// for the final summary the scanner always emits.
func (c *Catalog) SummarizeErrors(ctx context.Context, runID uuid.UUID) ([]ErrorSummary, error) {
	rows, err := c.readPool.QueryContext(ctx,
		`SELECT error_category, COUNT(*) FROM processing_errors WHERE scan_run_id = ? GROUP BY error_category ORDER BY COUNT(*) DESC`,
		runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ErrorSummary
	for rows.Next() {
		var s ErrorSummary
		if err := rows.Scan(&s.Category, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
