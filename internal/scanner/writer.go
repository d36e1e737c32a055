package scanner

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bleemesser/gpcat/internal/catalog"
	"github.com/bleemesser/gpcat/internal/catalogerr"
	"github.com/bleemesser/gpcat/internal/progress"
)

// writer is the single goroutine that owns the catalog's write
// connection. It drains resultsCh, batching up to batchSize records (or
// flushing on a short timeout), and commits each batch as one
// transaction, per §4.5.
type writer struct {
	cat       *catalog.Catalog
	run       *catalog.ScanRun
	batchSize int
	tracker   *progress.Tracker
	log       *logrus.Entry

	maxRetries int
}

const writerFlushInterval = 200 * time.Millisecond

// run_ drains resultsCh until it is closed, then returns. A fatal error
// (batch commit failure exceeding retries) is returned to the caller,
// which transitions the scan run to failed per §7.
func (w *writer) run_(ctx context.Context, resultsCh <-chan Result) error {
	batch := make([]Result, 0, w.batchSize)
	ticker := time.NewTicker(writerFlushInterval)
	defer ticker.Stop()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := w.commitBatch(ctx, batch)
		batch = batch[:0]
		return err
	}

	for {
		select {
		case res, ok := <-resultsCh:
			if !ok {
				return flush()
			}
			batch = append(batch, res)
			if len(batch) >= w.batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}
		case <-ctx.Done():
			// Drain whatever already arrived before giving up, honoring
			// "the writer never blocks on input, only on commits."
			for {
				select {
				case res, ok := <-resultsCh:
					if !ok {
						return flush()
					}
					batch = append(batch, res)
				default:
					return flush()
				}
			}
		}
	}
}

// commitBatch writes one transaction for the batch, retrying the whole
// batch with exponential backoff, then falling back to per-record
// retries before escalating to fatal, per §7's writer error policy.
func (w *writer) commitBatch(ctx context.Context, batch []Result) error {
	var lastErr error
	backoff := 50 * time.Millisecond
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}
		if err := w.tryCommit(ctx, batch); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	// Batch-level commit kept failing; retry records individually so a
	// single bad row doesn't sink an otherwise-healthy batch.
	var failed int
	for _, res := range batch {
		if err := w.tryCommit(ctx, []Result{res}); err != nil {
			failed++
			if w.log != nil {
				w.log.WithError(err).Error("writer: record failed after batch retry, dropping")
			}
		}
	}
	if failed == len(batch) && len(batch) > 0 {
		return catalogerr.NewFatal(catalogerr.StoreUnreachable, "writer: batch commit exhausted retries", lastErr)
	}
	return nil
}

func (w *writer) tryCommit(ctx context.Context, batch []Result) error {
	tx, err := w.cat.WriteConn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	for _, res := range batch {
		if err := w.applyResult(ctx, tx, res); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	for _, res := range batch {
		w.bumpCounters(res)
	}
	if w.tracker != nil {
		w.tracker.Add(int64(len(batch)))
	}
	return nil
}

func (w *writer) applyResult(ctx context.Context, tx *sql.Tx, res Result) error {
	switch res.Kind {
	case ResultMediaItem:
		if err := upsertMediaItemTx(ctx, tx, res.MediaItem, w.run.ID); err != nil {
			return err
		}
		return tagPeople(ctx, tx, res.MediaItem)
	case ResultUpdateOnly:
		_, err := tx.ExecContext(ctx, `UPDATE media_items SET scan_run_id = ?, last_seen_timestamp = ? WHERE id = ?`,
			w.run.ID.String(), res.UpdateOnly.LastSeen.Format(time.RFC3339Nano), res.UpdateOnly.ID.String())
		return err
	case ResultError:
		if err := upsertErrorMediaItemTx(ctx, tx, res.ItemErr, w.run.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO processing_errors (scan_run_id, relative_path, error_type, error_category, message, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)`,
			w.run.ID.String(), res.ItemErr.RelativePath, res.ItemErr.ErrorType, res.ItemErr.Category, res.ItemErr.Message,
			res.ItemErr.Timestamp.Format(time.RFC3339Nano))
		if w.tracker != nil {
			w.tracker.AddError()
		}
		return err
	}
	return nil
}

func (w *writer) bumpCounters(res Result) {
	w.run.Processed++
	switch res.Kind {
	case ResultMediaItem:
		if res.MediaItem.IsNew {
			w.run.New++
		} else {
			w.run.Changed++
		}
	case ResultUpdateOnly:
		w.run.Unchanged++
	case ResultError:
		w.run.Error++
	}
}

// upsertMediaItemTx mirrors catalog.UpsertMediaItem but runs inside the
// writer's own explicit transaction, since the writer — not the Catalog
// helper — is the sole transaction owner during a scan.
func upsertMediaItemTx(ctx context.Context, tx *sql.Tx, rec MediaItemRecord, runID interface{ String() string }) error {
	var captureTS sql.NullString
	if rec.HasCapture {
		captureTS = sql.NullString{String: rec.CaptureTimestamp.Format(time.RFC3339Nano), Valid: true}
	}
	var width, height sql.NullInt64
	if rec.HasDimensions {
		width = sql.NullInt64{Int64: int64(rec.Width), Valid: true}
		height = sql.NullInt64{Int64: int64(rec.Height), Valid: true}
	}
	var duration, frameRate sql.NullFloat64
	if rec.HasDuration {
		duration = sql.NullFloat64{Float64: rec.DurationSeconds, Valid: true}
	}
	if rec.HasFrameRate {
		frameRate = sql.NullFloat64{Float64: rec.FrameRate, Valid: true}
	}
	var sidecarFP sql.NullString
	if rec.HasSidecarFP {
		sidecarFP = sql.NullString{String: rec.SidecarFingerprint, Valid: true}
	}

	e := rec.Exif
	focalLength := nullFloat(e.FocalLengthMM, e.HasFocalLength)
	aperture := nullFloat(e.Aperture, e.HasAperture)
	exposure := nullFloat(e.ExposureTimeSeconds, e.HasExposureTime)
	iso := nullInt(e.ISO, e.HasISO)
	orientation := nullInt(e.Orientation, e.HasOrientation)
	gpsLat := nullFloat(e.Latitude, e.HasGPS)
	gpsLon := nullFloat(e.Longitude, e.HasGPS)

	j := rec.JSON
	photoTaken := sql.NullString{}
	if j.HasPhotoTakenTime {
		photoTaken = sql.NullString{String: j.PhotoTakenTime.Format(time.RFC3339Nano), Valid: true}
	}
	jsonLat := nullFloat(j.Latitude, j.HasGeoData)
	jsonLon := nullFloat(j.Longitude, j.HasGeoData)
	jsonAlt := nullFloat(j.Altitude, j.HasGeoData)

	_, err := tx.ExecContext(ctx, `INSERT INTO media_items (
		id, relative_path, album_id, mime_type, file_size, crc32, content_fingerprint, sidecar_fingerprint,
		width, height, duration_seconds, frame_rate, capture_timestamp,
		first_seen_timestamp, last_seen_timestamp, scan_run_id, status,
		original_media_item_id, live_photo_pair_id,
		exif_make, exif_model, exif_lens_model, exif_focal_length_mm, exif_aperture, exif_exposure_time_seconds,
		exif_iso, exif_orientation, exif_gps_latitude, exif_gps_longitude,
		json_title, json_description, json_photo_taken_time, json_latitude, json_longitude, json_altitude,
		json_archived, json_trashed, json_favorited, json_partner_shared
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(relative_path) DO UPDATE SET
		album_id = excluded.album_id, mime_type = excluded.mime_type, file_size = excluded.file_size,
		crc32 = excluded.crc32, content_fingerprint = excluded.content_fingerprint, sidecar_fingerprint = excluded.sidecar_fingerprint,
		width = excluded.width, height = excluded.height, duration_seconds = excluded.duration_seconds, frame_rate = excluded.frame_rate,
		capture_timestamp = excluded.capture_timestamp, last_seen_timestamp = excluded.last_seen_timestamp,
		scan_run_id = excluded.scan_run_id, status = excluded.status,
		exif_make = excluded.exif_make, exif_model = excluded.exif_model, exif_lens_model = excluded.exif_lens_model,
		exif_focal_length_mm = excluded.exif_focal_length_mm, exif_aperture = excluded.exif_aperture,
		exif_exposure_time_seconds = excluded.exif_exposure_time_seconds, exif_iso = excluded.exif_iso,
		exif_orientation = excluded.exif_orientation, exif_gps_latitude = excluded.exif_gps_latitude, exif_gps_longitude = excluded.exif_gps_longitude,
		json_title = excluded.json_title, json_description = excluded.json_description, json_photo_taken_time = excluded.json_photo_taken_time,
		json_latitude = excluded.json_latitude, json_longitude = excluded.json_longitude, json_altitude = excluded.json_altitude,
		json_archived = excluded.json_archived, json_trashed = excluded.json_trashed, json_favorited = excluded.json_favorited,
		json_partner_shared = excluded.json_partner_shared`,
		rec.ID.String(), rec.RelativePath, rec.AlbumID.String(), rec.MIMEType, rec.FileSize, rec.CRC32, rec.ContentFingerprint, sidecarFP,
		width, height, duration, frameRate, captureTS,
		rec.FirstSeen.Format(time.RFC3339Nano), rec.LastSeen.Format(time.RFC3339Nano), runID.String(), string(catalog.StatusPresent),
		e.Make, e.Model, e.LensModel, focalLength, aperture, exposure,
		iso, orientation, gpsLat, gpsLon,
		j.Title, j.Description, photoTaken, jsonLat, jsonLon, jsonAlt,
		j.Archived, j.Trashed, j.Favorited, j.PartnerShared,
	)
	return err
}

// upsertErrorMediaItemTx records the minimal media_items row a recoverable
// per-file failure must still produce, per §3/§7: the row exists at
// status=error with a current scan_run_id/last_seen_timestamp even though
// no aggregated fields were ever computed. A pre-existing row (the file
// was cataloged successfully before this run) only has its status and
// run bookkeeping touched; its prior fingerprints and metadata survive.
func upsertErrorMediaItemTx(ctx context.Context, tx *sql.Tx, itemErr ItemErrorRecord, runID interface{ String() string }) error {
	ts := itemErr.Timestamp.Format(time.RFC3339Nano)
	_, err := tx.ExecContext(ctx, `INSERT INTO media_items (
		id, relative_path, album_id, file_size, crc32, content_fingerprint,
		first_seen_timestamp, last_seen_timestamp, scan_run_id, status
	) VALUES (?, ?, ?, 0, '', '', ?, ?, ?, ?)
	ON CONFLICT(relative_path) DO UPDATE SET
		last_seen_timestamp = excluded.last_seen_timestamp,
		scan_run_id = excluded.scan_run_id,
		status = excluded.status`,
		itemErr.ItemID.String(), itemErr.RelativePath, itemErr.AlbumID.String(), ts, ts, runID.String(), string(catalog.StatusError),
	)
	return err
}

// tagPeople persists the sidecar's people[] names into people/people_tags,
// in the same transaction as the media item row, per §3's people/people_tags
// data model.
func tagPeople(ctx context.Context, tx *sql.Tx, rec MediaItemRecord) error {
	if len(rec.JSON.PeopleNames) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(rec.JSON.PeopleNames))
	for _, name := range rec.JSON.PeopleNames {
		id, err := catalog.UpsertPerson(ctx, tx, name)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return catalog.ReplaceMediaPeopleTags(ctx, tx, rec.ID, ids)
}

func nullFloat(v float64, has bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: has}
}

func nullInt(v int, has bool) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: has}
}
