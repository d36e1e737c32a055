package scanner

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bleemesser/gpcat/internal/catalog"
	"github.com/bleemesser/gpcat/internal/catalogerr"
	"github.com/bleemesser/gpcat/internal/fingerprint"
	"github.com/bleemesser/gpcat/internal/sidecar"
)

// ioWorker runs the per-file pipeline from §4.5 steps 1-5 for every
// WorkItem it receives, sending exactly one Result per item.
type ioWorker struct {
	cat        cat
	pool       *cpuPool
	useFFProbe bool
	log        *logrus.Entry
}

// cat is the minimal catalog surface the pipeline needs, isolated so
// tests can substitute a fake.
type cat interface {
	LookupMediaItem(ctx context.Context, relativePath string) (*catalog.ExistingFingerprint, error)
}

func (w *ioWorker) processOne(ctx context.Context, item WorkItem, now time.Time) Result {
	relPath := item.File.RelativePath
	absPath := item.File.AbsolutePath

	existing, err := w.cat.LookupMediaItem(ctx, relPath)
	if err != nil {
		return errorResult(relPath, item.AlbumID, nil, "media_file", catalogerr.IOError, err, now)
	}

	// Content fingerprint is computed unconditionally on a known path,
	// per §4.5: "no shortcut on size alone."
	if existing != nil {
		info, statErr := os.Stat(absPath)
		if statErr != nil {
			return errorResult(relPath, item.AlbumID, &existing.ID, "media_file", catalogerr.IOError, statErr, now)
		}
		content, fpErr := fingerprint.Content(absPath)
		if fpErr != nil {
			return errorResult(relPath, item.AlbumID, &existing.ID, "media_file", catalogerr.IOError, fpErr, now)
		}
		if info.Size() == existing.FileSize && content == existing.ContentFingerprint {
			return Result{
				Kind: ResultUpdateOnly,
				UpdateOnly: UpdateOnlyRecord{
					ID:           existing.ID,
					RelativePath: relPath,
					LastSeen:     now,
				},
			}
		}
	}

	cr := w.pool.submit(cpuJob{path: absPath, useFFProbe: w.useFFProbe})
	if cr.Err != nil {
		var existingID *uuid.UUID
		if existing != nil {
			existingID = &existing.ID
		}
		return errorResult(relPath, item.AlbumID, existingID, "media_file", catalogerr.Corrupted, cr.Err, now)
	}

	var md sidecar.Metadata
	hasJSON := item.File.SidecarPath != ""
	if hasJSON {
		parsed, err := sidecar.ParseJSONFile(item.File.SidecarPath)
		if err != nil {
			// A broken sidecar does not fail the media item itself: the
			// failure is logged at WARN, no processing_errors row is
			// written for it, and aggregation proceeds without
			// JSON-derived fields.
			w.logSidecarError(relPath, err)
			hasJSON = false
		} else {
			md = parsed
		}
	}

	rec := aggregate(absPath, relPath, cr, hasJSON, md)
	rec.AlbumID = item.AlbumID
	rec.FileSize = item.File.FileSize
	rec.FirstSeen = now
	rec.LastSeen = now
	if existing != nil {
		rec.ID = existing.ID
		rec.FirstSeen = existing.FirstSeen
	} else {
		rec.ID = uuid.New()
		rec.IsNew = true
	}

	if hasJSON {
		if fp, err := fingerprint.Content(item.File.SidecarPath); err == nil {
			rec.SidecarFingerprint, rec.HasSidecarFP = fp, true
		}
	}

	return Result{Kind: ResultMediaItem, MediaItem: rec}
}

func (w *ioWorker) logSidecarError(relPath string, err error) {
	if w.log != nil {
		w.log.WithError(err).Warnf("json_sidecar: failed to parse sidecar for %s", relPath)
	}
}

// errorResult builds a ResultError. existingID, when non-nil, reuses the
// media item's existing id so the status=error row lands on the same
// media_items record rather than minting a fresh one; nil means the file
// was never seen before this attempt.
func errorResult(relPath string, albumID uuid.UUID, existingID *uuid.UUID, errType string, category catalogerr.Category, err error, now time.Time) Result {
	id := uuid.New()
	if existingID != nil {
		id = *existingID
	}
	return Result{
		Kind: ResultError,
		ItemErr: ItemErrorRecord{
			ItemID:       id,
			RelativePath: relPath,
			AlbumID:      albumID,
			ErrorType:    errType,
			Category:     string(category),
			Message:      err.Error(),
			Timestamp:    now,
		},
	}
}
