// Package reconcile runs the post-scan sweeps and variant/live-photo
// linkers from spec §4.7/§4.8, after the pipeline has fully drained.
// Grounded on the teacher's own post-import cull pass (util/library.go's
// UpdateDB, which walks existing rows and reconciles them against the
// current filesystem state) generalized into three explicit, auditable
// sweeps plus two read-then-write linking passes.
package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bleemesser/gpcat/internal/catalog"
	"github.com/bleemesser/gpcat/internal/discover"
	"github.com/bleemesser/gpcat/internal/sidecar"
)

// Report summarizes what the sweeps found, for scan_runs' final
// counters.
type Report struct {
	MissingCount      int64
	InconsistentCount int64
}

// Run executes the inconsistency sweep, missing sweep, verification, and
// both linkers, in that order, per §4.7/§4.8.
func Run(ctx context.Context, cat *catalog.Catalog, runID uuid.UUID, scanStart time.Time, albums []discover.Album, files []discover.FileInfo, log *logrus.Entry) (Report, error) {
	var report Report

	inconsistent, err := inconsistencySweep(ctx, cat, runID, scanStart)
	if err != nil {
		return report, fmt.Errorf("reconcile: inconsistency sweep: %w", err)
	}
	report.InconsistentCount = inconsistent
	if inconsistent > 0 && log != nil {
		log.WithField("count", inconsistent).Error("reconcile: inconsistent media items detected")
	}

	missingMedia, err := cat.MarkMediaMissing(ctx, runID)
	if err != nil {
		return report, fmt.Errorf("reconcile: missing sweep (media): %w", err)
	}
	missingAlbums, err := cat.MarkAlbumsMissing(ctx, runID)
	if err != nil {
		return report, fmt.Errorf("reconcile: missing sweep (albums): %w", err)
	}
	report.MissingCount = missingMedia + missingAlbums

	if err := verify(ctx, cat, runID); err != nil {
		return report, fmt.Errorf("reconcile: verification failed: %w", err)
	}

	if err := linkEditedVariants(ctx, cat, files, log); err != nil {
		return report, fmt.Errorf("reconcile: edited-variant linker: %w", err)
	}
	if err := linkLivePhotos(ctx, cat, files, log); err != nil {
		return report, fmt.Errorf("reconcile: live-photo linker: %w", err)
	}

	return report, nil
}

// inconsistencySweep sets status = inconsistent for rows belonging to
// the current run whose last_seen_timestamp predates the scan's start —
// a protection against bugs or partial commits, per §4.7.
func inconsistencySweep(ctx context.Context, cat *catalog.Catalog, runID uuid.UUID, scanStart time.Time) (int64, error) {
	res, err := cat.WriteConn().ExecContext(ctx,
		`UPDATE media_items SET status = ? WHERE scan_run_id = ? AND last_seen_timestamp < ?`,
		catalog.StatusInconsistent, runID.String(), scanStart.Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// verify asserts the invariant §4.7 names: after both sweeps, no row may
// be present while belonging to a stale run.
func verify(ctx context.Context, cat *catalog.Catalog, runID uuid.UUID) error {
	var count int
	err := cat.WriteConn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media_items WHERE status = ? AND scan_run_id != ?`,
		catalog.StatusPresent, runID.String()).Scan(&count)
	if err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("reconcile: %d present rows remain on a stale scan_run_id after reconciliation", count)
	}
	return nil
}

// linkEditedVariants implements §4.8's edited-variant linker: for each
// discovered file carrying a localized -edited token, find the original
// in the same album folder and set original_media_item_id. Edited files
// never link across album folders.
func linkEditedVariants(ctx context.Context, cat *catalog.Catalog, files []discover.FileInfo, log *logrus.Entry) error {
	byAlbum := make(map[string][]discover.FileInfo)
	for _, f := range files {
		byAlbum[f.AlbumFolderPath] = append(byAlbum[f.AlbumFolderPath], f)
	}

	for albumPath, albumFiles := range byAlbum {
		stemIndex := make(map[string]discover.FileInfo)
		for _, f := range albumFiles {
			name := sidecar.ParseMediaName(filepath.Base(f.RelativePath))
			if !name.HasEditedToken() {
				stemIndex[name.Stem+"."+name.Ext] = f
			}
		}
		for _, f := range albumFiles {
			name := sidecar.ParseMediaName(filepath.Base(f.RelativePath))
			if !name.HasEditedToken() {
				continue
			}
			stripped := name.StripEditedToken()
			original, ok := stemIndex[stripped.Stem+"."+stripped.Ext]
			if !ok {
				if log != nil {
					log.Warnf("reconcile: edited variant %s has no original in album %s", f.RelativePath, albumPath)
				}
				continue
			}
			if err := linkOriginal(ctx, cat, f.RelativePath, original.RelativePath, log); err != nil {
				return err
			}
		}
	}
	return nil
}

// linkOriginal looks up the original's catalog row and sets
// original_media_item_id on the edited variant. The original can be
// absent from media_items — it may have hit a recoverable per-file error
// and never been upserted, or simply never been cataloged — and that is
// not a reconciliation failure: per §4.8, treat it the same as "not
// found" at the filesystem level, log a warning, and leave the link null.
func linkOriginal(ctx context.Context, cat *catalog.Catalog, editedRelPath, originalRelPath string, log *logrus.Entry) error {
	var originalID string
	err := cat.WriteConn().QueryRowContext(ctx, `SELECT id FROM media_items WHERE relative_path = ?`, originalRelPath).Scan(&originalID)
	if errors.Is(err, sql.ErrNoRows) {
		if log != nil {
			log.Warnf("reconcile: original %s for edited variant %s has no catalog row, leaving unlinked", originalRelPath, editedRelPath)
		}
		return nil
	}
	if err != nil {
		return err
	}
	_, err = cat.WriteConn().ExecContext(ctx, `UPDATE media_items SET original_media_item_id = ? WHERE relative_path = ?`, originalID, editedRelPath)
	return err
}

// linkLivePhotos implements §4.8's Live Photo linker: HEIC/JPEG + MOV
// pairs sharing an exact base name within one album folder get a fresh,
// shared live_photo_pair_id.
func linkLivePhotos(ctx context.Context, cat *catalog.Catalog, files []discover.FileInfo, log *logrus.Entry) error {
	type key struct{ album, stem string }
	groups := make(map[key][]discover.FileInfo)
	for _, f := range files {
		base := filepath.Base(f.RelativePath)
		ext := filepath.Ext(base)
		stem := base[:len(base)-len(ext)]
		k := key{f.AlbumFolderPath, stem}
		groups[k] = append(groups[k], f)
	}

	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		var stillImage, motionClip *discover.FileInfo
		for i := range group {
			ext := filepath.Ext(group[i].RelativePath)
			switch strings.ToLower(ext) {
			case ".heic", ".jpg", ".jpeg":
				if stillImage == nil {
					stillImage = &group[i]
				}
			case ".mov":
				if motionClip == nil {
					motionClip = &group[i]
				}
			}
		}
		if stillImage == nil || motionClip == nil {
			continue
		}
		pairID := uuid.New().String()
		for _, rel := range []string{stillImage.RelativePath, motionClip.RelativePath} {
			if _, err := cat.WriteConn().ExecContext(ctx, `UPDATE media_items SET live_photo_pair_id = ? WHERE relative_path = ?`, pairID, rel); err != nil {
				return err
			}
		}
		if log != nil {
			log.Infof("reconcile: linked live photo pair %s + %s", stillImage.RelativePath, motionClip.RelativePath)
		}
	}
	return nil
}
