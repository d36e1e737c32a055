package scanner

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bleemesser/gpcat/internal/exifdata"
	"github.com/bleemesser/gpcat/internal/sidecar"
	"github.com/bleemesser/gpcat/internal/videoprobe"
)

// filenameTimestampPatterns implements §4.4's filename-derived timestamp
// fallback: IMG_YYYYMMDD_HHMMSS, VID_YYYYMMDD_HHMMSS, YYYYMMDD_HHMMSS,
// YYYY-MM-DD, tried in that order. All are interpreted as UTC.
var filenameTimestampPatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`(?:IMG|VID)_(\d{8}_\d{6})`), "20060102_150405"},
	{regexp.MustCompile(`(\d{8}_\d{6})`), "20060102_150405"},
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), "2006-01-02"},
}

func filenameTimestamp(name string) (time.Time, bool) {
	for _, p := range filenameTimestampPatterns {
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		t, err := time.ParseInLocation(p.layout, m[1], time.UTC)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// aggregate combines the CPU pool's result, the parsed JSON sidecar (if
// any), and filename-derived fallbacks into one MediaItemRecord,
// applying §4.4's precedence rules.
func aggregate(absPath, relPath string, cr cpuResult, hasSidecarJSON bool, md sidecar.Metadata) MediaItemRecord {
	rec := MediaItemRecord{
		RelativePath:       relPath,
		MIMEType:           cr.MIME,
		CRC32:              cr.CRC32,
		ContentFingerprint: cr.ContentFingerprint,
	}

	if cr.HasExif {
		applyExif(&rec, cr.Exif)
	}
	if cr.HasVideo {
		applyVideo(&rec, cr.Video)
	}
	if hasSidecarJSON {
		applyJSON(&rec, md)
	}

	// Capture timestamp: JSON photoTakenTime > EXIF DateTimeOriginal >
	// filename-derived > null.
	switch {
	case hasSidecarJSON && md.HasPhotoTaken:
		rec.CaptureTimestamp, rec.HasCapture = md.PhotoTakenTime, true
	case cr.HasExif && cr.Exif.HasDateTimeOriginal:
		rec.CaptureTimestamp, rec.HasCapture = cr.Exif.DateTimeOriginal, true
	default:
		if t, ok := filenameTimestamp(filepath.Base(relPath)); ok {
			rec.CaptureTimestamp, rec.HasCapture = t, true
		}
	}

	// GPS precedence (JSON geoData > EXIF GPS) only affects which source
	// a caller treats as authoritative for display; applyJSON/applyExif
	// above already populated both sets of columns unconditionally, per
	// §4.4's "EXIF GPS is always stored in its own columns regardless of
	// precedence".

	// Title: JSON title, else basename without extension.
	if rec.JSON.Title == "" {
		base := filepath.Base(relPath)
		rec.JSON.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	// Dimensions for videos: video-probe dimensions supersede EXIF
	// dimensions (EXIF may describe an embedded thumbnail).
	if cr.HasVideo && cr.Video.HasDimensions {
		rec.Width, rec.Height, rec.HasDimensions = cr.Video.Width, cr.Video.Height, true
	}

	return rec
}

func applyExif(rec *MediaItemRecord, d exifdata.Data) {
	rec.Exif.Make = d.Make
	rec.Exif.Model = d.Model
	rec.Exif.LensModel = d.LensModel
	rec.Exif.FocalLengthMM, rec.Exif.HasFocalLength = d.FocalLengthMM, d.HasFocalLength
	rec.Exif.Aperture, rec.Exif.HasAperture = d.ApertureFNumber, d.HasAperture
	rec.Exif.ExposureTimeSeconds, rec.Exif.HasExposureTime = d.ExposureTimeSeconds, d.HasExposureTime
	rec.Exif.ISO, rec.Exif.HasISO = d.ISO, d.HasISO
	rec.Exif.Orientation, rec.Exif.HasOrientation = d.Orientation, d.HasOrientation
	rec.Exif.Latitude, rec.Exif.Longitude, rec.Exif.HasGPS = d.Latitude, d.Longitude, d.HasGPS
	if !rec.HasDimensions && d.HasDimensions {
		rec.Width, rec.Height, rec.HasDimensions = d.Width, d.Height, true
	}
}

func applyVideo(rec *MediaItemRecord, d videoprobe.Data) {
	rec.DurationSeconds, rec.HasDuration = d.DurationSeconds, d.HasDuration
	rec.FrameRate, rec.HasFrameRate = d.FrameRate, d.HasFrameRate
}

func applyJSON(rec *MediaItemRecord, md sidecar.Metadata) {
	rec.JSON.Title = md.Title
	rec.JSON.Description = md.Description
	rec.JSON.PhotoTakenTime, rec.JSON.HasPhotoTakenTime = md.PhotoTakenTime, md.HasPhotoTaken
	rec.JSON.Latitude, rec.JSON.Longitude, rec.JSON.Altitude, rec.JSON.HasGeoData = md.Latitude, md.Longitude, md.Altitude, md.HasGeoData
	rec.JSON.Archived, rec.JSON.Trashed, rec.JSON.Favorited, rec.JSON.PartnerShared = md.Archived, md.Trashed, md.Favorited, md.PartnerShared
	rec.JSON.PeopleNames = md.PeopleNames
}
