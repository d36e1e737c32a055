// Package scanner is the parallel, resumable pipeline from spec §4.5:
// I/O workers doing change-detection and aggregation, a CPU worker pool
// doing the heavy per-file computation, and a single writer goroutine
// that owns the catalog's write connection. Grounded on the teacher's
// worker-pool shape (util/import.go's jobs/results channels + WaitGroup)
// and generalized with golang.org/x/sync/errgroup for
// cancellation-propagating shutdown.
package scanner

import (
	"time"

	"github.com/google/uuid"

	"github.com/bleemesser/gpcat/internal/discover"
)

// WorkItem is one file queued for the per-file pipeline.
type WorkItem struct {
	File    discover.FileInfo
	AlbumID uuid.UUID
}

// ResultKind discriminates what a pipeline result carries.
type ResultKind int

const (
	ResultMediaItem ResultKind = iota
	ResultError
	ResultUpdateOnly
)

// Result is what an I/O worker sends to the writer.
type Result struct {
	Kind       ResultKind
	MediaItem  MediaItemRecord
	UpdateOnly UpdateOnlyRecord
	ItemErr    ItemErrorRecord
}

// MediaItemRecord is the fully aggregated record for a new or changed
// file, ready for the catalog's media_items upsert.
type MediaItemRecord struct {
	ID                 uuid.UUID
	RelativePath       string
	AlbumID            uuid.UUID
	MIMEType           string
	FileSize           int64
	CRC32              string
	ContentFingerprint string
	SidecarFingerprint string
	HasSidecarFP       bool

	Width, Height    int
	HasDimensions    bool
	DurationSeconds  float64
	HasDuration      bool
	FrameRate        float64
	HasFrameRate     bool
	CaptureTimestamp time.Time
	HasCapture       bool

	Exif  ExifFields
	JSON  JSONFields

	FirstSeen time.Time
	LastSeen  time.Time

	// IsNew distinguishes a first-sight file from a previously-seen file
	// whose content changed, for the new/changed counters in scan_runs.
	IsNew bool
}

// ExifFields is the flattened EXIF subset carried on every record,
// present or not.
type ExifFields struct {
	Make, Model, LensModel string
	FocalLengthMM          float64
	HasFocalLength         bool
	Aperture               float64
	HasAperture            bool
	ExposureTimeSeconds    float64
	HasExposureTime        bool
	ISO                    int
	HasISO                 bool
	Orientation            int
	HasOrientation         bool
	Latitude, Longitude    float64
	HasGPS                 bool
}

// JSONFields is the flattened Takeout sidecar subset.
type JSONFields struct {
	Title, Description string
	PhotoTakenTime      time.Time
	HasPhotoTakenTime   bool
	Latitude, Longitude, Altitude float64
	HasGeoData          bool
	Archived, Trashed, Favorited, PartnerShared bool
	PeopleNames []string
}

// UpdateOnlyRecord is an unchanged file's minimal write: bump
// scan_run_id and last_seen_timestamp only.
type UpdateOnlyRecord struct {
	ID           uuid.UUID
	RelativePath string
	LastSeen     time.Time
}

// ItemErrorRecord is a recoverable per-file failure destined for
// processing_errors plus a status=error media_items row.
type ItemErrorRecord struct {
	ItemID       uuid.UUID
	RelativePath string
	AlbumID      uuid.UUID
	ErrorType    string
	Category     string
	Message      string
	Timestamp    time.Time
}
