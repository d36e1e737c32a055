package scanner

import (
	"testing"
	"time"

	"github.com/bleemesser/gpcat/internal/exifdata"
	"github.com/bleemesser/gpcat/internal/sidecar"
	"github.com/bleemesser/gpcat/internal/videoprobe"
)

func TestFilenameTimestampPatterns(t *testing.T) {
	cases := []struct {
		name string
		want string
		ok   bool
	}{
		{"IMG_20210304_153000.jpg", "2021-03-04T15:30:00Z", true},
		{"VID_20210304_153000.mp4", "2021-03-04T15:30:00Z", true},
		{"20210304_153000.heic", "2021-03-04T15:30:00Z", true},
		{"2021-03-04.jpg", "2021-03-04T00:00:00Z", true},
		{"random-file.jpg", "", false},
	}
	for _, c := range cases {
		got, ok := filenameTimestamp(c.name)
		if ok != c.ok {
			t.Errorf("filenameTimestamp(%q) ok = %v, want %v", c.name, ok, c.ok)
			continue
		}
		if ok && got.Format(time.RFC3339) != c.want {
			t.Errorf("filenameTimestamp(%q) = %s, want %s", c.name, got.Format(time.RFC3339), c.want)
		}
	}
}

func TestAggregateCaptureTimestampPrecedence(t *testing.T) {
	jsonTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	exifTime := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)

	// JSON wins over EXIF and filename.
	cr := cpuResult{HasExif: true, Exif: exifdata.Data{DateTimeOriginal: exifTime, HasDateTimeOriginal: true}}
	md := sidecar.Metadata{PhotoTakenTime: jsonTime, HasPhotoTaken: true}
	rec := aggregate("/root/Album/IMG_20210304_153000.jpg", "Album/IMG_20210304_153000.jpg", cr, true, md)
	if !rec.HasCapture || !rec.CaptureTimestamp.Equal(jsonTime) {
		t.Errorf("expected JSON capture timestamp to win, got %v (has=%v)", rec.CaptureTimestamp, rec.HasCapture)
	}

	// EXIF wins over filename when there's no sidecar JSON.
	rec2 := aggregate("/root/Album/IMG_20210304_153000.jpg", "Album/IMG_20210304_153000.jpg", cr, false, sidecar.Metadata{})
	if !rec2.HasCapture || !rec2.CaptureTimestamp.Equal(exifTime) {
		t.Errorf("expected EXIF capture timestamp to win absent JSON, got %v", rec2.CaptureTimestamp)
	}

	// Filename is the last resort.
	rec3 := aggregate("/root/Album/IMG_20210304_153000.jpg", "Album/IMG_20210304_153000.jpg", cpuResult{}, false, sidecar.Metadata{})
	if !rec3.HasCapture {
		t.Errorf("expected filename-derived capture timestamp, got none")
	}

	// Null when nothing matches.
	rec4 := aggregate("/root/Album/random.jpg", "Album/random.jpg", cpuResult{}, false, sidecar.Metadata{})
	if rec4.HasCapture {
		t.Errorf("expected no capture timestamp, got %v", rec4.CaptureTimestamp)
	}
}

func TestAggregateTitleFallsBackToBasename(t *testing.T) {
	rec := aggregate("/root/Album/vacation.jpg", "Album/vacation.jpg", cpuResult{}, false, sidecar.Metadata{})
	if rec.JSON.Title != "vacation" {
		t.Errorf("Title = %q, want %q", rec.JSON.Title, "vacation")
	}

	md := sidecar.Metadata{Title: "Sunset"}
	rec2 := aggregate("/root/Album/vacation.jpg", "Album/vacation.jpg", cpuResult{}, true, md)
	if rec2.JSON.Title != "Sunset" {
		t.Errorf("Title = %q, want %q", rec2.JSON.Title, "Sunset")
	}
}

func TestAggregateVideoDimensionsSupersedeExif(t *testing.T) {
	cr := cpuResult{
		HasExif: true,
		Exif:    exifdata.Data{Width: 100, Height: 50, HasDimensions: true},
		HasVideo: true,
		Video:    videoprobe.Data{Width: 1920, Height: 1080, HasDimensions: true},
	}
	rec := aggregate("/root/Album/clip.mov", "Album/clip.mov", cr, false, sidecar.Metadata{})
	if rec.Width != 1920 || rec.Height != 1080 {
		t.Errorf("expected video dimensions to win, got %dx%d", rec.Width, rec.Height)
	}
}

func TestAggregatePeopleNamesCarried(t *testing.T) {
	md := sidecar.Metadata{PeopleNames: []string{"Alice", "Bob"}}
	rec := aggregate("/root/Album/group.jpg", "Album/group.jpg", cpuResult{}, true, md)
	if len(rec.JSON.PeopleNames) != 2 || rec.JSON.PeopleNames[0] != "Alice" {
		t.Errorf("expected people names carried through, got %v", rec.JSON.PeopleNames)
	}
}
