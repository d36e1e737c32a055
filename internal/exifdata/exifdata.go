// Package exifdata extracts the capture metadata fields spec §4.4 needs
// from image files, wrapping barasher/go-exiftool the way the teacher's
// worker pool does: one long-lived Exiftool process per CPU worker,
// fields read out of the generic map it returns.
package exifdata

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	exif "github.com/barasher/go-exiftool"
)

// Available reports whether an exiftool binary is resolvable on PATH,
// mirroring videoprobe.Prober.Available() so callers can fail fast when
// use_exiftool is enabled but the tool is missing.
func Available() bool {
	_, err := exec.LookPath("exiftool")
	return err == nil
}

// Extractor wraps one exiftool subprocess. It is not safe for concurrent
// use by multiple goroutines — callers create one Extractor per CPU
// worker, matching the teacher's per-worker exiftool instance.
type Extractor struct {
	et  *exif.Exiftool
	buf []byte
}

// NewExtractor starts an exiftool subprocess with a preallocated scratch
// buffer, mirroring the teacher's exif.Buffer(buf, 2048*1024) sizing.
func NewExtractor() (*Extractor, error) {
	buf := make([]byte, 4096*1024)
	et, err := exif.NewExiftool(exif.Buffer(buf, 2048*1024))
	if err != nil {
		return nil, fmt.Errorf("exifdata: start exiftool: %w", err)
	}
	return &Extractor{et: et, buf: buf}, nil
}

// Close terminates the underlying exiftool subprocess.
func (x *Extractor) Close() error {
	if x.et == nil {
		return nil
	}
	return x.et.Close()
}

// Data is the flattened, typed subset of EXIF fields the aggregator
// consumes. Orientation is kept only when it lies in the documented [1,8]
// range (otherwise HasOrientation stays false); GPS
// coordinates are signed decimal degrees (S/W negative).
type Data struct {
	DateTimeOriginal    time.Time
	HasDateTimeOriginal bool
	DateTimeDigitized   time.Time
	HasDateTimeDigitized bool
	Latitude            float64
	Longitude           float64
	HasGPS              bool
	Make                string
	Model                string
	LensModel            string
	FocalLengthMM        float64
	HasFocalLength       bool
	ApertureFNumber      float64
	HasAperture          bool
	ExposureTimeSeconds  float64
	HasExposureTime      bool
	ISO                  int
	HasISO               bool
	Orientation          int
	HasOrientation       bool
	Width                int
	Height               int
	HasDimensions        bool
}

const exifTimeLayout = "2006:01:02 15:04:05"

// Extract runs exiftool against path and returns the parsed field set. A
// non-nil error means exiftool itself failed for this file (e.g. it
// could not be parsed); the CPU pool then leaves the item's EXIF fields
// absent and records no error for it.
func (x *Extractor) Extract(path string) (Data, error) {
	var d Data
	if x.et == nil {
		return d, fmt.Errorf("exifdata: extractor not initialized")
	}

	metas := x.et.ExtractMetadata(path)
	if len(metas) == 0 {
		return d, fmt.Errorf("exifdata: no metadata returned for %s", path)
	}
	meta := metas[0]
	if meta.Err != nil {
		return d, fmt.Errorf("exifdata: %s: %w", path, meta.Err)
	}

	fields := meta.Fields

	if ts, ok := parseExifTime(fields, "DateTimeOriginal"); ok {
		d.DateTimeOriginal, d.HasDateTimeOriginal = ts, true
	}
	if ts, ok := parseExifTime(fields, "CreateDate"); ok {
		d.DateTimeDigitized, d.HasDateTimeDigitized = ts, true
	}

	if lat, lon, ok := parseGPS(fields); ok {
		d.Latitude, d.Longitude, d.HasGPS = lat, lon, true
	}

	d.Make = stringField(fields, "Make")
	d.Model = stringField(fields, "Model")
	d.LensModel = stringField(fields, "LensModel")

	if v, ok := rationalField(fields, "FocalLength"); ok {
		d.FocalLengthMM, d.HasFocalLength = v, true
	}
	if v, ok := rationalField(fields, "FNumber"); ok {
		d.ApertureFNumber, d.HasAperture = v, true
	}
	if v, ok := exposureTimeField(fields); ok {
		d.ExposureTimeSeconds, d.HasExposureTime = v, true
	}
	if v, ok := intField(fields, "ISO"); ok {
		d.ISO, d.HasISO = v, true
	}
	if v, ok := intField(fields, "Orientation"); ok && v >= 1 && v <= 8 {
		d.Orientation, d.HasOrientation = v, true
	}
	if w, ok := intField(fields, "ImageWidth"); ok {
		if h, ok := intField(fields, "ImageHeight"); ok {
			d.Width, d.Height, d.HasDimensions = w, h, true
		}
	}

	return d, nil
}

func stringField(fields map[string]interface{}, key string) string {
	s, _ := fields[key].(string)
	return s
}

func parseExifTime(fields map[string]interface{}, key string) (time.Time, bool) {
	s, ok := fields[key].(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	// exiftool emits subsecond and timezone suffixes inconsistently;
	// take just the layout-matching prefix.
	if len(s) > len(exifTimeLayout) {
		s = s[:len(exifTimeLayout)]
	}
	t, err := time.ParseInLocation(exifTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseGPS converts exiftool's signed-or-reference-letter GPS fields into
// decimal degrees. exiftool -n output yields signed floats directly; we
// accept both that and the ref-letter form for robustness.
func parseGPS(fields map[string]interface{}) (lat, lon float64, ok bool) {
	latVal, latOK := numericField(fields, "GPSLatitude")
	lonVal, lonOK := numericField(fields, "GPSLongitude")
	if !latOK || !lonOK {
		return 0, 0, false
	}
	if ref := stringField(fields, "GPSLatitudeRef"); strings.EqualFold(ref, "S") && latVal > 0 {
		latVal = -latVal
	}
	if ref := stringField(fields, "GPSLongitudeRef"); strings.EqualFold(ref, "W") && lonVal > 0 {
		lonVal = -lonVal
	}
	return latVal, lonVal, true
}

func numericField(fields map[string]interface{}, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func rationalField(fields map[string]interface{}, key string) (float64, bool) {
	return numericField(fields, key)
}

func intField(fields map[string]interface{}, key string) (int, bool) {
	switch v := fields[key].(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// exposureTimeField handles exiftool's fractional exposure notation
// ("1/250") in addition to plain decimal seconds.
func exposureTimeField(fields map[string]interface{}) (float64, bool) {
	s, ok := fields["ExposureTime"].(string)
	if !ok {
		return numericField(fields, "ExposureTime")
	}
	if num, den, found := strings.Cut(s, "/"); found {
		n, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err1 == nil && err2 == nil && d != 0 {
			return n / d, true
		}
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
