package exifdata

import "testing"

func TestParseExifTime(t *testing.T) {
	fields := map[string]interface{}{"DateTimeOriginal": "2020:09:20 13:12:07"}
	ts, ok := parseExifTime(fields, "DateTimeOriginal")
	if !ok {
		t.Fatal("expected parse success")
	}
	if ts.Year() != 2020 || ts.Month() != 9 || ts.Day() != 20 {
		t.Errorf("parsed time = %v", ts)
	}
}

func TestParseExifTimeWithSubsecondSuffix(t *testing.T) {
	fields := map[string]interface{}{"DateTimeOriginal": "2020:09:20 13:12:07.123-07:00"}
	ts, ok := parseExifTime(fields, "DateTimeOriginal")
	if !ok {
		t.Fatal("expected parse success despite trailing subsecond/timezone text")
	}
	if ts.Hour() != 13 {
		t.Errorf("hour = %d, want 13", ts.Hour())
	}
}

func TestParseExifTimeMissingField(t *testing.T) {
	if _, ok := parseExifTime(map[string]interface{}{}, "DateTimeOriginal"); ok {
		t.Error("expected failure for missing field")
	}
}

func TestParseGPSAppliesHemisphereSign(t *testing.T) {
	fields := map[string]interface{}{
		"GPSLatitude":     37.4,
		"GPSLatitudeRef":  "S",
		"GPSLongitude":    122.1,
		"GPSLongitudeRef": "W",
	}
	lat, lon, ok := parseGPS(fields)
	if !ok {
		t.Fatal("expected gps parse success")
	}
	if lat != -37.4 || lon != -122.1 {
		t.Errorf("lat=%v lon=%v, want -37.4,-122.1", lat, lon)
	}
}

func TestParseGPSMissing(t *testing.T) {
	if _, _, ok := parseGPS(map[string]interface{}{}); ok {
		t.Error("expected failure when GPS fields absent")
	}
}

func TestExposureTimeFraction(t *testing.T) {
	fields := map[string]interface{}{"ExposureTime": "1/250"}
	v, ok := exposureTimeField(fields)
	if !ok || v != 0.004 {
		t.Errorf("exposureTimeField = %v, %v, want 0.004", v, ok)
	}
}

func TestExposureTimeDecimal(t *testing.T) {
	fields := map[string]interface{}{"ExposureTime": 2.5}
	v, ok := exposureTimeField(fields)
	if !ok || v != 2.5 {
		t.Errorf("exposureTimeField = %v, %v, want 2.5", v, ok)
	}
}

func TestIntFieldFromString(t *testing.T) {
	v, ok := intField(map[string]interface{}{"Orientation": "6"}, "Orientation")
	if !ok || v != 6 {
		t.Errorf("intField = %v, %v, want 6", v, ok)
	}
}

func TestIntFieldFromFloat(t *testing.T) {
	v, ok := intField(map[string]interface{}{"ISO": 400.0}, "ISO")
	if !ok || v != 400 {
		t.Errorf("intField = %v, %v, want 400", v, ok)
	}
}
