package sidecar

import "testing"

func TestParseJSONBasic(t *testing.T) {
	data := []byte(`{
		"title": "IMG_1234.jpg",
		"description": "a photo",
		"photoTakenTime": {"timestamp": "1600603927"},
		"geoData": {"latitude": 37.4, "longitude": -122.1, "altitude": 10.0},
		"people": [{"name": "Alice"}, {"name": "Bob"}],
		"archived": true
	}`)

	md, err := ParseJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if md.Title != "IMG_1234.jpg" {
		t.Errorf("Title = %q", md.Title)
	}
	if !md.HasPhotoTaken {
		t.Error("expected HasPhotoTaken")
	}
	if !md.HasGeoData || md.Latitude != 37.4 {
		t.Errorf("geo data not parsed: %+v", md)
	}
	if len(md.PeopleNames) != 2 {
		t.Errorf("expected 2 people, got %v", md.PeopleNames)
	}
	if !md.Archived {
		t.Error("expected Archived true")
	}
	if md.Trashed || md.Favorited {
		t.Error("absent boolean fields must default false")
	}
}

func TestParseJSONAbsentFieldsDefaultFalse(t *testing.T) {
	md, err := ParseJSON([]byte(`{"title": "x"}`))
	if err != nil {
		t.Fatal(err)
	}
	if md.Archived || md.Trashed || md.Favorited || md.HasGeoData || md.HasPhotoTaken {
		t.Errorf("expected all-absent defaults, got %+v", md)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	if _, err := ParseJSON([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseJSONGeoDataExifFallback(t *testing.T) {
	md, err := ParseJSON([]byte(`{"geoDataExif": {"latitude": 1.0, "longitude": 2.0, "altitude": 3.0}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !md.HasGeoData || md.Latitude != 1.0 {
		t.Errorf("expected geoDataExif fallback, got %+v", md)
	}
}
