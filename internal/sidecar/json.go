package sidecar

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Metadata is the Takeout JSON sidecar schema, flattened to the fields the
// aggregator needs. Grounded on the Takeout metadata shape captured in the
// retrieved pack's googlephotos JSON parsers.
type Metadata struct {
	Title           string
	Description     string
	PhotoTakenTime  time.Time
	HasPhotoTaken   bool
	CreationTime    time.Time
	HasCreationTime bool
	Latitude        float64
	Longitude       float64
	Altitude        float64
	HasGeoData      bool
	PeopleNames     []string
	Archived        bool
	Trashed         bool
	Favorited       bool
	PartnerShared   bool
}

type timeObject struct {
	Timestamp string `json:"timestamp"`
}

func (t *timeObject) time() (time.Time, bool) {
	if t == nil || t.Timestamp == "" {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(t.Timestamp, 10, 64)
	if err != nil || sec == 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}

type geoData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

func (g *geoData) present() bool {
	return g != nil && (g.Latitude != 0 || g.Longitude != 0)
}

type person struct {
	Name string `json:"name"`
}

type rawMetadata struct {
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	PhotoTakenTime     *timeObject `json:"photoTakenTime"`
	CreationTime       *timeObject `json:"creationTime"`
	GeoData            *geoData    `json:"geoData"`
	GeoDataExif        *geoData    `json:"geoDataExif"`
	People             []person    `json:"people"`
	Archived           bool        `json:"archived"`
	Trashed            bool        `json:"trashed"`
	Favorited          bool        `json:"favorited"`
	GooglePhotosOrigin struct {
		FromPartnerSharing bool `json:"fromPartnerSharing"`
	} `json:"googlePhotosOrigin"`
}

// ParseJSON decodes a Takeout sidecar's contents into Metadata. Absence of
// archived/trashed/favorited keys is false, per spec §4.4.
func ParseJSON(data []byte) (Metadata, error) {
	var raw rawMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return Metadata{}, fmt.Errorf("sidecar: invalid json: %w", err)
	}

	md := Metadata{
		Title:         raw.Title,
		Description:   raw.Description,
		Archived:      raw.Archived,
		Trashed:       raw.Trashed,
		Favorited:     raw.Favorited,
		PartnerShared: raw.GooglePhotosOrigin.FromPartnerSharing,
	}
	md.PhotoTakenTime, md.HasPhotoTaken = raw.PhotoTakenTime.time()
	md.CreationTime, md.HasCreationTime = raw.CreationTime.time()

	// geoData takes precedence over geoDataExif per §4.4's aggregator
	// precedence (JSON geoData > EXIF GPS); geoDataExif is Google's own
	// copy of the EXIF GPS block and is only used when geoData is absent
	// or zero.
	switch {
	case raw.GeoData.present():
		md.Latitude, md.Longitude, md.Altitude = raw.GeoData.Latitude, raw.GeoData.Longitude, raw.GeoData.Altitude
		md.HasGeoData = true
	case raw.GeoDataExif.present():
		md.Latitude, md.Longitude, md.Altitude = raw.GeoDataExif.Latitude, raw.GeoDataExif.Longitude, raw.GeoDataExif.Altitude
		md.HasGeoData = true
	}

	for _, p := range raw.People {
		if p.Name != "" {
			md.PeopleNames = append(md.PeopleNames, p.Name)
		}
	}

	return md, nil
}

// ParseJSONFile reads and parses a sidecar file from disk. A missing file
// and invalid JSON are distinct failures with distinct error messages; the
// scanner logs either one at WARN and records no processing error for it.
func ParseJSONFile(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("sidecar: read %s: %w", path, err)
	}
	return ParseJSON(data)
}
