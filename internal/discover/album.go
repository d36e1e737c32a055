// Package discover enumerates the Takeout tree into albums and files,
// grounded on the teacher's directory walk (util/import.go's WalkDir)
// generalized to the album/sidecar structure spec §4.2 describes.
package discover

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/google/uuid"

	"github.com/bleemesser/gpcat/internal/pathutil"
)

// AlbumType distinguishes how an album's attributes were sourced.
type AlbumType string

const (
	AlbumUserTyped AlbumType = "user_typed"
	AlbumYearTyped AlbumType = "year_typed"
)

// AlbumStatus mirrors the catalog's album.status enum.
type AlbumStatus string

const (
	AlbumPresent AlbumStatus = "present"
	AlbumError   AlbumStatus = "error"
	AlbumMissing AlbumStatus = "missing"
)

// Album is one top-level Takeout folder, pre-catalog.
type Album struct {
	ID               uuid.UUID
	FolderPath       string // NFC, forward-slashed, relative to the Takeout root
	AbsolutePath     string
	Type             AlbumType
	Title            string
	Description      string
	CreationTime     string
	AccessLevel      string
	Status           AlbumStatus
	ParseError       error
}

// albumNamespace is a fixed UUID namespace so album IDs are stable across
// processes and re-runs, per §3's "deterministic ID derived as a
// namespace-scoped hash of the canonicalized album_folder_path".
var albumNamespace = uuid.MustParse("6ba7b812-9dad-11d1-80b4-00c04fd430c8")

// AlbumID derives the deterministic UUIDv5 album ID from a canonicalized
// folder path (NFC, forward-slashed, relative to the Takeout root).
func AlbumID(canonicalFolderPath string) uuid.UUID {
	return uuid.NewSHA1(albumNamespace, []byte(canonicalFolderPath))
}

var yearAlbumRE = regexp.MustCompile(`^Photos from (\d{4})$`)

type metadataJSON struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AccessLevel string `json:"access"`
	Date        struct {
		Timestamp string `json:"timestamp"`
	} `json:"date"`
}

// DiscoverAlbums enumerates the top-level entries of root. It does not
// recurse for album identity — Google Photos albums are never nested.
func DiscoverAlbums(root string) ([]Album, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("discover: root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("discover: root %s is not a directory", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("discover: read root %s: %w", root, err)
	}

	var albums []Album
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if pathutil.ShouldSkip(name) {
			continue
		}
		folderPath := pathutil.ToNFC(name)
		absPath := filepath.Join(root, name)

		album := Album{
			ID:           AlbumID(folderPath),
			FolderPath:   folderPath,
			AbsolutePath: absPath,
			Status:       AlbumPresent,
		}

		metadataPath := filepath.Join(absPath, "metadata.json")
		if data, err := os.ReadFile(metadataPath); err == nil {
			var meta metadataJSON
			if err := json.Unmarshal(data, &meta); err != nil {
				album.Type = AlbumUserTyped
				album.Status = AlbumError
				album.Title = folderPath
				album.ParseError = fmt.Errorf("discover: parse %s: %w", metadataPath, err)
			} else {
				album.Type = AlbumUserTyped
				album.Title = meta.Title
				if album.Title == "" {
					album.Title = folderPath
				}
				album.Description = meta.Description
				album.AccessLevel = meta.AccessLevel
				album.CreationTime = meta.Date.Timestamp
			}
		} else if m := yearAlbumRE.FindStringSubmatch(folderPath); m != nil {
			year, _ := strconv.Atoi(m[1])
			if year >= 1900 && year <= 2200 {
				album.Type = AlbumYearTyped
				album.Title = folderPath
			} else {
				album.Type = AlbumUserTyped
				album.Title = folderPath
			}
		} else {
			album.Type = AlbumUserTyped
			album.Title = folderPath
		}

		albums = append(albums, album)
	}

	if len(albums) == 0 {
		return nil, fmt.Errorf("discover: root %s contains zero albums", root)
	}

	return albums, nil
}
