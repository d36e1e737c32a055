package discover

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bleemesser/gpcat/internal/pathutil"
	"github.com/bleemesser/gpcat/internal/sidecar"
)

// FileInfo is one discovered non-sidecar file, paired with its sidecar
// JSON if §4.1 matching found one.
type FileInfo struct {
	AbsolutePath    string
	RelativePath    string // NFC, forward-slashed, relative to the Takeout root
	AlbumFolderPath string
	SidecarPath     string // absolute path, or "" if none
	FileSize        int64
}

// DiscoverFiles lists the direct entries of each discovered album folder
// and emits one FileInfo per non-hidden, non-system, non-temporary,
// non-sidecar file. Subfolders inside an album folder are not descended
// into, and files lying directly under root are not listed. Sidecar
// pairing runs per album folder using the §4.1 matcher; JSON sidecar
// files themselves never become work items.
func DiscoverFiles(root string, albums []Album, log sidecar.Logger) ([]FileInfo, []string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("discover: root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("discover: root %s is not a directory", root)
	}

	var files []FileInfo
	var warnings []string

	for _, album := range albums {
		mediaPaths, sidecarPaths, err := listAlbumEntries(album.AbsolutePath)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("discover: album %s: %v", album.FolderPath, err))
			continue
		}
		if len(mediaPaths) == 0 {
			warnings = append(warnings, fmt.Sprintf("discover: album %s has no media files", album.FolderPath))
		}

		baseName := filepath.Base
		result := sidecar.MatchAlbum(mediaPaths, sidecarPaths, baseName, log)

		for _, mp := range mediaPaths {
			rel, err := pathutil.Relative(root, mp)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("discover: relative path for %s: %v", mp, err))
				continue
			}
			fi, err := os.Stat(mp)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("discover: stat %s: %v", mp, err))
				continue
			}
			files = append(files, FileInfo{
				AbsolutePath:    mp,
				RelativePath:    rel,
				AlbumFolderPath: album.FolderPath,
				SidecarPath:     result.Pairs[mp],
				FileSize:        fi.Size(),
			})
		}
	}

	if len(albums) == 0 {
		warnings = append(warnings, "discover: root contains zero albums")
	}

	return files, warnings, nil
}

// listAlbumEntries splits one album folder's direct entries (no
// recursion below the album level — Takeout albums are flat) into media
// and sidecar (.json) candidates, skipping hidden/system/temp files.
func listAlbumEntries(albumDir string) (media, sidecars []string, err error) {
	entries, err := os.ReadDir(albumDir)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if pathutil.ShouldSkip(name) {
			continue
		}
		full := filepath.Join(albumDir, name)
		if name == "metadata.json" {
			continue
		}
		if filepath.Ext(name) == ".json" {
			sidecars = append(sidecars, full)
		} else {
			media = append(media, full)
		}
	}
	return media, sidecars, nil
}
