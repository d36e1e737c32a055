package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverFilesPairsSidecars(t *testing.T) {
	root := t.TempDir()
	albumDir := filepath.Join(root, "Album1")
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		t.Fatal(err)
	}
	mediaPath := filepath.Join(albumDir, "IMG_1234.jpg")
	sidecarPath := filepath.Join(albumDir, "IMG_1234.jpg.supplemental-metadata.json")
	if err := os.WriteFile(mediaPath, []byte("fake jpeg bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sidecarPath, []byte(`{"title":"IMG_1234.jpg"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	albums, err := DiscoverAlbums(root)
	if err != nil {
		t.Fatal(err)
	}
	files, warnings, err := DiscoverFiles(root, albums, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d: warnings=%v", len(files), warnings)
	}
	f := files[0]
	if f.SidecarPath != sidecarPath {
		t.Errorf("SidecarPath = %q, want %q", f.SidecarPath, sidecarPath)
	}
	if f.RelativePath != "Album1/IMG_1234.jpg" {
		t.Errorf("RelativePath = %q", f.RelativePath)
	}
	if f.FileSize == 0 {
		t.Error("expected non-zero file size")
	}
}

func TestDiscoverFilesSkipsHiddenAndSystemFiles(t *testing.T) {
	root := t.TempDir()
	albumDir := filepath.Join(root, "Album1")
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{".hidden.jpg", "Thumbs.db", "partial.jpg.crdownload"} {
		if err := os.WriteFile(filepath.Join(albumDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	albums, err := DiscoverAlbums(root)
	if err != nil {
		t.Fatal(err)
	}
	files, _, err := DiscoverFiles(root, albums, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("expected 0 files, got %d: %+v", len(files), files)
	}
}

func TestDiscoverFilesEmptyRootWarns(t *testing.T) {
	root := t.TempDir()
	_, warnings, err := DiscoverFiles(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning for an album-less root")
	}
}
