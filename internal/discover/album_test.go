package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAlbumIDIsStableAndDeterministic(t *testing.T) {
	id1 := AlbumID("Vacation 2020")
	id2 := AlbumID("Vacation 2020")
	if id1 != id2 {
		t.Errorf("AlbumID must be deterministic: %v != %v", id1, id2)
	}
	if id1 == AlbumID("Vacation 2021") {
		t.Error("different folder paths must not collide")
	}
}

func TestDiscoverAlbumsUserTyped(t *testing.T) {
	root := t.TempDir()
	albumDir := filepath.Join(root, "Vacation 2020")
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		t.Fatal(err)
	}
	meta := `{"title": "Vacation 2020", "description": "fun trip", "access": "protected"}`
	if err := os.WriteFile(filepath.Join(albumDir, "metadata.json"), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}

	albums, err := DiscoverAlbums(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(albums) != 1 {
		t.Fatalf("expected 1 album, got %d", len(albums))
	}
	a := albums[0]
	if a.Type != AlbumUserTyped || a.Title != "Vacation 2020" || a.Status != AlbumPresent {
		t.Errorf("unexpected album: %+v", a)
	}
}

func TestDiscoverAlbumsYearTyped(t *testing.T) {
	root := t.TempDir()
	albumDir := filepath.Join(root, "Photos from 2019")
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		t.Fatal(err)
	}

	albums, err := DiscoverAlbums(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(albums) != 1 || albums[0].Type != AlbumYearTyped {
		t.Fatalf("expected 1 year-typed album, got %+v", albums)
	}
}

func TestDiscoverAlbumsMalformedMetadataFallsBackToFolderName(t *testing.T) {
	root := t.TempDir()
	albumDir := filepath.Join(root, "Broken Album")
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(albumDir, "metadata.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	albums, err := DiscoverAlbums(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(albums) != 1 {
		t.Fatalf("expected 1 album, got %d", len(albums))
	}
	a := albums[0]
	if a.Status != AlbumError || a.Title != "Broken Album" || a.ParseError == nil {
		t.Errorf("unexpected album: %+v", a)
	}
}

func TestDiscoverAlbumsNonExistentRoot(t *testing.T) {
	if _, err := DiscoverAlbums("/no/such/path/at/all"); err == nil {
		t.Error("expected error for non-existent root")
	}
}

func TestDiscoverAlbumsRootIsFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "notadir")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DiscoverAlbums(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestDiscoverAlbumsEmptyRoot(t *testing.T) {
	root := t.TempDir()
	if _, err := DiscoverAlbums(root); err == nil {
		t.Error("expected error for empty root (zero albums discovered)")
	}
}
