package mimetype

import "testing"

func TestDetectBytesJPEG(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	if got := DetectBytes(jpeg); got != "image/jpeg" {
		t.Errorf("got %q, want image/jpeg", got)
	}
}

func TestDetectBytesPNG(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	if got := DetectBytes(png); got != "image/png" {
		t.Errorf("got %q, want image/png", got)
	}
}

func TestDetectBytesHEIC(t *testing.T) {
	buf := make([]byte, 12)
	copy(buf[4:], []byte("ftypheic"))
	if got := DetectBytes(buf); got != "image/heic" {
		t.Errorf("got %q, want image/heic", got)
	}
}

func TestDetectBytesQuicktime(t *testing.T) {
	buf := make([]byte, 12)
	copy(buf[4:], []byte("ftypqt  "))
	if got := DetectBytes(buf); got != "video/quicktime" {
		t.Errorf("got %q, want video/quicktime", got)
	}
}

func TestDetectBytesUnknown(t *testing.T) {
	garbage := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	if got := DetectBytes(garbage); got != Unknown {
		t.Errorf("got %q, want %q", got, Unknown)
	}
}

func TestIsImageIsVideo(t *testing.T) {
	if !IsImage("image/jpeg") {
		t.Error("expected image/jpeg to be an image")
	}
	if !IsVideo("video/mp4") {
		t.Error("expected video/mp4 to be a video")
	}
	if IsImage(Unknown) || IsVideo(Unknown) {
		t.Error("unknown sentinel should be neither")
	}
}
