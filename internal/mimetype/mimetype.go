// Package mimetype sniffs the MIME type of a file from its leading bytes
// only. There is deliberately no extension-based fallback: an unrecognized
// magic sequence is reported as the generic sentinel, never guessed from
// the filename. No third-party magic-byte sniffer appears anywhere in the
// retrieved reference corpus, so this builds on net/http.DetectContentType
// (stdlib) and layers a small table of additional signatures the stdlib
// sniffer does not recognize (HEIC/HEIF ISO-BMFF boxes, common RAW
// container prefixes).
package mimetype

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
)

// Unknown is returned when no signature, stdlib or local, matches.
const Unknown = "application/octet-stream"

const sniffLen = 512

type signature struct {
	mime   string
	offset int
	magic  []byte
}

// extraSignatures covers formats net/http.DetectContentType does not know
// about but that appear routinely in Google Photos Takeout exports.
var extraSignatures = []signature{
	{"image/heic", 4, []byte("ftypheic")},
	{"image/heic", 4, []byte("ftypheix")},
	{"image/heic", 4, []byte("ftyphevc")},
	{"image/heif", 4, []byte("ftypmif1")},
	{"image/heif", 4, []byte("ftypmsf1")},
	{"video/quicktime", 4, []byte("ftypqt")},
	{"video/mp4", 4, []byte("ftypisom")},
	{"video/mp4", 4, []byte("ftypmp42")},
	{"video/mp4", 4, []byte("ftypmp41")},
	{"video/3gpp", 4, []byte("ftyp3gp")},
	{"image/x-canon-cr2", 0, []byte("II*\x00\x10\x00\x00\x00CR")},
	{"image/x-adobe-dng", 0, []byte("II*\x00")}, // TIFF-based; broad, checked after the CR2 prefix
	{"image/x-nikon-nef", 0, []byte("MM\x00*")},
}

// Detect reads up to sniffLen bytes from the head of the file at path and
// returns a canonical MIME type, or Unknown if nothing matches.
func Detect(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("mimetype: open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return Unknown, nil
	}
	buf = buf[:n]

	return DetectBytes(buf), nil
}

// DetectBytes runs the same detection logic against an in-memory buffer
// (the first sniffLen bytes, or fewer), for use in tests and in-process
// pipelines that have already read the head of a file.
func DetectBytes(buf []byte) string {
	for _, sig := range extraSignatures {
		if matchAt(buf, sig.offset, sig.magic) {
			return sig.mime
		}
	}

	detected := http.DetectContentType(buf)
	if detected == Unknown || detected == "text/plain; charset=utf-8" {
		// DetectContentType falls back to octet-stream or treats unknown
		// binary as text in ambiguous cases; neither is a useful answer
		// for a media cataloger, so normalize both to the sentinel.
		return Unknown
	}
	return stripParams(detected)
}

func matchAt(buf []byte, offset int, magic []byte) bool {
	if offset+len(magic) > len(buf) {
		return false
	}
	return bytes.Equal(buf[offset:offset+len(magic)], magic)
}

func stripParams(mime string) string {
	for i, c := range mime {
		if c == ';' {
			return mime[:i]
		}
	}
	return mime
}

// IsImage reports whether the given canonical MIME type is an image type.
func IsImage(mime string) bool {
	return len(mime) >= 6 && mime[:6] == "image/"
}

// IsVideo reports whether the given canonical MIME type is a video type.
func IsVideo(mime string) bool {
	return len(mime) >= 6 && mime[:6] == "video/"
}
