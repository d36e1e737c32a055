// Package pathutil normalizes filesystem paths the way the catalog expects
// them to be stored: NFC-normalized, forward-slash separated, with hidden,
// system, and temporary files filtered out before they ever reach a work
// queue.
package pathutil

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ToNFC canonicalizes a path's Unicode form. Google Takeout archives produced
// on macOS frequently carry NFD-decomposed filenames; the catalog always
// stores NFC so that re-runs against the same tree compare equal.
func ToNFC(path string) string {
	return norm.NFC.String(path)
}

// ToSlash canonicalizes path separators to forward slashes regardless of the
// host OS, then applies NFC normalization.
func ToSlash(path string) string {
	return ToNFC(filepath.ToSlash(path))
}

// Relative computes root-relative, slash-canonicalized, NFC-normalized path.
func Relative(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return ToSlash(rel), nil
}

var systemNames = map[string]bool{
	"Thumbs.db":   true,
	".DS_Store":   true,
	"desktop.ini": true,
	".picasa.ini": true,
}

var tempSuffixes = []string{
	".tmp",
	".crdownload",
	".part",
	"~",
}

// IsHidden reports whether a base filename is a dotfile.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// IsSystem reports whether a base filename is a known OS/device sidecar
// artifact that is neither media nor a Google sidecar.
func IsSystem(name string) bool {
	return systemNames[name]
}

// IsTemp reports whether a base filename looks like a partial download or
// editor swap file.
func IsTemp(name string) bool {
	for _, suf := range tempSuffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}

// ShouldSkip reports whether a directory entry's base name should be
// excluded from discovery. It never classifies media by extension — MIME
// detection is the sole authority on file type; the only suffixes it
// matches are the temporary-file ones IsTemp recognizes.
func ShouldSkip(name string) bool {
	return IsHidden(name) || IsSystem(name) || IsTemp(name)
}
