package sidecar

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// editedTokens lists the localized "-edited" suffixes Google Photos Export
// appends to editor-produced variants, matched case-insensitively. English,
// German, French, Italian, Spanish, Portuguese, Japanese, Korean, and
// Chinese (Traditional and Simplified) forms are recognized, per spec §4.1.
var editedTokens = []string{
	"-edited",       // English
	"-bearbeitet",   // German
	"-modifié",      // French
	"-modificato",   // Italian
	"-editado",      // Spanish / Portuguese
	"-編集済み",         // Japanese
	"-수정됨",          // Korean
	"-編輯",           // Chinese (Traditional)
	"-编辑",           // Chinese (Simplified)
}

// knownMediaExtensions is the set of canonical extensions the matcher can
// expand a truncated extension into. Lowercase, no leading dot.
var knownMediaExtensions = []string{
	"jpg", "jpeg", "jpe", "png", "gif", "webp", "bmp", "tif", "tiff",
	"heic", "heif", "nef", "cr2", "cr3", "arw", "dng", "orf", "rw2", "raf",
	"mp4", "mov", "m4v", "avi", "mkv", "3gp", "3g2", "wmv", "mpg", "mpeg",
	"mts", "m2ts", "webm",
}

// canonicalSuffixWord is the full, untruncated supplemental-metadata word
// that Google's Takeout exporter truncates under path-length pressure.
const canonicalSuffixWord = "supplemental-metadata"

var endNumberRE = regexp.MustCompile(`\((\d+)\)$`)
var interiorNumberRE = regexp.MustCompile(`\((\d+)\)\.`)
var trailingNumberRE = regexp.MustCompile(`^(.*)\((\d+)\)$`)

// ParseMediaName decomposes a media filename per spec §4.1.
func ParseMediaName(base string) MediaName {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	editedToken := ""
	lowerStem := strings.ToLower(stem)
	for _, tok := range editedTokens {
		lowerTok := strings.ToLower(tok)
		if strings.HasSuffix(lowerStem, lowerTok) {
			// tok's byte length equals the matched suffix's byte length:
			// case-folding never changes byte length for these tokens'
			// scripts (ASCII hyphen-prefixed Latin or non-cased CJK).
			idx := len(stem) - len(tok)
			editedToken = stem[idx:]
			stem = stem[:idx]
			break
		}
	}

	pos := NoNumber
	numericSuffix := ""
	numberValue := 0

	if m := endNumberRE.FindStringSubmatch(stem); m != nil {
		pos = EndOfStem
		numericSuffix = "(" + m[1] + ")"
		numberValue, _ = strconv.Atoi(m[1])
	} else if m := interiorNumberRE.FindStringSubmatch(stem); m != nil {
		pos = InteriorDot
		numericSuffix = "(" + m[1] + ")"
		numberValue, _ = strconv.Atoi(m[1])
	}

	return MediaName{
		Base:          base,
		Stem:          stem,
		Ext:           ext,
		EditedToken:   editedToken,
		NumericSuffix: numericSuffix,
		NumberValue:   numberValue,
		NumberPos:     pos,
	}
}

// StripEditedToken returns the media name with its edited token removed,
// preserving any numeric suffix that sat outside the token (Phase 3).
// ParseMediaName already strips the token before locating the numeric
// suffix, so m.Stem/NumericSuffix/NumberPos already describe the stripped
// form — this just clears the token and recomputes Base to match.
func (m MediaName) StripEditedToken() MediaName {
	m.EditedToken = ""
	m.Base = m.Stem + "." + m.Ext
	return m
}

// LookupStem returns the stem to use as the index lookup key, per the two
// positional variants: the end-of-stem marker is stripped entirely (Google
// omits it from the sidecar's filename prefix), while the interior marker
// is left in place (Google keeps it verbatim in the sidecar's prefix).
func (m MediaName) LookupStem() string {
	switch m.NumberPos {
	case EndOfStem:
		return strings.TrimSuffix(m.Stem, m.NumericSuffix)
	default:
		return m.Stem
	}
}

// ParseSidecarName decomposes a sidecar filename per spec §4.1. ok is false
// if base does not end in ".json".
func ParseSidecarName(fullPath, base string) (SidecarEntry, bool) {
	if !strings.HasSuffix(strings.ToLower(base), ".json") {
		return SidecarEntry{}, false
	}
	name := base[:len(base)-len(".json")]

	numericSuffix := ""
	if m := trailingNumberRE.FindStringSubmatch(name); m != nil {
		numericSuffix = "(" + m[2] + ")"
		name = m[1]
	}

	mediaPart, family := stripSuffixFamily(name)

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(mediaPart), "."))
	stem := strings.TrimSuffix(mediaPart, filepath.Ext(mediaPart))

	return SidecarEntry{
		FullPath:      fullPath,
		Stem:          stem,
		ExtRaw:        ext,
		NumericSuffix: numericSuffix,
		SuffixFamily:  family,
	}, true
}

// stripSuffixFamily removes a trailing supplemental-metadata suffix family
// (full or truncated) or recognizes the bare legacy form (no suffix at
// all), returning the remaining media-filename prefix and a diagnostic
// label for the family that matched.
func stripSuffixFamily(name string) (mediaPart, family string) {
	// Longest match wins: try the full word, then each truncation, down to
	// a single character, then the lone-dot edge case, then bare legacy.
	for l := len(canonicalSuffixWord); l >= 1; l-- {
		candidate := "." + canonicalSuffixWord[:l]
		if strings.HasSuffix(name, candidate) {
			return name[:len(name)-len(candidate)], "supplemental-metadata(truncated:" + candidate + ")"
		}
	}
	if strings.HasSuffix(name, ".") {
		return name[:len(name)-1], "supplemental-metadata(truncated:.)"
	}
	return name, "legacy"
}

// NormalizeExt expands a possibly-truncated raw extension into the set of
// canonical extensions it could denote. If rawExt already matches a known
// extension exactly, or matches nothing known, the result is the single
// raw extension unchanged.
func NormalizeExt(rawExt string) []string {
	rawExt = strings.ToLower(rawExt)
	for _, known := range knownMediaExtensions {
		if known == rawExt {
			return []string{rawExt}
		}
	}
	var candidates []string
	for _, known := range knownMediaExtensions {
		if strings.HasPrefix(known, rawExt) && rawExt != "" {
			candidates = append(candidates, known)
		}
	}
	if len(candidates) == 0 {
		return []string{rawExt}
	}
	return candidates
}
