// Package sidecar implements the Google Takeout sidecar filename grammar:
// parsing, the per-album index, and the four-phase matching algorithm with
// exclusion described in the specification's sidecar matcher component.
package sidecar

// NumericPosition records where a duplicate-marker "(N)" was found inside a
// media stem, since the two positions are handled differently when forming
// the lookup key against the sidecar index.
type NumericPosition int

const (
	// NoNumber means the stem carries no "(N)" marker at all.
	NoNumber NumericPosition = iota
	// EndOfStem means the marker is the literal suffix of the stem: "(N)$".
	EndOfStem
	// InteriorDot means the marker sits immediately before a period inside
	// the stem: "(N)." — Google leaves this form embedded verbatim when it
	// names the corresponding sidecar.
	InteriorDot
)

// MediaName is a media filename decomposed per the spec's grammar.
type MediaName struct {
	Base          string          // original base filename, unchanged
	Stem          string          // filename without ext, without edited token
	Ext           string          // media extension, lowercase, no leading dot
	EditedToken   string          // the localized token matched, or ""
	NumericSuffix string          // "(N)" literal text, or ""
	NumberValue   int             // parsed N, or 0 if NumericSuffix == ""
	NumberPos     NumericPosition // where the marker was found
}

// HasEditedToken reports whether the media file is an edited variant.
func (m MediaName) HasEditedToken() bool { return m.EditedToken != "" }

// HasNumber reports whether the media file carries a duplicate marker.
func (m MediaName) HasNumber() bool { return m.NumberPos != NoNumber }

// SidecarEntry is one parsed sidecar file, a value in the per-album index.
type SidecarEntry struct {
	FullPath      string
	Stem          string // the media-name-prefix portion, verbatim
	ExtRaw        string // media extension as it literally appears, lowercase
	NumericSuffix string // "(N)" appearing just before ".json", or ""
	SuffixFamily  string // canonicalized family name, for diagnostics only

	consumed bool
}

// indexKey is the per-album lookup tuple (stem, media_ext_normalized). The
// album folder itself is the index's scope, so it is not part of the key.
type indexKey struct {
	stem string
	ext  string
}

// MatchResult is the outcome of matching one album folder's files.
type MatchResult struct {
	// Pairs maps media file path to its matched sidecar path.
	Pairs map[string]string
	// UnmatchedMedia holds media files for which no sidecar was found.
	UnmatchedMedia []string
	// UnmatchedSidecars holds sidecar files that were never consumed.
	UnmatchedSidecars []string
	// Ambiguities records Phase 1/2 lookups with multiple candidates and no
	// unique winner, for ERROR-level reporting.
	Ambiguities []Ambiguity
}

// Ambiguity describes one unresolved multi-candidate sidecar lookup.
type Ambiguity struct {
	MediaPath  string
	Candidates []string
}
