package sidecar

import "sort"

// Logger is the minimal structured-logging surface the matcher needs.
// *logrus.Entry satisfies it without an explicit adapter.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// mediaFile pairs a parsed MediaName with its originating full path.
type mediaFile struct {
	path string
	name MediaName
}

// MatchAlbum runs the four-phase matching algorithm (§4.1) over one album
// folder's media and sidecar files. mediaPaths and sidecarPaths are full
// (or root-relative) paths scoped to a single album folder; baseName
// extracts the filename component from a full path.
func MatchAlbum(mediaPaths, sidecarPaths []string, baseName func(string) string, log Logger) MatchResult {
	if log == nil {
		log = nopLogger{}
	}
	idx := NewIndex(sidecarPaths, baseName)

	var plain, edited []mediaFile
	for _, p := range mediaPaths {
		mn := ParseMediaName(baseName(p))
		mf := mediaFile{path: p, name: mn}
		if mn.HasEditedToken() {
			edited = append(edited, mf)
		} else {
			plain = append(plain, mf)
		}
	}
	// Deterministic processing order so exclusion-sensitive ambiguity
	// reporting does not depend on directory-walk ordering.
	sort.Slice(plain, func(i, j int) bool { return plain[i].path < plain[j].path })
	sort.Slice(edited, func(i, j int) bool { return edited[i].path < edited[j].path })

	result := MatchResult{Pairs: make(map[string]string)}

	for _, mf := range plain {
		matchPlain(idx, mf, &result, log)
	}
	for _, mf := range edited {
		matchEdited(idx, mf, &result, log)
	}

	result.UnmatchedSidecars = idx.UnmatchedSidecars()
	for _, p := range result.UnmatchedSidecars {
		log.Infof("sidecar: unmatched sidecar file %s", p)
	}
	for _, p := range result.UnmatchedMedia {
		log.Infof("sidecar: unmatched media file %s", p)
	}

	return result
}

// matchPlain runs Phases 1 and 2 for one non-edited media file, consuming
// the winning sidecar entry on success.
func matchPlain(idx *Index, mf mediaFile, result *MatchResult, log Logger) {
	exts := NormalizeExt(mf.name.Ext)

	if !mf.name.HasNumber() {
		// Phase 1: exact match, no duplicate suffix.
		candidates := idx.candidatesFor(mf.name.Stem, exts, false)
		pick, ambiguous := resolveUnsuffixed(candidates)
		switch {
		case pick != nil:
			pick.consumed = true
			result.Pairs[mf.path] = pick.FullPath
		case ambiguous:
			result.Ambiguities = append(result.Ambiguities, Ambiguity{
				MediaPath:  mf.path,
				Candidates: paths(candidates),
			})
			result.UnmatchedMedia = append(result.UnmatchedMedia, mf.path)
			log.Errorf("sidecar: ambiguous match for %s, candidates=%v", mf.path, paths(candidates))
		default:
			result.UnmatchedMedia = append(result.UnmatchedMedia, mf.path)
		}
		return
	}

	// Phase 2: numbered duplicates.
	stem := mf.name.LookupStem()
	candidates := idx.candidatesFor(stem, exts, false)
	pick, ambiguous := resolveNumbered(candidates, mf.name.NumericSuffix)
	switch {
	case pick != nil:
		pick.consumed = true
		result.Pairs[mf.path] = pick.FullPath
	case ambiguous:
		matching := filterByNumber(candidates, mf.name.NumericSuffix)
		result.Ambiguities = append(result.Ambiguities, Ambiguity{
			MediaPath:  mf.path,
			Candidates: paths(matching),
		})
		result.UnmatchedMedia = append(result.UnmatchedMedia, mf.path)
		log.Errorf("sidecar: ambiguous numbered match for %s, candidates=%v", mf.path, paths(matching))
	default:
		result.UnmatchedMedia = append(result.UnmatchedMedia, mf.path)
	}
}

// matchEdited runs Phase 3: strip the edited token, preserving any numeric
// suffix that sat outside it, then re-run Phases 1-2 on the stripped form.
// The match is non-exclusive — edited variants share the original's
// sidecar rather than competing for it — so already-consumed entries are
// eligible and are not re-marked.
func matchEdited(idx *Index, mf mediaFile, result *MatchResult, log Logger) {
	stripped := mf.name.StripEditedToken()
	exts := NormalizeExt(stripped.Ext)

	var candidates []*SidecarEntry
	var numericFilter string
	if !stripped.HasNumber() {
		candidates = idx.candidatesFor(stripped.Stem, exts, true)
		candidates = unsuffixedOnly(candidates)
	} else {
		numericFilter = stripped.NumericSuffix
		candidates = idx.candidatesFor(stripped.LookupStem(), exts, true)
		candidates = filterByNumber(candidates, numericFilter)
	}

	switch len(candidates) {
	case 1:
		result.Pairs[mf.path] = candidates[0].FullPath
	case 0:
		result.UnmatchedMedia = append(result.UnmatchedMedia, mf.path)
		log.Warnf("sidecar: edited variant %s has no matching original sidecar", mf.path)
	default:
		result.Ambiguities = append(result.Ambiguities, Ambiguity{
			MediaPath:  mf.path,
			Candidates: paths(candidates),
		})
		result.UnmatchedMedia = append(result.UnmatchedMedia, mf.path)
		log.Errorf("sidecar: ambiguous edited-variant match for %s, candidates=%v", mf.path, paths(candidates))
	}
}

// resolveUnsuffixed implements Phase 1's selection rule: unique candidate
// wins outright; if multiple candidates exist but exactly one carries no
// numeric suffix, that one wins; otherwise the lookup is ambiguous.
func resolveUnsuffixed(candidates []*SidecarEntry) (pick *SidecarEntry, ambiguous bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	if len(candidates) == 1 {
		return candidates[0], false
	}
	unsuffixed := unsuffixedOnly(candidates)
	if len(unsuffixed) == 1 {
		return unsuffixed[0], false
	}
	return nil, true
}

// resolveNumbered implements Phase 2's selection rule: a unique candidate
// whose numeric suffix matches wins; any other multiplicity is ambiguous.
func resolveNumbered(candidates []*SidecarEntry, want string) (pick *SidecarEntry, ambiguous bool) {
	matching := filterByNumber(candidates, want)
	if len(matching) == 1 {
		return matching[0], false
	}
	if len(matching) > 1 {
		return nil, true
	}
	return nil, false
}

func unsuffixedOnly(entries []*SidecarEntry) []*SidecarEntry {
	var out []*SidecarEntry
	for _, e := range entries {
		if e.NumericSuffix == "" {
			out = append(out, e)
		}
	}
	return out
}

func filterByNumber(entries []*SidecarEntry, want string) []*SidecarEntry {
	var out []*SidecarEntry
	for _, e := range entries {
		if e.NumericSuffix == want {
			out = append(out, e)
		}
	}
	return out
}

func paths(entries []*SidecarEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.FullPath
	}
	return out
}
