package sidecar

// Index is the per-album-folder sidecar lookup structure. The index is
// always album-scoped: callers build one Index per album folder, so
// cross-album matches are structurally impossible.
type Index struct {
	entries map[indexKey][]*SidecarEntry
	all     []*SidecarEntry
}

// NewIndex builds an Index from the sidecar filenames found in one album
// folder. fullPaths are absolute (or root-relative) paths; only the base
// name is parsed.
func NewIndex(fullPaths []string, baseName func(string) string) *Index {
	idx := &Index{entries: make(map[indexKey][]*SidecarEntry)}
	for _, p := range fullPaths {
		entry, ok := ParseSidecarName(p, baseName(p))
		if !ok {
			continue
		}
		e := entry
		idx.all = append(idx.all, &e)
		for _, ext := range NormalizeExt(e.ExtRaw) {
			key := indexKey{stem: e.Stem, ext: ext}
			idx.entries[key] = append(idx.entries[key], &e)
		}
	}
	return idx
}

// candidatesFor returns sidecar entries sharing the given (stem, ext) key,
// across every extension the media file's raw extension could normalize
// to. Consumed entries are excluded unless includeConsumed is set — Phase
// 3 (edited variants) sets it, since an edited variant shares its
// original's sidecar rather than competing for it.
func (idx *Index) candidatesFor(stem string, exts []string, includeConsumed bool) []*SidecarEntry {
	seen := make(map[*SidecarEntry]bool)
	var out []*SidecarEntry
	for _, ext := range exts {
		for _, e := range idx.entries[indexKey{stem: stem, ext: ext}] {
			if (e.consumed && !includeConsumed) || seen[e] {
				continue
			}
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// UnmatchedSidecars returns the full paths of sidecar entries never
// consumed by a successful pairing.
func (idx *Index) UnmatchedSidecars() []string {
	var out []string
	for _, e := range idx.all {
		if !e.consumed {
			out = append(out, e.FullPath)
		}
	}
	return out
}
