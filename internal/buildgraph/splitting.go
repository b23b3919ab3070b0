package buildgraph

import (
	"regexp"
	"sort"
	"strings"
)

// ChunkKind selects which chunks a cache group applies to.
type ChunkKind string

const (
	ChunksAsync   ChunkKind = "async"
	ChunksInitial ChunkKind = "initial"
	ChunksAll     ChunkKind = "all"
)

// CacheGroup is one code-splitting group.
type CacheGroup struct {
	Key      string
	Name     string
	Chunks   ChunkKind
	Test     *regexp.Regexp
	Priority int
}

func (g CacheGroup) applies(kind ChunkKind) bool {
	return g.Chunks == ChunksAll || kind == ChunksAll || g.Chunks == kind
}

// SplitChunks holds the cache groups of a graph.
type SplitChunks struct {
	CacheGroups []CacheGroup
}

// Set replaces all cache groups.
func (s *SplitChunks) Set(groups ...CacheGroup) {
	s.CacheGroups = append([]CacheGroup(nil), groups...)
}

// Group returns the cache group with key.
func (s SplitChunks) Group(key string) (CacheGroup, bool) {
	for _, g := range s.CacheGroups {
		if g.Key == key {
			return g, true
		}
	}
	return CacheGroup{}, false
}

// Classify returns the group a module at modulePath lands in for a chunk of
// the given kind. Higher priority wins when several groups match.
func (s SplitChunks) Classify(modulePath string, kind ChunkKind) (CacheGroup, bool) {
	groups := append([]CacheGroup(nil), s.CacheGroups...)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Priority > groups[j].Priority })
	for _, g := range groups {
		if !g.applies(kind) {
			continue
		}
		if g.Test == nil || g.Test.MatchString(modulePath) {
			return g, true
		}
	}
	return CacheGroup{}, false
}

// PathPattern matches a slash-separated path fragment using either path
// separator.
func PathPattern(fragment string) *regexp.Regexp {
	parts := strings.Split(fragment, "/")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(strings.Join(parts, `[\\/]`))
}

// DirPattern matches paths containing dir as a whole path segment.
func DirPattern(dir string) *regexp.Regexp {
	return regexp.MustCompile(`[\\/]` + regexp.QuoteMeta(dir) + `[\\/]`)
}
