package theme

import (
	"sort"
	"sync"
)

var (
	regMu sync.RWMutex
	reg   = map[string]Theme{}
)

// Register registers a Theme under its package identifier. The first
// registration for a package wins.
func Register(t Theme) {
	if t == nil {
		return
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, ok := reg[t.Package()]; !ok {
		reg[t.Package()] = t
	}
}

// Get retrieves a theme by package identifier, or nil.
func Get(pkg string) Theme {
	regMu.RLock()
	defer regMu.RUnlock()
	return reg[pkg]
}

// Packages lists registered package identifiers in sorted order.
func Packages() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(reg))
	for pkg := range reg {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}
