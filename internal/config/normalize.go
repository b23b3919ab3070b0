package config

import (
	"regexp"
	"strings"
)

var remoteURL = regexp.MustCompile(`^https?://`)

// NormalizeBase enforces a leading slash and strips trailing slashes from a
// site base path. The empty string and the root "/" both normalize to "".
// Applying it twice yields the same result as applying it once.
func NormalizeBase(base string) string {
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimRight(base, "/")
}

// IsRemote reports whether a feed location is an absolute http(s) URL.
func IsRemote(location string) bool {
	return remoteURL.MatchString(location)
}

// OutputRelative turns a site path into a path relative to the output root.
func OutputRelative(sitePath string) string {
	return strings.TrimPrefix(sitePath, "/")
}
