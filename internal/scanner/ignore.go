package scanner

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnorePattern represents a single gitignore-style pattern.
type IgnorePattern struct {
	pattern     string // Original pattern
	glob        string // doublestar pattern matched against slash-separated paths
	isNegation  bool   // True if pattern starts with !
	isDirectory bool   // True if pattern ends with /
}

// ParseIgnorePattern parses a gitignore-style pattern string.
func ParseIgnorePattern(pattern string) IgnorePattern {
	p := IgnorePattern{pattern: pattern}

	if strings.HasPrefix(pattern, "!") {
		p.isNegation = true
		pattern = pattern[1:]
	}

	if strings.HasSuffix(pattern, "/") {
		p.isDirectory = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	if pattern == "" {
		return p
	}

	// A leading slash anchors the pattern at the root, as does any inner slash.
	// Otherwise the pattern may match at any depth.
	switch {
	case strings.HasPrefix(pattern, "/"):
		p.glob = pattern[1:]
	case strings.Contains(pattern, "/"):
		p.glob = pattern
	default:
		p.glob = "**/" + pattern
	}

	return p
}

// Valid reports whether the pattern is well formed.
func (p IgnorePattern) Valid() bool {
	return p.glob != "" && doublestar.ValidatePattern(p.glob)
}

// Match checks if the given path matches this ignore pattern. A path also matches
// when one of its parent directories does. Negation is left to the caller.
func (p IgnorePattern) Match(path string) bool {
	segments := strings.Split(filepath.ToSlash(path), "/")

	limit := len(segments)
	if p.isDirectory {
		// Only directories can match; the last segment is the file itself.
		limit--
	}
	for i := 1; i <= limit; i++ {
		if ok, _ := doublestar.Match(p.glob, strings.Join(segments[:i], "/")); ok {
			return true
		}
	}
	return false
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.isNegation
}

// String returns the pattern as written.
func (p IgnorePattern) String() string {
	return p.pattern
}
