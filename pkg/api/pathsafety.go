package api

import "strings"

// safePathSegment reports whether a single URL path segment (a page slug
// or a screenshot filename) is safe to join onto a base directory: no path
// separators and no ".." component, per spec.md §6's "400 on malformed
// slug/filename (path traversal)".
func safePathSegment(segment string) bool {
	if segment == "" || segment == "." || segment == ".." {
		return false
	}
	if strings.ContainsAny(segment, "/\\") {
		return false
	}
	return true
}
