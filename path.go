package store

import "strings"

// Normalize canonicalizes a slash-delimited path: leading, trailing, and
// duplicate separators are dropped and the remaining segments rejoined. The
// empty string addresses the root. Every read and write path goes through
// this single routine so lookups and commits can never disagree on spelling.
func Normalize(path string) string {
	segments := Split(path)
	if len(segments) == 0 {
		return ""
	}
	return strings.Join(segments, "/")
}

// Split breaks a path into its non-empty segments. A root path yields nil.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, part)
	}
	if len(segments) == 0 {
		return nil
	}
	return segments
}

// Join composes segments back into a normalized path.
func Join(segments ...string) string {
	return Normalize(strings.Join(segments, "/"))
}

// HasPrefix reports whether prefix is a segment-wise ancestor of (or equal
// to) path. The comparison is per segment, never a raw string prefix test,
// so "user" does not match "user2/name". Both arguments are normalized
// before comparing. The empty prefix matches every path.
func HasPrefix(path, prefix string) bool {
	prefixSegments := Split(prefix)
	if len(prefixSegments) == 0 {
		return true
	}
	pathSegments := Split(path)
	if len(prefixSegments) > len(pathSegments) {
		return false
	}
	for i, segment := range prefixSegments {
		if pathSegments[i] != segment {
			return false
		}
	}
	return true
}
