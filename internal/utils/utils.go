// Package utils contains general helper functions used across gpt-repo-stream.
package utils

import (
	"path/filepath"
	"strings"
)

const pathSegmentSeparator = "/"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathUnder returns fullPath relative to root in forward-slash form.
// The boolean is false when fullPath does not lie under root or equals it.
func RelativePathUnder(fullPath, root string) (string, bool) {
	absolutePath, pathErr := filepath.Abs(fullPath)
	if pathErr != nil {
		return EmptyString, false
	}
	absoluteRoot, rootErr := filepath.Abs(root)
	if rootErr != nil {
		return EmptyString, false
	}
	relativePath, relErr := filepath.Rel(absoluteRoot, absolutePath)
	if relErr != nil || relativePath == "." {
		return EmptyString, false
	}
	if relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return EmptyString, false
	}
	return filepath.ToSlash(relativePath), true
}

// HasPathSuffix reports whether the trailing components of path equal the
// components of suffix. "a/b/output.txt" ends with "output.txt" and with
// "b/output.txt" but not with "put.txt".
func HasPathSuffix(path, suffix string) bool {
	pathSegments := splitPathSegments(path)
	suffixSegments := splitPathSegments(suffix)
	if len(suffixSegments) == 0 || len(suffixSegments) > len(pathSegments) {
		return false
	}
	offset := len(pathSegments) - len(suffixSegments)
	for segmentIndex, suffixSegment := range suffixSegments {
		if pathSegments[offset+segmentIndex] != suffixSegment {
			return false
		}
	}
	return true
}

// HasPathPrefix reports whether the leading components of path equal the
// components of prefix.
func HasPathPrefix(path, prefix string) bool {
	pathSegments := splitPathSegments(path)
	prefixSegments := splitPathSegments(prefix)
	if len(prefixSegments) == 0 || len(prefixSegments) > len(pathSegments) {
		return false
	}
	if filepath.IsAbs(path) != filepath.IsAbs(prefix) {
		return false
	}
	for segmentIndex, prefixSegment := range prefixSegments {
		if pathSegments[segmentIndex] != prefixSegment {
			return false
		}
	}
	return true
}

func splitPathSegments(path string) []string {
	normalizedPath := filepath.ToSlash(filepath.Clean(path))
	var segments []string
	for _, segment := range strings.Split(normalizedPath, pathSegmentSeparator) {
		if segment == EmptyString || segment == "." {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}
