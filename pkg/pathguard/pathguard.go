// Package pathguard validates externally supplied filesystem paths against an
// allow-list of library roots. Every path that arrives as a raw request
// parameter must pass Allowed before anything opens it; paths that come out of
// the database were written by the scanner and are trusted.
package pathguard

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve canonicalizes a path: absolute, cleaned, and with symlinks
// evaluated when the path exists. Relative traversal segments are collapsed
// here, so a "../../etc/passwd" suffix can't escape the containment check.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			// Nonexistent paths can't be symlink-resolved; the cleaned
			// absolute form is still safe to containment-check.
			return abs, nil
		}
		return "", err
	}
	return real, nil
}

// Allowed reports whether requested resolves inside at least one of the
// allowed roots. The prefix check is boundary-aware: "/lib/manga2" is not
// inside "/lib/manga".
func Allowed(requested string, roots []string) bool {
	resolved, err := Resolve(requested)
	if err != nil {
		return false
	}

	for _, root := range roots {
		resolvedRoot, err := Resolve(root)
		if err != nil {
			continue
		}
		if contains(resolvedRoot, resolved) {
			return true
		}
	}
	return false
}

func contains(root, path string) bool {
	if path == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}
