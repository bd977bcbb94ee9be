// Package stacktrace trims runtime stack dumps to application frames.
package stacktrace

import "strings"

const internalDir = "/internal/"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a debug.Stack() dump, outermost call last. Frames outside internal/
// (runtime, stdlib, dependencies) are dropped.
func InternalPaths(stack []byte) []string {
	var paths []string

	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, internalDir) {
			continue
		}

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		loc := line
		if end := strings.IndexByte(line[idx:], ' '); end != -1 {
			loc = line[:idx+end]
		}

		paths = append(paths, loc[strings.Index(loc, internalDir)+1:])
	}

	return paths
}
