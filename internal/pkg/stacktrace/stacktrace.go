// Package stacktrace trims goroutine stack dumps down to this module's frames.
package stacktrace

import "strings"

// InternalPaths returns the "internal/...file.go:line" locations found in a
// raw stack trace, in call order.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, ".go:") {
			continue
		}

		loc, _, _ := strings.Cut(line, " ")
		_, rest, found := strings.Cut(loc, "/internal/")
		if !found {
			continue
		}

		paths = append(paths, "internal/"+rest)
	}

	return paths
}
