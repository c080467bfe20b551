// Package runscan locates benchmark run directories and the raw per-test
// result files nested within them, and resolves each result to its canonical
// fixture identity.
package runscan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
)

// ResultsFilename is the fixed name the harness gives every raw result file.
const ResultsFilename = ".aider.results.json"

// runNamePattern matches run directory names: a timestamp, a double dash,
// then any suffix. Example: 2025-12-23-04-35-48--unnamed.
var runNamePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}--.*$`)

// IsRunDirName reports whether name is a valid run directory name.
func IsRunDirName(name string) bool {
	return runNamePattern.MatchString(name)
}

// FindRunDir walks the ancestors of start (not including start itself) until
// one's name matches the run pattern, returning that directory's path. It
// returns "" when no ancestor matches before the filesystem root; such a
// result is unaddressable and callers skip it.
func FindRunDir(start string) string {
	cur := filepath.Dir(start)
	for {
		parent := filepath.Dir(cur)
		if parent == cur {
			return ""
		}
		if IsRunDirName(filepath.Base(cur)) {
			return cur
		}
		cur = parent
	}
}

// DiscoverResults recursively finds every raw result file under root. The
// returned paths are sorted so downstream output ordering is reproducible.
func DiscoverResults(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == ResultsFilename {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("runscan: scan %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}
