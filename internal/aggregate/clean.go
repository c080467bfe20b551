package aggregate

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ErichBSchulz/cecli-cats/internal/runscan"
)

// FindBrokenRuns returns source run directories whose raw results are 100%
// rejected or unreadable. Runs with no results at all are not broken, just
// empty.
func FindBrokenRuns(root string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	files, err := runscan.DiscoverResults(root)
	if err != nil {
		return nil, err
	}

	type tally struct{ total, bad int }
	tallies := make(map[string]*tally)
	for _, file := range files {
		runDir := runscan.FindRunDir(file)
		if runDir == "" {
			continue
		}
		t := tallies[runDir]
		if t == nil {
			t = &tally{}
			tallies[runDir] = t
		}
		t.total++
		rec, err := runscan.LoadRecord(file)
		if err != nil || rec.MissingRequired() != nil {
			t.bad++
		}
	}

	var broken []string
	for runDir, t := range tallies {
		if t.total > 0 && t.bad == t.total {
			broken = append(broken, runDir)
		}
	}
	sort.Strings(broken)
	return broken, nil
}

// FindBrokenBuckets returns aggregated bucket directories whose artifact
// records rejections but no admitted results. Directories appearing under
// more than one search root are reported once.
func FindBrokenBuckets(logger *slog.Logger, roots ...string) []string {
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]bool)
	var broken []string
	for _, root := range roots {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return filepath.SkipAll
				}
				return nil
			}
			if d.IsDir() || d.Name() != ArtifactFilename {
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			if seen[abs] {
				return nil
			}
			seen[abs] = true

			data, err := os.ReadFile(path)
			if err != nil {
				logger.Debug("failed to read artifact", "path", path, "error", err)
				return nil
			}
			var a Artifact
			if err := json.Unmarshal(data, &a); err != nil {
				logger.Debug("failed to parse artifact", "path", path, "error", err)
				return nil
			}
			if a.Summary.Rejected > 0 && a.Summary.Count == 0 {
				broken = append(broken, filepath.Dir(path))
			}
			return nil
		})
	}
	sort.Strings(broken)
	return broken
}
