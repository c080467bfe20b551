// Package aggregate consumes raw per-test results scattered across run
// directories, validates and buckets them by (run, model), and writes one
// aggregated artifact per bucket.
package aggregate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ErichBSchulz/cecli-cats/internal/catalog"
	"github.com/ErichBSchulz/cecli-cats/internal/runscan"
)

// ArtifactFilename is the name of the per-bucket aggregated output file.
const ArtifactFilename = "results.json"

// Summary is the per-bucket roll-up written into each artifact.
type Summary struct {
	Count    int `json:"count"`
	Pass     int `json:"pass"`
	Rejected int `json:"rejected"`
}

// Bucket collects the validated results for one (run, model) pair plus a
// count of same-bucket records that failed required-field validation.
// Invariant: len(Results) + Rejected equals the records observed for this
// bucket before validation.
type Bucket struct {
	Run      string
	Model    string
	Results  []*runscan.Record
	Rejected int
}

// Summarize computes the artifact summary for the bucket. A result passes
// when at least one of its test outcomes is true.
func (b *Bucket) Summarize() Summary {
	pass := 0
	for _, r := range b.Results {
		if r.AnyPassed() {
			pass++
		}
	}
	return Summary{Count: len(b.Results), Pass: pass, Rejected: b.Rejected}
}

// Artifact is the JSON shape of one bucket's aggregated output.
type Artifact struct {
	Summary Summary           `json:"summary"`
	Results []*runscan.Record `json:"results"`
}

// Result is the outcome of one aggregation pass.
type Result struct {
	Buckets   []*Bucket
	Processed int // records admitted to a bucket
	Skipped   int // unaddressable or unparseable records, distinct from rejections
}

// Run scans root for raw result files and buckets them by (run, model).
//
// A result outside any recognizable run directory carries no bucket key and
// is skipped, as is one whose JSON body cannot be parsed. A parseable record
// missing required fields is rejected: counted against its bucket but never
// appended to the bucket's result sequence. Admitted records are enriched
// with their resolved identity and run-relative path.
func Run(root string, ix *catalog.Index, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	files, err := runscan.DiscoverResults(root)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	logger.Info("found result files", "count", len(files))

	buckets := make(map[string]*Bucket)
	res := &Result{}

	for _, file := range files {
		runDir := runscan.FindRunDir(file)
		if runDir == "" {
			logger.Debug("skipping result outside any run directory", "path", file)
			res.Skipped++
			continue
		}
		runName := filepath.Base(runDir)

		rec, err := runscan.LoadRecord(file)
		if err != nil {
			logger.Warn("failed to read result", "path", file, "error", err)
			res.Skipped++
			continue
		}

		// Bucket before validating: the model key is always derivable, so
		// rejections are attributed to the bucket they belong to.
		b := bucketFor(buckets, res, runName, rec.Model())

		if missing := rec.MissingRequired(); missing != nil {
			logger.Debug("rejecting result", "path", file, "missing", strings.Join(missing, ","))
			b.Rejected++
			continue
		}

		id := runscan.Resolve(file, runDir, ix, logger)
		if id.UUID != "" {
			rec.Set(runscan.KeyUUID, id.UUID)
		}
		if id.Hash != "" {
			rec.Set(runscan.KeyHash, id.Hash)
		}
		rec.Set(runscan.KeyRelPath, runRelativePath(runDir, file))

		b.Results = append(b.Results, rec)
		res.Processed++
	}

	sort.Slice(res.Buckets, func(i, j int) bool {
		if res.Buckets[i].Run != res.Buckets[j].Run {
			return res.Buckets[i].Run < res.Buckets[j].Run
		}
		return res.Buckets[i].Model < res.Buckets[j].Model
	})
	return res, nil
}

func bucketFor(buckets map[string]*Bucket, res *Result, run, model string) *Bucket {
	key := run + "\x00" + model
	if b, ok := buckets[key]; ok {
		return b
	}
	b := &Bucket{Run: run, Model: model}
	buckets[key] = b
	res.Buckets = append(res.Buckets, b)
	return b
}

func runRelativePath(runDir, resultPath string) string {
	testDir := filepath.Dir(resultPath)
	rel, err := filepath.Rel(runDir, testDir)
	if err != nil {
		return testDir
	}
	return filepath.ToSlash(rel)
}

// WriteArtifacts writes one artifact per bucket to
// <outDir>/<model>/<run>/results.json, overwriting previous output. A write
// failure for one bucket is logged and does not abort the others; the number
// of artifacts written is returned.
func WriteArtifacts(outDir string, res *Result, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}

	written := 0
	for _, b := range res.Buckets {
		targetDir := filepath.Join(outDir, pathSegment(b.Model), b.Run)
		if err := writeArtifact(targetDir, b); err != nil {
			logger.Error("failed to write bucket artifact", "run", b.Run, "model", b.Model, "error", err)
			continue
		}
		logger.Debug("saved artifact", "path", filepath.Join(targetDir, ArtifactFilename))
		written++
	}
	return written
}

func writeArtifact(targetDir string, b *Bucket) error {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("aggregate: create bucket dir: %w", err)
	}
	results := b.Results
	if results == nil {
		results = []*runscan.Record{}
	}
	data, err := json.MarshalIndent(Artifact{Summary: b.Summarize(), Results: results}, "", "  ")
	if err != nil {
		return fmt.Errorf("aggregate: marshal artifact: %w", err)
	}
	path := filepath.Join(targetDir, ArtifactFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("aggregate: write artifact: %w", err)
	}
	return nil
}

// pathSegment makes an identifier safe to use as a single directory name.
// Model identifiers may contain path separators (openrouter/foo); those are
// flattened so one bucket never nests under another. Other characters such
// as ':' pass through untouched.
func pathSegment(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, string(os.PathSeparator), "_")
	return s
}
