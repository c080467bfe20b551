// Package consolidate flattens every aggregated artifact into a single
// rectangular table: scalar fields copied verbatim, outcome lists rendered as
// pass/fail strings, fixture tags exploded into indicator columns, and
// identity cross-checked against the fixture index.
package consolidate

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ErichBSchulz/cecli-cats/internal/aggregate"
	"github.com/ErichBSchulz/cecli-cats/internal/catalog"
	"github.com/ErichBSchulz/cecli-cats/internal/runscan"
)

// TagJoin selects how fixture tags join onto consolidated rows.
type TagJoin int

const (
	// TagJoinIndicators emits one zero-filled set_<tag> column per distinct
	// tag plus the comma-joined sets column. The default.
	TagJoinIndicators TagJoin = iota
	// TagJoinSetsOnly suppresses the indicator columns and keeps only the
	// joined sets column.
	TagJoinSetsOnly
)

// Options configures a consolidation pass.
type Options struct {
	TagJoin TagJoin
	Logger  *slog.Logger
}

// indicatorPrefix names the per-tag membership columns.
const indicatorPrefix = "set_"

// excludedFields are never copied verbatim into a row: list-valued or
// specially-handled fields.
var excludedFields = map[string]bool{
	"tests_outcomes": true,
	"chat_hashes":    true,
	runscan.KeyUUID:  true,
	runscan.KeyHash:  true,
	"source":         true,
}

// priorityColumns lead the output schema in this fixed order.
var priorityColumns = []string{
	"run", "model", "language", "testcase", "uuid", "hash",
	"tests_outcomes", "cost", "duration", "sets", "notes",
}

// Table is the consolidated output: a fixed column schema and one row per
// validated raw result. Every column has a value in every row.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Run reads every aggregated artifact under resultsDir and flattens it.
// A single unreadable or malformed artifact is logged and excluded; only a
// failure to walk the tree is an error.
func Run(resultsDir string, ix *catalog.Index, opts Options) (*Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var artifactPaths []string
	err := filepath.WalkDir(resultsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == aggregate.ArtifactFilename {
			artifactPaths = append(artifactPaths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("consolidate: scan %s: %w", resultsDir, err)
	}
	sort.Strings(artifactPaths)
	logger.Info("found artifacts", "count", len(artifactPaths))

	allTags := make(map[string]bool)
	var rows []map[string]string

	for _, path := range artifactPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read artifact", "path", path, "error", err)
			continue
		}
		var artifact aggregate.Artifact
		if err := json.Unmarshal(data, &artifact); err != nil {
			logger.Warn("failed to parse artifact", "path", path, "error", err)
			continue
		}

		// The run name is the artifact's immediate parent directory.
		runName := filepath.Base(filepath.Dir(path))
		for _, rec := range artifact.Results {
			rows = append(rows, buildRow(runName, rec, ix, allTags, opts.TagJoin))
		}
	}

	return finalize(rows, allTags, opts.TagJoin), nil
}

// buildRow flattens one result record, cross-validating its identity against
// the index and collecting tag membership.
func buildRow(runName string, rec *runscan.Record, ix *catalog.Index, allTags map[string]bool, tagJoin TagJoin) map[string]string {
	row := map[string]string{"run": runName}

	for k, v := range rec.Fields {
		if excludedFields[k] || !isScalar(v) {
			continue
		}
		row[k] = formatScalar(v)
	}

	if outcomes, ok := rec.Outcomes(); ok {
		var sb strings.Builder
		for _, passed := range outcomes {
			if passed {
				sb.WriteByte('P')
			} else {
				sb.WriteByte('F')
			}
		}
		row["tests_outcomes"] = sb.String()
	} else if v, has := rec.Fields["tests_outcomes"]; has {
		row["tests_outcomes"] = formatScalar(v)
	} else {
		row["tests_outcomes"] = ""
	}

	uuid := rec.StringOr(runscan.KeyUUID, "")
	hash := rec.StringOr(runscan.KeyHash, "")
	row["uuid"] = uuid
	row["hash"] = hash

	var notes []string
	var tags []string

	if uuid == "" {
		notes = append(notes, "No UUID in result")
	} else if entry, ok := ix.ByUUID(uuid); ok {
		if entry.Hash != "" && hash != "" && entry.Hash != hash {
			notes = append(notes, fmt.Sprintf("Hash mismatch (index: %.8s...)", entry.Hash))
		}
		if lang, has := row["language"]; !has || lang == "unknown" {
			if entry.Language != "" {
				row["language"] = entry.Language
			} else {
				row["language"] = "unknown"
			}
		}
		tags = entry.Sets
	} else {
		notes = append(notes, "UUID not found in index")
	}

	row["sets"] = strings.Join(tags, ",")
	for _, tag := range tags {
		allTags[tag] = true
		if tagJoin == TagJoinIndicators {
			row[indicatorPrefix+tag] = "1"
		}
	}
	row["notes"] = strings.Join(notes, "; ")

	return row
}

// finalize computes the column union over all rows, zero-fills indicator
// columns, and fixes the output ordering: priority columns first, remaining
// non-indicator columns alphabetically, then indicator columns alphabetically
// by tag.
func finalize(rows []map[string]string, allTags map[string]bool, tagJoin TagJoin) *Table {
	fieldnames := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			fieldnames[k] = true
		}
	}

	var indicatorCols []string
	if tagJoin == TagJoinIndicators {
		for tag := range allTags {
			indicatorCols = append(indicatorCols, indicatorPrefix+tag)
		}
		sort.Strings(indicatorCols)
		for _, col := range indicatorCols {
			fieldnames[col] = true
			for _, row := range rows {
				if _, ok := row[col]; !ok {
					row[col] = "0"
				}
			}
		}
	}

	var columns []string
	taken := make(map[string]bool)
	for _, col := range priorityColumns {
		if fieldnames[col] {
			columns = append(columns, col)
			taken[col] = true
		}
	}
	var others []string
	for col := range fieldnames {
		if !taken[col] && !strings.HasPrefix(col, indicatorPrefix) {
			others = append(others, col)
		}
	}
	sort.Strings(others)
	columns = append(columns, others...)
	columns = append(columns, indicatorCols...)

	return &Table{Columns: columns, Rows: rows}
}

// WriteCSV writes the table to path, fully replacing any previous output.
func WriteCSV(path string, tbl *Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("consolidate: create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("consolidate: create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tbl.Columns); err != nil {
		return fmt.Errorf("consolidate: write header: %w", err)
	}
	record := make([]string, len(tbl.Columns))
	for _, row := range tbl.Rows {
		for i, col := range tbl.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("consolidate: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("consolidate: flush: %w", err)
	}
	return nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return false
	default:
		return true
	}
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val)
	}
}
