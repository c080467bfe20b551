package catalog

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// LoadIndex reads the persisted fixture index table. A missing, unreadable,
// or malformed file yields an empty index: legacy resolution then always
// misses, but the pipeline keeps running. That policy is deliberate — the
// index is an accelerator for legacy fixtures, never a hard dependency.
func LoadIndex(path string, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to open index", "path", path, "error", err)
		}
		return NewIndex(nil)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		logger.Warn("failed to parse index", "path", path, "error", err)
		return NewIndex(nil)
	}
	if len(rows) < 2 {
		return NewIndex(nil)
	}

	header := rows[0]
	var entries []*Entry
	for _, row := range rows[1:] {
		e := &Entry{}
		for i, col := range header {
			if i < len(row) {
				e.setField(col, row[i])
			}
		}
		entries = append(entries, e)
	}
	return NewIndex(entries)
}

// WriteIndex serializes entries to a CSV table at path, creating parent
// directories as needed. Columns are the union of every key observed across
// all entries: the well-known columns first in their fixed order, then any
// remaining keys alphabetically. The sets list is joined with ";".
func WriteIndex(path string, entries []*Entry) error {
	columns := indexColumns(entries)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("catalog: create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("catalog: create index: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("catalog: write index header: %w", err)
	}
	row := make([]string, len(columns))
	for _, e := range entries {
		for i, col := range columns {
			row[i] = e.field(col)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("catalog: write index row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("catalog: flush index: %w", err)
	}
	return nil
}

// indexColumns unites the keys of all entries into one consistent header.
func indexColumns(entries []*Entry) []string {
	observed := make(map[string]bool)
	for _, e := range entries {
		for _, col := range priorityColumns {
			if e.field(col) != "" {
				observed[col] = true
			}
		}
		for k := range e.Extra {
			observed[k] = true
		}
	}

	var columns []string
	for _, col := range priorityColumns {
		if observed[col] {
			columns = append(columns, col)
			delete(observed, col)
		}
	}
	rest := make([]string, 0, len(observed))
	for k := range observed {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}
