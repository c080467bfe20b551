// Package report computes statistics over a consolidated results CSV and the
// fixture index, and renders them as tables.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Frame is a consolidated CSV loaded column-wise for analysis. Values stay as
// strings; numeric interpretation happens per column on demand.
type Frame struct {
	Columns []string
	Rows    []map[string]string
}

// LoadFrame reads a consolidated results CSV into a Frame.
func LoadFrame(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("report: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Frame{}, nil
	}

	fr := &Frame{Columns: records[0]}
	for _, rec := range records[1:] {
		row := make(map[string]string, len(fr.Columns))
		for i, col := range fr.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		fr.Rows = append(fr.Rows, row)
	}
	return fr, nil
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(col string) bool {
	for _, c := range f.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// IsNumeric reports whether every non-empty value in the column parses as a
// number, and the column has at least one such value.
func (f *Frame) IsNumeric(col string) bool {
	seen := false
	for _, row := range f.Rows {
		v := row[col]
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// NumericColumns returns the frame's numeric columns in header order.
func (f *Frame) NumericColumns() []string {
	var out []string
	for _, c := range f.Columns {
		if f.IsNumeric(c) {
			out = append(out, c)
		}
	}
	return out
}

// DerivePassed adds a "passed" column (1/0) from tests_outcomes: a run passed
// if any attempt did. No-op when tests_outcomes is absent.
func (f *Frame) DerivePassed() {
	if !f.Has("tests_outcomes") || f.Has("passed") {
		return
	}
	f.Columns = append(f.Columns, "passed")
	for _, row := range f.Rows {
		if strings.Contains(row["tests_outcomes"], "P") {
			row["passed"] = "1"
		} else {
			row["passed"] = "0"
		}
	}
}

// RawDecimals disables rounding in rendered numbers.
const RawDecimals = -1

// formatFloat renders v with the given number of decimal places, or the
// shortest exact representation when decimals is RawDecimals.
func formatFloat(v float64, decimals int) string {
	if decimals < 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
