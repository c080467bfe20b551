package report

import (
	"math"
	"strconv"

	"github.com/ErichBSchulz/cecli-cats/internal/format"
)

// ColumnStats is the per-column overview produced by Describe. Mean, Std, Min
// and Max are empty for non-numeric columns.
type ColumnStats struct {
	Column string
	Count  int
	Unique int
	Mean   string
	Std    string
	Min    string
	Max    string
}

// Describe computes an overview of every column: non-empty count, distinct
// values, and moments for numeric columns.
func Describe(f *Frame, decimals int) []ColumnStats {
	out := make([]ColumnStats, 0, len(f.Columns))
	for _, col := range f.Columns {
		st := ColumnStats{Column: col}
		distinct := map[string]struct{}{}
		var vals []float64
		numeric := f.IsNumeric(col)

		for _, row := range f.Rows {
			v := row[col]
			if v == "" {
				continue
			}
			st.Count++
			distinct[v] = struct{}{}
			if numeric {
				n, _ := strconv.ParseFloat(v, 64)
				vals = append(vals, n)
			}
		}
		st.Unique = len(distinct)

		if len(vals) > 0 {
			sum, min, max := 0.0, vals[0], vals[0]
			for _, v := range vals {
				sum += v
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
			mean := sum / float64(len(vals))
			st.Mean = formatFloat(mean, decimals)
			st.Min = formatFloat(min, decimals)
			st.Max = formatFloat(max, decimals)
			if len(vals) > 1 {
				var ss float64
				for _, v := range vals {
					d := v - mean
					ss += d * d
				}
				st.Std = formatFloat(math.Sqrt(ss/float64(len(vals)-1)), decimals)
			}
		}
		out = append(out, st)
	}
	return out
}

// RenderDescribe lays the stats out as one row per column.
func RenderDescribe(stats []ColumnStats) string {
	t := format.NewTable()
	t.Header("column", "count", "unique", "mean", "std", "min", "max")
	t.RightAlign(2, 3, 4, 5, 6, 7)
	for _, st := range stats {
		t.Row(st.Column, st.Count, st.Unique, st.Mean, st.Std, st.Min, st.Max)
	}
	return t.String()
}
