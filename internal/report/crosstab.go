package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ErichBSchulz/cecli-cats/internal/format"
)

// Metric is the sum/mean/count aggregate of one outcome column within a group.
// Count tallies only the rows whose value parsed as a number.
type Metric struct {
	Sum   float64
	Mean  float64
	Count int
}

// Group is one bucket of a crosstab: the dimension value, the bucket size, and
// one Metric per requested outcome column.
type Group struct {
	Key     string
	Size    int
	Metrics map[string]Metric
}

// DefaultDimensions picks grouping columns by verbosity: model alone when
// quiet, the usual model/language/edit_format triple otherwise, with outcome
// strings and indicator columns at -v and every numeric column at -vv.
func DefaultDimensions(f *Frame, quiet bool, verbose int) []string {
	var candidates []string
	if quiet {
		candidates = []string{"model"}
	} else {
		candidates = []string{"model", "language", "edit_format"}
	}
	if verbose >= 1 {
		candidates = append(candidates, "tests_outcomes")
		for _, c := range f.Columns {
			if strings.HasPrefix(c, "set_") {
				candidates = append(candidates, c)
			}
		}
	}
	if verbose >= 2 {
		candidates = append(candidates, f.NumericColumns()...)
	}
	return filterColumns(f, candidates)
}

// DefaultOutcomes picks the metric columns by verbosity.
func DefaultOutcomes(f *Frame, quiet bool, verbose int) []string {
	var candidates []string
	if f.Has("passed") {
		candidates = append(candidates, "passed")
	}
	if !quiet {
		candidates = append(candidates,
			"prompt_tokens", "cost", "duration", "completion_tokens", "thinking_tokens")
	}
	if verbose >= 1 {
		candidates = append(candidates,
			"indentation_errors", "lazy_comments", "map_tokens",
			"num_error_outputs", "num_exhausted_context_windows",
			"num_malformed_responses", "num_user_asks", "reasoning_effort",
			"syntax_errors", "test_timeouts")
	}
	if verbose >= 2 {
		candidates = append(candidates, f.NumericColumns()...)
	}
	return filterColumns(f, candidates)
}

func filterColumns(f *Frame, candidates []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, c := range candidates {
		if _, dup := seen[c]; dup || !f.Has(c) {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Crosstab groups the frame by one dimension and aggregates each outcome
// column. Groups come back sorted by key.
func Crosstab(f *Frame, dim string, outcomes []string) []Group {
	byKey := map[string]*Group{}
	for _, row := range f.Rows {
		key := row[dim]
		g, ok := byKey[key]
		if !ok {
			g = &Group{Key: key, Metrics: map[string]Metric{}}
			byKey[key] = g
		}
		g.Size++
		for _, col := range outcomes {
			v, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				continue
			}
			m := g.Metrics[col]
			m.Sum += v
			m.Count++
			g.Metrics[col] = m
		}
	}

	groups := make([]Group, 0, len(byKey))
	for _, g := range byKey {
		for col, m := range g.Metrics {
			if m.Count > 0 {
				m.Mean = m.Sum / float64(m.Count)
				g.Metrics[col] = m
			}
		}
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// RenderCrosstab lays one dimension's groups out with sum/mean/count columns
// per outcome and a trailing group_count.
func RenderCrosstab(dim string, outcomes []string, groups []Group, decimals int) string {
	t := format.NewTable()
	header := []string{dim}
	for _, col := range outcomes {
		header = append(header, col+"_sum", col+"_mean", col+"_count")
	}
	header = append(header, "group_count")
	t.Header(header...)

	right := make([]int, 0, len(header)-1)
	for i := 2; i <= len(header); i++ {
		right = append(right, i)
	}
	t.RightAlign(right...)

	for _, g := range groups {
		row := []any{g.Key}
		for _, col := range outcomes {
			m := g.Metrics[col]
			if m.Count == 0 {
				row = append(row, "", "", 0)
				continue
			}
			row = append(row, formatFloat(m.Sum, decimals), formatFloat(m.Mean, decimals), m.Count)
		}
		row = append(row, g.Size)
		t.Row(row...)
	}
	return t.String()
}
