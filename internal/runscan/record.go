package runscan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// RequiredKeys are the fields a raw result must carry to be admitted into a
// bucket. Validation tests presence only, not type or shape: a harness that
// writes cost as a string still passes, matching the historical behavior.
var RequiredKeys = []string{
	"testdir",
	"testcase",
	"model",
	"edit_format",
	"tests_outcomes",
	"cost",
}

// Enrichment keys attached by the aggregator; consumers downstream key on
// these names.
const (
	KeyUUID    = "cat_uuid"
	KeyHash    = "cat_hash"
	KeyRelPath = "run_relative_path"
)

// Record is one raw per-test execution record: a loosely-typed field bag
// whose shape varies with harness version. Known fields get typed accessors;
// everything else rides along untouched so newer harness output survives
// aggregation.
type Record struct {
	Fields map[string]any
}

// ParseRecord decodes a raw result JSON body. Numbers are kept as
// json.Number so their textual form is preserved end to end.
func ParseRecord(data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("runscan: parse record: %w", err)
	}
	return &Record{Fields: fields}, nil
}

// LoadRecord reads and parses a raw result file.
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runscan: read record: %w", err)
	}
	return ParseRecord(data)
}

// Has reports whether the record carries the key, regardless of value.
func (r *Record) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// Set adds or replaces a field.
func (r *Record) Set(key string, v any) {
	if r.Fields == nil {
		r.Fields = make(map[string]any)
	}
	r.Fields[key] = v
}

// StringOr returns the field as a string, or def when absent or non-string.
func (r *Record) StringOr(key, def string) string {
	if s, ok := r.Fields[key].(string); ok {
		return s
	}
	return def
}

// Model returns the record's model identifier, defaulting to "unknown".
// The default matters: bucketing happens before validation, so even a
// malformed record lands in a bucket.
func (r *Record) Model() string {
	return r.StringOr("model", "unknown")
}

// MissingRequired returns the required keys the record lacks.
func (r *Record) MissingRequired() []string {
	var missing []string
	for _, k := range RequiredKeys {
		if !r.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Outcomes returns tests_outcomes as a bool slice and whether the field was
// a well-formed list. Elements are usually bools, but older harnesses wrote
// 0/1 and the occasional string; anything non-zero and non-empty counts as a
// pass.
func (r *Record) Outcomes() ([]bool, bool) {
	list, ok := r.Fields["tests_outcomes"].([]any)
	if !ok {
		return nil, false
	}
	out := make([]bool, len(list))
	for i, v := range list {
		out[i] = truthy(v)
	}
	return out, true
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return false
	}
}

// AnyPassed reports whether at least one test outcome is true.
func (r *Record) AnyPassed() bool {
	outcomes, _ := r.Outcomes()
	for _, b := range outcomes {
		if b {
			return true
		}
	}
	return false
}

// MarshalJSON serializes the field bag directly.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields)
}

// UnmarshalJSON decodes into the field bag, preserving numeric text.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(&r.Fields)
}
