package consolidate

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ErichBSchulz/cecli-cats/internal/catalog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeArtifact(t *testing.T, resultsDir, model, run, body string) {
	t.Helper()
	writeFile(t, filepath.Join(resultsDir, model, run, "results.json"), body)
}

func demoIndex() *catalog.Index {
	return catalog.NewIndex([]*catalog.Entry{
		{Name: "leap", Language: "go", UUID: "U1", Hash: "H1", Sets: []string{"polyglot"}},
		{Name: "bob", Language: "rust", UUID: "U2", Hash: "H2", Sets: []string{"polyglot", "hard"}},
	})
}

const artifactOne = `{
  "summary": {"count": 1, "pass": 1, "rejected": 0},
  "results": [
    {"model": "gpt", "testdir": "x", "testcase": "leap", "edit_format": "diff",
     "tests_outcomes": [true, false], "cost": 0.1,
     "cat_uuid": "U1", "cat_hash": "H1", "run_relative_path": "go/exercises/practice/leap"}
  ]
}`

func TestRun_Scenario(t *testing.T) {
	resultsDir := t.TempDir()
	writeArtifact(t, resultsDir, "gpt", "2024-01-01-00-00-00--demo", artifactOne)

	tbl, err := Run(resultsDir, demoIndex(), Options{Logger: slog.Default()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(tbl.Rows))
	}

	row := tbl.Rows[0]
	if row["run"] != "2024-01-01-00-00-00--demo" {
		t.Errorf("run = %q", row["run"])
	}
	if row["tests_outcomes"] != "PF" {
		t.Errorf("tests_outcomes = %q, want PF", row["tests_outcomes"])
	}
	if row["uuid"] != "U1" || row["hash"] != "H1" {
		t.Errorf("identity = %q/%q", row["uuid"], row["hash"])
	}
	if row["language"] != "go" {
		t.Errorf("language = %q, want go (backfilled from index)", row["language"])
	}
	if row["sets"] != "polyglot" || row["set_polyglot"] != "1" {
		t.Errorf("sets = %q, set_polyglot = %q", row["sets"], row["set_polyglot"])
	}
	if row["notes"] != "" {
		t.Errorf("notes = %q, want empty", row["notes"])
	}
	if row["cost"] != "0.1" {
		t.Errorf("cost = %q, want 0.1", row["cost"])
	}
}

func TestRun_ColumnOrderAndZeroFill(t *testing.T) {
	resultsDir := t.TempDir()
	writeArtifact(t, resultsDir, "gpt", "2024-01-01-00-00-00--a", artifactOne)
	writeArtifact(t, resultsDir, "gpt", "2024-01-02-00-00-00--b", `{
  "summary": {"count": 1, "pass": 0, "rejected": 0},
  "results": [
    {"model": "gpt", "testdir": "y", "testcase": "bob", "edit_format": "whole",
     "tests_outcomes": [false], "cost": 2, "duration": 3.5, "aux_metric": 9,
     "cat_uuid": "U2", "cat_hash": "H2", "run_relative_path": "rust/exercises/practice/bob"}
  ]
}`)

	tbl, err := Run(resultsDir, demoIndex(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows", len(tbl.Rows))
	}

	want := []string{
		"run", "model", "language", "testcase", "uuid", "hash",
		"tests_outcomes", "cost", "duration", "sets", "notes",
		"aux_metric", "edit_format", "run_relative_path", "testdir",
		"set_hard", "set_polyglot",
	}
	if diff := cmp.Diff(want, tbl.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}

	// Indicator columns are present with a 0/1 value in every row.
	for i, row := range tbl.Rows {
		for _, col := range []string{"set_hard", "set_polyglot"} {
			v, ok := row[col]
			if !ok {
				t.Errorf("row %d: indicator %s absent", i, col)
			} else if v != "0" && v != "1" {
				t.Errorf("row %d: %s = %q", i, col, v)
			}
		}
	}
	if tbl.Rows[0]["set_hard"] != "0" {
		t.Error("row without tag must be zero-filled")
	}
	if tbl.Rows[1]["set_hard"] != "1" {
		t.Error("row with tag must be 1")
	}
}

func TestRun_Notes(t *testing.T) {
	resultsDir := t.TempDir()
	writeArtifact(t, resultsDir, "gpt", "2024-01-01-00-00-00--demo", `{
  "summary": {"count": 3, "pass": 0, "rejected": 0},
  "results": [
    {"testcase": "a", "tests_outcomes": [false]},
    {"testcase": "b", "tests_outcomes": [false], "cat_uuid": "UX", "cat_hash": "HX"},
    {"testcase": "c", "tests_outcomes": [false], "cat_uuid": "U1", "cat_hash": "DRIFTED"}
  ]
}`)

	tbl, err := Run(resultsDir, demoIndex(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	byCase := map[string]map[string]string{}
	for _, row := range tbl.Rows {
		byCase[row["testcase"]] = row
	}

	if got := byCase["a"]["notes"]; got != "No UUID in result" {
		t.Errorf("no-uuid notes = %q", got)
	}
	if got := byCase["b"]["notes"]; got != "UUID not found in index" {
		t.Errorf("unknown-uuid notes = %q", got)
	}
	if got := byCase["c"]["notes"]; got != "Hash mismatch (index: H1...)" {
		t.Errorf("mismatch notes = %q", got)
	}
}

func TestRun_TagJoinSetsOnly(t *testing.T) {
	resultsDir := t.TempDir()
	writeArtifact(t, resultsDir, "gpt", "2024-01-01-00-00-00--demo", artifactOne)

	tbl, err := Run(resultsDir, demoIndex(), Options{TagJoin: TagJoinSetsOnly})
	if err != nil {
		t.Fatal(err)
	}
	for _, col := range tbl.Columns {
		if col == "set_polyglot" {
			t.Error("indicator column present despite TagJoinSetsOnly")
		}
	}
	if tbl.Rows[0]["sets"] != "polyglot" {
		t.Errorf("sets = %q", tbl.Rows[0]["sets"])
	}
}

func TestRun_MalformedArtifactExcluded(t *testing.T) {
	resultsDir := t.TempDir()
	writeArtifact(t, resultsDir, "gpt", "2024-01-01-00-00-00--demo", artifactOne)
	writeArtifact(t, resultsDir, "gpt", "2024-01-02-00-00-00--bad", "not json")

	tbl, err := Run(resultsDir, demoIndex(), Options{})
	if err != nil {
		t.Fatalf("one bad artifact must not abort the pass: %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Errorf("got %d rows, want 1", len(tbl.Rows))
	}
}

func TestWriteCSV_Idempotent(t *testing.T) {
	resultsDir := t.TempDir()
	writeArtifact(t, resultsDir, "gpt", "2024-01-01-00-00-00--demo", artifactOne)

	outPath := filepath.Join(t.TempDir(), "results.csv")

	var first string
	for i := 0; i < 2; i++ {
		tbl, err := Run(resultsDir, demoIndex(), Options{})
		if err != nil {
			t.Fatal(err)
		}
		if err := WriteCSV(outPath, tbl); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			first = string(data)
		} else if string(data) != first {
			t.Error("consolidation output not byte-identical across reruns")
		}
	}
}
