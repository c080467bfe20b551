package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func execute(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("cecli-cat %s: %v", strings.Join(args, " "), err)
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReindexThenSummary(t *testing.T) {
	dir := t.TempDir()
	catDir := filepath.Join(dir, "cat")
	fixture := filepath.Join(catDir, "ab", "cd", "U1")
	writeTestFile(t, filepath.Join(fixture, "main.go"), "package main")
	writeTestFile(t, filepath.Join(fixture, "cat.yaml"),
		"uuid: U1\nhash: H1\nlanguage: go\nsets:\n  - polyglot\nsource: https://example.com\n")

	indexFile := filepath.Join(catDir, "index.csv")
	execute(t, "cats", "reindex", "-i", catDir, "-o", indexFile)

	data, err := os.ReadFile(indexFile)
	if err != nil {
		t.Fatalf("index not written: %v", err)
	}
	if !strings.Contains(string(data), "U1") {
		t.Errorf("index missing fixture:\n%s", data)
	}

	execute(t, "cats", "summary", "-i", indexFile)
}

func TestAggregateThenConsolidate(t *testing.T) {
	dir := t.TempDir()
	runDir := filepath.Join(dir, "runs", "2024-01-01-00-00-00--demo")
	testDir := filepath.Join(runDir, "go", "exercises", "practice", "leap")
	writeTestFile(t, filepath.Join(testDir, ".aider.results.json"), `{
		"testdir": "go/exercises/practice/leap",
		"testcase": "leap",
		"model": "gpt",
		"edit_format": "diff",
		"tests_outcomes": [true],
		"cost": 0.1
	}`)
	writeTestFile(t, filepath.Join(testDir, "cat.yaml"), "uuid: U1\nhash: H1\n")

	outDir := filepath.Join(dir, "results")
	indexFile := filepath.Join(dir, "cat", "index.csv")
	writeTestFile(t, indexFile, "name,uuid,hash,language,sets\nleap,U1,H1,go,polyglot\n")

	execute(t, "results", "aggregate",
		"-i", filepath.Join(dir, "runs"), "-o", outDir, "--index-file", indexFile)

	artifact := filepath.Join(outDir, "gpt", "2024-01-01-00-00-00--demo", "results.json")
	if _, err := os.Stat(artifact); err != nil {
		t.Fatalf("artifact not written: %v", err)
	}

	outFile := filepath.Join(dir, "results.csv")
	execute(t, "results", "consolidate",
		"-r", outDir, "-c", filepath.Join(dir, "cat"), "-o", outFile)

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("consolidated CSV not written: %v", err)
	}
	csv := string(data)
	for _, want := range []string{"U1", "gpt", "2024-01-01-00-00-00--demo", "set_polyglot"} {
		if !strings.Contains(csv, want) {
			t.Errorf("consolidated CSV missing %q:\n%s", want, csv)
		}
	}

	execute(t, "results", "describe", "-i", outFile)
	execute(t, "results", "crosstab", "-i", outFile, "--group-by", "model")
}

func TestSplitColumns(t *testing.T) {
	got := splitColumns(" model, language ,,cost ")
	want := []string{"model", "language", "cost"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("splitColumns (-want +got):\n%s", diff)
	}
	if got := splitColumns(""); got != nil {
		t.Errorf("splitColumns(\"\") = %v, want nil", got)
	}
}
