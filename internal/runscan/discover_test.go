package runscan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
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

func TestIsRunDirName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"2025-12-23-04-35-48--unnamed", true},
		{"2024-01-01-00-00-00--", true},
		{"2024-01-01-00-00-00--with--dashes", true},
		{"2024-01-01-00-00-00-demo", false},
		{"24-01-01-00-00-00--demo", false},
		{"2024-01-01-00-00--demo", false},
		{"results", false},
	}
	for _, c := range cases {
		if got := IsRunDirName(c.name); got != c.want {
			t.Errorf("IsRunDirName(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestFindRunDir(t *testing.T) {
	root := t.TempDir()
	runDir := filepath.Join(root, "2024-01-01-00-00-00--demo")
	resPath := filepath.Join(runDir, "go", "exercises", "practice", "leap", ResultsFilename)
	writeFile(t, resPath, "{}")

	if got := FindRunDir(resPath); got != runDir {
		t.Errorf("FindRunDir = %q, want %q", got, runDir)
	}
}

func TestFindRunDir_NoMatch(t *testing.T) {
	root := t.TempDir()
	resPath := filepath.Join(root, "plain", "dir", ResultsFilename)
	writeFile(t, resPath, "{}")

	if got := FindRunDir(resPath); got != "" {
		t.Errorf("FindRunDir = %q, want empty", got)
	}
}

func TestFindRunDir_ExcludesStartItself(t *testing.T) {
	// A directory that itself matches the pattern is not its own run dir.
	root := t.TempDir()
	inner := filepath.Join(root, "2024-01-01-00-00-00--outer", "2024-02-02-00-00-00--inner")
	if err := os.MkdirAll(inner, 0o755); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(root, "2024-01-01-00-00-00--outer")
	if got := FindRunDir(inner); got != want {
		t.Errorf("FindRunDir = %q, want %q (the ancestor, not the start)", got, want)
	}
}

func TestDiscoverResults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", ResultsFilename), "{}")
	writeFile(t, filepath.Join(root, "a", "deep", ResultsFilename), "{}")
	writeFile(t, filepath.Join(root, "a", "other.json"), "{}")

	got, err := DiscoverResults(root)
	if err != nil {
		t.Fatalf("DiscoverResults: %v", err)
	}
	want := []string{
		filepath.Join(root, "a", "deep", ResultsFilename),
		filepath.Join(root, "b", ResultsFilename),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
}

func TestDiscoverResults_MissingRoot(t *testing.T) {
	if _, err := DiscoverResults(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}
