// Package cathash computes the canonical content hash that identifies a CAT
// (test fixture) directory. The hash covers every regular file's bytes plus
// its path relative to the fixture root, so renames and moves change the
// identity as surely as content edits do. The fixture's own metadata files
// (cat*.yaml) are excluded: a CAT's identity is a function of its test
// content, not of its bookkeeping.
package cathash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const chunkSize = 4096

// IsMetadataFile reports whether name is a fixture metadata file
// (prefix "cat", extension ".yaml") and therefore excluded from hashing.
func IsMetadataFile(name string) bool {
	return strings.HasPrefix(name, "cat") && strings.HasSuffix(name, ".yaml")
}

// Directory returns the hex-encoded SHA-256 identity of dir.
//
// Files feed the hash grouped by directory: directories in lexicographic
// order of their relative path (the fixture root first), filenames
// lexicographic within each directory. A root-level file is therefore hashed
// before any subdirectory's files regardless of how the names interleave.
// Any read error aborts the computation; a partial hash is never returned.
func Directory(dir string) (string, error) {
	type entry struct {
		dir  string // slash-form relative directory, "" for the root
		name string
		path string
	}

	var files []entry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if IsMetadataFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		parent := filepath.ToSlash(filepath.Dir(rel))
		if parent == "." {
			parent = ""
		}
		files = append(files, entry{dir: parent, name: d.Name(), path: path})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("cathash: hash %s: %w", dir, err)
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].dir != files[j].dir {
			return files[i].dir < files[j].dir
		}
		return files[i].name < files[j].name
	})

	h := sha256.New()
	for _, f := range files {
		rel := f.name
		if f.dir != "" {
			rel = f.dir + "/" + f.name
		}
		// Relative paths feed the hash in slash form so the identity is
		// the same on every platform.
		h.Write([]byte(rel))
		if err := hashFile(h, f.path); err != nil {
			return "", fmt.Errorf("cathash: hash %s: %w", dir, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			w.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
