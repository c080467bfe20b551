package catalog

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ScanTree recursively finds every cat.yaml under root and builds one Entry
// per fixture, recording the containing directory as the fixture's path.
// A fixture whose metadata cannot be read or parsed is logged and skipped;
// only a failure to walk the tree itself is an error.
func ScanTree(root string, logger *slog.Logger) ([]*Entry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var entries []*Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != MetadataFilename {
			return nil
		}
		e, err := scanMetadata(path)
		if err != nil {
			logger.Warn("failed to read metadata", "path", path, "error", err)
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: scan %s: %w", root, err)
	}
	return entries, nil
}

// scanMetadata parses one cat.yaml into an Entry, preserving keys beyond the
// well-known set in Extra so the index carries them through.
func scanMetadata(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	e := &Entry{Path: filepath.Dir(path)}
	for k, v := range doc {
		switch k {
		case "path":
			// The containing directory is authoritative.
		case "sets":
			e.Sets = toStrings(v)
		default:
			e.setField(k, fmt.Sprint(v))
		}
	}
	return e, nil
}

func toStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil
		}
		return []string{fmt.Sprint(v)}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
