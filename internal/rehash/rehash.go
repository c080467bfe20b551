// Package rehash verifies the stored content hash of every CAT against a
// fresh computation and rewrites drifted metadata. Only the hash field is
// touched; the rest of the document, including unknown fields and their
// order, survives the rewrite.
package rehash

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ErichBSchulz/cecli-cats/internal/cathash"
	"github.com/ErichBSchulz/cecli-cats/internal/catalog"
)

// DefaultWorkers bounds concurrent directory hashing.
const DefaultWorkers = 4

// Stats reports one rehash pass.
type Stats struct {
	Checked int
	Updated int
}

// Run rehashes every fixture under catRoot. Directories are hashed
// concurrently (hashing dominates the work), then drifted metadata files are
// rewritten in deterministic order. Any hash error is fatal: a fixture's
// stored identity is never updated from a partial read.
func Run(catRoot string, workers int, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var metaPaths []string
	err := filepath.WalkDir(catRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == catalog.MetadataFilename {
			metaPaths = append(metaPaths, path)
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("rehash: scan %s: %w", catRoot, err)
	}

	hashes := make([]string, len(metaPaths))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, metaPath := range metaPaths {
		g.Go(func() error {
			h, err := cathash.Directory(filepath.Dir(metaPath))
			if err != nil {
				return err
			}
			hashes[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	stats := Stats{Checked: len(metaPaths)}
	for i, metaPath := range metaPaths {
		updated, err := applyHash(metaPath, hashes[i], logger)
		if err != nil {
			return stats, err
		}
		if updated {
			stats.Updated++
		}
	}
	return stats, nil
}

// applyHash rewrites metaPath's hash field if it differs from current.
func applyHash(metaPath, current string, logger *slog.Logger) (bool, error) {
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return false, fmt.Errorf("rehash: read %s: %w", metaPath, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("rehash: parse %s: %w", metaPath, err)
	}

	old, changed := setHash(&doc, current)
	if !changed {
		logger.Debug("hash match", "path", metaPath)
		return false, nil
	}
	logger.Info("updating hash", "path", metaPath, "old", old, "new", current)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return false, fmt.Errorf("rehash: marshal %s: %w", metaPath, err)
	}
	if err := os.WriteFile(metaPath, out, 0o644); err != nil {
		return false, fmt.Errorf("rehash: write %s: %w", metaPath, err)
	}
	return true, nil
}

// setHash updates the top-level hash entry of a YAML document node in place,
// appending one if absent. It returns the previous value and whether the
// document changed.
func setHash(doc *yaml.Node, hash string) (old string, changed bool) {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return "", false
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Value == "hash" {
			old = val.Value
			if old == hash {
				return old, false
			}
			val.SetString(hash)
			return old, true
		}
	}

	keyNode := &yaml.Node{}
	keyNode.SetString("hash")
	valNode := &yaml.Node{}
	valNode.SetString(hash)
	root.Content = append(root.Content, keyNode, valNode)
	return "", true
}
