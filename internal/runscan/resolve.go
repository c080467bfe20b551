package runscan

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ErichBSchulz/cecli-cats/internal/catalog"
)

// IdentityKind discriminates the closed set of resolution outcomes.
type IdentityKind int

const (
	// Unresolved means no identity could be determined; the record proceeds
	// without enrichment.
	Unresolved IdentityKind = iota
	// ByUUID means identity came from embedded cat.yaml metadata.
	ByUUID
	// ByLegacyKey means identity was inferred from the result's path relative
	// to its run directory and resolved through the index.
	ByLegacyKey
)

// Identity is a raw result's resolved fixture identity. Exactly one Kind
// applies; UUID and Hash are empty when Unresolved (and may be empty on a
// resolved identity whose metadata omits them).
type Identity struct {
	Kind IdentityKind
	UUID string
	Hash string
}

// Resolve determines the canonical fixture identity for the raw result at
// resultPath inside runDir.
//
// Embedded metadata is authoritative when present: a cat.yaml beside the
// result is parsed directly, and a present-but-corrupt file yields Unresolved
// rather than falling through to path inference — corrupt metadata must never
// silently resolve to a different identity scheme. Only when the file is
// altogether absent is the legacy (language, name) path inference tried
// against the index.
func Resolve(resultPath, runDir string, ix *catalog.Index, logger *slog.Logger) Identity {
	if logger == nil {
		logger = slog.Default()
	}

	testDir := filepath.Dir(resultPath)
	metaPath := filepath.Join(testDir, catalog.MetadataFilename)

	if _, err := os.Stat(metaPath); err == nil {
		meta, err := catalog.LoadMetadata(metaPath)
		if err != nil {
			logger.Warn("failed to read fixture metadata", "path", metaPath, "error", err)
			return Identity{Kind: Unresolved}
		}
		return Identity{Kind: ByUUID, UUID: meta.UUID, Hash: meta.Hash}
	}

	rel, err := filepath.Rel(runDir, testDir)
	if err != nil {
		return Identity{Kind: Unresolved}
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return Identity{Kind: Unresolved}
	}
	language, name := parts[0], parts[len(parts)-1]

	entry, ok := ix.ByLegacyKey(language, name)
	if !ok {
		logger.Debug("legacy fixture not in index", "language", language, "name", name)
		return Identity{Kind: Unresolved}
	}
	return Identity{Kind: ByLegacyKey, UUID: entry.UUID, Hash: entry.Hash}
}
