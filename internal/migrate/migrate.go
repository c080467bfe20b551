// Package migrate admits legacy polyglot fixtures into the content-addressed
// CAT store: each fixture gets a UUID, a content hash, a copy under
// cat/<u0:2>/<u2:4>/<uuid>/, and a cat.yaml metadata file.
package migrate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/ErichBSchulz/cecli-cats/internal/cathash"
	"github.com/ErichBSchulz/cecli-cats/internal/catalog"
)

// RepoMap maps a fixture's language directory to its upstream source repo.
var RepoMap = map[string]string{
	"cpp":        "https://github.com/exercism/cpp",
	"go":         "https://github.com/exercism/go",
	"java":       "https://github.com/exercism/java",
	"javascript": "https://github.com/exercism/javascript",
	"python":     "https://github.com/exercism/python",
	"rust":       "https://github.com/exercism/rust",
}

// DefaultSet tags every migrated fixture with its provenance.
const DefaultSet = "polyglot"

// FindFixtures returns the legacy fixture directories under root, sorted:
// one per exercise in <language>/exercises/practice/<name>.
func FindFixtures(root string) ([]string, error) {
	var fixtures []string
	for language := range RepoMap {
		practiceDir := filepath.Join(root, language, "exercises", "practice")
		entries, err := os.ReadDir(practiceDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("migrate: read %s: %w", practiceDir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				fixtures = append(fixtures, filepath.Join(practiceDir, e.Name()))
			}
		}
	}
	sort.Strings(fixtures)
	return fixtures, nil
}

// Run migrates every legacy fixture found under root into catRoot, returning
// the number migrated. Hash failures are fatal per the content-identity
// contract; a migrated fixture is never written with a guessed hash.
func Run(root, catRoot string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fixtures, err := FindFixtures(root)
	if err != nil {
		return 0, err
	}
	logger.Info("found legacy fixtures", "count", len(fixtures))

	for _, dir := range fixtures {
		if err := migrateOne(root, catRoot, dir, logger); err != nil {
			return 0, err
		}
	}
	return len(fixtures), nil
}

func migrateOne(root, catRoot, fixtureDir string, logger *slog.Logger) error {
	rel, err := filepath.Rel(root, fixtureDir)
	if err != nil {
		return fmt.Errorf("migrate: relativize %s: %w", fixtureDir, err)
	}
	language := firstSegment(filepath.ToSlash(rel))

	source, ok := RepoMap[language]
	if !ok {
		source = "Exercism"
	}

	id := uuid.NewString()
	hash, err := cathash.Directory(fixtureDir)
	if err != nil {
		return err
	}

	targetDir := filepath.Join(catRoot, id[0:2], id[2:4], id)
	logger.Info("migrating fixture", "from", fixtureDir, "to", targetDir)
	logger.Debug("fixture identity", "uuid", id, "hash", hash, "language", language)

	if err := os.RemoveAll(targetDir); err != nil {
		return fmt.Errorf("migrate: clear target %s: %w", targetDir, err)
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("migrate: create target %s: %w", targetDir, err)
	}
	if err := os.CopyFS(targetDir, os.DirFS(fixtureDir)); err != nil {
		return fmt.Errorf("migrate: copy %s: %w", fixtureDir, err)
	}

	meta := &catalog.Metadata{
		UUID:     id,
		Hash:     hash,
		Language: language,
		Sets:     []string{DefaultSet},
		Source:   source,
	}
	return catalog.WriteMetadata(filepath.Join(targetDir, catalog.MetadataFilename), meta)
}

func firstSegment(slashPath string) string {
	for i := 0; i < len(slashPath); i++ {
		if slashPath[i] == '/' {
			return slashPath[:i]
		}
	}
	return slashPath
}
