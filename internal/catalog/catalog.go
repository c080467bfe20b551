// Package catalog maintains the CAT fixture index: an in-memory projection of
// every fixture's metadata, queryable by UUID (content-addressed fixtures) or
// by the legacy (language, name) key (pre-migration fixtures resolved through
// the persisted index.csv).
package catalog

import (
	"strings"
)

// SetSeparator joins the sets list into a single index column.
const SetSeparator = ";"

// Entry is one fixture's row in the index: its metadata plus the filesystem
// path of the directory that holds it. Extra carries columns beyond the
// well-known set so newer metadata survives a round trip through the index.
type Entry struct {
	Name     string
	UUID     string
	Hash     string
	Language string
	Source   string
	Path     string
	Sets     []string
	Extra    map[string]string
}

// priorityColumns is the fixed leading column order of the persisted index.
var priorityColumns = []string{"name", "uuid", "hash", "language", "sets", "source", "path"}

// field returns the entry's value for a well-known or extra column.
func (e *Entry) field(col string) string {
	switch col {
	case "name":
		return e.Name
	case "uuid":
		return e.UUID
	case "hash":
		return e.Hash
	case "language":
		return e.Language
	case "sets":
		return strings.Join(e.Sets, SetSeparator)
	case "source":
		return e.Source
	case "path":
		return e.Path
	default:
		return e.Extra[col]
	}
}

func (e *Entry) setField(col, val string) {
	switch col {
	case "name":
		e.Name = val
	case "uuid":
		e.UUID = val
	case "hash":
		e.Hash = val
	case "language":
		e.Language = val
	case "sets":
		e.Sets = SplitSets(val)
	case "source":
		e.Source = val
	case "path":
		e.Path = val
	default:
		if e.Extra == nil {
			e.Extra = make(map[string]string)
		}
		e.Extra[col] = val
	}
}

// SplitSets splits a ";"-joined sets column back into its tag list,
// dropping empty segments.
func SplitSets(s string) []string {
	var out []string
	for _, part := range strings.Split(s, SetSeparator) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type legacyKey struct {
	language string
	name     string
}

// Index offers O(1) fixture lookup by UUID and by legacy (language, name) key.
// It never mutates after construction.
type Index struct {
	byUUID   map[string]*Entry
	byLegacy map[legacyKey]*Entry
	entries  []*Entry
}

// NewIndex builds an Index over the given entries. Entries without a UUID are
// reachable only through the legacy key; entries without both language and
// name only through the UUID.
func NewIndex(entries []*Entry) *Index {
	ix := &Index{
		byUUID:   make(map[string]*Entry, len(entries)),
		byLegacy: make(map[legacyKey]*Entry, len(entries)),
		entries:  entries,
	}
	for _, e := range entries {
		if e.UUID != "" {
			ix.byUUID[e.UUID] = e
		}
		if e.Language != "" && e.Name != "" {
			ix.byLegacy[legacyKey{e.Language, e.Name}] = e
		}
	}
	return ix
}

// ByUUID looks up a fixture by its content-addressed identity.
func (ix *Index) ByUUID(id string) (*Entry, bool) {
	e, ok := ix.byUUID[id]
	return e, ok
}

// ByLegacyKey looks up a fixture by the pre-migration (language, name) scheme.
func (ix *Index) ByLegacyKey(language, name string) (*Entry, bool) {
	e, ok := ix.byLegacy[legacyKey{language, name}]
	return e, ok
}

// Entries returns the index rows in load order.
func (ix *Index) Entries() []*Entry { return ix.entries }

// Len returns the number of indexed fixtures.
func (ix *Index) Len() int { return len(ix.entries) }
