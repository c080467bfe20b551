package report

import (
	"sort"

	"github.com/ErichBSchulz/cecli-cats/internal/catalog"
	"github.com/ErichBSchulz/cecli-cats/internal/format"
)

// LanguageCount is one line of the index summary.
type LanguageCount struct {
	Language string
	Count    int
	Entries  []*catalog.Entry
}

// CountByLanguage groups index entries per language, sorted by language, with
// each group's entries sorted by name. Entries without a language fall under
// "unknown".
func CountByLanguage(entries []*catalog.Entry) ([]LanguageCount, int) {
	byLang := map[string][]*catalog.Entry{}
	for _, e := range entries {
		lang := e.Language
		if lang == "" {
			lang = "unknown"
		}
		byLang[lang] = append(byLang[lang], e)
	}

	out := make([]LanguageCount, 0, len(byLang))
	for lang, group := range byLang {
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
		out = append(out, LanguageCount{Language: lang, Count: len(group), Entries: group})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out, len(entries)
}

// RenderSummary lays the per-language counts out with a total footer.
func RenderSummary(counts []LanguageCount, total int) string {
	t := format.NewTable()
	t.Header("Language", "Count")
	t.RightAlign(2)
	for _, c := range counts {
		t.Row(c.Language, c.Count)
	}
	t.Footer("Total", total)
	return t.String()
}
