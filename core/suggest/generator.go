package suggest

import (
	"hash/fnv"
	"sort"
	"strings"

	"github.com/carsuggester/vehiclesearch/core"
	"github.com/carsuggester/vehiclesearch/core/query"
)

// Popularity bases per suggestion source. Prefix matches outrank
// substring matches, which outrank categories and example phrases.
const (
	MaxSuggestions = 8

	basePrefix    = 100
	baseSubstring = 80
	baseCategory  = 70
	baseExample   = 50

	// Minimum input length before example phrases join the candidates
	exampleMinInput = 3

	// Spread of the per-candidate variety bonus
	varietyRange = 10

	emptyInputPerKind = 3
)

// Generator produces ranked autocomplete suggestions. Pure per call:
// identical inputs always produce identical output, so it is safe to
// call concurrently and trivially cancellable by discarding the result.
type Generator struct {
	index      *BrandModelIndex
	categories []query.Category
	examples   []string
}

// NewGenerator creates a generator over the given corpus index and
// reference lists. A nil reference set disables category and example
// suggestions but keeps brand/model completion working.
func NewGenerator(index *BrandModelIndex, ref *query.ReferenceData) *Generator {
	g := &Generator{index: index}
	if ref != nil {
		g.categories = ref.Categories
		g.examples = ref.NLExamples
	}
	if g.index == nil {
		g.index = NewIndex(nil)
	}
	return g
}

// Suggest computes the type-ahead list for partial input. Recent and
// popular phrases are supplied by the caller, already ordered. The
// result is capped at MaxSuggestions and sorted by popularity
// descending with a text tie-break.
func (g *Generator) Suggest(partialText string, recent, popular []string) []core.SuggestionItem {
	partial := strings.ToLower(strings.TrimSpace(partialText))

	if partial == "" {
		return g.emptyInputSuggestions(recent, popular)
	}

	var items []core.SuggestionItem
	items = append(items, g.matchBrandsAndModels(partial)...)
	items = append(items, g.matchCategories(partial)...)
	items = append(items, g.matchExamples(partial)...)

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Popularity != items[j].Popularity {
			return items[i].Popularity > items[j].Popularity
		}
		return items[i].Text < items[j].Text
	})

	if len(items) > MaxSuggestions {
		items = items[:MaxSuggestions]
	}
	return items
}

// emptyInputSuggestions returns the top recent and popular phrases in
// their given order, no matching needed
func (g *Generator) emptyInputSuggestions(recent, popular []string) []core.SuggestionItem {
	items := make([]core.SuggestionItem, 0, 2*emptyInputPerKind)

	popularity := 2 * emptyInputPerKind
	for i, text := range recent {
		if i == emptyInputPerKind {
			break
		}
		items = append(items, core.SuggestionItem{
			Text:       text,
			Kind:       core.SuggestionRecent,
			Popularity: popularity,
		})
		popularity--
	}

	for i, text := range popular {
		if i == emptyInputPerKind {
			break
		}
		items = append(items, core.SuggestionItem{
			Text:       text,
			Kind:       core.SuggestionPopular,
			Popularity: popularity,
			Subtitle:   "Trending search",
		})
		popularity--
	}

	return items
}

func (g *Generator) matchBrandsAndModels(partial string) []core.SuggestionItem {
	var items []core.SuggestionItem

	for _, entry := range g.index.Entries() {
		if class := matchText(partial, entry.Brand); class != matchClassNone {
			items = append(items, core.SuggestionItem{
				Text:       entry.Brand,
				Kind:       core.SuggestionBrand,
				Popularity: matchBase(class) + varietyBonus(entry.Brand),
			})
		}

		for _, model := range entry.Models {
			full := entry.Brand + " " + model
			class := matchText(partial, model)
			if class == matchClassNone {
				class = matchText(partial, full)
			}
			if class == matchClassNone {
				continue
			}
			items = append(items, core.SuggestionItem{
				Text:       full,
				Kind:       core.SuggestionModel,
				Popularity: matchBase(class) + varietyBonus(full),
				Subtitle:   entry.Brand,
			})
		}
	}

	return items
}

func (g *Generator) matchCategories(partial string) []core.SuggestionItem {
	var items []core.SuggestionItem
	for _, cat := range g.categories {
		if matchText(partial, cat.Name) == matchClassNone {
			continue
		}
		items = append(items, core.SuggestionItem{
			Text:       cat.Name,
			Kind:       core.SuggestionCategory,
			Popularity: baseCategory + varietyBonus(cat.Name),
			Subtitle:   cat.Description,
		})
	}
	return items
}

// matchExamples includes canned natural-language phrases once the input
// is long enough to be meaningful, penalized by list position
func (g *Generator) matchExamples(partial string) []core.SuggestionItem {
	if len(partial) < exampleMinInput {
		return nil
	}

	var items []core.SuggestionItem
	for i, phrase := range g.examples {
		if !strings.Contains(strings.ToLower(phrase), partial) {
			continue
		}
		items = append(items, core.SuggestionItem{
			Text:       phrase,
			Kind:       core.SuggestionNaturalLanguage,
			Popularity: baseExample - i,
			Subtitle:   "Try asking",
		})
	}
	return items
}

func matchBase(class matchClass) int {
	if class == matchClassPrefix {
		return basePrefix
	}
	return baseSubstring
}

// varietyBonus spreads otherwise-equal candidates apart. Derived from
// an FNV-1a hash of the text so the spread is stable across calls;
// suggestion ordering must be deterministic for identical inputs.
func varietyBonus(text string) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(text)))
	return int(h.Sum32() % varietyRange)
}
