package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/carsuggester/vehiclesearch/core"
)

// Confidence increments per extracted structured field. A prefix match
// against the reference lists is worth more than a substring-only match.
const (
	confidencePerField     = 0.3
	confidenceSubstring    = 0.2
	confidenceNaturalFloor = 0.2
)

// matchKind distinguishes how a token matched a reference entry
type matchKind int

const (
	matchNone matchKind = iota
	matchSubstring
	matchPrefix
)

var (
	// A number directly preceded by "under"/"below" or a currency symbol
	budgetLeadRe = regexp.MustCompile(`(?:\bunder|\bbelow|[€$£])\s*([0-9]+(?:[.,][0-9]+)*)\s*(k\b|thousand\b)?`)
	// A number directly followed by a currency symbol
	budgetTrailRe = regexp.MustCompile(`([0-9]+(?:[.,][0-9]+)*)\s*(k|thousand)?\s*[€$£]`)

	// Digit groups of exactly three after a separator are thousands
	// grouping, not a fraction: "25,000" and "25.000" both mean 25000
	groupedThousandsRe = regexp.MustCompile(`^[0-9]{1,3}(?:[.,][0-9]{3})+$`)

	// Natural-language signals
	leadInRe      = regexp.MustCompile(`\b(show me|find me|find|looking for|i want|i need|recommend|suggest)\b`)
	numberUnitRe  = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)?\s*(k|thousand)\b|[€$£]\s*[0-9]`)
	comparativeRe = regexp.MustCompile(`\b(best|better|cheapest|cheaper|newest|newer|fastest|faster|biggest|smallest|lowest|highest|most)\b`)
)

// Tokens carrying no search meaning, removed from the keyword fallback
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "to": true, "for": true,
	"by": true, "with": true, "at": true, "from": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "me": true,
	"my": true, "i": true, "it": true, "car": true, "cars": true,
	"want": true, "need": true, "show": true, "find": true,
	"looking": true, "please": true, "some": true, "that": true,
}

// Keyword groups driving intent classification, checked in order after
// the budget check
var intentKeywords = []struct {
	intent core.IntentCategory
	words  []string
}{
	{core.IntentEfficiency, []string{"electric", "hybrid", "efficient", "economical", "eco", "mpg", "consumption", "emission"}},
	{core.IntentPerformance, []string{"fast", "sport", "sporty", "powerful", "performance", "turbo", "quick", "horsepower"}},
	{core.IntentLifestyle, []string{"family", "luxury", "comfortable", "spacious", "adventure", "city", "commute", "commuting", "reliable", "safe"}},
}

var (
	brandTemplates = []string{
		"Best %s deals right now",
		"%s models with low mileage",
		"Popular %s cars near you",
	}
	styleTemplates = []string{
		"Top rated %s picks",
		"Affordable %s options",
		"%s models from trusted dealers",
	}
)

// Parser extracts structured intent from free-text vehicle queries.
// It is pure and safe for concurrent use; the reference lists it matches
// against are read-only after construction.
type Parser struct {
	ref      *ReferenceData
	degraded bool
}

// NewParser creates a parser over the given reference lists. A nil or
// empty reference set puts the parser into keyword-only mode: search
// stays available, structured extraction is skipped and confidence is
// pinned to zero. Callers should log the condition.
func NewParser(ref *ReferenceData) *Parser {
	degraded := ref == nil || len(ref.Brands) == 0
	return &Parser{ref: ref, degraded: degraded}
}

// Degraded reports whether the parser is running without reference data
func (p *Parser) Degraded() bool {
	return p.degraded
}

// Parse turns raw free-text input into a structured query. It never
// fails: malformed input yields an all-default result with confidence 0.
// The history slice (recent queries, most-recent-first) only influences
// the illustrative rephrase suggestions.
func (p *Parser) Parse(rawText string, history []string) core.ParsedQuery {
	parsed := core.ParsedQuery{
		RawText: rawText,
		Intent:  core.IntentGeneral,
	}

	text := strings.TrimSpace(rawText)
	if text == "" {
		return parsed
	}

	lower := strings.ToLower(text)
	tokens := tokenize(lower)

	parsed.NaturalLanguage = p.isNaturalLanguage(lower, tokens)

	consumed := make(map[string]bool)

	if p.degraded {
		parsed.Keywords = keywordFallback(tokens, consumed)
		parsed.KeywordOnly = true
		return parsed
	}

	confidence := 0.0

	if budget, ok := extractBudget(lower); ok {
		parsed.BudgetMax = &budget
		confidence += confidencePerField
		markBudgetTokens(tokens, consumed)
	}

	if brand, token, kind := matchReference(tokens, p.ref.Brands); kind != matchNone {
		parsed.Brand = brand
		consumed[token] = true
		confidence += matchConfidence(kind)
	}

	if style, token, kind := matchReference(tokens, p.ref.CategoryNames()); kind != matchNone {
		parsed.BodyStyle = style
		consumed[token] = true
		confidence += matchConfidence(kind)
	}

	parsed.Keywords = keywordFallback(tokens, consumed)
	parsed.Intent = classifyIntent(parsed, lower)
	parsed.Suggestions = p.buildSuggestions(parsed, history)

	if confidence == 0 {
		if parsed.NaturalLanguage {
			confidence = confidenceNaturalFloor
		}
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	parsed.Confidence = confidence

	return parsed
}

// isNaturalLanguage classifies input as a descriptive request rather
// than a keyword lookup when at least two signals fire: a verb-like
// lead-in, a number adjacent to a unit or currency, a comparative
// adjective, or four or more tokens.
func (p *Parser) isNaturalLanguage(lower string, tokens []string) bool {
	signals := 0
	if leadInRe.MatchString(lower) {
		signals++
	}
	if numberUnitRe.MatchString(lower) {
		signals++
	}
	if comparativeRe.MatchString(lower) {
		signals++
	}
	if len(tokens) >= 4 {
		signals++
	}
	return signals >= 2
}

// tokenize splits on non-alphanumeric runes, preserving order
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// extractBudget finds a maximum budget in the query text. Shorthand
// like "25k" and "25 thousand" is normalized to full units.
func extractBudget(lower string) (float64, bool) {
	for _, re := range []*regexp.Regexp{budgetLeadRe, budgetTrailRe} {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}

		value, ok := parseAmount(m[1])
		if !ok {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(m[2]), "k") || strings.HasPrefix(strings.TrimSpace(m[2]), "thousand") {
			value *= 1000
		}

		if value > 0 {
			return value, true
		}
	}

	return 0, false
}

// parseAmount converts a captured number to a value. Separators
// followed by three-digit groups are thousands grouping and stripped;
// otherwise a comma is a decimal point, as in "12,5".
func parseAmount(text string) (float64, bool) {
	if groupedThousandsRe.MatchString(text) {
		text = strings.NewReplacer(",", "", ".", "").Replace(text)
	} else {
		text = strings.ReplaceAll(text, ",", ".")
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// markBudgetTokens flags budget-related tokens so the keyword fallback
// skips them
func markBudgetTokens(tokens []string, consumed map[string]bool) {
	for _, t := range tokens {
		if t == "under" || t == "below" || t == "thousand" || t == "k" {
			consumed[t] = true
			continue
		}
		trimmed := strings.TrimSuffix(t, "k")
		if trimmed != "" && isNumeric(trimmed) {
			consumed[t] = true
		}
	}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return len(s) > 0
}

// matchReference finds the reference entry best matched by the query
// tokens. The longest matching token wins; ties break by earliest
// position in the text. Prefix matches outrank substring-only matches
// of equal token length.
func matchReference(tokens []string, refs []string) (string, string, matchKind) {
	bestLen := 0
	bestIdx := -1
	bestKind := matchNone
	bestRef := ""
	bestToken := ""

	for i, token := range tokens {
		if len(token) < 2 || stopwords[token] {
			continue
		}
		for _, ref := range refs {
			refLower := strings.ToLower(ref)
			kind := classifyMatch(token, refLower)
			if kind == matchNone {
				continue
			}
			better := len(token) > bestLen ||
				(len(token) == bestLen && i < bestIdx) ||
				(len(token) == bestLen && i == bestIdx && kind > bestKind)
			if better {
				bestLen = len(token)
				bestIdx = i
				bestKind = kind
				bestRef = ref
				bestToken = token
			}
		}
	}

	return bestRef, bestToken, bestKind
}

func classifyMatch(token, refLower string) matchKind {
	if strings.HasPrefix(refLower, token) {
		return matchPrefix
	}
	// Substring matches need a longer token to avoid noise
	if len(token) >= 3 && strings.Contains(refLower, token) {
		return matchSubstring
	}
	return matchNone
}

func matchConfidence(kind matchKind) float64 {
	if kind == matchPrefix {
		return confidencePerField
	}
	return confidenceSubstring
}

// keywordFallback collects the tokens not consumed by structured
// extraction, in original order, with stopwords removed
func keywordFallback(tokens []string, consumed map[string]bool) []string {
	var keywords []string
	for _, t := range tokens {
		if consumed[t] || stopwords[t] {
			continue
		}
		keywords = append(keywords, t)
	}
	return keywords
}

// classifyIntent picks the intent category. A detected budget dominates;
// otherwise the first keyword group with a hit wins.
func classifyIntent(parsed core.ParsedQuery, lower string) core.IntentCategory {
	if parsed.BudgetMax != nil {
		return core.IntentBudget
	}

	for _, group := range intentKeywords {
		for _, word := range group.words {
			if strings.Contains(lower, word) {
				return group.intent
			}
		}
	}

	return core.IntentGeneral
}

// buildSuggestions renders up to three canned rephrasings around the
// detected brand or body style. Purely illustrative.
func (p *Parser) buildSuggestions(parsed core.ParsedQuery, history []string) []string {
	subject := parsed.Brand
	templates := brandTemplates

	if subject == "" && parsed.BodyStyle != "" {
		subject = parsed.BodyStyle
		templates = styleTemplates
	}

	if subject == "" {
		// Fall back to a brand the user searched for recently
		subject = p.brandFromHistory(history)
	}

	if subject == "" {
		return nil
	}

	suggestions := make([]string, 0, 3)
	for _, tmpl := range templates {
		if len(suggestions) == 3 {
			break
		}
		suggestions = append(suggestions, fmt.Sprintf(tmpl, subject))
	}
	return suggestions
}

func (p *Parser) brandFromHistory(history []string) string {
	for _, entry := range history {
		tokens := tokenize(strings.ToLower(entry))
		if brand, _, kind := matchReference(tokens, p.ref.Brands); kind == matchPrefix {
			return brand
		}
	}
	return ""
}
