package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/carsuggester/vehiclesearch/core"
	"github.com/carsuggester/vehiclesearch/core/query"
)

// Confidence above which the explanation names the structured fields
// that drove the ranking
const explanationConfidenceThreshold = 0.7

// Diagnostics reports non-fatal conditions from one ranking pass,
// surfaced to the caller for logging and metrics
type Diagnostics struct {
	QueryID           string `json:"query_id"`
	SkippedCandidates int    `json:"skipped_candidates"`
}

// Result is the output of one ranking pass
type Result struct {
	Results     []core.RankedResult `json:"results"`
	Explanation string              `json:"explanation"`
	Query       core.ParsedQuery    `json:"query"`
	Diagnostics Diagnostics         `json:"diagnostics"`
}

// Ranker orchestrates parse, filter, score, and sort over a candidate
// set. Stateless per query: nothing is retained between invocations,
// so a Ranker is safe to share across goroutines.
type Ranker struct {
	parser *query.Parser
	scorer *Scorer
	filter *FilterEngine
}

// NewRanker creates a ranker from its three collaborators
func NewRanker(parser *query.Parser, scorer *Scorer, filter *FilterEngine) *Ranker {
	return &Ranker{
		parser: parser,
		scorer: scorer,
		filter: filter,
	}
}

// Rank produces the ordered result list and explanation for one search.
// An empty or fully filtered candidate set is not an error: the result
// is empty and the explanation says so. A failure while scoring a
// single candidate excludes that candidate and increments the skip
// counter instead of aborting the pass.
func (r *Ranker) Rank(rawText string, candidates []core.VehicleRecord, filters core.FilterSet, history []string) Result {
	filters = core.NormalizeFilters(filters)

	// Parsing
	parsed := r.parser.Parse(rawText, history)

	result := Result{
		Query: parsed,
		Diagnostics: Diagnostics{
			QueryID: uuid.NewString(),
		},
	}

	// Filtering and scoring
	scored := make([]core.RankedResult, 0, len(candidates))
	for _, rec := range candidates {
		if !r.filter.Matches(rec, filters) {
			continue
		}

		score, dimensions, ok := r.scoreCandidate(rec, parsed, filters, history)
		if !ok {
			result.Diagnostics.SkippedCandidates++
			continue
		}

		scored = append(scored, core.RankedResult{
			Record:            rec,
			Score:             score,
			MatchedDimensions: dimensions,
		})
	}

	// Sorting
	sortResults(scored, filters)
	for i := range scored {
		scored[i].Rank = i + 1
	}

	result.Results = scored
	result.Explanation = buildExplanation(parsed, filters, len(scored))
	return result
}

// scoreCandidate isolates scoring failures to the single candidate
func (r *Ranker) scoreCandidate(rec core.VehicleRecord, parsed core.ParsedQuery, filters core.FilterSet, history []string) (score float64, dimensions []string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			score = 0
			dimensions = nil
			ok = false
		}
	}()

	score, dimensions = r.scorer.Score(rec, parsed, filters, history)
	return score, dimensions, true
}

// sortResults orders by relevance score or the explicit sort field,
// with a deterministic tie-break chain: createdAt descending, then ID
// ascending
func sortResults(results []core.RankedResult, filters core.FilterSet) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]

		primaryA, primaryB, descending := sortKeyValues(a, b, filters)
		if primaryA != primaryB {
			if descending {
				return primaryA > primaryB
			}
			return primaryA < primaryB
		}

		if !a.Record.CreatedAt.Equal(b.Record.CreatedAt) {
			return a.Record.CreatedAt.After(b.Record.CreatedAt)
		}
		return a.Record.ID < b.Record.ID
	})
}

func sortKeyValues(a, b core.RankedResult, filters core.FilterSet) (float64, float64, bool) {
	switch filters.SortBy {
	case core.SortByPrice:
		return a.Record.Price, b.Record.Price, filters.SortOrder == core.SortDesc
	case core.SortByYear:
		return float64(a.Record.Year), float64(b.Record.Year), filters.SortOrder == core.SortDesc
	case core.SortByMileage:
		return float64(a.Record.Mileage), float64(b.Record.Mileage), filters.SortOrder == core.SortDesc
	default:
		// Relevance always orders by score descending
		return a.Score, b.Score, true
	}
}

// buildExplanation summarizes the pass for display: result count,
// whether natural-language parsing fired, and the structured fields
// that drove the ranking when parse confidence is high
func buildExplanation(parsed core.ParsedQuery, filters core.FilterSet, count int) string {
	if count == 0 {
		return "No cars matched your search"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d matching cars", count)

	if parsed.NaturalLanguage {
		sb.WriteString(" using natural-language search")
	}

	if parsed.Confidence > explanationConfidenceThreshold {
		if fields := describeFields(parsed); fields != "" {
			sb.WriteString(", matching ")
			sb.WriteString(fields)
		}
	}

	if filters.SortBy != core.SortByRelevance {
		fmt.Fprintf(&sb, ", sorted by %s (%s)", filters.SortBy, filters.SortOrder)
	}

	return sb.String()
}

func describeFields(parsed core.ParsedQuery) string {
	var fields []string
	if parsed.BudgetMax != nil {
		fields = append(fields, fmt.Sprintf("budget up to %.0f", *parsed.BudgetMax))
	}
	if parsed.Brand != "" {
		fields = append(fields, "brand "+parsed.Brand)
	}
	if parsed.BodyStyle != "" {
		fields = append(fields, "body style "+parsed.BodyStyle)
	}
	return strings.Join(fields, " and ")
}
