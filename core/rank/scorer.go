package rank

import (
	"strings"
	"time"

	"github.com/carsuggester/vehiclesearch/core"
)

// Matched dimension labels reported alongside scores
const (
	DimensionMake     = "make-match"
	DimensionModel    = "model-match"
	DimensionFuel     = "fuel-match"
	DimensionBudget   = "budget-match"
	DimensionHistory  = "history-affinity"
	DimensionRecency  = "recency"
	DimensionTrending = "trending"
)

// ScoringWeights names every tunable constant in the relevance formula.
// UI-specific tweaks become an alternate weight set passed in here, not
// a forked copy of the algorithm.
type ScoringWeights struct {
	MakeMatch     float64       `yaml:"make_match" json:"make_match"`
	ModelMatch    float64       `yaml:"model_match" json:"model_match"`
	FuelKeyword   float64       `yaml:"fuel_keyword" json:"fuel_keyword"`
	BudgetMatch   float64       `yaml:"budget_match" json:"budget_match"`
	HistoryMake   float64       `yaml:"history_make" json:"history_make"`
	HistoryModel  float64       `yaml:"history_model" json:"history_model"`
	RecencyWindow float64       `yaml:"recency_window" json:"recency_window"`
	TrendingBoost float64       `yaml:"trending_boost" json:"trending_boost"`
	TrendingFuel  core.FuelType `yaml:"trending_fuel" json:"trending_fuel"`
}

// DefaultScoringWeights returns the standard relevance weights
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		MakeMatch:     100,
		ModelMatch:    90,
		FuelKeyword:   80,
		BudgetMatch:   60,
		HistoryMake:   30,
		HistoryModel:  25,
		RecencyWindow: 20,
		TrendingBoost: 15,
		TrendingFuel:  core.FuelElectric,
	}
}

// Scorer computes additive multi-dimension relevance scores. It is a
// pure function of its inputs: no randomness, no hidden state. The
// clock is injectable so recency scoring stays deterministic in tests.
type Scorer struct {
	weights ScoringWeights
	now     func() time.Time
}

// NewScorer creates a scorer with the given weight set
func NewScorer(weights ScoringWeights) *Scorer {
	return &Scorer{weights: weights, now: time.Now}
}

// WithClock overrides the scorer's clock
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Score computes the relevance of one candidate against the parsed
// query, explicit filters, and recent search history. All applicable
// bonuses stack; the returned labels record each dimension that
// contributed a non-zero term.
func (s *Scorer) Score(rec core.VehicleRecord, parsed core.ParsedQuery, filters core.FilterSet, history []string) (float64, []string) {
	score := 0.0
	var dimensions []string

	makeLower := strings.ToLower(rec.Make)
	modelLower := strings.ToLower(rec.Model)
	fuelLower := strings.ToLower(string(rec.FuelType))

	if s.textMatch(makeLower, parsed) {
		score += s.weights.MakeMatch
		dimensions = append(dimensions, DimensionMake)
	}

	if modelLower != "" && s.textMatch(modelLower, parsed) {
		score += s.weights.ModelMatch
		dimensions = append(dimensions, DimensionModel)
	}

	if containsKeyword(parsed.Keywords, fuelLower) {
		score += s.weights.FuelKeyword
		dimensions = append(dimensions, DimensionFuel)
	}

	if parsed.BudgetMax != nil && rec.Price <= *parsed.BudgetMax {
		score += s.weights.BudgetMatch
		dimensions = append(dimensions, DimensionBudget)
	}

	if affinity := s.historyAffinity(makeLower, modelLower, history); affinity > 0 {
		score += affinity
		dimensions = append(dimensions, DimensionHistory)
	}

	if recency := s.recencyBoost(rec.Year); recency > 0 {
		score += recency
		dimensions = append(dimensions, DimensionRecency)
	}

	if rec.FuelType == s.weights.TrendingFuel && s.weights.TrendingBoost > 0 {
		score += s.weights.TrendingBoost
		dimensions = append(dimensions, DimensionTrending)
	}

	return score, dimensions
}

// textMatch reports whether the attribute matches the detected brand or
// any query keyword, by equality or substring in either direction
func (s *Scorer) textMatch(attr string, parsed core.ParsedQuery) bool {
	if attr == "" {
		return false
	}

	if parsed.Brand != "" {
		brand := strings.ToLower(parsed.Brand)
		if attr == brand || strings.Contains(brand, attr) || strings.Contains(attr, brand) {
			return true
		}
	}

	return containsKeyword(parsed.Keywords, attr)
}

func containsKeyword(keywords []string, attr string) bool {
	if attr == "" {
		return false
	}
	for _, kw := range keywords {
		if kw == attr || strings.Contains(attr, kw) || strings.Contains(kw, attr) {
			return true
		}
	}
	return false
}

// historyAffinity awards a bonus per history entry mentioning the make
// or model, additive across the full history slice
func (s *Scorer) historyAffinity(makeLower, modelLower string, history []string) float64 {
	affinity := 0.0
	for _, entry := range history {
		entryLower := strings.ToLower(entry)
		if makeLower != "" && strings.Contains(entryLower, makeLower) {
			affinity += s.weights.HistoryMake
		}
		if modelLower != "" && strings.Contains(entryLower, modelLower) {
			affinity += s.weights.HistoryModel
		}
	}
	return affinity
}

// recencyBoost is monotone non-decreasing in year and floored at zero
func (s *Scorer) recencyBoost(year int) float64 {
	boost := s.weights.RecencyWindow - float64(s.now().Year()-year)
	if boost < 0 {
		return 0
	}
	return boost
}
