package rank

import (
	"testing"
	"time"

	"github.com/carsuggester/vehiclesearch/core"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}
}

func testScorer() *Scorer {
	return NewScorer(DefaultScoringWeights()).WithClock(fixedClock())
}

func TestScorer_Dimensions(t *testing.T) {
	scorer := testScorer()

	rec := core.VehicleRecord{
		ID:       "v1",
		Make:     "Tesla",
		Model:    "Model 3",
		Year:     2023,
		Price:    42000,
		FuelType: core.FuelElectric,
	}

	parsed := core.ParsedQuery{
		Brand:    "Tesla",
		Keywords: []string{"electric"},
	}

	score, dims := scorer.Score(rec, parsed, core.FilterSet{}, nil)

	// make 100 + fuel 80 + recency (20-2)=18 + trending 15
	expected := 100.0 + 80.0 + 18.0 + 15.0
	if score != expected {
		t.Errorf("Expected score %.0f, got %.0f", expected, score)
	}

	assertHasDimension(t, dims, DimensionMake)
	assertHasDimension(t, dims, DimensionFuel)
	assertHasDimension(t, dims, DimensionRecency)
	assertHasDimension(t, dims, DimensionTrending)
}

func TestScorer_ModelAndBudget(t *testing.T) {
	scorer := testScorer()

	rec := core.VehicleRecord{
		ID:       "v2",
		Make:     "Toyota",
		Model:    "Camry",
		Year:     1990,
		Price:    22000,
		FuelType: core.FuelPetrol,
	}

	budget := 25000.0
	parsed := core.ParsedQuery{
		BudgetMax: &budget,
		Keywords:  []string{"camry"},
	}

	score, dims := scorer.Score(rec, parsed, core.FilterSet{}, nil)

	// model 90 + budget 60; recency floored at 0 for a 1990 car
	if score != 150 {
		t.Errorf("Expected score 150, got %.0f", score)
	}
	assertHasDimension(t, dims, DimensionModel)
	assertHasDimension(t, dims, DimensionBudget)
}

func TestScorer_HistoryAffinity(t *testing.T) {
	scorer := testScorer()

	rec := core.VehicleRecord{
		ID:    "v3",
		Make:  "BMW",
		Model: "X5",
		Year:  1990,
		Price: 30000,
	}

	history := []string{
		"bmw x5 for sale",  // make +30, model +25
		"used bmw deals",   // make +30
		"toyota camry",     // no hit
	}

	score, dims := scorer.Score(rec, core.ParsedQuery{}, core.FilterSet{}, history)

	if score != 85 {
		t.Errorf("Expected history affinity 85, got %.0f", score)
	}
	assertHasDimension(t, dims, DimensionHistory)
}

func TestScorer_RecencyMonotone(t *testing.T) {
	scorer := testScorer()

	// A newer car never scores lower than an otherwise identical older one
	previous := -1.0
	for year := 1980; year <= 2025; year++ {
		rec := core.VehicleRecord{ID: "v", Make: "Ford", Year: year, Price: 10000}
		score, _ := scorer.Score(rec, core.ParsedQuery{}, core.FilterSet{}, nil)
		if score < previous {
			t.Fatalf("Score decreased at year %d: %.0f < %.0f", year, score, previous)
		}
		if score < 0 {
			t.Fatalf("Score negative at year %d", year)
		}
		previous = score
	}
}

func TestScorer_Deterministic(t *testing.T) {
	scorer := testScorer()

	rec := core.VehicleRecord{ID: "v4", Make: "Audi", Model: "A4", Year: 2022, Price: 28000, FuelType: core.FuelDiesel}
	parsed := core.ParsedQuery{Brand: "Audi", Keywords: []string{"diesel"}}
	history := []string{"audi a4"}

	first, firstDims := scorer.Score(rec, parsed, core.FilterSet{}, history)
	second, secondDims := scorer.Score(rec, parsed, core.FilterSet{}, history)

	if first != second {
		t.Errorf("Scores differ across calls: %.2f vs %.2f", first, second)
	}
	if len(firstDims) != len(secondDims) {
		t.Errorf("Dimension sets differ across calls: %v vs %v", firstDims, secondDims)
	}
}

func TestScorer_TunableTrendingFuel(t *testing.T) {
	weights := DefaultScoringWeights()
	weights.TrendingFuel = core.FuelHybrid
	scorer := NewScorer(weights).WithClock(fixedClock())

	hybrid := core.VehicleRecord{ID: "h", Make: "Toyota", Year: 1990, FuelType: core.FuelHybrid}
	electric := core.VehicleRecord{ID: "e", Make: "Tesla", Year: 1990, FuelType: core.FuelElectric}

	hybridScore, _ := scorer.Score(hybrid, core.ParsedQuery{}, core.FilterSet{}, nil)
	electricScore, _ := scorer.Score(electric, core.ParsedQuery{}, core.FilterSet{}, nil)

	if hybridScore != weights.TrendingBoost {
		t.Errorf("Expected trending boost %.0f for hybrid, got %.0f", weights.TrendingBoost, hybridScore)
	}
	if electricScore != 0 {
		t.Errorf("Expected no boost for electric with hybrid trending, got %.0f", electricScore)
	}
}

func assertHasDimension(t *testing.T, dims []string, want string) {
	t.Helper()
	for _, d := range dims {
		if d == want {
			return
		}
	}
	t.Errorf("Expected dimension %q in %v", want, dims)
}
