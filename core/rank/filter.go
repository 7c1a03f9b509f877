package rank

import (
	"github.com/carsuggester/vehiclesearch/core"
)

// FilterEngine evaluates structured filter predicates against candidate
// records. Filtering is binary; partial-match scoring belongs to the
// Scorer.
type FilterEngine struct{}

// NewFilterEngine creates a filter engine
func NewFilterEngine() *FilterEngine {
	return &FilterEngine{}
}

// Matches reports whether the record satisfies every filter predicate.
// Range checks are inclusive; a zero-valued range imposes no constraint.
// Category groups combine with AND across groups and OR within a
// group's selected values; an empty selection set is vacuously true.
// Evaluation short-circuits on the first failing check.
func (f *FilterEngine) Matches(rec core.VehicleRecord, filters core.FilterSet) bool {
	filters = core.NormalizeFilters(filters)

	if !rangeAllows(filters.PriceRange, rec.Price) {
		return false
	}
	if !rangeAllows(filters.YearRange, float64(rec.Year)) {
		return false
	}
	if !rangeAllows(filters.MileageRange, float64(rec.Mileage)) {
		return false
	}

	for group, selected := range filters.Categories {
		if len(selected) == 0 {
			continue
		}

		attr, known := categoryAttribute(rec, group)
		if !known {
			// Unknown group names impose no constraint
			continue
		}

		if !containsValue(selected, attr) {
			return false
		}
	}

	return true
}

func rangeAllows(r core.Range, v float64) bool {
	if r.IsZero() {
		return true
	}
	return r.Contains(v)
}

func categoryAttribute(rec core.VehicleRecord, group string) (string, bool) {
	switch group {
	case core.CategoryFuelType:
		return string(rec.FuelType), true
	case core.CategoryTransmission:
		return string(rec.Transmission), true
	default:
		return "", false
	}
}

func containsValue(values []string, attr string) bool {
	for _, v := range values {
		if v == attr {
			return true
		}
	}
	return false
}
