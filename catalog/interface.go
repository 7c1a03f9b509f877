// Package catalog implements the candidate-supply collaborator: storage
// backends holding vehicle listings, fetched ahead of each ranking pass.
// Filter narrowing here is advisory only; the ranking core re-applies
// filters authoritatively.
package catalog

import (
	"context"

	"github.com/carsuggester/vehiclesearch/core"
)

// Store is a vehicle listing store
type Store interface {
	core.CandidateSource

	SaveVehicle(ctx context.Context, rec core.VehicleRecord) error
	GetVehicle(ctx context.Context, id string) (core.VehicleRecord, error)
	DeleteVehicle(ctx context.Context, id string) error
	ListVehicles(ctx context.Context) ([]core.VehicleRecord, error)
	Close() error
}

// withinRanges performs the advisory range narrowing shared by the
// key-value backends
func withinRanges(rec core.VehicleRecord, filters core.FilterSet) bool {
	filters = core.NormalizeFilters(filters)

	if !filters.PriceRange.IsZero() && !filters.PriceRange.Contains(rec.Price) {
		return false
	}
	if !filters.YearRange.IsZero() && !filters.YearRange.Contains(float64(rec.Year)) {
		return false
	}
	if !filters.MileageRange.IsZero() && !filters.MileageRange.Contains(float64(rec.Mileage)) {
		return false
	}
	return true
}
