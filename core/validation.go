package core

import (
	"fmt"
	"time"
)

// ValidateVehicle checks if a vehicle record is valid
func ValidateVehicle(rec VehicleRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidVehicle)
	}

	if rec.Make == "" {
		return fmt.Errorf("%w: make cannot be empty", ErrInvalidVehicle)
	}

	if rec.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative, got %.2f", ErrInvalidVehicle, rec.Price)
	}

	if rec.Mileage < 0 {
		return fmt.Errorf("%w: mileage cannot be negative, got %d", ErrInvalidVehicle, rec.Mileage)
	}

	maxYear := time.Now().Year() + 1
	if rec.Year < 1900 || rec.Year > maxYear {
		return fmt.Errorf("%w: year %d outside plausible range [1900, %d]", ErrInvalidVehicle, rec.Year, maxYear)
	}

	return nil
}

// NormalizeVehicle fills enumerated fields that carry no recognized value
func NormalizeVehicle(rec VehicleRecord) VehicleRecord {
	switch rec.FuelType {
	case FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid:
	default:
		rec.FuelType = FuelUnknown
	}

	switch rec.Transmission {
	case TransmissionAutomatic, TransmissionManual:
	default:
		rec.Transmission = TransmissionUnknown
	}

	return rec
}

// NormalizeFilters repairs a malformed filter set instead of rejecting it.
// Ranges with min > max are swapped, and missing sort settings fall back
// to relevance-descending. Malformed filter input is never an error at the
// search boundary.
func NormalizeFilters(filters FilterSet) FilterSet {
	filters.PriceRange = normalizeRange(filters.PriceRange)
	filters.YearRange = normalizeRange(filters.YearRange)
	filters.MileageRange = normalizeRange(filters.MileageRange)

	switch filters.SortBy {
	case SortByRelevance, SortByPrice, SortByYear, SortByMileage:
	default:
		filters.SortBy = SortByRelevance
	}

	switch filters.SortOrder {
	case SortAsc, SortDesc:
	default:
		filters.SortOrder = SortDesc
	}

	return filters
}

func normalizeRange(r Range) Range {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}
