package core

import (
	"time"
)

// FuelType enumerates the recognized drivetrain fuel categories
type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
	FuelUnknown  FuelType = "unknown"
)

// Transmission enumerates the recognized transmission categories
type Transmission string

const (
	TransmissionAutomatic Transmission = "automatic"
	TransmissionManual    Transmission = "manual"
	TransmissionUnknown   Transmission = "unknown"
)

// VehicleRecord represents one car listing available for ranking.
// Records are immutable for the duration of a ranking pass; ranking
// attaches scores to copies, never to the original.
type VehicleRecord struct {
	ID           string       `json:"id"`
	Make         string       `json:"make"`
	Model        string       `json:"model"`
	Year         int          `json:"year"`
	Price        float64      `json:"price"`
	Mileage      int          `json:"mileage"`
	FuelType     FuelType     `json:"fuel_type"`
	Transmission Transmission `json:"transmission"`
	Location     string       `json:"location,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// IntentCategory classifies the kind of request extracted from free text
type IntentCategory string

const (
	IntentBudget      IntentCategory = "budget"
	IntentLifestyle   IntentCategory = "lifestyle"
	IntentPerformance IntentCategory = "performance"
	IntentEfficiency  IntentCategory = "efficiency"
	IntentGeneral     IntentCategory = "general"
)

// ParsedQuery is the structured intent extracted from a free-text query.
// Created fresh per search invocation and never mutated.
type ParsedQuery struct {
	RawText         string         `json:"raw_text"`
	Intent          IntentCategory `json:"intent"`
	BudgetMax       *float64       `json:"budget_max,omitempty"`
	Brand           string         `json:"brand,omitempty"`
	BodyStyle       string         `json:"body_style,omitempty"`
	Keywords        []string       `json:"keywords"`
	Confidence      float64        `json:"confidence"`
	Suggestions     []string       `json:"suggestions,omitempty"`
	NaturalLanguage bool           `json:"natural_language"`
	// KeywordOnly is set when reference data was unavailable and the
	// parser degraded to plain keyword extraction.
	KeywordOnly bool `json:"keyword_only,omitempty"`
}

// SortKey selects the ordering field for ranked results
type SortKey string

const (
	SortByRelevance SortKey = "relevance"
	SortByPrice     SortKey = "price"
	SortByYear      SortKey = "year"
	SortByMileage   SortKey = "mileage"
)

// SortOrder selects ascending or descending ordering
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Range is an inclusive numeric interval. A zero-valued Range imposes
// no constraint.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IsZero reports whether the range imposes no constraint
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Contains reports whether v falls within the inclusive interval
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterSet holds the explicit structured filters chosen by the caller.
// Passed by value per query; the core never stores it.
type FilterSet struct {
	PriceRange   Range               `json:"price_range"`
	YearRange    Range               `json:"year_range"`
	MileageRange Range               `json:"mileage_range"`
	Categories   map[string][]string `json:"categories,omitempty"`
	SortBy       SortKey             `json:"sort_by"`
	SortOrder    SortOrder           `json:"sort_order"`
}

// Category group names recognized by the filter engine
const (
	CategoryFuelType     = "fuelType"
	CategoryTransmission = "transmission"
)

// RankedResult decorates a vehicle record with its computed relevance
type RankedResult struct {
	Record            VehicleRecord `json:"record"`
	Score             float64       `json:"score"`
	MatchedDimensions []string      `json:"matched_dimensions,omitempty"`
	Rank              int           `json:"rank"`
}

// SuggestionKind enumerates the origin of an autocomplete entry
type SuggestionKind string

const (
	SuggestionBrand           SuggestionKind = "brand"
	SuggestionModel           SuggestionKind = "model"
	SuggestionCategory        SuggestionKind = "category"
	SuggestionRecent          SuggestionKind = "recent"
	SuggestionPopular         SuggestionKind = "popular"
	SuggestionNaturalLanguage SuggestionKind = "naturalLanguage"
)

// SuggestionItem is a single autocomplete entry
type SuggestionItem struct {
	Text       string         `json:"text"`
	Kind       SuggestionKind `json:"kind"`
	Popularity int            `json:"popularity"`
	Subtitle   string         `json:"subtitle,omitempty"`
}
