package query

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category describes one body-style category known to the parser
type Category struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// ReferenceData holds the static lists the parser and suggestion
// generator match against. Loaded once at process start and treated as
// read-only afterwards, so no locking is required.
type ReferenceData struct {
	Brands     []string   `yaml:"brands" json:"brands"`
	Categories []Category `yaml:"categories" json:"categories"`
	NLExamples []string   `yaml:"nl_examples" json:"nl_examples"`
}

// LoadReferenceData reads reference lists from a YAML file
func LoadReferenceData(path string) (*ReferenceData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data from %s: %w", path, err)
	}

	var ref ReferenceData
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("failed to parse reference data: %w", err)
	}

	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reference data: %w", err)
	}

	return &ref, nil
}

// Validate checks that the reference lists are usable
func (r *ReferenceData) Validate() error {
	if len(r.Brands) == 0 {
		return fmt.Errorf("reference data contains no brands")
	}
	for i, b := range r.Brands {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("brand at index %d is empty", i)
		}
	}
	for i, c := range r.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("category at index %d has empty name", i)
		}
	}
	return nil
}

// CategoryNames returns the body-style names in declaration order
func (r *ReferenceData) CategoryNames() []string {
	names := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		names[i] = c.Name
	}
	return names
}

// DefaultReferenceData returns the compiled-in reference lists used when
// no reference file is configured
func DefaultReferenceData() *ReferenceData {
	return &ReferenceData{
		Brands: []string{
			"Toyota", "BMW", "Mercedes-Benz", "Audi", "Volkswagen",
			"Ford", "Honda", "Tesla", "Hyundai", "Kia",
			"Nissan", "Peugeot", "Renault", "Skoda", "Volvo",
			"Mazda", "Porsche", "Lexus", "Seat", "Fiat",
		},
		Categories: []Category{
			{Name: "SUV", Description: "Sport utility vehicles and crossovers"},
			{Name: "Sedan", Description: "Four-door saloon cars"},
			{Name: "Hatchback", Description: "Compact cars with a rear hatch"},
			{Name: "Estate", Description: "Station wagons with extended cargo space"},
			{Name: "Coupe", Description: "Two-door sports-styled cars"},
			{Name: "Convertible", Description: "Cars with retractable roofs"},
			{Name: "Van", Description: "Panel vans and people carriers"},
			{Name: "Pickup", Description: "Light trucks with an open cargo bed"},
		},
		NLExamples: []string{
			"Show me reliable family cars under 25k",
			"Best electric cars for commuting",
			"Cheap first car for a student",
			"Luxury SUV with low mileage",
			"Fuel efficient hybrid for city driving",
			"Sporty coupe under 40k",
		},
	}
}
