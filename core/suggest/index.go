package suggest

import (
	"sort"
	"strings"

	"github.com/carsuggester/vehiclesearch/core"
)

// IndexEntry groups one brand with its known models
type IndexEntry struct {
	Brand  string
	Models []string
}

// BrandModelIndex is the corpus the generator matches partial input
// against. Built once from the catalog and treated as read-only.
type BrandModelIndex struct {
	entries []IndexEntry
}

// NewIndex creates an index from prepared entries
func NewIndex(entries []IndexEntry) *BrandModelIndex {
	return &BrandModelIndex{entries: entries}
}

// IndexFromVehicles builds a deduplicated brand/model index from
// catalog records. Entries are sorted so the index is deterministic
// regardless of record order.
func IndexFromVehicles(vehicles []core.VehicleRecord) *BrandModelIndex {
	models := make(map[string]map[string]bool)

	for _, v := range vehicles {
		if v.Make == "" {
			continue
		}
		if models[v.Make] == nil {
			models[v.Make] = make(map[string]bool)
		}
		if v.Model != "" {
			models[v.Make][v.Model] = true
		}
	}

	entries := make([]IndexEntry, 0, len(models))
	for brand, brandModels := range models {
		entry := IndexEntry{Brand: brand}
		for model := range brandModels {
			entry.Models = append(entry.Models, model)
		}
		sort.Strings(entry.Models)
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Brand < entries[j].Brand
	})

	return &BrandModelIndex{entries: entries}
}

// Entries returns the index contents in deterministic order
func (idx *BrandModelIndex) Entries() []IndexEntry {
	return idx.entries
}

// Len reports the number of brands in the index
func (idx *BrandModelIndex) Len() int {
	return len(idx.entries)
}

// matchText classifies how partial input matches a candidate string
func matchText(partial, candidate string) matchClass {
	candidateLower := strings.ToLower(candidate)
	if strings.HasPrefix(candidateLower, partial) {
		return matchClassPrefix
	}
	if strings.Contains(candidateLower, partial) {
		return matchClassSubstring
	}
	return matchClassNone
}

type matchClass int

const (
	matchClassNone matchClass = iota
	matchClassSubstring
	matchClassPrefix
)
