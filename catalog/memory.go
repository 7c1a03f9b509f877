package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/carsuggester/vehiclesearch/core"
)

// MemoryStore implements in-memory vehicle storage (non-persistent)
type MemoryStore struct {
	mu       sync.RWMutex
	vehicles map[string]core.VehicleRecord
	closed   bool
}

// NewMemoryStore creates a new in-memory vehicle store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles: make(map[string]core.VehicleRecord),
	}
}

// SaveVehicle stores a vehicle record, replacing any previous version
func (m *MemoryStore) SaveVehicle(ctx context.Context, rec core.VehicleRecord) error {
	if err := core.ValidateVehicle(rec); err != nil {
		return fmt.Errorf("invalid vehicle: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return core.ErrCatalogClosed
	}
	m.vehicles[rec.ID] = core.NormalizeVehicle(rec)
	return nil
}

// GetVehicle retrieves a vehicle by ID
func (m *MemoryStore) GetVehicle(ctx context.Context, id string) (core.VehicleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return core.VehicleRecord{}, core.ErrCatalogClosed
	}
	rec, exists := m.vehicles[id]
	if !exists {
		return core.VehicleRecord{}, core.ErrVehicleNotFound
	}
	return rec, nil
}

// DeleteVehicle removes a vehicle by ID
func (m *MemoryStore) DeleteVehicle(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return core.ErrCatalogClosed
	}
	if _, exists := m.vehicles[id]; !exists {
		return core.ErrVehicleNotFound
	}
	delete(m.vehicles, id)
	return nil
}

// ListVehicles returns all stored vehicles, ordered by ID for
// deterministic output
func (m *MemoryStore) ListVehicles(ctx context.Context) ([]core.VehicleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, core.ErrCatalogClosed
	}
	vehicles := make([]core.VehicleRecord, 0, len(m.vehicles))
	for _, rec := range m.vehicles {
		vehicles = append(vehicles, rec)
	}

	sort.Slice(vehicles, func(i, j int) bool {
		return vehicles[i].ID < vehicles[j].ID
	})
	return vehicles, nil
}

// FetchCandidates returns the stored vehicles narrowed by the advisory
// range filters
func (m *MemoryStore) FetchCandidates(ctx context.Context, filters core.FilterSet) ([]core.VehicleRecord, error) {
	vehicles, err := m.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]core.VehicleRecord, 0, len(vehicles))
	for _, rec := range vehicles {
		if withinRanges(rec, filters) {
			candidates = append(candidates, rec)
		}
	}
	return candidates, nil
}

// Close marks the store closed; later operations fail with
// ErrCatalogClosed, matching the file-backed stores
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
