package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/carsuggester/vehiclesearch/core"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	testStoreOperations(t, store)
}

func TestBoltStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.bolt")

	store, err := NewBoltStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create BoltDB store: %v", err)
	}
	defer store.Close()

	testStoreOperations(t, store)
}

func TestBadgerStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewBadgerStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create BadgerDB store: %v", err)
	}
	defer store.Close()

	testStoreOperations(t, store)
}

// testStoreOperations runs a shared suite on any store implementation
func testStoreOperations(t *testing.T, store Store) {
	ctx := context.Background()

	vehicles := []core.VehicleRecord{
		{
			ID: "bmw-320i", Make: "BMW", Model: "320i", Year: 2021,
			Price: 28000, Mileage: 45000, FuelType: "petrol",
			Transmission: "automatic", Location: "Berlin",
			CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "toyota-camry", Make: "Toyota", Model: "Camry", Year: 2022,
			Price: 24000, Mileage: 20000, FuelType: "hybrid",
			Transmission: "automatic", Location: "Hamburg",
			CreatedAt: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "tesla-model3", Make: "Tesla", Model: "Model 3", Year: 2023,
			Price: 42000, Mileage: 8000, FuelType: "electric",
			Transmission: "automatic", Location: "Munich",
			CreatedAt: time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, v := range vehicles {
		if err := store.SaveVehicle(ctx, v); err != nil {
			t.Fatalf("Failed to save vehicle %s: %v", v.ID, err)
		}
	}

	// Get round trip
	got, err := store.GetVehicle(ctx, "toyota-camry")
	if err != nil {
		t.Fatalf("Failed to get vehicle: %v", err)
	}
	if got.Make != "Toyota" || got.Price != 24000 {
		t.Errorf("Vehicle mismatch: got %+v", got)
	}

	// Missing vehicle
	_, err = store.GetVehicle(ctx, "does-not-exist")
	if !errors.Is(err, core.ErrVehicleNotFound) {
		t.Errorf("Expected ErrVehicleNotFound, got %v", err)
	}

	// Invalid vehicle rejected
	if err := store.SaveVehicle(ctx, core.VehicleRecord{ID: ""}); err == nil {
		t.Error("Expected error saving vehicle without ID")
	}

	// Overwrite updates in place
	updated := vehicles[0]
	updated.Price = 26500
	if err := store.SaveVehicle(ctx, updated); err != nil {
		t.Fatalf("Failed to update vehicle: %v", err)
	}
	got, err = store.GetVehicle(ctx, "bmw-320i")
	if err != nil {
		t.Fatalf("Failed to get updated vehicle: %v", err)
	}
	if got.Price != 26500 {
		t.Errorf("Expected updated price 26500, got %v", got.Price)
	}

	// List returns all records
	all, err := store.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("Failed to list vehicles: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 vehicles, got %d", len(all))
	}

	// FetchCandidates narrows by price range
	candidates, err := store.FetchCandidates(ctx, core.FilterSet{
		PriceRange: core.Range{Min: 20000, Max: 30000},
	})
	if err != nil {
		t.Fatalf("Failed to fetch candidates: %v", err)
	}
	if len(candidates) != 2 {
		t.Errorf("Expected 2 candidates in price range, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.Price < 20000 || c.Price > 30000 {
			t.Errorf("Candidate %s outside price range: %v", c.ID, c.Price)
		}
	}

	// Unrestricted filter returns everything
	candidates, err = store.FetchCandidates(ctx, core.FilterSet{})
	if err != nil {
		t.Fatalf("Failed to fetch unrestricted candidates: %v", err)
	}
	if len(candidates) != 3 {
		t.Errorf("Expected 3 unrestricted candidates, got %d", len(candidates))
	}

	// Delete removes the record
	if err := store.DeleteVehicle(ctx, "tesla-model3"); err != nil {
		t.Fatalf("Failed to delete vehicle: %v", err)
	}
	_, err = store.GetVehicle(ctx, "tesla-model3")
	if !errors.Is(err, core.ErrVehicleNotFound) {
		t.Errorf("Expected ErrVehicleNotFound after delete, got %v", err)
	}

	if err := store.DeleteVehicle(ctx, "tesla-model3"); !errors.Is(err, core.ErrVehicleNotFound) {
		t.Errorf("Expected ErrVehicleNotFound deleting twice, got %v", err)
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rec := core.VehicleRecord{
		ID: "vw-golf", Make: "Volkswagen", Model: "Golf", Year: 2020,
		Price: 18000, Mileage: 40000, FuelType: "petrol",
		Transmission: "manual",
		CreatedAt:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.SaveVehicle(ctx, rec); err != nil {
		t.Fatalf("Failed to save vehicle: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}

	if err := store.SaveVehicle(ctx, rec); !errors.Is(err, core.ErrCatalogClosed) {
		t.Errorf("Expected ErrCatalogClosed on save, got %v", err)
	}
	if _, err := store.GetVehicle(ctx, "vw-golf"); !errors.Is(err, core.ErrCatalogClosed) {
		t.Errorf("Expected ErrCatalogClosed on get, got %v", err)
	}
	if err := store.DeleteVehicle(ctx, "vw-golf"); !errors.Is(err, core.ErrCatalogClosed) {
		t.Errorf("Expected ErrCatalogClosed on delete, got %v", err)
	}
	if _, err := store.ListVehicles(ctx); !errors.Is(err, core.ErrCatalogClosed) {
		t.Errorf("Expected ErrCatalogClosed on list, got %v", err)
	}
	if _, err := store.FetchCandidates(ctx, core.FilterSet{}); !errors.Is(err, core.ErrCatalogClosed) {
		t.Errorf("Expected ErrCatalogClosed on fetch, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory needs nothing", Config{Type: StoreMemory}, false},
		{"bolt needs path", Config{Type: StoreBolt}, true},
		{"bolt with path", Config{Type: StoreBolt, Path: "/tmp/db"}, false},
		{"badger needs path", Config{Type: StoreBadger}, true},
		{"elastic needs addresses", Config{Type: StoreElastic}, true},
		{"elastic with address", Config{Type: StoreElastic, Elastic: ElasticConfig{Addresses: []string{"http://localhost:9200"}}}, false},
		{"unknown type", Config{Type: "cassandra"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewStoreMemory(t *testing.T) {
	store, err := NewStore(Config{Type: StoreMemory})
	if err != nil {
		t.Fatalf("Failed to create memory store via factory: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("Expected *MemoryStore, got %T", store)
	}
}

func TestNewStoreBolt(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "factory.bolt")

	store, err := NewStore(Config{Type: StoreBolt, Path: dbPath})
	if err != nil {
		t.Fatalf("Failed to create bolt store via factory: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*BoltStore); !ok {
		t.Errorf("Expected *BoltStore, got %T", store)
	}
}

func TestNewStoreRejectsInvalidConfig(t *testing.T) {
	if _, err := NewStore(Config{Type: "cassandra"}); err == nil {
		t.Error("Expected error for unsupported catalog type")
	}
}
