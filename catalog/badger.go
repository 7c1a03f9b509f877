package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/carsuggester/vehiclesearch/core"
)

const vehicleKeyPrefix = "veh:"

// BadgerStore implements vehicle storage using BadgerDB
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore creates a new BadgerDB-backed vehicle store
func NewBadgerStore(dbPath string) (*BadgerStore, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dbPath, err)
	}

	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable logging for cleaner output

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", dbPath, err)
	}

	return &BadgerStore{db: db, path: dbPath}, nil
}

func makeVehicleKey(id string) []byte {
	return []byte(vehicleKeyPrefix + id)
}

// SaveVehicle stores a vehicle record, replacing any previous version
func (b *BadgerStore) SaveVehicle(ctx context.Context, rec core.VehicleRecord) error {
	if err := core.ValidateVehicle(rec); err != nil {
		return fmt.Errorf("invalid vehicle: %w", err)
	}
	rec = core.NormalizeVehicle(rec)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle %s: %w", rec.ID, err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeVehicleKey(rec.ID), data)
	})
}

// GetVehicle retrieves a vehicle by ID
func (b *BadgerStore) GetVehicle(ctx context.Context, id string) (core.VehicleRecord, error) {
	var rec core.VehicleRecord

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeVehicleKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return core.ErrVehicleNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return core.VehicleRecord{}, err
	}

	return rec, nil
}

// DeleteVehicle removes a vehicle by ID
func (b *BadgerStore) DeleteVehicle(ctx context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		key := makeVehicleKey(id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return core.ErrVehicleNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// ListVehicles returns all stored vehicles in key order
func (b *BadgerStore) ListVehicles(ctx context.Context) ([]core.VehicleRecord, error) {
	var vehicles []core.VehicleRecord

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vehicleKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec core.VehicleRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("failed to unmarshal vehicle: %w", err)
				}
				vehicles = append(vehicles, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return vehicles, nil
}

// FetchCandidates returns the stored vehicles narrowed by the advisory
// range filters
func (b *BadgerStore) FetchCandidates(ctx context.Context, filters core.FilterSet) ([]core.VehicleRecord, error) {
	vehicles, err := b.ListVehicles(ctx)
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

// Close closes the underlying database
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
