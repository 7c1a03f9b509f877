package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/carsuggester/vehiclesearch/core"
)

const vehiclesBucket = "vehicles"

// BoltStore implements vehicle storage using BoltDB
type BoltStore struct {
	db   *bbolt.DB
	path string
}

// NewBoltStore creates a new BoltDB-backed vehicle store
func NewBoltStore(dbPath string) (*BoltStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB at %s: %w", dbPath, err)
	}

	store := &BoltStore{db: db, path: dbPath}

	if err := store.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return store, nil
}

func (b *BoltStore) initBuckets() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(vehiclesBucket)); err != nil {
			return fmt.Errorf("failed to create vehicles bucket: %w", err)
		}
		return nil
	})
}

// SaveVehicle stores a vehicle record, replacing any previous version
func (b *BoltStore) SaveVehicle(ctx context.Context, rec core.VehicleRecord) error {
	if err := core.ValidateVehicle(rec); err != nil {
		return fmt.Errorf("invalid vehicle: %w", err)
	}
	rec = core.NormalizeVehicle(rec)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle %s: %w", rec.ID, err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(vehiclesBucket)).Put([]byte(rec.ID), data)
	})
}

// GetVehicle retrieves a vehicle by ID
func (b *BoltStore) GetVehicle(ctx context.Context, id string) (core.VehicleRecord, error) {
	var rec core.VehicleRecord

	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(vehiclesBucket)).Get([]byte(id))
		if data == nil {
			return core.ErrVehicleNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return core.VehicleRecord{}, err
	}

	return rec, nil
}

// DeleteVehicle removes a vehicle by ID
func (b *BoltStore) DeleteVehicle(ctx context.Context, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(vehiclesBucket))
		if bucket.Get([]byte(id)) == nil {
			return core.ErrVehicleNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

// ListVehicles returns all stored vehicles in key order
func (b *BoltStore) ListVehicles(ctx context.Context) ([]core.VehicleRecord, error) {
	var vehicles []core.VehicleRecord

	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(vehiclesBucket)).ForEach(func(k, v []byte) error {
			var rec core.VehicleRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal vehicle %s: %w", string(k), err)
			}
			vehicles = append(vehicles, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return vehicles, nil
}

// FetchCandidates returns the stored vehicles narrowed by the advisory
// range filters
func (b *BoltStore) FetchCandidates(ctx context.Context, filters core.FilterSet) ([]core.VehicleRecord, error) {
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
func (b *BoltStore) Close() error {
	return b.db.Close()
}
