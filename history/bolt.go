package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var (
	bucketEntries = []byte("history_entries")
	bucketCounts  = []byte("history_counts")
)

// BoltHistory implements search history with BoltDB storage, so
// recent queries survive restarts
type BoltHistory struct {
	db *bbolt.DB
}

// NewBoltHistory creates a BoltDB-backed search history store
func NewBoltHistory(path string) (*BoltHistory, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt history at %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEntries); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketCounts)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history buckets: %w", err)
	}

	return &BoltHistory{db: db}, nil
}

// Record appends a query to the user's history. Blank queries are ignored.
func (h *BoltHistory) Record(ctx context.Context, userID, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	entry := Entry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Query:     query,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	return h.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(bucketEntries)
		userBucket, err := users.CreateBucketIfNotExists([]byte(userID))
		if err != nil {
			return err
		}

		// Key orders entries chronologically; uuid breaks same-nano ties
		key := fmt.Sprintf("%020d:%s", entry.Timestamp.UnixNano(), entry.ID)
		if err := userBucket.Put([]byte(key), data); err != nil {
			return err
		}

		// Trim oldest entries beyond the per-user cap. Keys are
		// collected first: deleting while iterating is unsafe.
		var keys [][]byte
		c := userBucket.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for i := 0; i < len(keys)-maxEntriesPerUser; i++ {
			if err := userBucket.Delete(keys[i]); err != nil {
				return err
			}
		}

		counts := tx.Bucket(bucketCounts)
		countKey := []byte(normalize(query))
		var count uint64
		if v := counts.Get(countKey); len(v) == 8 {
			count = binary.BigEndian.Uint64(v)
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, count+1)
		return counts.Put(countKey, buf)
	})
}

// Recent returns the user's most recent queries, newest first,
// capped at limit
func (h *BoltHistory) Recent(ctx context.Context, userID string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	var queries []string
	err := h.db.View(func(tx *bbolt.Tx) error {
		userBucket := tx.Bucket(bucketEntries).Bucket([]byte(userID))
		if userBucket == nil {
			return nil
		}

		seen := make(map[string]bool)
		c := userBucket.Cursor()
		for k, v := c.Last(); k != nil && len(queries) < limit; k, v = c.Prev() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal history entry: %w", err)
			}
			key := normalize(entry.Query)
			if seen[key] {
				continue
			}
			seen[key] = true
			queries = append(queries, entry.Query)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return queries, nil
}

// Popular returns the most frequently recorded queries across all
// users, highest count first
func (h *BoltHistory) Popular(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	type countedQuery struct {
		query string
		count uint64
	}
	var ranked []countedQuery

	err := h.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCounts).ForEach(func(k, v []byte) error {
			if len(v) != 8 {
				return nil
			}
			ranked = append(ranked, countedQuery{
				query: string(k),
				count: binary.BigEndian.Uint64(v),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].query < ranked[j].query
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	queries := make([]string, len(ranked))
	for i, r := range ranked {
		queries[i] = r.query
	}
	return queries, nil
}

// Close releases the underlying database
func (h *BoltHistory) Close() error {
	return h.db.Close()
}
