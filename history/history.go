// Package history stores per-user search queries and aggregates them
// into popularity counts used for suggestion ranking.
package history

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is a single recorded search query
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// maxEntriesPerUser bounds per-user history growth
const maxEntriesPerUser = 200

// MemoryHistory implements search history with in-memory storage
type MemoryHistory struct {
	mu      sync.RWMutex
	entries map[string][]Entry // userID -> entries, newest last
	counts  map[string]int     // normalized query -> occurrences
}

// NewMemoryHistory creates a new in-memory search history store
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		entries: make(map[string][]Entry),
		counts:  make(map[string]int),
	}
}

// Record appends a query to the user's history. Blank queries are ignored.
func (h *MemoryHistory) Record(ctx context.Context, userID, query string) error {
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

	h.mu.Lock()
	defer h.mu.Unlock()

	list := append(h.entries[userID], entry)
	if len(list) > maxEntriesPerUser {
		list = list[len(list)-maxEntriesPerUser:]
	}
	h.entries[userID] = list
	h.counts[normalize(query)]++
	return nil
}

// Recent returns the user's most recent queries, newest first,
// capped at limit
func (h *MemoryHistory) Recent(ctx context.Context, userID string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	list := h.entries[userID]
	queries := make([]string, 0, limit)
	seen := make(map[string]bool)
	for i := len(list) - 1; i >= 0 && len(queries) < limit; i-- {
		key := normalize(list[i].Query)
		if seen[key] {
			continue
		}
		seen[key] = true
		queries = append(queries, list[i].Query)
	}
	return queries, nil
}

// Popular returns the most frequently recorded queries across all
// users, highest count first
func (h *MemoryHistory) Popular(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	type countedQuery struct {
		query string
		count int
	}
	ranked := make([]countedQuery, 0, len(h.counts))
	for q, c := range h.counts {
		ranked = append(ranked, countedQuery{query: q, count: c})
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

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
