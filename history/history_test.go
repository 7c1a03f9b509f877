package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/carsuggester/vehiclesearch/core"
)

// store is the common surface both backends implement
type store interface {
	core.SearchHistory
	core.PopularityProvider
}

func TestMemoryHistory(t *testing.T) {
	testHistoryOperations(t, NewMemoryHistory())
}

func TestBoltHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.bolt")

	h, err := NewBoltHistory(path)
	if err != nil {
		t.Fatalf("Failed to create bolt history: %v", err)
	}
	defer h.Close()

	testHistoryOperations(t, h)
}

func testHistoryOperations(t *testing.T, h store) {
	ctx := context.Background()

	queries := []string{"bmw suv", "electric cars", "toyota hybrid", "bmw suv"}
	for _, q := range queries {
		if err := h.Record(ctx, "user-1", q); err != nil {
			t.Fatalf("Failed to record query %q: %v", q, err)
		}
	}
	if err := h.Record(ctx, "user-2", "electric cars"); err != nil {
		t.Fatalf("Failed to record query for second user: %v", err)
	}

	// Recent is newest first with duplicates collapsed
	recent, err := h.Recent(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("Failed to get recent queries: %v", err)
	}
	want := []string{"bmw suv", "toyota hybrid", "electric cars"}
	if len(recent) != len(want) {
		t.Fatalf("Expected %d recent queries, got %d: %v", len(want), len(recent), recent)
	}
	for i := range want {
		if recent[i] != want[i] {
			t.Errorf("Recent[%d] = %q, want %q", i, recent[i], want[i])
		}
	}

	// Limit caps the result
	recent, err = h.Recent(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("Failed to get limited recent queries: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("Expected 2 recent queries, got %d", len(recent))
	}

	// Unknown user has no history
	recent, err = h.Recent(ctx, "nobody", 5)
	if err != nil {
		t.Fatalf("Failed to get recent for unknown user: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Expected no history for unknown user, got %v", recent)
	}

	// Blank queries are ignored
	if err := h.Record(ctx, "user-1", "   "); err != nil {
		t.Fatalf("Failed to record blank query: %v", err)
	}
	recent, _ = h.Recent(ctx, "user-1", 10)
	if len(recent) != 3 {
		t.Errorf("Blank query should not be recorded, got %v", recent)
	}

	// Popular counts across users
	popular, err := h.Popular(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to get popular queries: %v", err)
	}
	if len(popular) != 2 {
		t.Fatalf("Expected 2 popular queries, got %d", len(popular))
	}
	if popular[0] != "bmw suv" && popular[0] != "electric cars" {
		t.Errorf("Expected a twice-recorded query first, got %q", popular[0])
	}
}

func TestMemoryHistoryCapsEntries(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory()

	for i := 0; i < maxEntriesPerUser+50; i++ {
		if err := h.Record(ctx, "user-1", fmt.Sprintf("query %d", i)); err != nil {
			t.Fatalf("Failed to record query %d: %v", i, err)
		}
	}

	h.mu.RLock()
	n := len(h.entries["user-1"])
	h.mu.RUnlock()
	if n != maxEntriesPerUser {
		t.Errorf("Expected history capped at %d entries, got %d", maxEntriesPerUser, n)
	}

	// Newest entries survive the trim
	recent, err := h.Recent(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("Failed to get recent: %v", err)
	}
	wantLast := fmt.Sprintf("query %d", maxEntriesPerUser+49)
	if len(recent) != 1 || recent[0] != wantLast {
		t.Errorf("Expected newest query %q, got %v", wantLast, recent)
	}
}
