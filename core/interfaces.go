package core

import (
	"context"
)

// CandidateSource supplies the candidate set for one ranking pass.
// Implementations live outside the ranking core (in-memory catalog,
// BoltDB, BadgerDB, Elasticsearch); the filter set is advisory here,
// the ranking core re-applies filters authoritatively. Returned records
// are assumed to be deduplicated.
type CandidateSource interface {
	FetchCandidates(ctx context.Context, filters FilterSet) ([]VehicleRecord, error)
}

// SearchHistory supplies a user's recent free-text queries,
// most-recent-first, capped by the caller at a small constant.
type SearchHistory interface {
	Record(ctx context.Context, userID, query string) error
	Recent(ctx context.Context, userID string, limit int) ([]string, error)
}

// PopularityProvider supplies currently popular search phrases for the
// suggestion generator, most popular first.
type PopularityProvider interface {
	Popular(ctx context.Context, limit int) ([]string, error)
}
