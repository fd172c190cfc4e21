package insights

import (
	"context"

	"github.com/ignite/outreach-analytics/internal/domain"
)

// Repository defines the data access contract for daily rollups.
// Implementations must be safe for concurrent use.
type Repository interface {
	// FetchDaily returns one row per entity per day over [from, to],
	// ordered by date then entity id. An empty entityIDs slice means
	// no id filter.
	FetchDaily(ctx context.Context, orgID string, kind domain.EntityKind, from, to string, entityIDs []string) ([]domain.DailyRollup, error)
}

// Cache stores computed reports between requests. Get reports a hit;
// Set is best-effort. A nil Cache disables caching entirely.
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, val any)
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Archive persists daily insight snapshots for the history endpoint.
// A nil Archive disables snapshots and history reads.
type Archive interface {
	SaveSnapshot(ctx context.Context, snap domain.InsightSnapshot) error
	ListSnapshots(ctx context.Context, orgID string, kind domain.EntityKind, from, to string) ([]domain.InsightSnapshot, error)
}
