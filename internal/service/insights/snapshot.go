package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/cache"
	"github.com/ignite/outreach-analytics/internal/domain"
	"github.com/ignite/outreach-analytics/internal/pkg/logger"
)

// Snapshot aggregates one UTC day and archives it for history reads,
// then drops the kind's cached reports since fresher data just
// landed. ErrNoData when the day has no rows for the kind.
func (s *Service) Snapshot(ctx context.Context, orgID string, kind domain.EntityKind, date string) (*domain.InsightSnapshot, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	if err := analytics.ValidateDateRange(date, date); err != nil {
		return nil, err
	}

	records, err := s.repo.FetchDaily(ctx, orgID, kind, date, date, nil)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	totals := analytics.Aggregate(records)
	rates := analytics.Rates(totals)
	snap := domain.InsightSnapshot{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Kind:           kind,
		Date:           date,
		Totals:         totals,
		UniqueEntities: analytics.UniqueEntities(records),
		OpenRate:       rates.OpenRate,
		ClickRate:      rates.ClickRate,
		ReplyRate:      rates.ReplyRate,
		BounceRate:     rates.BounceRate,
		DeliveryRate:   rates.DeliveryRate,
		HealthScore:    analytics.HealthScore(rates, s.scoring.Weights),
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.archive.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("archive snapshot: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPrefix(ctx, cache.Prefix(orgID, string(kind))); err != nil {
			logger.Warn("cache invalidation after snapshot failed",
				"organization_id", orgID, "entity_kind", string(kind), "error", err.Error())
		}
	}
	return &snap, nil
}

// History returns archived daily snapshots over the range, oldest
// first.
func (s *Service) History(ctx context.Context, orgID string, kind domain.EntityKind, from, to string) ([]domain.InsightSnapshot, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	if err := analytics.ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	return s.archive.ListSnapshots(ctx, orgID, kind, from, to)
}
