package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/cache"
	"github.com/ignite/outreach-analytics/internal/domain"
)

// Scoring bundles the tunable inputs behind health scores. Zero
// values fall back to the published defaults, so Scoring{} is a valid
// configuration.
type Scoring struct {
	Weights    analytics.HealthWeights
	Thresholds analytics.HealthThresholds
}

// Service implements the analytics read path. It coordinates the
// rollup repository, the report cache, and the snapshot archive.
// All public methods are safe for concurrent use if the underlying
// collaborators are concurrency-safe.
type Service struct {
	repo    Repository
	cache   Cache
	archive Archive
	scoring Scoring
}

// NewService creates an insights service. cache and archive may be
// nil, which disables caching and snapshot archival respectively.
func NewService(repo Repository, cache Cache, archive Archive, scoring Scoring) *Service {
	if scoring.Weights == (analytics.HealthWeights{}) {
		scoring.Weights = analytics.DefaultHealthWeights()
	}
	if scoring.Thresholds == (analytics.HealthThresholds{}) {
		scoring.Thresholds = analytics.DefaultHealthThresholds()
	}
	return &Service{repo: repo, cache: cache, archive: archive, scoring: scoring}
}

// OverviewReport is the headline rollup for a date range: totals,
// rates, population size, health, and data plausibility findings.
type OverviewReport struct {
	Totals         domain.MetricTotals         `json:"totals"`
	Records        int                         `json:"records"`
	UniqueEntities int                         `json:"unique_entities"`
	Rates          analytics.EngagementRates   `json:"rates"`
	HealthScore    float64                     `json:"health_score"`
	Health         string                      `json:"health"`
	HealthReasons  []string                    `json:"health_reasons,omitempty"`
	Consistency    analytics.ConsistencyReport `json:"consistency"`
}

// Overview aggregates the range into a single report. An empty range
// yields an all-zero report, not an error.
func (s *Service) Overview(ctx context.Context, orgID string, kind domain.EntityKind, q analytics.Query) (*OverviewReport, error) {
	if err := validateRange(q); err != nil {
		return nil, err
	}

	key := cache.Key(orgID, string(kind), "overview", q.From, q.To, strings.Join(q.EntityIDs, ","))
	if s.cache != nil {
		var cached OverviewReport
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	records, err := s.repo.FetchDaily(ctx, orgID, kind, q.From, q.To, q.EntityIDs)
	if err != nil {
		return nil, err
	}

	report := s.buildOverview(records)
	if s.cache != nil {
		s.cache.Set(ctx, key, report)
	}
	return report, nil
}

func (s *Service) buildOverview(records []domain.DailyRollup) *OverviewReport {
	totals := analytics.Aggregate(records)
	rates := analytics.Rates(totals)
	status, reasons := analytics.EvaluateHealth(rates, s.scoring.Thresholds)
	return &OverviewReport{
		Totals:         totals,
		Records:        len(records),
		UniqueEntities: analytics.UniqueEntities(records),
		Rates:          rates,
		HealthScore:    analytics.HealthScore(rates, s.scoring.Weights),
		Health:         status,
		HealthReasons:  reasons,
		Consistency:    analytics.CheckConsistency(totals),
	}
}

// EntityOverview is one entity's column in a comparison.
type EntityOverview struct {
	EntityID    string                    `json:"entity_id"`
	Totals      domain.MetricTotals       `json:"totals"`
	Rates       analytics.EngagementRates `json:"rates"`
	HealthScore float64                   `json:"health_score"`
}

// CompareReport lines up named entities side by side, in requested
// order.
type CompareReport struct {
	Entities []EntityOverview `json:"entities"`
}

// Compare aggregates each requested entity separately over the range.
// Unlike the filtered ops, the id list here is the subject of the
// query and must be non-empty. Ids with no rows still get a column,
// all zeros.
func (s *Service) Compare(ctx context.Context, orgID string, kind domain.EntityKind, q analytics.Query) (*CompareReport, error) {
	if q.Granularity == "" {
		q.Granularity = domain.GranularityDay
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	records, err := s.repo.FetchDaily(ctx, orgID, kind, q.From, q.To, q.EntityIDs)
	if err != nil {
		return nil, err
	}

	groups := analytics.GroupBy(records, analytics.ByEntity)
	report := &CompareReport{Entities: make([]EntityOverview, 0, len(q.EntityIDs))}
	for _, id := range q.EntityIDs {
		totals := analytics.Aggregate(groups[id])
		rates := analytics.Rates(totals)
		report.Entities = append(report.Entities, EntityOverview{
			EntityID:    id,
			Totals:      totals,
			Rates:       rates,
			HealthScore: analytics.HealthScore(rates, s.scoring.Weights),
		})
	}
	return report, nil
}

// Invalidate drops every cached report for an organization. The write
// path calls this after bulk rollup updates land.
func (s *Service) Invalidate(ctx context.Context, orgID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteByPrefix(ctx, cache.OrgPrefix(orgID))
}

// validateRange checks the shared query inputs: a well-formed date
// range and, when an id filter is present, no blank ids.
func validateRange(q analytics.Query) error {
	if err := analytics.ValidateDateRange(q.From, q.To); err != nil {
		return err
	}
	for i, id := range q.EntityIDs {
		if id == "" {
			return &analytics.ValidationError{Field: "entity_ids", Reason: fmt.Sprintf("entity id at position %d is empty", i)}
		}
	}
	return nil
}
