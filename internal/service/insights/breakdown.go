package insights

import (
	"context"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/domain"
)

// StatusGroup is the aggregate for one status value.
type StatusGroup struct {
	Status   string                    `json:"status"`
	Records  int                       `json:"records"`
	Entities int                       `json:"entities"`
	Totals   domain.MetricTotals       `json:"totals"`
	Rates    analytics.EngagementRates `json:"rates"`
}

// StatusBreakdownReport splits a range's activity by entity status.
// Every known status for the kind appears, zero or not, in canonical
// order; unexpected status values follow in first-seen order so dirty
// rows stay visible instead of vanishing.
type StatusBreakdownReport struct {
	Statuses []StatusGroup `json:"statuses"`
}

// StatusBreakdown groups the range's records by entity status.
func (s *Service) StatusBreakdown(ctx context.Context, orgID string, kind domain.EntityKind, q analytics.Query) (*StatusBreakdownReport, error) {
	if err := validateRange(q); err != nil {
		return nil, err
	}

	records, err := s.repo.FetchDaily(ctx, orgID, kind, q.From, q.To, q.EntityIDs)
	if err != nil {
		return nil, err
	}

	groups := analytics.GroupBy(records, analytics.ByStatus)
	known := domain.StatusValues(kind)

	report := &StatusBreakdownReport{Statuses: make([]StatusGroup, 0, len(known))}
	add := func(status string) {
		g := groups[status]
		totals := analytics.Aggregate(g)
		report.Statuses = append(report.Statuses, StatusGroup{
			Status:   status,
			Records:  len(g),
			Entities: analytics.UniqueEntities(g),
			Totals:   totals,
			Rates:    analytics.Rates(totals),
		})
	}

	seen := make(map[string]bool, len(known))
	for _, status := range known {
		seen[status] = true
		add(status)
	}
	for _, status := range analytics.GroupKeys(records, analytics.ByStatus) {
		if !seen[status] {
			add(status)
		}
	}
	return report, nil
}
