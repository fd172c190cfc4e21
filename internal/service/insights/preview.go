package insights

import (
	"encoding/json"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/domain"
)

// PreviewReport is the computed view of a batch of raw analytics
// documents: each document's canonical snapshot plus the batch
// aggregate, scored the same way stored rollups are.
type PreviewReport struct {
	Snapshots      []domain.EntitySnapshot     `json:"snapshots"`
	Totals         domain.MetricTotals         `json:"totals"`
	LeadCount      int64                       `json:"lead_count"`
	ActiveLeads    int64                       `json:"active_leads"`
	CompletedLeads int64                       `json:"completed_leads"`
	Rates          analytics.EngagementRates   `json:"rates"`
	HealthScore    float64                     `json:"health_score"`
	Health         string                      `json:"health"`
	HealthReasons  []string                    `json:"health_reasons,omitempty"`
	Consistency    analytics.ConsistencyReport `json:"consistency"`
}

// Preview runs raw entity-analytics documents through the extraction
// and scoring pipeline without touching storage. The upstream write
// path uses it to see what a batch will score before rollups land.
// Documents in either known wire shape normalize; anything else
// contributes an all-zero snapshot, matching the extractor's contract.
func (s *Service) Preview(docs []json.RawMessage) *PreviewReport {
	snaps := make([]domain.EntitySnapshot, 0, len(docs))
	for _, doc := range docs {
		snaps = append(snaps, analytics.ExtractSnapshot(doc))
	}

	sum := analytics.AggregateSnapshots(snaps)
	rates := analytics.Rates(sum.Metrics)
	status, reasons := analytics.EvaluateHealth(rates, s.scoring.Thresholds)

	return &PreviewReport{
		Snapshots:      snaps,
		Totals:         sum.Metrics,
		LeadCount:      sum.LeadCount,
		ActiveLeads:    sum.ActiveLeads,
		CompletedLeads: sum.CompletedLeads,
		Rates:          rates,
		HealthScore:    analytics.HealthScore(rates, s.scoring.Weights),
		Health:         status,
		HealthReasons:  reasons,
		Consistency:    analytics.CheckConsistency(sum.Metrics),
	}
}
