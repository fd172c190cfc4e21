package analytics

import "github.com/ignite/outreach-analytics/internal/domain"

// Aggregate sums the eight counters across records in a single pass.
// Empty input returns the zero value, never an error.
func Aggregate[S ~string](records []domain.AnalyticsRecord[S]) domain.MetricTotals {
	var totals domain.MetricTotals
	for _, r := range records {
		totals.Add(r.Metrics)
	}
	return totals
}

// UniqueEntities counts distinct entity ids within records. An entity
// accrues one record per day, so multi-day ranges repeat ids; this is
// the deduplicated population size behind an aggregate.
func UniqueEntities[S ~string](records []domain.AnalyticsRecord[S]) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.EntityID] = struct{}{}
	}
	return len(seen)
}

// AggregateGroups aggregates each group of a partition independently.
// Groups are disjoint by construction, so the per-group totals sum to
// Aggregate over the whole input.
func AggregateGroups[S ~string](groups map[string][]domain.AnalyticsRecord[S]) map[string]domain.MetricTotals {
	out := make(map[string]domain.MetricTotals, len(groups))
	for k, g := range groups {
		out[k] = Aggregate(g)
	}
	return out
}

// AggregateSnapshots sums canonical snapshots field-wise, lead counts
// included. Used when the input is extracted documents rather than
// dated rollup rows.
func AggregateSnapshots(snaps []domain.EntitySnapshot) domain.EntitySnapshot {
	var out domain.EntitySnapshot
	for _, s := range snaps {
		out.Metrics.Add(s.Metrics)
		out.LeadCount += s.LeadCount
		out.ActiveLeads += s.ActiveLeads
		out.CompletedLeads += s.CompletedLeads
	}
	return out
}
