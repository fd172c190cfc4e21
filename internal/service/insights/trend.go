package insights

import (
	"context"
	"sort"
	"strings"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/cache"
	"github.com/ignite/outreach-analytics/internal/domain"
)

// TrendBucket is one time slice of a trend series.
type TrendBucket struct {
	Bucket string                    `json:"bucket"`
	Totals domain.MetricTotals       `json:"totals"`
	Rates  analytics.EngagementRates `json:"rates"`
}

// TrendReport is a chronological series of aggregated buckets.
// Records with unparseable dates land in a trailing "invalid" bucket
// rather than disappearing.
type TrendReport struct {
	Granularity domain.Granularity `json:"granularity"`
	Buckets     []TrendBucket      `json:"buckets"`
}

// Trend aggregates the range into day, week, or month buckets. An
// empty granularity means day.
func (s *Service) Trend(ctx context.Context, orgID string, kind domain.EntityKind, q analytics.Query) (*TrendReport, error) {
	if q.Granularity == "" {
		q.Granularity = domain.GranularityDay
	}
	if err := validateRange(q); err != nil {
		return nil, err
	}
	if !q.Granularity.Valid() {
		return nil, &analytics.ValidationError{
			Field:  "granularity",
			Reason: string(q.Granularity) + " is not one of day, week, month",
		}
	}

	key := cache.Key(orgID, string(kind), "trend", q.From, q.To, string(q.Granularity), strings.Join(q.EntityIDs, ","))
	if s.cache != nil {
		var cached TrendReport
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	records, err := s.repo.FetchDaily(ctx, orgID, kind, q.From, q.To, q.EntityIDs)
	if err != nil {
		return nil, err
	}

	groups := analytics.GroupBy(records, analytics.ByTimeBucket[string](q.Granularity))
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	// Bucket keys are ISO prefixes, so a plain sort is chronological.
	// The invalid bucket goes last regardless.
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == analytics.BucketInvalid {
			return false
		}
		if keys[j] == analytics.BucketInvalid {
			return true
		}
		return keys[i] < keys[j]
	})

	report := &TrendReport{
		Granularity: q.Granularity,
		Buckets:     make([]TrendBucket, 0, len(keys)),
	}
	for _, k := range keys {
		totals := analytics.Aggregate(groups[k])
		report.Buckets = append(report.Buckets, TrendBucket{
			Bucket: k,
			Totals: totals,
			Rates:  analytics.Rates(totals),
		})
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, report)
	}
	return report, nil
}
