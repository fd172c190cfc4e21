package insights

import (
	"context"
	"time"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/domain"
)

// PeriodStats is one window of a period-over-period comparison.
type PeriodStats struct {
	From   string                    `json:"from"`
	To     string                    `json:"to"`
	Totals domain.MetricTotals       `json:"totals"`
	Rates  analytics.EngagementRates `json:"rates"`
}

// PeriodBenchmark compares the recent half of a range against the
// half before it.
type PeriodBenchmark struct {
	Current    PeriodStats               `json:"current"`
	Previous   PeriodStats               `json:"previous"`
	Comparison analytics.BenchmarkReport `json:"comparison"`
}

// Benchmark splits [from, to] into two consecutive windows and
// compares the later window's rates against the earlier one's. Odd
// spans give the extra day to the current window. The range must
// cover at least two days; ErrNoData when the whole range is empty.
func (s *Service) Benchmark(ctx context.Context, orgID string, kind domain.EntityKind, q analytics.Query) (*PeriodBenchmark, error) {
	if err := validateRange(q); err != nil {
		return nil, err
	}

	start, _ := time.Parse("2006-01-02", q.From)
	end, _ := time.Parse("2006-01-02", q.To)
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 2 {
		return nil, &analytics.ValidationError{Field: "to", Reason: "benchmark needs a range of at least two days"}
	}
	prevDays := days / 2
	prevTo := start.AddDate(0, 0, prevDays-1).Format("2006-01-02")
	curFrom := start.AddDate(0, 0, prevDays).Format("2006-01-02")

	records, err := s.repo.FetchDaily(ctx, orgID, kind, q.From, q.To, q.EntityIDs)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	var prev, cur []domain.DailyRollup
	for _, r := range records {
		if r.Date <= prevTo {
			prev = append(prev, r)
		} else {
			cur = append(cur, r)
		}
	}

	prevTotals := analytics.Aggregate(prev)
	curTotals := analytics.Aggregate(cur)
	prevRates := analytics.Rates(prevTotals)
	curRates := analytics.Rates(curTotals)

	return &PeriodBenchmark{
		Current:    PeriodStats{From: curFrom, To: q.To, Totals: curTotals, Rates: curRates},
		Previous:   PeriodStats{From: q.From, To: prevTo, Totals: prevTotals, Rates: prevRates},
		Comparison: analytics.CompareRates(curRates, prevRates),
	}, nil
}
