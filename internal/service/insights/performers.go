package insights

import (
	"context"
	"fmt"
	"sort"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/domain"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Health-score band boundaries for engagement reporting.
const (
	bandHighMin   = 70.0
	bandMediumMin = 40.0
)

// Performer is one ranked entity.
type Performer struct {
	EntityID    string                    `json:"entity_id"`
	Value       float64                   `json:"value"`
	Totals      domain.MetricTotals       `json:"totals"`
	Rates       analytics.EngagementRates `json:"rates"`
	HealthScore float64                   `json:"health_score"`
}

// TopPerformersReport ranks entities by one metric, best first.
type TopPerformersReport struct {
	Metric     string      `json:"metric"`
	Performers []Performer `json:"performers"`
}

// TopPerformers ranks the kind's entities over the range by metric.
// An empty metric means sent; an unknown metric is a validation
// error. The limit is clamped to [1, 100] with a default of 10.
func (s *Service) TopPerformers(ctx context.Context, orgID string, kind domain.EntityKind, q analytics.Query, metric string, limit int) (*TopPerformersReport, error) {
	if err := validateRange(q); err != nil {
		return nil, err
	}
	if metric == "" {
		metric = "sent"
	}
	if _, ok := metricValue(domain.MetricTotals{}, analytics.EngagementRates{}, 0, metric); !ok {
		return nil, &analytics.ValidationError{Field: "metric", Reason: fmt.Sprintf("unknown metric %q", metric)}
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	records, err := s.repo.FetchDaily(ctx, orgID, kind, q.From, q.To, q.EntityIDs)
	if err != nil {
		return nil, err
	}

	groups := analytics.GroupBy(records, analytics.ByEntity)
	performers := make([]Performer, 0, len(groups))
	for id, g := range groups {
		totals := analytics.Aggregate(g)
		rates := analytics.Rates(totals)
		health := analytics.HealthScore(rates, s.scoring.Weights)
		value, _ := metricValue(totals, rates, health, metric)
		performers = append(performers, Performer{
			EntityID:    id,
			Value:       value,
			Totals:      totals,
			Rates:       rates,
			HealthScore: health,
		})
	}
	// Ties break on entity id so rankings are stable across runs.
	sort.Slice(performers, func(i, j int) bool {
		if performers[i].Value != performers[j].Value {
			return performers[i].Value > performers[j].Value
		}
		return performers[i].EntityID < performers[j].EntityID
	})
	if len(performers) > limit {
		performers = performers[:limit]
	}
	return &TopPerformersReport{Metric: metric, Performers: performers}, nil
}

// EntityScore pairs an entity with its health score.
type EntityScore struct {
	EntityID    string  `json:"entity_id"`
	HealthScore float64 `json:"health_score"`
}

// EngagementBand holds the entities whose health scores fall in one
// band, best first.
type EngagementBand struct {
	Count    int           `json:"count"`
	Entities []EntityScore `json:"entities"`
}

// EngagementReport buckets entities into high (score >= 70), medium
// (40 to 70), and low (< 40) health-score bands.
type EngagementReport struct {
	High   EngagementBand `json:"high"`
	Medium EngagementBand `json:"medium"`
	Low    EngagementBand `json:"low"`
}

// Engagement scores every entity in the range and bands the results.
func (s *Service) Engagement(ctx context.Context, orgID string, kind domain.EntityKind, q analytics.Query) (*EngagementReport, error) {
	if err := validateRange(q); err != nil {
		return nil, err
	}

	records, err := s.repo.FetchDaily(ctx, orgID, kind, q.From, q.To, q.EntityIDs)
	if err != nil {
		return nil, err
	}

	groups := analytics.GroupBy(records, analytics.ByEntity)
	scores := make([]EntityScore, 0, len(groups))
	for id, g := range groups {
		rates := analytics.Rates(analytics.Aggregate(g))
		scores = append(scores, EntityScore{
			EntityID:    id,
			HealthScore: analytics.HealthScore(rates, s.scoring.Weights),
		})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].HealthScore != scores[j].HealthScore {
			return scores[i].HealthScore > scores[j].HealthScore
		}
		return scores[i].EntityID < scores[j].EntityID
	})

	report := &EngagementReport{}
	for _, es := range scores {
		switch {
		case es.HealthScore >= bandHighMin:
			report.High.Entities = append(report.High.Entities, es)
		case es.HealthScore >= bandMediumMin:
			report.Medium.Entities = append(report.Medium.Entities, es)
		default:
			report.Low.Entities = append(report.Low.Entities, es)
		}
	}
	report.High.Count = len(report.High.Entities)
	report.Medium.Count = len(report.Medium.Entities)
	report.Low.Count = len(report.Low.Entities)
	return report, nil
}

// metricValue resolves a ranking metric name against one entity's
// aggregates. The second return reports whether the name is known.
func metricValue(totals domain.MetricTotals, rates analytics.EngagementRates, health float64, metric string) (float64, bool) {
	switch metric {
	case "sent":
		return float64(totals.Sent), true
	case "delivered":
		return float64(totals.Delivered), true
	case "opened":
		return float64(totals.OpenedTracked), true
	case "clicked":
		return float64(totals.ClickedTracked), true
	case "replied":
		return float64(totals.Replied), true
	case "bounced":
		return float64(totals.Bounced), true
	case "open_rate":
		return rates.OpenRate, true
	case "click_rate":
		return rates.ClickRate, true
	case "reply_rate":
		return rates.ReplyRate, true
	case "bounce_rate":
		return rates.BounceRate, true
	case "delivery_rate":
		return rates.DeliveryRate, true
	case "health_score":
		return health, true
	}
	return 0, false
}
