package insights_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/domain"
	"github.com/ignite/outreach-analytics/internal/service/insights"
)

const testOrg = "org-1"

// memRepo is an in-memory rollup repository for unit testing.
type memRepo struct {
	mu   sync.Mutex
	rows map[domain.EntityKind][]domain.DailyRollup
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[domain.EntityKind][]domain.DailyRollup)}
}

func (m *memRepo) add(kind domain.EntityKind, rows ...domain.DailyRollup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[kind] = append(m.rows[kind], rows...)
}

func (m *memRepo) FetchDaily(_ context.Context, orgID string, kind domain.EntityKind, from, to string, entityIDs []string) ([]domain.DailyRollup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DailyRollup
	for _, r := range m.rows[kind] {
		if r.OrganizationID != orgID || r.Date < from || r.Date > to {
			continue
		}
		if len(entityIDs) > 0 && !containsID(entityIDs, r.EntityID) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// memCache is an in-memory Cache that counts hits and writes.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string, dst any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false
	}
	m.hits++
	return true
}

func (m *memCache) Set(_ context.Context, key string, val any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := json.Marshal(val)
	if err != nil {
		return
	}
	m.data[key] = b
	m.sets++
}

func (m *memCache) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *memCache) keysWithPrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

// memArchive is an in-memory snapshot archive.
type memArchive struct {
	mu    sync.Mutex
	snaps []domain.InsightSnapshot
}

func (m *memArchive) SaveSnapshot(_ context.Context, snap domain.InsightSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

func (m *memArchive) ListSnapshots(_ context.Context, orgID string, kind domain.EntityKind, from, to string) ([]domain.InsightSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.InsightSnapshot
	for _, s := range m.snaps {
		if s.OrganizationID == orgID && s.Kind == kind && s.Date >= from && s.Date <= to {
			out = append(out, s)
		}
	}
	return out, nil
}

func row(org, id, date, status string, m domain.MetricTotals) domain.DailyRollup {
	return domain.DailyRollup{
		EntityID:       id,
		OrganizationID: org,
		Date:           date,
		Status:         status,
		Metrics:        m,
	}
}

func rangeQuery(from, to string) analytics.Query {
	return analytics.Query{From: from, To: to}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestOverview(t *testing.T) {
	repo := newMemRepo()
	repo.add(domain.KindCampaign,
		row(testOrg, "c-1", "2024-01-15", "ACTIVE", domain.MetricTotals{
			Sent: 60, Delivered: 57, OpenedTracked: 25, ClickedTracked: 6,
			Replied: 3, Bounced: 3, Unsubscribed: 1,
		}),
		row(testOrg, "c-1", "2024-01-16", "ACTIVE", domain.MetricTotals{
			Sent: 40, Delivered: 38, OpenedTracked: 15, ClickedTracked: 4,
			Replied: 2, Bounced: 2,
		}),
	)
	svc := insights.NewService(repo, nil, nil, insights.Scoring{})

	got, err := svc.Overview(context.Background(), testOrg, domain.KindCampaign, rangeQuery("2024-01-15", "2024-01-16"))
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if got.Totals.Sent != 100 || got.Totals.Delivered != 95 {
		t.Errorf("Totals = %+v, want sent 100 delivered 95", got.Totals)
	}
	if got.Records != 2 {
		t.Errorf("Records = %d, want 2", got.Records)
	}
	if got.UniqueEntities != 1 {
		t.Errorf("UniqueEntities = %d, want 1", got.UniqueEntities)
	}
	if !approx(got.Rates.OpenRate, 0.40) || !approx(got.Rates.ClickRate, 0.10) || !approx(got.Rates.ReplyRate, 0.05) {
		t.Errorf("Rates = %+v, want open 0.40 click 0.10 reply 0.05", got.Rates)
	}
	if !approx(got.HealthScore, 17.5) {
		t.Errorf("HealthScore = %v, want 17.5", got.HealthScore)
	}
	if !got.Consistency.IsValid {
		t.Errorf("Consistency.IsValid = false, want true: %v", got.Consistency.Warnings)
	}
}

func TestOverview_EmptyRange(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	got, err := svc.Overview(context.Background(), testOrg, domain.KindCampaign, rangeQuery("2024-01-01", "2024-01-31"))
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if !got.Totals.IsZero() || got.Records != 0 || got.UniqueEntities != 0 {
		t.Errorf("expected all-zero report, got %+v", got)
	}
	if got.Rates.OpenRate != 0 || got.HealthScore != 0 {
		t.Errorf("expected zero rates and score, got %+v", got)
	}
	if got.Health != "healthy" {
		t.Errorf("Health = %q, want healthy for empty range", got.Health)
	}
}

func TestOverview_InvalidRange(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	_, err := svc.Overview(context.Background(), testOrg, domain.KindCampaign, rangeQuery("2024-02-01", "2024-01-01"))
	var verr *analytics.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "from" {
		t.Errorf("Field = %q, want from", verr.Field)
	}
}

func TestOverview_CacheHitSkipsRepo(t *testing.T) {
	repo := newMemRepo()
	repo.add(domain.KindCampaign,
		row(testOrg, "c-1", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 100}),
	)
	mc := newMemCache()
	svc := insights.NewService(repo, mc, nil, insights.Scoring{})
	q := rangeQuery("2024-01-15", "2024-01-15")

	first, err := svc.Overview(context.Background(), testOrg, domain.KindCampaign, q)
	if err != nil {
		t.Fatalf("first overview: %v", err)
	}
	if mc.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", mc.sets)
	}

	// New rows must not show up while the cached report is live.
	repo.add(domain.KindCampaign,
		row(testOrg, "c-2", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 900}),
	)

	second, err := svc.Overview(context.Background(), testOrg, domain.KindCampaign, q)
	if err != nil {
		t.Fatalf("second overview: %v", err)
	}
	if mc.hits != 1 {
		t.Errorf("cache hits = %d, want 1", mc.hits)
	}
	if second.Totals.Sent != first.Totals.Sent {
		t.Errorf("cached Totals.Sent = %d, want %d", second.Totals.Sent, first.Totals.Sent)
	}
}

func TestTrend_WeekBucketsSplitAtSunday(t *testing.T) {
	repo := newMemRepo()
	// 2024-01-15 is a Monday, 2024-01-21 the following Sunday.
	repo.add(domain.KindCampaign,
		row(testOrg, "c-1", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 10}),
		row(testOrg, "c-1", "2024-01-21", "ACTIVE", domain.MetricTotals{Sent: 20}),
	)
	svc := insights.NewService(repo, nil, nil, insights.Scoring{})

	q := analytics.Query{From: "2024-01-15", To: "2024-01-21", Granularity: domain.GranularityWeek}
	got, err := svc.Trend(context.Background(), testOrg, domain.KindCampaign, q)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(got.Buckets) != 2 {
		t.Fatalf("got %d buckets, want 2: %+v", len(got.Buckets), got.Buckets)
	}
	if got.Buckets[0].Bucket != "2024-01-14" || got.Buckets[1].Bucket != "2024-01-21" {
		t.Errorf("buckets = %q, %q, want 2024-01-14, 2024-01-21", got.Buckets[0].Bucket, got.Buckets[1].Bucket)
	}
	if got.Buckets[0].Totals.Sent != 10 || got.Buckets[1].Totals.Sent != 20 {
		t.Errorf("bucket totals = %d, %d, want 10, 20", got.Buckets[0].Totals.Sent, got.Buckets[1].Totals.Sent)
	}
}

func TestTrend_InvalidDatesBucketLast(t *testing.T) {
	repo := newMemRepo()
	repo.add(domain.KindCampaign,
		row(testOrg, "c-1", "2024-01-16", "ACTIVE", domain.MetricTotals{Sent: 5}),
		row(testOrg, "c-1", "not-a-date", "ACTIVE", domain.MetricTotals{Sent: 1}),
		row(testOrg, "c-1", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 3}),
	)
	svc := insights.NewService(repo, nil, nil, insights.Scoring{})

	got, err := svc.Trend(context.Background(), testOrg, domain.KindCampaign, rangeQuery("2024-01-15", "2024-01-16"))
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(got.Buckets) != 3 {
		t.Fatalf("got %d buckets, want 3", len(got.Buckets))
	}
	if got.Buckets[0].Bucket != "2024-01-15" || got.Buckets[1].Bucket != "2024-01-16" {
		t.Errorf("day buckets out of order: %+v", got.Buckets)
	}
	last := got.Buckets[2]
	if last.Bucket != "invalid" || last.Totals.Sent != 1 {
		t.Errorf("last bucket = %+v, want invalid with sent 1", last)
	}
}

func TestTrend_BadGranularity(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	q := analytics.Query{From: "2024-01-01", To: "2024-01-31", Granularity: "hourly"}
	_, err := svc.Trend(context.Background(), testOrg, domain.KindCampaign, q)
	var verr *analytics.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "granularity" {
		t.Errorf("Field = %q, want granularity", verr.Field)
	}
}

func TestStatusBreakdown(t *testing.T) {
	repo := newMemRepo()
	repo.add(domain.KindLead,
		row(testOrg, "l-1", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 10}),
		row(testOrg, "l-1", "2024-01-16", "ACTIVE", domain.MetricTotals{Sent: 10}),
		row(testOrg, "l-2", "2024-01-15", "REPLIED", domain.MetricTotals{Sent: 5, Replied: 1}),
		row(testOrg, "l-3", "2024-01-15", "LIMBO", domain.MetricTotals{Sent: 1}),
	)
	svc := insights.NewService(repo, nil, nil, insights.Scoring{})

	got, err := svc.StatusBreakdown(context.Background(), testOrg, domain.KindLead, rangeQuery("2024-01-15", "2024-01-16"))
	if err != nil {
		t.Fatalf("status breakdown: %v", err)
	}

	wantOrder := []string{"ACTIVE", "REPLIED", "BOUNCED", "UNSUBSCRIBED", "COMPLETED", "LIMBO"}
	if len(got.Statuses) != len(wantOrder) {
		t.Fatalf("got %d groups, want %d: %+v", len(got.Statuses), len(wantOrder), got.Statuses)
	}
	for i, want := range wantOrder {
		if got.Statuses[i].Status != want {
			t.Errorf("group %d = %q, want %q", i, got.Statuses[i].Status, want)
		}
	}

	active := got.Statuses[0]
	if active.Records != 2 || active.Entities != 1 || active.Totals.Sent != 20 {
		t.Errorf("ACTIVE group = %+v, want 2 records, 1 entity, sent 20", active)
	}
	bounced := got.Statuses[2]
	if bounced.Records != 0 || !bounced.Totals.IsZero() {
		t.Errorf("BOUNCED group = %+v, want empty", bounced)
	}
}

func TestTopPerformers(t *testing.T) {
	repo := newMemRepo()
	repo.add(domain.KindCampaign,
		row(testOrg, "c-1", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 100, OpenedTracked: 10}),
		row(testOrg, "c-2", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 50, OpenedTracked: 25}),
		row(testOrg, "c-3", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 10, OpenedTracked: 9}),
	)
	svc := insights.NewService(repo, nil, nil, insights.Scoring{})
	q := rangeQuery("2024-01-15", "2024-01-15")

	bySent, err := svc.TopPerformers(context.Background(), testOrg, domain.KindCampaign, q, "sent", 2)
	if err != nil {
		t.Fatalf("top by sent: %v", err)
	}
	if len(bySent.Performers) != 2 {
		t.Fatalf("got %d performers, want 2", len(bySent.Performers))
	}
	if bySent.Performers[0].EntityID != "c-1" || bySent.Performers[1].EntityID != "c-2" {
		t.Errorf("order = %s, %s, want c-1, c-2", bySent.Performers[0].EntityID, bySent.Performers[1].EntityID)
	}
	if bySent.Performers[0].Value != 100 {
		t.Errorf("top value = %v, want 100", bySent.Performers[0].Value)
	}

	byOpenRate, err := svc.TopPerformers(context.Background(), testOrg, domain.KindCampaign, q, "open_rate", 0)
	if err != nil {
		t.Fatalf("top by open_rate: %v", err)
	}
	if byOpenRate.Performers[0].EntityID != "c-3" {
		t.Errorf("top by open_rate = %s, want c-3", byOpenRate.Performers[0].EntityID)
	}
}

func TestTopPerformers_UnknownMetric(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	_, err := svc.TopPerformers(context.Background(), testOrg, domain.KindCampaign, rangeQuery("2024-01-01", "2024-01-31"), "charisma", 10)
	var verr *analytics.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "metric" {
		t.Errorf("Field = %q, want metric", verr.Field)
	}
}

func TestEngagementBands(t *testing.T) {
	repo := newMemRepo()
	repo.add(domain.KindCampaign,
		// Full engagement across the board scores 100.
		row(testOrg, "c-high", "2024-01-15", "ACTIVE", domain.MetricTotals{
			Sent: 20, Delivered: 20, OpenedTracked: 20, ClickedTracked: 20, Replied: 20,
		}),
		// Opens at 1.0 and clicks at 0.5 score 50.
		row(testOrg, "c-mid", "2024-01-15", "ACTIVE", domain.MetricTotals{
			Sent: 100, Delivered: 100, OpenedTracked: 100, ClickedTracked: 50,
		}),
		// Opens alone at 0.1 score 3.
		row(testOrg, "c-low", "2024-01-15", "ACTIVE", domain.MetricTotals{
			Sent: 100, Delivered: 100, OpenedTracked: 10,
		}),
	)
	svc := insights.NewService(repo, nil, nil, insights.Scoring{})

	got, err := svc.Engagement(context.Background(), testOrg, domain.KindCampaign, rangeQuery("2024-01-15", "2024-01-15"))
	if err != nil {
		t.Fatalf("engagement: %v", err)
	}

	if got.High.Count != 1 || got.High.Entities[0].EntityID != "c-high" {
		t.Errorf("High = %+v, want only c-high", got.High)
	}
	if got.Medium.Count != 1 || got.Medium.Entities[0].EntityID != "c-mid" {
		t.Errorf("Medium = %+v, want only c-mid", got.Medium)
	}
	if got.Low.Count != 1 || got.Low.Entities[0].EntityID != "c-low" {
		t.Errorf("Low = %+v, want only c-low", got.Low)
	}
}

func TestBenchmark(t *testing.T) {
	repo := newMemRepo()
	repo.add(domain.KindCampaign,
		row(testOrg, "c-1", "2024-01-01", "ACTIVE", domain.MetricTotals{Sent: 50, OpenedTracked: 10}),
		row(testOrg, "c-1", "2024-01-02", "ACTIVE", domain.MetricTotals{Sent: 50, OpenedTracked: 10}),
		row(testOrg, "c-1", "2024-01-03", "ACTIVE", domain.MetricTotals{Sent: 50, OpenedTracked: 20}),
		row(testOrg, "c-1", "2024-01-04", "ACTIVE", domain.MetricTotals{Sent: 50, OpenedTracked: 20}),
	)
	svc := insights.NewService(repo, nil, nil, insights.Scoring{})

	got, err := svc.Benchmark(context.Background(), testOrg, domain.KindCampaign, rangeQuery("2024-01-01", "2024-01-04"))
	if err != nil {
		t.Fatalf("benchmark: %v", err)
	}

	if got.Previous.From != "2024-01-01" || got.Previous.To != "2024-01-02" {
		t.Errorf("Previous window = %s..%s, want 2024-01-01..2024-01-02", got.Previous.From, got.Previous.To)
	}
	if got.Current.From != "2024-01-03" || got.Current.To != "2024-01-04" {
		t.Errorf("Current window = %s..%s, want 2024-01-03..2024-01-04", got.Current.From, got.Current.To)
	}
	if !approx(got.Previous.Rates.OpenRate, 0.2) || !approx(got.Current.Rates.OpenRate, 0.4) {
		t.Errorf("open rates = %v then %v, want 0.2 then 0.4", got.Previous.Rates.OpenRate, got.Current.Rates.OpenRate)
	}
	if got.Comparison.OpenRate.Direction != analytics.TrendUp {
		t.Errorf("open rate direction = %q, want up", got.Comparison.OpenRate.Direction)
	}
	if !approx(got.Comparison.OpenRate.Delta, 0.2) {
		t.Errorf("open rate delta = %v, want 0.2", got.Comparison.OpenRate.Delta)
	}
}

func TestBenchmark_NoData(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	_, err := svc.Benchmark(context.Background(), testOrg, domain.KindCampaign, rangeQuery("2024-02-01", "2024-02-14"))
	if !errors.Is(err, insights.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestBenchmark_RangeTooShort(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	_, err := svc.Benchmark(context.Background(), testOrg, domain.KindCampaign, rangeQuery("2024-01-01", "2024-01-01"))
	var verr *analytics.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	repo := newMemRepo()
	repo.add(domain.KindCampaign,
		row(testOrg, "c-1", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 100, OpenedTracked: 40}),
		row(testOrg, "c-2", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 50, OpenedTracked: 5}),
	)
	svc := insights.NewService(repo, nil, nil, insights.Scoring{})

	q := analytics.Query{From: "2024-01-15", To: "2024-01-15", EntityIDs: []string{"c-2", "c-1", "ghost"}}
	got, err := svc.Compare(context.Background(), testOrg, domain.KindCampaign, q)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(got.Entities) != 3 {
		t.Fatalf("got %d entities, want 3", len(got.Entities))
	}
	if got.Entities[0].EntityID != "c-2" || got.Entities[1].EntityID != "c-1" {
		t.Errorf("order = %s, %s, want requested order c-2, c-1", got.Entities[0].EntityID, got.Entities[1].EntityID)
	}
	if !approx(got.Entities[1].Rates.OpenRate, 0.4) {
		t.Errorf("c-1 open rate = %v, want 0.4", got.Entities[1].Rates.OpenRate)
	}
	ghost := got.Entities[2]
	if !ghost.Totals.IsZero() || ghost.HealthScore != 0 {
		t.Errorf("ghost = %+v, want all zeros", ghost)
	}
}

func TestCompare_RequiresIDs(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	_, err := svc.Compare(context.Background(), testOrg, domain.KindCampaign, rangeQuery("2024-01-01", "2024-01-31"))
	var verr *analytics.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "entity_ids" {
		t.Errorf("Field = %q, want entity_ids", verr.Field)
	}
}

func TestSnapshot(t *testing.T) {
	repo := newMemRepo()
	repo.add(domain.KindCampaign,
		row(testOrg, "c-1", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 60, OpenedTracked: 24}),
		row(testOrg, "c-2", "2024-01-15", "ACTIVE", domain.MetricTotals{Sent: 40, OpenedTracked: 16}),
	)
	mc := newMemCache()
	archive := &memArchive{}
	svc := insights.NewService(repo, mc, archive, insights.Scoring{})
	ctx := context.Background()

	// Warm the cache for two orgs so invalidation scope is visible.
	if _, err := svc.Overview(ctx, testOrg, domain.KindCampaign, rangeQuery("2024-01-15", "2024-01-15")); err != nil {
		t.Fatalf("warm overview: %v", err)
	}
	if _, err := svc.Overview(ctx, "org-2", domain.KindCampaign, rangeQuery("2024-01-15", "2024-01-15")); err != nil {
		t.Fatalf("warm overview org-2: %v", err)
	}

	snap, err := svc.Snapshot(ctx, testOrg, domain.KindCampaign, "2024-01-15")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.ID == "" {
		t.Error("snapshot ID is empty")
	}
	if snap.Totals.Sent != 100 || snap.UniqueEntities != 2 {
		t.Errorf("snapshot = %+v, want sent 100 over 2 entities", snap)
	}
	if !approx(snap.OpenRate, 0.4) {
		t.Errorf("snapshot OpenRate = %v, want 0.4", snap.OpenRate)
	}

	stored, err := archive.ListSnapshots(ctx, testOrg, domain.KindCampaign, "2024-01-15", "2024-01-15")
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("archive holds %d snapshots, want 1", len(stored))
	}

	if n := mc.keysWithPrefix("insights:" + testOrg + ":"); n != 0 {
		t.Errorf("org-1 still has %d cached reports, want 0", n)
	}
	if n := mc.keysWithPrefix("insights:org-2:"); n != 1 {
		t.Errorf("org-2 has %d cached reports, want 1 untouched", n)
	}
}

func TestSnapshot_NoData(t *testing.T) {
	archive := &memArchive{}
	svc := insights.NewService(newMemRepo(), nil, archive, insights.Scoring{})

	_, err := svc.Snapshot(context.Background(), testOrg, domain.KindCampaign, "2024-03-01")
	if !errors.Is(err, insights.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if len(archive.snaps) != 0 {
		t.Errorf("archive holds %d snapshots, want 0", len(archive.snaps))
	}
}

func TestSnapshot_ArchiveDisabled(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	_, err := svc.Snapshot(context.Background(), testOrg, domain.KindCampaign, "2024-01-15")
	if !errors.Is(err, insights.ErrArchiveDisabled) {
		t.Fatalf("expected ErrArchiveDisabled, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	archive := &memArchive{}
	for _, date := range []string{"2024-01-14", "2024-01-15", "2024-01-16"} {
		archive.snaps = append(archive.snaps, domain.InsightSnapshot{
			ID: "snap-" + date, OrganizationID: testOrg, Kind: domain.KindCampaign, Date: date,
		})
	}
	svc := insights.NewService(newMemRepo(), nil, archive, insights.Scoring{})

	got, err := svc.History(context.Background(), testOrg, domain.KindCampaign, "2024-01-15", "2024-01-16")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(got))
	}
	if got[0].Date != "2024-01-15" {
		t.Errorf("first snapshot date = %s, want 2024-01-15", got[0].Date)
	}
}

func TestHistory_ArchiveDisabled(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	_, err := svc.History(context.Background(), testOrg, domain.KindCampaign, "2024-01-01", "2024-01-31")
	if !errors.Is(err, insights.ErrArchiveDisabled) {
		t.Fatalf("expected ErrArchiveDisabled, got %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	repo := newMemRepo()
	mc := newMemCache()
	svc := insights.NewService(repo, mc, nil, insights.Scoring{})
	ctx := context.Background()

	if _, err := svc.Overview(ctx, testOrg, domain.KindCampaign, rangeQuery("2024-01-01", "2024-01-31")); err != nil {
		t.Fatalf("warm campaign overview: %v", err)
	}
	if _, err := svc.Overview(ctx, testOrg, domain.KindLead, rangeQuery("2024-01-01", "2024-01-31")); err != nil {
		t.Fatalf("warm lead overview: %v", err)
	}
	if _, err := svc.Overview(ctx, "org-2", domain.KindCampaign, rangeQuery("2024-01-01", "2024-01-31")); err != nil {
		t.Fatalf("warm org-2 overview: %v", err)
	}

	if err := svc.Invalidate(ctx, testOrg); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if n := mc.keysWithPrefix("insights:" + testOrg + ":"); n != 0 {
		t.Errorf("org-1 still has %d cached reports, want 0", n)
	}
	if n := mc.keysWithPrefix("insights:org-2:"); n != 1 {
		t.Errorf("org-2 has %d cached reports, want 1", n)
	}
}

func TestInvalidate_NoCache(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})
	if err := svc.Invalidate(context.Background(), testOrg); err != nil {
		t.Fatalf("invalidate without cache: %v", err)
	}
}

func TestPreview(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	docs := []json.RawMessage{
		// Current shape: counters nested, lead counts at top level.
		json.RawMessage(`{
			"leadCount": 500, "activeLeads": 200, "completedLeads": 300,
			"aggregatedMetrics": {"sent": 100, "delivered": 95, "opened_tracked": 40, "clicked_tracked": 10, "replied": 5}
		}`),
		// Legacy flat shape.
		json.RawMessage(`{"sent": 50, "delivered": 48, "opened_tracked": 20, "leadCount": 100}`),
		// Unrecognized shape degrades to zero, never errors.
		json.RawMessage(`{"campaignName": "spring blast"}`),
	}

	report := svc.Preview(docs)

	if len(report.Snapshots) != 3 {
		t.Fatalf("Snapshots = %d, want 3", len(report.Snapshots))
	}
	if report.Snapshots[2] != (domain.EntitySnapshot{}) {
		t.Errorf("unrecognized document = %+v, want zero snapshot", report.Snapshots[2])
	}

	if report.Totals.Sent != 150 || report.Totals.Delivered != 143 {
		t.Errorf("Totals = %+v, want sent 150, delivered 143", report.Totals)
	}
	if report.LeadCount != 600 || report.ActiveLeads != 200 || report.CompletedLeads != 300 {
		t.Errorf("lead counts = %d/%d/%d, want 600/200/300",
			report.LeadCount, report.ActiveLeads, report.CompletedLeads)
	}
	if !approx(report.Rates.OpenRate, 60.0/150.0) {
		t.Errorf("OpenRate = %v, want 0.4", report.Rates.OpenRate)
	}
	if report.Health == "" || report.HealthScore <= 0 {
		t.Errorf("health = %q score %v, want scored report", report.Health, report.HealthScore)
	}
	if !report.Consistency.IsValid {
		t.Errorf("Consistency.IsValid = false, want true: %+v", report.Consistency)
	}
}

func TestPreview_Empty(t *testing.T) {
	svc := insights.NewService(newMemRepo(), nil, nil, insights.Scoring{})

	report := svc.Preview(nil)
	if len(report.Snapshots) != 0 {
		t.Errorf("Snapshots = %d, want 0", len(report.Snapshots))
	}
	if report.Totals != (domain.MetricTotals{}) {
		t.Errorf("Totals = %+v, want zero", report.Totals)
	}
	if report.HealthScore != 0 {
		t.Errorf("HealthScore = %v, want 0", report.HealthScore)
	}
}
