package analytics

import (
	"time"

	"github.com/ignite/outreach-analytics/internal/domain"
)

// BucketInvalid is the sentinel trend bucket for records whose date
// cannot be parsed. Dirty dates group here instead of being dropped, so
// the partition stays total and bad upstream data stays visible.
const BucketInvalid = "invalid"

// KeyFunc extracts a grouping key from a record.
type KeyFunc[S ~string] func(domain.AnalyticsRecord[S]) string

// ByEntity keys records by entity id.
func ByEntity[S ~string](r domain.AnalyticsRecord[S]) string { return r.EntityID }

// ByStatus keys records by status value.
func ByStatus[S ~string](r domain.AnalyticsRecord[S]) string { return string(r.Status) }

// ByTimeBucket returns a key function that buckets records by the
// trend bucket containing their date at granularity g.
func ByTimeBucket[S ~string](g domain.Granularity) KeyFunc[S] {
	return func(r domain.AnalyticsRecord[S]) string { return TimeBucket(r.Date, g) }
}

// GroupBy partitions records by key. Every record lands in exactly one
// group, and input relative order is preserved within each group. The
// input slice is never mutated.
func GroupBy[S ~string](records []domain.AnalyticsRecord[S], key KeyFunc[S]) map[string][]domain.AnalyticsRecord[S] {
	groups := make(map[string][]domain.AnalyticsRecord[S])
	for _, r := range records {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	return groups
}

// GroupKeys returns the distinct keys key produces over records, in
// first-seen order. Pair with GroupBy when callers need deterministic
// iteration, since map order is not stable.
func GroupKeys[S ~string](records []domain.AnalyticsRecord[S], key KeyFunc[S]) []string {
	seen := make(map[string]bool, len(records))
	var keys []string
	for _, r := range records {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// TimeBucket maps an ISO date to its trend bucket key: the day itself
// for day granularity, the most recent Sunday on or before the date
// (as YYYY-MM-DD) for week, and YYYY-MM for month. Dates that arrive
// as full RFC3339 timestamps are truncated to their calendar day.
// Unparseable dates map to BucketInvalid.
func TimeBucket(date string, g domain.Granularity) string {
	t, ok := parseDay(date)
	if !ok {
		return BucketInvalid
	}
	switch g {
	case domain.GranularityWeek:
		// time.Weekday numbers Sunday as 0, so this lands on the
		// Sunday-aligned week start.
		t = t.AddDate(0, 0, -int(t.Weekday()))
		return t.Format("2006-01-02")
	case domain.GranularityMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

func parseDay(date string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t, true
	}
	return time.Time{}, false
}
