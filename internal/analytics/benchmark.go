package analytics

// Trend directions reported for each rate delta.
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// RateDelta pairs a current rate with its benchmark value and the
// signed difference between them.
type RateDelta struct {
	Current   float64 `json:"current"`
	Benchmark float64 `json:"benchmark"`
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"`
}

// BenchmarkReport compares one period's rates against a reference
// set, rate by rate.
type BenchmarkReport struct {
	OpenRate          RateDelta `json:"open_rate"`
	ClickRate         RateDelta `json:"click_rate"`
	ReplyRate         RateDelta `json:"reply_rate"`
	BounceRate        RateDelta `json:"bounce_rate"`
	UnsubscribeRate   RateDelta `json:"unsubscribe_rate"`
	SpamComplaintRate RateDelta `json:"spam_complaint_rate"`
	DeliveryRate      RateDelta `json:"delivery_rate"`
}

// CompareRates builds a per-rate comparison of current against a
// benchmark. The benchmark can be a prior period, another entity, or
// a fixed industry reference; the comparison does not care which.
func CompareRates(current, benchmark EngagementRates) BenchmarkReport {
	return BenchmarkReport{
		OpenRate:          compareRate(current.OpenRate, benchmark.OpenRate),
		ClickRate:         compareRate(current.ClickRate, benchmark.ClickRate),
		ReplyRate:         compareRate(current.ReplyRate, benchmark.ReplyRate),
		BounceRate:        compareRate(current.BounceRate, benchmark.BounceRate),
		UnsubscribeRate:   compareRate(current.UnsubscribeRate, benchmark.UnsubscribeRate),
		SpamComplaintRate: compareRate(current.SpamComplaintRate, benchmark.SpamComplaintRate),
		DeliveryRate:      compareRate(current.DeliveryRate, benchmark.DeliveryRate),
	}
}

// Float equality is too strict for rates that went through division;
// differences below this are reported as flat.
const rateEpsilon = 1e-9

func compareRate(current, benchmark float64) RateDelta {
	d := RateDelta{
		Current:   current,
		Benchmark: benchmark,
		Delta:     current - benchmark,
		Direction: TrendFlat,
	}
	switch {
	case d.Delta > rateEpsilon:
		d.Direction = TrendUp
	case d.Delta < -rateEpsilon:
		d.Direction = TrendDown
	}
	return d
}
