package analytics

import "github.com/ignite/outreach-analytics/internal/domain"

// EngagementRates holds the derived ratios for an aggregate. Values
// are in [0,1] except where dirty upstream data pushes a numerator
// past sent; those are surfaced as-is and flagged by CheckConsistency,
// never suppressed.
type EngagementRates struct {
	OpenRate          float64 `json:"open_rate"`
	ClickRate         float64 `json:"click_rate"`
	ReplyRate         float64 `json:"reply_rate"`
	BounceRate        float64 `json:"bounce_rate"`
	UnsubscribeRate   float64 `json:"unsubscribe_rate"`
	SpamComplaintRate float64 `json:"spam_complaint_rate"`
	DeliveryRate      float64 `json:"delivery_rate"`
}

// Rates derives the seven engagement ratios from an aggregate. When
// sent is zero every rate is exactly zero, never NaN or Inf. Zero
// traffic is not an error condition.
func Rates(m domain.MetricTotals) EngagementRates {
	var r EngagementRates
	if m.Sent > 0 {
		sent := float64(m.Sent)
		r.OpenRate = float64(m.OpenedTracked) / sent
		r.ClickRate = float64(m.ClickedTracked) / sent
		r.ReplyRate = float64(m.Replied) / sent
		r.BounceRate = float64(m.Bounced) / sent
		r.UnsubscribeRate = float64(m.Unsubscribed) / sent
		r.SpamComplaintRate = float64(m.SpamComplaints) / sent
		r.DeliveryRate = float64(m.Delivered) / sent
	}
	return r
}

// HealthWeights control how open, click, and reply rates combine into
// the composite health score. They need not sum to 1; the score is
// clamped to [0,100] regardless.
type HealthWeights struct {
	Open  float64 `json:"open"`
	Click float64 `json:"click"`
	Reply float64 `json:"reply"`
}

// DefaultHealthWeights returns the stock 0.3/0.4/0.3 weighting.
func DefaultHealthWeights() HealthWeights {
	return HealthWeights{Open: 0.3, Click: 0.4, Reply: 0.3}
}

// HealthScore combines the weighted engagement rates into a 0-100
// composite used to rank entities.
func HealthScore(r EngagementRates, w HealthWeights) float64 {
	score := (r.OpenRate*w.Open + r.ClickRate*w.Click + r.ReplyRate*w.Reply) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
