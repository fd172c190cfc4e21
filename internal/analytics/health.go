package analytics

import "fmt"

// Health statuses in order of severity.
const (
	HealthHealthy  = "healthy"
	HealthWarning  = "warning"
	HealthCritical = "critical"
)

// HealthThresholds define when bounce and complaint rates start to
// hurt deliverability. OpenPositive is the open rate below which an
// otherwise healthy aggregate earns an advisory note.
type HealthThresholds struct {
	BounceWarning     float64 `json:"bounce_warning"`
	BounceCritical    float64 `json:"bounce_critical"`
	ComplaintWarning  float64 `json:"complaint_warning"`
	ComplaintCritical float64 `json:"complaint_critical"`
	OpenPositive      float64 `json:"open_positive"`
}

// DefaultHealthThresholds returns the stock deliverability limits:
// 5%/10% bounce, 0.1%/0.3% complaint, 25% open floor.
func DefaultHealthThresholds() HealthThresholds {
	return HealthThresholds{
		BounceWarning:     0.05,
		BounceCritical:    0.10,
		ComplaintWarning:  0.001,
		ComplaintCritical: 0.003,
		OpenPositive:      0.25,
	}
}

// EvaluateHealth classifies an aggregate's rates against thresholds
// and explains each finding. An empty rate set is healthy; there is
// nothing to judge before traffic arrives.
func EvaluateHealth(r EngagementRates, t HealthThresholds) (string, []string) {
	if r == (EngagementRates{}) {
		return HealthHealthy, nil
	}

	status := HealthHealthy
	var reasons []string

	switch {
	case r.BounceRate >= t.BounceCritical:
		status = HealthCritical
		reasons = append(reasons, fmt.Sprintf("bounce rate %s at or above critical limit %s", FormatPercent(r.BounceRate), FormatPercent(t.BounceCritical)))
	case r.BounceRate >= t.BounceWarning:
		status = HealthWarning
		reasons = append(reasons, fmt.Sprintf("bounce rate %s at or above warning limit %s", FormatPercent(r.BounceRate), FormatPercent(t.BounceWarning)))
	}

	switch {
	case r.SpamComplaintRate >= t.ComplaintCritical:
		status = HealthCritical
		reasons = append(reasons, fmt.Sprintf("complaint rate %s at or above critical limit %s", FormatPercent(r.SpamComplaintRate), FormatPercent(t.ComplaintCritical)))
	case r.SpamComplaintRate >= t.ComplaintWarning:
		if status == HealthHealthy {
			status = HealthWarning
		}
		reasons = append(reasons, fmt.Sprintf("complaint rate %s at or above warning limit %s", FormatPercent(r.SpamComplaintRate), FormatPercent(t.ComplaintWarning)))
	}

	if status == HealthHealthy && r.OpenRate < t.OpenPositive {
		reasons = append(reasons, fmt.Sprintf("open rate %s below %s target", FormatPercent(r.OpenRate), FormatPercent(t.OpenPositive)))
	}

	return status, reasons
}
