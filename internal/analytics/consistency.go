package analytics

import (
	"fmt"

	"github.com/ignite/outreach-analytics/internal/domain"
)

// ConsistencyReport lists what looks wrong about an aggregate.
// Findings are advisory; callers still compute and serve rates over
// flagged data.
type ConsistencyReport struct {
	IsValid  bool     `json:"is_valid"`
	Warnings []string `json:"warnings,omitempty"`
}

// CheckConsistency inspects an aggregate for counters that cannot all
// be true at once. Tracking pixels fire late, webhooks replay, and
// imports backfill partial days, so contradictions happen; the report
// names them without rejecting the data.
func CheckConsistency(m domain.MetricTotals) ConsistencyReport {
	var warnings []string

	if m.OpenedTracked > m.Sent {
		warnings = append(warnings, fmt.Sprintf("opened count %d exceeds sent count %d", m.OpenedTracked, m.Sent))
	}
	if m.ClickedTracked > m.Sent {
		warnings = append(warnings, fmt.Sprintf("clicked count %d exceeds sent count %d", m.ClickedTracked, m.Sent))
	}
	if m.Replied > m.Sent {
		warnings = append(warnings, fmt.Sprintf("replied count %d exceeds sent count %d", m.Replied, m.Sent))
	}
	if m.Bounced > m.Sent {
		warnings = append(warnings, fmt.Sprintf("bounced count %d exceeds sent count %d", m.Bounced, m.Sent))
	}

	for _, c := range []struct {
		name  string
		value int64
	}{
		{"sent", m.Sent},
		{"delivered", m.Delivered},
		{"opened_tracked", m.OpenedTracked},
		{"clicked_tracked", m.ClickedTracked},
		{"replied", m.Replied},
		{"bounced", m.Bounced},
		{"unsubscribed", m.Unsubscribed},
		{"spam_complaints", m.SpamComplaints},
	} {
		if c.value < 0 {
			warnings = append(warnings, fmt.Sprintf("%s is negative: %d", c.name, c.value))
		}
	}

	return ConsistencyReport{IsValid: len(warnings) == 0, Warnings: warnings}
}
