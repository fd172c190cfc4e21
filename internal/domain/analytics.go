package domain

import "time"

// Granularity is the time-bucket size used when grouping analytics
// records for trend display.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Valid reports whether g is one of the supported bucket sizes.
func (g Granularity) Valid() bool {
	return g == GranularityDay || g == GranularityWeek || g == GranularityMonth
}

// MetricTotals holds the eight tracked counters an entity accrues per
// day. Counters are non-negative by contract with the write path; this
// package does not re-enforce that (the consistency checker flags
// violations instead of rejecting them).
type MetricTotals struct {
	Sent           int64 `json:"sent" db:"sent"`
	Delivered      int64 `json:"delivered" db:"delivered"`
	OpenedTracked  int64 `json:"opened_tracked" db:"opened_tracked"`
	ClickedTracked int64 `json:"clicked_tracked" db:"clicked_tracked"`
	Replied        int64 `json:"replied" db:"replied"`
	Bounced        int64 `json:"bounced" db:"bounced"`
	Unsubscribed   int64 `json:"unsubscribed" db:"unsubscribed"`
	SpamComplaints int64 `json:"spam_complaints" db:"spam_complaints"`
}

// Add accumulates o into m field-wise.
func (m *MetricTotals) Add(o MetricTotals) {
	m.Sent += o.Sent
	m.Delivered += o.Delivered
	m.OpenedTracked += o.OpenedTracked
	m.ClickedTracked += o.ClickedTracked
	m.Replied += o.Replied
	m.Bounced += o.Bounced
	m.Unsubscribed += o.Unsubscribed
	m.SpamComplaints += o.SpamComplaints
}

// Interactions returns the tracked engagement total: opens + clicks + replies.
func (m MetricTotals) Interactions() int64 {
	return m.OpenedTracked + m.ClickedTracked + m.Replied
}

// IsZero reports whether every counter is zero.
func (m MetricTotals) IsZero() bool {
	return m == MetricTotals{}
}

// AnalyticsRecord is one entity's counters for one calendar day. A
// single entity accrues one record per day, so multi-day ranges carry
// repeated entity ids.
//
// S is the entity domain's status enumeration (LeadStatus,
// CampaignStatus, ...). The storage boundary reads rows as DailyRollup
// and checks status strings against StatusValues for the entity kind.
type AnalyticsRecord[S ~string] struct {
	EntityID       string       `json:"entity_id"`
	OrganizationID string       `json:"organization_id"`
	Date           string       `json:"date"` // YYYY-MM-DD
	Status         S            `json:"status"`
	Metrics        MetricTotals `json:"metrics"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// DailyRollup is the stringly-typed record shape used at the storage
// boundary, where status arrives as a raw column value.
type DailyRollup = AnalyticsRecord[string]

// EntitySnapshot is the canonical view produced by the metrics
// extractor: the eight counters plus the lead-count fields carried by
// newer per-entity analytics documents. Missing fields are zero.
type EntitySnapshot struct {
	Metrics        MetricTotals `json:"metrics"`
	LeadCount      int64        `json:"lead_count"`
	ActiveLeads    int64        `json:"active_leads"`
	CompletedLeads int64        `json:"completed_leads"`
}

// InsightSnapshot is an archived daily summary for one organization and
// entity kind, written by the snapshot worker and served by the history
// endpoint. Headline rates are denormalized so history reads need no
// recomputation; the full rate set is derivable from Totals.
type InsightSnapshot struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id"`
	Kind           EntityKind   `json:"kind"`
	Date           string       `json:"date"` // YYYY-MM-DD
	Totals         MetricTotals `json:"totals"`
	UniqueEntities int          `json:"unique_entities"`
	OpenRate       float64      `json:"open_rate"`
	ClickRate      float64      `json:"click_rate"`
	ReplyRate      float64      `json:"reply_rate"`
	BounceRate     float64      `json:"bounce_rate"`
	DeliveryRate   float64      `json:"delivery_rate"`
	HealthScore    float64      `json:"health_score"`
	CreatedAt      time.Time    `json:"created_at"`
}
