package analytics

import (
	"encoding/json"

	"github.com/ignite/outreach-analytics/internal/domain"
)

// Upstream per-entity analytics documents arrive in two shapes: the
// current one nests the counters under "aggregatedMetrics" next to the
// lead-count fields, the legacy one carries everything flat at top
// level. Both normalize to domain.EntitySnapshot. Anything else
// (including invalid JSON) degrades to an all-zero snapshot; this is
// a display-layer convenience, not a validated contract boundary, so
// it never fails.

type snapshotShape int

const (
	shapeUnknown snapshotShape = iota
	shapeLegacy
	shapeCurrent
)

// counterDoc mirrors the counter field names used on the wire. The
// upstream contract mixes snake_case and camelCase; keep it verbatim.
type counterDoc struct {
	Sent           int64 `json:"sent"`
	Delivered      int64 `json:"delivered"`
	OpenedTracked  int64 `json:"opened_tracked"`
	ClickedTracked int64 `json:"clicked_tracked"`
	Replied        int64 `json:"replied"`
	Bounced        int64 `json:"bounced"`
	Unsubscribed   int64 `json:"unsubscribed"`
	SpamComplaints int64 `json:"spamComplaints"`
}

func (c counterDoc) totals() domain.MetricTotals {
	return domain.MetricTotals{
		Sent:           c.Sent,
		Delivered:      c.Delivered,
		OpenedTracked:  c.OpenedTracked,
		ClickedTracked: c.ClickedTracked,
		Replied:        c.Replied,
		Bounced:        c.Bounced,
		Unsubscribed:   c.Unsubscribed,
		SpamComplaints: c.SpamComplaints,
	}
}

type legacyDoc struct {
	counterDoc
	LeadCount      int64 `json:"leadCount"`
	ActiveLeads    int64 `json:"activeLeads"`
	CompletedLeads int64 `json:"completedLeads"`
}

// legacyKeys are the top-level fields whose presence marks the flat
// shape. Any one of them is enough.
var legacyKeys = []string{
	"sent", "delivered", "opened_tracked", "clicked_tracked",
	"replied", "bounced", "unsubscribed", "spamComplaints",
	"leadCount", "activeLeads", "completedLeads",
}

// ExtractSnapshot normalizes a raw entity-analytics document into the
// canonical snapshot: the eight counters plus the three lead-count
// fields, with every missing field defaulting to zero. Unknown extra
// fields are ignored; unrecognized shapes return the zero snapshot.
func ExtractSnapshot(doc []byte) domain.EntitySnapshot {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return domain.EntitySnapshot{}
	}

	switch detectShape(fields) {
	case shapeCurrent:
		return extractCurrent(fields)
	case shapeLegacy:
		return extractLegacy(doc)
	}
	return domain.EntitySnapshot{}
}

func detectShape(fields map[string]json.RawMessage) snapshotShape {
	if _, ok := fields["aggregatedMetrics"]; ok {
		return shapeCurrent
	}
	for _, k := range legacyKeys {
		if _, ok := fields[k]; ok {
			return shapeLegacy
		}
	}
	return shapeUnknown
}

func extractCurrent(fields map[string]json.RawMessage) domain.EntitySnapshot {
	var snap domain.EntitySnapshot

	var counters counterDoc
	// Best-effort decode: a malformed field zeroes itself, not the doc.
	_ = json.Unmarshal(fields["aggregatedMetrics"], &counters)
	snap.Metrics = counters.totals()

	if raw, ok := fields["leadCount"]; ok {
		_ = json.Unmarshal(raw, &snap.LeadCount)
	}
	if raw, ok := fields["activeLeads"]; ok {
		_ = json.Unmarshal(raw, &snap.ActiveLeads)
	}
	if raw, ok := fields["completedLeads"]; ok {
		_ = json.Unmarshal(raw, &snap.CompletedLeads)
	}
	return snap
}

func extractLegacy(doc []byte) domain.EntitySnapshot {
	var flat legacyDoc
	_ = json.Unmarshal(doc, &flat)
	return domain.EntitySnapshot{
		Metrics:        flat.totals(),
		LeadCount:      flat.LeadCount,
		ActiveLeads:    flat.ActiveLeads,
		CompletedLeads: flat.CompletedLeads,
	}
}
