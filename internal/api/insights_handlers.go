package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/domain"
	"github.com/ignite/outreach-analytics/internal/pkg/httputil"
)

// GetOverview returns aggregate totals, rates, and health for the range.
//
//	GET /api/insights/{kind}/overview?from&to&ids
func (h *Handlers) GetOverview(w http.ResponseWriter, r *http.Request) {
	orgID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Overview(r.Context(), orgID, kind, queryFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	httputil.OK(w, report)
}

// GetTrend returns per-bucket totals and rates over the range.
//
//	GET /api/insights/{kind}/trend?from&to&granularity&ids
func (h *Handlers) GetTrend(w http.ResponseWriter, r *http.Request) {
	orgID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}
	q := queryFromRequest(r)
	g, err := analytics.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		respondError(w, err)
		return
	}
	q.Granularity = g

	report, err := h.svc.Trend(r.Context(), orgID, kind, q)
	if err != nil {
		respondError(w, err)
		return
	}
	httputil.OK(w, report)
}

// GetStatusBreakdown returns per-status aggregates for the range.
//
//	GET /api/insights/{kind}/status?from&to
func (h *Handlers) GetStatusBreakdown(w http.ResponseWriter, r *http.Request) {
	orgID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}
	report, err := h.svc.StatusBreakdown(r.Context(), orgID, kind, queryFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	httputil.OK(w, report)
}

// GetTopPerformers returns entities ranked by a metric.
//
//	GET /api/insights/{kind}/top?from&to&metric&limit
func (h *Handlers) GetTopPerformers(w http.ResponseWriter, r *http.Request) {
	orgID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	metric := r.URL.Query().Get("metric")

	report, err := h.svc.TopPerformers(r.Context(), orgID, kind, queryFromRequest(r), metric, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	httputil.OK(w, report)
}

// GetBenchmark compares the recent half of the range against the half
// before it.
//
//	GET /api/insights/{kind}/benchmark?from&to
func (h *Handlers) GetBenchmark(w http.ResponseWriter, r *http.Request) {
	orgID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Benchmark(r.Context(), orgID, kind, queryFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	httputil.OK(w, report)
}

// GetEngagement returns entities banded by health score.
//
//	GET /api/insights/{kind}/engagement?from&to
func (h *Handlers) GetEngagement(w http.ResponseWriter, r *http.Request) {
	orgID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Engagement(r.Context(), orgID, kind, queryFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	httputil.OK(w, report)
}

// GetCompare returns side-by-side aggregates for the named entities.
// The ids parameter is required here.
//
//	GET /api/insights/{kind}/compare?from&to&ids
func (h *Handlers) GetCompare(w http.ResponseWriter, r *http.Request) {
	orgID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Compare(r.Context(), orgID, kind, queryFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	httputil.OK(w, report)
}

// GetHistory returns archived daily snapshots for the range.
//
//	GET /api/insights/{kind}/history?from&to
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	orgID, kind, ok := h.scope(w, r)
	if !ok {
		return
	}
	snaps, err := h.svc.History(r.Context(), orgID, kind, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, err)
		return
	}
	if snaps == nil {
		snaps = []domain.InsightSnapshot{}
	}
	httputil.OK(w, map[string]any{"snapshots": snaps})
}

// PostPreview scores a batch of raw analytics documents without
// touching storage. Accepts both known document shapes; unrecognized
// documents contribute all-zero snapshots.
//
//	POST /api/insights/preview
func (h *Handlers) PostPreview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Documents []json.RawMessage `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.BadRequest(w, "request body must be JSON with a documents array")
		return
	}
	httputil.OK(w, h.svc.Preview(body.Documents))
}

// PostRefresh drops the organization's cached reports so the next
// read recomputes from fresh rollups.
//
//	POST /api/insights/{kind}/refresh
func (h *Handlers) PostRefresh(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := h.svc.Invalidate(r.Context(), orgID); err != nil {
		respondError(w, err)
		return
	}
	httputil.NoContent(w)
}
