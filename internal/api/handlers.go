package api

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/domain"
	"github.com/ignite/outreach-analytics/internal/pkg/httputil"
	"github.com/ignite/outreach-analytics/internal/service/insights"
)

// Handlers carries the dependencies behind the HTTP endpoints.
type Handlers struct {
	svc    *insights.Service
	health *HealthChecker
}

// NewHandlers creates the endpoint set.
func NewHandlers(svc *insights.Service, health *HealthChecker) *Handlers {
	return &Handlers{svc: svc, health: health}
}

// scope resolves the entity kind from the URL and the organization
// from the request. It writes the error response itself, so callers
// just bail out when ok is false.
func (h *Handlers) scope(w http.ResponseWriter, r *http.Request) (string, domain.EntityKind, bool) {
	kind, err := domain.ParseEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.NotFound(w, err.Error())
		return "", "", false
	}
	orgID := orgFromRequest(r)
	if orgID == "" {
		httputil.BadRequest(w, "organization id is required (X-Organization-ID header)")
		return "", kind, false
	}
	return orgID, kind, true
}

// orgFromRequest resolves the tenant for a request.
// Priority: 1. X-Organization-ID header, 2. org_id query param,
// 3. dev-mode default from the environment.
func orgFromRequest(r *http.Request) string {
	if org := r.Header.Get("X-Organization-ID"); org != "" {
		return org
	}
	if org := r.URL.Query().Get("org_id"); org != "" {
		return org
	}
	if os.Getenv("DEV_MODE") == "true" || os.Getenv("ENVIRONMENT") == "development" {
		return os.Getenv("DEFAULT_ORG_ID")
	}
	return ""
}

// queryFromRequest reads the shared range parameters. Values travel
// as-is; the service owns validation.
func queryFromRequest(r *http.Request) analytics.Query {
	q := analytics.Query{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if raw := r.URL.Query().Get("ids"); raw != "" {
		q.EntityIDs = strings.Split(raw, ",")
	}
	return q
}

// respondError translates service errors onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	var verr *analytics.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.BadRequest(w, verr.Error())
	case errors.Is(err, insights.ErrNoData):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, insights.ErrArchiveDisabled):
		httputil.ServiceUnavailable(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
