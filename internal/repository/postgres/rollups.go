package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/outreach-analytics/internal/domain"
)

// RollupRepo reads the per-entity daily counter rollups the ingest
// pipeline maintains. It implements insights.Repository against
// PostgreSQL.
type RollupRepo struct{ db *sql.DB }

// NewRollupRepo creates a Postgres-backed rollup repository.
func NewRollupRepo(db *sql.DB) *RollupRepo { return &RollupRepo{db: db} }

// FetchDaily returns the daily rollups for one organization and
// entity kind across an inclusive date range, ordered by date then
// entity id. An empty entityIDs slice means every entity of the kind.
func (r *RollupRepo) FetchDaily(ctx context.Context, orgID string, kind domain.EntityKind, from, to string, entityIDs []string) ([]domain.DailyRollup, error) {
	q := `
		SELECT entity_id, COALESCE(entity_status,''), date::text,
		       sent, delivered, opened_tracked, clicked_tracked,
		       replied, bounced, unsubscribed, spam_complaints, updated_at
		FROM analytics_daily_rollups
		WHERE organization_id = $1 AND entity_kind = $2
		  AND date BETWEEN $3 AND $4`

	args := []interface{}{orgID, string(kind), from, to}
	if len(entityIDs) > 0 {
		q += fmt.Sprintf(" AND entity_id = ANY($%d)", len(args)+1)
		args = append(args, pq.Array(entityIDs))
	}
	q += " ORDER BY date ASC, entity_id ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch daily rollups: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyRollup
	for rows.Next() {
		rollup := domain.DailyRollup{OrganizationID: orgID}
		if err := rows.Scan(
			&rollup.EntityID, &rollup.Status, &rollup.Date,
			&rollup.Metrics.Sent, &rollup.Metrics.Delivered,
			&rollup.Metrics.OpenedTracked, &rollup.Metrics.ClickedTracked,
			&rollup.Metrics.Replied, &rollup.Metrics.Bounced,
			&rollup.Metrics.Unsubscribed, &rollup.Metrics.SpamComplaints,
			&rollup.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rollup: %w", err)
		}
		out = append(out, rollup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rollups: %w", err)
	}
	return out, nil
}

// ListActiveOrgs returns the organizations that have rollup rows on
// the given date. The snapshot worker uses it to know which tenants
// need archiving.
func (r *RollupRepo) ListActiveOrgs(ctx context.Context, date string) ([]string, error) {
	q := `
		SELECT DISTINCT organization_id
		FROM analytics_daily_rollups
		WHERE date = $1
		ORDER BY organization_id`

	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, fmt.Errorf("list active orgs: %w", err)
	}
	defer rows.Close()

	var orgs []string
	for rows.Next() {
		var org string
		if err := rows.Scan(&org); err != nil {
			return nil, fmt.Errorf("scan org: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orgs: %w", err)
	}
	return orgs, nil
}
