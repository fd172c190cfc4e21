package analytics

import (
	"fmt"
	"time"

	"github.com/ignite/outreach-analytics/internal/domain"
)

// ValidationError reports a single rejected query input.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Query carries the caller-supplied parameters for an analytics
// request. Validate is the gate: service and API layers reject a
// query before any repository work happens.
type Query struct {
	From        string             `json:"from"`
	To          string             `json:"to"`
	EntityIDs   []string           `json:"entity_ids"`
	Granularity domain.Granularity `json:"granularity"`
}

// Validate checks the query and returns the first problem found.
func (q Query) Validate() error {
	if err := ValidateDateRange(q.From, q.To); err != nil {
		return err
	}
	if len(q.EntityIDs) == 0 {
		return &ValidationError{Field: "entity_ids", Reason: "at least one entity id is required"}
	}
	for i, id := range q.EntityIDs {
		if id == "" {
			return &ValidationError{Field: "entity_ids", Reason: fmt.Sprintf("entity id at position %d is empty", i)}
		}
	}
	if !q.Granularity.Valid() {
		return &ValidationError{Field: "granularity", Reason: fmt.Sprintf("%q is not one of day, week, month", q.Granularity)}
	}
	return nil
}

// ValidateDateRange checks that both bounds parse as calendar dates
// and that the range is not inverted.
func ValidateDateRange(from, to string) error {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return &ValidationError{Field: "from", Reason: fmt.Sprintf("%q is not a date in YYYY-MM-DD form", from)}
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return &ValidationError{Field: "to", Reason: fmt.Sprintf("%q is not a date in YYYY-MM-DD form", to)}
	}
	if start.After(end) {
		return &ValidationError{Field: "from", Reason: fmt.Sprintf("start %s is after end %s", from, to)}
	}
	return nil
}

// ParseGranularity maps a query-string value onto a Granularity,
// defaulting to day when absent.
func ParseGranularity(s string) (domain.Granularity, error) {
	if s == "" {
		return domain.GranularityDay, nil
	}
	g := domain.Granularity(s)
	if !g.Valid() {
		return "", &ValidationError{Field: "granularity", Reason: fmt.Sprintf("%q is not one of day, week, month", s)}
	}
	return g, nil
}
