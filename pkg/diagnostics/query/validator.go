package query

import (
	"fmt"

	"mercator-hq/formgate/pkg/diagnostics"
)

const (
	// DefaultLimit is the number of records returned when a query sets no limit.
	DefaultLimit = 100

	// MaxLimit is the maximum number of records a single query may return.
	MaxLimit = 10000
)

// ValidSortOrders contains the accepted sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// ValidKinds contains the diagnostic kinds the engine reports.
var ValidKinds = map[string]bool{
	"stale_reference":      true,
	"unsupported_operator": true,
	"depth_exceeded":       true,
	"unknown_field":        true,
}

// Validate returns a *diagnostics.QueryError if any query parameter is invalid.
func Validate(q *diagnostics.Query) error {
	if q == nil {
		return nil
	}
	if q.Limit < 0 {
		return diagnostics.NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return diagnostics.NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return diagnostics.NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}
	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return diagnostics.NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}
	if q.Kind != "" && !ValidKinds[q.Kind] {
		return diagnostics.NewQueryError(q, fmt.Errorf("unknown diagnostic kind: %s", q.Kind))
	}
	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return diagnostics.NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
	}
	return nil
}

// ApplyDefaults returns a copy of q with the default limit and sort order filled in.
// A nil query yields the defaults.
func ApplyDefaults(q *diagnostics.Query) *diagnostics.Query {
	out := diagnostics.Query{}
	if q != nil {
		out = *q
	}
	if out.Limit == 0 {
		out.Limit = DefaultLimit
	}
	if out.SortOrder == "" {
		out.SortOrder = "desc"
	}
	return &out
}
