package diagnostics

import (
	"context"
	"io"
	"time"

	"mercator-hq/formgate/pkg/logic/engine"
)

// Record is a persisted engine diagnostic.
type Record struct {
	ID         string    `json:"id"`                  // UUID v4
	FormID     string    `json:"form_id"`             // Form being evaluated
	FieldID    string    `json:"field_id,omitempty"`  // Field whose logic or request produced it
	Kind       string    `json:"kind"`                // stale_reference, unsupported_operator, ...
	Reference  string    `json:"reference,omitempty"` // Field id the condition points at
	Operator   string    `json:"operator,omitempty"`  // Operator of the affected leaf
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recorded_at"`
}

// FromDiagnostic converts an engine diagnostic into a record without an id.
func FromDiagnostic(d engine.Diagnostic, at time.Time) *Record {
	return &Record{
		FormID:     d.FormID,
		FieldID:    d.FieldID,
		Kind:       string(d.Kind),
		Reference:  d.Reference,
		Operator:   string(d.Operator),
		Message:    d.Message,
		RecordedAt: at,
	}
}

// Query defines filter parameters for querying diagnostic records.
type Query struct {
	// IDs restricts the query to the given record ids.
	IDs []string `json:"ids,omitempty"`

	FormID  string `json:"form_id,omitempty"`
	FieldID string `json:"field_id,omitempty"`
	Kind    string `json:"kind,omitempty"`

	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortOrder orders by RecordedAt: "asc" or "desc" (default).
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage defines the interface for diagnostic storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the query filters, newest first unless the
	// query asks otherwise. Returns an empty slice if nothing matches.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query filters. Limit and
	// Offset are ignored.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the query filters and returns how many were
	// removed. Limit and Offset are ignored.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}

// Exporter writes records in some output format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
