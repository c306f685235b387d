package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/formgate/pkg/diagnostics"
)

// JSONExporter exports records as a JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records to w. An empty input writes "[]".
func (e *JSONExporter) Export(ctx context.Context, records []*diagnostics.Record, w io.Writer) error {
	if records == nil {
		records = []*diagnostics.Record{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return diagnostics.NewExportError("json", len(records), err)
	}
	return nil
}
