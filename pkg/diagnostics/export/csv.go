package export

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"mercator-hq/formgate/pkg/diagnostics"
)

var csvHeader = []string{
	"id", "form_id", "field_id", "kind", "reference", "operator", "message", "recorded_at",
}

// CSVExporter exports records as CSV, one row per record.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes records to w.
func (e *CSVExporter) Export(ctx context.Context, records []*diagnostics.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return diagnostics.NewExportError("csv", len(records), err)
		}
	}

	for i, record := range records {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := writer.Write(recordToRow(record)); err != nil {
			return diagnostics.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return diagnostics.NewExportError("csv", len(records), err)
	}
	return nil
}

func recordToRow(record *diagnostics.Record) []string {
	recordedAt := ""
	if !record.RecordedAt.IsZero() {
		recordedAt = record.RecordedAt.UTC().Format(time.RFC3339Nano)
	}
	return []string{
		record.ID,
		record.FormID,
		record.FieldID,
		record.Kind,
		record.Reference,
		record.Operator,
		record.Message,
		recordedAt,
	}
}
