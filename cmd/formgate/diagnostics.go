package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/formgate/pkg/cli"
	"mercator-hq/formgate/pkg/config"
	"mercator-hq/formgate/pkg/diagnostics"
	"mercator-hq/formgate/pkg/diagnostics/export"
	"mercator-hq/formgate/pkg/diagnostics/query"
	"mercator-hq/formgate/pkg/diagnostics/retention"
	"mercator-hq/formgate/pkg/diagnostics/storage"
)

var diagnosticsFlags struct {
	backend   string
	form      string
	field     string
	kind      string
	since     time.Duration
	limit     int
	offset    int
	output    string
	olderThan time.Duration
}

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics",
	Short: "Inspect recorded evaluation diagnostics",
	Long: `Query and prune diagnostics recorded by the engine.

Diagnostics describe form logic the engine could not evaluate: conditions that
reference missing fields, operators that do not apply to a field type, field
ids a caller asked for that the form does not have, and condition trees deeper
than the configured limit.

Subcommands:
  list   - List diagnostics with filters
  prune  - Delete diagnostics past the retention policy`,
}

var diagnosticsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded diagnostics",
	Long: `List recorded diagnostics, newest first.

Examples:
  # Stale references in the signup form during the last day
  formgate diagnostics list --form signup --kind stale_reference --since 24h

  # Export everything as CSV
  formgate diagnostics list --limit 10000 --output csv > diagnostics.csv`,
	RunE: listDiagnostics,
}

var diagnosticsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete diagnostics past the retention policy",
	Long: `Delete diagnostics older than the configured retention days and beyond the
configured maximum record count. --older-than prunes by age only.

Examples:
  # Apply the configured retention policy
  formgate diagnostics prune

  # Delete everything older than a week
  formgate diagnostics prune --older-than 168h`,
	RunE: pruneDiagnostics,
}

func init() {
	rootCmd.AddCommand(diagnosticsCmd)
	diagnosticsCmd.AddCommand(diagnosticsListCmd, diagnosticsPruneCmd)

	diagnosticsCmd.PersistentFlags().StringVar(&diagnosticsFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")

	diagnosticsListCmd.Flags().StringVar(&diagnosticsFlags.form, "form", "", "filter by form id")
	diagnosticsListCmd.Flags().StringVar(&diagnosticsFlags.field, "field", "", "filter by field id")
	diagnosticsListCmd.Flags().StringVar(&diagnosticsFlags.kind, "kind", "", "filter by kind (stale_reference, unsupported_operator, unknown_field, depth_exceeded)")
	diagnosticsListCmd.Flags().DurationVar(&diagnosticsFlags.since, "since", 0, "only diagnostics recorded within this duration")
	diagnosticsListCmd.Flags().IntVar(&diagnosticsFlags.limit, "limit", query.DefaultLimit, "max results (at most 10000)")
	diagnosticsListCmd.Flags().IntVar(&diagnosticsFlags.offset, "offset", 0, "pagination offset")
	diagnosticsListCmd.Flags().StringVarP(&diagnosticsFlags.output, "output", "o", "table", "output format: text, table, json, csv")
	_ = diagnosticsListCmd.RegisterFlagCompletionFunc("kind",
		fixedCompletions("stale_reference", "unsupported_operator", "unknown_field", "depth_exceeded"))

	diagnosticsPruneCmd.Flags().DurationVar(&diagnosticsFlags.olderThan, "older-than", 0, "delete diagnostics older than this duration")
}

// openStorage opens the diagnostics store for backend, or the configured backend
// when backend is empty.
func openStorage(cfg config.DiagnosticsConfig, backend string) (diagnostics.Storage, error) {
	if backend == "" {
		backend = cfg.Backend
	}

	switch backend {
	case "sqlite":
		store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.SQLite.Path,
			Driver:       cfg.SQLite.Driver,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storage: %w", err)
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported diagnostics backend: %s (supported: sqlite, memory)", backend)
	}
}

func listDiagnostics(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(diagnosticsFlags.output)
	if err != nil {
		return err
	}

	q := &diagnostics.Query{
		FormID:  diagnosticsFlags.form,
		FieldID: diagnosticsFlags.field,
		Kind:    diagnosticsFlags.kind,
		Limit:   diagnosticsFlags.limit,
		Offset:  diagnosticsFlags.offset,
	}
	if diagnosticsFlags.since > 0 {
		start := time.Now().Add(-diagnosticsFlags.since)
		q.StartTime = &start
	}
	if err := query.Validate(q); err != nil {
		return cli.NewConfigError("query", err.Error())
	}

	store, err := openStorage(currentConfig().Diagnostics, diagnosticsFlags.backend)
	if err != nil {
		return cli.NewCommandError("diagnostics", err)
	}
	defer store.Close()

	ctx := context.Background()
	records, err := store.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("diagnostics", err)
	}

	switch format {
	case cli.FormatJSON:
		return export.NewJSONExporter(true).Export(ctx, records, stdout(cmd))
	case cli.FormatCSV:
		return export.NewCSVExporter(true).Export(ctx, records, stdout(cmd))
	default:
		if len(records) == 0 {
			printf(cmd, "No diagnostics found\n")
			return nil
		}
		return cli.NewFormatter(format).FormatTo(stdout(cmd), recordRows(records))
	}
}

func pruneDiagnostics(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()

	store, err := openStorage(cfg.Diagnostics, diagnosticsFlags.backend)
	if err != nil {
		return cli.NewCommandError("diagnostics", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, retentionConfig(cfg.Diagnostics.Retention))

	ctx := context.Background()
	var deleted int64
	if diagnosticsFlags.olderThan > 0 {
		deleted, err = pruner.PruneOlderThan(ctx, time.Now().Add(-diagnosticsFlags.olderThan))
	} else {
		deleted, err = pruner.Prune(ctx)
	}
	if err != nil {
		return cli.NewCommandError("diagnostics", err)
	}

	printf(cmd, "✓ Pruned %d diagnostic(s)\n", deleted)
	return nil
}

// recordRows renders diagnostic records as table rows.
type recordRows []*diagnostics.Record

func (r recordRows) Header() []string {
	return []string{"RECORDED", "FORM", "FIELD", "KIND", "MESSAGE"}
}

func (r recordRows) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, rec := range r {
		rows[i] = []string{
			rec.RecordedAt.Format(time.RFC3339),
			rec.FormID,
			rec.FieldID,
			rec.Kind,
			rec.Message,
		}
	}
	return rows
}
