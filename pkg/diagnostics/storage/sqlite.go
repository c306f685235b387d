package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/formgate/pkg/diagnostics"
	"mercator-hq/formgate/pkg/diagnostics/query"
)

const (
	// DriverCGO selects github.com/mattn/go-sqlite3.
	DriverCGO = "sqlite3"
	// DriverPureGo selects modernc.org/sqlite.
	DriverPureGo = "sqlite"
)

// maxDeleteIDs bounds the number of bound parameters in one DELETE ... IN statement.
const maxDeleteIDs = 500

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path. ":memory:" opens a private in-memory database.
	Path string

	// Driver is DriverCGO or DriverPureGo.
	// Default: DriverCGO
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/diagnostics.db",
		Driver:       DriverCGO,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements diagnostics.Storage using SQLite.
type SQLiteStorage struct {
	db        *sql.DB
	config    *SQLiteConfig
	insert    *sql.Stmt
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewSQLiteStorage opens the database, enables WAL mode if configured and creates
// the schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	cfg := *config
	if cfg.Driver == "" {
		cfg.Driver = DriverCGO
	}
	if cfg.Driver != DriverCGO && cfg.Driver != DriverPureGo {
		return nil, diagnostics.NewStorageError("sqlite", "open",
			fmt.Errorf("unknown driver %q, expected %q or %q", cfg.Driver, DriverCGO, DriverPureGo))
	}
	if cfg.Path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		cfg.MaxOpenConns = 1
		cfg.WALMode = false
	}

	logger := slog.Default().With("component", "diagnostics.storage.sqlite")

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, diagnostics.NewStorageError("sqlite", "open", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: &cfg,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"wal_mode", cfg.WALMode,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return diagnostics.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	if s.config.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(pragma); err != nil {
			return diagnostics.NewStorageError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return diagnostics.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return diagnostics.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return diagnostics.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return diagnostics.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	s.logger.Debug("schema version verified", "version", version)

	stmt, err := s.db.Prepare(insertRecord)
	if err != nil {
		return diagnostics.NewStorageError("sqlite", "prepare", err)
	}
	s.insert = stmt
	return nil
}

// Store persists a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *diagnostics.Record) error {
	_, err := s.insert.ExecContext(ctx,
		record.ID, record.FormID, record.FieldID, record.Kind,
		record.Reference, record.Operator, record.Message,
		record.RecordedAt.UnixNano(),
	)
	if err != nil {
		return diagnostics.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query retrieves records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, q *diagnostics.Query) ([]*diagnostics.Record, error) {
	if err := query.Validate(q); err != nil {
		return nil, err
	}
	q = query.ApplyDefaults(q)

	where, args := buildWhereClause(q)
	sqlQuery := "SELECT " + selectColumns + " FROM diagnostics" + where
	// SortOrder is validated against a fixed set above.
	order := strings.ToUpper(q.SortOrder)
	sqlQuery += fmt.Sprintf(" ORDER BY recorded_at %s, id %s LIMIT ? OFFSET ?", order, order)
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, diagnostics.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*diagnostics.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, diagnostics.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, diagnostics.NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, q *diagnostics.Query) (int64, error) {
	if err := query.Validate(q); err != nil {
		return 0, err
	}

	where, args := buildWhereClause(q)
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM diagnostics"+where, args...).Scan(&count); err != nil {
		return 0, diagnostics.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes records matching the query filters. Id lists are deleted in
// batches inside one transaction.
func (s *SQLiteStorage) Delete(ctx context.Context, q *diagnostics.Query) (int64, error) {
	if err := query.Validate(q); err != nil {
		return 0, err
	}
	if q == nil || len(q.IDs) <= maxDeleteIDs {
		return s.deleteWhere(ctx, s.db, q)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, diagnostics.NewStorageError("sqlite", "delete", err)
	}
	defer tx.Rollback()

	var total int64
	for start := 0; start < len(q.IDs); start += maxDeleteIDs {
		end := min(start+maxDeleteIDs, len(q.IDs))
		batch := *q
		batch.IDs = q.IDs[start:end]
		n, err := s.deleteWhere(ctx, tx, &batch)
		if err != nil {
			return 0, err
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, diagnostics.NewStorageError("sqlite", "delete", err)
	}
	return total, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStorage) deleteWhere(ctx context.Context, db execer, q *diagnostics.Query) (int64, error) {
	where, args := buildWhereClause(q)
	result, err := db.ExecContext(ctx, "DELETE FROM diagnostics"+where, args...)
	if err != nil {
		return 0, diagnostics.NewStorageError("sqlite", "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, diagnostics.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return diagnostics.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close releases the prepared statement and the connection pool.
func (s *SQLiteStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.insert != nil {
			s.insert.Close()
		}
		if cerr := s.db.Close(); cerr != nil {
			err = diagnostics.NewStorageError("sqlite", "close", cerr)
			return
		}
		s.logger.Info("SQLite storage closed")
	})
	return err
}

// buildWhereClause returns the WHERE clause (with a leading space, or empty) and its
// arguments.
func buildWhereClause(q *diagnostics.Query) (string, []any) {
	if q == nil {
		return "", nil
	}

	var conditions []string
	var args []any

	if len(q.IDs) > 0 {
		conditions = append(conditions, "id IN (?"+strings.Repeat(", ?", len(q.IDs)-1)+")")
		for _, id := range q.IDs {
			args = append(args, id)
		}
	}
	if q.FormID != "" {
		conditions = append(conditions, "form_id = ?")
		args = append(args, q.FormID)
	}
	if q.FieldID != "" {
		conditions = append(conditions, "field_id = ?")
		args = append(args, q.FieldID)
	}
	if q.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, q.Kind)
	}
	if q.StartTime != nil {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, q.StartTime.UnixNano())
	}
	if q.EndTime != nil {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, q.EndTime.UnixNano())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanRow(rows *sql.Rows) (*diagnostics.Record, error) {
	var record diagnostics.Record
	var recordedAt int64
	err := rows.Scan(
		&record.ID, &record.FormID, &record.FieldID, &record.Kind,
		&record.Reference, &record.Operator, &record.Message,
		&recordedAt,
	)
	if err != nil {
		return nil, err
	}
	record.RecordedAt = time.Unix(0, recordedAt).UTC()
	return &record, nil
}
