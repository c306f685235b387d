package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mercator-hq/formgate/pkg/diagnostics"
	"mercator-hq/formgate/pkg/diagnostics/export"
	"mercator-hq/formgate/pkg/diagnostics/query"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to keep records. 0 keeps them forever.
	RetentionDays int

	// MaxRecords is the maximum number of records to keep. 0 means unlimited.
	MaxRecords int64

	// PruneSchedule is a cron expression, e.g. "0 3 * * *" (daily at 3 AM).
	// Empty disables scheduled pruning.
	PruneSchedule string

	// ArchivePath, when set, receives a JSON file of every batch before deletion.
	ArchivePath string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces retention on a diagnostics store.
type Pruner struct {
	storage   diagnostics.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(storage diagnostics.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "diagnostics.retention"),
		now:     time.Now,
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes records older than the retention period, then the oldest records
// beyond MaxRecords. It returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by count failed: %w", err)
		}
		total += deleted
	}

	if total == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("diagnostics pruning completed",
			"total_deleted", total,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}
	return total, nil
}

// PruneOlderThan deletes records recorded at or before cutoff, independent of the
// configured retention.
func (p *Pruner) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	q := &diagnostics.Query{EndTime: &cutoff}
	if p.config.ArchivePath != "" {
		if err := p.archiveQuery(ctx, q); err != nil {
			return 0, err
		}
	}
	return p.storage.Delete(ctx, q)
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	deleted, err := p.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return 0, diagnostics.NewRetentionError(p.config.RetentionDays, err)
	}
	return deleted, nil
}

// pruneByCount deletes the oldest records until at most MaxRecords remain. Records
// are selected oldest first and deleted by id, so ties on the timestamp never remove
// more than the surplus.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &diagnostics.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	surplus := count - p.config.MaxRecords
	p.logger.Info("record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", surplus,
	)

	var total int64
	for total < surplus {
		batch := min(surplus-total, int64(query.MaxLimit))
		oldest, err := p.storage.Query(ctx, &diagnostics.Query{
			Limit:     int(batch),
			SortOrder: "asc",
		})
		if err != nil {
			return total, fmt.Errorf("failed to query records: %w", err)
		}
		if len(oldest) == 0 {
			break
		}

		if p.config.ArchivePath != "" {
			if err := p.archive(ctx, oldest); err != nil {
				return total, err
			}
		}

		ids := make([]string, len(oldest))
		for i, r := range oldest {
			ids[i] = r.ID
		}
		deleted, err := p.storage.Delete(ctx, &diagnostics.Query{IDs: ids})
		if err != nil {
			return total, fmt.Errorf("delete failed: %w", err)
		}
		total += deleted
		if deleted == 0 {
			break
		}
	}
	return total, nil
}

func (p *Pruner) archiveQuery(ctx context.Context, q *diagnostics.Query) error {
	archived := *q
	archived.SortOrder = "asc"
	archived.Limit = query.MaxLimit
	for {
		records, err := p.storage.Query(ctx, &archived)
		if err != nil {
			return fmt.Errorf("failed to query records for archiving: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := p.archive(ctx, records); err != nil {
			return err
		}
		if len(records) < archived.Limit {
			return nil
		}
		archived.Offset += len(records)
	}
}

// archive writes records to a timestamped JSON file under ArchivePath.
func (p *Pruner) archive(ctx context.Context, records []*diagnostics.Record) error {
	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := fmt.Sprintf("diagnostics-%s-%s.json", p.now().UTC().Format("20060102-150405"), records[0].ID)
	path := filepath.Join(p.config.ArchivePath, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	if err := export.NewJSONExporter(true).Export(ctx, records, f); err != nil {
		return fmt.Errorf("failed to export records to archive: %w", err)
	}

	p.logger.Info("diagnostics archived",
		"archive_file", path,
		"record_count", len(records),
	)
	return nil
}

// Start starts scheduled pruning.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops scheduled pruning and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled prune, or nil.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
