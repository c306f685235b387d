package storage

import (
	"context"
	"sort"
	"sync"

	"mercator-hq/formgate/pkg/diagnostics"
	"mercator-hq/formgate/pkg/diagnostics/query"
)

// MemoryStorage implements diagnostics.Storage with an in-memory map.
type MemoryStorage struct {
	records map[string]*diagnostics.Record
	closed  bool
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*diagnostics.Record),
	}
}

// Store saves a copy of the record.
func (s *MemoryStorage) Store(ctx context.Context, record *diagnostics.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return diagnostics.NewStorageError("memory", "store", diagnostics.ErrClosed)
	}
	recordCopy := *record
	s.records[record.ID] = &recordCopy
	return nil
}

// Query retrieves copies of the matching records.
func (s *MemoryStorage) Query(ctx context.Context, q *diagnostics.Query) ([]*diagnostics.Record, error) {
	if err := query.Validate(q); err != nil {
		return nil, err
	}
	q = query.ApplyDefaults(q)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matching(q)
	sortRecords(matched, q.SortOrder == "asc")

	results := []*diagnostics.Record{}
	if q.Offset >= len(matched) {
		return results, nil
	}
	end := q.Offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	for _, record := range matched[q.Offset:end] {
		recordCopy := *record
		results = append(results, &recordCopy)
	}
	return results, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, q *diagnostics.Query) (int64, error) {
	if err := query.Validate(q); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.matching(q))), nil
}

// Delete removes the matching records.
func (s *MemoryStorage) Delete(ctx context.Context, q *diagnostics.Query) (int64, error) {
	if err := query.Validate(q); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.matching(q)
	for _, record := range matched {
		delete(s.records, record.ID)
	}
	return int64(len(matched)), nil
}

// Ping fails once the storage is closed.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return diagnostics.NewStorageError("memory", "ping", diagnostics.ErrClosed)
	}
	return nil
}

// Close drops all records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*diagnostics.Record)
	s.closed = true
	return nil
}

// matching must be called with the lock held.
func (s *MemoryStorage) matching(q *diagnostics.Query) []*diagnostics.Record {
	var ids map[string]bool
	if q != nil && len(q.IDs) > 0 {
		ids = make(map[string]bool, len(q.IDs))
		for _, id := range q.IDs {
			ids[id] = true
		}
	}

	var out []*diagnostics.Record
	for _, record := range s.records {
		if ids != nil && !ids[record.ID] {
			continue
		}
		if matchesQuery(record, q) {
			out = append(out, record)
		}
	}
	return out
}

func matchesQuery(record *diagnostics.Record, q *diagnostics.Query) bool {
	if q == nil {
		return true
	}
	if q.FormID != "" && record.FormID != q.FormID {
		return false
	}
	if q.FieldID != "" && record.FieldID != q.FieldID {
		return false
	}
	if q.Kind != "" && record.Kind != q.Kind {
		return false
	}
	if q.StartTime != nil && record.RecordedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && record.RecordedAt.After(*q.EndTime) {
		return false
	}
	return true
}

// sortRecords orders by RecordedAt, breaking ties by id.
func sortRecords(records []*diagnostics.Record, ascending bool) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.RecordedAt.Equal(b.RecordedAt) {
			if ascending {
				return a.RecordedAt.Before(b.RecordedAt)
			}
			return a.RecordedAt.After(b.RecordedAt)
		}
		if ascending {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
}
