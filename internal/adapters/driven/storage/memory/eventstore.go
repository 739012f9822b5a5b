package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

// Ensure EventStore implements the interface.
var _ driven.EventStore = (*EventStore)(nil)

// ErrStoreClosed is returned after Close.
var ErrStoreClosed = errors.New("memory event store closed")

// Row is one event keyed by column name.
type Row map[string]string

// EventStore is an in-memory implementation of driven.EventStore.
// Ordering compares values as strings, so timestamps should be
// lexically sortable (RFC 3339 or "2006-01-02 15:04:05").
type EventStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
	closed bool
}

// NewEventStore creates a new empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		tables: make(map[string][]Row),
	}
}

// Insert appends rows to a table.
func (s *EventStore) Insert(table string, rows ...Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		s.tables[table] = append(s.tables[table], cp)
	}
}

// Latest returns up to q.Limit rows ordered by q.OrderBy descending.
func (s *EventStore) Latest(ctx context.Context, q domain.EventQuery) ([]domain.EventRecord, error) {
	rows, err := s.snapshot(ctx, q.Table)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		return strings.Compare(b[q.OrderBy], a[q.OrderBy])
	})
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	records := make([]domain.EventRecord, 0, len(rows))
	for _, r := range rows {
		values := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			values[i] = r[c]
		}
		records = append(records, domain.EventRecord{Values: values})
	}
	return records, nil
}

// Count returns the number of rows matching the query.
func (s *EventStore) Count(ctx context.Context, q domain.CountQuery) (int64, error) {
	rows, err := s.snapshot(ctx, q.Table)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, r := range rows {
		if matches(r, q) {
			n++
		}
	}
	return n, nil
}

// CountByCity returns matching row counts per city, largest first.
func (s *EventStore) CountByCity(ctx context.Context, q domain.CountQuery) ([]domain.CityCount, error) {
	rows, err := s.snapshot(ctx, q.Table)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, r := range rows {
		if matches(r, q) {
			counts[r["city"]]++
		}
	}

	out := make([]domain.CityCount, 0, len(counts))
	for city, n := range counts {
		out = append(out, domain.CityCount{City: city, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.CityCount) int {
		if a.Count != b.Count {
			if a.Count > b.Count {
				return -1
			}
			return 1
		}
		return strings.Compare(a.City, b.City)
	})
	return out, nil
}

// Ping reports whether the store is open.
func (s *EventStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Close marks the store closed.
func (s *EventStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *EventStore) snapshot(ctx context.Context, table string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return slices.Clone(s.tables[table]), nil
}

func matches(r Row, q domain.CountQuery) bool {
	if !q.HasFilter() {
		return true
	}
	return slices.Contains(q.Filter.Values, r[q.Filter.Column])
}
