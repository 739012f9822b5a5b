// Package cache wraps an event store so repeated dashboard counters are
// served from memory for a short time.
//
// Only Count and CountByCity are cached. Latest always reaches the store,
// so answers are grounded on the newest rows. Concurrent misses for the
// same query share one store call.
package cache

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

// Ensure EventStore implements the interface.
var _ driven.EventStore = (*EventStore)(nil)

// DefaultSize bounds the number of cached results per query kind.
const DefaultSize = 128

// EventStore caches counter results of the wrapped store.
type EventStore struct {
	driven.EventStore

	counts *expirable.LRU[string, int64]
	cities *expirable.LRU[string, []domain.CityCount]
	group  singleflight.Group
}

// NewEventStore wraps store. Results live for ttl; size <= 0 selects DefaultSize.
func NewEventStore(store driven.EventStore, size int, ttl time.Duration) *EventStore {
	if size <= 0 {
		size = DefaultSize
	}
	return &EventStore{
		EventStore: store,
		counts:     expirable.NewLRU[string, int64](size, nil, ttl),
		cities:     expirable.NewLRU[string, []domain.CityCount](size, nil, ttl),
	}
}

// Count returns a cached count or queries the store. Errors are not cached.
func (s *EventStore) Count(ctx context.Context, q domain.CountQuery) (int64, error) {
	key := queryKey(q)
	if n, ok := s.counts.Get(key); ok {
		return n, nil
	}

	v, err, _ := s.group.Do("count/"+key, func() (any, error) {
		n, err := s.EventStore.Count(ctx, q)
		if err != nil {
			return nil, err
		}
		s.counts.Add(key, n)
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// CountByCity returns a cached breakdown or queries the store.
// Callers receive their own copy of the slice.
func (s *EventStore) CountByCity(ctx context.Context, q domain.CountQuery) ([]domain.CityCount, error) {
	key := queryKey(q)
	if cities, ok := s.cities.Get(key); ok {
		return slices.Clone(cities), nil
	}

	v, err, _ := s.group.Do("city/"+key, func() (any, error) {
		cities, err := s.EventStore.CountByCity(ctx, q)
		if err != nil {
			return nil, err
		}
		s.cities.Add(key, cities)
		return cities, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]domain.CityCount)), nil
}

// Purge drops every cached result.
func (s *EventStore) Purge() {
	s.counts.Purge()
	s.cities.Purge()
}

// queryKey identifies a count by what it reads, not by its display name.
func queryKey(q domain.CountQuery) string {
	var b strings.Builder
	b.WriteString(q.Table)
	if q.HasFilter() {
		b.WriteByte('|')
		b.WriteString(q.Filter.Column)
		for _, v := range q.Filter.Values {
			b.WriteByte('|')
			b.WriteString(v)
		}
	}
	return b.String()
}
