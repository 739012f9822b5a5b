package driven

import (
	"context"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// EventStore reads structured city events.
// The store is written by external perception pipelines; UrbanBot never writes to it.
type EventStore interface {
	// Latest returns up to q.Limit rows ordered by q.OrderBy descending.
	// Values are rendered as strings aligned with q.Columns.
	Latest(ctx context.Context, q domain.EventQuery) ([]domain.EventRecord, error)

	// Count returns the number of rows matching the query.
	Count(ctx context.Context, q domain.CountQuery) (int64, error)

	// CountByCity returns matching row counts grouped by city, largest first.
	CountByCity(ctx context.Context, q domain.CountQuery) ([]domain.CityCount, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close() error
}
