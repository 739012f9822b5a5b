package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.EventStore = (*Store)(nil)

// Latest returns the newest q.Limit rows of q.Table projected to q.Columns.
// NULL values become empty strings.
func (s *Store) Latest(ctx context.Context, q domain.EventQuery) ([]domain.EventRecord, error) {
	if len(q.Columns) == 0 || q.Limit <= 0 {
		return nil, fmt.Errorf("%w: query for %s has no columns or limit", domain.ErrInvalidInput, q.Table)
	}

	table, err := s.dialect.ident(q.Table)
	if err != nil {
		return nil, err
	}
	orderBy, err := s.dialect.ident(q.OrderBy)
	if err != nil {
		return nil, err
	}
	cols, err := s.dialect.idents(q.Columns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s DESC LIMIT %s",
		strings.Join(cols, ", "), table, orderBy, s.dialect.params(1, 1))

	rows, err := s.db.QueryContext(ctx, query, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", q.Table, err)
	}
	defer rows.Close()

	records := make([]domain.EventRecord, 0, q.Limit)
	cells := make([]any, len(q.Columns))
	dest := make([]any, len(cells))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", q.Table, err)
		}

		values := make([]string, len(cells))
		for i, c := range cells {
			values[i] = cellString(c)
		}
		records = append(records, domain.EventRecord{Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", q.Table, err)
	}

	return records, nil
}

// Count returns the number of rows matching q.
func (s *Store) Count(ctx context.Context, q domain.CountQuery) (int64, error) {
	from, args, err := s.countFrom(q)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) "+from, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", q.Name, err)
	}
	return n, nil
}

// CountByCity returns per-city totals for q, largest first, ties by city name.
func (s *Store) CountByCity(ctx context.Context, q domain.CountQuery) ([]domain.CityCount, error) {
	from, args, err := s.countFrom(q)
	if err != nil {
		return nil, err
	}
	city, err := s.dialect.ident("city")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %[1]s, COUNT(*) AS n %[2]s GROUP BY %[1]s ORDER BY n DESC, %[1]s ASC", city, from)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("grouping %s: %w", q.Name, err)
	}
	defer rows.Close()

	var out []domain.CityCount //nolint:prealloc // size unknown from query
	for rows.Next() {
		var name any
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", q.Name, err)
		}
		out = append(out, domain.CityCount{City: cellString(name), Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", q.Name, err)
	}
	return out, nil
}

// countFrom renders the FROM/WHERE clause shared by the count queries.
func (s *Store) countFrom(q domain.CountQuery) (string, []any, error) {
	table, err := s.dialect.ident(q.Table)
	if err != nil {
		return "", nil, err
	}
	if !q.HasFilter() {
		return "FROM " + table, nil, nil
	}

	col, err := s.dialect.ident(q.Filter.Column)
	if err != nil {
		return "", nil, err
	}
	args := make([]any, len(q.Filter.Values))
	for i, v := range q.Filter.Values {
		args[i] = v
	}
	return fmt.Sprintf("FROM %s WHERE %s IN (%s)", table, col, s.dialect.params(1, len(args))), args, nil
}
