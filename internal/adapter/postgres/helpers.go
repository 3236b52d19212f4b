package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsmith/docsmith/internal/domain"
	"github.com/docsmith/docsmith/internal/port/store"
)

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

// pgTextArray converts a string slice to a pgx-compatible text array.
// nil slices become empty arrays to avoid SQL NULL.
func pgTextArray(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// checkCapacity enforces the row bound for a table. Unlike the in-memory
// store, the Postgres store rejects over-capacity writes instead of
// evicting: durable history should never silently disappear.
func checkCapacity(ctx context.Context, pool *pgxpool.Pool, table string, capacity int) error {
	if capacity <= 0 {
		return nil
	}
	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM `+table).Scan(&count); err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if count >= capacity {
		return fmt.Errorf("%w: %s table holds %d rows, capacity %d",
			domain.ErrCapacityExceeded, table, count, capacity)
	}
	return nil
}

// tableStats aggregates status/type counts in a single grouped query.
func tableStats(ctx context.Context, pool *pgxpool.Pool, table, typeCol string) (*store.Stats, error) {
	stats := &store.Stats{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}

	q := fmt.Sprintf(`SELECT status, %s, count(*) FROM %s GROUP BY status, %s`, typeCol, table, typeCol)
	rows, err := pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("stats %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, typ string
		var count int
		if err := rows.Scan(&status, &typ, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByStatus[status] += count
		stats.ByType[typ] += count
		stats.Total += count
	}
	return stats, rows.Err()
}
