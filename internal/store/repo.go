package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// QueryOpts configures history queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	Before int64     // sequence < Before, for paging backwards
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// apply adds the options to a selector over a table with a sequence column
// and the named timestamp column. Rows come back newest first.
func (o QueryOpts) apply(s *entsql.Selector, timeColumn string) *entsql.Selector {
	if o.Before > 0 {
		s.Where(entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		s.Where(entsql.GTE(timeColumn, o.From.UTC()))
	}
	if !o.To.IsZero() {
		s.Where(entsql.LTE(timeColumn, o.To.UTC()))
	}
	s.OrderBy(entsql.Desc("sequence"))
	if o.Limit > 0 {
		s.Limit(o.Limit)
	}
	return s
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// queryAll runs a built selector and scans every row with scan.
func queryAll[T any](ctx context.Context, db *sql.DB, s *entsql.Selector, scan func(rowScanner) (T, error)) ([]T, error) {
	query, args := s.Query()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryStrings runs a single-column selector.
func queryStrings(ctx context.Context, db *sql.DB, s *entsql.Selector) ([]string, error) {
	return queryAll(ctx, db, s, func(r rowScanner) (string, error) {
		var v string
		err := r.Scan(&v)
		return v, err
	})
}

// exec runs a built insert, update or delete statement.
func exec(ctx context.Context, db interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, q entsql.Querier) error {
	query, args := q.Query()
	_, err := db.ExecContext(ctx, query, args...)
	return err
}
