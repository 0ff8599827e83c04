// Package runtime is the tiny support library generated code depends
// on at run time: a typed wrapper around database/sql execution, so
// the renderer (internal/render) only has to emit a call to Prepare
// with the query's embedded SQL and bound arguments, followed by Exec
// or Query.
package runtime

import (
	"context"
	"database/sql"
)

// Queryer is the subset of *sql.DB/*sql.Tx/*sql.Conn generated code
// needs; any of the three satisfies it.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Statement is a prepared query bound to a Queryer and its positional
// arguments, generic over its parameter and row shapes. Row is any for
// parameterless-result queries; Params is any for queries with no
// parameters.
type Statement[P, R any] struct {
	ctx     context.Context
	queryer Queryer
	sql     string
	args    []any
}

// Prepare builds a Statement for one generated query function, binding
// args (the query's Params struct fields, already extracted by the
// generated code in SQL-parameter order) so Exec/Query need no further
// arguments from the caller.
func Prepare[P, R any](ctx context.Context, queryer Queryer, sql string, args ...any) (Statement[P, R], error) {
	return Statement[P, R]{ctx: ctx, queryer: queryer, sql: sql, args: args}, nil
}

// Exec runs the statement's SQL with its bound arguments, discarding
// any result set (for queries with no returned row).
func (s Statement[P, R]) Exec() (sql.Result, error) {
	return s.queryer.ExecContext(s.ctx, s.sql, s.args...)
}

// Query runs the statement and applies scan to every returned row;
// scan is the generated code's accessor, turning one row of columns
// (in the query's declared SQL order) into an R (in the row's
// canonical sorted field order, via the permutation spec invariant 2
// describes).
func (s Statement[P, R]) Query(scan func(*sql.Rows) (R, error)) ([]R, error) {
	rows, err := s.queryer.QueryContext(s.ctx, s.sql, s.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []R
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
