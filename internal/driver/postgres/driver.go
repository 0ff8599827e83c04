package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/querybind/querybind/internal/driver"
)

// stmtCounter gives every prepared statement a unique server-side
// name within the process. It is a plain, unsynchronized counter:
// Prepare is only ever called sequentially (spec §5), and concurrent
// calls would race on it.
var stmtCounter int

const preparedStatementQuery = `
SELECT parameter_types::text[]
FROM pg_prepared_statements
WHERE name = $1`

// Driver implements driver.Driver against a live Postgres server.
type Driver struct {
	db  *sql.DB
	cat *catalog
}

// Open connects to the Postgres server at dsn and returns a Driver
// holding that single connection for the lifetime of the run, per
// spec §5.
func Open(dsn string) (*Driver, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &Driver{db: db, cat: newCatalog(db)}, nil
}

// NewFromDB wraps an already-open *sql.DB, mirroring the teacher's
// own OpenDB/Open split (dialect/sql.OpenDB) so tests can substitute a
// sqlmock-backed *sql.DB without dialing a real server.
func NewFromDB(db *sql.DB) *Driver {
	return &Driver{db: db, cat: newCatalog(db)}
}

// Close releases the underlying connection.
func (d *Driver) Close() error { return d.db.Close() }

// BatchExecute runs sql without returning rows, used for migrations
// and test-schema resets.
func (d *Driver) BatchExecute(ctx context.Context, sql string) error {
	if _, err := d.db.ExecContext(ctx, sql); err != nil {
		return driver.NewDbError(deparsePQError(err))
	}
	return nil
}

// Prepare implements spec §4.G: PREPARE the statement to learn its
// parameter types from pg_prepared_statements, then separately probe
// its result columns via a zero-row SELECT wrapping the same SQL.
func (d *Driver) Prepare(ctx context.Context, querySQL string) (driver.PreparedStatement, error) {
	stmtCounter++
	name := fmt.Sprintf("querybind_stmt_%d", stmtCounter)

	if _, err := d.db.ExecContext(ctx, fmt.Sprintf("PREPARE %s AS %s", name, querySQL)); err != nil {
		return nil, driver.NewDbError(deparsePQError(err))
	}
	defer d.db.ExecContext(ctx, fmt.Sprintf("DEALLOCATE %s", name))

	paramTypeNames, err := d.preparedParamTypeNames(ctx, name)
	if err != nil {
		return nil, driver.NewDbError(deparsePQError(err))
	}
	params := make([]driver.PgType, 0, len(paramTypeNames))
	for _, typeName := range paramTypeNames {
		pt, err := d.cat.resolveByName(ctx, typeName)
		if err != nil {
			return nil, driver.NewDbError(deparsePQError(err))
		}
		params = append(params, pt)
	}

	cols, err := d.probeColumns(ctx, querySQL)
	if err != nil {
		return nil, driver.NewDbError(deparsePQError(err))
	}

	return &preparedStatement{params: params, columns: cols}, nil
}

// preparedParamTypeNames reads back the server's inferred parameter
// types for the named prepared statement, in positional order.
func (d *Driver) preparedParamTypeNames(ctx context.Context, name string) ([]string, error) {
	var raw string
	if err := d.db.QueryRowContext(ctx, preparedStatementQuery, name).Scan(&raw); err != nil {
		return nil, err
	}
	var arr pq.StringArray
	if err := arr.Scan(raw); err != nil {
		return nil, err
	}
	return []string(arr), nil
}

// probeColumns executes the query wrapped in a zero-row SELECT to
// read its result columns' names and types via database/sql's
// ColumnType, without ever materializing a row.
func (d *Driver) probeColumns(ctx context.Context, querySQL string) ([]driver.Column, error) {
	probe := fmt.Sprintf("SELECT * FROM (%s) AS _querybind_probe LIMIT 0", strings.TrimRight(querySQL, "; \n\t"))
	rows, err := d.db.QueryContext(ctx, probe)
	if err != nil {
		return nil, err
	}

	colTypes, err := rows.ColumnTypes()
	// Release the connection before the catalog lookups below: Open
	// caps the pool at one connection, which open rows would hold.
	closeErr := rows.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}
	cols := make([]driver.Column, 0, len(colTypes))
	for _, ct := range colTypes {
		pt, err := d.cat.resolveByName(ctx, ct.DatabaseTypeName())
		if err != nil {
			return nil, err
		}
		cols = append(cols, driver.Column{Name: ct.Name(), Type: pt})
	}
	return cols, nil
}

// deparsePQError unwraps a *pq.Error into a plain error carrying only
// the server's message verbatim (spec §4.D step 1), rather than the
// Go client's wrapping.
func deparsePQError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		return fmt.Errorf("%s", pqErr.Message)
	}
	return err
}

// preparedStatement is the driver.PreparedStatement returned by a
// successful Prepare.
type preparedStatement struct {
	params  []driver.PgType
	columns []driver.Column
}

func (s *preparedStatement) Params() []driver.PgType   { return s.params }
func (s *preparedStatement) Columns() []driver.Column  { return s.columns }
