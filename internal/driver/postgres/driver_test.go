package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybind/querybind/internal/driver"
)

func newMockDriver(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFromDB(db), mock
}

func TestBatchExecuteRunsSQLVerbatim(t *testing.T) {
	drv, mock := newMockDriver(t)
	mock.ExpectExec("ALTER TABLE users ADD COLUMN bio text").WillReturnResult(sqlmock.NewResult(0, 0))

	err := drv.BatchExecute(context.Background(), "ALTER TABLE users ADD COLUMN bio text")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchExecuteWrapsServerError(t *testing.T) {
	drv, mock := newMockDriver(t)
	mock.ExpectExec("BAD SQL").WillReturnError(&pq.Error{Message: `syntax error at or near "SQL"`})

	err := drv.BatchExecute(context.Background(), "BAD SQL")
	require.Error(t, err)
	var dbErr *driver.DbError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, `syntax error at or near "SQL"`, dbErr.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestPrepareResolvesParamsAndColumns exercises the full §4.G sequence
// for a query with one int4 parameter and one text column, following
// the teacher's sqlmock style (dialect/sql/driver_test.go): each
// statement the driver issues gets its own ordered Expect*.
func TestPrepareResolvesParamsAndColumns(t *testing.T) {
	drv, mock := newMockDriver(t)

	mock.ExpectExec("PREPARE querybind_stmt_1 AS SELECT bio FROM users WHERE id = $1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(preparedStatementQuery).
		WithArgs("querybind_stmt_1").
		WillReturnRows(sqlmock.NewRows([]string{"parameter_types"}).AddRow("{int4}"))
	mock.ExpectQuery(typeRowByNameQuery).
		WithArgs("int4").
		WillReturnRows(sqlmock.NewRows(
			[]string{"oid", "nspname", "typname", "typtype", "typcategory", "typelem", "typbasetype", "typrelid"},
		).AddRow(23, "pg_catalog", "int4", "b", "N", 0, 0, 0))
	mock.ExpectQuery(typeRowQuery).
		WithArgs(23).
		WillReturnRows(sqlmock.NewRows(
			[]string{"oid", "nspname", "typname", "typtype", "typcategory", "typelem", "typbasetype", "typrelid"},
		).AddRow(23, "pg_catalog", "int4", "b", "N", 0, 0, 0))
	mock.ExpectQuery("SELECT * FROM (SELECT bio FROM users WHERE id = $1) AS _querybind_probe LIMIT 0").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("bio").OfType("text", "")))
	mock.ExpectQuery(typeRowByNameQuery).
		WithArgs("text").
		WillReturnRows(sqlmock.NewRows(
			[]string{"oid", "nspname", "typname", "typtype", "typcategory", "typelem", "typbasetype", "typrelid"},
		).AddRow(25, "pg_catalog", "text", "b", "S", 0, 0, 0))
	mock.ExpectQuery(typeRowQuery).
		WithArgs(25).
		WillReturnRows(sqlmock.NewRows(
			[]string{"oid", "nspname", "typname", "typtype", "typcategory", "typelem", "typbasetype", "typrelid"},
		).AddRow(25, "pg_catalog", "text", "b", "S", 0, 0, 0))
	mock.ExpectExec("DEALLOCATE querybind_stmt_1").WillReturnResult(sqlmock.NewResult(0, 0))

	stmt, err := drv.Prepare(context.Background(), "SELECT bio FROM users WHERE id = $1")
	require.NoError(t, err)

	require.Len(t, stmt.Params(), 1)
	assert.Equal(t, "int4", stmt.Params()[0].Name())

	require.Len(t, stmt.Columns(), 1)
	assert.Equal(t, "bio", stmt.Columns()[0].Name)
}

func TestPrepareWrapsSyntaxError(t *testing.T) {
	drv, mock := newMockDriver(t)
	mock.ExpectExec("PREPARE querybind_stmt_2 AS BAD SQL").
		WillReturnError(&pq.Error{Message: `syntax error at or near "SQL"`})

	_, err := drv.Prepare(context.Background(), "BAD SQL")
	require.Error(t, err)
	var dbErr *driver.DbError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, `syntax error at or near "SQL"`, dbErr.Message)
}

func TestDeparsePQErrorUnwrapsMessage(t *testing.T) {
	err := deparsePQError(&pq.Error{Message: "relation \"users\" does not exist"})
	assert.Equal(t, "relation \"users\" does not exist", err.Error())
}

func TestDeparsePQErrorPassesThroughOtherErrors(t *testing.T) {
	cause := assertErr("boom")
	err := deparsePQError(cause)
	assert.Equal(t, cause, err)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
