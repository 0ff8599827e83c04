package queryfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybind/querybind/internal/query"
	"github.com/querybind/querybind/internal/queryfile"
)

func TestParseFileBasicQuery(t *testing.T) {
	contents := `--: name: get_user
--: param: id
--! nullable: 2
SELECT id, bio FROM users WHERE id = $1;
`
	mod, err := queryfile.ParseFile("queries/users.sql", contents)
	require.NoError(t, err)
	assert.Equal(t, "users", mod.Name)
	require.Len(t, mod.Queries, 1)

	q := mod.Queries[0]
	assert.Equal(t, "get_user", q.Name.Value)
	assert.Equal(t, 1, q.Line)
	require.Len(t, q.Params, 1)
	assert.Equal(t, "id", q.Params[0].Value)
	require.Len(t, q.NullableColumns, 1)
	assert.Equal(t, query.NullableColumnIndex, q.NullableColumns[0].Value.Kind)
	assert.Equal(t, 2, q.NullableColumns[0].Value.Index)
	assert.Equal(t, "SELECT id, bio FROM users WHERE id = $1;", q.SQLStr)
}

func TestParseFileMultipleQueries(t *testing.T) {
	contents := `--: name: get_user
SELECT id FROM users WHERE id = $1;

--: name: list_users
SELECT id FROM users;
`
	mod, err := queryfile.ParseFile("m.sql", contents)
	require.NoError(t, err)
	require.Len(t, mod.Queries, 2)
	assert.Equal(t, "get_user", mod.Queries[0].Name.Value)
	assert.Equal(t, "list_users", mod.Queries[1].Name.Value)
}

func TestParseFileExplicitStructNames(t *testing.T) {
	contents := `--: name: get_user
--: row: UserRow
--: params: UserParams
SELECT id FROM users WHERE id = $1;
`
	mod, err := queryfile.ParseFile("m.sql", contents)
	require.NoError(t, err)
	q := mod.Queries[0]
	require.NotNil(t, q.NamedReturnStruct)
	require.NotNil(t, q.NamedParamStruct)
	assert.Equal(t, "UserRow", q.NamedReturnStruct.Value)
	assert.Equal(t, "UserParams", q.NamedParamStruct.Value)
}

func TestParseFileNullableByName(t *testing.T) {
	contents := `--: name: get_user
--! nullable: bio
SELECT id, bio FROM users;
`
	mod, err := queryfile.ParseFile("m.sql", contents)
	require.NoError(t, err)
	nc := mod.Queries[0].NullableColumns[0].Value
	assert.Equal(t, query.NullableColumnName, nc.Kind)
	assert.Equal(t, "bio", nc.Name)
}

func TestParseFileUnterminatedStatementErrors(t *testing.T) {
	contents := `--: name: get_user
SELECT id FROM users
`
	_, err := queryfile.ParseFile("m.sql", contents)
	require.Error(t, err)
	var parseErr *queryfile.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseFileSQLOutsideQueryErrors(t *testing.T) {
	contents := `SELECT 1;
`
	_, err := queryfile.ParseFile("m.sql", contents)
	require.Error(t, err)
}
