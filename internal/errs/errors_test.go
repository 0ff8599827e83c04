package errs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/querybind/querybind/internal/errs"
	"github.com/querybind/querybind/internal/ir"
	"github.com/querybind/querybind/internal/location"
	"github.com/querybind/querybind/internal/types"
)

func TestRenderDbVariant(t *testing.T) {
	err := errs.NewDb("bad", 3, "queries/m.sql", `syntax error at or near "SQL"`)
	assert.Equal(t,
		`Error while preparing query "bad" [file: "queries/m.sql", line: 3] (syntax error at or near "SQL")`,
		err.Render(),
	)
}

func TestRenderPostgresTypeVariant(t *testing.T) {
	cause := &types.UnsupportedPostgresTypeError{PgName: "box"}
	err := errs.NewPostgresType("q", 5, "queries/m.sql", cause)
	assert.Equal(t,
		"Error while preparing query \"q\" [file: \"queries/m.sql\", line: 5]:\nunsupported postgres type \"box\"",
		err.Render(),
	)
}

func TestRenderQueryNameAlreadyUsed(t *testing.T) {
	err := errs.New("q2", 10, "queries/m.sql", &errs.QueryNameAlreadyUsed{Name: "q2", Pos: location.Pos{Line: 10, Column: 1}})
	assert.Equal(t,
		"Error while preparing query \"q2\" [file: \"queries/m.sql\", line: 10]:\nquery name \"q2\" is already used in this module",
		err.Render(),
	)
}

func TestRenderColumnNameAlreadyTaken(t *testing.T) {
	err := errs.New("q", 1, "m.sql", &errs.ColumnNameAlreadyTaken{Name: "id"})
	assert.Equal(t,
		"Error while preparing query \"q\" [file: \"m.sql\", line: 1]:\ncolumn name \"id\" is already taken by a previous column; consider using an `AS` clause to disambiguate",
		err.Render(),
	)
}

func TestRenderInvalidNullableColumnIndex(t *testing.T) {
	err := errs.New("q", 2, "m.sql", &errs.InvalidNullableColumnIndex{Index: 3, MaxColIndex: 2, Pos: location.Pos{Line: 2, Column: 4}})
	assert.Equal(t,
		"Error while preparing query \"q\" [file: \"m.sql\", line: 2]:\ninvalid nullable column index 3: the query returns only 2 column(s)",
		err.Render(),
	)
}

func TestRenderInvalidNullableColumnName(t *testing.T) {
	err := errs.New("q", 2, "m.sql", &errs.InvalidNullableColumnName{Name: "zzz", Pos: location.Pos{Line: 2, Column: 4}})
	assert.Equal(t,
		"Error while preparing query \"q\" [file: \"m.sql\", line: 2]:\ninvalid nullable column name \"zzz\": no returned column has this name",
		err.Render(),
	)
}

func TestRenderColumnAlreadyNullable(t *testing.T) {
	err := errs.New("q", 2, "m.sql", &errs.ColumnAlreadyNullable{Name: "x", Pos: location.Pos{Line: 2, Column: 4}})
	assert.Equal(t,
		"Error while preparing query \"q\" [file: \"m.sql\", line: 2]:\ncolumn \"x\" is already marked as nullable",
		err.Render(),
	)
}

func TestRenderNamedRowInvalidFields(t *testing.T) {
	expected := []ir.Field{{Name: "a", Type: &types.CoreType{NativeName: "int32"}}}
	actual := []ir.Field{
		{Name: "a", Type: &types.CoreType{NativeName: "int32"}},
		{Name: "b", Type: &types.CoreType{NativeName: "int32"}, IsNullable: true},
	}
	err := errs.New("q2", 4, "m.sql", &errs.NamedRowInvalidFields{Name: "R", Expected: expected, Actual: actual, Pos: location.Pos{Line: 4, Column: 1}})
	assert.Equal(t,
		"Error while preparing query \"q2\" [file: \"m.sql\", line: 4]:\nreturned row struct \"R\" was previously declared with different fields:\nexpected: [a int32]\nactual:   [a int32, b int32?]",
		err.Render(),
	)
}

func TestRenderNamedParamStructInvalidFields(t *testing.T) {
	expected := []ir.Field{{Name: "id", Type: &types.CoreType{NativeName: "int32"}}}
	actual := []ir.Field{{Name: "id", Type: &types.CoreType{NativeName: "string"}}}
	err := errs.New("q2", 4, "m.sql", &errs.NamedParamStructInvalidFields{Name: "P", Expected: expected, Actual: actual, Pos: location.Pos{Line: 4, Column: 1}})
	assert.Equal(t,
		"Error while preparing query \"q2\" [file: \"m.sql\", line: 4]:\nparams struct \"P\" was previously declared with different fields:\nexpected: [id int32]\nactual:   [id string]",
		err.Render(),
	)
}

func TestRenderArrayFieldNativeTypeName(t *testing.T) {
	arrType := &types.CoreType{IsArrayType: true, Element: &types.CoreType{NativeName: "string"}}
	expected := []ir.Field{{Name: "tags", Type: arrType}}
	err := errs.New("q", 1, "m.sql", &errs.NamedRowInvalidFields{Name: "R", Expected: expected, Actual: nil, Pos: location.Pos{}})
	assert.Contains(t, err.Render(), "expected: [tags string[]]")
}
