package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybind/querybind/internal/ir"
	"github.com/querybind/querybind/internal/types"
)

func intType() *types.CoreType {
	return &types.CoreType{NativeName: "int32", IsCopy: true}
}

func strType() *types.CoreType {
	return &types.CoreType{NativeName: "string"}
}

func TestAddRowSortsFieldsByName(t *testing.T) {
	mod := ir.NewModule("m")
	idx, perm, err := mod.AddRow("Row", []ir.Field{
		{Name: "zeta", Type: intType()},
		{Name: "alpha", Type: strType()},
	})
	require.NoError(t, err)
	row := mod.Rows.At(idx)
	require.Len(t, row.Fields, 2)
	assert.Equal(t, "alpha", row.Fields[0].Name)
	assert.Equal(t, "zeta", row.Fields[1].Name)

	// perm maps the row's sorted order back to the declared order: the
	// row's 0th field (alpha) was declared 2nd (index 1).
	assert.Equal(t, []int{1, 0}, perm)
}

func TestAddRowDedupsMatchingFields(t *testing.T) {
	mod := ir.NewModule("m")
	idx1, _, err := mod.AddRow("Row", []ir.Field{{Name: "id", Type: intType()}})
	require.NoError(t, err)
	idx2, _, err := mod.AddRow("Row", []ir.Field{{Name: "id", Type: intType()}})
	require.NoError(t, err)
	assert.Equal(t, idx1, idx2)
	assert.Equal(t, 1, mod.Rows.Len())
}

func TestAddRowRejectsMismatchedFields(t *testing.T) {
	mod := ir.NewModule("m")
	_, _, err := mod.AddRow("Row", []ir.Field{{Name: "id", Type: intType()}})
	require.NoError(t, err)
	_, _, err = mod.AddRow("Row", []ir.Field{{Name: "id", Type: strType()}})
	require.Error(t, err)
	var mismatch *ir.RowFieldsMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "Row", mismatch.Name)
}

func TestAddParamsRejectsEmptyParamsQuery(t *testing.T) {
	mod := ir.NewModule("m")
	queryIdx, err := mod.AddQuery("q", nil, nil, "SELECT 1;")
	require.NoError(t, err)
	assert.Panics(t, func() { mod.AddParams("QParams", queryIdx) })
}

func TestAddQueryRejectsDuplicateName(t *testing.T) {
	mod := ir.NewModule("m")
	_, err := mod.AddQuery("q", nil, nil, "SELECT 1;")
	require.NoError(t, err)
	_, err = mod.AddQuery("q", nil, nil, "SELECT 2;")
	require.Error(t, err)
	var taken *ir.QueryNameTakenError
	require.ErrorAs(t, err, &taken)
}

func TestAddParamsDedupsAndAccumulatesQueries(t *testing.T) {
	mod := ir.NewModule("m")
	q1, err := mod.AddQuery("q1", []ir.Field{{Name: "id", Type: intType()}}, nil, "SELECT 1;")
	require.NoError(t, err)
	q2, err := mod.AddQuery("q2", []ir.Field{{Name: "id", Type: intType()}}, nil, "SELECT 2;")
	require.NoError(t, err)

	idx1, err := mod.AddParams("SharedParams", q1)
	require.NoError(t, err)
	idx2, err := mod.AddParams("SharedParams", q2)
	require.NoError(t, err)
	assert.Equal(t, idx1, idx2)

	shared := mod.Params.At(idx1)
	assert.Equal(t, []int{q1, q2}, shared.Queries)
}
