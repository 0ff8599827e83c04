// Package prepare implements the Module Preparer and Per-Query
// Preparer (spec §4.C/§4.D): given parsed queries and a live driver
// connection, it produces the validated, deduplicated IR.
package prepare

import (
	"context"
	"fmt"

	"github.com/querybind/querybind/internal/driver"
	"github.com/querybind/querybind/internal/errs"
	"github.com/querybind/querybind/internal/ir"
	"github.com/querybind/querybind/internal/location"
	"github.com/querybind/querybind/internal/query"
	"github.com/querybind/querybind/internal/types"
)

// resolvedNullable is a nullable-column annotation after resolving
// its Index/Named form down to the column name it refers to.
type resolvedNullable struct {
	pos  location.Pos
	name string
}

// prepareQuery implements spec §4.D's nine-step algorithm. It mutates
// registrar and moduleIR; its only side effect beyond that is
// preparing the statement on the server.
func prepareQuery(ctx context.Context, drv driver.Driver, moduleIR *ir.PreparedModule, registrar *types.Registrar, q query.Query, modulePath string) error {
	// Step 1: prepare the SQL via the driver.
	stmt, err := drv.Prepare(ctx, q.SQLStr)
	if err != nil {
		return errs.NewDb(q.Name.Value, q.Line, modulePath, err.Error())
	}

	// Step 2: parameter resolution. If the lengths differ the driver
	// was required to have rejected the statement in step 1.
	stmtParams := stmt.Params()
	params := make([]ir.Field, 0, len(q.Params))
	for i, name := range q.Params {
		if i >= len(stmtParams) {
			break
		}
		ty, err := registrar.Register(stmtParams[i])
		if err != nil {
			return asPipelineError(err, q, modulePath)
		}
		params = append(params, ir.Field{
			Name:            name.Value,
			Type:            ty,
			IsNullable:      false,
			IsInnerNullable: false,
		})
	}

	// Step 3: column duplicate check.
	cols := stmt.Columns()
	if dup, ok := firstDuplicate(cols, func(c driver.Column) string { return c.Name }); ok {
		return errs.New(q.Name.Value, q.Line, modulePath, &errs.ColumnNameAlreadyTaken{Name: dup.Name})
	}

	// Step 4: nullable annotation resolution.
	var resolved []resolvedNullable
	for _, ann := range q.NullableColumns {
		var name string
		switch ann.Value.Kind {
		case query.NullableColumnIndex:
			idx := ann.Value.Index
			if idx < 1 || idx > len(cols) {
				return errs.New(q.Name.Value, q.Line, modulePath, &errs.InvalidNullableColumnIndex{
					Index: idx, MaxColIndex: len(cols), Pos: ann.Pos,
				})
			}
			name = cols[idx-1].Name
		case query.NullableColumnName:
			name = ann.Value.Name
			found := false
			for _, c := range cols {
				if c.Name == name {
					found = true
					break
				}
			}
			if !found {
				return errs.New(q.Name.Value, q.Line, modulePath, &errs.InvalidNullableColumnName{Name: name, Pos: ann.Pos})
			}
		}

		alreadySeen := false
		for _, r := range resolved {
			if r.name == name {
				alreadySeen = true
				break
			}
		}
		if alreadySeen {
			return errs.New(q.Name.Value, q.Line, modulePath, &errs.ColumnAlreadyNullable{Name: name, Pos: ann.Pos})
		}
		resolved = append(resolved, resolvedNullable{pos: ann.Pos, name: name})
	}
	// Final sweep: distinct annotations (one by index, one by name)
	// may still resolve to the same column.
	if dup, ok := firstDuplicate(resolved, func(r resolvedNullable) string { return r.name }); ok {
		return errs.New(q.Name.Value, q.Line, modulePath, &errs.ColumnAlreadyNullable{Name: dup.name, Pos: dup.pos})
	}

	// Step 5: column field construction.
	rowFields := make([]ir.Field, 0, len(cols))
	for _, col := range cols {
		ty, err := registrar.Register(col.Type)
		if err != nil {
			return asPipelineError(err, q, modulePath)
		}
		isNullable := false
		for _, r := range resolved {
			if r.name == col.Name {
				isNullable = true
				break
			}
		}
		rowFields = append(rowFields, ir.Field{
			Name:            col.Name,
			Type:            ty,
			IsNullable:      isNullable,
			IsInnerNullable: false,
		})
	}

	// Step 6: name derivation.
	rowStructName := q.NamedReturnStruct
	if rowStructName == nil {
		v := location.Map(q.Name, defaultRowStructName)
		rowStructName = &v
	}
	paramStructName := q.NamedParamStruct
	if paramStructName == nil {
		v := location.Map(q.Name, defaultParamStructName)
		paramStructName = &v
	}

	// Step 7: row insertion.
	var rowRef *ir.RowRef
	if len(rowFields) > 0 {
		idx, perm, err := moduleIR.AddRow(rowStructName.Value, rowFields)
		if err != nil {
			return wrapIRError(err, q.Name.Value, q.Line, modulePath, rowStructName.Pos)
		}
		rowRef = &ir.RowRef{RowIndex: idx, Perm: perm}
	}

	// Step 8: query insertion.
	queryIdx, err := moduleIR.AddQuery(q.Name.Value, params, rowRef, q.SQLStr)
	if err != nil {
		return wrapIRError(err, q.Name.Value, q.Line, modulePath, q.Name.Pos)
	}

	// Step 9: params insertion (skip if the parameter list is empty).
	if len(params) > 0 {
		if _, err := moduleIR.AddParams(paramStructName.Value, queryIdx); err != nil {
			return wrapIRError(err, q.Name.Value, q.Line, modulePath, paramStructName.Pos)
		}
	}

	return nil
}

// asPipelineError wraps a registrar error with the query's location.
func asPipelineError(err error, q query.Query, modulePath string) error {
	if ute, ok := err.(*types.UnsupportedPostgresTypeError); ok {
		return errs.NewPostgresType(q.Name.Value, q.Line, modulePath, ute)
	}
	return fmt.Errorf("unexpected registrar error: %w", err)
}

// wrapIRError converts one of ir's structural-mismatch errors into
// the located Validation variant, attaching the position available at
// the call site (the Located name ir's own mutators don't see).
func wrapIRError(err error, queryName string, queryLine int, modulePath string, pos location.Pos) error {
	switch e := err.(type) {
	case *ir.RowFieldsMismatchError:
		return errs.New(queryName, queryLine, modulePath, &errs.NamedRowInvalidFields{
			Name: e.Name, Expected: e.Expected, Actual: e.Actual, Pos: pos,
		})
	case *ir.ParamsFieldsMismatchError:
		return errs.New(queryName, queryLine, modulePath, &errs.NamedParamStructInvalidFields{
			Name: e.Name, Expected: e.Expected, Actual: e.Actual, Pos: pos,
		})
	case *ir.QueryNameTakenError:
		return errs.New(queryName, queryLine, modulePath, &errs.QueryNameAlreadyUsed{Name: e.Name, Pos: pos})
	default:
		return fmt.Errorf("unexpected ir error: %w", err)
	}
}
