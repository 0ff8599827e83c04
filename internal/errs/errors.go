// Package errs is the Error Taxonomy (spec §4.F): a single located,
// typed Error wraps every pipeline failure, rendered with file/line
// context for diagnostics and regression snapshots (spec §7/§8).
package errs

import (
	"fmt"

	"github.com/querybind/querybind/internal/ir"
	"github.com/querybind/querybind/internal/location"
	"github.com/querybind/querybind/internal/types"
)

// Error is the one error type the pipeline ever returns.
type Error struct {
	QueryName      string
	QueryStartLine *int // nil when the error has no associated query line (never true for Db, Validation errors)
	Path           string
	Err            ErrorVariant
}

func (e *Error) Error() string { return e.Render() }

func (e *Error) Unwrap() error { return e.Err }

// Render formats the error per spec §4.F/§7's two templates.
func (e *Error) Render() string {
	lineSuffix := ""
	if e.QueryStartLine != nil {
		lineSuffix = fmt.Sprintf(", line: %d", *e.QueryStartLine)
	}
	if db, ok := e.Err.(*DbVariant); ok {
		return fmt.Sprintf("Error while preparing query %q [file: %q%s] (%s)",
			e.QueryName, e.Path, lineSuffix, db.Message)
	}
	return fmt.Sprintf("Error while preparing query %q [file: %q%s]:\n%s",
		e.QueryName, e.Path, lineSuffix, e.Err.Error())
}

// ErrorVariant is the closed sum: Db | PostgresType | Validation.
type ErrorVariant interface {
	error
	isErrorVariant()
}

// DbVariant wraps the driver's verbatim error message (spec §4.D
// step 1).
type DbVariant struct {
	Message string
}

func (v *DbVariant) Error() string   { return v.Message }
func (v *DbVariant) isErrorVariant() {}

// PostgresTypeVariant wraps a registrar UnsupportedPostgresTypeError.
type PostgresTypeVariant struct {
	Cause *types.UnsupportedPostgresTypeError
}

func (v *PostgresTypeVariant) Error() string   { return v.Cause.Error() }
func (v *PostgresTypeVariant) isErrorVariant() {}
func (v *PostgresTypeVariant) Unwrap() error   { return v.Cause }

// ValidationVariant wraps one of the Validation subcases below.
type ValidationVariant struct {
	Cause ValidationError
}

func (v *ValidationVariant) Error() string   { return v.Cause.Error() }
func (v *ValidationVariant) isErrorVariant() {}
func (v *ValidationVariant) Unwrap() error   { return v.Cause }

// ValidationError is the closed sum of structural validation failures
// spec §4.F enumerates.
type ValidationError interface {
	error
	isValidationError()
}

// QueryNameAlreadyUsed — spec §4.C/§4.D step 8.
type QueryNameAlreadyUsed struct {
	Name string
	Pos  location.Pos
}

func (e *QueryNameAlreadyUsed) Error() string {
	return fmt.Sprintf("query name %q is already used in this module", e.Name)
}
func (e *QueryNameAlreadyUsed) isValidationError() {}

// ColumnNameAlreadyTaken — spec §4.D step 3.
type ColumnNameAlreadyTaken struct {
	Name string
}

func (e *ColumnNameAlreadyTaken) Error() string {
	return fmt.Sprintf("column name %q is already taken by a previous column; consider using an `AS` clause to disambiguate", e.Name)
}
func (e *ColumnNameAlreadyTaken) isValidationError() {}

// InvalidNullableColumnIndex — spec §4.D step 4.
type InvalidNullableColumnIndex struct {
	Index, MaxColIndex int
	Pos                location.Pos
}

func (e *InvalidNullableColumnIndex) Error() string {
	return fmt.Sprintf("invalid nullable column index %d: the query returns only %d column(s)", e.Index, e.MaxColIndex)
}
func (e *InvalidNullableColumnIndex) isValidationError() {}

// InvalidNullableColumnName — spec §4.D step 4.
type InvalidNullableColumnName struct {
	Name string
	Pos  location.Pos
}

func (e *InvalidNullableColumnName) Error() string {
	return fmt.Sprintf("invalid nullable column name %q: no returned column has this name", e.Name)
}
func (e *InvalidNullableColumnName) isValidationError() {}

// ColumnAlreadyNullable — spec §4.D step 4.
type ColumnAlreadyNullable struct {
	Name string
	Pos  location.Pos
}

func (e *ColumnAlreadyNullable) Error() string {
	return fmt.Sprintf("column %q is already marked as nullable", e.Name)
}
func (e *ColumnAlreadyNullable) isValidationError() {}

// NamedRowInvalidFields — spec §4.D step 7.
type NamedRowInvalidFields struct {
	Name             string
	Expected, Actual []ir.Field
	Pos              location.Pos
}

func (e *NamedRowInvalidFields) Error() string {
	return fmt.Sprintf("returned row struct %q was previously declared with different fields:\nexpected: %s\nactual:   %s",
		e.Name, formatFields(e.Expected), formatFields(e.Actual))
}
func (e *NamedRowInvalidFields) isValidationError() {}

// NamedParamStructInvalidFields — spec §4.D step 9.
type NamedParamStructInvalidFields struct {
	Name             string
	Expected, Actual []ir.Field
	Pos              location.Pos
}

func (e *NamedParamStructInvalidFields) Error() string {
	return fmt.Sprintf("params struct %q was previously declared with different fields:\nexpected: %s\nactual:   %s",
		e.Name, formatFields(e.Expected), formatFields(e.Actual))
}
func (e *NamedParamStructInvalidFields) isValidationError() {}

// formatFields renders a field list deterministically for the
// dynamic structural errors (spec §9: "the contract is that field
// names, types, and nullability flags are surfaced in a deterministic
// textual form").
func formatFields(fields []ir.Field) string {
	s := "["
	for i, f := range fields {
		if i > 0 {
			s += ", "
		}
		s += f.Name + " " + nativeTypeName(f.Type)
		if f.IsNullable {
			s += "?"
		}
	}
	return s + "]"
}

func nativeTypeName(t *types.CoreType) string {
	switch {
	case t.IsArray():
		return nativeTypeName(t.Element) + "[]"
	case t.IsCustom:
		return t.Name
	default:
		return t.NativeName
	}
}
