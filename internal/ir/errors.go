package ir

import "fmt"

// RowFieldsMismatchError is returned by Module.AddRow when a
// previously registered row under the same name has different fields
// than the ones being inserted now (spec §4.D step 7,
// NamedRowInvalidFields).
type RowFieldsMismatchError struct {
	Name             string
	Expected, Actual []Field
}

func (e *RowFieldsMismatchError) Error() string {
	return fmt.Sprintf("row %q previously had different fields", e.Name)
}

// ParamsFieldsMismatchError is returned by Module.AddParams on the
// same condition for a named params struct (NamedParamStructInvalidFields).
type ParamsFieldsMismatchError struct {
	Name             string
	Expected, Actual []Field
}

func (e *ParamsFieldsMismatchError) Error() string {
	return fmt.Sprintf("params struct %q previously had different fields", e.Name)
}

// QueryNameTakenError is returned by Module.AddQuery when the query
// name already names another query in the module
// (QueryNameAlreadyUsed).
type QueryNameTakenError struct {
	Name string
}

func (e *QueryNameTakenError) Error() string {
	return fmt.Sprintf("query name %q already used", e.Name)
}
