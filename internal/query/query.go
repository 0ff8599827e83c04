// Package query holds the parsed, immutable record of a single query
// as produced by the query file parser: names, SQL text, declared
// parameter names, and nullable-column annotations. It carries no
// behavior beyond what the per-query preparer reads.
package query

import "github.com/querybind/querybind/internal/location"

// NullableColumnKind distinguishes the two ways a nullable annotation
// can reference a returned column.
type NullableColumnKind int

const (
	// NullableColumnIndex addresses the column by its 1-based
	// position in the returned column list.
	NullableColumnIndex NullableColumnKind = iota
	// NullableColumnName addresses the column by its returned name.
	NullableColumnName
)

// NullableColumn is the closed sum Index(n) | Named(name).
type NullableColumn struct {
	Kind  NullableColumnKind
	Index int    // meaningful when Kind == NullableColumnIndex, 1-based
	Name  string // meaningful when Kind == NullableColumnName
}

// Index builds an Index(n) nullable-column annotation.
func Index(n int) NullableColumn {
	return NullableColumn{Kind: NullableColumnIndex, Index: n}
}

// Named builds a Named(name) nullable-column annotation.
func Named(name string) NullableColumn {
	return NullableColumn{Kind: NullableColumnName, Name: name}
}

// Query is a single named SQL statement together with the
// annotations the query file declared for it.
type Query struct {
	Name             location.Located[string]
	SQLStr           string
	Params           []location.Located[string]
	NullableColumns  []location.Located[NullableColumn]
	NamedReturnStruct *location.Located[string] // nil if not declared
	NamedParamStruct  *location.Located[string] // nil if not declared
	Line             int // 1-based line the query starts on
}

// Module is one query file's worth of parsed queries, addressed by a
// name derived from the file it was read from.
type Module struct {
	Name    string
	Path    string
	Queries []Query
}
