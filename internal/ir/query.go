package ir

// RowRef locates the PreparedRow a query returns and how to permute
// its declared column order into the row's canonical sorted order.
type RowRef struct {
	RowIndex int
	// Perm maps the row's canonical sorted field order to the
	// query's declared (SQL) column order: rows[RowIndex].Fields[i]
	// is structurally equal to the query's Perm[i]-th declared
	// column (spec invariant 2). The generated accessor inverts this
	// to scan declared columns into a struct built in canonical
	// order.
	Perm []int
}

// PreparedQuery is spec §3's PreparedQuery: params in SQL-parameter
// order, an optional row reference, and the embedded SQL text.
type PreparedQuery struct {
	Name   string
	Params []Field // SQL-parameter order, not sorted
	Row    *RowRef // nil if the query returns no rows
	SQL    string
}
