package ir

// PreparedParams is the named, canonicalized struct describing a
// query's inputs, shared across queries with identical parameter
// shapes (spec §3).
type PreparedParams struct {
	Name    string
	Fields  []Field
	Queries []int // indices into the owning PreparedModule's queries table
}
