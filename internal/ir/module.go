package ir

import "github.com/querybind/querybind/internal/ir/orderedmap"

// PreparedModule is spec §3's PreparedModule: the insertion-ordered
// maps of a single query file's worth of prepared queries, rows, and
// params. Map insertion order is the observation order during
// preparation (invariant 4); the renderer relies on it.
type PreparedModule struct {
	Name    string
	Queries *orderedmap.Map[PreparedQuery]
	Params  *orderedmap.Map[PreparedParams]
	Rows    *orderedmap.Map[PreparedRow]
}

// NewModule returns an empty PreparedModule with the given name.
func NewModule(name string) *PreparedModule {
	return &PreparedModule{
		Name:    name,
		Queries: orderedmap.New[PreparedQuery](),
		Params:  orderedmap.New[PreparedParams](),
		Rows:    orderedmap.New[PreparedRow](),
	}
}

// AddRow inserts or reconciles a row under name. fields must be
// non-empty. Mirrors the original prepare_queries.rs's pseudo-cyclic
// add_row: on a new name it inserts the canonical (sorted) row and
// falls through to the occupied branch so the permutation is computed
// in exactly one place (spec §9); a flatter inline version would be
// equally correct, this one just reuses the occupied-branch code.
func (m *PreparedModule) AddRow(name string, fields []Field) (int, []int, error) {
	if len(fields) == 0 {
		panic("ir: AddRow called with no fields")
	}
	if idx, ok := m.Rows.GetIndex(name); ok {
		prev := m.Rows.At(idx)
		if !fieldsEqualAsMultiset(prev.Fields, fields) {
			return 0, nil, &RowFieldsMismatchError{Name: name, Expected: prev.Fields, Actual: fields}
		}
		perm := make([]int, len(prev.Fields))
		for i, pf := range prev.Fields {
			perm[i] = indexOfField(fields, pf)
		}
		return idx, perm, nil
	}

	row := PreparedRow{Name: name, Fields: sortedFields(fields), IsCopy: allCopy(fields)}
	m.Rows.Insert(name, row)
	return m.AddRow(name, fields)
}

// indexOfField returns the position of a field structurally equal to
// target within fields. Per spec §9, field names are unique within a
// correct row, so the first match is the only match.
func indexOfField(fields []Field, target Field) int {
	for i, f := range fields {
		if f.Equal(target) {
			return i
		}
	}
	panic("ir: field vanished between AddRow's insert and reconciliation")
}

// AddQuery inserts a new query under name. Name collisions within a
// module are rejected (QueryNameAlreadyUsed).
func (m *PreparedModule) AddQuery(name string, params []Field, row *RowRef, sql string) (int, error) {
	if _, ok := m.Queries.GetIndex(name); ok {
		return 0, &QueryNameTakenError{Name: name}
	}
	idx := m.Queries.Insert(name, PreparedQuery{Name: name, Params: params, Row: row, SQL: sql})
	return idx, nil
}

// AddParams inserts or reconciles a params struct under name,
// appending queryIdx to its Queries list. Callers must not invoke
// this for queries with an empty parameter list.
func (m *PreparedModule) AddParams(name string, queryIdx int) (int, error) {
	query := m.Queries.At(queryIdx)
	if len(query.Params) == 0 {
		panic("ir: AddParams called for a query with no params")
	}

	if idx, ok := m.Params.GetIndex(name); ok {
		prev := m.Params.At(idx)
		if !fieldsEqualAsMultiset(prev.Fields, query.Params) {
			return 0, &ParamsFieldsMismatchError{Name: name, Expected: prev.Fields, Actual: query.Params}
		}
		prev.Queries = append(prev.Queries, queryIdx)
		m.Params.Set(idx, prev)
		return idx, nil
	}

	idx := m.Params.Insert(name, PreparedParams{
		Name:    name,
		Fields:  sortedFields(query.Params),
		Queries: []int{queryIdx},
	})
	return idx, nil
}
