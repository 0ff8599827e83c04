// Package ir is the validated, deduplicated intermediate
// representation the preparer (internal/prepare) builds and the
// renderer consumes: PreparedRow/Params/Query/Module plus the three
// dedup tables that enforce spec §3's invariants.
package ir

import "github.com/querybind/querybind/internal/types"

// Field is a row or params column/parameter, spec §3.
type Field struct {
	Name            string
	Type            *types.CoreType
	IsNullable      bool
	IsInnerNullable bool // meaningful only when Type.IsArray()
}

// Equal reports structural equality (spec §3: all four attributes
// match).
func (f Field) Equal(other Field) bool {
	return f.Name == other.Name &&
		f.IsNullable == other.IsNullable &&
		f.IsInnerNullable == other.IsInnerNullable &&
		f.Type.StructurallyEqual(other.Type)
}

// fieldsEqualAsMultiset reports whether a and b contain the same
// fields irrespective of order. Per spec §9, field names are unique
// within any correct row/params entry, so a simple "every field in a
// has a match in b, and the lengths agree" check suffices — no
// multiplicity bookkeeping is needed.
func fieldsEqualAsMultiset(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for _, fa := range a {
		found := false
		for _, fb := range b {
			if fa.Equal(fb) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
