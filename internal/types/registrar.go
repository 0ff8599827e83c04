package types

import (
	"fmt"

	atlaspg "ariga.io/atlas/sql/postgres"
	"github.com/querybind/querybind/internal/driver"
)

// UnsupportedPostgresTypeError is raised by the registrar when the
// server reports a type Kind it does not recognize (spec §4.A).
type UnsupportedPostgresTypeError struct {
	PgName string
}

func (e *UnsupportedPostgresTypeError) Error() string {
	return fmt.Sprintf("unsupported postgres type %q", e.PgName)
}

type typeKey struct{ schema, name string }

// primitiveEntry is one row of the fixed Simple-type lookup table.
type primitiveEntry struct {
	native string
	isCopy bool
}

// primitives maps a (schema, name) key straight from pg_catalog.pg_type
// to its Go native representation and is_copy bit. pg_catalog is
// always the schema for these; qualifying the key by schema keeps the
// table consistent with every other Custom-type key in the registrar.
var primitives = map[typeKey]primitiveEntry{
	{"pg_catalog", atlaspg.TypeInt2}:      {"int16", true},
	{"pg_catalog", atlaspg.TypeInt4}:      {"int32", true},
	{"pg_catalog", atlaspg.TypeInt8}:      {"int64", true},
	{"pg_catalog", atlaspg.TypeFloat4}:    {"float32", true},
	{"pg_catalog", atlaspg.TypeFloat8}:    {"float64", true},
	{"pg_catalog", atlaspg.TypeNumeric}:   {"string", false},
	{"pg_catalog", atlaspg.TypeBool}:      {"bool", true},
	{"pg_catalog", atlaspg.TypeText}:      {"string", false},
	{"pg_catalog", atlaspg.TypeVarChar}:   {"string", false},
	{"pg_catalog", atlaspg.TypeBytea}:     {"[]byte", false},
	{"pg_catalog", atlaspg.TypeDate}:      {"time.Time", true},
	{"pg_catalog", atlaspg.TypeTime}:      {"time.Time", true},
	{"pg_catalog", atlaspg.TypeTimestamp}: {"time.Time", true},
	{"pg_catalog", atlaspg.TypeTimestampTZ}: {"time.Time", true},
	{"pg_catalog", atlaspg.TypeJSON}:      {"[]byte", false},
	{"pg_catalog", atlaspg.TypeJSONB}:     {"[]byte", false},
	{"pg_catalog", atlaspg.TypeUUID}:      {"uuid.UUID", true},
}

// NativeImportPaths maps a Simple type's NativeName to the import
// path the renderer must add alongside it; NativeNames absent here
// (string, []byte, the numeric kinds, bool) need no import.
var NativeImportPaths = map[string]string{
	"time.Time": "time",
	"uuid.UUID": "github.com/google/uuid",
}

// Registrar interns server types into a closed universe of CoreTypes,
// keyed by (schema, name), per spec §4.A. It is mutated by exactly one
// actor in linear order (spec §5); it holds no locks.
type Registrar struct {
	memo  map[typeKey]*CoreType
	order []typeKey // insertion order, for deterministic iteration (spec invariant 5)
}

// NewRegistrar returns an empty registrar.
func NewRegistrar() *Registrar {
	return &Registrar{memo: make(map[typeKey]*CoreType)}
}

// Get returns the CoreType previously interned for pgType, if any,
// without registering it.
func (r *Registrar) Get(pgType driver.PgType) *CoreType {
	return r.memo[typeKey{pgType.Schema(), pgType.Name()}]
}

// CustomTypesInOrder returns every interned Custom CoreType (Enum,
// Domain, or Composite) in the order it was first registered. Simple
// and Array types are omitted: they have no standalone declaration
// for a renderer to emit.
func (r *Registrar) CustomTypesInOrder() []*CoreType {
	out := make([]*CoreType, 0, len(r.order))
	for _, key := range r.order {
		t := r.memo[key]
		if t.IsCustom {
			out = append(out, t)
		}
	}
	return out
}

// intern records t under key in both the lookup map and the insertion
// order slice.
func (r *Registrar) intern(key typeKey, t *CoreType) {
	r.memo[key] = t
	r.order = append(r.order, key)
}

// Register interns pgType into the closed CoreType universe,
// recursing through array elements, domain inner types, and
// composite fields. It is idempotent: calling it twice with types
// sharing a (schema, name) key returns the identical *CoreType.
//
// Recursion terminates because the server's type graph is a DAG keyed
// by (schema, name) and the memo table short-circuits on revisit
// (spec §4.A); no cycle detection is implemented, matching spec §9's
// assumption that the server disallows recursive composites.
func (r *Registrar) Register(pgType driver.PgType) (*CoreType, error) {
	key := typeKey{pgType.Schema(), pgType.Name()}
	if t, ok := r.memo[key]; ok {
		return t, nil
	}

	switch pgType.Kind() {
	case driver.KindPrimitive:
		entry, ok := primitives[key]
		if !ok {
			return nil, &UnsupportedPostgresTypeError{PgName: pgType.Name()}
		}
		t := &CoreType{Schema: key.schema, Name: key.name, NativeName: entry.native, IsCopy: entry.isCopy}
		r.intern(key, t)
		return t, nil

	case driver.KindArray:
		elem, err := r.Register(pgType.Element())
		if err != nil {
			return nil, err
		}
		t := &CoreType{IsArrayType: true, Element: elem, IsCopy: false}
		r.intern(key, t)
		return t, nil

	case driver.KindDomain:
		inner, err := r.Register(pgType.Inner())
		if err != nil {
			return nil, err
		}
		t := &CoreType{
			Schema: key.schema, Name: key.name, IsCustom: true,
			CustomKind: KindDomain, Domain: DomainKind{Inner: inner},
			IsCopy: inner.IsCopy,
		}
		r.intern(key, t)
		return t, nil

	case driver.KindEnum:
		variants := append([]string(nil), pgType.Variants()...)
		t := &CoreType{
			Schema: key.schema, Name: key.name, IsCustom: true,
			CustomKind: KindEnum, Enum: EnumKind{Variants: variants},
			IsCopy: true,
		}
		r.intern(key, t)
		return t, nil

	case driver.KindComposite:
		// Pre-register so a self-referential lookup (not expected
		// per spec §9, but cheap to guard) finds a placeholder
		// instead of recursing forever; replaced below once fields
		// are known.
		placeholder := &CoreType{Schema: key.schema, Name: key.name, IsCustom: true, CustomKind: KindComposite}
		r.intern(key, placeholder)

		attrs := pgType.Fields()
		fields := make([]CompositeField, 0, len(attrs))
		isCopy := true
		for _, attr := range attrs {
			ft, err := r.Register(attr.Type)
			if err != nil {
				// No cleanup needed: any error aborts the entire run
				// fail-fast (spec §7), so a half-registered composite
				// is never observed downstream.
				return nil, err
			}
			fields = append(fields, CompositeField{Name: attr.Name, Type: ft})
			isCopy = isCopy && ft.IsCopy
		}
		placeholder.Composite = CompositeKind{Fields: fields}
		placeholder.IsCopy = isCopy
		return placeholder, nil

	default:
		return nil, &UnsupportedPostgresTypeError{PgName: pgType.Name()}
	}
}
