// Package types implements the Type Registrar (spec §4.A): it interns
// the server's type system into a closed universe of CoreTypes,
// recursing through composites and domains, and memoizes on
// (schema, name) so every Custom type is shared by reference equality
// across the IR.
package types

// Kind distinguishes the shapes a Custom CoreType can take.
type Kind int

const (
	KindEnum Kind = iota
	KindDomain
	KindComposite
)

// EnumKind carries an enum's ordered variant names.
type EnumKind struct {
	Variants []string
}

// DomainKind wraps the domain's base type.
type DomainKind struct {
	Inner *CoreType
}

// CompositeField is one named, typed field of a composite type.
type CompositeField struct {
	Name string
	Type *CoreType
}

// CompositeKind carries a composite's ordered fields.
type CompositeKind struct {
	Fields []CompositeField
}

// CoreType is the closed sum spec §3 defines: Simple{...} |
// Custom{..., kind: Enum|Domain|Composite}. Array is represented as a
// CoreType whose IsArray is true and whose Element holds the element
// type, keeping the type a flat struct rather than a second sum
// (simpler to compare, share, and print than a boxed interface tree).
type CoreType struct {
	// Schema and Name form the interning key for Custom types; both
	// are empty for Array wrappers, whose identity is Element's.
	Schema string
	Name   string

	// IsCustom distinguishes Simple from Custom. A Simple type's
	// NativeName is the Go type used to represent it (e.g. "string",
	// "int32", "uuid.UUID").
	IsCustom   bool
	NativeName string

	// CustomKind is meaningful only when IsCustom is true.
	CustomKind Kind
	Enum       EnumKind
	Domain     DomainKind
	Composite  CompositeKind

	// IsArrayType marks this CoreType as Array{Element}. No other
	// field besides Element and IsCopy is meaningful when true.
	IsArrayType bool
	Element     *CoreType

	// IsCopy mirrors spec's is_copy bit: true for types whose native
	// representation can be trivially duplicated without ownership
	// transfer.
	IsCopy bool
}

// IsArray reports whether this CoreType is the Array{Element} variant.
func (t *CoreType) IsArray() bool { return t.IsArrayType }

// StructurallyEqual reports whether two CoreTypes describe the same
// shape. Custom types compare by their interning key (schema, name)
// since the registrar guarantees they are shared by reference; Simple
// and Array types compare structurally since they are rebuilt freely.
func (t *CoreType) StructurallyEqual(other *CoreType) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.IsCustom != other.IsCustom {
		return false
	}
	if t.IsCustom {
		return t.Schema == other.Schema && t.Name == other.Name
	}
	if t.IsArrayType != other.IsArrayType {
		return false
	}
	if t.IsArrayType {
		return t.Element.StructurallyEqual(other.Element)
	}
	return t.NativeName == other.NativeName
}
