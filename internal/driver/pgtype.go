package driver

// SimpleType is a ready-to-use PgType implementation covering every
// Kind; concrete drivers and test fakes build PgType trees out of it
// instead of hand-rolling one interface implementation each.
type SimpleType struct {
	SchemaName string
	TypeName   string
	TypeKind   Kind

	ElementType PgType          // KindArray
	InnerType   PgType          // KindDomain
	VariantList []string        // KindEnum
	FieldList   []CompositeAttr // KindComposite
}

func (t *SimpleType) Schema() string          { return t.SchemaName }
func (t *SimpleType) Name() string            { return t.TypeName }
func (t *SimpleType) Kind() Kind              { return t.TypeKind }
func (t *SimpleType) Element() PgType         { return t.ElementType }
func (t *SimpleType) Inner() PgType           { return t.InnerType }
func (t *SimpleType) Variants() []string      { return t.VariantList }
func (t *SimpleType) Fields() []CompositeAttr { return t.FieldList }

// Primitive builds a primitive (non-recursive) PgType, e.g. "int4" in
// schema "pg_catalog".
func Primitive(schema, name string) *SimpleType {
	return &SimpleType{SchemaName: schema, TypeName: name, TypeKind: KindPrimitive}
}

// ArrayOf builds an array PgType wrapping element.
func ArrayOf(schema, name string, element PgType) *SimpleType {
	return &SimpleType{SchemaName: schema, TypeName: name, TypeKind: KindArray, ElementType: element}
}

// DomainOf builds a domain PgType wrapping inner.
func DomainOf(schema, name string, inner PgType) *SimpleType {
	return &SimpleType{SchemaName: schema, TypeName: name, TypeKind: KindDomain, InnerType: inner}
}

// EnumOf builds an enum PgType with the given ordered variants.
func EnumOf(schema, name string, variants []string) *SimpleType {
	return &SimpleType{SchemaName: schema, TypeName: name, TypeKind: KindEnum, VariantList: variants}
}

// CompositeOf builds a composite PgType with the given ordered fields.
func CompositeOf(schema, name string, fields []CompositeAttr) *SimpleType {
	return &SimpleType{SchemaName: schema, TypeName: name, TypeKind: KindComposite, FieldList: fields}
}
