package prepare

import "github.com/go-openapi/inflect"

// upperCamelCase derives a struct name from a snake_case query name,
// per spec §4.D step 6. github.com/go-openapi/inflect is the
// teacher's own direct dependency for this exact transform (see
// ariga-atlas's specutil/types.go: inflect.Camelize(attr.Name)).
func upperCamelCase(s string) string {
	return inflect.Camelize(s)
}

// defaultRowStructName is the struct name used when a query declares
// no explicit named_return_struct.
func defaultRowStructName(queryName string) string {
	return upperCamelCase(queryName)
}

// defaultParamStructName is the struct name used when a query declares
// no explicit named_param_struct.
func defaultParamStructName(queryName string) string {
	return upperCamelCase(queryName) + "Params"
}
