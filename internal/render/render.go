// Package render implements the renderer (spec §4.J): the last
// external collaborator in the pipeline, consuming the IR the core
// produced and emitting Go source via github.com/dave/jennifer. It
// dictates no IR semantics of its own.
package render

import (
	"fmt"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/querybind/querybind/internal/ir"
	"github.com/querybind/querybind/internal/prepare"
	"github.com/querybind/querybind/internal/types"
)

const runtimePkg = "github.com/querybind/querybind/runtime"

// Options controls output shape; both fields are threaded through
// from the core's configuration unchanged (spec §6).
type Options struct {
	DeriveSer bool // emit msgpack Encode/Decode methods
	IsAsync   bool // thread context.Context/error through query functions
}

var fieldCaser = cases.Title(language.English)

// File renders one *jen.File per PreparedModule in result.Modules,
// plus the shared Custom type declarations from result.Types, keyed
// by module name.
func File(pkg string, result *prepare.Result, opts Options) map[string]*jen.File {
	files := make(map[string]*jen.File)

	typesFile := jen.NewFile(pkg)
	for _, t := range result.Types {
		renderCustomType(typesFile, t)
	}
	files["types"] = typesFile

	for _, mod := range result.Modules {
		f := jen.NewFile(pkg)
		renderModule(f, mod, opts)
		files[moduleFileName(mod)] = f
	}
	return files
}

func moduleFileName(mod *ir.PreparedModule) string {
	return mod.Name
}

// renderCustomType emits the Go declaration for one interned Custom
// CoreType: Enum -> string-backed type with constants, Composite ->
// struct, Domain -> defined alias over its inner native type.
func renderCustomType(f *jen.File, t *types.CoreType) {
	goName := inflect.Camelize(t.Name)
	switch t.CustomKind {
	case types.KindEnum:
		f.Type().Id(goName).String()
		for _, variant := range t.Enum.Variants {
			constName := goName + inflect.Camelize(variant)
			f.Const().Id(constName).Id(goName).Op("=").Lit(variant)
		}

	case types.KindComposite:
		fields := make([]jen.Code, 0, len(t.Composite.Fields))
		for _, field := range t.Composite.Fields {
			fields = append(fields, jen.Id(fieldIdentifier(field.Name)).Add(nativeTypeCode(field.Type)))
		}
		f.Type().Id(goName).Struct(fields...)

	case types.KindDomain:
		f.Type().Id(goName).Add(nativeTypeCode(t.Domain.Inner))
	}
}

// renderModule emits one Go function per query in mod, plus the Row
// and Params structs the functions reference.
func renderModule(f *jen.File, mod *ir.PreparedModule, opts Options) {
	for _, name := range mod.Rows.Names() {
		row, _ := mod.Rows.Get(name)
		renderStruct(f, name, row, opts)
	}
	for _, name := range mod.Params.Names() {
		params, _ := mod.Params.Get(name)
		renderParamsStruct(f, name, params.Fields, opts)
	}
	paramsNameByQuery := make(map[int]string)
	for _, pname := range mod.Params.Names() {
		p, _ := mod.Params.Get(pname)
		for _, qi := range p.Queries {
			paramsNameByQuery[qi] = pname
		}
	}
	rowNames := mod.Rows.Names()

	for i, name := range mod.Queries.Names() {
		q, _ := mod.Queries.Get(name)
		var row ir.PreparedRow
		if q.Row != nil {
			row = mod.Rows.At(q.Row.RowIndex)
		}
		renderQueryFunc(f, name, q, paramsNameByQuery[i], rowNames, row, opts)
	}
}

// renderStruct emits one struct type for a PreparedRow, fields in
// their canonical sorted order (Invariant 2 — SQL-order access goes
// through the permutation the generated query function applies, not
// through struct field order).
func renderStruct(f *jen.File, name string, row ir.PreparedRow, opts Options) {
	fields := make([]jen.Code, 0, len(row.Fields))
	for _, field := range row.Fields {
		fields = append(fields, structField(field))
	}
	f.Type().Id(name).Struct(fields...)
	if opts.DeriveSer {
		renderMsgpackMethods(f, name, row.Fields)
	}
}

func renderParamsStruct(f *jen.File, name string, fields []ir.Field, opts Options) {
	code := make([]jen.Code, 0, len(fields))
	for _, field := range fields {
		code = append(code, structField(field))
	}
	f.Type().Id(name).Struct(code...)
	if opts.DeriveSer {
		renderMsgpackMethods(f, name, fields)
	}
}

func structField(field ir.Field) jen.Code {
	id := fieldIdentifier(field.Name)
	typeCode := nativeTypeCode(field.Type)
	if field.IsNullable {
		typeCode = jen.Op("*").Add(nativeTypeCode(field.Type))
	}
	return jen.Id(id).Add(typeCode)
}

// fieldIdentifier derives an internal struct field name by
// Title-casing each '_'-separated part; distinct from the
// UpperCamelCase struct-name rule spec §4.D.6 mandates, since field
// names carry no spec-visible wording requirement.
func fieldIdentifier(name string) string {
	parts := splitSnake(name)
	var out string
	for _, p := range parts {
		out += fieldCaser.String(p)
	}
	return out
}

func splitSnake(s string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '_' {
			if i > start {
				parts = append(parts, s[start:i])
			}
			start = i + 1
		}
	}
	return parts
}

// nativeTypeCode renders the Go type expression for a CoreType,
// qualifying the import path for non-builtin native names.
func nativeTypeCode(t *types.CoreType) *jen.Statement {
	if t.IsArrayType {
		return jen.Index().Add(nativeTypeCode(t.Element))
	}
	if t.IsCustom {
		return jen.Id(inflect.Camelize(t.Name))
	}
	if path, ok := types.NativeImportPaths[t.NativeName]; ok {
		switch t.NativeName {
		case "time.Time":
			return jen.Qual(path, "Time")
		case "uuid.UUID":
			return jen.Qual(path, "UUID")
		}
	}
	switch t.NativeName {
	case "int16":
		return jen.Int16()
	case "int32":
		return jen.Int32()
	case "int64":
		return jen.Int64()
	case "float32":
		return jen.Float32()
	case "float64":
		return jen.Float64()
	case "bool":
		return jen.Bool()
	case "string":
		return jen.String()
	case "[]byte":
		return jen.Index().Byte()
	default:
		return jen.String()
	}
}

// renderMsgpackMethods emits EncodeMsgpack/DecodeMsgpack against
// vmihailenco/msgpack/v5's CustomEncoder/CustomDecoder interfaces,
// gated by the derive_ser option (spec §4.J).
func renderMsgpackMethods(f *jen.File, structName string, fields []ir.Field) {
	encArgs := make([]jen.Code, 0, len(fields))
	for _, field := range fields {
		encArgs = append(encArgs, jen.Id("v").Dot(fieldIdentifier(field.Name)))
	}
	f.Func().Params(jen.Id("v").Op("*").Id(structName)).Id("EncodeMsgpack").
		Params(jen.Id("enc").Op("*").Qual("github.com/vmihailenco/msgpack/v5", "Encoder")).
		Error().Block(
		jen.Return(jen.Id("enc").Dot("Encode").Call(encArgs...)),
	)

	decTargets := make([]jen.Code, 0, len(fields))
	for _, field := range fields {
		decTargets = append(decTargets, jen.Op("&").Id("v").Dot(fieldIdentifier(field.Name)))
	}
	f.Func().Params(jen.Id("v").Op("*").Id(structName)).Id("DecodeMsgpack").
		Params(jen.Id("dec").Op("*").Qual("github.com/vmihailenco/msgpack/v5", "Decoder")).
		Error().Block(
		jen.Return(jen.Id("dec").Dot("Decode").Call(decTargets...)),
	)
}

// renderQueryFunc emits the generated function for one PreparedQuery:
// it builds a runtime.Statement[Params, Row] bound to the params'
// fields (in the query's declared SQL-parameter order) and, via the
// bound Statement, either scans every result row into Row (using the
// row's permutation, spec invariant 2) or runs the statement for
// effect alone when the query has no row. is_async governs only
// whether ctx propagates or a background context is baked in (spec
// §6); both forms are synchronous Go.
func renderQueryFunc(f *jen.File, name string, q ir.PreparedQuery, paramsStructName string, rowNames []string, row ir.PreparedRow, opts Options) {
	// "Query" suffix keeps the function's identifier distinct from its
	// row/params struct, which (absent an explicit named_return_struct/
	// named_param_struct) share the query's own UpperCamelCase name —
	// same package-level namespace, so a bare match would collide.
	fnName := inflect.Camelize(name) + "Query"
	paramsType := jen.Code(jen.Any())
	if len(q.Params) > 0 {
		paramsType = jen.Id(paramsStructName)
	}

	params := []jen.Code{jen.Id("queryer").Qual(runtimePkg, "Queryer")}
	if opts.IsAsync {
		params = append([]jen.Code{jen.Id("ctx").Qual("context", "Context")}, params...)
	}
	if len(q.Params) > 0 {
		params = append(params, jen.Id("params").Add(paramsType))
	}

	rowType := jen.Code(jen.Any())
	if q.Row != nil {
		rowType = jen.Id(rowNames[q.Row.RowIndex])
	}

	ctxExpr := jen.Qual("context", "Background").Call()
	if opts.IsAsync {
		ctxExpr = jen.Id("ctx")
	}

	prepareArgs := []jen.Code{ctxExpr, jen.Id("queryer"), jen.Lit(q.SQL)}
	for _, p := range q.Params {
		prepareArgs = append(prepareArgs, jen.Id("params").Dot(fieldIdentifier(p.Name)))
	}

	var returnType jen.Code = jen.Qual("database/sql", "Result")
	if q.Row != nil {
		returnType = jen.Index().Add(rowType)
	}

	body := []jen.Code{
		jen.List(jen.Id("stmt"), jen.Id("err")).Op(":=").
			Qual(runtimePkg, "Prepare").Index(paramsType, rowType).Call(prepareArgs...),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Id("err")),
		),
	}
	if q.Row != nil {
		body = append(body, jen.Return(jen.Id("stmt").Dot("Query").Call(rowScanFunc(rowNames[q.Row.RowIndex], row, q.Row.Perm))))
	} else {
		body = append(body, jen.Return(jen.Id("stmt").Dot("Exec").Call()))
	}

	f.Comment(fmt.Sprintf("%s runs the query named %q.", fnName, name))
	f.Func().Id(fnName).Params(params...).Params(returnType, jen.Error()).Block(body...)
}

// rowScanFunc builds the func(*sql.Rows) (Row, error) literal a query
// function passes to Statement.Query: it scans the declared SQL
// columns (in the query's own SELECT-list order) into locals, then
// assembles the Row struct in canonical sorted field order by
// inverting perm (rows[RowIndex].Fields[i] is the query's
// perm[i]-th declared column — ir.RowRef.Perm).
func rowScanFunc(rowTypeName string, row ir.PreparedRow, perm []int) *jen.Statement {
	n := len(row.Fields)
	canonicalOf := make([]int, n) // canonicalOf[d] = canonical index of the field declared at SQL position d
	for i, d := range perm {
		canonicalOf[d] = i
	}

	varName := func(d int) string { return fmt.Sprintf("c%d", d) }

	decls := make([]jen.Code, 0, n)
	scanArgs := make([]jen.Code, 0, n)
	for d := 0; d < n; d++ {
		field := row.Fields[canonicalOf[d]]
		typeCode := nativeTypeCode(field.Type)
		if field.IsNullable {
			typeCode = jen.Op("*").Add(nativeTypeCode(field.Type))
		}
		decls = append(decls, jen.Var().Id(varName(d)).Add(typeCode))
		scanArgs = append(scanArgs, jen.Op("&").Id(varName(d)))
	}

	fields := jen.Dict{}
	for i, field := range row.Fields {
		fields[jen.Id(fieldIdentifier(field.Name))] = jen.Id(varName(perm[i]))
	}

	stmts := append([]jen.Code{}, decls...)
	stmts = append(stmts,
		jen.If(jen.Id("err").Op(":=").Id("rows").Dot("Scan").Call(scanArgs...), jen.Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Id(rowTypeName).Values(), jen.Id("err")),
		),
		jen.Return(jen.Id(rowTypeName).Values(fields), jen.Nil()),
	)

	return jen.Func().Params(jen.Id("rows").Op("*").Qual("database/sql", "Rows")).Params(jen.Id(rowTypeName), jen.Error()).Block(stmts...)
}
