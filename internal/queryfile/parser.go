// Package queryfile is the concrete external collaborator that turns
// annotated SQL query files into query.Module values (spec §4.H). The
// core pipeline never imports this package directly; it depends only
// on the query.Module/query.Query shapes this package produces.
package queryfile

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/querybind/querybind/internal/location"
	"github.com/querybind/querybind/internal/query"
)

// ParseError reports a malformed annotation or an unterminated
// statement, with the 1-based line it occurred on.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

const (
	prefixName   = "--: name:"
	prefixParam  = "--: param:"
	prefixRow    = "--: row:"
	prefixParams = "--: params:"
	prefixNull   = "--! nullable:"
)

// builder accumulates one in-progress query's annotations until the
// terminating ';' is seen.
type builder struct {
	name            location.Located[string]
	params          []location.Located[string]
	nullableColumns []location.Located[query.NullableColumn]
	namedReturn     *location.Located[string]
	namedParam      *location.Located[string]
	startLine       int
	sqlLines        []string
	sqlStartLine    int
}

// ParseFile parses the contents of one query file into a module named
// after path's base filename without extension (spec §4.H).
func ParseFile(path string, contents string) (query.Module, error) {
	moduleName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mod := query.Module{Name: moduleName, Path: path}

	scanner := bufio.NewScanner(strings.NewReader(contents))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur *builder
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, prefixName):
			if cur != nil {
				return mod, &ParseError{Path: path, Line: lineNo, Msg: "new query started before previous statement was terminated with ';'"}
			}
			value, col := annotationValue(line, prefixName)
			cur = &builder{
				name:      location.At(value, location.Pos{Line: lineNo, Column: col}),
				startLine: lineNo,
			}

		case cur == nil:
			isAnnotation := strings.HasPrefix(trimmed, "--:") || strings.HasPrefix(trimmed, "--!")
			if trimmed == "" || strings.HasPrefix(trimmed, "--") && !isAnnotation {
				continue
			}
			return mod, &ParseError{Path: path, Line: lineNo, Msg: "SQL or annotation found outside of a '--: name:' block"}

		case strings.HasPrefix(trimmed, prefixParam):
			value, col := annotationValue(line, prefixParam)
			cur.params = append(cur.params, location.At(value, location.Pos{Line: lineNo, Column: col}))

		case strings.HasPrefix(trimmed, prefixRow):
			value, col := annotationValue(line, prefixRow)
			v := location.At(value, location.Pos{Line: lineNo, Column: col})
			cur.namedReturn = &v

		case strings.HasPrefix(trimmed, prefixParams):
			value, col := annotationValue(line, prefixParams)
			v := location.At(value, location.Pos{Line: lineNo, Column: col})
			cur.namedParam = &v

		case strings.HasPrefix(trimmed, prefixNull):
			value, col := annotationValue(line, prefixNull)
			nc, err := parseNullable(value)
			if err != nil {
				return mod, &ParseError{Path: path, Line: lineNo, Msg: err.Error()}
			}
			cur.nullableColumns = append(cur.nullableColumns, location.At(nc, location.Pos{Line: lineNo, Column: col}))

		default:
			if cur.sqlStartLine == 0 {
				cur.sqlStartLine = lineNo
			}
			cur.sqlLines = append(cur.sqlLines, line)
			if strings.HasSuffix(strings.TrimRight(line, " \t"), ";") {
				mod.Queries = append(mod.Queries, cur.finish())
				cur = nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return mod, err
	}
	if cur != nil {
		return mod, &ParseError{Path: path, Line: cur.startLine, Msg: "query's SQL statement was never terminated with ';'"}
	}
	return mod, nil
}

func (b *builder) finish() query.Query {
	return query.Query{
		Name:               b.name,
		SQLStr:             strings.TrimSpace(strings.Join(b.sqlLines, "\n")),
		Params:             b.params,
		NullableColumns:    b.nullableColumns,
		NamedReturnStruct:  b.namedReturn,
		NamedParamStruct:   b.namedParam,
		Line:               b.startLine,
	}
}

// annotationValue splits "prefix value" into its trimmed value and
// the 1-based byte column the value starts at within line.
func annotationValue(line, prefix string) (string, int) {
	idx := strings.Index(line, prefix)
	rest := line[idx+len(prefix):]
	trimmedLen := len(rest) - len(strings.TrimLeft(rest, " \t"))
	value := strings.TrimSpace(rest)
	return value, idx + len(prefix) + trimmedLen + 1
}

// parseNullable classifies a "--! nullable:" value as Index when
// purely numeric, Named otherwise.
func parseNullable(value string) (query.NullableColumn, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return query.Index(n), nil
	}
	if value == "" {
		return query.NullableColumn{}, fmt.Errorf("nullable annotation missing a column index or name")
	}
	return query.Named(value), nil
}
