// Package driver declares the external contract the core query
// preparation pipeline consumes from a live database server. The
// pipeline depends only on these interfaces; concrete
// implementations live in subpackages (internal/driver/postgres).
package driver

import "context"

// Kind is the closed sum of shapes a server-side type can take.
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindDomain
	KindEnum
	KindComposite
)

// CompositeAttr is one named, typed field of a composite PgType.
type CompositeAttr struct {
	Name string
	Type PgType
}

// PgType is the server's description of a column or parameter type.
// It exposes just enough structure for the Type Registrar (§4.A) to
// recurse through arrays, domains, enums, and composites.
type PgType interface {
	Schema() string
	Name() string
	Kind() Kind

	// Element is meaningful only when Kind() == KindArray.
	Element() PgType
	// Inner is meaningful only when Kind() == KindDomain.
	Inner() PgType
	// Variants is meaningful only when Kind() == KindEnum.
	Variants() []string
	// Fields is meaningful only when Kind() == KindComposite.
	Fields() []CompositeAttr
}

// Column is one column of a prepared statement's result set.
type Column struct {
	Name string
	Type PgType
}

// PreparedStatement is the result of preparing a SQL string against
// the server: its positional parameter types, in order, and its
// result columns, in order (empty for statements with no result set).
type PreparedStatement interface {
	Params() []PgType
	Columns() []Column
}

// DbError wraps whatever error the server returned while preparing a
// statement; its Message is surfaced verbatim in diagnostics.
type DbError struct {
	Message string
	cause   error
}

// NewDbError wraps a driver-level error, preserving its message.
func NewDbError(cause error) *DbError {
	return &DbError{Message: cause.Error(), cause: cause}
}

func (e *DbError) Error() string { return e.Message }

func (e *DbError) Unwrap() error { return e.cause }

// Driver is the interface the pipeline depends on. It is held
// exclusively by the pipeline and reused across every query in a run
// (spec §5): no multiplexing, no pooling visible to the core.
type Driver interface {
	// Prepare prepares sql against the server and returns its
	// inferred parameter and column types, or a *DbError.
	Prepare(ctx context.Context, sql string) (PreparedStatement, error)
	// BatchExecute runs sql (migrations, schema reset) without
	// returning rows.
	BatchExecute(ctx context.Context, sql string) error
	// Close releases the connection. Safe to call exactly once, on
	// every exit path.
	Close() error
}
