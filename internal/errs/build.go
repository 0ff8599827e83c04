package errs

import "github.com/querybind/querybind/internal/types"

// intp is a small helper for building the optional *int line pointer.
func intp(n int) *int { return &n }

// New wraps a validation error into the full located Error the
// pipeline returns.
func New(queryName string, queryStartLine int, path string, cause ValidationError) *Error {
	return &Error{
		QueryName:      queryName,
		QueryStartLine: intp(queryStartLine),
		Path:           path,
		Err:            &ValidationVariant{Cause: cause},
	}
}

// NewDb wraps a driver error into the full located Error. Database
// errors do not carry a position (spec §7: the server cannot pinpoint
// into the user's source).
func NewDb(queryName string, queryStartLine int, path string, message string) *Error {
	return &Error{
		QueryName:      queryName,
		QueryStartLine: intp(queryStartLine),
		Path:           path,
		Err:            &DbVariant{Message: message},
	}
}

// NewPostgresType wraps a registrar type error into the full located
// Error.
func NewPostgresType(queryName string, queryStartLine int, path string, cause *types.UnsupportedPostgresTypeError) *Error {
	return &Error{
		QueryName:      queryName,
		QueryStartLine: intp(queryStartLine),
		Path:           path,
		Err:            &PostgresTypeVariant{Cause: cause},
	}
}
