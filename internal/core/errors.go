package core

import (
	"errors"
	"fmt"
)

// Predefined errors returned by sqlcond operations.
var (
	// ErrNoRows is returned when a query that expects rows returns no results.
	ErrNoRows = errors.New("no rows in result set")
	// ErrTxDone is returned when operating on an already committed or rolled back transaction.
	ErrTxDone = errors.New("transaction has already been committed or rolled back")
	// ErrUnsupportedDialect is returned when an unsupported database dialect is specified.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
	// ErrUnknownConditionsFormat is raised when a condition group source has an unsupported type.
	ErrUnknownConditionsFormat = errors.New("unknown conditions format")
	// ErrSQL classifies shape and arity errors raised while building conditions.
	ErrSQL = errors.New("sql error")
	// ErrQuery classifies structural errors raised while composing statements.
	ErrQuery = errors.New("query error")
	// ErrRejected is returned when the validator refuses to send a statement.
	ErrRejected = errors.New("statement rejected by validator")
)

// SQLError is a build-time shape error: wrong row/value count, array value
// with a scalar operator, mismatched placeholder count.
type SQLError struct {
	msg string
}

func newSQLError(format string, args ...any) *SQLError {
	return &SQLError{msg: fmt.Sprintf(format, args...)}
}

func (e *SQLError) Error() string { return e.msg }

// Is makes errors.Is(err, ErrSQL) match any SQLError.
func (e *SQLError) Is(target error) bool { return target == ErrSQL }

// QueryError is a compose-time structural error, such as an UPDATE without
// tables or a clause requested by name that was never defined.
type QueryError struct {
	msg string
}

func newQueryError(format string, args ...any) *QueryError {
	return &QueryError{msg: fmt.Sprintf(format, args...)}
}

func (e *QueryError) Error() string { return e.msg }

// Is makes errors.Is(err, ErrQuery) match any QueryError.
func (e *QueryError) Is(target error) bool { return target == ErrQuery }

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
