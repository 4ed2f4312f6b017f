package db

import (
	"errors"
	"fmt"
)

// StatementError is a failure of one user statement against the store. The
// executor recovers it into the statement's result; it never aborts a batch
// on its own.
type StatementError struct {
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement failed: %v", e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// ConnError is a connection-level failure: the session itself is unusable
// (begin/commit/rollback/savepoint failed, or the store is unreachable).
// It propagates out of the batch call instead of being recorded per
// statement.
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("connection %s failed: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// IsConnError reports whether err is (or wraps) a connection-level failure.
// Resilience policies use this to decide what is worth retrying: a broken
// session might recover, a rejected statement will not.
func IsConnError(err error) bool {
	var connErr *ConnError
	return errors.As(err, &connErr)
}

// IsStatementError reports whether err is (or wraps) a single-statement
// failure.
func IsStatementError(err error) bool {
	var stmtErr *StatementError
	return errors.As(err, &stmtErr)
}
