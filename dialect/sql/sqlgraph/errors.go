// Package sqlgraph classifies database errors raised while persisting
// graph records, independent of the driver that produced them.
package sqlgraph

import (
	"errors"
	"strings"
)

// ConstraintError is returned by the storage layer when a statement
// violates a database constraint.
type ConstraintError struct {
	msg string
	err error
}

// NewConstraintError wraps err as a constraint violation.
func NewConstraintError(msg string, err error) *ConstraintError {
	return &ConstraintError{msg: msg, err: err}
}

// Error implements the error interface.
func (e *ConstraintError) Error() string { return "sqlgraph: constraint failed: " + e.msg }

// Unwrap returns the driver error.
func (e *ConstraintError) Unwrap() error { return e.err }

// errorCoder is implemented by pq.Error and modernc.org/sqlite errors.
type errorCoder interface {
	Code() string
}

// errorNumberer is implemented by mysql.MySQLError.
type errorNumberer interface {
	Number() uint16
}

// sqlStateError is implemented by pgconn.PgError (pgx).
type sqlStateError interface {
	SQLState() string
}

// class describes how each driver reports one kind of violation.
type class struct {
	sqlState string   // Postgres SQLSTATE.
	numbers  []uint16 // MySQL error numbers.
	messages []string // Fallback substrings (SQLite and unknown drivers).
}

var (
	unique = class{
		sqlState: "23505",
		numbers:  []uint16{1062},
		messages: []string{"Error 1062", "violates unique constraint", "UNIQUE constraint failed"},
	}
	foreignKey = class{
		sqlState: "23503",
		numbers:  []uint16{1451, 1452},
		messages: []string{"Error 1451", "Error 1452", "violates foreign key constraint", "FOREIGN KEY constraint failed"},
	}
	check = class{
		sqlState: "23514",
		numbers:  []uint16{3819},
		messages: []string{"Error 3819", "violates check constraint", "CHECK constraint failed"},
	}
)

func (c class) match(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == c.sqlState {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == c.sqlState {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok {
		for _, n := range c.numbers {
			if e.Number() == n {
				return true
			}
		}
	}
	msg := err.Error()
	for _, m := range c.messages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e) ||
		IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool { return unique.match(err) }

// IsForeignKeyConstraintError reports if the error resulted from a foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool { return foreignKey.match(err) }

// IsCheckConstraintError reports if the error resulted from a check constraint violation.
func IsCheckConstraintError(err error) bool { return check.match(err) }

// asError walks the error chain looking for an error implementing T.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}
