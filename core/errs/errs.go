// Package errs defines the error taxonomy the gateway surfaces to callers.
//
// Errors are kinds, not types in the traditional sense: every error returned
// across a GraphQL operation boundary implements Coder so resolvers and the
// HTTP/WebSocket transports can translate it into a machine-readable code
// without needing to know which subsystem produced it.
package errs

import (
	"errors"
	"fmt"
)

// Code is the machine-readable error kind returned in the GraphQL errors array.
type Code string

const (
	CodeArgument    Code = "ARGUMENT_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeConflict    Code = "CONFLICT"
	CodeMutation    Code = "DATA_MUTATION_ERROR"
	CodeSchema      Code = "SCHEMA_ERROR"
	CodeSubscribe   Code = "SUBSCRIPTION_ERROR"
	CodeFatal       Code = "FATAL"
)

// Coder is implemented by every error kind in this package.
type Coder interface {
	error
	Code() Code
}

type kindErr struct {
	code       Code
	msg        string
	constraint string
	wrapped    error
}

func (e *kindErr) Error() string {
	switch {
	case e.constraint != "":
		return fmt.Sprintf("%s (constraint %q)", e.msg, e.constraint)
	case e.wrapped != nil:
		return fmt.Sprintf("%s: %s", e.msg, e.wrapped)
	default:
		return e.msg
	}
}

func (e *kindErr) Code() Code   { return e.code }
func (e *kindErr) Unwrap() error { return e.wrapped }

// Argument indicates malformed input: missing PK on update/delete, empty
// bulk, invalid operator combinations. Never retried.
func Argument(format string, a ...interface{}) error {
	return &kindErr{code: CodeArgument, msg: fmt.Sprintf(format, a...)}
}

// NotFound indicates the addressed row does not exist.
func NotFound(table string) error {
	return &kindErr{code: CodeNotFound, msg: fmt.Sprintf("no row matched in %q", table)}
}

// Conflict wraps a unique/PK/FK/check constraint violation reported by the
// database, carrying the constraint name along for the client.
func Conflict(constraint string, cause error) error {
	return &kindErr{code: CodeConflict, msg: "constraint violation", constraint: constraint, wrapped: cause}
}

// Mutation wraps any other mutation failure; triggers transaction rollback.
func Mutation(cause error) error {
	return &kindErr{code: CodeMutation, msg: "mutation failed", wrapped: cause}
}

// Schema indicates catalog reflection failed. A stale cache, if present,
// keeps serving while a fresh reflection is retried.
func Schema(cause error) error {
	return &kindErr{code: CodeSchema, msg: "schema reflection failed", wrapped: cause}
}

// Subscription indicates a decoded-stream or WebSocket protocol failure.
// Surfaced as an inline error event; the stream layer retries transparently.
func Subscription(cause error) error {
	return &kindErr{code: CodeSubscribe, msg: "subscription failed", wrapped: cause}
}

// Fatal indicates resource exhaustion or misconfiguration that requires the
// affected subsystem to be restarted by an external supervisor.
func Fatal(cause error) error {
	return &kindErr{code: CodeFatal, msg: "fatal error", wrapped: cause}
}

// CodeOf extracts the machine-readable code from err, defaulting to
// CodeMutation for errors that don't implement Coder (driver errors that
// escaped classification).
func CodeOf(err error) Code {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeMutation
}
